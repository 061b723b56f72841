package handlers

import (
	"errors"
	"time"

	"onlinebank-api/internal/adapters/persistence/models"
	"onlinebank-api/internal/core/domain"
	"onlinebank-api/internal/core/services"
	"onlinebank-api/internal/pkg/pagination"
	"onlinebank-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// CreditCardHandler handles credit card endpoints
type CreditCardHandler struct {
	cardService *services.CreditCardService
}

// NewCreditCardHandler creates a new credit card handler
func NewCreditCardHandler(cardService *services.CreditCardService) *CreditCardHandler {
	return &CreditCardHandler{cardService: cardService}
}

// respondCardError maps credit card errors to HTTP responses
func respondCardError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrCreditCardNotFound):
		return response.NotFound(c, "Credit card not found")
	case errors.Is(err, domain.ErrCustomerNotFound):
		return response.NotFound(c, "Customer not found")
	case errors.Is(err, domain.ErrLimitExceeded):
		return response.UnprocessableEntity(c, err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		return response.UnprocessableEntity(c, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		return response.BadRequest(c, err.Error())
	default:
		return response.InternalServerError(c, "Credit card operation failed")
	}
}

// List lists all active credit cards
// @Summary All credit cards
// @Description List all active credit cards
// @Tags Credit Cards
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /credit-cards [get]
func (h *CreditCardHandler) List(c *fiber.Ctx) error {
	cards, err := h.cardService.ListCards(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list credit cards")
	}

	responses := make([]*models.CreditCardResponse, 0, len(cards))
	for _, card := range cards {
		responses = append(responses, card.ToResponse())
	}

	return response.Success(c, "Credit cards retrieved successfully", fiber.Map{
		"credit_cards": responses,
	})
}

// Get gets a credit card by ID
// @Summary Get a credit card
// @Description Get a credit card by its ID
// @Tags Credit Cards
// @Produce json
// @Security BearerAuth
// @Param id path int true "Credit card ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /credit-cards/{id} [get]
func (h *CreditCardHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid credit card ID")
	}

	card, err := h.cardService.GetCard(c.Context(), id)
	if err != nil {
		return respondCardError(c, err)
	}

	return response.Success(c, "Credit card retrieved successfully", fiber.Map{
		"credit_card": card.ToResponse(),
	})
}

// IssueCardRequest represents a card issuance request
type IssueCardRequest struct {
	CustomerID uint            `json:"customer_id"`
	TotalLimit decimal.Decimal `json:"total_limit"`
}

// Issue creates a new credit card
// @Summary Issue a credit card
// @Description Issue a new credit card for a customer
// @Tags Credit Cards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body IssueCardRequest true "Card data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /credit-cards [post]
func (h *CreditCardHandler) Issue(c *fiber.Ctx) error {
	var req IssueCardRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.CustomerID == 0 {
		return response.BadRequest(c, "Customer ID is required")
	}

	card, err := h.cardService.IssueCard(c.Context(), &services.IssueCardInput{
		CustomerID: req.CustomerID,
		TotalLimit: req.TotalLimit,
	})
	if err != nil {
		return respondCardError(c, err)
	}

	return response.Created(c, "Credit card issued successfully", fiber.Map{
		"credit_card": card.ToResponse(),
	})
}

// Cancel cancels a credit card
// @Summary Cancel a credit card
// @Description Cancel a credit card by making its status canceled
// @Tags Credit Cards
// @Produce json
// @Security BearerAuth
// @Param id path int true "Credit card ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /credit-cards/cancel/{id} [patch]
func (h *CreditCardHandler) Cancel(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid credit card ID")
	}

	if err := h.cardService.CancelCard(c.Context(), id); err != nil {
		return respondCardError(c, err)
	}

	return response.Success(c, "Credit card canceled successfully", nil)
}

// SpendRequest represents a card spend request
type SpendRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

// Spend records a purchase on a card
// @Summary Spend on a credit card
// @Description Record a purchase; debt grows and available limit shrinks
// @Tags Credit Cards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Credit card ID"
// @Param body body SpendRequest true "Spend data"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /credit-cards/{id}/spend [post]
func (h *CreditCardHandler) Spend(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid credit card ID")
	}

	var req SpendRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	activity, err := h.cardService.Spend(c.Context(), id, &services.SpendInput{
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		return respondCardError(c, err)
	}

	return response.Created(c, "Spend recorded successfully", fiber.Map{
		"activity": activity,
	})
}

// ActivitiesByAmount lists activities within an amount interval
// @Summary Activities by amount interval
// @Description List credit card activities with amount in the given range
// @Tags Credit Cards
// @Produce json
// @Security BearerAuth
// @Param min query number true "Minimum amount"
// @Param max query number true "Maximum amount"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /credit-cards/find-by-amount-interval [get]
func (h *CreditCardHandler) ActivitiesByAmount(c *fiber.Ctx) error {
	min, err := decimal.NewFromString(c.Query("min", "0"))
	if err != nil {
		return response.BadRequest(c, "Invalid min amount")
	}
	max, err := decimal.NewFromString(c.Query("max", "0"))
	if err != nil {
		return response.BadRequest(c, "Invalid max amount")
	}

	activities, err := h.cardService.ActivitiesByAmountInterval(c.Context(), min, max)
	if err != nil {
		return respondCardError(c, err)
	}

	return response.Success(c, "Activities retrieved successfully", fiber.Map{
		"activities": activities,
	})
}

// Activities lists a card's activities between dates, paginated
// @Summary Card activities between dates
// @Description List a credit card's activities between two dates with pagination
// @Tags Credit Cards
// @Produce json
// @Security BearerAuth
// @Param id path int true "Credit card ID"
// @Param start_date query string true "Start date (YYYY-MM-DD)"
// @Param end_date query string true "End date (YYYY-MM-DD)"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /credit-cards/{id}/activities [get]
func (h *CreditCardHandler) Activities(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid credit card ID")
	}

	start, err := time.Parse("2006-01-02", c.Query("start_date"))
	if err != nil {
		return response.BadRequest(c, "Invalid start date, use YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", c.Query("end_date"))
	if err != nil {
		return response.BadRequest(c, "Invalid end date, use YYYY-MM-DD")
	}

	params := pagination.GetParams(c)

	activities, total, err := h.cardService.ActivitiesBetweenDates(c.Context(), id, start, end, params)
	if err != nil {
		return respondCardError(c, err)
	}

	return response.Success(c, "Activities retrieved successfully",
		pagination.NewResponse(activities, params, total))
}

// ActivityAnalysis reports aggregates per activity type
// @Summary Credit card activity analysis
// @Description Min, max and average amounts and activity counts per activity type
// @Tags Credit Cards
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /credit-cards/activity-analysis [get]
func (h *CreditCardHandler) ActivityAnalysis(c *fiber.Ctx) error {
	analysis, err := h.cardService.ActivityAnalysis(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to analyze activities")
	}

	return response.Success(c, "Activity analysis retrieved successfully", fiber.Map{
		"analysis": analysis,
	})
}
