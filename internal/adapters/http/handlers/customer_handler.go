package handlers

import (
	"errors"

	"onlinebank-api/internal/core/domain"
	"onlinebank-api/internal/core/services"
	"onlinebank-api/internal/pkg/pagination"
	"onlinebank-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// CustomerHandler handles customer endpoints
type CustomerHandler struct {
	customerService *services.CustomerService
	loanService     *services.LoanService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerService *services.CustomerService, loanService *services.LoanService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		loanService:     loanService,
	}
}

// CreateCustomerRequest represents a new customer
type CreateCustomerRequest struct {
	FirstName     string          `json:"first_name"`
	LastName      string          `json:"last_name"`
	IdentityNo    string          `json:"identity_no"`
	Email         string          `json:"email,omitempty"`
	MonthlySalary decimal.Decimal `json:"monthly_salary"`
}

// Create registers a new customer
// @Summary Create customer
// @Description Register a new bank customer
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateCustomerRequest true "Customer data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /customers [post]
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var req CreateCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	customer, err := h.customerService.Create(c.Context(), &services.CreateCustomerInput{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		IdentityNo:    req.IdentityNo,
		Email:         req.Email,
		MonthlySalary: req.MonthlySalary,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateEntry):
			return response.Conflict(c, "Identity number already registered")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, err.Error())
		default:
			return response.InternalServerError(c, "Failed to create customer")
		}
	}

	return response.Created(c, "Customer created successfully", fiber.Map{
		"customer": customer,
	})
}

// Get gets a customer by ID
// @Summary Get a customer
// @Description Get a customer by ID
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customers/{id} [get]
func (h *CustomerHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid customer ID")
	}

	customer, err := h.customerService.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return response.NotFound(c, "Customer not found")
		}
		return response.InternalServerError(c, "Failed to get customer")
	}

	return response.Success(c, "Customer retrieved successfully", fiber.Map{
		"customer": customer,
	})
}

// List lists customers
// @Summary List customers
// @Description List customers with pagination
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /customers [get]
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	customers, total, err := h.customerService.List(c.Context(), params)
	if err != nil {
		return response.InternalServerError(c, "Failed to list customers")
	}

	return response.Success(c, "Customers retrieved successfully",
		pagination.NewResponse(customers, params, total))
}

// Loans lists a customer's loans
// @Summary Customer loans
// @Description List all loans of a customer
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customers/{id}/loans [get]
func (h *CustomerHandler) Loans(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid customer ID")
	}

	if _, err := h.customerService.GetByID(c.Context(), id); err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return response.NotFound(c, "Customer not found")
		}
		return response.InternalServerError(c, "Failed to get customer")
	}

	loans, err := h.loanService.ListLoansByCustomer(c.Context(), id)
	if err != nil {
		return response.InternalServerError(c, "Failed to list loans")
	}

	return response.Success(c, "Loans retrieved successfully", fiber.Map{
		"loans": loans,
	})
}
