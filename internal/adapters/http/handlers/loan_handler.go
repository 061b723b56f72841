package handlers

import (
	"errors"
	"strconv"

	"onlinebank-api/internal/core/domain"
	"onlinebank-api/internal/core/services"
	"onlinebank-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// LoanHandler handles loan endpoints
type LoanHandler struct {
	loanService *services.LoanService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *services.LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

// respondLoanError maps loan engine errors to HTTP responses
func respondLoanError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrLoanNotFound):
		return response.NotFound(c, "Loan not found")
	case errors.Is(err, domain.ErrCustomerNotFound):
		return response.NotFound(c, "Customer not found")
	case errors.Is(err, domain.ErrLoanNotYetDue):
		return response.Conflict(c, "Loan due date has not passed yet")
	case errors.Is(err, domain.ErrLimitExceeded):
		return response.UnprocessableEntity(c, err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		return response.UnprocessableEntity(c, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		return response.BadRequest(c, err.Error())
	default:
		return response.InternalServerError(c, "Loan operation failed")
	}
}

// parseID parses a numeric path parameter
func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

// Calculate computes a loan quote
// @Summary Calculate loan
// @Description Compute a loan quote for an installment count and principal amount
// @Tags Loans
// @Accept json
// @Produce json
// @Param installment_count query int true "Installment count in months"
// @Param principal query number true "Principal loan amount"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /loans/calculate [get]
func (h *LoanHandler) Calculate(c *fiber.Ctx) error {
	installmentCount, err := strconv.Atoi(c.Query("installment_count", "0"))
	if err != nil {
		return response.BadRequest(c, "Invalid installment count")
	}

	principal, err := decimal.NewFromString(c.Query("principal", "0"))
	if err != nil {
		return response.BadRequest(c, "Invalid principal amount")
	}

	quote, err := h.loanService.CalculateLoan(c.Context(), installmentCount, principal)
	if err != nil {
		return respondLoanError(c, err)
	}

	return response.Success(c, "Loan calculated successfully", quote)
}

// ApplyLoanRequest represents a loan application request
type ApplyLoanRequest struct {
	CustomerID          uint            `json:"customer_id"`
	PrincipalLoanAmount decimal.Decimal `json:"principal_loan_amount"`
	InstallmentCount    int             `json:"installment_count"`
	MonthlySalary       decimal.Decimal `json:"monthly_salary"`
}

// Apply originates a new loan
// @Summary Apply for a loan
// @Description Originate a loan; the principal is capped by the affordability ceiling
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ApplyLoanRequest true "Loan application"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /loans [post]
func (h *LoanHandler) Apply(c *fiber.Ctx) error {
	var req ApplyLoanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.CustomerID == 0 {
		return response.BadRequest(c, "Customer ID is required")
	}
	if req.InstallmentCount <= 0 {
		return response.BadRequest(c, "Installment count must be greater than 0")
	}

	input := &services.ApplyLoanInput{
		CustomerID:          req.CustomerID,
		PrincipalLoanAmount: req.PrincipalLoanAmount,
		InstallmentCount:    req.InstallmentCount,
		MonthlySalary:       req.MonthlySalary,
	}

	loan, err := h.loanService.ApplyLoan(c.Context(), input)
	if err != nil {
		return respondLoanError(c, err)
	}

	return response.Created(c, "Loan created successfully", fiber.Map{
		"loan": loan.ToResponse(),
	})
}

// Get returns a loan by ID
// @Summary Get a loan
// @Description Get a loan by its ID
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id} [get]
func (h *LoanHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	loan, err := h.loanService.FindLoanByID(c.Context(), id)
	if err != nil {
		return respondLoanError(c, err)
	}

	return response.Success(c, "Loan retrieved successfully", fiber.Map{
		"loan": loan.ToResponse(),
	})
}

// Payments returns the payment history of a loan
// @Summary Loan payment history
// @Description List the installment payments of a loan
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id}/payments [get]
func (h *LoanHandler) Payments(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	payments, err := h.loanService.ListPayments(c.Context(), id)
	if err != nil {
		return respondLoanError(c, err)
	}

	return response.Success(c, "Payments retrieved successfully", fiber.Map{
		"payments": payments,
	})
}

// PayInstallment pays one monthly installment
// @Summary Pay an installment
// @Description Pay exactly one monthly installment of a loan
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /loans/{id}/pay-installment [patch]
func (h *LoanHandler) PayInstallment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	result, err := h.loanService.PayInstallment(c.Context(), id)
	if err != nil {
		return respondLoanError(c, err)
	}

	return response.Success(c, "Installment paid successfully", result)
}

// PayOff settles a loan in full
// @Summary Pay a loan off
// @Description Settle the full remaining principal and close the loan
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id}/pay-off [patch]
func (h *LoanHandler) PayOff(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	result, err := h.loanService.PayLoanOff(c.Context(), id)
	if err != nil {
		return respondLoanError(c, err)
	}

	return response.Success(c, "Loan paid off successfully", result)
}

// LateFee applies the late fee of an overdue loan
// @Summary Apply late fee
// @Description Calculate and apply the late fee of an overdue loan
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /loans/{id}/late-fee [patch]
func (h *LoanHandler) LateFee(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	result, err := h.loanService.CalculateLateFee(c.Context(), id)
	if err != nil {
		return respondLoanError(c, err)
	}

	return response.Success(c, "Late fee applied successfully", result)
}
