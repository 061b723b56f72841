package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"onlinebank-api/internal/adapters/persistence/models"
	"onlinebank-api/internal/adapters/persistence/repositories"
	"onlinebank-api/internal/config"
	"onlinebank-api/internal/core/domain"
	"onlinebank-api/internal/pkg/metrics"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Day-count and affordability constants of the lending product.
var (
	daysPerMonth     = decimal.NewFromInt(30)
	daysPerYearBasis = decimal.NewFromInt(36500) // 365-day year scaled by 100
	monthsPerYear    = decimal.NewFromInt(12)
	salaryRatio      = decimal.New(5, -1)  // half the salary can service installments
	loanCeilingRatio = decimal.New(80, -2) // 80% of what the installments could cover
	lateSurcharge    = decimal.New(30, -2) // 30% surcharge on the base rate
)

// LoanService implements the loan calculation engine: quoting, origination,
// installment payment, late fee application and payoff.
type LoanService struct {
	loanRepo    repositories.LoanRepository
	paymentRepo repositories.LoanPaymentRepository
	validation  *LoanValidationService
	quoteCache  repositories.QuoteCache // optional, best effort
	collector   *metrics.Collector      // optional
	lending     config.LendingConfig

	// Now is the clock of the engine; overridable in tests.
	Now func() time.Time
}

// NewLoanService creates a new loan service
func NewLoanService(
	loanRepo repositories.LoanRepository,
	paymentRepo repositories.LoanPaymentRepository,
	validation *LoanValidationService,
	quoteCache repositories.QuoteCache,
	collector *metrics.Collector,
	lending config.LendingConfig,
) *LoanService {
	return &LoanService{
		loanRepo:    loanRepo,
		paymentRepo: paymentRepo,
		validation:  validation,
		quoteCache:  quoteCache,
		collector:   collector,
		lending:     lending,
		Now:         time.Now,
	}
}

// LoanQuote is the result of a loan calculation
type LoanQuote struct {
	InterestRate             decimal.Decimal `json:"interest_rate"`
	TotalInterest            decimal.Decimal `json:"total_interest"`
	MonthlyInstallmentAmount decimal.Decimal `json:"monthly_installment_amount"`
	TotalPayment             decimal.Decimal `json:"total_payment"`
	AnnualCostRate           decimal.Decimal `json:"annual_cost_rate"`
	AllocationFee            decimal.Decimal `json:"allocation_fee"`
}

// computeQuote runs the quote formulas. All rounding favors the lender:
// the maturity fraction and the monthly installment are both rounded up.
func (s *LoanService) computeQuote(installmentCount int, principal decimal.Decimal) *LoanQuote {
	count := decimal.NewFromInt(int64(installmentCount))

	totalInterestRate := s.lending.InterestRate.Add(s.lending.TaxRate)

	// Day-count convention: installment months expressed as a fraction of a
	// 365-day year, partial days rounded up.
	maturity := count.Mul(daysPerMonth).Div(daysPerYearBasis).Ceil()

	totalInterest := principal.Mul(totalInterestRate).Mul(maturity).Mul(count)
	totalPayment := principal.Add(totalInterest).Add(s.lending.AllocationFee)

	monthlyInstallmentAmount := totalPayment.Div(count).Ceil()

	annualCostRate := totalInterestRate.Mul(monthsPerYear)

	return &LoanQuote{
		InterestRate:             s.lending.InterestRate,
		TotalInterest:            totalInterest,
		MonthlyInstallmentAmount: monthlyInstallmentAmount,
		TotalPayment:             totalPayment,
		AnnualCostRate:           annualCostRate,
		AllocationFee:            s.lending.AllocationFee,
	}
}

// CalculateLoan computes a loan quote. Pure apart from the optional cache:
// identical inputs always yield an identical quote.
func (s *LoanService) CalculateLoan(ctx context.Context, installmentCount int, principal decimal.Decimal) (*LoanQuote, error) {
	if err := s.validation.CheckCalculationParameters(installmentCount, principal); err != nil {
		s.countOp("calculate_loan", "rejected")
		return nil, err
	}

	cacheKey := fmt.Sprintf("loan:quote:%d:%s", installmentCount, principal.String())
	if quote, ok := s.cachedQuote(ctx, cacheKey); ok {
		s.countOp("calculate_loan", "ok")
		return quote, nil
	}

	quote := s.computeQuote(installmentCount, principal)

	if err := s.validation.CheckInterestRateNotNegative(s.lending.InterestRate); err != nil {
		s.countOp("calculate_loan", "rejected")
		return nil, err
	}
	if err := s.validation.CheckInstallmentAmountPositive(quote.MonthlyInstallmentAmount); err != nil {
		s.countOp("calculate_loan", "rejected")
		return nil, err
	}
	if err := s.validation.CheckTotalPaymentPositive(quote.TotalPayment); err != nil {
		s.countOp("calculate_loan", "rejected")
		return nil, err
	}

	s.storeQuote(ctx, cacheKey, quote)
	s.countOp("calculate_loan", "ok")
	return quote, nil
}

// ApplyLoanInput represents a loan application
type ApplyLoanInput struct {
	CustomerID          uint            `json:"customer_id" validate:"required"`
	PrincipalLoanAmount decimal.Decimal `json:"principal_loan_amount" validate:"required"`
	InstallmentCount    int             `json:"installment_count" validate:"required,gt=0"`
	MonthlySalary       decimal.Decimal `json:"monthly_salary" validate:"required"`
}

// ApplyLoan originates a loan. The affordability gate caps the principal at
// 80% of what half the customer's salary could service over the loan term.
func (s *LoanService) ApplyLoan(ctx context.Context, input *ApplyLoanInput) (*models.Loan, error) {
	if input == nil {
		s.countOp("apply_loan", "rejected")
		return nil, fmt.Errorf("loan application is required: %w", domain.ErrInvalidInput)
	}
	if err := s.validation.CheckCalculationParameters(input.InstallmentCount, input.PrincipalLoanAmount); err != nil {
		s.countOp("apply_loan", "rejected")
		return nil, err
	}

	quote := s.computeQuote(input.InstallmentCount, input.PrincipalLoanAmount)

	count := decimal.NewFromInt(int64(input.InstallmentCount))
	maxInstallmentAmount := input.MonthlySalary.Mul(salaryRatio)
	maxLoanAmount := maxInstallmentAmount.Mul(count).Mul(loanCeilingRatio)

	dueDate := dateOnly(s.Now()).AddDate(0, input.InstallmentCount, 0)

	if err := s.validation.CheckCustomerExists(ctx, input.CustomerID); err != nil {
		s.countOp("apply_loan", "rejected")
		return nil, err
	}
	if err := s.validation.CheckInstallmentAmountPositive(quote.MonthlyInstallmentAmount); err != nil {
		s.countOp("apply_loan", "rejected")
		return nil, err
	}
	if err := s.validation.CheckInterestNotNegative(quote.TotalInterest); err != nil {
		s.countOp("apply_loan", "rejected")
		return nil, err
	}
	if err := s.validation.CheckPrincipalPositive(input.PrincipalLoanAmount); err != nil {
		s.countOp("apply_loan", "rejected")
		return nil, err
	}
	if err := s.validation.CheckLoanAmountWithinLimit(input.PrincipalLoanAmount, maxLoanAmount); err != nil {
		s.countOp("apply_loan", "rejected")
		return nil, err
	}

	loan := &models.Loan{
		CustomerID:               input.CustomerID,
		PrincipalLoanAmount:      input.PrincipalLoanAmount,
		RemainingPrincipal:       input.PrincipalLoanAmount,
		MonthlyInstallmentAmount: quote.MonthlyInstallmentAmount,
		InterestToBePaid:         quote.TotalInterest,
		InstallmentCount:         input.InstallmentCount,
		DueDate:                  dueDate,
		Status:                   models.LoanStatusContinuing,
	}

	if err := s.loanRepo.Create(ctx, loan); err != nil {
		s.countOp("apply_loan", "error")
		return nil, err
	}

	s.countOp("apply_loan", "ok")
	return loan, nil
}

// FindLoanByID returns a loan by its ID
func (s *LoanService) FindLoanByID(ctx context.Context, id uint) (*models.Loan, error) {
	return s.getLoan(ctx, id)
}

// ListLoansByCustomer lists a customer's loans
func (s *LoanService) ListLoansByCustomer(ctx context.Context, customerID uint) ([]*models.Loan, error) {
	return s.loanRepo.ListByCustomer(ctx, customerID)
}

// ListPayments lists the payment history of a loan
func (s *LoanService) ListPayments(ctx context.Context, loanID uint) ([]*models.LoanPayment, error) {
	if _, err := s.getLoan(ctx, loanID); err != nil {
		return nil, err
	}
	return s.paymentRepo.ListByLoan(ctx, loanID)
}

// PayInstallmentResult is the confirmation of a single installment payment
type PayInstallmentResult struct {
	LoanID             uint            `json:"loan_id"`
	PaymentAmount      decimal.Decimal `json:"payment_amount"`
	PaymentDate        string          `json:"payment_date"`
	RemainingPrincipal decimal.Decimal `json:"remaining_principal"`
	DueDate            string          `json:"due_date"`
}

// PayInstallment pays exactly one monthly installment. A payment that would
// drive the remaining principal negative is rejected, not clamped to zero.
func (s *LoanService) PayInstallment(ctx context.Context, loanID uint) (*PayInstallmentResult, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		s.countOp("pay_installment", "rejected")
		return nil, err
	}

	remaining := loan.RemainingPrincipal.Sub(loan.MonthlyInstallmentAmount)
	if err := s.validation.CheckRemainingPrincipalNotNegative(remaining); err != nil {
		s.countOp("pay_installment", "rejected")
		return nil, err
	}

	loan.RemainingPrincipal = remaining

	paymentDate := dateOnly(s.Now())
	payment := &models.LoanPayment{
		LoanID:        loan.ID,
		PaymentAmount: loan.MonthlyInstallmentAmount,
		PaymentDate:   paymentDate,
	}

	if err := s.loanRepo.Update(ctx, loan); err != nil {
		s.countOp("pay_installment", "error")
		return nil, err
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		s.countOp("pay_installment", "error")
		return nil, err
	}

	s.countOp("pay_installment", "ok")
	return &PayInstallmentResult{
		LoanID:             loan.ID,
		PaymentAmount:      payment.PaymentAmount,
		PaymentDate:        payment.PaymentDate.Format("2006-01-02"),
		RemainingPrincipal: loan.RemainingPrincipal,
		DueDate:            loan.DueDate.Format("2006-01-02"),
	}, nil
}

// PayLoanOffResult is the confirmation of a loan payoff
type PayLoanOffResult struct {
	LoanID          uint            `json:"loan_id"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	Status          string          `json:"status"`
}

// PayLoanOff settles the full remaining principal and closes the loan.
// No LoanPayment record is written for a payoff; the balance and status
// change are the whole audit trail. Idempotent from the second call on
// (the reported paid amount is then zero).
func (s *LoanService) PayLoanOff(ctx context.Context, loanID uint) (*PayLoanOffResult, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		s.countOp("pay_loan_off", "rejected")
		return nil, err
	}

	paidAmount := loan.RemainingPrincipal
	loan.RemainingPrincipal = decimal.Zero
	loan.Status = models.LoanStatusPaid

	if err := s.loanRepo.Update(ctx, loan); err != nil {
		s.countOp("pay_loan_off", "error")
		return nil, err
	}

	s.countOp("pay_loan_off", "ok")
	return &PayLoanOffResult{
		LoanID:          loan.ID,
		PaidAmount:      paidAmount,
		RemainingAmount: decimal.Zero,
		Status:          loan.Status,
	}, nil
}

// LateFeeResult is the confirmation of a late fee application
type LateFeeResult struct {
	LateFeeRate        decimal.Decimal `json:"late_fee_rate"`
	TotalLateFee       decimal.Decimal `json:"total_late_fee"`
	LateInterestTax    decimal.Decimal `json:"late_interest_tax"`
	LateDayCount       int64           `json:"late_day_count"`
	RemainingPrincipal decimal.Decimal `json:"remaining_principal"`
}

// CalculateLateFee applies the late fee of an overdue loan: base rate plus a
// 30% surcharge per late day, taxed, added onto the remaining principal.
// Each call re-applies the surcharge; there is no per-period idempotence
// guard. TODO: clarify with product whether repeated application within one
// overdue period should be rejected.
func (s *LoanService) CalculateLateFee(ctx context.Context, loanID uint) (*LateFeeResult, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		s.countOp("calculate_late_fee", "rejected")
		return nil, err
	}

	lateDayCount, err := s.validation.CheckDueDatePast(dateOnly(loan.DueDate), dateOnly(s.Now()))
	if err != nil {
		s.countOp("calculate_late_fee", "rejected")
		return nil, err
	}

	lateFeeRate := s.lending.InterestRate.Add(s.lending.InterestRate.Mul(lateSurcharge))

	totalLateFee := loan.PrincipalLoanAmount.
		Mul(decimal.NewFromInt(lateDayCount)).
		Mul(lateFeeRate).
		Div(daysPerMonth).
		Ceil()

	lateInterestTax := totalLateFee.Mul(s.lending.TaxRate)
	totalLateFee = totalLateFee.Add(lateInterestTax)

	remaining := loan.RemainingPrincipal.Add(totalLateFee)

	if err := s.validation.CheckLateFeeRateNotNegative(lateFeeRate); err != nil {
		s.countOp("calculate_late_fee", "rejected")
		return nil, err
	}
	if err := s.validation.CheckTotalLateFeePositive(totalLateFee); err != nil {
		s.countOp("calculate_late_fee", "rejected")
		return nil, err
	}
	if err := s.validation.CheckLateInterestTaxNotNegative(lateInterestTax); err != nil {
		s.countOp("calculate_late_fee", "rejected")
		return nil, err
	}
	if err := s.validation.CheckRemainingPrincipalPositive(remaining); err != nil {
		s.countOp("calculate_late_fee", "rejected")
		return nil, err
	}

	loan.Status = models.LoanStatusLate
	loan.RemainingPrincipal = remaining

	if err := s.loanRepo.Update(ctx, loan); err != nil {
		s.countOp("calculate_late_fee", "error")
		return nil, err
	}

	s.countOp("calculate_late_fee", "ok")
	return &LateFeeResult{
		LateFeeRate:        lateFeeRate,
		TotalLateFee:       totalLateFee,
		LateInterestTax:    lateInterestTax,
		LateDayCount:       lateDayCount,
		RemainingPrincipal: remaining,
	}, nil
}

// getLoan loads a loan or fails with the domain not-found error
func (s *LoanService) getLoan(ctx context.Context, id uint) (*models.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	return loan, nil
}

// cachedQuote tries the quote cache; failures count as misses
func (s *LoanService) cachedQuote(ctx context.Context, key string) (*LoanQuote, bool) {
	if s.quoteCache == nil {
		return nil, false
	}

	raw, ok := s.quoteCache.Get(ctx, key)
	if !ok {
		s.countCache("miss")
		return nil, false
	}

	var quote LoanQuote
	if err := json.Unmarshal([]byte(raw), &quote); err != nil {
		s.countCache("miss")
		return nil, false
	}

	s.countCache("hit")
	return &quote, true
}

// storeQuote writes a quote to the cache, best effort
func (s *LoanService) storeQuote(ctx context.Context, key string, quote *LoanQuote) {
	if s.quoteCache == nil {
		return
	}

	raw, err := json.Marshal(quote)
	if err != nil {
		return
	}
	_ = s.quoteCache.Set(ctx, key, string(raw))
}

func (s *LoanService) countOp(operation, outcome string) {
	if s.collector != nil {
		s.collector.LoanOperation(operation, outcome)
	}
}

func (s *LoanService) countCache(result string) {
	if s.collector != nil {
		s.collector.QuoteCacheResult(result)
	}
}

// dateOnly truncates a timestamp to its calendar date
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
