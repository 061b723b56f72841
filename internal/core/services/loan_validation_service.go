package services

import (
	"context"
	"fmt"
	"time"

	"onlinebank-api/internal/adapters/persistence/repositories"
	"onlinebank-api/internal/core/domain"

	"github.com/shopspring/decimal"
)

// LoanValidationService is the precondition/postcondition battery of the loan
// engine. Every check either passes silently or returns an error wrapping one
// of the domain sentinels; no check mutates state.
type LoanValidationService struct {
	customerRepo repositories.CustomerRepository
}

// NewLoanValidationService creates a new loan validation service
func NewLoanValidationService(customerRepo repositories.CustomerRepository) *LoanValidationService {
	return &LoanValidationService{customerRepo: customerRepo}
}

// CheckCalculationParameters verifies the quote inputs are present and positive
func (s *LoanValidationService) CheckCalculationParameters(installmentCount int, principal decimal.Decimal) error {
	if installmentCount <= 0 {
		return fmt.Errorf("installment count must be positive: %w", domain.ErrInvalidInput)
	}
	if !principal.IsPositive() {
		return fmt.Errorf("principal loan amount must be positive: %w", domain.ErrInvalidInput)
	}
	return nil
}

// CheckInterestRateNotNegative guards against a misconfigured base rate
func (s *LoanValidationService) CheckInterestRateNotNegative(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return fmt.Errorf("interest rate is negative: %w", domain.ErrInvalidState)
	}
	return nil
}

// CheckInstallmentAmountPositive verifies a computed installment amount
func (s *LoanValidationService) CheckInstallmentAmountPositive(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("monthly installment amount is not positive: %w", domain.ErrInvalidState)
	}
	return nil
}

// CheckTotalPaymentPositive verifies a computed total payment
func (s *LoanValidationService) CheckTotalPaymentPositive(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("total payment is not positive: %w", domain.ErrInvalidState)
	}
	return nil
}

// CheckInterestNotNegative verifies a computed total interest
func (s *LoanValidationService) CheckInterestNotNegative(totalInterest decimal.Decimal) error {
	if totalInterest.IsNegative() {
		return fmt.Errorf("total interest is negative: %w", domain.ErrInvalidState)
	}
	return nil
}

// CheckPrincipalPositive verifies the requested principal
func (s *LoanValidationService) CheckPrincipalPositive(principal decimal.Decimal) error {
	if !principal.IsPositive() {
		return fmt.Errorf("principal loan amount must be positive: %w", domain.ErrInvalidInput)
	}
	return nil
}

// CheckCustomerExists verifies the customer is on record
func (s *LoanValidationService) CheckCustomerExists(ctx context.Context, customerID uint) error {
	exists, err := s.customerRepo.Exists(ctx, customerID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrCustomerNotFound
	}
	return nil
}

// CheckLoanAmountWithinLimit enforces the affordability ceiling at origination
func (s *LoanValidationService) CheckLoanAmountWithinLimit(principal, maxLoanAmount decimal.Decimal) error {
	if principal.GreaterThan(maxLoanAmount) {
		return fmt.Errorf("principal %s exceeds the maximum loan amount %s: %w",
			principal.String(), maxLoanAmount.String(), domain.ErrLimitExceeded)
	}
	return nil
}

// CheckRemainingPrincipalNotNegative guards a loan against being overpaid
func (s *LoanValidationService) CheckRemainingPrincipalNotNegative(remaining decimal.Decimal) error {
	if remaining.IsNegative() {
		return fmt.Errorf("%s: %w", domain.ErrLoanOverpaid, domain.ErrInvalidState)
	}
	return nil
}

// CheckRemainingPrincipalPositive verifies the post-surcharge balance
func (s *LoanValidationService) CheckRemainingPrincipalPositive(remaining decimal.Decimal) error {
	if !remaining.IsPositive() {
		return fmt.Errorf("remaining principal is not positive: %w", domain.ErrInvalidState)
	}
	return nil
}

// CheckDueDatePast verifies the due date is strictly in the past relative to
// today and returns the whole number of late days. Both arguments are expected
// to be dates (midnight-truncated).
func (s *LoanValidationService) CheckDueDatePast(dueDate, today time.Time) (int64, error) {
	if !dueDate.Before(today) {
		return 0, domain.ErrLoanNotYetDue
	}
	lateDays := int64(today.Sub(dueDate) / (24 * time.Hour))
	if lateDays <= 0 {
		return 0, domain.ErrLoanNotYetDue
	}
	return lateDays, nil
}

// CheckLateFeeRateNotNegative verifies the computed late fee rate
func (s *LoanValidationService) CheckLateFeeRateNotNegative(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return fmt.Errorf("late fee rate is negative: %w", domain.ErrInvalidState)
	}
	return nil
}

// CheckTotalLateFeePositive verifies the computed late fee
func (s *LoanValidationService) CheckTotalLateFeePositive(totalLateFee decimal.Decimal) error {
	if !totalLateFee.IsPositive() {
		return fmt.Errorf("total late fee is not positive: %w", domain.ErrInvalidState)
	}
	return nil
}

// CheckLateInterestTaxNotNegative verifies the computed late interest tax
func (s *LoanValidationService) CheckLateInterestTaxNotNegative(tax decimal.Decimal) error {
	if tax.IsNegative() {
		return fmt.Errorf("late interest tax is negative: %w", domain.ErrInvalidState)
	}
	return nil
}
