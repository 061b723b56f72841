package services

import (
	"context"

	"onlinebank-api/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardService aggregates back-office statistics straight off the
// database; it is read-only.
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// DashboardData represents the back-office overview
type DashboardData struct {
	// Customers
	TotalCustomers int64 `json:"total_customers"`

	// Loans
	TotalLoans           int64           `json:"total_loans"`
	ContinuingLoans      int64           `json:"continuing_loans"`
	LateLoans            int64           `json:"late_loans"`
	PaidLoans            int64           `json:"paid_loans"`
	OutstandingPrincipal decimal.Decimal `json:"outstanding_principal"`
	CollectedPayments    decimal.Decimal `json:"collected_payments"`

	// Credit cards
	ActiveCards   int64           `json:"active_cards"`
	CanceledCards int64           `json:"canceled_cards"`
	TotalCardDebt decimal.Decimal `json:"total_card_debt"`

	// Card activity
	ActivityTotals []ActivityTotal `json:"activity_totals"`
}

// ActivityTotal represents activity volume per type
type ActivityTotal struct {
	ActivityType string          `json:"activity_type"`
	Count        int64           `json:"count"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// GetDashboard returns the back-office overview
func (s *DashboardService) GetDashboard(ctx context.Context) (*DashboardData, error) {
	data := &DashboardData{}

	s.db.WithContext(ctx).Model(&models.Customer{}).Count(&data.TotalCustomers)

	// Loan counts by status
	s.db.WithContext(ctx).Model(&models.Loan{}).Count(&data.TotalLoans)
	s.db.WithContext(ctx).Model(&models.Loan{}).
		Where("status = ?", models.LoanStatusContinuing).Count(&data.ContinuingLoans)
	s.db.WithContext(ctx).Model(&models.Loan{}).
		Where("status = ?", models.LoanStatusLate).Count(&data.LateLoans)
	s.db.WithContext(ctx).Model(&models.Loan{}).
		Where("status = ?", models.LoanStatusPaid).Count(&data.PaidLoans)

	// Balances
	var outstanding decimal.NullDecimal
	s.db.WithContext(ctx).Model(&models.Loan{}).
		Where("status <> ?", models.LoanStatusPaid).
		Select("COALESCE(SUM(remaining_principal), 0)").
		Scan(&outstanding)
	data.OutstandingPrincipal = outstanding.Decimal

	var collected decimal.NullDecimal
	s.db.WithContext(ctx).Model(&models.LoanPayment{}).
		Select("COALESCE(SUM(payment_amount), 0)").
		Scan(&collected)
	data.CollectedPayments = collected.Decimal

	// Cards
	s.db.WithContext(ctx).Model(&models.CreditCard{}).
		Where("status = ?", models.CardStatusActive).Count(&data.ActiveCards)
	s.db.WithContext(ctx).Model(&models.CreditCard{}).
		Where("status = ?", models.CardStatusCanceled).Count(&data.CanceledCards)

	var cardDebt decimal.NullDecimal
	s.db.WithContext(ctx).Model(&models.CreditCard{}).
		Where("status = ?", models.CardStatusActive).
		Select("COALESCE(SUM(debt), 0)").
		Scan(&cardDebt)
	data.TotalCardDebt = cardDebt.Decimal

	// Activity volume per type
	err := s.db.WithContext(ctx).Model(&models.CreditCardActivity{}).
		Select("activity_type, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total_amount").
		Group("activity_type").
		Order("activity_type").
		Scan(&data.ActivityTotals).Error
	if err != nil {
		return nil, err
	}

	return data, nil
}
