package repositories

import (
	"context"
	"time"

	"onlinebank-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// loanRepository implements LoanRepository interface
type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

// Create creates a new loan
func (r *loanRepository) Create(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

// GetByID gets a loan by ID
func (r *loanRepository) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// Update updates a loan
func (r *loanRepository) Update(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Save(loan).Error
}

// ListByCustomer lists loans of a customer, newest first
func (r *loanRepository) ListByCustomer(ctx context.Context, customerID uint) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&loans).Error
	return loans, err
}

// ListOverdue lists continuing loans whose due date is strictly before asOf
func (r *loanRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Where("status = ? AND due_date < ?", models.LoanStatusContinuing, asOf).
		Find(&loans).Error
	return loans, err
}

// loanPaymentRepository implements LoanPaymentRepository interface
type loanPaymentRepository struct {
	db *gorm.DB
}

// NewLoanPaymentRepository creates a new loan payment repository
func NewLoanPaymentRepository(db *gorm.DB) LoanPaymentRepository {
	return &loanPaymentRepository{db: db}
}

// Create inserts a payment record
func (r *loanPaymentRepository) Create(ctx context.Context, payment *models.LoanPayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// ListByLoan lists payments of a loan, newest first
func (r *loanPaymentRepository) ListByLoan(ctx context.Context, loanID uint) ([]*models.LoanPayment, error) {
	var payments []*models.LoanPayment
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("payment_date DESC").
		Find(&payments).Error
	return payments, err
}
