package repositories

import (
	"context"
	"time"

	"onlinebank-api/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
)

// CustomerRepository defines customer repository interface
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id uint) (*models.Customer, error)
	List(ctx context.Context, offset, limit int) ([]*models.Customer, int64, error)
	Exists(ctx context.Context, id uint) (bool, error)
	ExistsByIdentityNo(ctx context.Context, identityNo string) (bool, error)
}

// LoanRepository defines loan repository interface
type LoanRepository interface {
	Create(ctx context.Context, loan *models.Loan) error
	GetByID(ctx context.Context, id uint) (*models.Loan, error)
	Update(ctx context.Context, loan *models.Loan) error
	ListByCustomer(ctx context.Context, customerID uint) ([]*models.Loan, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]*models.Loan, error)
}

// LoanPaymentRepository defines loan payment repository interface.
// Payments are append-only; there is deliberately no update or delete.
type LoanPaymentRepository interface {
	Create(ctx context.Context, payment *models.LoanPayment) error
	ListByLoan(ctx context.Context, loanID uint) ([]*models.LoanPayment, error)
}

// CreditCardRepository defines credit card repository interface
type CreditCardRepository interface {
	Create(ctx context.Context, card *models.CreditCard) error
	GetByID(ctx context.Context, id uint) (*models.CreditCard, error)
	ListActive(ctx context.Context) ([]*models.CreditCard, error)
	Update(ctx context.Context, card *models.CreditCard) error
	ExistsByCardNo(ctx context.Context, cardNo string) (bool, error)
}

// CardActivityRepository defines credit card activity repository interface
type CardActivityRepository interface {
	Create(ctx context.Context, activity *models.CreditCardActivity) error
	ListByAmountInterval(ctx context.Context, min, max decimal.Decimal) ([]*models.CreditCardActivity, error)
	ListByCardBetweenDates(ctx context.Context, cardID uint, start, end time.Time, offset, limit int) ([]*models.CreditCardActivity, int64, error)
	Analyze(ctx context.Context) ([]*models.ActivityAnalysis, error)
}

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
}

// QuoteCache is a best-effort cache for loan quotes. Implementations must
// degrade silently: a miss or an outage never fails the calling operation.
type QuoteCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string) error
}
