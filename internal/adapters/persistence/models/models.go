package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ============================================================
// Auth & Staff Tables
// ============================================================

// User represents a back-office staff account
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'OFFICER'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Customer Table
// ============================================================

// Customer represents a bank customer
type Customer struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	FirstName     string          `gorm:"size:100;not null" json:"first_name"`
	LastName      string          `gorm:"size:100;not null" json:"last_name"`
	IdentityNo    string          `gorm:"uniqueIndex;size:20;not null" json:"identity_no"`
	Email         string          `gorm:"size:100" json:"email"`
	MonthlySalary decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"monthly_salary"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Customer) TableName() string {
	return "customers"
}

// ============================================================
// Loan Tables
// ============================================================

// Loan status values. Transitions are one-way:
// CONTINUING→LATE, CONTINUING→PAID, LATE→PAID.
const (
	LoanStatusContinuing = "CONTINUING"
	LoanStatusLate       = "LATE"
	LoanStatusPaid       = "PAID"
)

// Loan represents an active or historical credit obligation
type Loan struct {
	ID                       uint            `gorm:"primaryKey" json:"id"`
	CustomerID               uint            `gorm:"index;not null" json:"customer_id"`
	PrincipalLoanAmount      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"principal_loan_amount"`
	RemainingPrincipal       decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"remaining_principal"`
	MonthlyInstallmentAmount decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"monthly_installment_amount"`
	InterestToBePaid         decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"interest_to_be_paid"`
	InstallmentCount         int             `gorm:"not null" json:"installment_count"`
	DueDate                  time.Time       `gorm:"type:date;not null" json:"due_date"`
	Status                   string          `gorm:"size:20;not null;index" json:"status"`
	CreatedAt                time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt                gorm.DeletedAt  `gorm:"index" json:"-"`

	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

func (Loan) TableName() string {
	return "loans"
}

// LoanResponse DTO
type LoanResponse struct {
	ID                       uint            `json:"id"`
	CustomerID               uint            `json:"customer_id"`
	PrincipalLoanAmount      decimal.Decimal `json:"principal_loan_amount"`
	RemainingPrincipal       decimal.Decimal `json:"remaining_principal"`
	MonthlyInstallmentAmount decimal.Decimal `json:"monthly_installment_amount"`
	InterestToBePaid         decimal.Decimal `json:"interest_to_be_paid"`
	InstallmentCount         int             `json:"installment_count"`
	DueDate                  string          `json:"due_date"`
	Status                   string          `json:"status"`
	CreatedAt                time.Time       `json:"created_at"`
}

func (l *Loan) ToResponse() *LoanResponse {
	return &LoanResponse{
		ID:                       l.ID,
		CustomerID:               l.CustomerID,
		PrincipalLoanAmount:      l.PrincipalLoanAmount,
		RemainingPrincipal:       l.RemainingPrincipal,
		MonthlyInstallmentAmount: l.MonthlyInstallmentAmount,
		InterestToBePaid:         l.InterestToBePaid,
		InstallmentCount:         l.InstallmentCount,
		DueDate:                  l.DueDate.Format("2006-01-02"),
		Status:                   l.Status,
		CreatedAt:                l.CreatedAt,
	}
}

// LoanPayment is an immutable record of a single installment payment.
// Rows are only ever inserted, never updated or deleted.
type LoanPayment struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	LoanID        uint            `gorm:"index;not null" json:"loan_id"`
	PaymentAmount decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"payment_amount"`
	PaymentDate   time.Time       `gorm:"type:date;not null" json:"payment_date"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`

	Loan *Loan `gorm:"foreignKey:LoanID" json:"-"`
}

func (LoanPayment) TableName() string {
	return "loan_payments"
}

// ============================================================
// Credit Card Tables
// ============================================================

// Credit card status values
const (
	CardStatusActive   = "ACTIVE"
	CardStatusCanceled = "CANCELED"
)

// Credit card activity types
const (
	ActivityTypeSpend   = "SPEND"
	ActivityTypeRefund  = "REFUND"
	ActivityTypePayment = "PAYMENT"
)

// CreditCard represents a customer credit card
type CreditCard struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	CustomerID     uint            `gorm:"index;not null" json:"customer_id"`
	CardNo         string          `gorm:"uniqueIndex;size:16;not null" json:"card_no"`
	CVVNo          string          `gorm:"size:3;not null" json:"-"`
	TotalLimit     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total_limit"`
	AvailableLimit decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"available_limit"`
	Debt           decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"debt"`
	CutOffDate     time.Time       `gorm:"type:date;not null" json:"cut_off_date"`
	ExpireDate     time.Time       `gorm:"type:date;not null" json:"expire_date"`
	Status         string          `gorm:"size:20;not null;index" json:"status"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`

	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

func (CreditCard) TableName() string {
	return "credit_cards"
}

// CreditCardResponse DTO with masked card number
type CreditCardResponse struct {
	ID             uint            `json:"id"`
	CustomerID     uint            `json:"customer_id"`
	CardNo         string          `json:"card_no"`
	TotalLimit     decimal.Decimal `json:"total_limit"`
	AvailableLimit decimal.Decimal `json:"available_limit"`
	Debt           decimal.Decimal `json:"debt"`
	CutOffDate     string          `json:"cut_off_date"`
	ExpireDate     string          `json:"expire_date"`
	Status         string          `json:"status"`
}

func (c *CreditCard) ToResponse() *CreditCardResponse {
	return &CreditCardResponse{
		ID:             c.ID,
		CustomerID:     c.CustomerID,
		CardNo:         maskCardNo(c.CardNo),
		TotalLimit:     c.TotalLimit,
		AvailableLimit: c.AvailableLimit,
		Debt:           c.Debt,
		CutOffDate:     c.CutOffDate.Format("2006-01-02"),
		ExpireDate:     c.ExpireDate.Format("2006-01-02"),
		Status:         c.Status,
	}
}

// maskCardNo keeps the first 6 and last 4 digits visible
func maskCardNo(cardNo string) string {
	if len(cardNo) != 16 {
		return cardNo
	}
	return cardNo[:6] + "******" + cardNo[12:]
}

// CreditCardActivity represents a single card movement
type CreditCardActivity struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	CreditCardID uint            `gorm:"index;not null" json:"credit_card_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	ActivityType string          `gorm:"size:20;not null;index" json:"activity_type"`
	Description  string          `gorm:"size:200" json:"description"`
	ActivityDate time.Time       `gorm:"type:date;not null;index" json:"activity_date"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`

	CreditCard *CreditCard `gorm:"foreignKey:CreditCardID" json:"-"`
}

func (CreditCardActivity) TableName() string {
	return "credit_card_activities"
}

// ActivityAnalysis is the per-type aggregate projection used by the
// activity analysis report. Populated by a grouped query, not a table.
type ActivityAnalysis struct {
	ActivityType  string          `json:"activity_type"`
	MinAmount     decimal.Decimal `json:"min_amount"`
	MaxAmount     decimal.Decimal `json:"max_amount"`
	AvgAmount     decimal.Decimal `json:"avg_amount"`
	ActivityCount int64           `json:"activity_count"`
}

// AutoMigrate runs database migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Customer{},
		&Loan{},
		&LoanPayment{},
		&CreditCard{},
		&CreditCardActivity{},
	)
}
