package repositories

import (
	"context"
	"time"

	"onlinebank-api/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// creditCardRepository implements CreditCardRepository interface
type creditCardRepository struct {
	db *gorm.DB
}

// NewCreditCardRepository creates a new credit card repository
func NewCreditCardRepository(db *gorm.DB) CreditCardRepository {
	return &creditCardRepository{db: db}
}

// Create creates a new credit card
func (r *creditCardRepository) Create(ctx context.Context, card *models.CreditCard) error {
	return r.db.WithContext(ctx).Create(card).Error
}

// GetByID gets a credit card by ID
func (r *creditCardRepository) GetByID(ctx context.Context, id uint) (*models.CreditCard, error) {
	var card models.CreditCard
	err := r.db.WithContext(ctx).First(&card, id).Error
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// ListActive lists all active credit cards
func (r *creditCardRepository) ListActive(ctx context.Context) ([]*models.CreditCard, error) {
	var cards []*models.CreditCard
	err := r.db.WithContext(ctx).
		Where("status = ?", models.CardStatusActive).
		Order("created_at DESC").
		Find(&cards).Error
	return cards, err
}

// Update updates a credit card
func (r *creditCardRepository) Update(ctx context.Context, card *models.CreditCard) error {
	return r.db.WithContext(ctx).Save(card).Error
}

// ExistsByCardNo checks whether a card number is already in use
func (r *creditCardRepository) ExistsByCardNo(ctx context.Context, cardNo string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CreditCard{}).
		Where("card_no = ?", cardNo).
		Count(&count).Error
	return count > 0, err
}

// cardActivityRepository implements CardActivityRepository interface
type cardActivityRepository struct {
	db *gorm.DB
}

// NewCardActivityRepository creates a new card activity repository
func NewCardActivityRepository(db *gorm.DB) CardActivityRepository {
	return &cardActivityRepository{db: db}
}

// Create creates a new activity record
func (r *cardActivityRepository) Create(ctx context.Context, activity *models.CreditCardActivity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

// ListByAmountInterval lists activities whose amount is within [min, max]
func (r *cardActivityRepository) ListByAmountInterval(ctx context.Context, min, max decimal.Decimal) ([]*models.CreditCardActivity, error) {
	var activities []*models.CreditCardActivity
	err := r.db.WithContext(ctx).
		Where("amount BETWEEN ? AND ?", min, max).
		Order("activity_date DESC").
		Find(&activities).Error
	return activities, err
}

// ListByCardBetweenDates lists a card's activities in a date range with pagination
func (r *cardActivityRepository) ListByCardBetweenDates(ctx context.Context, cardID uint, start, end time.Time, offset, limit int) ([]*models.CreditCardActivity, int64, error) {
	var activities []*models.CreditCardActivity
	var total int64

	query := r.db.WithContext(ctx).Model(&models.CreditCardActivity{}).
		Where("credit_card_id = ? AND activity_date BETWEEN ? AND ?", cardID, start, end)

	query.Count(&total)

	err := query.
		Order("activity_date DESC").
		Offset(offset).
		Limit(limit).
		Find(&activities).Error

	return activities, total, err
}

// Analyze returns min/max/avg amount and count grouped by activity type
func (r *cardActivityRepository) Analyze(ctx context.Context) ([]*models.ActivityAnalysis, error) {
	var analysis []*models.ActivityAnalysis
	err := r.db.WithContext(ctx).Model(&models.CreditCardActivity{}).
		Select("activity_type, MIN(amount) AS min_amount, MAX(amount) AS max_amount, AVG(amount) AS avg_amount, COUNT(*) AS activity_count").
		Group("activity_type").
		Order("activity_type").
		Scan(&analysis).Error
	return analysis, err
}
