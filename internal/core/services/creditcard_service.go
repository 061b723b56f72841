package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"onlinebank-api/internal/adapters/persistence/models"
	"onlinebank-api/internal/adapters/persistence/repositories"
	"onlinebank-api/internal/core/domain"
	"onlinebank-api/internal/pkg/pagination"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// cardIssuePrefix is the issuer identification number of generated cards
const cardIssuePrefix = "540667"

// CreditCardService handles credit card business logic
type CreditCardService struct {
	cardRepo     repositories.CreditCardRepository
	activityRepo repositories.CardActivityRepository
	customerRepo repositories.CustomerRepository

	// Now is the clock used for cutoff/expire dates; overridable in tests.
	Now func() time.Time
}

// NewCreditCardService creates a new credit card service
func NewCreditCardService(
	cardRepo repositories.CreditCardRepository,
	activityRepo repositories.CardActivityRepository,
	customerRepo repositories.CustomerRepository,
) *CreditCardService {
	return &CreditCardService{
		cardRepo:     cardRepo,
		activityRepo: activityRepo,
		customerRepo: customerRepo,
		Now:          time.Now,
	}
}

// ListCards lists all active credit cards
func (s *CreditCardService) ListCards(ctx context.Context) ([]*models.CreditCard, error) {
	return s.cardRepo.ListActive(ctx)
}

// GetCard gets a credit card by ID
func (s *CreditCardService) GetCard(ctx context.Context, id uint) (*models.CreditCard, error) {
	card, err := s.cardRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCreditCardNotFound
		}
		return nil, err
	}
	return card, nil
}

// IssueCardInput represents a card issuance request
type IssueCardInput struct {
	CustomerID uint            `json:"customer_id" validate:"required"`
	TotalLimit decimal.Decimal `json:"total_limit" validate:"required"`
}

// IssueCard creates a new credit card for a customer. The card number and
// CVV are generated; the available limit starts at the full limit.
func (s *CreditCardService) IssueCard(ctx context.Context, input *IssueCardInput) (*models.CreditCard, error) {
	if input == nil {
		return nil, fmt.Errorf("card request is required: %w", domain.ErrInvalidInput)
	}
	if !input.TotalLimit.IsPositive() {
		return nil, fmt.Errorf("total limit must be positive: %w", domain.ErrInvalidInput)
	}

	exists, err := s.customerRepo.Exists(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrCustomerNotFound
	}

	cardNo, err := s.generateCardNo(ctx)
	if err != nil {
		return nil, err
	}
	cvv, err := randomDigits(3)
	if err != nil {
		return nil, err
	}

	today := dateOnly(s.Now())

	card := &models.CreditCard{
		CustomerID:     input.CustomerID,
		CardNo:         cardNo,
		CVVNo:          cvv,
		TotalLimit:     input.TotalLimit,
		AvailableLimit: input.TotalLimit,
		Debt:           decimal.Zero,
		CutOffDate:     today.AddDate(0, 1, 0),
		ExpireDate:     today.AddDate(4, 0, 0),
		Status:         models.CardStatusActive,
	}

	if err := s.cardRepo.Create(ctx, card); err != nil {
		return nil, err
	}

	return card, nil
}

// CancelCard cancels a credit card by flipping its status. Canceling an
// already canceled card is a no-op.
func (s *CreditCardService) CancelCard(ctx context.Context, id uint) error {
	card, err := s.GetCard(ctx, id)
	if err != nil {
		return err
	}

	if card.Status == models.CardStatusCanceled {
		return nil
	}

	card.Status = models.CardStatusCanceled
	return s.cardRepo.Update(ctx, card)
}

// SpendInput represents a card spend request
type SpendInput struct {
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Description string          `json:"description,omitempty"`
}

// Spend records a purchase on a card: debt grows, available limit shrinks.
func (s *CreditCardService) Spend(ctx context.Context, cardID uint, input *SpendInput) (*models.CreditCardActivity, error) {
	if input == nil || !input.Amount.IsPositive() {
		return nil, fmt.Errorf("spend amount must be positive: %w", domain.ErrInvalidInput)
	}

	card, err := s.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card.Status != models.CardStatusActive {
		return nil, fmt.Errorf("card is not active: %w", domain.ErrInvalidState)
	}
	if input.Amount.GreaterThan(card.AvailableLimit) {
		return nil, fmt.Errorf("spend of %s exceeds available limit %s: %w",
			input.Amount.String(), card.AvailableLimit.String(), domain.ErrCardLimitExceeded)
	}

	card.Debt = card.Debt.Add(input.Amount)
	card.AvailableLimit = card.AvailableLimit.Sub(input.Amount)

	activity := &models.CreditCardActivity{
		CreditCardID: card.ID,
		Amount:       input.Amount,
		ActivityType: models.ActivityTypeSpend,
		Description:  input.Description,
		ActivityDate: dateOnly(s.Now()),
	}

	if err := s.cardRepo.Update(ctx, card); err != nil {
		return nil, err
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		return nil, err
	}

	return activity, nil
}

// ActivitiesByAmountInterval lists activities with amount within [min, max]
func (s *CreditCardService) ActivitiesByAmountInterval(ctx context.Context, min, max decimal.Decimal) ([]*models.CreditCardActivity, error) {
	if min.GreaterThan(max) {
		return nil, fmt.Errorf("min amount greater than max amount: %w", domain.ErrInvalidInput)
	}
	return s.activityRepo.ListByAmountInterval(ctx, min, max)
}

// ActivitiesBetweenDates lists a card's activities in a date range, paginated
func (s *CreditCardService) ActivitiesBetweenDates(ctx context.Context, cardID uint, start, end time.Time, params *pagination.Params) ([]*models.CreditCardActivity, int64, error) {
	if end.Before(start) {
		return nil, 0, fmt.Errorf("end date before start date: %w", domain.ErrInvalidInput)
	}

	if _, err := s.GetCard(ctx, cardID); err != nil {
		return nil, 0, err
	}

	return s.activityRepo.ListByCardBetweenDates(ctx, cardID, start, end, params.Offset, params.Limit)
}

// ActivityAnalysis reports min/max/avg amounts and counts per activity type
func (s *CreditCardService) ActivityAnalysis(ctx context.Context) ([]*models.ActivityAnalysis, error) {
	return s.activityRepo.Analyze(ctx)
}

// generateCardNo produces an unused 16-digit card number
func (s *CreditCardService) generateCardNo(ctx context.Context) (string, error) {
	// A clash on 10 random digits is near impossible; retry a few times anyway.
	for i := 0; i < 5; i++ {
		suffix, err := randomDigits(10)
		if err != nil {
			return "", err
		}
		cardNo := cardIssuePrefix + suffix

		taken, err := s.cardRepo.ExistsByCardNo(ctx, cardNo)
		if err != nil {
			return "", err
		}
		if !taken {
			return cardNo, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique card number")
}

// randomDigits generates a cryptographically secure digit string
func randomDigits(length int) (string, error) {
	digits := make([]byte, length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
