package services

import (
	"context"
	"errors"
	"fmt"

	"onlinebank-api/internal/adapters/persistence/models"
	"onlinebank-api/internal/adapters/persistence/repositories"
	"onlinebank-api/internal/core/domain"
	"onlinebank-api/internal/pkg/pagination"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CustomerService handles customer records
type CustomerService struct {
	customerRepo repositories.CustomerRepository
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo repositories.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// CreateCustomerInput represents a new customer record
type CreateCustomerInput struct {
	FirstName     string          `json:"first_name" validate:"required"`
	LastName      string          `json:"last_name" validate:"required"`
	IdentityNo    string          `json:"identity_no" validate:"required"`
	Email         string          `json:"email,omitempty"`
	MonthlySalary decimal.Decimal `json:"monthly_salary" validate:"required"`
}

// Create registers a new customer
func (s *CustomerService) Create(ctx context.Context, input *CreateCustomerInput) (*models.Customer, error) {
	if input == nil {
		return nil, fmt.Errorf("customer data is required: %w", domain.ErrInvalidInput)
	}
	if input.FirstName == "" || input.LastName == "" || input.IdentityNo == "" {
		return nil, fmt.Errorf("name and identity number are required: %w", domain.ErrInvalidInput)
	}
	if input.MonthlySalary.IsNegative() {
		return nil, fmt.Errorf("monthly salary cannot be negative: %w", domain.ErrInvalidInput)
	}

	taken, err := s.customerRepo.ExistsByIdentityNo(ctx, input.IdentityNo)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("identity number already registered: %w", domain.ErrDuplicateEntry)
	}

	customer := &models.Customer{
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		IdentityNo:    input.IdentityNo,
		Email:         input.Email,
		MonthlySalary: input.MonthlySalary,
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

// GetByID gets a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, id uint) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}
	return customer, nil
}

// List lists customers with pagination
func (s *CustomerService) List(ctx context.Context, params *pagination.Params) ([]*models.Customer, int64, error) {
	return s.customerRepo.List(ctx, params.Offset, params.Limit)
}
