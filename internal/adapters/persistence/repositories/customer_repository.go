package repositories

import (
	"context"

	"onlinebank-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// customerRepository implements CustomerRepository interface
type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

// Create creates a new customer
func (r *customerRepository) Create(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

// GetByID gets a customer by ID
func (r *customerRepository) GetByID(ctx context.Context, id uint) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).First(&customer, id).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// List lists customers with pagination
func (r *customerRepository) List(ctx context.Context, offset, limit int) ([]*models.Customer, int64, error) {
	var customers []*models.Customer
	var total int64

	r.db.WithContext(ctx).Model(&models.Customer{}).Count(&total)

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&customers).Error

	return customers, total, err
}

// Exists checks whether a customer exists
func (r *customerRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

// ExistsByIdentityNo checks whether an identity number is already registered
func (r *customerRepository) ExistsByIdentityNo(ctx context.Context, identityNo string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("identity_no = ?", identityNo).
		Count(&count).Error
	return count > 0, err
}
