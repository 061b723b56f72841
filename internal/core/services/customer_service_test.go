package services

import (
	"context"
	"testing"

	"onlinebank-api/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCustomer(t *testing.T) {
	svc := NewCustomerService(newFakeCustomerRepo())

	customer, err := svc.Create(context.Background(), &CreateCustomerInput{
		FirstName:     "Ayşe",
		LastName:      "Yılmaz",
		IdentityNo:    "10000000146",
		Email:         "ayse.yilmaz@example.com",
		MonthlySalary: decimal.NewFromInt(25000),
	})
	require.NoError(t, err)
	assert.NotZero(t, customer.ID)

	got, err := svc.GetByID(context.Background(), customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "10000000146", got.IdentityNo)
}

func TestCreateCustomerRejectsDuplicateIdentity(t *testing.T) {
	svc := NewCustomerService(newFakeCustomerRepo())

	input := &CreateCustomerInput{
		FirstName:     "Mehmet",
		LastName:      "Demir",
		IdentityNo:    "10000000244",
		MonthlySalary: decimal.NewFromInt(18000),
	}

	_, err := svc.Create(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrDuplicateEntry)
}

func TestCreateCustomerValidatesInput(t *testing.T) {
	svc := NewCustomerService(newFakeCustomerRepo())

	_, err := svc.Create(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Create(context.Background(), &CreateCustomerInput{
		FirstName:     "",
		LastName:      "Demir",
		IdentityNo:    "10000000244",
		MonthlySalary: decimal.NewFromInt(18000),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Create(context.Background(), &CreateCustomerInput{
		FirstName:     "Mehmet",
		LastName:      "Demir",
		IdentityNo:    "10000000244",
		MonthlySalary: decimal.NewFromInt(-1),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetCustomerNotFound(t *testing.T) {
	svc := NewCustomerService(newFakeCustomerRepo())

	_, err := svc.GetByID(context.Background(), 123)
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
}
