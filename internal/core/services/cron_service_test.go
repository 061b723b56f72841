package services

import (
	"context"
	"testing"
	"time"

	"onlinebank-api/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanOverdueLoansMarksLate(t *testing.T) {
	loanRepo := newFakeLoanRepo()

	overdue := seedLoan(t, loanRepo, &models.Loan{
		CustomerID:               1,
		PrincipalLoanAmount:      decimal.NewFromInt(10000),
		RemainingPrincipal:       decimal.NewFromInt(5000),
		MonthlyInstallmentAmount: decimal.NewFromInt(2997),
		InstallmentCount:         12,
		DueDate:                  time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		Status:                   models.LoanStatusContinuing,
	})
	current := seedLoan(t, loanRepo, &models.Loan{
		CustomerID:               1,
		PrincipalLoanAmount:      decimal.NewFromInt(10000),
		RemainingPrincipal:       decimal.NewFromInt(5000),
		MonthlyInstallmentAmount: decimal.NewFromInt(2997),
		InstallmentCount:         12,
		DueDate:                  time.Now().AddDate(1, 0, 0),
		Status:                   models.LoanStatusContinuing,
	})
	paid := seedLoan(t, loanRepo, &models.Loan{
		CustomerID:               1,
		PrincipalLoanAmount:      decimal.NewFromInt(10000),
		RemainingPrincipal:       decimal.Zero,
		MonthlyInstallmentAmount: decimal.NewFromInt(2997),
		InstallmentCount:         12,
		DueDate:                  time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		Status:                   models.LoanStatusPaid,
	})

	svc := NewCronService(loanRepo, nil)
	require.NoError(t, svc.ScanOverdueLoans(context.Background()))

	got, err := loanRepo.GetByID(context.Background(), overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusLate, got.Status)
	assert.True(t, got.RemainingPrincipal.Equal(decimal.NewFromInt(5000)), "scan never touches balances")

	got, err = loanRepo.GetByID(context.Background(), current.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusContinuing, got.Status)

	got, err = loanRepo.GetByID(context.Background(), paid.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusPaid, got.Status)
}
