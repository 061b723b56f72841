package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"onlinebank-api/internal/adapters/persistence/models"
	"onlinebank-api/internal/config"
	"onlinebank-api/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ============================================================
// Fakes
// ============================================================

type fakeLoanRepo struct {
	loans  map[uint]*models.Loan
	nextID uint
}

func newFakeLoanRepo() *fakeLoanRepo {
	return &fakeLoanRepo{loans: make(map[uint]*models.Loan), nextID: 1}
}

func (r *fakeLoanRepo) Create(_ context.Context, loan *models.Loan) error {
	loan.ID = r.nextID
	r.nextID++
	stored := *loan
	r.loans[loan.ID] = &stored
	return nil
}

func (r *fakeLoanRepo) GetByID(_ context.Context, id uint) (*models.Loan, error) {
	loan, ok := r.loans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *loan
	return &copied, nil
}

func (r *fakeLoanRepo) Update(_ context.Context, loan *models.Loan) error {
	if _, ok := r.loans[loan.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *loan
	r.loans[loan.ID] = &stored
	return nil
}

func (r *fakeLoanRepo) ListByCustomer(_ context.Context, customerID uint) ([]*models.Loan, error) {
	var out []*models.Loan
	for _, loan := range r.loans {
		if loan.CustomerID == customerID {
			copied := *loan
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeLoanRepo) ListOverdue(_ context.Context, asOf time.Time) ([]*models.Loan, error) {
	var out []*models.Loan
	for _, loan := range r.loans {
		if loan.Status == models.LoanStatusContinuing && loan.DueDate.Before(asOf) {
			copied := *loan
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakePaymentRepo struct {
	payments []*models.LoanPayment
}

func (r *fakePaymentRepo) Create(_ context.Context, payment *models.LoanPayment) error {
	payment.ID = uint(len(r.payments) + 1)
	stored := *payment
	r.payments = append(r.payments, &stored)
	return nil
}

func (r *fakePaymentRepo) ListByLoan(_ context.Context, loanID uint) ([]*models.LoanPayment, error) {
	var out []*models.LoanPayment
	for _, p := range r.payments {
		if p.LoanID == loanID {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeCustomerRepo struct {
	customers map[uint]*models.Customer
}

func newFakeCustomerRepo(ids ...uint) *fakeCustomerRepo {
	repo := &fakeCustomerRepo{customers: make(map[uint]*models.Customer)}
	for _, id := range ids {
		repo.customers[id] = &models.Customer{ID: id}
	}
	return repo
}

func (r *fakeCustomerRepo) Create(_ context.Context, customer *models.Customer) error {
	customer.ID = uint(len(r.customers) + 1)
	r.customers[customer.ID] = customer
	return nil
}

func (r *fakeCustomerRepo) GetByID(_ context.Context, id uint) (*models.Customer, error) {
	customer, ok := r.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return customer, nil
}

func (r *fakeCustomerRepo) List(_ context.Context, _, _ int) ([]*models.Customer, int64, error) {
	var out []*models.Customer
	for _, c := range r.customers {
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

func (r *fakeCustomerRepo) Exists(_ context.Context, id uint) (bool, error) {
	_, ok := r.customers[id]
	return ok, nil
}

func (r *fakeCustomerRepo) ExistsByIdentityNo(_ context.Context, identityNo string) (bool, error) {
	for _, c := range r.customers {
		if c.IdentityNo == identityNo {
			return true, nil
		}
	}
	return false, nil
}

type fakeQuoteCache struct {
	entries map[string]string
	hits    int
	sets    int
}

func newFakeQuoteCache() *fakeQuoteCache {
	return &fakeQuoteCache{entries: make(map[string]string)}
}

func (c *fakeQuoteCache) Get(_ context.Context, key string) (string, bool) {
	value, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return value, ok
}

func (c *fakeQuoteCache) Set(_ context.Context, key, value string) error {
	c.entries[key] = value
	c.sets++
	return nil
}

// ============================================================
// Helpers
// ============================================================

func testLendingConfig(t *testing.T) config.LendingConfig {
	t.Helper()
	return config.LendingConfig{
		InterestRate:  decimal.RequireFromString("0.0159"),
		TaxRate:       decimal.RequireFromString("0.20"),
		AllocationFee: decimal.NewFromInt(45),
	}
}

// fixedNow is the deterministic clock used across the engine tests
var fixedNow = time.Date(2026, time.August, 29, 10, 30, 0, 0, time.UTC)

func newTestLoanService(t *testing.T, loanRepo *fakeLoanRepo, paymentRepo *fakePaymentRepo, customerRepo *fakeCustomerRepo) *LoanService {
	t.Helper()
	svc := NewLoanService(
		loanRepo,
		paymentRepo,
		NewLoanValidationService(customerRepo),
		nil,
		nil,
		testLendingConfig(t),
	)
	svc.Now = func() time.Time { return fixedNow }
	return svc
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	return decimal.RequireFromString(s)
}

// ============================================================
// CalculateLoan
// ============================================================

func TestCalculateLoanWorkedExample(t *testing.T) {
	svc := newTestLoanService(t, newFakeLoanRepo(), &fakePaymentRepo{}, newFakeCustomerRepo())

	quote, err := svc.CalculateLoan(context.Background(), 12, decimal.NewFromInt(10000))
	require.NoError(t, err)

	assert.True(t, quote.InterestRate.Equal(dec(t, "0.0159")), "interest rate %s", quote.InterestRate)
	assert.True(t, quote.TotalInterest.Equal(decimal.NewFromInt(25908)), "total interest %s", quote.TotalInterest)
	assert.True(t, quote.TotalPayment.Equal(decimal.NewFromInt(35953)), "total payment %s", quote.TotalPayment)
	assert.True(t, quote.MonthlyInstallmentAmount.Equal(decimal.NewFromInt(2997)), "monthly installment %s", quote.MonthlyInstallmentAmount)
	assert.True(t, quote.AnnualCostRate.Equal(dec(t, "2.5908")), "annual cost rate %s", quote.AnnualCostRate)
	assert.True(t, quote.AllocationFee.Equal(decimal.NewFromInt(45)), "allocation fee %s", quote.AllocationFee)
}

func TestCalculateLoanIsDeterministic(t *testing.T) {
	svc := newTestLoanService(t, newFakeLoanRepo(), &fakePaymentRepo{}, newFakeCustomerRepo())

	first, err := svc.CalculateLoan(context.Background(), 24, dec(t, "50000"))
	require.NoError(t, err)

	second, err := svc.CalculateLoan(context.Background(), 24, dec(t, "50000"))
	require.NoError(t, err)

	assert.True(t, first.TotalPayment.Equal(second.TotalPayment))
	assert.True(t, first.MonthlyInstallmentAmount.Equal(second.MonthlyInstallmentAmount))
	assert.True(t, first.TotalInterest.Equal(second.TotalInterest))
}

func TestCalculateLoanCoversPrincipal(t *testing.T) {
	// The ceiling on the installment must never let the schedule underpay
	// the total.
	svc := newTestLoanService(t, newFakeLoanRepo(), &fakePaymentRepo{}, newFakeCustomerRepo())

	cases := []struct {
		count     int
		principal string
	}{
		{3, "1000"},
		{12, "10000"},
		{36, "123456.78"},
		{48, "999999"},
	}

	for _, tc := range cases {
		quote, err := svc.CalculateLoan(context.Background(), tc.count, dec(t, tc.principal))
		require.NoError(t, err)

		scheduled := quote.MonthlyInstallmentAmount.Mul(decimal.NewFromInt(int64(tc.count)))
		assert.True(t, scheduled.GreaterThanOrEqual(quote.TotalPayment),
			"count=%d principal=%s: %s scheduled < %s total",
			tc.count, tc.principal, scheduled, quote.TotalPayment)
	}
}

func TestCalculateLoanRejectsInvalidParameters(t *testing.T) {
	svc := newTestLoanService(t, newFakeLoanRepo(), &fakePaymentRepo{}, newFakeCustomerRepo())

	_, err := svc.CalculateLoan(context.Background(), 0, decimal.NewFromInt(10000))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.CalculateLoan(context.Background(), -3, decimal.NewFromInt(10000))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.CalculateLoan(context.Background(), 12, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.CalculateLoan(context.Background(), 12, decimal.NewFromInt(-500))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCalculateLoanUsesQuoteCache(t *testing.T) {
	cache := newFakeQuoteCache()
	svc := newTestLoanService(t, newFakeLoanRepo(), &fakePaymentRepo{}, newFakeCustomerRepo())
	svc.quoteCache = cache

	first, err := svc.CalculateLoan(context.Background(), 12, decimal.NewFromInt(10000))
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 0, cache.hits)

	second, err := svc.CalculateLoan(context.Background(), 12, decimal.NewFromInt(10000))
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)

	assert.True(t, first.TotalPayment.Equal(second.TotalPayment))
	assert.True(t, first.MonthlyInstallmentAmount.Equal(second.MonthlyInstallmentAmount))
}

// ============================================================
// ApplyLoan
// ============================================================

func TestApplyLoanCreatesContinuingLoan(t *testing.T) {
	loanRepo := newFakeLoanRepo()
	svc := newTestLoanService(t, loanRepo, &fakePaymentRepo{}, newFakeCustomerRepo(1))

	loan, err := svc.ApplyLoan(context.Background(), &ApplyLoanInput{
		CustomerID:          1,
		PrincipalLoanAmount: decimal.NewFromInt(10000),
		InstallmentCount:    12,
		MonthlySalary:       decimal.NewFromInt(25000),
	})
	require.NoError(t, err)

	assert.Equal(t, models.LoanStatusContinuing, loan.Status)
	assert.True(t, loan.RemainingPrincipal.Equal(loan.PrincipalLoanAmount))
	assert.True(t, loan.MonthlyInstallmentAmount.Equal(decimal.NewFromInt(2997)))
	assert.True(t, loan.InterestToBePaid.Equal(decimal.NewFromInt(25908)))

	// Due date is the application date plus the loan term
	wantDue := time.Date(2027, time.August, 29, 0, 0, 0, 0, time.UTC)
	assert.True(t, loan.DueDate.Equal(wantDue), "due date %s", loan.DueDate)

	stored, err := loanRepo.GetByID(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusContinuing, stored.Status)
}

func TestApplyLoanAffordabilityBoundary(t *testing.T) {
	// salary 10000 over 12 months: half the salary times the term times 80%
	// puts the ceiling at exactly 48000.
	svc := newTestLoanService(t, newFakeLoanRepo(), &fakePaymentRepo{}, newFakeCustomerRepo(1))

	atCeiling := &ApplyLoanInput{
		CustomerID:          1,
		PrincipalLoanAmount: decimal.NewFromInt(48000),
		InstallmentCount:    12,
		MonthlySalary:       decimal.NewFromInt(10000),
	}
	_, err := svc.ApplyLoan(context.Background(), atCeiling)
	assert.NoError(t, err)

	overCeiling := &ApplyLoanInput{
		CustomerID:          1,
		PrincipalLoanAmount: dec(t, "48000.01"),
		InstallmentCount:    12,
		MonthlySalary:       decimal.NewFromInt(10000),
	}
	_, err = svc.ApplyLoan(context.Background(), overCeiling)
	assert.ErrorIs(t, err, domain.ErrLimitExceeded)
}

func TestApplyLoanRequiresExistingCustomer(t *testing.T) {
	loanRepo := newFakeLoanRepo()
	svc := newTestLoanService(t, loanRepo, &fakePaymentRepo{}, newFakeCustomerRepo())

	_, err := svc.ApplyLoan(context.Background(), &ApplyLoanInput{
		CustomerID:          42,
		PrincipalLoanAmount: decimal.NewFromInt(10000),
		InstallmentCount:    12,
		MonthlySalary:       decimal.NewFromInt(25000),
	})
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
	assert.Empty(t, loanRepo.loans)
}

func TestApplyLoanRejectsNilInput(t *testing.T) {
	svc := newTestLoanService(t, newFakeLoanRepo(), &fakePaymentRepo{}, newFakeCustomerRepo(1))

	_, err := svc.ApplyLoan(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ============================================================
// PayInstallment
// ============================================================

func seedLoan(t *testing.T, repo *fakeLoanRepo, loan *models.Loan) *models.Loan {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), loan))
	return loan
}

func TestPayInstallmentReducesRemainingAndRecordsPayment(t *testing.T) {
	loanRepo := newFakeLoanRepo()
	paymentRepo := &fakePaymentRepo{}
	svc := newTestLoanService(t, loanRepo, paymentRepo, newFakeCustomerRepo(1))

	loan := seedLoan(t, loanRepo, &models.Loan{
		CustomerID:               1,
		PrincipalLoanAmount:      decimal.NewFromInt(10000),
		RemainingPrincipal:       decimal.NewFromInt(10000),
		MonthlyInstallmentAmount: decimal.NewFromInt(2997),
		InstallmentCount:         12,
		DueDate:                  fixedNow.AddDate(1, 0, 0),
		Status:                   models.LoanStatusContinuing,
	})

	result, err := svc.PayInstallment(context.Background(), loan.ID)
	require.NoError(t, err)

	assert.True(t, result.PaymentAmount.Equal(decimal.NewFromInt(2997)))
	assert.True(t, result.RemainingPrincipal.Equal(decimal.NewFromInt(7003)))
	assert.Equal(t, "2026-08-29", result.PaymentDate)

	stored, err := loanRepo.GetByID(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.True(t, stored.RemainingPrincipal.Equal(decimal.NewFromInt(7003)))
	assert.Equal(t, models.LoanStatusContinuing, stored.Status)

	payments, err := paymentRepo.ListByLoan(context.Background(), loan.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.True(t, payments[0].PaymentAmount.Equal(decimal.NewFromInt(2997)))
}

func TestPayInstallmentRejectsOverpayment(t *testing.T) {
	loanRepo := newFakeLoanRepo()
	paymentRepo := &fakePaymentRepo{}
	svc := newTestLoanService(t, loanRepo, paymentRepo, newFakeCustomerRepo(1))

	// Remaining balance is smaller than one installment; the payment must be
	// rejected rather than clamped.
	loan := seedLoan(t, loanRepo, &models.Loan{
		CustomerID:               1,
		PrincipalLoanAmount:      decimal.NewFromInt(10000),
		RemainingPrincipal:       decimal.NewFromInt(500),
		MonthlyInstallmentAmount: decimal.NewFromInt(2997),
		InstallmentCount:         12,
		DueDate:                  fixedNow.AddDate(1, 0, 0),
		Status:                   models.LoanStatusContinuing,
	})

	_, err := svc.PayInstallment(context.Background(), loan.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	stored, err := loanRepo.GetByID(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.True(t, stored.RemainingPrincipal.Equal(decimal.NewFromInt(500)), "loan must be untouched")
	assert.Empty(t, paymentRepo.payments, "no payment row on rejection")
}

func TestPayInstallmentUnknownLoan(t *testing.T) {
	svc := newTestLoanService(t, newFakeLoanRepo(), &fakePaymentRepo{}, newFakeCustomerRepo())

	_, err := svc.PayInstallment(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// ============================================================
// PayLoanOff
// ============================================================

func TestPayLoanOffClosesLoanWithoutPaymentRecord(t *testing.T) {
	loanRepo := newFakeLoanRepo()
	paymentRepo := &fakePaymentRepo{}
	svc := newTestLoanService(t, loanRepo, paymentRepo, newFakeCustomerRepo(1))

	loan := seedLoan(t, loanRepo, &models.Loan{
		CustomerID:               1,
		PrincipalLoanAmount:      decimal.NewFromInt(10000),
		RemainingPrincipal:       decimal.NewFromInt(7003),
		MonthlyInstallmentAmount: decimal.NewFromInt(2997),
		InstallmentCount:         12,
		DueDate:                  fixedNow.AddDate(1, 0, 0),
		Status:                   models.LoanStatusContinuing,
	})

	result, err := svc.PayLoanOff(context.Background(), loan.ID)
	require.NoError(t, err)

	assert.True(t, result.PaidAmount.Equal(decimal.NewFromInt(7003)))
	assert.True(t, result.RemainingAmount.IsZero())
	assert.Equal(t, models.LoanStatusPaid, result.Status)

	stored, err := loanRepo.GetByID(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.True(t, stored.RemainingPrincipal.IsZero())
	assert.Equal(t, models.LoanStatusPaid, stored.Status)

	// Payoff leaves no installment payment row behind
	assert.Empty(t, paymentRepo.payments)
}

func TestPayLoanOffIsIdempotent(t *testing.T) {
	loanRepo := newFakeLoanRepo()
	svc := newTestLoanService(t, loanRepo, &fakePaymentRepo{}, newFakeCustomerRepo(1))

	loan := seedLoan(t, loanRepo, &models.Loan{
		CustomerID:               1,
		PrincipalLoanAmount:      decimal.NewFromInt(10000),
		RemainingPrincipal:       decimal.NewFromInt(10000),
		MonthlyInstallmentAmount: decimal.NewFromInt(2997),
		InstallmentCount:         12,
		DueDate:                  fixedNow.AddDate(1, 0, 0),
		Status:                   models.LoanStatusContinuing,
	})

	_, err := svc.PayLoanOff(context.Background(), loan.ID)
	require.NoError(t, err)

	second, err := svc.PayLoanOff(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.True(t, second.PaidAmount.IsZero(), "second payoff pays nothing")
	assert.Equal(t, models.LoanStatusPaid, second.Status)
}

// ============================================================
// CalculateLateFee
// ============================================================

func TestCalculateLateFeeWorkedExample(t *testing.T) {
	loanRepo := newFakeLoanRepo()
	svc := newTestLoanService(t, loanRepo, &fakePaymentRepo{}, newFakeCustomerRepo(1))

	// Due 7 days before the fixed clock
	loan := seedLoan(t, loanRepo, &models.Loan{
		CustomerID:               1,
		PrincipalLoanAmount:      decimal.NewFromInt(10000),
		RemainingPrincipal:       decimal.NewFromInt(500),
		MonthlyInstallmentAmount: decimal.NewFromInt(2997),
		InstallmentCount:         12,
		DueDate:                  time.Date(2026, time.August, 22, 0, 0, 0, 0, time.UTC),
		Status:                   models.LoanStatusContinuing,
	})

	result, err := svc.CalculateLateFee(context.Background(), loan.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(7), result.LateDayCount)
	assert.True(t, result.LateFeeRate.Equal(dec(t, "0.02067")), "late fee rate %s", result.LateFeeRate)
	// base fee ceil(10000*7*0.02067/30) = 49, taxed at 20%
	assert.True(t, result.LateInterestTax.Equal(dec(t, "9.8")), "tax %s", result.LateInterestTax)
	assert.True(t, result.TotalLateFee.Equal(dec(t, "58.8")), "total late fee %s", result.TotalLateFee)
	assert.True(t, result.RemainingPrincipal.Equal(dec(t, "558.8")), "remaining %s", result.RemainingPrincipal)

	stored, err := loanRepo.GetByID(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusLate, stored.Status)
	assert.True(t, stored.RemainingPrincipal.Equal(dec(t, "558.8")))
}

func TestCalculateLateFeeRejectsWhenNotYetDue(t *testing.T) {
	loanRepo := newFakeLoanRepo()
	svc := newTestLoanService(t, loanRepo, &fakePaymentRepo{}, newFakeCustomerRepo(1))

	cases := map[string]time.Time{
		"due today":     time.Date(2026, time.August, 29, 0, 0, 0, 0, time.UTC),
		"due tomorrow":  time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC),
		"due next year": fixedNow.AddDate(1, 0, 0),
	}

	for name, dueDate := range cases {
		t.Run(name, func(t *testing.T) {
			loan := seedLoan(t, loanRepo, &models.Loan{
				CustomerID:               1,
				PrincipalLoanAmount:      decimal.NewFromInt(10000),
				RemainingPrincipal:       decimal.NewFromInt(5000),
				MonthlyInstallmentAmount: decimal.NewFromInt(2997),
				InstallmentCount:         12,
				DueDate:                  dueDate,
				Status:                   models.LoanStatusContinuing,
			})

			_, err := svc.CalculateLateFee(context.Background(), loan.ID)
			assert.ErrorIs(t, err, domain.ErrLoanNotYetDue)

			stored, err := loanRepo.GetByID(context.Background(), loan.ID)
			require.NoError(t, err)
			assert.Equal(t, models.LoanStatusContinuing, stored.Status)
			assert.True(t, stored.RemainingPrincipal.Equal(decimal.NewFromInt(5000)))
		})
	}
}

func TestListPaymentsUnknownLoan(t *testing.T) {
	svc := newTestLoanService(t, newFakeLoanRepo(), &fakePaymentRepo{}, newFakeCustomerRepo())

	_, err := svc.ListPayments(context.Background(), 7)
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
}
