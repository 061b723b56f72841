package domain

import (
	"errors"
	"fmt"
)

// Common domain errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInvalidState   = errors.New("invalid state")
	ErrLimitExceeded  = errors.New("limit exceeded")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrUserNotFound       = fmt.Errorf("user not found: %w", ErrNotFound)
	ErrUserAlreadyExists  = fmt.Errorf("user already exists: %w", ErrDuplicateEntry)
)

// Loan errors. The specific sentinels wrap the common ones so callers can
// match at either level with errors.Is.
var (
	ErrLoanNotFound     = fmt.Errorf("loan not found: %w", ErrNotFound)
	ErrCustomerNotFound = fmt.Errorf("customer not found: %w", ErrNotFound)
	ErrLoanNotYetDue    = errors.New("loan due date has not passed yet")
	ErrLoanOverpaid     = errors.New("remaining principal cannot go negative")
)

// Credit card errors
var (
	ErrCreditCardNotFound = fmt.Errorf("credit card not found: %w", ErrNotFound)
	ErrCardLimitExceeded  = fmt.Errorf("insufficient available card limit: %w", ErrLimitExceeded)
)
