package domain

import (
	"errors"
	"fmt"
)

var (
	// Configuration and upstream errors
	ErrConfiguration   = errors.New("payment processor is not configured")
	ErrPaymentProvider = errors.New("payment processor unavailable")

	// Verification errors
	ErrPaymentNotCompleted    = errors.New("payment not completed")
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrInvalidPaymentMetadata = errors.New("payment metadata is invalid")
	ErrUnauthorized           = errors.New("unauthorized")

	// Ledger errors
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be a positive integer")
	ErrReferenceRequired = errors.New("external reference required for purchase credit")
	ErrInvalidKind       = errors.New("invalid ledger entry kind")
	// ErrReferenceConflict means the reference was already used for a different user or amount.
	ErrReferenceConflict = errors.New("external reference already used for a different credit")

	// Enrollment errors
	ErrAlreadyEnrolled    = errors.New("already enrolled")
	ErrCourseNotFound     = errors.New("course not found")
	ErrInvalidCoursePrice = errors.New("course has a negative price")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrInvalidProgress    = errors.New("progress must be between 0 and 100")
)

// InsufficientFundsError reports the balance a debit was checked against.
type InsufficientFundsError struct {
	Balance   int64
	Requested int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: balance %d, requested %d", e.Balance, e.Requested)
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }
