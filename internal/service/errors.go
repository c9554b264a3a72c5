package service

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation: the request is malformed or names an unknown medicine
	// under the strict policy. Nothing was written.
	ErrValidation = errors.New("validation failed")
	// ErrStockConflict: a line could not be reserved under the strict policy.
	ErrStockConflict = errors.New("insufficient stock")
	// ErrNoFulfillableItems: every requested line was skipped.
	ErrNoFulfillableItems = errors.New("no fulfillable items")
	// ErrPersistence: the store failed mid-transaction and everything was
	// rolled back.
	ErrPersistence = errors.New("persistence failure")
	// ErrInvalidState: the order is not in a state that allows the action.
	ErrInvalidState = errors.New("invalid state")

	// errReplay signals that an order with the same idempotency key was
	// committed concurrently.
	errReplay = errors.New("idempotency key already used")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// classify leaves known outcomes untouched and turns everything else,
// context cancellation included, into ErrPersistence with the cause kept in
// the chain.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrStockConflict),
		errors.Is(err, ErrNoFulfillableItems),
		errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrPersistence),
		errors.Is(err, errReplay):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
}
