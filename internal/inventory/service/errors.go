package service

import (
	"errors"
	"fmt"
)

// ErrBusy signals that a transactional operation could not complete in time,
// typically because a conflicting transaction held the row lock.
var ErrBusy = errors.New("operation busy, please retry")

// InvalidTransitionError reports a state change rejected because the entity
// was not in the expected state when the row was re-read under lock.
type InvalidTransitionError struct {
	Entity    string
	Current   string
	Requested string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s cannot move from %q to %q", e.Entity, e.Current, e.Requested)
}

// InvalidQuantityError reports a ledger delta that would drive an item's
// quantity negative.
type InvalidQuantityError struct {
	ItemID  string
	Current float64
	Delta   float64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity change %+.4f would leave item %s below zero (current %.4f)", e.Delta, e.ItemID, e.Current)
}

// ValidationError reports rejected request input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validationErr(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
