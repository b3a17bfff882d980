package tracker

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("no longer available")
	ErrValidation = errors.New("invalid input")
	ErrForbidden  = errors.New("not permitted")
)

func required(field string) error {
	return fmt.Errorf("%w: %s is required", ErrValidation, field)
}

func invalid(field, value string) error {
	return fmt.Errorf("%w: unknown %s %q", ErrValidation, field, value)
}

func multiline(field string) error {
	return fmt.Errorf("%w: %s must be a single line", ErrValidation, field)
}
