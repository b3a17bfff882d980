package extract

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyInput = errors.New("nothing to analyze")
	ErrNoAPIKey   = errors.New("missing Gemini API key")
)

// APIError is a non-success reply from the generative endpoint.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Google API error (%d): %s", e.StatusCode, e.Message)
}

// FormatError means the model answered with something that is not a JSON array.
type FormatError struct {
	Raw string
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("AI returned invalid format: %v. Raw output: %s", e.Err, e.Raw)
}

func (e *FormatError) Unwrap() error { return e.Err }
