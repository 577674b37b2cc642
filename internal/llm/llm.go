// Package llm adapts text generators that author architecture updates.
package llm

import (
	"context"
	"errors"
)

// Generator produces free text for a prompt. The text may embed a fenced JSON
// block and a trailing marker tag; see package extract.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
	Close() error
}

// ErrEmptyResponse is returned when the model answered without any text.
var ErrEmptyResponse = errors.New("llm: empty response from model")

// PermanentError indicates an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}
