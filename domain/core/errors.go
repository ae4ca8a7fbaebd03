package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	ErrPoolRequired  = errors.New("pool required")
	ErrNotSampled    = errors.New("no sampled dataset available")
	ErrInvalidParams = errors.New("invalid run parameters")
	ErrEmptyTable    = errors.New("file contains no data or is incorrectly formatted")
)

// ParamError describes a single invalid run parameter
type ParamError struct {
	Field   string
	Message string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ParamError) Unwrap() error {
	return ErrInvalidParams
}

// NewParamError creates a parameter error for the named field
func NewParamError(field, message string) *ParamError {
	return &ParamError{Field: field, Message: message}
}

// IsParamError reports whether err is an invalid parameter error
func IsParamError(err error) bool {
	return errors.Is(err, ErrInvalidParams)
}
