package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation            = errors.New("validation failed")
	ErrDecode                = errors.New("image could not be decoded")
	ErrEncode                = errors.New("image could not be encoded")
	ErrStorage               = errors.New("storage backend error")
	ErrObjectNotFound        = errors.New("object not found")
	ErrUploadSessionNotFound = errors.New("upload session not found")
	ErrUploadNotReceived     = errors.New("upload not received")
	ErrAssetNotFound         = errors.New("asset not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrTokenInvalid          = errors.New("token invalid")
)

// ValidationError describes the first rule a declared upload broke.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
