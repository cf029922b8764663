package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/marcos-nsantos/asset-pipeline/internal/domain"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
	}
}

func BadRequest(message string) *AppError {
	return &AppError{
		Code:       "BAD_REQUEST",
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Code:       "UNAUTHORIZED",
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func Validation(message string) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func Unprocessable(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

func BadGateway(message string, err error) *AppError {
	return &AppError{
		Code:       "STORAGE_ERROR",
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Err:        err,
	}
}

func Conflict(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "an internal error occurred",
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// FromDomain translates the domain sentinels into HTTP-facing errors. Anything
// it does not recognize becomes a generic internal error.
func FromDomain(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return Validation(verr.Error())
	case errors.Is(err, domain.ErrValidation):
		return Validation(err.Error())
	case errors.Is(err, domain.ErrDecode):
		return Unprocessable("INVALID_IMAGE", "image could not be decoded")
	case errors.Is(err, domain.ErrUploadSessionNotFound):
		return NotFound("upload session")
	case errors.Is(err, domain.ErrAssetNotFound):
		return NotFound("asset")
	case errors.Is(err, domain.ErrUploadNotReceived):
		return Conflict("UPLOAD_NOT_RECEIVED", "no bytes were uploaded for this session yet")
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrTokenInvalid):
		return Unauthorized("invalid or expired token")
	case errors.Is(err, domain.ErrStorage):
		return BadGateway("storage backend unavailable", err)
	default:
		return Internal(err)
	}
}
