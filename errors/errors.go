package errors

import (
	"fmt"
	"net/http"

	"github.com/FreightDesk/freight-desk-backend/logger"
)

type ErrorType string

const (
	ValidationError              ErrorType = "VALIDATION_ERROR"
	NotFoundError                ErrorType = "NOT_FOUND"
	DatabaseError                ErrorType = "DATABASE_ERROR"
	ServerError                  ErrorType = "SERVER_ERROR"
	ConflictError                ErrorType = "CONFLICT"
	LoadNotFoundError            ErrorType = "LOAD_NOT_FOUND"
	ExtractionError              ErrorType = "EXTRACTION_FAILED"
	InvalidStatusTransitionError ErrorType = "INVALID_STATUS_TRANSITION"
	EmailDeliveryError           ErrorType = "EMAIL_DELIVERY_FAILED"
	PricingError                 ErrorType = "PRICING_FAILED"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Code       string    `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Raw        error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Raw
}

// New creates a new AppError
func New(errType ErrorType, message string, detail string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     detail,
		HTTPStatus: getHTTPStatus(errType),
	}
}

// Wrap wraps a raw error with AppError context
func Wrap(err error, errType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     err.Error(),
		HTTPStatus: getHTTPStatus(errType),
		Raw:        err,
	}
}

// Helper functions for common errors
func NotFound(entity string, id interface{}) *AppError {
	return &AppError{
		Type:       NotFoundError,
		Message:    fmt.Sprintf("%s not found", entity),
		Detail:     fmt.Sprintf("ID: %v", id),
		HTTPStatus: http.StatusNotFound,
	}
}

func LoadNotFound(id string) *AppError {
	return &AppError{
		Type:       LoadNotFoundError,
		Message:    "Load not found",
		Detail:     fmt.Sprintf("Load ID: %s", id),
		HTTPStatus: http.StatusNotFound,
	}
}

func ValidationFailed(message string, details string) *AppError {
	return &AppError{
		Type:       ValidationError,
		Message:    message,
		Detail:     details,
		HTTPStatus: http.StatusBadRequest,
	}
}

func ExtractionFailed(err error) *AppError {
	return &AppError{
		Type:       ExtractionError,
		Message:    "Field extraction failed",
		Detail:     err.Error(),
		HTTPStatus: http.StatusBadGateway,
		Raw:        err,
	}
}

func EmailDeliveryFailed(err error) *AppError {
	return &AppError{
		Type:       EmailDeliveryError,
		Message:    "Outbound email delivery failed",
		Detail:     err.Error(),
		HTTPStatus: http.StatusBadGateway,
		Raw:        err,
	}
}

func NewDatabaseError(err error) *AppError {
	// Log original error but return sanitized message
	logger.GetLogger().Errorw("Database error", "error", err)
	return &AppError{
		Type:       DatabaseError,
		Message:    "Database operation failed",
		Detail:     "Please try again later",
		HTTPStatus: http.StatusInternalServerError,
		Raw:        err,
	}
}

func InternalServerError(message string) *AppError {
	return &AppError{
		Type:       ServerError,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

func NewConflictError(message string, detail string) *AppError {
	return &AppError{
		Type:       ConflictError,
		Message:    message,
		Detail:     detail,
		HTTPStatus: http.StatusConflict,
	}
}

func InvalidStatusTransition(current, next string) *AppError {
	return &AppError{
		Type:       InvalidStatusTransitionError,
		Message:    "Invalid status transition",
		Detail:     fmt.Sprintf("Cannot transition from %s to %s", current, next),
		HTTPStatus: http.StatusBadRequest,
	}
}

func getHTTPStatus(errType ErrorType) int {
	switch errType {
	case ValidationError, InvalidStatusTransitionError:
		return http.StatusBadRequest
	case NotFoundError, LoadNotFoundError:
		return http.StatusNotFound
	case ConflictError:
		return http.StatusConflict
	case ExtractionError, EmailDeliveryError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
