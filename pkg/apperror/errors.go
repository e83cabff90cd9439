package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a stable, machine-readable error category.
type Kind string

const (
	KindUserNotFound        Kind = "USER_NOT_FOUND"
	KindCompanyNotFound     Kind = "COMPANY_NOT_FOUND"
	KindClientNotFound      Kind = "CLIENT_NOT_FOUND"
	KindProductNotFound     Kind = "PRODUCT_NOT_FOUND"
	KindInvoiceNotFound     Kind = "INVOICE_NOT_FOUND"
	KindEstimateNotFound    Kind = "ESTIMATE_NOT_FOUND"
	KindPaymentNotFound     Kind = "PAYMENT_NOT_FOUND"
	KindClientAlreadyExists Kind = "CLIENT_ALREADY_EXISTS"
	KindValidation          Kind = "VALIDATION_ERROR"
	KindConflict            Kind = "CONFLICT"
	KindBadRequest          Kind = "BAD_REQUEST"
	KindUnauthorized        Kind = "UNAUTHORIZED"
	KindNotification        Kind = "NOTIFICATION_FAILED"
	KindInternal            Kind = "INTERNAL_ERROR"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Kind    Kind         `json:"kind"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	Err     error        `json:"-"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
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

// Is matches on Kind so sentinel values work with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// WithCause returns a copy of e wrapping err.
func (e *AppError) WithCause(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// Sentinels. Use errors.Is or HasKind to match them.
var (
	ErrUserNotFound        = &AppError{Code: http.StatusUnauthorized, Kind: KindUserNotFound, Message: "User not found"}
	ErrCompanyNotFound     = &AppError{Code: http.StatusNotFound, Kind: KindCompanyNotFound, Message: "Company not found"}
	ErrClientNotFound      = &AppError{Code: http.StatusNotFound, Kind: KindClientNotFound, Message: "Client not found"}
	ErrProductNotFound     = &AppError{Code: http.StatusNotFound, Kind: KindProductNotFound, Message: "Product not found"}
	ErrInvoiceNotFound     = &AppError{Code: http.StatusNotFound, Kind: KindInvoiceNotFound, Message: "Invoice not found"}
	ErrEstimateNotFound    = &AppError{Code: http.StatusNotFound, Kind: KindEstimateNotFound, Message: "Estimate not found"}
	ErrPaymentNotFound     = &AppError{Code: http.StatusNotFound, Kind: KindPaymentNotFound, Message: "Payment not found"}
	ErrClientAlreadyExists = &AppError{Code: http.StatusConflict, Kind: KindClientAlreadyExists, Message: "Client with this email already exists"}
	ErrUnauthorized        = &AppError{Code: http.StatusUnauthorized, Kind: KindUnauthorized, Message: "Unauthorized"}
	ErrInvalidToken        = &AppError{Code: http.StatusUnauthorized, Kind: KindUnauthorized, Message: "Invalid token"}
	ErrConflict            = &AppError{Code: http.StatusConflict, Kind: KindConflict, Message: "Resource is still referenced"}
	ErrRequestInProgress   = &AppError{Code: http.StatusConflict, Kind: KindConflict, Message: "A request with this Idempotency-Key is still in progress"}
	ErrInternalServer      = &AppError{Code: http.StatusInternalServerError, Kind: KindInternal, Message: "Internal server error"}
)

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindValidation,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewFieldError is a single-field validation error.
func NewFieldError(field, message string) *AppError {
	return NewValidationError([]FieldError{{Field: field, Message: message}})
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Kind:    KindBadRequest,
		Message: message,
	}
}

// NewNotificationError reports a failed delivery of an already committed document.
func NewNotificationError(err error) *AppError {
	return &AppError{
		Code:    http.StatusBadGateway,
		Kind:    KindNotification,
		Message: "Notification could not be delivered",
		Err:     err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternalServer.WithCause(err)
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return GetAppError(err).Kind
}

// HasKind reports whether err carries kind k.
func HasKind(err error, k Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == k
}
