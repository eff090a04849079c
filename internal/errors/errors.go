// Package errors provides the custom error types used across the data layer.
// Service-level failures are expressed as AppError sentinels so callers can
// distinguish recoverable conditions (not found, category in use, invalid
// input) from internal failures without string matching.
package errors

// AppError represents a structured application error with a stable error
// code, a human-readable message, and an optional wrapped internal error.
type AppError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Internal error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is matches two AppErrors by code, so errors.Is works against sentinels.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:     sentinel.Code,
		Message:  sentinel.Message,
		Internal: internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:     sentinel.Code,
		Message:  message,
		Internal: sentinel.Internal,
	}
}

// General errors.
var (
	ErrInvalidInput = &AppError{Code: "INVALID_INPUT", Message: "Invalid input"}
	ErrNotFound     = &AppError{Code: "NOT_FOUND", Message: "Resource not found"}
	ErrInternal     = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred"}
)

// Authentication errors.
var (
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password"}
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required"}
)

// User errors.
var (
	ErrUsuarioNotFound = &AppError{Code: "USER_NOT_FOUND", Message: "User not found"}
	ErrDuplicateEmail  = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists"}
)

// Category errors.
var (
	ErrCategoriaNotFound  = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found"}
	ErrCategoriaEnUso     = &AppError{Code: "CATEGORY_IN_USE", Message: "Category is used by existing transactions"}
	ErrCategoriaProtegida = &AppError{Code: "DEFAULT_CATEGORY_PROTECTED", Message: "Default categories cannot be deleted"}
)

// Transaction errors.
var (
	ErrTransaccionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found"}
)

// Savings errors.
var (
	ErrAhorroNotFound = &AppError{Code: "SAVINGS_GOAL_NOT_FOUND", Message: "Savings goal not found"}
)

// Remote store errors. These are always swallowed at the sync boundary and
// only surface through logs.
var (
	ErrRemoteUnavailable = &AppError{Code: "REMOTE_UNAVAILABLE", Message: "Remote document store is unavailable"}
)
