package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Series errors
	ErrNoData          = &Error{Code: "NO_DATA", Message: "price series is empty"}
	ErrMissingClose    = &Error{Code: "MISSING_CLOSE", Message: "price series has a bar without a close price"}
	ErrUnorderedSeries = &Error{Code: "UNORDERED_SERIES", Message: "price series timestamps are not strictly increasing"}

	// Strategy errors
	ErrInvalidParams   = &Error{Code: "INVALID_PARAMS", Message: "invalid strategy parameters"}
	ErrStrategyFailed  = &Error{Code: "STRATEGY_FAILED", Message: "strategy signal generation failed"}
	ErrUnknownStrategy = &Error{Code: "UNKNOWN_STRATEGY", Message: "strategy not registered"}

	// Backtest errors
	ErrInvalidWindow = &Error{Code: "INVALID_WINDOW", Message: "walk-forward window sizes must be positive"}

	// Data loading errors
	ErrProviderFailed = &Error{Code: "PROVIDER_FAILED", Message: "data provider request failed"}
	ErrSymbolNotFound = &Error{Code: "SYMBOL_NOT_FOUND", Message: "symbol not found"}

	// Job errors
	ErrJobNotFound = &Error{Code: "JOB_NOT_FOUND", Message: "job not found"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)
