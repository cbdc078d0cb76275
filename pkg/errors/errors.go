package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeFetch represents network or non-2xx fetch failures
	ErrorTypeFetch ErrorType = "fetch"
	// ErrorTypeParse represents pages where no price could be extracted
	ErrorTypeParse ErrorType = "parse"
	// ErrorTypeFormat represents unparseable persisted state (ledger, history)
	ErrorTypeFormat ErrorType = "format"
	// ErrorTypeNotification represents notification delivery failures
	ErrorTypeNotification ErrorType = "notification"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// WatchError represents a pipeline-specific error tied to one tracked entity
type WatchError struct {
	Type    ErrorType
	Entity  string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *WatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Entity, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Entity, e.Message)
}

// Unwrap returns the underlying error
func (e *WatchError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether the error must abort the run. Entity-local
// failures (fetch, parse, notification) never are; only structural
// failures in configuration or persisted state qualify.
func (e *WatchError) IsFatal() bool {
	switch e.Type {
	case ErrorTypeFormat, ErrorTypeConfiguration:
		return true
	default:
		return false
	}
}

// New creates a new WatchError
func New(errType ErrorType, entity, message string, err error) *WatchError {
	return &WatchError{
		Type:    errType,
		Entity:  entity,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewFetch creates a new fetch error
func NewFetch(entity, message string, err error) *WatchError {
	return New(ErrorTypeFetch, entity, message, err)
}

// NewParse creates a new parse error
func NewParse(entity, message string) *WatchError {
	return New(ErrorTypeParse, entity, message, nil)
}

// NewFormat creates a new persisted-state format error
func NewFormat(entity, message string, err error) *WatchError {
	return New(ErrorTypeFormat, entity, message, err)
}

// NewNotification creates a new notification error
func NewNotification(message string, err error) *WatchError {
	return New(ErrorTypeNotification, "", message, err)
}

// NewValidation creates a new validation error
func NewValidation(entity, message string) *WatchError {
	return New(ErrorTypeValidation, entity, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *WatchError {
	return New(ErrorTypeConfiguration, "", message, err)
}
