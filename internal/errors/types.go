// Package errors defines the structured error taxonomy shared by the content
// store, resolver, registry, and renderer.
//
// Every failure that crosses a package boundary is a *CalcError carrying an
// ErrorType. Callers branch on the type with errors.Is against the sentinel
// values (ErrNotFound, ErrParse, ...) or with the Is* helpers.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeNotFound              ErrorType = "not_found"
	ErrorTypeParse                 ErrorType = "parse"
	ErrorTypeUnregisteredComponent ErrorType = "unregistered_component"
	ErrorTypeAliasCollision        ErrorType = "alias_collision"
	ErrorTypeValidation            ErrorType = "validation"
	ErrorTypeConfig                ErrorType = "config"
	ErrorTypeIO                    ErrorType = "io"
	ErrorTypeInternal              ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeSlugNotFound       = "ERR_SLUG_NOT_FOUND"
	ErrCodeFileNotFound       = "ERR_FILE_NOT_FOUND"
	ErrCodeLocaleNotFound     = "ERR_LOCALE_NOT_FOUND"
	ErrCodeCategoryNotFound   = "ERR_CATEGORY_NOT_FOUND"
	ErrCodeMalformedDocument  = "ERR_MALFORMED_DOCUMENT"
	ErrCodeSchemaViolation    = "ERR_SCHEMA_VIOLATION"
	ErrCodeUnknownCategory    = "ERR_UNKNOWN_CATEGORY"
	ErrCodeAliasCollision     = "ERR_ALIAS_COLLISION"
	ErrCodeAliasTarget        = "ERR_ALIAS_TARGET"
	ErrCodeDuplicateComponent = "ERR_DUPLICATE_COMPONENT"
	ErrCodeEmptyComponentID   = "ERR_EMPTY_COMPONENT_ID"
	ErrCodeNilComponent       = "ERR_NIL_COMPONENT"
	ErrCodeUnregistered       = "ERR_UNREGISTERED_COMPONENT"
	ErrCodeConfigInvalid      = "ERR_CONFIG_INVALID"
	ErrCodeReadFailed         = "ERR_READ_FAILED"
	ErrCodeWriteFailed        = "ERR_WRITE_FAILED"
	ErrCodeValidationFailed   = "ERR_VALIDATION_FAILED"
	ErrCodeInternalError      = "ERR_INTERNAL"
)

// Sentinels for errors.Is. Matching compares the ErrorType only.
var (
	ErrNotFound              = &CalcError{Type: ErrorTypeNotFound}
	ErrParse                 = &CalcError{Type: ErrorTypeParse}
	ErrUnregisteredComponent = &CalcError{Type: ErrorTypeUnregisteredComponent}
	ErrAliasCollision        = &CalcError{Type: ErrorTypeAliasCollision}
	ErrValidationFailed      = &CalcError{Type: ErrorTypeValidation}
	ErrConfig                = &CalcError{Type: ErrorTypeConfig}
)

// CalcError is a structured error type with context.
type CalcError struct {
	Type    ErrorType
	Code    string
	Message string
	Cause   error
	Context map[string]interface{}
	// Subject is the slug, filename, or component id the error is about.
	Subject string
	Locale  string
}

// Error implements the error interface.
func (e *CalcError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Subject != "" {
		subject := e.Subject
		if e.Locale != "" {
			subject = e.Locale + "/" + subject
		}
		parts = append(parts, subject+":")
	}

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else {
		parts = append(parts, string(e.Type))
	}

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *CalcError) Unwrap() error {
	return e.Cause
}

// Is matches any *CalcError of the same type. A target with a Code must also
// match the code.
func (e *CalcError) Is(target error) bool {
	var t *CalcError
	if !errors.As(target, &t) {
		return false
	}
	if e.Type != t.Type {
		return false
	}

	return t.Code == "" || e.Code == t.Code
}

// WithContext adds context information to the error.
func (e *CalcError) WithContext(key string, value interface{}) *CalcError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithSubject records the slug, filename, or id the error concerns.
func (e *CalcError) WithSubject(subject string) *CalcError {
	e.Subject = subject

	return e
}

// WithLocale records the locale the error concerns.
func (e *CalcError) WithLocale(locale string) *CalcError {
	e.Locale = locale

	return e
}

// NewNotFoundError creates a not-found error.
func NewNotFoundError(code, message string) *CalcError {
	return &CalcError{
		Type:    ErrorTypeNotFound,
		Code:    code,
		Message: message,
	}
}

// NewParseError creates a parse error for a malformed content document.
func NewParseError(code, message string, cause error) *CalcError {
	return &CalcError{
		Type:    ErrorTypeParse,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewUnregisteredComponentError creates an error for a component id with no
// registered implementation.
func NewUnregisteredComponentError(id string) *CalcError {
	return &CalcError{
		Type:    ErrorTypeUnregisteredComponent,
		Code:    ErrCodeUnregistered,
		Message: fmt.Sprintf("component %q is not registered", id),
		Subject: id,
	}
}

// NewAliasCollisionError creates an alias collision error.
func NewAliasCollisionError(code, message string) *CalcError {
	return &CalcError{
		Type:    ErrorTypeAliasCollision,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *CalcError {
	return &CalcError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *CalcError {
	return &CalcError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *CalcError {
	return &CalcError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *CalcError {
	return &CalcError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// TypeOf returns the ErrorType of err, or "" when err is not a *CalcError.
func TypeOf(err error) ErrorType {
	var ce *CalcError
	if errors.As(err, &ce) {
		return ce.Type
	}

	return ""
}

// IsNotFound checks if an error is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsParseError checks if an error is a content parse error.
func IsParseError(err error) bool {
	return errors.Is(err, ErrParse)
}

// IsAliasCollision checks if an error reports an ambiguous slug mapping.
func IsAliasCollision(err error) bool {
	return errors.Is(err, ErrAliasCollision)
}

// IsConfigError checks if an error is configuration-related.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfig)
}
