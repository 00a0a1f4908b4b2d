// Package domainerrors defines coded errors shared by services and transport.
//
// Services return these so handlers can translate failures to HTTP without
// knowing which store or module produced them. Store-level facts live in
// pkg/platform/sentinel and are translated into coded errors by services.
package domainerrors

import (
	"errors"
	"net/http"
	"sort"
)

// Code classifies a domain failure.
type Code string

const (
	CodeBadRequest          Code = "bad_request"
	CodeValidation          Code = "validation_error"
	CodeInvalidInput        Code = "invalid_input"
	CodeNotFound            Code = "not_found"
	CodeConflict            Code = "conflict"
	CodeDuplicateSlug       Code = "duplicate_slug"
	CodeDuplicateCode       Code = "duplicate_code"
	CodeInvalidScope        Code = "invalid_scope"
	CodeGenerationExhausted Code = "code_generation_exhausted"
	CodeUnauthorized        Code = "unauthorized"
	CodeTooManyRequests     Code = "rate_limit_exceeded"
	CodeInvariantViolation  Code = "invariant_violation"
	CodeTimeout             Code = "timeout"
	CodeInternal            Code = "internal_error"
)

// Error is a coded domain error. Fields carries per-field validation
// messages keyed by the request field name.
type Error struct {
	Code    Code
	Message string
	Fields  map[string][]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, Err: err}
}

// Validation creates a validation error for a single request field.
func Validation(field, message string) error {
	return &Error{
		Code:    CodeValidation,
		Message: message,
		Fields:  map[string][]string{field: {message}},
	}
}

// FieldError creates an error with an arbitrary code attributed to one
// request field, e.g. a duplicate slug.
func FieldError(code Code, field, message string) error {
	return &Error{
		Code:    code,
		Message: message,
		Fields:  map[string][]string{field: {message}},
	}
}

// ValidationFields creates a validation error carrying several field messages.
// The summary message is the first field message in field-name order.
func ValidationFields(fields map[string][]string) error {
	message := "validation failed"
	if len(fields) > 0 {
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		if msgs := fields[names[0]]; len(msgs) > 0 {
			message = names[0] + " " + msgs[0]
		}
	}
	return &Error{Code: CodeValidation, Message: message, Fields: fields}
}

// As extracts the domain error from err's chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	for err != nil {
		de, ok := As(err)
		if !ok {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// Is is an alias for HasCode kept for handler readability.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the outermost code in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	if de, ok := As(err); ok {
		return de.Code
	}
	return CodeInternal
}

// FieldErrors returns the field messages of the outermost domain error.
func FieldErrors(err error) map[string][]string {
	if de, ok := As(err); ok {
		return de.Fields
	}
	return nil
}

// ToHTTPStatus maps a code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeInvalidInput:
		return http.StatusBadRequest
	case CodeValidation, CodeInvariantViolation, CodeInvalidScope:
		return http.StatusUnprocessableEntity
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeDuplicateSlug, CodeDuplicateCode:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeGenerationExhausted:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
