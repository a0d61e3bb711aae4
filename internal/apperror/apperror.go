// Package apperror defines the error kinds returned across the service
// boundary. Every kind carries a stable machine-readable code and a message
// that is safe to show to end users.
package apperror

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindEmptyCredential
	KindUserNotFound
	KindUserInactive
	KindWrongPassword
	KindSamePassword
	KindInvalidRefreshToken
	KindRecordNotFound
	KindUnauthorized
	KindValidation
	KindDuplicate
	KindForbidden
	KindTooManyRequests
)

var kindInfo = map[Kind]struct {
	code    string
	message string
}{
	KindInternal:            {"INTERNAL_ERROR", "Something went wrong, please try again later"},
	KindEmptyCredential:     {"EMPTY_CREDENTIAL", "Phone number and password are required"},
	KindUserNotFound:        {"USER_NOT_FOUND", "Account does not exist"},
	KindUserInactive:        {"USER_INACTIVE", "Account is not active"},
	KindWrongPassword:       {"WRONG_PASSWORD", "Password is incorrect"},
	KindSamePassword:        {"SAME_PASSWORD", "New password must differ from the current password"},
	KindInvalidRefreshToken: {"INVALID_REFRESH_TOKEN", "Session is no longer valid, please sign in again"},
	KindRecordNotFound:      {"RECORD_NOT_FOUND", "Record not found"},
	KindUnauthorized:        {"UNAUTHORIZED", "Authentication required"},
	KindValidation:          {"VALIDATION_ERROR", "Request is invalid"},
	KindDuplicate:           {"DUPLICATE", "Record already exists"},
	KindForbidden:           {"FORBIDDEN", "You do not have permission to perform this action"},
	KindTooManyRequests:     {"TOO_MANY_REQUESTS", "Too many requests, please slow down"},
}

var (
	ErrInternal            = New(KindInternal)
	ErrEmptyCredential     = New(KindEmptyCredential)
	ErrUserNotFound        = New(KindUserNotFound)
	ErrUserInactive        = New(KindUserInactive)
	ErrWrongPassword       = New(KindWrongPassword)
	ErrSamePassword        = New(KindSamePassword)
	ErrInvalidRefreshToken = New(KindInvalidRefreshToken)
	ErrRecordNotFound      = New(KindRecordNotFound)
	ErrUnauthorized        = New(KindUnauthorized)
	ErrValidation          = New(KindValidation)
	ErrDuplicate           = New(KindDuplicate)
	ErrForbidden           = New(KindForbidden)
	ErrTooManyRequests     = New(KindTooManyRequests)
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	// Err is the underlying cause. It is for logs only and never rendered.
	Err error
}

func New(kind Kind) *Error {
	info, ok := kindInfo[kind]
	if !ok {
		info = kindInfo[KindInternal]
	}
	return &Error{Kind: kind, Code: info.code, Message: info.message}
}

// WithMessage returns a copy of e carrying a more specific user message.
func (e *Error) WithMessage(message string) *Error {
	c := *e
	c.Message = message
	return &c
}

// Wrap returns a copy of e with cause attached.
func (e *Error) Wrap(cause error) *Error {
	c := *e
	c.Err = cause
	return &c
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind so callers can compare against the package sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Internal wraps an unexpected failure.
func Internal(cause error) *Error {
	return ErrInternal.Wrap(cause)
}

// From normalizes err: typed errors pass through, anything else becomes an
// internal error.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
