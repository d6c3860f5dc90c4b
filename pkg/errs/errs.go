// Package errs defines the error taxonomy shared across the core:
// validation failures resolved before any store call, auth failures
// surfaced to the caller, absent documents, and rejected writes.
package errs

import (
	"errors"
	"fmt"
)

// AuthKind discriminates auth boundary failures.
type AuthKind string

const (
	AuthInvalidCredential AuthKind = "invalid-credential"
	AuthUserNotFound      AuthKind = "user-not-found"
	AuthWrongPassword     AuthKind = "wrong-password"
	AuthEmailInUse        AuthKind = "email-in-use"
	AuthWeakPassword      AuthKind = "weak-password"
)

// ValidationError reports invalid input checked locally; it never reflects
// a remote failure.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Msg
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Msg)
}

// AuthError carries the auth failure kind plus the provider's message
// verbatim; unrecognized provider messages are passed through, not masked.
type AuthError struct {
	Kind AuthKind
	Msg  string
}

func (e *AuthError) Error() string {
	if e.Msg == "" {
		return "auth: " + string(e.Kind)
	}
	return fmt.Sprintf("auth: %s: %s", e.Kind, e.Msg)
}

// NotFoundError reports an absent document. A missing profile for an
// authenticated identity is "incomplete", not fatal; callers decide.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// WriteFailure wraps a rejected or failed store write.
type WriteFailure struct {
	Op  string
	Err error
}

func (e *WriteFailure) Error() string {
	return fmt.Sprintf("write failed: %s: %v", e.Op, e.Err)
}

func (e *WriteFailure) Unwrap() error { return e.Err }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

// AuthKindOf returns the AuthKind of err, or "" if err is not an AuthError.
func AuthKindOf(err error) AuthKind {
	var a *AuthError
	if errors.As(err, &a) {
		return a.Kind
	}
	return ""
}
