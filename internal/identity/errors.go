package identity

import (
	"errors"
	"fmt"
)

// ErrorKind enumerates the credential failures the auth layer distinguishes.
// It is independent of any provider's error-code strings.
type ErrorKind int

const (
	ErrUnknown ErrorKind = iota
	ErrUserNotFound
	ErrWrongPassword
	ErrInvalidCredential
	ErrEmailAlreadyInUse
	ErrWeakPassword
	ErrInvalidEmail
	ErrUserDisabled
	ErrTooManyRequests
	ErrNetwork
	ErrOperationNotAllowed
)

// Error is a provider failure tagged with an ErrorKind.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("identity: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("identity: %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err with a kind. A nil err is allowed.
func NewError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func (k ErrorKind) String() string {
	switch k {
	case ErrUserNotFound:
		return "user not found"
	case ErrWrongPassword:
		return "wrong password"
	case ErrInvalidCredential:
		return "invalid credential"
	case ErrEmailAlreadyInUse:
		return "email already in use"
	case ErrWeakPassword:
		return "weak password"
	case ErrInvalidEmail:
		return "invalid email"
	case ErrUserDisabled:
		return "user disabled"
	case ErrTooManyRequests:
		return "too many requests"
	case ErrNetwork:
		return "network failure"
	case ErrOperationNotAllowed:
		return "operation not allowed"
	default:
		return "unknown"
	}
}

// Message maps an ErrorKind to the user-facing string surfaced by the app.
// Unmapped kinds fall back to a generic message.
func Message(kind ErrorKind) string {
	switch kind {
	case ErrUserNotFound:
		return "No account found with this email address."
	case ErrWrongPassword:
		return "Incorrect password. Please try again."
	case ErrEmailAlreadyInUse:
		return "An account with this email already exists."
	case ErrWeakPassword:
		return "Password should be at least 6 characters long."
	case ErrInvalidEmail:
		return "Please enter a valid email address."
	case ErrUserDisabled:
		return "This account has been disabled."
	case ErrTooManyRequests:
		return "Too many failed attempts. Please try again later."
	case ErrNetwork:
		return "Network error. Please check your connection."
	case ErrInvalidCredential:
		return "Invalid login credentials. Please try again."
	case ErrOperationNotAllowed:
		return "This sign-in method is not enabled."
	default:
		return "An unexpected error occurred. Please try again."
	}
}

// MessageFor extracts the ErrorKind from err (or anything it wraps) and
// returns the mapped user-facing message. Any other error maps to the
// generic fallback.
func MessageFor(err error) string {
	var perr *Error
	if errors.As(err, &perr) {
		return Message(perr.Kind)
	}
	return Message(ErrUnknown)
}
