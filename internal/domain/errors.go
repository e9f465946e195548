package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain operations
var (
	// ErrCharacterNotCached indicates the character has no row in the local store
	ErrCharacterNotCached = errors.New("character not cached")

	// ErrSessionInactive indicates an operation requires an authenticated session
	ErrSessionInactive = errors.New("no active session")
)

// TransportErrorKind classifies remote failures
type TransportErrorKind int

const (
	TransportInvalidRequest TransportErrorKind = iota
	TransportUnreachable                       // Timeout or host unreachable
	TransportServer                            // Non-2xx status other than 404
	TransportDecode
	TransportNotFound
)

func (k TransportErrorKind) String() string {
	switch k {
	case TransportInvalidRequest:
		return "invalid request"
	case TransportUnreachable:
		return "unreachable"
	case TransportServer:
		return "server error"
	case TransportDecode:
		return "decode failure"
	case TransportNotFound:
		return "not found"
	}
	return "unknown"
}

// TransportError is a classified failure of the remote data source
type TransportError struct {
	Kind       TransportErrorKind
	StatusCode int // Set for TransportServer
	Err        error
}

func (e *TransportError) Error() string {
	msg := e.Kind.String()
	if e.Kind == TransportServer {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a not-found transport error.
// Callers use it to choose "empty result" over "fall back to cache".
func IsNotFound(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Kind == TransportNotFound
}

// AuthErrorKind classifies authentication failures
type AuthErrorKind int

const (
	AuthUnavailable AuthErrorKind = iota
	AuthNotEnrolled
	AuthChallengeFailed
	AuthUserCancelled
	AuthSystemCancelled
	AuthPasscodeNotSet
	AuthLockedOut
	AuthInvalidContext
	AuthTimeout
	AuthUnknown
)

func (k AuthErrorKind) String() string {
	switch k {
	case AuthUnavailable:
		return "unavailable"
	case AuthNotEnrolled:
		return "not enrolled"
	case AuthChallengeFailed:
		return "challenge failed"
	case AuthUserCancelled:
		return "user cancelled"
	case AuthSystemCancelled:
		return "system cancelled"
	case AuthPasscodeNotSet:
		return "passcode not set"
	case AuthLockedOut:
		return "locked out"
	case AuthInvalidContext:
		return "invalid context"
	case AuthTimeout:
		return "timeout"
	}
	return "unknown"
}

// AuthError is a classified authentication failure
type AuthError struct {
	Kind   AuthErrorKind
	Detail string // Set for AuthUnknown
}

// NewAuthError returns an AuthError of the given kind
func NewAuthError(kind AuthErrorKind) *AuthError {
	return &AuthError{Kind: kind}
}

func (e *AuthError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("authentication %s: %s", e.Kind, e.Detail)
	}
	return "authentication " + e.Kind.String()
}

// Is matches another *AuthError of the same kind
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Kind == e.Kind
}

// Recoverable reports whether retrying without configuration changes makes sense
func (e *AuthError) Recoverable() bool {
	switch e.Kind {
	case AuthUserCancelled, AuthChallengeFailed, AuthTimeout:
		return true
	default:
		return false
	}
}

// Message returns a user-facing explanation
func (e *AuthError) Message() string {
	switch e.Kind {
	case AuthUnavailable:
		return "Authentication is not available on this device"
	case AuthNotEnrolled:
		return "No credentials are enrolled. Enroll one in your device settings"
	case AuthChallengeFailed:
		return "Authentication failed. Please try again"
	case AuthUserCancelled:
		return "Authentication cancelled"
	case AuthSystemCancelled:
		return "Authentication was cancelled by the system"
	case AuthPasscodeNotSet:
		return "Set a passcode before unlocking favorites (run `citadel pin`)"
	case AuthLockedOut:
		return "Too many failed attempts. Authentication is locked"
	case AuthInvalidContext:
		return "Invalid authentication context"
	case AuthTimeout:
		return "Authentication timed out"
	default:
		return "Unknown authentication error: " + e.Detail
	}
}

// AsAuthError extracts an *AuthError from err
func AsAuthError(err error) (*AuthError, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
