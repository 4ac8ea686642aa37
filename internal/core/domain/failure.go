package domain

import "errors"

// FailureKind classifies how an auth operation failed.
type FailureKind string

const (
	// FailureNetworkUnreachable means no response was received at all: the
	// identity backend is down or unroutable.
	FailureNetworkUnreachable FailureKind = "network_unreachable"
	// FailureInvalidCredentials is the backend explicitly denying the
	// supplied identity (HTTP 401).
	FailureInvalidCredentials FailureKind = "invalid_credentials"
	// FailureValidationFailed is the backend rejecting the request payload
	// (HTTP 422). Field and Message carry the first violated field.
	FailureValidationFailed FailureKind = "validation_failed"
	// FailureServerRejected covers every other HTTP error.
	FailureServerRejected FailureKind = "server_rejected"
	// FailurePrecondition is a local check that failed before any network
	// or store traffic happened.
	FailurePrecondition FailureKind = "precondition"
)

// AuthFailure is the failure taxonomy of the auth subsystem. It is returned
// as a plain error value so callers branch on Kind exhaustively instead of
// matching exception hierarchies, and Message is always safe to surface to
// the user verbatim.
type AuthFailure struct {
	Kind    FailureKind
	Message string
	// Field names the violated field on FailureValidationFailed and
	// FailurePrecondition; empty otherwise.
	Field string
}

func (f *AuthFailure) Error() string { return f.Message }

// Failure builds an AuthFailure with the given kind and user-facing message.
func Failure(kind FailureKind, msg string) *AuthFailure {
	return &AuthFailure{Kind: kind, Message: msg}
}

// FailureOf extracts the AuthFailure carried by err, or nil when err holds
// none.
func FailureOf(err error) *AuthFailure {
	var f *AuthFailure
	if errors.As(err, &f) {
		return f
	}
	return nil
}
