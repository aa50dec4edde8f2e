package apierr

import (
	"errors"
	"net/http"
)

// Kind classifies an API error. Every error surfaced to a caller carries
// exactly one kind; the HTTP layer maps kinds to status codes.
type Kind string

const (
	// Authentication means the credential was missing or invalid. The
	// message is deliberately generic and never says which.
	Authentication Kind = "AUTHENTICATION_FAILED"
	// Authorization means the credential was valid but the role is not on
	// the operation's allow-list.
	Authorization Kind = "INSUFFICIENT_ROLE"
	NotFound      Kind = "NOT_FOUND"
	Validation    Kind = "VALIDATION_FAILED"
	Conflict      Kind = "CONFLICT"
	// PortalDenied merges nonexistent, expired, and revoked portal tokens
	// into one externally indistinguishable case.
	PortalDenied Kind = "PORTAL_ACCESS_DENIED"
	Internal     Kind = "INTERNAL"
)

// PortalDeniedMessage is the single message used for every portal token
// failure. A caller probing tokens must not learn whether a token exists,
// expired, or was revoked.
const PortalDeniedMessage = "invalid or expired access token"

// Error is a structured API error: a kind plus a human-readable message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// E constructs an Error.
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// PortalAccessDenied returns the merged portal denial error.
func PortalAccessDenied() *Error {
	return E(PortalDenied, PortalDeniedMessage)
}

// KindOf extracts the kind from err, or Internal for unclassified errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

// HTTPStatus maps a kind to its HTTP status code. PortalDenied maps to 404,
// the same as NotFound, so the portal surface does not leak token state.
func HTTPStatus(kind Kind) int {
	switch kind {
	case Authentication:
		return http.StatusUnauthorized
	case Authorization:
		return http.StatusForbidden
	case NotFound, PortalDenied:
		return http.StatusNotFound
	case Validation:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
