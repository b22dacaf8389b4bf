// Package errs defines the error taxonomy shared by the upstream client
// and the state services.
package errs

import (
	"errors"
	"strings"
)

var (
	// ErrNetwork marks transport-level failures: the remote API was
	// unreachable or the request timed out.
	ErrNetwork = errors.New("network failure")
	// ErrSessionExpired is raised locally when an operation requires an
	// outstanding OTP exchange token and none is held.
	ErrSessionExpired = errors.New("session expired")
	// ErrInvalidCode marks an OTP code the remote rejected.
	ErrInvalidCode = errors.New("invalid code")
	// ErrAlreadyExists marks registration against an existing identity.
	ErrAlreadyExists = errors.New("user already exists")
	// ErrCodeMismatch marks disagreeing confirmation fields.
	ErrCodeMismatch = errors.New("confirmation mismatch")
	// ErrValidation marks local pre-flight field checks. Validation
	// failures never reach a store's error field from a remote call.
	ErrValidation = errors.New("validation failure")
	// ErrNotFound marks a remote 404 for an entity lookup.
	ErrNotFound = errors.New("not found")
)

// RemoteError carries the failure payload of a reachable remote API.
// The remote-provided message is preferred over generic fallbacks when
// presenting errors to the user.
type RemoteError struct {
	StatusCode int
	Msg        string
}

func (e *RemoteError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "remote request rejected"
}

// Message extracts a human-readable message from err, preferring the
// remote-provided text and falling back to the given default. Local
// taxonomy errors surface their own detail text; transport failures
// always produce the fallback — their raw text is logged, not shown.
func Message(err error, fallback string) string {
	var re *RemoteError
	if errors.As(err, &re) && re.Msg != "" {
		return re.Msg
	}
	for _, sentinel := range []error{ErrValidation, ErrCodeMismatch, ErrSessionExpired, ErrAlreadyExists, ErrInvalidCode} {
		if errors.Is(err, sentinel) {
			if detail, found := strings.CutPrefix(err.Error(), sentinel.Error()+": "); found {
				return detail
			}
			return err.Error()
		}
	}
	return fallback
}
