package twitterauth

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential indicates that a required identity field was empty
	ErrMissingCredential = errors.New("no user")
	// ErrAccountDenied indicates that the local account is blocked or not yet activated
	ErrAccountDenied = errors.New("access denied")
	// ErrLoginRejected indicates that the login routine refused otherwise-valid
	// credentials, e.g. because the email address belongs to another account
	ErrLoginRejected = errors.New("login rejected")
)

// ProviderAuthError is returned when any leg of the OAuth handshake with Twitter, or
// the subsequent profile request, fails. The verifier is single-use, so callers must
// not retry: the user has to start over.
type ProviderAuthError struct {
	Op  string
	Err error
}

func (e *ProviderAuthError) Error() string {
	return fmt.Sprintf("twitter %s failed: %v", e.Op, e.Err)
}

func (e *ProviderAuthError) Unwrap() error {
	return e.Err
}

// IsProviderAuthFailure reports whether err (or anything it wraps) is a
// *ProviderAuthError
func IsProviderAuthFailure(err error) bool {
	var target *ProviderAuthError
	return errors.As(err, &target)
}
