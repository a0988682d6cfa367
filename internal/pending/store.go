// Package pending holds the temporary credentials issued by Twitter between the two legs
// of the OAuth handshake: the request token secret is needed to sign the access token
// request, but it must never be sent to the user agent.
package pending

import (
	"context"
	"errors"
	"time"

	twitterauth "github.com/golden-vcr/twitter-auth"
)

// DefaultTTL is how long a user has to approve our app on Twitter before the pending
// credential is discarded
const DefaultTTL = 15 * time.Minute

// ErrInvalidCredential is returned when attempting to store an incomplete credential
var ErrInvalidCredential = errors.New("pending: token and secret are required")

// Store records temporary credentials, keyed by request token, until they're claimed
type Store interface {
	Put(ctx context.Context, cred twitterauth.TemporaryCredential) error
	// Take returns the credential for the given request token and removes it, so that
	// a second Take with the same token reports false
	Take(ctx context.Context, token string) (twitterauth.TemporaryCredential, bool, error)
}

var (
	_ Store = (*Buffer)(nil)
	_ Store = (*RedisStore)(nil)
)
