package login

import (
	"context"

	twitterauth "github.com/golden-vcr/twitter-auth"
)

// TokenExchanger completes the OAuth handshake with Twitter
type TokenExchanger interface {
	Complete(ctx context.Context, temp twitterauth.TemporaryCredential, verifier string) (twitterauth.ProviderToken, twitterauth.ProviderProfile, error)
}

// SessionLogin is the login routine: it runs the authentication chain for the given
// credentials, registers the user if they're not yet known, records opts.Params
// against them, and starts a session. It must not modify the user if the login fails.
type SessionLogin interface {
	Login(ctx context.Context, creds twitterauth.Credentials, opts twitterauth.Options) (*twitterauth.Session, error)
}

// Bridge turns a completed Twitter authorization into a local login
type Bridge struct {
	exchanger TokenExchanger
	login     SessionLogin
}

func NewBridge(exchanger TokenExchanger, login SessionLogin) *Bridge {
	return &Bridge{
		exchanger: exchanger,
		login:     login,
	}
}

// ExchangeAndLogin swaps the temporary credential and verifier for an access token,
// then logs in as the local user derived from the Twitter profile. The access token is
// handed to the login routine, which records it against the user in the same write
// that registers or updates them. A nil error means the user is logged in. On any
// failure the local user is left unmodified; a *twitterauth.ProviderAuthError is
// returned as-is.
func (b *Bridge) ExchangeAndLogin(ctx context.Context, temp twitterauth.TemporaryCredential, verifier string) (*twitterauth.Session, error) {
	token, profile, err := b.exchanger.Complete(ctx, temp, verifier)
	if err != nil {
		return nil, err
	}

	creds := twitterauth.DeriveCredentials(profile)
	return b.login.Login(ctx, creds, twitterauth.Options{
		Params: map[string]string{
			twitterauth.ParamTokenKey:    token.Key,
			twitterauth.ParamTokenSecret: token.Secret,
		},
	})
}
