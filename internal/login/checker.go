package login

import (
	"context"
	"errors"

	twitterauth "github.com/golden-vcr/twitter-auth"
	"github.com/golden-vcr/twitter-auth/internal/users"
)

// UserLookup resolves local accounts by username
type UserLookup interface {
	Get(ctx context.Context, username string) (*users.User, error)
}

// AccountChecker gates every login attempt on the state of the local account. Twitter
// has already proven who the user is by the time we get here; the checker decides
// whether that user is still allowed in.
type AccountChecker struct {
	users UserLookup
}

func NewAccountChecker(users UserLookup) *AccountChecker {
	return &AccountChecker{users: users}
}

// Authenticate is called for each attempt to log in. Only site logins are handled:
// for any other action, Authenticate returns false and no response.
func (c *AccountChecker) Authenticate(ctx context.Context, creds twitterauth.Credentials, opts twitterauth.Options) (twitterauth.Response, bool) {
	if opts.Action != twitterauth.ActionSiteLogin {
		return twitterauth.Response{}, false
	}
	return c.CheckLocalAccount(ctx, creds), true
}

// CheckLocalAccount approves the given credentials unless the username is empty or the
// matching local account is blocked or awaiting activation. Users with no local account
// yet are approved, so that they can be registered.
func (c *AccountChecker) CheckLocalAccount(ctx context.Context, creds twitterauth.Credentials) twitterauth.Response {
	if creds.Username == "" {
		return failure(twitterauth.ErrMissingCredential)
	}

	user, err := c.users.Get(ctx, creds.Username)
	if err != nil && !errors.Is(err, users.ErrNotFound) {
		return failure(err)
	}
	if user != nil && user.IsDenied() {
		return failure(twitterauth.ErrAccountDenied)
	}

	return twitterauth.Response{
		Type:        twitterauth.ProviderName,
		Status:      twitterauth.StatusSuccess,
		Username:    creds.Username,
		Email:       creds.Email,
		DisplayName: creds.DisplayName,
	}
}

func failure(err error) twitterauth.Response {
	return twitterauth.Response{
		Type:    twitterauth.ProviderName,
		Status:  twitterauth.StatusFailure,
		Message: err.Error(),
		Err:     err,
	}
}
