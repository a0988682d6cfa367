package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	twitterauth "github.com/golden-vcr/twitter-auth"
	"github.com/golden-vcr/twitter-auth/internal/users"
)

// Authenticator is a single link in the authentication chain. It returns false if it
// doesn't handle the given login options.
type Authenticator interface {
	Authenticate(ctx context.Context, creds twitterauth.Credentials, opts twitterauth.Options) (twitterauth.Response, bool)
}

// UserStore is the subset of the user store needed to log in and auto-register users
type UserStore interface {
	Get(ctx context.Context, username string) (*users.User, error)
	Create(ctx context.Context, u users.User) error
	SetParams(ctx context.Context, username string, params map[string]string) error
}

// Host is the login routine: it verifies credentials against its authenticators,
// registers users who aren't yet known locally, and starts a session
type Host struct {
	users          UserStore
	authenticators []Authenticator
	ttl            time.Duration
	now            func() time.Time
	newID          func() string
}

func NewHost(userStore UserStore, ttl time.Duration, authenticators ...Authenticator) *Host {
	return &Host{
		users:          userStore,
		authenticators: authenticators,
		ttl:            ttl,
		now:            time.Now,
		newID:          uuid.NewString,
	}
}

// Login runs the credentials through the authentication chain: the first
// authenticator that handles the login decides the outcome. If no action is given,
// the login is treated as a site login. Any params in opts are stored against the user
// only once the login has succeeded.
func (h *Host) Login(ctx context.Context, creds twitterauth.Credentials, opts twitterauth.Options) (*twitterauth.Session, error) {
	if opts.Action == "" {
		opts.Action = twitterauth.ActionSiteLogin
	}

	response, err := h.authenticate(ctx, creds, opts)
	if err != nil {
		return nil, err
	}

	registered, err := h.ensureUser(ctx, response, opts.Params)
	if err != nil {
		return nil, err
	}

	issuedAt := h.now().UTC().Truncate(time.Second)
	return &twitterauth.Session{
		ID:          h.newID(),
		Username:    response.Username,
		DisplayName: response.DisplayName,
		Email:       response.Email,
		Registered:  registered,
		IssuedAt:    issuedAt,
		ExpiresAt:   issuedAt.Add(h.ttl),
	}, nil
}

func (h *Host) authenticate(ctx context.Context, creds twitterauth.Credentials, opts twitterauth.Options) (twitterauth.Response, error) {
	for _, a := range h.authenticators {
		response, handled := a.Authenticate(ctx, creds, opts)
		if !handled {
			continue
		}
		if response.Status != twitterauth.StatusSuccess {
			if response.Err != nil {
				return response, fmt.Errorf("%s authentication failed: %w", response.Type, response.Err)
			}
			return response, fmt.Errorf("%s authentication failed: %s", response.Type, response.Message)
		}
		return response, nil
	}
	return twitterauth.Response{}, fmt.Errorf("%w: no authenticator handled action %q", twitterauth.ErrLoginRejected, opts.Action)
}

// ensureUser registers the authenticated user if they don't yet have a local account,
// reporting whether a new account was created. A new account is created with its
// params; an existing account has its params updated.
func (h *Host) ensureUser(ctx context.Context, response twitterauth.Response, params map[string]string) (bool, error) {
	_, err := h.users.Get(ctx, response.Username)
	if err == nil {
		if len(params) == 0 {
			return false, nil
		}
		if err := h.users.SetParams(ctx, response.Username, params); err != nil {
			return false, fmt.Errorf("failed to update params for %s: %w", response.Username, err)
		}
		return false, nil
	}
	if !errors.Is(err, users.ErrNotFound) {
		return false, fmt.Errorf("failed to look up user %s: %w", response.Username, err)
	}

	err = h.users.Create(ctx, users.User{
		Username: response.Username,
		Name:     response.DisplayName,
		Email:    response.Email,
		Params:   params,
	})
	if errors.Is(err, users.ErrDuplicateEmail) || errors.Is(err, users.ErrDuplicateUsername) {
		return false, fmt.Errorf("%w: %v", twitterauth.ErrLoginRejected, err)
	}
	if err != nil {
		return false, fmt.Errorf("failed to register user %s: %w", response.Username, err)
	}
	return true, nil
}
