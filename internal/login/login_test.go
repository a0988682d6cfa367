package login

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	twitterauth "github.com/golden-vcr/twitter-auth"
	"github.com/golden-vcr/twitter-auth/internal/users"
)

type mockUserStore struct {
	users      map[string]*users.User
	getErr     error
	getCalls   int
	paramCalls int
}

func (m *mockUserStore) Get(ctx context.Context, username string) (*users.User, error) {
	m.getCalls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	u, ok := m.users[username]
	if !ok {
		return nil, users.ErrNotFound
	}
	return u, nil
}

func (m *mockUserStore) SetParams(ctx context.Context, username string, params map[string]string) error {
	m.paramCalls++
	u, ok := m.users[username]
	if !ok {
		return users.ErrNotFound
	}
	if u.Params == nil {
		u.Params = make(map[string]string)
	}
	for k, v := range params {
		u.Params[k] = v
	}
	return nil
}

func Test_AccountChecker_CheckLocalAccount(t *testing.T) {
	store := &mockUserStore{
		users: map[string]*users.User{
			"twitter/active":      {Username: "twitter/active"},
			"twitter/blocked":     {Username: "twitter/blocked", Blocked: true},
			"twitter/unactivated": {Username: "twitter/unactivated", Activation: "abc123"},
		},
	}
	tests := []struct {
		name      string
		creds     twitterauth.Credentials
		wantLooks int
		want      twitterauth.Response
	}{
		{
			"empty username fails without touching the store",
			twitterauth.Credentials{Email: "x@example.com"},
			0,
			twitterauth.Response{
				Type:    "twitter",
				Status:  twitterauth.StatusFailure,
				Message: "no user",
				Err:     twitterauth.ErrMissingCredential,
			},
		},
		{
			"blocked user is denied and gets no identity fields",
			twitterauth.Credentials{Username: "twitter/blocked", DisplayName: "blocked", Email: "b@example.com"},
			1,
			twitterauth.Response{
				Type:    "twitter",
				Status:  twitterauth.StatusFailure,
				Message: "access denied",
				Err:     twitterauth.ErrAccountDenied,
			},
		},
		{
			"user pending activation is denied",
			twitterauth.Credentials{Username: "twitter/unactivated", DisplayName: "unactivated", Email: "u@example.com"},
			1,
			twitterauth.Response{
				Type:    "twitter",
				Status:  twitterauth.StatusFailure,
				Message: "access denied",
				Err:     twitterauth.ErrAccountDenied,
			},
		},
		{
			"active user succeeds with input credentials",
			twitterauth.Credentials{Username: "twitter/active", DisplayName: "active", Email: "a@example.com"},
			1,
			twitterauth.Response{
				Type:        "twitter",
				Status:      twitterauth.StatusSuccess,
				Username:    "twitter/active",
				Email:       "a@example.com",
				DisplayName: "active",
			},
		},
		{
			"unknown user succeeds so that they may be registered",
			twitterauth.Credentials{Username: "twitter/newcomer", DisplayName: "newcomer", Email: "newcomer@twitter.example"},
			1,
			twitterauth.Response{
				Type:        "twitter",
				Status:      twitterauth.StatusSuccess,
				Username:    "twitter/newcomer",
				Email:       "newcomer@twitter.example",
				DisplayName: "newcomer",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store.getCalls = 0
			c := NewAccountChecker(store)
			got := c.CheckLocalAccount(context.Background(), tt.creds)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantLooks, store.getCalls)
		})
	}
}

func Test_AccountChecker_CheckLocalAccount_store_error(t *testing.T) {
	storeErr := errors.New("database is locked")
	c := NewAccountChecker(&mockUserStore{getErr: storeErr})
	got := c.CheckLocalAccount(context.Background(), twitterauth.Credentials{Username: "twitter/alice"})
	assert.Equal(t, twitterauth.StatusFailure, got.Status)
	assert.ErrorIs(t, got.Err, storeErr)
	assert.Empty(t, got.Username)
}

func Test_AccountChecker_Authenticate(t *testing.T) {
	store := &mockUserStore{users: map[string]*users.User{}}
	c := NewAccountChecker(store)
	creds := twitterauth.Credentials{Username: "twitter/alice", DisplayName: "alice", Email: "alice@example.com"}

	got, handled := c.Authenticate(context.Background(), creds, twitterauth.Options{Action: "core.login.admin"})
	assert.False(t, handled)
	assert.Equal(t, twitterauth.Response{}, got)
	assert.Equal(t, 0, store.getCalls)

	got, handled = c.Authenticate(context.Background(), creds, twitterauth.Options{Action: twitterauth.ActionSiteLogin})
	assert.True(t, handled)
	assert.Equal(t, twitterauth.StatusSuccess, got.Status)
	assert.Equal(t, "twitter/alice", got.Username)
}

type mockExchanger struct {
	token   twitterauth.ProviderToken
	profile twitterauth.ProviderProfile
	err     error

	gotTemp     twitterauth.TemporaryCredential
	gotVerifier string
}

func (m *mockExchanger) Complete(ctx context.Context, temp twitterauth.TemporaryCredential, verifier string) (twitterauth.ProviderToken, twitterauth.ProviderProfile, error) {
	m.gotTemp = temp
	m.gotVerifier = verifier
	return m.token, m.profile, m.err
}

// mockSessionLogin registers unknown users in the backing store and records the login
// params against them, as the real login routine does, unless configured to reject
// the login
type mockSessionLogin struct {
	store    *mockUserStore
	err      error
	gotCreds []twitterauth.Credentials
	gotOpts  []twitterauth.Options
}

func (m *mockSessionLogin) Login(ctx context.Context, creds twitterauth.Credentials, opts twitterauth.Options) (*twitterauth.Session, error) {
	m.gotCreds = append(m.gotCreds, creds)
	m.gotOpts = append(m.gotOpts, opts)
	if m.err != nil {
		return nil, m.err
	}
	if _, ok := m.store.users[creds.Username]; !ok {
		m.store.users[creds.Username] = &users.User{Username: creds.Username, Name: creds.DisplayName, Email: creds.Email}
	}
	if err := m.store.SetParams(ctx, creds.Username, opts.Params); err != nil {
		return nil, err
	}
	return &twitterauth.Session{ID: "session-1", Username: creds.Username, DisplayName: creds.DisplayName, Email: creds.Email}, nil
}

func Test_Bridge_ExchangeAndLogin(t *testing.T) {
	store := &mockUserStore{users: map[string]*users.User{}}
	exchanger := &mockExchanger{
		token:   twitterauth.ProviderToken{Key: "access-key", Secret: "access-secret"},
		profile: twitterauth.ProviderProfile{Handle: "alice"},
	}
	host := &mockSessionLogin{store: store}
	b := NewBridge(exchanger, host)

	temp := twitterauth.TemporaryCredential{Token: "req-token", Secret: "req-secret"}
	session, err := b.ExchangeAndLogin(context.Background(), temp, "verifier")
	assert.NoError(t, err)
	assert.Equal(t, "twitter/alice", session.Username)

	assert.Equal(t, temp, exchanger.gotTemp)
	assert.Equal(t, "verifier", exchanger.gotVerifier)
	assert.Equal(t, []twitterauth.Credentials{
		{Username: "twitter/alice", DisplayName: "alice", Email: "alice@twitter.example"},
	}, host.gotCreds)
	assert.Equal(t, map[string]string{
		"twitter.token.key":    "access-key",
		"twitter.token.secret": "access-secret",
	}, store.users["twitter/alice"].Params)
}

func Test_Bridge_ExchangeAndLogin_passes_email_through(t *testing.T) {
	store := &mockUserStore{users: map[string]*users.User{}}
	exchanger := &mockExchanger{
		token:   twitterauth.ProviderToken{Key: "k", Secret: "s"},
		profile: twitterauth.ProviderProfile{Handle: "bob", Email: "bob@example.com"},
	}
	host := &mockSessionLogin{store: store}
	b := NewBridge(exchanger, host)

	_, err := b.ExchangeAndLogin(context.Background(), twitterauth.TemporaryCredential{Token: "t", Secret: "s"}, "v")
	assert.NoError(t, err)
	assert.Equal(t, "bob@example.com", host.gotCreds[0].Email)
}

func Test_Bridge_ExchangeAndLogin_login_rejected(t *testing.T) {
	store := &mockUserStore{
		users: map[string]*users.User{
			"twitter/alice": {
				Username: "twitter/alice",
				Params: map[string]string{
					"twitter.token.key":    "old-key",
					"twitter.token.secret": "old-secret",
				},
			},
		},
	}
	exchanger := &mockExchanger{
		token:   twitterauth.ProviderToken{Key: "new-key", Secret: "new-secret"},
		profile: twitterauth.ProviderProfile{Handle: "alice"},
	}
	host := &mockSessionLogin{store: store, err: twitterauth.ErrAccountDenied}
	b := NewBridge(exchanger, host)

	session, err := b.ExchangeAndLogin(context.Background(), twitterauth.TemporaryCredential{Token: "t", Secret: "s"}, "v")
	assert.Nil(t, session)
	assert.ErrorIs(t, err, twitterauth.ErrAccountDenied)
	assert.Equal(t, 0, store.paramCalls)
	assert.Equal(t, map[string]string{
		"twitter.token.key":    "old-key",
		"twitter.token.secret": "old-secret",
	}, store.users["twitter/alice"].Params)
}

func Test_Bridge_ExchangeAndLogin_provider_failure(t *testing.T) {
	store := &mockUserStore{users: map[string]*users.User{}}
	providerErr := &twitterauth.ProviderAuthError{Op: "access token", Err: errors.New("invalid verifier")}
	exchanger := &mockExchanger{err: providerErr}
	host := &mockSessionLogin{store: store}
	b := NewBridge(exchanger, host)

	session, err := b.ExchangeAndLogin(context.Background(), twitterauth.TemporaryCredential{Token: "t", Secret: "s"}, "v")
	assert.Nil(t, session)
	assert.Equal(t, providerErr, err)
	assert.Empty(t, host.gotCreds)
	assert.Equal(t, 0, store.paramCalls)
}

func Test_Bridge_ExchangeAndLogin_hands_token_to_login(t *testing.T) {
	store := &mockUserStore{users: map[string]*users.User{}}
	exchanger := &mockExchanger{
		token:   twitterauth.ProviderToken{Key: "k", Secret: "s"},
		profile: twitterauth.ProviderProfile{Handle: "alice"},
	}
	host := &mockSessionLogin{store: store}
	b := NewBridge(exchanger, host)

	_, err := b.ExchangeAndLogin(context.Background(), twitterauth.TemporaryCredential{Token: "t", Secret: "s"}, "v")
	assert.NoError(t, err)
	assert.Equal(t, []twitterauth.Options{{
		Params: map[string]string{
			"twitter.token.key":    "k",
			"twitter.token.secret": "s",
		},
	}}, host.gotOpts)
	assert.Equal(t, 1, store.paramCalls)
}
