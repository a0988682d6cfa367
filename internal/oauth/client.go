package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	"github.com/dghubble/oauth1/twitter"

	twitterauth "github.com/golden-vcr/twitter-auth"
)

// DefaultAPIURL is the base URL of the Twitter REST API
const DefaultAPIURL = "https://api.twitter.com"

// DefaultTimeout bounds each request made to Twitter
const DefaultTimeout = 10 * time.Second

const accountSettingsPath = "/1.1/account/settings.json"

var errMissingConsumerCredentials = errors.New("consumer key and consumer secret must be configured")

// Client initiates and completes the OAuth 1.0a handshake on behalf of our app
type Client struct {
	config     *oauth1.Config
	apiURL     string
	httpClient *http.Client
}

// Option customizes a Client
type Option func(c *Client)

// WithEndpoint overrides the Twitter OAuth endpoints
func WithEndpoint(endpoint oauth1.Endpoint) Option {
	return func(c *Client) {
		c.config.Endpoint = endpoint
	}
}

// WithAPIURL overrides the base URL used to fetch account settings
func WithAPIURL(apiURL string) Option {
	return func(c *Client) {
		c.apiURL = strings.TrimSuffix(apiURL, "/")
	}
}

// WithHTTPClient overrides the HTTP client used for every request to Twitter. Its
// Timeout applies to each request; a zero Timeout leaves requests bounded only by the
// caller's context.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient prepares a Client for our app's consumer credentials. callbackURL is the
// URL that Twitter will redirect the user to once they've granted (or denied) access.
func NewClient(consumerKey, consumerSecret, callbackURL string, opts ...Option) *Client {
	c := &Client{
		config: &oauth1.Config{
			ConsumerKey:    consumerKey,
			ConsumerSecret: consumerSecret,
			CallbackURL:    callbackURL,
			Endpoint:       twitter.AuthenticateEndpoint,
		},
		apiURL:     DefaultAPIURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Begin requests a temporary credential from Twitter and returns it along with the URL
// that the user should be redirected to. The caller owns the returned credential and
// must supply it to Complete.
func (c *Client) Begin(ctx context.Context) (twitterauth.TemporaryCredential, *url.URL, error) {
	if err := c.checkConsumer(); err != nil {
		return twitterauth.TemporaryCredential{}, nil, &twitterauth.ProviderAuthError{Op: "request token", Err: err}
	}

	requestToken, requestSecret, err := c.configFor(ctx).RequestToken()
	if err != nil {
		return twitterauth.TemporaryCredential{}, nil, &twitterauth.ProviderAuthError{Op: "request token", Err: err}
	}

	authorizationURL, err := c.config.AuthorizationURL(requestToken)
	if err != nil {
		return twitterauth.TemporaryCredential{}, nil, &twitterauth.ProviderAuthError{Op: "authorization url", Err: err}
	}

	return twitterauth.TemporaryCredential{
		Token:  requestToken,
		Secret: requestSecret,
	}, authorizationURL, nil
}

// Complete exchanges a temporary credential and the verifier that Twitter returned
// with the user for an access token, then fetches the profile of the authorizing user
func (c *Client) Complete(ctx context.Context, temp twitterauth.TemporaryCredential, verifier string) (twitterauth.ProviderToken, twitterauth.ProviderProfile, error) {
	if err := c.checkConsumer(); err != nil {
		return twitterauth.ProviderToken{}, twitterauth.ProviderProfile{}, &twitterauth.ProviderAuthError{Op: "access token", Err: err}
	}
	if temp.Token == "" || temp.Secret == "" || verifier == "" {
		return twitterauth.ProviderToken{}, twitterauth.ProviderProfile{}, &twitterauth.ProviderAuthError{
			Op:  "access token",
			Err: errors.New("request token, request secret and verifier are required"),
		}
	}

	accessToken, accessSecret, err := c.configFor(ctx).AccessToken(temp.Token, temp.Secret, verifier)
	if err != nil {
		return twitterauth.ProviderToken{}, twitterauth.ProviderProfile{}, &twitterauth.ProviderAuthError{Op: "access token", Err: err}
	}
	token := twitterauth.ProviderToken{
		Key:    accessToken,
		Secret: accessSecret,
	}

	profile, err := c.fetchProfile(ctx, token)
	if err != nil {
		return twitterauth.ProviderToken{}, twitterauth.ProviderProfile{}, &twitterauth.ProviderAuthError{Op: "account settings", Err: err}
	}
	return token, profile, nil
}

// fetchProfile makes an authenticated request for the user's account settings
func (c *Client) fetchProfile(ctx context.Context, token twitterauth.ProviderToken) (twitterauth.ProviderProfile, error) {
	httpClient := c.config.Client(context.WithValue(ctx, oauth1.HTTPClient, c.httpClient), oauth1.NewToken(token.Key, token.Secret))
	httpClient.Timeout = c.httpClient.Timeout

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+accountSettingsPath, nil)
	if err != nil {
		return twitterauth.ProviderProfile{}, err
	}
	res, err := httpClient.Do(req)
	if err != nil {
		return twitterauth.ProviderProfile{}, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return twitterauth.ProviderProfile{}, fmt.Errorf("got response %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var settings struct {
		ScreenName string `json:"screen_name"`
		Email      string `json:"email"`
	}
	if err := json.NewDecoder(res.Body).Decode(&settings); err != nil {
		return twitterauth.ProviderProfile{}, fmt.Errorf("failed to decode account settings: %w", err)
	}
	if settings.ScreenName == "" {
		return twitterauth.ProviderProfile{}, errors.New("account settings did not include screen_name")
	}
	return twitterauth.ProviderProfile{
		Handle: settings.ScreenName,
		Email:  settings.Email,
	}, nil
}

func (c *Client) checkConsumer() error {
	if c.config.ConsumerKey == "" || c.config.ConsumerSecret == "" {
		return errMissingConsumerCredentials
	}
	return nil
}

// configFor returns a copy of our OAuth config whose token requests are bound to ctx.
// oauth1 doesn't accept a context for RequestToken or AccessToken, so ctx is attached
// by the transport instead.
func (c *Client) configFor(ctx context.Context) *oauth1.Config {
	config := *c.config
	config.HTTPClient = &http.Client{
		Transport: &contextTransport{ctx: ctx, base: c.httpClient.Transport},
		Timeout:   c.httpClient.Timeout,
	}
	return &config
}

// contextTransport issues every request with a fixed context
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t *contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req.WithContext(t.ctx))
}
