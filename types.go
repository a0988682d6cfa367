package twitterauth

import (
	"time"
)

// ProviderName identifies Twitter as the source of an identity: it namespaces local
// usernames and the names of the parameters persisted against each local user
const ProviderName = "twitter"

// ActionSiteLogin is the only login action that the account checker responds to; any
// other action (e.g. an administrator login) is left to other authenticators
const ActionSiteLogin = "core.login.site"

// Names of the opaque parameters that record a user's Twitter access token pair
const (
	ParamTokenKey    = ProviderName + ".token.key"
	ParamTokenSecret = ProviderName + ".token.secret"
)

// Credentials are the local login credentials derived from a Twitter profile
type Credentials struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// TemporaryCredential is the request token pair issued by Twitter at the start of the
// OAuth handshake. The secret half never leaves the server: it's held in a pending
// store, keyed by Token, until the user agent comes back with a verifier.
type TemporaryCredential struct {
	Token  string `json:"token"`
	Secret string `json:"secret"`
}

// ProviderToken is the long-lived access token pair returned by Twitter once the
// handshake completes
type ProviderToken struct {
	Key    string
	Secret string
}

// ProviderProfile is the subset of a Twitter account's settings that we care about
type ProviderProfile struct {
	Handle string
	Email  string
}

// Options carries the login options passed through the authentication chain
type Options struct {
	Action string
	// Params are recorded against the local user if the login succeeds, in the same
	// write that registers a new user
	Params map[string]string
}

// Status is the outcome of a single authenticator's check
type Status int

const (
	StatusFailure Status = iota
	StatusSuccess
)

func (s Status) String() string {
	if s == StatusSuccess {
		return "success"
	}
	return "failure"
}

// Response is the result of checking a set of credentials against the local account
// store. Responses are values: a failed check never carries identity fields.
type Response struct {
	Type        string
	Status      Status
	Message     string
	Err         error
	Username    string
	Email       string
	DisplayName string
}

// Session describes a successful login
type Session struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email"`
	Registered  bool      `json:"registered,omitempty"`
	IssuedAt    time.Time `json:"issuedAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// LocalUsername returns the namespaced username under which a Twitter handle is
// registered locally, e.g. "twitter/alice"
func LocalUsername(handle string) string {
	return ProviderName + "/" + handle
}

// PlaceholderEmail synthesizes a deterministic email address for accounts whose
// profile doesn't expose one, since registration requires an email
func PlaceholderEmail(handle string) string {
	return handle + "@" + ProviderName + ".example"
}

// DeriveCredentials maps a Twitter profile to local login credentials
func DeriveCredentials(profile ProviderProfile) Credentials {
	email := profile.Email
	if email == "" {
		email = PlaceholderEmail(profile.Handle)
	}
	return Credentials{
		Username:    LocalUsername(profile.Handle),
		DisplayName: profile.Handle,
		Email:       email,
	}
}
