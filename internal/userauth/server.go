package userauth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/dghubble/oauth1"
	"github.com/golden-vcr/server-common/entry"
	"github.com/gorilla/mux"

	twitterauth "github.com/golden-vcr/twitter-auth"
	"github.com/golden-vcr/twitter-auth/internal/events"
	"github.com/golden-vcr/twitter-auth/internal/pending"
	"github.com/golden-vcr/twitter-auth/internal/session"
)

// requestCookieName names the short-lived cookie that ties the callback from Twitter to
// the browser that started the login
const requestCookieName = "twitter-auth-request"

// Initiator starts the OAuth handshake
type Initiator interface {
	Begin(ctx context.Context) (twitterauth.TemporaryCredential, *url.URL, error)
}

// LoginBridge completes the OAuth handshake and logs the user in
type LoginBridge interface {
	ExchangeAndLogin(ctx context.Context, temp twitterauth.TemporaryCredential, verifier string) (*twitterauth.Session, error)
}

type Server struct {
	initiator     Initiator
	pending       pending.Store
	bridge        LoginBridge
	issuer        *session.Issuer
	publisher     events.Publisher
	loginURL      string
	successURL    string
	secureCookies bool
}

func NewServer(initiator Initiator, pendingStore pending.Store, bridge LoginBridge, issuer *session.Issuer, publisher events.Publisher, loginURL, successURL string, secureCookies bool) *Server {
	return &Server{
		initiator:     initiator,
		pending:       pendingStore,
		bridge:        bridge,
		issuer:        issuer,
		publisher:     publisher,
		loginURL:      loginURL,
		successURL:    successURL,
		secureCookies: secureCookies,
	}
}

func (s *Server) RegisterRoutes(r *mux.Router) {
	r.Path("/login/start").Methods("GET").HandlerFunc(s.handleStartLogin)
	r.Path("/login/finish").Methods("GET").HandlerFunc(s.handleFinishLogin)
	r.Path("/session").Methods("GET").HandlerFunc(s.handleGetSession)
	r.Path("/session").Methods("DELETE").HandlerFunc(s.handleDeleteSession)
}

// handleStartLogin (GET /login/start) obtains a request token from Twitter and
// redirects the user to Twitter so they can sign in and grant our app access
func (s *Server) handleStartLogin(res http.ResponseWriter, req *http.Request) {
	logger := entry.Log(req)

	temp, authorizationURL, err := s.initiator.Begin(req.Context())
	if err != nil {
		logger.Error("Failed to obtain request token from Twitter", "error", err)
		s.redirectFailure(res, req, "Twitter authorization failed")
		return
	}
	if err := s.pending.Put(req.Context(), temp); err != nil {
		logger.Error("Failed to store temporary credential", "error", err)
		s.redirectFailure(res, req, "login failed")
		return
	}

	http.SetCookie(res, &http.Cookie{
		Name:     requestCookieName,
		Value:    temp.Token,
		Path:     "/",
		Expires:  time.Now().Add(pending.DefaultTTL),
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	res.Header().Set("location", authorizationURL.String())
	res.WriteHeader(http.StatusSeeOther)
}

// handleFinishLogin (GET /login/finish) is the OAuth callback: Twitter redirects the
// user here with either an oauth_token and oauth_verifier, or with a 'denied' token if
// the user declined to grant access
func (s *Server) handleFinishLogin(res http.ResponseWriter, req *http.Request) {
	logger := entry.Log(req)
	s.clearRequestCookie(res)

	// If the user cancelled, discard the pending credential and go back to the login
	// page; only the browser that started the login may discard it
	if denied := req.URL.Query().Get("denied"); denied != "" {
		if s.matchesRequestCookie(req, denied) {
			if _, _, err := s.pending.Take(req.Context(), denied); err != nil {
				logger.Error("Failed to discard temporary credential", "error", err)
			}
		}
		s.redirectFailure(res, req, "access was not granted")
		return
	}

	requestToken, verifier, err := oauth1.ParseAuthorizationCallback(req)
	if err != nil {
		logger.Error("Failed to parse OAuth callback", "error", err)
		s.redirectFailure(res, req, "invalid OAuth callback")
		return
	}

	// Verify that this callback completes a login started by the same browser
	if !s.matchesRequestCookie(req, requestToken) {
		logger.Error("Request token does not match cookie")
		s.redirectFailure(res, req, "login request verification failed")
		return
	}

	temp, ok, err := s.pending.Take(req.Context(), requestToken)
	if err != nil {
		logger.Error("Failed to load temporary credential", "error", err)
		s.redirectFailure(res, req, "login failed")
		return
	}
	if !ok {
		s.redirectFailure(res, req, "login request expired")
		return
	}

	sess, err := s.bridge.ExchangeAndLogin(req.Context(), temp, verifier)
	if err != nil {
		logger.Error("Failed to log in with Twitter", "error", err)
		s.redirectFailure(res, req, failureMessage(err))
		return
	}

	token, err := s.issuer.Encode(sess)
	if err != nil {
		logger.Error("Failed to encode session", "error", err)
		s.redirectFailure(res, req, "login failed")
		return
	}
	session.SetCookie(res, token, sess.ExpiresAt, s.secureCookies)

	logger = logger.With("username", sess.Username, "registered", sess.Registered)
	if err := s.publisher.Publish(req.Context(), events.NewEvent(sess)); err != nil {
		logger.Error("Failed to publish login event", "error", err)
	}
	logger.Info("User logged in with Twitter")

	res.Header().Set("location", s.successURL)
	res.WriteHeader(http.StatusSeeOther)
}

// handleGetSession (GET /session) describes the session carried by the request's
// cookie, or responds 401 if the user isn't logged in
func (s *Server) handleGetSession(res http.ResponseWriter, req *http.Request) {
	sess, err := s.issuer.FromRequest(req)
	if err != nil {
		http.Error(res, "not logged in", http.StatusUnauthorized)
		return
	}
	res.Header().Set("content-type", "application/json")
	if err := json.NewEncoder(res).Encode(sess); err != nil {
		http.Error(res, err.Error(), http.StatusInternalServerError)
	}
}

// handleDeleteSession (DELETE /session) logs the user out
func (s *Server) handleDeleteSession(res http.ResponseWriter, req *http.Request) {
	session.ClearCookie(res, s.secureCookies)
	res.WriteHeader(http.StatusNoContent)
}

// redirectFailure sends the user back to the login page, with a message explaining
// why the login failed
func (s *Server) redirectFailure(res http.ResponseWriter, req *http.Request, message string) {
	location := s.loginURL
	if u, err := url.Parse(s.loginURL); err == nil {
		q := u.Query()
		q.Set("error", message)
		u.RawQuery = q.Encode()
		location = u.String()
	}
	res.Header().Set("location", location)
	res.WriteHeader(http.StatusSeeOther)
}

// matchesRequestCookie reports whether the request carries the cookie set when the
// login for the given request token was started
func (s *Server) matchesRequestCookie(req *http.Request, requestToken string) bool {
	cookie, err := req.Cookie(requestCookieName)
	return err == nil && cookie.Value == requestToken
}

func (s *Server) clearRequestCookie(res http.ResponseWriter) {
	http.SetCookie(res, &http.Cookie{
		Name:     requestCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// failureMessage converts a login error into a message that's safe to show the user
func failureMessage(err error) string {
	switch {
	case twitterauth.IsProviderAuthFailure(err):
		return "Twitter authorization failed"
	case errors.Is(err, twitterauth.ErrAccountDenied):
		return "access denied"
	case errors.Is(err, twitterauth.ErrMissingCredential):
		return "no user"
	case errors.Is(err, twitterauth.ErrLoginRejected):
		return "login rejected"
	}
	return "login failed"
}
