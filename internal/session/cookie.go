package session

import (
	"net/http"
	"time"

	twitterauth "github.com/golden-vcr/twitter-auth"
)

const CookieName = "twitter-auth-session"

// SetCookie issues the session cookie to the client
func SetCookie(w http.ResponseWriter, value string, expiresAt time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie removes the session cookie from the client
func ClearCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest decodes the session carried in the request's cookie, if any
func (i *Issuer) FromRequest(req *http.Request) (*twitterauth.Session, error) {
	cookie, err := req.Cookie(CookieName)
	if err != nil {
		return nil, err
	}
	return i.Decode(cookie.Value)
}
