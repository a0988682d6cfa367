package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	twitterauth "github.com/golden-vcr/twitter-auth"
)

const issuerName = "twitter-auth"

// Claims is the JWT payload that carries a session in the user's cookie
type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Issuer signs sessions into cookie values, and verifies them on the way back in
type Issuer struct {
	secret []byte
}

func NewIssuer(secret string) (*Issuer, error) {
	if len(secret) < 32 {
		return nil, errors.New("session secret must be at least 32 bytes")
	}
	return &Issuer{secret: []byte(secret)}, nil
}

// Encode returns a signed token for the given session
func (i *Issuer) Encode(s *twitterauth.Session) (string, error) {
	claims := Claims{
		Name:  s.DisplayName,
		Email: s.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.ID,
			Subject:   s.Username,
			Issuer:    issuerName,
			IssuedAt:  jwt.NewNumericDate(s.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Decode verifies a token and returns the session it describes
func (i *Issuer) Decode(tokenString string) (*twitterauth.Session, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuerName),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("invalid session token: missing subject")
	}

	s := &twitterauth.Session{
		ID:          claims.ID,
		Username:    claims.Subject,
		DisplayName: claims.Name,
		Email:       claims.Email,
	}
	if claims.IssuedAt != nil {
		s.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return s, nil
}

// TTL converts a configured session lifetime in minutes into a duration
func TTL(minutes int) time.Duration {
	if minutes <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(minutes) * time.Minute
}
