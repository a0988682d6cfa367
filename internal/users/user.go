// Package users persists the local accounts that Twitter identities are mapped onto.
//
// A local user is keyed by its namespaced username (e.g. "twitter/alice"). Besides the
// profile fields used at registration time, each user carries the two account-state
// flags consulted at login (blocked, and a pending activation token) and a bag of
// opaque named parameters, which is where the Twitter access token pair is kept.
package users

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already registered")
	ErrDuplicateEmail    = errors.New("email already registered")
)

// User is a local account
type User struct {
	Username   string            `json:"username"`
	Name       string            `json:"name"`
	Email      string            `json:"email"`
	Blocked    bool              `json:"blocked"`
	Activation string            `json:"activation,omitempty"`
	Params     map[string]string `json:"params,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// IsDenied reports whether the account may not log in: either an administrator has
// blocked it or it has not yet been activated
func (u *User) IsDenied() bool {
	return u.Blocked || u.Activation != ""
}
