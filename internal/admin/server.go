// Package admin exposes endpoints that let the broadcaster inspect local accounts and
// change the account state that's consulted whenever a user logs in with Twitter:
// blocked users and users with a pending activation are denied access.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golden-vcr/auth"
	"github.com/golden-vcr/server-common/entry"
	"github.com/gorilla/mux"

	twitterauth "github.com/golden-vcr/twitter-auth"
	"github.com/golden-vcr/twitter-auth/internal/users"
)

type UserStore interface {
	Get(ctx context.Context, username string) (*users.User, error)
	SetBlocked(ctx context.Context, username string, blocked bool) error
	SetActivation(ctx context.Context, username string, activation string) error
}

type Server struct {
	users UserStore
}

func NewServer(userStore UserStore) *Server {
	return &Server{users: userStore}
}

func (s *Server) RegisterRoutes(c auth.Client, r *mux.Router) {
	user := r.Path("/users/{username:.+}").Subrouter()
	user.Use(func(next http.Handler) http.Handler {
		return auth.RequireAccess(c, auth.RoleBroadcaster, next)
	})
	user.Methods("GET").HandlerFunc(s.handleGetUser)
	user.Methods("PATCH").HandlerFunc(s.handlePatchUser)
}

// UserView is the JSON representation of a local account. The Twitter access token is
// never included; HasTwitterToken reports whether one is on record.
type UserView struct {
	Username        string    `json:"username"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Blocked         bool      `json:"blocked"`
	Activation      string    `json:"activation,omitempty"`
	HasTwitterToken bool      `json:"hasTwitterToken"`
	CreatedAt       time.Time `json:"createdAt"`
}

func newUserView(u *users.User) UserView {
	return UserView{
		Username:        u.Username,
		Name:            u.Name,
		Email:           u.Email,
		Blocked:         u.Blocked,
		Activation:      u.Activation,
		HasTwitterToken: u.Params[twitterauth.ParamTokenKey] != "",
		CreatedAt:       u.CreatedAt,
	}
}

// Patch describes a change to a user's account state; nil fields are left unchanged
type Patch struct {
	Blocked    *bool   `json:"blocked"`
	Activation *string `json:"activation"`
}

// handleGetUser (GET /users/{username}) describes a single local account
func (s *Server) handleGetUser(res http.ResponseWriter, req *http.Request) {
	logger := entry.Log(req)
	username := mux.Vars(req)["username"]

	u, err := s.users.Get(req.Context(), username)
	if errors.Is(err, users.ErrNotFound) {
		http.Error(res, fmt.Sprintf("user '%s' not found", username), http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Error("Failed to get user", "username", username, "error", err)
		http.Error(res, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeUser(res, u)
}

// handlePatchUser (PATCH /users/{username}) blocks, unblocks, activates, or requires
// activation for a local account
func (s *Server) handlePatchUser(res http.ResponseWriter, req *http.Request) {
	logger := entry.Log(req)
	username := mux.Vars(req)["username"]

	var patch Patch
	if err := json.NewDecoder(req.Body).Decode(&patch); err != nil {
		http.Error(res, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if patch.Blocked == nil && patch.Activation == nil {
		http.Error(res, "request body must specify 'blocked' and/or 'activation'", http.StatusBadRequest)
		return
	}

	if patch.Blocked != nil {
		if err := s.users.SetBlocked(req.Context(), username, *patch.Blocked); err != nil {
			s.writeUpdateError(res, req, username, err)
			return
		}
	}
	if patch.Activation != nil {
		if err := s.users.SetActivation(req.Context(), username, *patch.Activation); err != nil {
			s.writeUpdateError(res, req, username, err)
			return
		}
	}

	u, err := s.users.Get(req.Context(), username)
	if err != nil {
		logger.Error("Failed to get updated user", "username", username, "error", err)
		http.Error(res, err.Error(), http.StatusInternalServerError)
		return
	}
	logger.Info("Updated account state",
		"username", username,
		"blocked", u.Blocked,
		"pendingActivation", u.Activation != "",
	)
	s.writeUser(res, u)
}

func (s *Server) writeUser(res http.ResponseWriter, u *users.User) {
	res.Header().Set("content-type", "application/json")
	if err := json.NewEncoder(res).Encode(newUserView(u)); err != nil {
		http.Error(res, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) writeUpdateError(res http.ResponseWriter, req *http.Request, username string, err error) {
	if errors.Is(err, users.ErrNotFound) {
		http.Error(res, fmt.Sprintf("user '%s' not found", username), http.StatusNotFound)
		return
	}
	entry.Log(req).Error("Failed to update user", "username", username, "error", err)
	http.Error(res, err.Error(), http.StatusInternalServerError)
}
