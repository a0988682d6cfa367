package admin

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golden-vcr/twitter-auth/internal/users"
)

func newTestStore(t *testing.T) *users.SQLiteStore {
	t.Helper()
	store, err := users.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	require.NoError(t, store.Create(ctx, users.User{Username: "twitter/alice", Name: "alice", Email: "alice@twitter.example"}))
	require.NoError(t, store.SetParams(ctx, "twitter/alice", map[string]string{
		"twitter.token.key":    "access-key",
		"twitter.token.secret": "access-secret",
	}))
	return store
}

func doRequest(t *testing.T, handler http.HandlerFunc, method, username, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, "/users/"+username, strings.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"username": username})
	res := httptest.NewRecorder()
	handler(res, req)

	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.Code, strings.TrimSuffix(string(b), "\n")
}

func Test_Server_handleGetUser(t *testing.T) {
	store := newTestStore(t)
	s := NewServer(store)

	status, body := doRequest(t, s.handleGetUser, http.MethodGet, "twitter/nobody", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "user 'twitter/nobody' not found", body)

	status, body = doRequest(t, s.handleGetUser, http.MethodGet, "twitter/alice", "")
	assert.Equal(t, http.StatusOK, status)
	assert.NotContains(t, body, "access-secret")
	assert.Contains(t, body, `"hasTwitterToken":true`)
	assert.Contains(t, body, `"blocked":false`)
}

func Test_Server_handlePatchUser(t *testing.T) {
	tests := []struct {
		name           string
		username       string
		body           string
		wantStatus     int
		wantBlocked    bool
		wantActivation string
	}{
		{
			"block user",
			"twitter/alice",
			`{"blocked":true}`,
			200,
			true,
			"",
		},
		{
			"require activation",
			"twitter/alice",
			`{"activation":"abc123"}`,
			200,
			false,
			"abc123",
		},
		{
			"update both fields",
			"twitter/alice",
			`{"blocked":true,"activation":"abc123"}`,
			200,
			true,
			"abc123",
		},
		{
			"empty patch is rejected",
			"twitter/alice",
			`{}`,
			400,
			false,
			"",
		},
		{
			"malformed body is rejected",
			"twitter/alice",
			`blocked`,
			400,
			false,
			"",
		},
		{
			"unknown user is not found",
			"twitter/nobody",
			`{"blocked":true}`,
			404,
			false,
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			s := NewServer(store)

			status, _ := doRequest(t, s.handlePatchUser, http.MethodPatch, tt.username, tt.body)
			assert.Equal(t, tt.wantStatus, status)

			u, err := store.Get(context.Background(), "twitter/alice")
			require.NoError(t, err)
			assert.Equal(t, tt.wantBlocked, u.Blocked)
			assert.Equal(t, tt.wantActivation, u.Activation)
		})
	}
}

func Test_newUserView(t *testing.T) {
	createdAt := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	view := newUserView(&users.User{
		Username:   "twitter/bob",
		Name:       "bob",
		Email:      "bob@example.com",
		Activation: "abc",
		CreatedAt:  createdAt,
	})
	assert.Equal(t, UserView{
		Username:        "twitter/bob",
		Name:            "bob",
		Email:           "bob@example.com",
		Activation:      "abc",
		HasTwitterToken: false,
		CreatedAt:       createdAt,
	}, view)
}
