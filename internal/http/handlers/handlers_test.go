package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/all-in-auth/internal/account"
	"github.com/hongminglow/all-in-auth/internal/auth"
	"github.com/hongminglow/all-in-auth/internal/credentials"
	"github.com/hongminglow/all-in-auth/internal/logging"
	"github.com/hongminglow/all-in-auth/internal/middleware"
	"github.com/hongminglow/all-in-auth/internal/models"
	"github.com/hongminglow/all-in-auth/internal/storage"
	"github.com/hongminglow/all-in-auth/internal/storage/memory"
)

var cheapParams = credentials.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

type fixture struct {
	router http.Handler
	tokens *auth.UserTokens
}

func newFixture(t *testing.T, store storage.UserStore) fixture {
	t.Helper()
	if store == nil {
		store = memory.NewUserStore()
	}
	tokens := auth.NewUserTokens(auth.NewTokenManager(), "", time.Hour)
	accounts := account.NewService(store, credentials.NewArgon2Hasher(cheapParams), tokens, nil)
	logger := logging.Discard()

	r := chi.NewRouter()
	NewAuthHandler(accounts, logger).Register(r)
	NewUsersHandler(accounts, logger).Register(r)
	NewGateHandler(middleware.Gate(tokens, middleware.GateConfig{Logger: logger})).Register(r)
	return fixture{router: r, tokens: tokens}
}

func (f fixture) do(t *testing.T, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return rec, out
}

func credentialsBody(username, password string) string {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(map[string]string{"username": username, "password": password})
	return buf.String()
}

func TestRegisterIssuesToken(t *testing.T) {
	f := newFixture(t, nil)

	rec, out := f.do(t, http.MethodPost, "/register", credentialsBody("alice", "pw1"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["auth"])
	assert.Equal(t, "alice", out["username"])
	assert.Equal(t, "User created", out["message"])

	token, _ := out["token"].(string)
	require.NotEmpty(t, token)
	assert.True(t, f.tokens.Verify(token, "alice").Valid)
}

func TestRegisterDuplicate(t *testing.T) {
	f := newFixture(t, nil)
	rec, _ := f.do(t, http.MethodPost, "/register", credentialsBody("alice", "pw1"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, out := f.do(t, http.MethodPost, "/register", credentialsBody("alice", "other"), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "User already exists", out["message"])
	assert.Equal(t, account.OutcomeConflict, out["error"])
	assert.NotContains(t, out, "token")
}

func TestRegisterRejectsBadInput(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing password", credentialsBody("alice", ""), "Username and password are required"},
		{"blank username", credentialsBody("   ", "pw"), "Username and password are required"},
		{"not json", "{", "Invalid JSON payload"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, out := f.do(t, http.MethodPost, "/register", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.message, out["message"])
			assert.Equal(t, account.OutcomeInvalidInput, out["error"])
		})
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t, nil)
	f.do(t, http.MethodPost, "/register", credentialsBody("alice", "pw1"), nil)

	rec, out := f.do(t, http.MethodPost, "/login", credentialsBody("alice", "pw1"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["auth"])
	assert.Equal(t, "User logged in", out["message"])
	token, _ := out["token"].(string)
	assert.True(t, f.tokens.Verify(token, "alice").Valid)

	wrong, wrongBody := f.do(t, http.MethodPost, "/login", credentialsBody("alice", "nope"), nil)
	unknown, unknownBody := f.do(t, http.MethodPost, "/login", credentialsBody("mallory", "pw1"), nil)
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, map[string]any{"message": "Invalid credentials"}, wrongBody)
	assert.Equal(t, wrongBody, unknownBody)
}

func TestForgotPassword(t *testing.T) {
	f := newFixture(t, nil)
	f.do(t, http.MethodPost, "/register", credentialsBody("alice", "pw1"), nil)

	rec, out := f.do(t, http.MethodPost, "/forgotpassword", `{"username":"alice"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"message": "Password reset link sent", "user": true}, out)

	rec, out = f.do(t, http.MethodPost, "/forgotpassword", `{"username":"bob"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, false, out["user"])
	assert.Equal(t, "Invalid credentials", out["message"])

	rec, out = f.do(t, http.MethodPost, "/forgotpassword", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, out["user"])
}

func TestResetPassword(t *testing.T) {
	f := newFixture(t, nil)
	f.do(t, http.MethodPost, "/register", credentialsBody("alice", "pw1"), nil)

	rec, out := f.do(t, http.MethodPost, "/resetpassword", credentialsBody("alice", "pw2"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"message": "Password reset", "user": true}, out)

	rec, _ = f.do(t, http.MethodPost, "/login", credentialsBody("alice", "pw1"), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec, _ = f.do(t, http.MethodPost, "/login", credentialsBody("alice", "pw2"), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, out = f.do(t, http.MethodPost, "/resetpassword", credentialsBody("bob", "pw"), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, false, out["user"])
}

func TestGetAllOmitsHashes(t *testing.T) {
	f := newFixture(t, nil)

	rec, out := f.do(t, http.MethodGet, "/getall", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, out["users"])

	f.do(t, http.MethodPost, "/register", credentialsBody("alice", "pw1"), nil)
	f.do(t, http.MethodPost, "/register", credentialsBody("bob", "pw2"), nil)

	rec, out = f.do(t, http.MethodGet, "/getall", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users, ok := out["users"].([]any)
	require.True(t, ok)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].(map[string]any)["username"])
	assert.Equal(t, "bob", users[1].(map[string]any)["username"])
	assert.NotContains(t, rec.Body.String(), "argon2id")
	assert.NotContains(t, rec.Body.String(), "PasswordHash")
}

func TestGate(t *testing.T) {
	f := newFixture(t, nil)
	_, reg := f.do(t, http.MethodPost, "/register", credentialsBody("alice", "pw1"), nil)
	token := reg["token"].(string)

	tests := []struct {
		name    string
		headers map[string]string
		auth    bool
		message string
	}{
		{"valid", map[string]string{"Authorization": token, "User": "alice"}, true, ""},
		{"bearer prefix", map[string]string{"Authorization": "Bearer " + token, "User": "alice"}, true, ""},
		{"no token", map[string]string{"User": "alice"}, false, auth.MessageNoToken},
		{"other user", map[string]string{"Authorization": token, "User": "bob"}, false, auth.MessageInvalidToken},
		{"no user", map[string]string{"Authorization": token}, false, auth.MessageInvalidToken},
		{"garbage", map[string]string{"Authorization": "abc", "User": "alice"}, false, auth.MessageInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, out := f.do(t, http.MethodGet, "/auth", "", tt.headers)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.auth, out["auth"])
			if tt.message == "" {
				assert.NotContains(t, out, "message")
			} else {
				assert.Equal(t, tt.message, out["message"])
			}
		})
	}
}

type failingStore struct{ err error }

func (s failingStore) CreateUser(context.Context, models.User) (models.User, error) {
	return models.User{}, s.err
}

func (s failingStore) FindByUsername(context.Context, string) (models.User, error) {
	return models.User{}, s.err
}

func (s failingStore) UpdatePasswordHash(context.Context, string, string) (models.User, error) {
	return models.User{}, s.err
}

func (s failingStore) ListUsers(context.Context) ([]models.User, error) { return nil, s.err }

func TestStoreFailureIsOpaque(t *testing.T) {
	f := newFixture(t, failingStore{err: errors.New("dial tcp 10.0.0.5:5432: connection refused")})

	tests := []struct {
		method, path, body, message string
	}{
		{http.MethodPost, "/register", credentialsBody("alice", "pw"), "Error creating user"},
		{http.MethodPost, "/login", credentialsBody("alice", "pw"), "Error logging in"},
		{http.MethodPost, "/forgotpassword", `{"username":"alice"}`, "Error looking up user"},
		{http.MethodPost, "/resetpassword", credentialsBody("alice", "pw"), "Error resetting password"},
		{http.MethodGet, "/getall", "", "Error getting users"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec, out := f.do(t, tt.method, tt.path, tt.body, nil)
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, tt.message, out["message"])
			assert.Equal(t, account.OutcomeStoreFailure, out["error"])
			assert.NotContains(t, rec.Body.String(), "10.0.0.5")
		})
	}
}
