// Package account implements register, login and password reset over a UserStore.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hongminglow/all-in-auth/internal/auth"
	"github.com/hongminglow/all-in-auth/internal/credentials"
	"github.com/hongminglow/all-in-auth/internal/metrics"
	"github.com/hongminglow/all-in-auth/internal/models"
	"github.com/hongminglow/all-in-auth/internal/storage"
)

var (
	// ErrInvalidInput indicates a missing username or password.
	ErrInvalidInput = errors.New("username and password are required")
	// ErrInvalidCredentials covers both an unknown username and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUsernameTaken indicates a register for an existing username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrTokenIssue indicates the signed token could not be produced.
	ErrTokenIssue = errors.New("token issue failure")
)

// Outcome labels reported to metrics.
const (
	OutcomeSuccess            = "success"
	OutcomeInvalidInput       = "invalid_input"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeConflict           = "conflict"
	OutcomeHashingFailure     = "hashing_failure"
	OutcomeTokenFailure       = "token_failure"
	OutcomeStoreFailure       = "store_failure"
)

// Session is what a successful register or login hands back.
type Session struct {
	Username string
	Token    string
}

// Tokens issues per-user bearer tokens.
type Tokens interface {
	Issue(username string) (string, error)
}

var _ Tokens = (*auth.UserTokens)(nil)

// Service provides account operations:
// - Register: create a user and mint a token
// - Login: verify credentials and mint a token
// - ForgotPassword / ResetPassword: existence check and hash replacement
// - ListUsers: every stored user
type Service struct {
	store   storage.UserStore
	hasher  credentials.Hasher
	tokens  Tokens
	metrics metrics.Recorder
}

// NewService wires the service. A nil recorder disables metrics.
func NewService(store storage.UserStore, hasher credentials.Hasher, tokens Tokens, rec metrics.Recorder) *Service {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Service{store: store, hasher: hasher, tokens: tokens, metrics: rec}
}

// Register hashes password, stores the user, and issues a token.
func (s *Service) Register(ctx context.Context, username, password string) (session Session, err error) {
	defer func() { s.record("register", err) }()

	username = normalize(username)
	if username == "" || password == "" {
		return Session{}, ErrInvalidInput
	}
	hash, err := s.hash(password)
	if err != nil {
		return Session{}, err
	}
	if _, err := s.store.CreateUser(ctx, models.User{Username: username, PasswordHash: hash}); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return Session{}, ErrUsernameTaken
		}
		return Session{}, fmt.Errorf("create user: %w", err)
	}
	return s.issue(username)
}

// Login verifies the password for username and issues a token.
func (s *Service) Login(ctx context.Context, username, password string) (session Session, err error) {
	defer func() { s.record("login", err) }()

	username = normalize(username)
	if username == "" || password == "" {
		return Session{}, ErrInvalidInput
	}
	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("find user: %w", err)
	}
	ok, err := s.verify(user.PasswordHash, password)
	if err != nil {
		return Session{}, err
	}
	if !ok {
		return Session{}, ErrInvalidCredentials
	}
	return s.issue(user.Username)
}

// ForgotPassword reports whether username exists. No reset message is delivered.
func (s *Service) ForgotPassword(ctx context.Context, username string) (err error) {
	defer func() { s.record("forgot_password", err) }()

	username = normalize(username)
	if username == "" {
		return ErrInvalidInput
	}
	if _, err := s.store.FindByUsername(ctx, username); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("find user: %w", err)
	}
	return nil
}

// ResetPassword replaces the password hash of an existing user.
func (s *Service) ResetPassword(ctx context.Context, username, password string) (err error) {
	defer func() { s.record("reset_password", err) }()

	username = normalize(username)
	if username == "" || password == "" {
		return ErrInvalidInput
	}
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	if _, err := s.store.UpdatePasswordHash(ctx, username, hash); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// ListUsers returns every stored user.
func (s *Service) ListUsers(ctx context.Context) (users []models.User, err error) {
	defer func() { s.record("list_users", err) }()

	users, err = s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (s *Service) hash(password string) (string, error) {
	start := time.Now()
	defer func() { s.metrics.ObservePasswordHash(time.Since(start)) }()
	return s.hasher.Hash(password)
}

func (s *Service) verify(hash, password string) (bool, error) {
	start := time.Now()
	defer func() { s.metrics.ObservePasswordHash(time.Since(start)) }()
	return s.hasher.Verify(hash, password)
}

func (s *Service) issue(username string) (Session, error) {
	token, err := s.tokens.Issue(username)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrTokenIssue, err)
	}
	return Session{Username: username, Token: token}, nil
}

func (s *Service) record(operation string, err error) {
	s.metrics.RecordAuthOutcome(operation, Outcome(err))
}

// Outcome maps an error returned by Service to its metrics/response label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrInvalidInput):
		return OutcomeInvalidInput
	case errors.Is(err, ErrInvalidCredentials):
		return OutcomeInvalidCredentials
	case errors.Is(err, ErrUsernameTaken):
		return OutcomeConflict
	case errors.Is(err, credentials.ErrHashingFailure):
		return OutcomeHashingFailure
	case errors.Is(err, ErrTokenIssue):
		return OutcomeTokenFailure
	default:
		return OutcomeStoreFailure
	}
}

func normalize(username string) string {
	return strings.TrimSpace(username)
}
