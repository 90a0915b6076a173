package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrEmptySecret is returned when a token would be signed with an empty key.
var ErrEmptySecret = errors.New("token secret is empty")

// Reason classifies why a token was rejected.
type Reason string

const (
	ReasonNone      Reason = ""
	ReasonMissing   Reason = "missing"
	ReasonMalformed Reason = "malformed"
	ReasonSignature Reason = "signature"
	ReasonExpired   Reason = "expired"
	ReasonSubject   Reason = "subject"
)

// Client-facing diagnostics. Every rejection after the token is present shares one message.
const (
	MessageNoToken      = "Access denied. No token provided."
	MessageInvalidToken = "Access denied. Invalid token."
)

// Result is the outcome of Verify. It never carries an error: every failure
// collapses to Valid=false plus a reason for logs and a message for clients.
type Result struct {
	Valid   bool
	Reason  Reason
	Message string
}

func rejected(reason Reason) Result {
	msg := MessageInvalidToken
	if reason == ReasonMissing {
		msg = MessageNoToken
	}
	return Result{Reason: reason, Message: msg}
}

// TokenManager issues and verifies HS256 JWTs signed with a caller-supplied secret.
type TokenManager struct {
	now func() time.Time
}

// Option configures a TokenManager.
type Option func(*TokenManager)

// WithClock overrides the time source used for iat/exp and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(t *TokenManager) { t.now = now }
}

// NewTokenManager creates a manager using the wall clock unless overridden.
func NewTokenManager(opts ...Option) *TokenManager {
	t := &TokenManager{now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type issueOptions struct {
	subject string
}

// IssueOption adds claims to an issued token.
type IssueOption func(*issueOptions)

// WithSubject embeds sub=subject in the token.
func WithSubject(subject string) IssueOption {
	return func(o *issueOptions) { o.subject = subject }
}

// Issue signs a token carrying only iat and exp=now+ttl (plus sub when requested).
func (t *TokenManager) Issue(secret string, ttl time.Duration, opts ...IssueOption) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	var o issueOptions
	for _, opt := range opts {
		opt(&o)
	}

	now := t.now()
	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		Subject:   o.subject,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

type verifyOptions struct {
	subject string
}

// VerifyOption adds checks to Verify.
type VerifyOption func(*verifyOptions)

// RequireSubject rejects tokens whose sub claim is absent or differs from subject.
func RequireSubject(subject string) VerifyOption {
	return func(o *verifyOptions) { o.subject = subject }
}

// Verify checks the signature against secret and the expiry against the clock.
func (t *TokenManager) Verify(token, secret string, opts ...VerifyOption) Result {
	if strings.TrimSpace(token) == "" {
		return rejected(ReasonMissing)
	}
	if secret == "" {
		return rejected(ReasonSignature)
	}
	var o verifyOptions
	for _, opt := range opts {
		opt(&o)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	}
	if o.subject != "" {
		parserOpts = append(parserOpts, jwt.WithSubject(o.subject))
	}

	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, parserOpts...)
	switch {
	case err == nil && parsed.Valid:
		return Result{Valid: true}
	case errors.Is(err, jwt.ErrTokenExpired):
		return rejected(ReasonExpired)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return rejected(ReasonSignature)
	case errors.Is(err, jwt.ErrTokenInvalidSubject):
		return rejected(ReasonSubject)
	case o.subject != "" && errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return rejected(ReasonSubject)
	default:
		return rejected(ReasonMalformed)
	}
}
