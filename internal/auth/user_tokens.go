package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// UserTokens scopes tokens to a single user.
//
// Without a server key the signing secret is the plaintext username and the
// token carries no subject, which is what existing clients were issued. With a
// server key the secret is HMAC-SHA256(serverKey, username) and the username is
// also embedded as sub, so knowing a username is no longer enough to mint a token.
type UserTokens struct {
	tokens    *TokenManager
	serverKey []byte
	ttl       time.Duration
}

// NewUserTokens binds a TokenManager to a per-user secret policy.
func NewUserTokens(tokens *TokenManager, serverKey string, ttl time.Duration) *UserTokens {
	var key []byte
	if serverKey != "" {
		key = []byte(serverKey)
	}
	return &UserTokens{tokens: tokens, serverKey: key, ttl: ttl}
}

// Keyed reports whether secrets are derived from a server key.
func (u *UserTokens) Keyed() bool {
	return len(u.serverKey) > 0
}

// TTL returns the lifetime of issued tokens.
func (u *UserTokens) TTL() time.Duration {
	return u.ttl
}

// Secret returns the signing secret for username.
func (u *UserTokens) Secret(username string) string {
	if !u.Keyed() || username == "" {
		return username
	}
	mac := hmac.New(sha256.New, u.serverKey)
	mac.Write([]byte(username))
	return hex.EncodeToString(mac.Sum(nil))
}

// Issue mints a token for username.
func (u *UserTokens) Issue(username string) (string, error) {
	var opts []IssueOption
	if u.Keyed() {
		opts = append(opts, WithSubject(username))
	}
	return u.tokens.Issue(u.Secret(username), u.ttl, opts...)
}

// Verify checks a token presented on behalf of username.
func (u *UserTokens) Verify(token, username string) Result {
	var opts []VerifyOption
	if u.Keyed() {
		opts = append(opts, RequireSubject(username))
	}
	return u.tokens.Verify(token, u.Secret(username), opts...)
}
