package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager()
	tok, err := tm.Issue("alice", time.Hour)
	require.NoError(t, err)

	res := tm.Verify(tok, "alice")
	assert.True(t, res.Valid)
	assert.Equal(t, ReasonNone, res.Reason)
}

func TestIssueCarriesOnlyTimestamps(t *testing.T) {
	t.Parallel()

	clock := newClock()
	tm := NewTokenManager(WithClock(clock.Now))
	tok, err := tm.Issue("alice", time.Hour)
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)
	assert.Len(t, claims, 2)
	assert.EqualValues(t, clock.t.Unix(), claims["iat"])
	assert.EqualValues(t, clock.t.Add(time.Hour).Unix(), claims["exp"])
}

func TestVerifyWrongSecret(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager()
	tok, err := tm.Issue("alice", time.Hour)
	require.NoError(t, err)

	res := tm.Verify(tok, "bob")
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonSignature, res.Reason)
	assert.Equal(t, MessageInvalidToken, res.Message)
}

func TestVerifyExpired(t *testing.T) {
	t.Parallel()

	clock := newClock()
	tm := NewTokenManager(WithClock(clock.Now))
	tok, err := tm.Issue("alice", time.Hour)
	require.NoError(t, err)

	clock.Advance(59 * time.Minute)
	assert.True(t, tm.Verify(tok, "alice").Valid)

	clock.Advance(2 * time.Minute)
	res := tm.Verify(tok, "alice")
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonExpired, res.Reason)
	assert.Equal(t, MessageInvalidToken, res.Message)
}

func TestVerifyMissingAndMalformed(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager()

	res := tm.Verify("", "alice")
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonMissing, res.Reason)
	assert.Equal(t, MessageNoToken, res.Message)

	res = tm.Verify("not.a.jwt", "alice")
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonMalformed, res.Reason)
}

func TestVerifyEmptySecret(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager()
	tok, err := tm.Issue("alice", time.Hour)
	require.NoError(t, err)

	res := tm.Verify(tok, "")
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonSignature, res.Reason)
}

func TestIssueEmptySecret(t *testing.T) {
	t.Parallel()

	_, err := NewTokenManager().Issue("", time.Hour)
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("alice"))
	require.NoError(t, err)

	res := NewTokenManager().Verify(tok, "alice")
	assert.False(t, res.Valid)
}

func TestVerifyRequiresExpiry(t *testing.T) {
	t.Parallel()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{}).SignedString([]byte("alice"))
	require.NoError(t, err)

	res := NewTokenManager().Verify(tok, "alice")
	assert.False(t, res.Valid)
}

func TestVerifySubject(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager()
	tok, err := tm.Issue("s3cret", time.Hour, WithSubject("alice"))
	require.NoError(t, err)

	assert.True(t, tm.Verify(tok, "s3cret", RequireSubject("alice")).Valid)

	res := tm.Verify(tok, "s3cret", RequireSubject("bob"))
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonSubject, res.Reason)

	bare, err := tm.Issue("s3cret", time.Hour)
	require.NoError(t, err)
	res = tm.Verify(bare, "s3cret", RequireSubject("alice"))
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonSubject, res.Reason)
}
