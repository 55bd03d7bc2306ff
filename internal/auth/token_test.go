package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokens_IssueParse(t *testing.T) {
	tokens := NewTokens(testSecret, time.Hour)

	signed, claims, err := tokens.Issue("user-1", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	parsed, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", parsed.Subject)
	assert.Equal(t, "alice", parsed.Username)
	assert.Equal(t, claims.ID, parsed.ID)
	assert.True(t, ValidTokenID(parsed.ID))
}

func TestTokens_RejectsForgedAndExpired(t *testing.T) {
	tokens := NewTokens(testSecret, time.Hour)
	signed, _, err := tokens.Issue("user-1", "alice")
	require.NoError(t, err)

	other := NewTokens("another-secret-0123456789abcdef", time.Hour)
	_, err = other.Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tokens.Parse(signed + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tokens.Parse("")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokens(testSecret, time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Issue("user-1", "alice")
	require.NoError(t, err)
	_, err = tokens.Parse(old)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_RejectsOtherAlgorithms(t *testing.T) {
	tokens := NewTokens(testSecret, time.Hour)

	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    Issuer,
		Subject:   "user-1",
		ID:        "0123456789abcdef0123456789abcdef",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tokens.Parse(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = tokens.Parse(hs512)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
