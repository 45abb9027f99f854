package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-study/internal/apperr"
)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestMintAndVerify(t *testing.T) {
	s := NewTokenService([]byte("secret"), time.Hour)
	tok, err := s.MintToken(42)
	require.NoError(t, err)

	id, err := s.VerifyToken(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestMintedClaims(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewTokenService([]byte("secret"), 0)
	s.now = fixedClock(now)

	tok, err := s.MintToken(7)
	require.NoError(t, err)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "7", claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, now.Add(DefaultTTL).Unix(), claims.ExpiresAt.Unix())
}

func TestVerifyExpired(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewTokenService([]byte("secret"), time.Hour)
	s.now = fixedClock(now)
	tok, err := s.MintToken(1)
	require.NoError(t, err)

	s.now = fixedClock(now.Add(2 * time.Hour))
	_, err = s.VerifyToken(tok)
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
	assert.Equal(t, "Token expired", err.Error())
}

func TestVerifyRejects(t *testing.T) {
	s := NewTokenService([]byte("secret"), time.Hour)
	other := NewTokenService([]byte("other"), time.Hour)
	foreign, err := other.MintToken(1)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 1}).SignedString([]byte("secret"))
	require.NoError(t, err)

	zeroUser, err := s.MintToken(0)
	require.NoError(t, err)

	cases := map[string]struct {
		token string
		msg   string
	}{
		"empty":        {"", "Token is missing"},
		"garbage":      {"not-a-token", "Invalid token"},
		"wrong secret": {foreign, "Invalid token"},
		"alg none":     {none, "Invalid token"},
		"missing exp":  {noExp, "Invalid token"},
		"no user id":   {zeroUser, "Invalid token"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.VerifyToken(tc.token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
			assert.Equal(t, tc.msg, err.Error())
		})
	}
}

func TestNewSecret(t *testing.T) {
	a, err := NewSecret()
	require.NoError(t, err)
	b, err := NewSecret()
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
