package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "voiceclone/internal/errors"
)

func newTestService(t *testing.T, secret string) *JWTService {
	t.Helper()
	svc, err := NewJWTService(secret, "HS256")
	require.NoError(t, err)
	return svc
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := newTestService(t, "test-secret")

	token, err := svc.GenerateAccessToken("abc", 42)
	require.NoError(t, err)

	identity, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, &Identity{Username: "abc", UserID: 42}, identity)
}

func TestJWTService_ExpiresAfterTwentyMinutes(t *testing.T) {
	svc := newTestService(t, "test-secret")
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	token, err := svc.GenerateAccessToken("abc", 1)
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(19 * time.Minute) }
	_, err = svc.ValidateToken(token)
	assert.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(21 * time.Minute) }
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTService_Rejects(t *testing.T) {
	svc := newTestService(t, "test-secret")

	otherSecret := newTestService(t, "other-secret")
	forged, err := otherSecret.GenerateAccessToken("abc", 1)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:           1,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "abc"},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "abc",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	otherAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "abc",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", forged},
		{"missing expiry", noExpiry},
		{"missing id", noID},
		{"missing subject", noSubject},
		{"unexpected algorithm", otherAlg},
		{"garbage", "not-a-token"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := svc.ValidateToken(tt.token)
			assert.Error(t, err)
			assert.Nil(t, identity)
		})
	}
}

func TestNewJWTService_RejectsNonHMAC(t *testing.T) {
	for _, alg := range []string{"RS256", "none", "bogus"} {
		_, err := NewJWTService("secret", alg)
		assert.Error(t, err, alg)
	}

	svc, err := NewJWTService("secret", "HS384")
	require.NoError(t, err)
	token, err := svc.GenerateAccessToken("abc", 3)
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.NoError(t, err)
}

func TestPassword_HashAndVerify(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	ok, err := VerifyPassword("secret1", hash)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong", hash)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestPassword_MalformedHashFailsClosed(t *testing.T) {
	ok, err := VerifyPassword("secret1", "not-a-bcrypt-hash")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestPassword_MultiByteOverBcryptLimit(t *testing.T) {
	password := strings.Repeat("😀", 19)
	require.Greater(t, len(password), MaxPasswordBytes)

	_, err := HashPassword(password)
	assert.ErrorIs(t, err, apperrors.ErrPasswordTooLong)

	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	ok, err := VerifyPassword(password, hash)
	assert.NoError(t, err)
	assert.False(t, ok)
}
