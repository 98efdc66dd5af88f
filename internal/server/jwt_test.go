package server

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonathan/family-activities/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSessionSecret = "test-secret-key-for-session-signing"

func setupTestSessionService(_ *testing.T, ttlHours int) *SessionService {
	return NewSessionService(&config.SessionConfig{
		Secret:   testSessionSecret,
		TTLHours: ttlHours,
	})
}

func TestSessionService_GenerateToken(t *testing.T) {
	service := setupTestSessionService(t, 24)

	token, err := service.GenerateToken()
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	assert.Equal(t, 3, len(parts), "JWT should have 3 parts separated by dots")

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.GetSessionID())
	assert.Equal(t, sessionIssuer, claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestSessionService_UniqueSessions(t *testing.T) {
	service := setupTestSessionService(t, 24)

	token1, err := service.GenerateToken()
	require.NoError(t, err)
	token2, err := service.GenerateToken()
	require.NoError(t, err)
	assert.NotEqual(t, token1, token2)

	c1, err := service.ValidateToken(token1)
	require.NoError(t, err)
	c2, err := service.ValidateToken(token2)
	require.NoError(t, err)
	assert.NotEqual(t, c1.GetSessionID(), c2.GetSessionID())
}

func TestSessionService_ValidateToken_Expired(t *testing.T) {
	service := setupTestSessionService(t, 1)
	token, err := service.GenerateToken()
	require.NoError(t, err)

	service.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = service.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token expired")
}

func TestSessionService_ValidateToken_WrongSecret(t *testing.T) {
	token, err := setupTestSessionService(t, 24).GenerateToken()
	require.NoError(t, err)

	other := NewSessionService(&config.SessionConfig{Secret: "a-completely-different-secret", TTLHours: 24})
	_, err = other.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token signature")
}

func TestSessionService_ValidateToken_Rejects(t *testing.T) {
	service := setupTestSessionService(t, 24)
	now := time.Now()

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		ID: "s", Issuer: sessionIssuer, ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	sign := func(claims *Claims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSessionSecret))
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"malformed", "not.a.token"},
		{"alg none", noneToken},
		{"wrong issuer", sign(&Claims{RegisteredClaims: jwt.RegisteredClaims{
			ID: "s", Issuer: "someone-else", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}})},
		{"no expiry", sign(&Claims{RegisteredClaims: jwt.RegisteredClaims{ID: "s", Issuer: sessionIssuer}})},
		{"no session id", sign(&Claims{RegisteredClaims: jwt.RegisteredClaims{
			Issuer: sessionIssuer, ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.ValidateToken(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestSessionService_AsTokenValidator(t *testing.T) {
	service := setupTestSessionService(t, 24)
	token, err := service.GenerateToken()
	require.NoError(t, err)

	getter, err := service.AsTokenValidator().ValidateToken(token)
	require.NoError(t, err)
	assert.NotEmpty(t, getter.GetSessionID())

	_, err = service.AsTokenValidator().ValidateToken("garbage")
	assert.Error(t, err)
}
