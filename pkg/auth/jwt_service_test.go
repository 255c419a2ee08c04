package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_RoundTrip(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)
	id := uuid.New()

	token, err := svc.GenerateToken(id, "editor")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "editor", claims.Role)
	assert.Equal(t, "program-catalog-api", claims.Issuer)
}

func TestJWT_Rejects(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)

	other, err := NewJWTService("other", time.Hour).GenerateToken(uuid.New(), "admin")
	require.NoError(t, err)
	_, err = svc.ValidateToken(other)
	assert.Error(t, err, "wrong signing key")

	expired, err := NewJWTService("secret", -time.Minute).GenerateToken(uuid.New(), "admin")
	require.NoError(t, err)
	_, err = svc.ValidateToken(expired)
	assert.Error(t, err, "expired")

	_, err = svc.ValidateToken("a.b.c")
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)
	assert.True(t, CheckPasswordHash("hunter2", hash))
	assert.False(t, CheckPasswordHash("hunter3", hash))
}
