package token

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_AccessTokenRoundTrip(t *testing.T) {
	manager := NewJWT("test-secret")
	userID := uuid.New()

	tokenString, err := manager.GenerateAccessToken(userID)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	parsedID, err := manager.ParseAccessToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, userID, parsedID)
}

func TestJWT_RefreshTokenRoundTrip(t *testing.T) {
	manager := NewJWT("test-secret")
	userID := uuid.New()

	tokenString, jti, err := manager.GenerateRefreshToken(userID)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)
	require.NotEmpty(t, jti)

	parsedID, parsedJTI, err := manager.ParseRefreshToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, userID, parsedID)
	assert.Equal(t, jti, parsedJTI)
}

func TestJWT_TypeMismatch(t *testing.T) {
	manager := NewJWT("test-secret")
	userID := uuid.New()

	access, err := manager.GenerateAccessToken(userID)
	require.NoError(t, err)

	_, _, err = manager.ParseRefreshToken(access)
	assert.Error(t, err)

	refresh, _, err := manager.GenerateRefreshToken(userID)
	require.NoError(t, err)

	_, err = manager.ParseAccessToken(refresh)
	assert.Error(t, err)
}

func TestJWT_WrongSecret(t *testing.T) {
	manager := NewJWT("secret-one")
	other := NewJWT("secret-two")

	tokenString, err := manager.GenerateAccessToken(uuid.New())
	require.NoError(t, err)

	_, err = other.ParseAccessToken(tokenString)
	assert.Error(t, err)
}

func TestJWT_Garbage(t *testing.T) {
	manager := NewJWT("test-secret")

	_, err := manager.ParseAccessToken("not-a-token")
	assert.Error(t, err)
}
