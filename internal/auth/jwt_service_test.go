package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_AccessTokenRoundtrip(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, err := svc.GenerateAccessToken(42, "test@example.com")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "test@example.com", claims.Email)
	assert.Empty(t, claims.ID, "access tokens carry no JTI")
}

func TestJWTService_RefreshTokenCarriesID(t *testing.T) {
	svc := NewJWTService("test-secret")

	tokenID, token, err := svc.GenerateRefreshToken(42, "test@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, tokenID)

	extracted, err := svc.ExtractTokenID(token)
	require.NoError(t, err)
	assert.Equal(t, tokenID, extracted)
}

func TestJWTService_RejectsWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a").GenerateAccessToken(1, "a@example.com")
	require.NoError(t, err)

	_, err = NewJWTService("secret-b").ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsGarbage(t *testing.T) {
	svc := NewJWTService("test-secret")

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)

	_, err = svc.ExtractTokenID("not-a-token")
	assert.Error(t, err)
}

func TestJWTService_ExtractTokenIDFromAccessToken(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, err := svc.GenerateAccessToken(1, "a@example.com")
	require.NoError(t, err)

	_, err = svc.ExtractTokenID(token)
	assert.Error(t, err, "access tokens have no JTI to extract")
}
