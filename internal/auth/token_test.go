package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	manager, err := NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)

	token, err := manager.Generate(42, "Ada", "ada@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.Validate(token)
	require.NoError(t, err)
	require.Equal(t, int64(42), claims.UserID())
	require.Equal(t, "Ada", claims.Name)
	require.Equal(t, "ada@example.com", claims.Email)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	manager, err := NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	other, err := NewTokenManager("another-secret", time.Hour)
	require.NoError(t, err)

	token, err := manager.Generate(1, "Ada", "ada@example.com")
	require.NoError(t, err)

	_, err = other.Validate(token)
	require.Error(t, err)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	manager, err := NewTokenManager("test-secret", -time.Minute)
	require.NoError(t, err)

	token, err := manager.Generate(1, "Ada", "ada@example.com")
	require.NoError(t, err)

	_, err = manager.Validate(token)
	require.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	manager, err := NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)

	_, err = manager.Validate("not-a-token")
	require.Error(t, err)
}

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	_, err := NewTokenManager("", time.Hour)
	require.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret-pass")
	require.NoError(t, err)
	require.NotEqual(t, "secret-pass", hash)

	require.True(t, CheckPasswordHash("secret-pass", hash))
	require.False(t, CheckPasswordHash("wrong-pass", hash))
}
