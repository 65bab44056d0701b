package secrets_test

import (
	"testing"

	"github.com/poqie/linkguard/internal/secrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Тест детерминированности вывода пользовательского ключа
func TestDeriveUserKey_Deterministic(t *testing.T) {
	k1, err := secrets.DeriveUserKey("user-1", "server-secret")
	require.NoError(t, err)

	k2, err := secrets.DeriveUserKey("user-1", "server-secret")
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
	assert.Len(t, []byte(k1), 32)
}

func TestDeriveUserKey_DifferentInputs(t *testing.T) {
	k1, err := secrets.DeriveUserKey("user-1", "server-secret")
	require.NoError(t, err)

	k2, err := secrets.DeriveUserKey("user-2", "server-secret")
	require.NoError(t, err)

	k3, err := secrets.DeriveUserKey("user-1", "other-secret")
	require.NoError(t, err)

	assert.NotEqual(t, k1, k2)
	assert.NotEqual(t, k1, k3)
}

func TestDeriveUserKey_EmptyOwnerID(t *testing.T) {
	_, err := secrets.DeriveUserKey("", "server-secret")
	assert.ErrorIs(t, err, secrets.ErrEmptyOwnerID)
}

func TestDeriveUserKey_EmptySecret(t *testing.T) {
	_, err := secrets.DeriveUserKey("user-1", "")
	assert.ErrorIs(t, err, secrets.ErrEmptySecret)
}

func TestHashPassword_FreshSaltPerCall(t *testing.T) {
	h1, s1, err := secrets.HashPassword("Secr3tPass")
	require.NoError(t, err)

	h2, s2, err := secrets.HashPassword("Secr3tPass")
	require.NoError(t, err)

	assert.NotEqual(t, s1, s2)
	assert.NotEqual(t, h1, h2)
}

func TestVerifyPassword(t *testing.T) {
	hash, salt, err := secrets.HashPassword("Secr3tPass")
	require.NoError(t, err)

	assert.True(t, secrets.VerifyPassword("Secr3tPass", hash, salt))
	assert.False(t, secrets.VerifyPassword("wrong", hash, salt))
	assert.False(t, secrets.VerifyPassword("", hash, salt))
}

func TestVerifyPassword_MalformedMaterial(t *testing.T) {
	assert.False(t, secrets.VerifyPassword("Secr3tPass", "not-hex", "also-not-hex"))
}
