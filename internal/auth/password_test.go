// internal/auth/password_test.go
package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := CreateHash("correct horse battery staple", Params)
	require.NoError(t, err)

	ok, err := ComparePasswordAndHash("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ComparePasswordAndHash("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestComparePasswordMalformedHash(t *testing.T) {
	_, err := ComparePasswordAndHash("anything", "not-an-argon2-hash")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestJWTRoundTrip(t *testing.T) {
	Init()

	token, err := CreateJWT("admin-123")
	require.NoError(t, err)

	sub, err := AuthenticateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "admin-123", sub)

	_, err = AuthenticateJWT(token + "tampered")
	assert.Error(t, err)
}
