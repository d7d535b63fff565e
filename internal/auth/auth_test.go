package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.True(t, CheckPasswordHash("s3cret", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestVerifyAdmin(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		assert.NoError(t, VerifyAdmin("admin@shop.test", "hunter2", "admin@shop.test", hash))
	})

	t.Run("Wrong email", func(t *testing.T) {
		err := VerifyAdmin("other@shop.test", "hunter2", "admin@shop.test", hash)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Wrong password", func(t *testing.T) {
		err := VerifyAdmin("admin@shop.test", "nope", "admin@shop.test", hash)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Unconfigured credential rejects everything", func(t *testing.T) {
		err := VerifyAdmin("admin@shop.test", "hunter2", "", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestJWTRoundTrip(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")

	token, err := GenerateJWT("admin@shop.test", "ADMIN")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@shop.test", claims.Email)
	assert.Equal(t, "ADMIN", claims.Role)
}

func TestParseJWT_Invalid(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")

	_, err := ParseJWT("not-a-token")
	assert.Error(t, err)
}

func TestGenerateJWT_MissingSecret(t *testing.T) {
	t.Setenv("SECRET_KEY", "")

	_, err := GenerateJWT("admin@shop.test", "ADMIN")
	assert.Error(t, err)
}
