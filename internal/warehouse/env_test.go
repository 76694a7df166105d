package warehouse

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCredentials(t *testing.T) {
	t.Run("from environment", func(t *testing.T) {
		t.Setenv(EnvUser, "UI123456")
		t.Setenv(EnvToken, "s3cret")

		user, token, err := LoadCredentials()
		require.NoError(t, err)
		assert.Equal(t, "UI123456", user)
		assert.Equal(t, "s3cret", token)
	})

	t.Run("missing", func(t *testing.T) {
		t.Setenv(EnvUser, "")
		t.Setenv(EnvToken, "")

		_, _, err := LoadCredentials()
		assert.ErrorContains(t, err, EnvUser)
	})
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(Config{}, zerolog.Nop())
	assert.Error(t, err)

	c, err := NewClient(Config{Host: "wh.example.com", Port: 32010}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "wh.example.com:32010", c.cfg.Address())
}
