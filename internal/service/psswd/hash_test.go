package psswd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHash(t *testing.T) {
	var h PasswordHash

	hash, err := h.HashPassword("qwerty123")
	require.NoError(t, err)
	assert.NotEqual(t, "qwerty123", hash)

	assert.True(t, h.ComparePassword("qwerty123", hash))
	assert.False(t, h.ComparePassword("qwerty124", hash))

	_, err = h.HashPassword(strings.Repeat("a", 73))
	require.Error(t, err)
}
