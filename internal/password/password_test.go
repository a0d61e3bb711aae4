package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("Admin@123")
	require.NoError(t, err)

	assert.NotEqual(t, "Admin@123", hash)
	assert.True(t, Verify(hash, "Admin@123"))
	assert.False(t, Verify(hash, "admin@123"))
	assert.False(t, Verify(hash, ""))

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, Cost, cost)
}

func TestHashIsSalted(t *testing.T) {
	a, err := Hash("same-input")
	require.NoError(t, err)
	b, err := Hash("same-input")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, Verify(a, "same-input"))
	assert.True(t, Verify(b, "same-input"))
}

func TestVerifyRejectsGarbageHash(t *testing.T) {
	assert.False(t, Verify("", "anything"))
	assert.False(t, Verify("not-a-bcrypt-hash", "anything"))
}
