package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHashAndCompare(t *testing.T) {
	hash, err := GetHash("qwerty123")
	require.NoError(t, err)
	require.NotEqual(t, "qwerty123", hash)

	assert.NoError(t, CompareHash(hash, "qwerty123"))
	assert.Error(t, CompareHash(hash, "wrong-password"))
}

func TestCompareHash_NotAHash(t *testing.T) {
	assert.Error(t, CompareHash("plain-text", "qwerty123"))
}
