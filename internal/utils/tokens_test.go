package utils

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomHex(t *testing.T) {
	a, err := RandomHex(32)
	require.NoError(t, err)
	assert.Len(t, a, 64)

	b, err := RandomHex(32)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	// non-positive sizes fall back to 32 bytes
	c, err := RandomHex(0)
	require.NoError(t, err)
	assert.Len(t, c, 64)
}

func TestRandomOtpCode(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := RandomOtpCode()
		require.NoError(t, err)
		require.Len(t, code, 4)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 1000)
		assert.LessOrEqual(t, n, 9999)
	}
}
