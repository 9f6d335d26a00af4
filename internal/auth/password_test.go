package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPasswordHashAndVerify(t *testing.T) {
	h := &PasswordHasher{cost: 4} // minimum cost keeps the test fast

	hash, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse battery staple", hash)

	require.True(t, h.Verify("correct horse battery staple", hash))
	require.False(t, h.Verify("wrong password", hash))
	require.False(t, h.Verify("", hash))
}

func TestPasswordHashesAreSalted(t *testing.T) {
	h := &PasswordHasher{cost: 4}

	first, err := h.Hash("same password")
	require.NoError(t, err)
	second, err := h.Hash("same password")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.True(t, h.Verify("same password", first))
	require.True(t, h.Verify("same password", second))
}
