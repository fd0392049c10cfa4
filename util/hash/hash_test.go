package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndCheck(t *testing.T) {
	h, err := HashPassword("supersecret")
	require.NoError(t, err)
	require.NotEqual(t, "supersecret", h)
	require.True(t, Check(h, "supersecret"))
	require.False(t, Check(h, "wrong"))
}
