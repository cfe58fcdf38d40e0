package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShortCommit(t *testing.T) {
	require.Equal(t, "abc", shortCommit("abc"))
	require.Equal(t, "0123456789ab", shortCommit("0123456789abcdef"))
}

func TestResolveNeverEmpty(t *testing.T) {
	require.NotEmpty(t, Resolve().Version)
	require.NotEmpty(t, String())
}
