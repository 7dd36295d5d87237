package version

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersionString(t *testing.T) {
	major, minor, patch := Numbers()
	require.Equal(t, fmt.Sprintf("v%d.%d.%d", major, minor, patch), String())
	require.Equal(t, "arbor/"+String(), Generator())
}

func TestParseVersionNum(t *testing.T) {
	require.Equal(t, 0, parseVersionNum("", "major"))
	require.Equal(t, 12, parseVersionNum("12", "minor"))
	require.Panics(t, func() { parseVersionNum("x", "patch") })
}
