package version

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// TestVersionStrings ensures Short and Full return non-empty consistent information.
func TestVersionStrings(t *testing.T) {
	t.Parallel()

	require.NotEmpty(t, Short())
	require.Contains(t, Full(), Short())
}

// TestInfo mirrors the build variables.
func TestInfo(t *testing.T) {
	t.Parallel()

	info := Info()
	require.Equal(t, Version, info.Version)
	require.Equal(t, Commit, info.Commit)
	require.True(t, strings.HasPrefix(info.GoVersion, "go"))
}

// TestAttachCobraVersionCommand prints the binary name and build string.
func TestAttachCobraVersionCommand(t *testing.T) {
	t.Parallel()

	root := &cobra.Command{Use: "heartbeat-monitor"}
	AttachCobraVersionCommand(root)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	require.Equal(t, "heartbeat-monitor "+Full()+"\n", out.String())
}

// TestAttachCobraVersionCommand_JSON prints the /debug/about document.
func TestAttachCobraVersionCommand_JSON(t *testing.T) {
	t.Parallel()

	root := &cobra.Command{Use: "alarm-notifier"}
	AttachCobraVersionCommand(root)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version", "--json"})

	require.NoError(t, root.Execute())

	var got About
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Equal(t, Info(), got)
}
