package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shesha-tools/mcpinject/internal/document"
	"github.com/shesha-tools/mcpinject/internal/logging"
)

// newTestCommand returns a bare command whose context carries a silent
// logger and whose streams are buffers.
func newTestCommand(t *testing.T) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	cmd := &cobra.Command{}
	cmd.SetContext(logging.NewContext(context.Background(), logging.NewDiscard()))

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(""))
	return cmd, &out, &errOut
}

// setAddFlags pins the package-level add flags for one test.
func setAddFlags(t *testing.T, configPath string) {
	t.Helper()
	addClient, addConfig = "", configPath
	addEnv, addForce, addManaged = nil, false, true
	t.Cleanup(func() {
		addClient, addConfig = "", ""
		addEnv, addForce, addManaged = nil, false, true
	})
}

func TestRunAdd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	setAddFlags(t, path)
	addEnv = []string{"TOKEN=abc"}

	cmd, out, _ := newTestCommand(t)
	err := runAddWithIO(cmd, []string{"github", "npx", "-y", "server-github"}, out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), `Added "github"`)

	doc, err := document.Load(path)
	require.NoError(t, err)
	entry := doc.GetEntry("github")
	require.NotNil(t, entry)
	assert.Equal(t, "npx", entry.Command)
	assert.Equal(t, []string{"-y", "server-github"}, entry.Args)
	assert.Equal(t, "abc", entry.Env["TOKEN"])
	assert.True(t, entry.Managed())
}

func TestRunAdd_MissingCommand(t *testing.T) {
	setAddFlags(t, filepath.Join(t.TempDir(), "config.json"))

	cmd, out, _ := newTestCommand(t)
	err := runAddWithIO(cmd, []string{"github"}, out)
	require.Error(t, err)
}

func TestRunAdd_UnmanagedOverwriteWarns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	handAuthored := `{"mcpServers":{"github":{"command":"hand-written"}}}`
	require.NoError(t, os.WriteFile(path, []byte(handAuthored), 0o644))
	setAddFlags(t, path)

	cmd, out, errOut := newTestCommand(t)
	err := runAddWithIO(cmd, []string{"github", "npx"}, out)
	require.NoError(t, err)

	assert.Contains(t, errOut.String(), "Warning")
	assert.Contains(t, out.String(), `Updated "github"`)
}

func TestRunAdd_ForceSilencesWarning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	handAuthored := `{"mcpServers":{"github":{"command":"hand-written"}}}`
	require.NoError(t, os.WriteFile(path, []byte(handAuthored), 0o644))
	setAddFlags(t, path)
	addForce = true

	cmd, out, errOut := newTestCommand(t)
	err := runAddWithIO(cmd, []string{"github", "npx"}, out)
	require.NoError(t, err)
	assert.Empty(t, errOut.String())
}

func TestRunAdd_Unmanaged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	setAddFlags(t, path)
	addManaged = false

	cmd, out, _ := newTestCommand(t)
	require.NoError(t, runAddWithIO(cmd, []string{"svc", "run"}, out))

	doc, err := document.Load(path)
	require.NoError(t, err)
	assert.False(t, doc.GetEntry("svc").HasMarker())
}

func TestAddCommand_Metadata(t *testing.T) {
	assert.Equal(t, "add [name] [command] [args...]", addCmd.Use)
	assert.NotEmpty(t, addCmd.Short)
	assert.NotNil(t, addCmd.Flags().Lookup("client"))
	assert.NotNil(t, addCmd.Flags().Lookup("config"))
	assert.NotNil(t, addCmd.Flags().Lookup("env"))
	assert.NotNil(t, addCmd.Flags().Lookup("force"))
}
