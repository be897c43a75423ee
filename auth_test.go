package main

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuthCmd_Subcommands(t *testing.T) {
	cmd := newAuthCmd()

	expected := []string{"login", "logout", "whoami"}
	for _, name := range expected {
		found := false

		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}

		assert.True(t, found, "expected auth subcommand %q not found", name)
	}
}

func TestNewAuthLoginCmd_Flags(t *testing.T) {
	cmd := newAuthLoginCmd()

	assert.NotNil(t, cmd.Flags().Lookup("client-id"))
	assert.NotNil(t, cmd.Flags().Lookup("client-secret"))
}

func TestRunAuthLogin_RequiresClientID(t *testing.T) {
	cmd := newAuthLoginCmd()
	cmd.SetArgs(nil)

	err := cmd.Flags().Set("client-id", "")
	require.NoError(t, err)

	runErr := runAuthLogin(cmd, nil)
	require.Error(t, runErr)
	assert.Contains(t, runErr.Error(), "--client-id is required")
}

func TestResolveTokenPath_DefaultsWithoutConfigFlag(t *testing.T) {
	old := flagConfigPath
	t.Cleanup(func() { flagConfigPath = old })

	flagConfigPath = ""

	path := resolveTokenPath()
	assert.NotEmpty(t, path)
}

func TestReadLine_TrimsNewline(t *testing.T) {
	oldStdin := os.Stdin
	t.Cleanup(func() { os.Stdin = oldStdin })

	r, w, err := os.Pipe()
	require.NoError(t, err)

	_, err = w.WriteString("pasted-code-value\n")
	require.NoError(t, err)
	w.Close()

	os.Stdin = r

	line, err := readLine()
	require.NoError(t, err)
	assert.Equal(t, "pasted-code-value", line)
}

func TestRunAuthWhoami_NotLoggedIn(t *testing.T) {
	old := flagConfigPath
	t.Cleanup(func() { flagConfigPath = old })

	flagConfigPath = ""

	cmd := newAuthWhoamiCmd()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout = w
	t.Cleanup(func() { os.Stdout = oldStdout })

	// A fresh, never-logged-in environment has no token file at the
	// default path, so FromPath returns ErrNotLoggedIn and whoami
	// reports that rather than erroring.
	runErr := runAuthWhoami(cmd, nil)
	w.Close()

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)

	require.NoError(t, runErr)
	assert.Contains(t, buf.String(), "Not logged in")
}
