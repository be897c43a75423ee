package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connradolisboa/todoist-vault-sync/internal/reconcile"
)

func TestNewSyncCmd_Structure(t *testing.T) {
	cmd := newSyncCmd()
	assert.Equal(t, "sync", cmd.Name())
	assert.NotEmpty(t, cmd.Long)
	assert.NotNil(t, cmd.RunE)
}

func TestNewBackfillCmd_Structure(t *testing.T) {
	cmd := newBackfillCmd()
	assert.Equal(t, "backfill", cmd.Name())
	assert.NotNil(t, cmd.RunE)
}

func TestPrintSyncText_AlreadyInSync(t *testing.T) {
	cc := &CLIContext{}

	out := captureStderr(t, func() {
		printSyncText(cc, &reconcile.Summary{}, 2*time.Second)
	})

	assert.Contains(t, out, "Already in sync")
}

func TestPrintSyncText_ReportsCounts(t *testing.T) {
	cc := &CLIContext{}

	summary := &reconcile.Summary{
		Created:        3,
		Updated:        1,
		MissingHandled: 2,
		DuplicateIDs:   []string{"abc"},
		CycleWarning:   true,
	}

	out := captureStderr(t, func() {
		printSyncText(cc, summary, 500*time.Millisecond)
	})

	assert.Contains(t, out, "Created:")
	assert.Contains(t, out, "3")
	assert.Contains(t, out, "Duplicate IDs:")
	assert.Contains(t, out, "Parent-chain cycle detected")
}

func TestPrintSyncJSON_EncodesSummary(t *testing.T) {
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout = w
	t.Cleanup(func() { os.Stdout = oldStdout })

	summary := &reconcile.Summary{Created: 5, Updated: 2}

	require.NoError(t, printSyncJSON(summary, time.Second))
	w.Close()

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)

	var out syncJSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	assert.Equal(t, 5, out.Created)
	assert.Equal(t, 2, out.Updated)
	assert.Equal(t, int64(1000), out.DurationMs)
}

func captureStderr(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stderr
	r, w, err := os.Pipe()
	require.NoError(t, err)

	os.Stderr = w
	t.Cleanup(func() { os.Stderr = old })

	fn()
	w.Close()

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)

	return buf.String()
}
