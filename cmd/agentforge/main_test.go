package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	assert.Contains(t, execute(t, "version"), "agentforge version")
}

func TestSchemaCommand(t *testing.T) {
	out := execute(t, "schema", "shopify-reviews", "slack-message")
	assert.Contains(t, out, "store-url")
	assert.Contains(t, out, "webhook-url")
	assert.Contains(t, out, "update-frequency")
}

func TestStepsCommand(t *testing.T) {
	out := execute(t, "steps")
	assert.Contains(t, out, "input-source")
	assert.Contains(t, out, "Shopify Reviews")
}

func TestGraphCommand(t *testing.T) {
	assert.Contains(t, execute(t, "graph"), "graph TD")
}

func TestSessionCommands(t *testing.T) {
	t.Setenv("AGENTFORGE_STORE_DIR", t.TempDir())
	assert.Contains(t, execute(t, "session", "ls"), "No saved sessions found.")
}
