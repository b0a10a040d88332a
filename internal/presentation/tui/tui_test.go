package tui_test

import (
	"bytes"
	"testing"

	"github.com/aretw0/agentforge/internal/presentation/tui"
	"github.com/aretw0/agentforge/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintBanner_PlainWriter(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf)

	out := buf.String()
	assert.Contains(t, out, "|___/")
	assert.NotContains(t, out, "\x1b[", "no colors on a non-terminal writer")
}

func TestSummaryMarkdown(t *testing.T) {
	cfg := domain.AgentConfiguration{
		ID:            "abc",
		DisplayName:   "Review watcher",
		InputSource:   "shopify-reviews",
		OutputChannel: "slack-message",
		Settings:      domain.Settings{UpdateFrequency: "daily"},
		Draft: domain.NewDraft(map[string]string{
			domain.KeyStoreURL: "https://shop.example",
			domain.KeyAPIKey:   "sk-secret",
		}),
	}

	md := tui.SummaryMarkdown(cfg, func(key string) bool { return key == domain.KeyAPIKey })
	assert.Contains(t, md, "# Review watcher")
	assert.Contains(t, md, "| store-url | https://shop.example |")
	assert.Contains(t, md, "| api-key | •••••• |")
	assert.NotContains(t, md, "sk-secret")
}

func TestNewRenderer(t *testing.T) {
	render, err := tui.NewRenderer("notty", 60)
	require.NoError(t, err)

	out, err := render("# Title\n\nSome *text*.")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "text")
}
