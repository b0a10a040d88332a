package generation_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/agentforge/pkg/domain"
	"github.com/aretw0/agentforge/pkg/generation"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembler_Defaults(t *testing.T) {
	a := generation.NewAssembler()

	cfg, err := a.Assemble(completeDraft(map[string]string{
		domain.KeyAgentName:       "   ",
		domain.KeyUpdateFrequency: "",
	}))
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultDisplayName, cfg.DisplayName)
	assert.Equal(t, domain.DefaultUpdateFrequency, cfg.Settings.UpdateFrequency)
	_, err = uuid.Parse(cfg.ID)
	assert.NoError(t, err)
	assert.Equal(t, "scheduled-check", cfg.InputSource)
	assert.Equal(t, "dashboard-summary", cfg.OutputChannel)
}

func TestAssembler_DecodesSettings(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := generation.NewAssembler(
		generation.WithIDGenerator(func() string { return "cfg-1" }),
		generation.WithAssemblerClock(func() time.Time { return created }),
	)

	draft := domain.NewDraft(map[string]string{
		domain.KeyInputSource:     "shopify-reviews",
		domain.KeyOutputChannel:   "slack-message",
		domain.KeyStoreURL:        "https://shop.example.com",
		domain.KeyAPIKey:          "k",
		domain.KeyWebhookURL:      "https://hooks.slack.com/services/x",
		domain.KeyAgentName:       "Review Radar",
		domain.KeyUpdateFrequency: domain.FrequencyHourly,
		domain.KeySheetID:         "",
		"site-url":                "https://example.com",
	})
	cfg, err := a.Assemble(draft)
	require.NoError(t, err)

	assert.Equal(t, "cfg-1", cfg.ID)
	assert.Equal(t, created, cfg.CreatedAt)
	assert.Equal(t, "Review Radar", cfg.DisplayName)
	assert.Equal(t, domain.Settings{
		AgentName:       "Review Radar",
		UpdateFrequency: domain.FrequencyHourly,
		StoreURL:        "https://shop.example.com",
		APIKey:          "k",
		WebhookURL:      "https://hooks.slack.com/services/x",
		Extra:           map[string]string{"site-url": "https://example.com"},
	}, cfg.Settings)
	assert.True(t, cfg.Draft.Equal(draft))
}

func TestAssembler_CopyIsIndependent(t *testing.T) {
	cfg, err := generation.NewAssembler().Assemble(completeDraft(map[string]string{"site-url": "https://a.example"}))
	require.NoError(t, err)

	cp := cfg.Copy()
	cp.Settings.Extra["site-url"] = "changed"
	assert.Equal(t, "https://a.example", cfg.Settings.Extra["site-url"])
}

func TestLogCompletion(t *testing.T) {
	h := generation.LogCompletion{}
	assert.NoError(t, h.Complete(context.Background(), domain.AgentConfiguration{ID: "x"}, domain.ActionDeploy))
}
