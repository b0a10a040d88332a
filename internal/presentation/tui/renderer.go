package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/agentforge/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// The style follows the terminal background unless style names one of
// glamour's standard styles ("dark", "light", "notty").
func NewRenderer(style string, width int) (func(string) (string, error), error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if style != "" {
		opts = []glamour.TermRendererOption{glamour.WithStandardStyle(style)}
	}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}

// SummaryMarkdown describes a generated configuration as markdown.
// Secret settings are masked.
func SummaryMarkdown(cfg domain.AgentConfiguration, secret func(key string) bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", cfg.DisplayName)
	fmt.Fprintf(&sb, "- **ID:** `%s`\n", cfg.ID)
	fmt.Fprintf(&sb, "- **Reads from:** %s\n", cfg.InputSource)
	fmt.Fprintf(&sb, "- **Delivers to:** %s\n", cfg.OutputChannel)
	fmt.Fprintf(&sb, "- **Runs:** %s\n", cfg.Settings.UpdateFrequency)
	if cfg.Settings.Description != "" {
		fmt.Fprintf(&sb, "\n> %s\n", cfg.Settings.Description)
	}

	keys := cfg.Draft.Keys()
	if len(keys) == 0 {
		return sb.String()
	}
	sb.WriteString("\n| Setting | Value |\n| --- | --- |\n")
	for _, k := range keys {
		v := cfg.Draft.String(k)
		if secret != nil && secret(k) && v != "" {
			v = "••••••"
		}
		fmt.Fprintf(&sb, "| %s | %s |\n", k, strings.ReplaceAll(v, "|", "\\|"))
	}
	return sb.String()
}
