package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/agentforge/internal/presentation/graph"
	"github.com/aretw0/agentforge/pkg/domain"
	"github.com/aretw0/agentforge/pkg/registry"
	"github.com/aretw0/agentforge/pkg/schema"
)

func TestGenerateMermaid(t *testing.T) {
	steps := registry.DefaultSteps([]string{"shopify-reviews"}, []string{"slack-message"})

	tests := []struct {
		name     string
		steps    []domain.StepDefinition
		rules    schema.Rules
		overlay  *graph.Overlay
		contains []string
		excludes []string
	}{
		{
			name:  "Step Shapes",
			steps: steps,
			contains: []string{
				"input_source[/\"Choose a data source\"/]",
				"output_channel[/\"Choose an output\"/]",
				"configure[[\"Configure your agent\"]]",
				"generate((\"Generate\"))",
			},
		},
		{
			name:  "Linear Flow",
			steps: steps,
			contains: []string{
				"input_source --> output_channel",
				"output_channel --> configure",
				"configure --> generate",
			},
		},
		{
			name:  "Derivation Table",
			steps: steps,
			rules: schema.DefaultRules(),
			contains: []string{
				`input_source -. "shopify-reviews" .-> input_source_shopify_reviews>"store-url*<br/>api-key*"]`,
				"input_source_shopify_reviews -.-> configure",
				`output_channel -. "google-sheet" .->`,
			},
		},
		{
			name:  "Untitled Step Falls Back To ID",
			steps: []domain.StepDefinition{{ID: "path/to/step.md", Role: domain.RoleInput}},
			contains: []string{
				"path_to_step_md[/\"path/to/step.md\"/]",
				"path_to_step_md --> generate",
			},
		},
		{
			name:  "Overlay",
			steps: steps,
			overlay: graph.OverlayFor(&domain.State{
				Status:  domain.StatusActive,
				History: []string{"input-source", "output-channel", "input-source"},
			}),
			contains: []string{
				"class input_source visited;",
				"class output_channel visited;",
				"class input_source current;",
			},
			excludes: []string{"class generate visited;"},
		},
		{
			name:  "Generated Overlay",
			steps: steps,
			overlay: graph.OverlayFor(&domain.State{
				Status:  domain.StatusGenerated,
				History: []string{"input-source", "output-channel", "configure"},
			}),
			contains: []string{"class generate visited;"},
			excludes: []string{"current;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.steps, tt.rules, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("GenerateMermaid() = \n%v\nUnexpected substring: %v", got, unwanted)
				}
			}
		})
	}
}
