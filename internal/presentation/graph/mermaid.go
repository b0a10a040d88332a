package graph

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/agentforge/pkg/domain"
	"github.com/aretw0/agentforge/pkg/schema"
)

// Overlay contains session data to highlight on the flow.
type Overlay struct {
	VisitedSteps []string
	CurrentStep  string
	Generated    bool
}

// OverlayFor builds the overlay of a session state.
// Completed states have no current step.
func OverlayFor(state *domain.State) *Overlay {
	if state == nil {
		return nil
	}
	o := &Overlay{
		VisitedSteps: slices.Clone(state.History),
		Generated:    state.Status == domain.StatusGenerated,
	}
	if state.Status == domain.StatusActive && len(state.History) > 0 {
		o.CurrentStep = state.History[len(state.History)-1]
	}
	return o
}

const generateNode = "generate"

// GenerateMermaid produces a Mermaid flowchart of the wizard flow.
// Shapes follow the step role:
// - Selection steps (input, output): [/Parallelogram/]
// - Derived steps: [[Subroutine]]
// - Generation: ((Circle))
// When rules is non-empty, every table entry is drawn as a dotted edge from
// its selection step to the fields it requires (required fields end with *).
func GenerateMermaid(steps []domain.StepDefinition, rules schema.Rules, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	var inputStep, outputStep, derivedStep string
	for i, step := range steps {
		safeID := sanitizeMermaidID(step.ID)
		opener, closer := "[", "]"
		switch {
		case step.Derived:
			opener, closer = "[[", "]]"
			derivedStep = safeID
		case step.Role == domain.RoleInput:
			opener, closer = "[/", "/]"
			inputStep = safeID
		case step.Role == domain.RoleOutput:
			opener, closer = "[/", "/]"
			outputStep = safeID
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, label(step), closer)

		next := generateNode
		if i+1 < len(steps) {
			next = sanitizeMermaidID(steps[i+1].ID)
		}
		fmt.Fprintf(&sb, "    %s --> %s\n", safeID, next)
	}
	fmt.Fprintf(&sb, "    %s((\"Generate\"))\n", generateNode)

	target := derivedStep
	if target == "" {
		target = generateNode
	}
	writeTable(&sb, inputStep, target, rules.Inputs)
	writeTable(&sb, outputStep, target, rules.Outputs)

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast on both light and dark themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.VisitedSteps {
			safeID := sanitizeMermaidID(id)
			if safeID != "" && !seen[safeID] {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}
		if overlay.Generated {
			fmt.Fprintf(&sb, "    class %s visited;\n", generateNode)
		}
		if overlay.CurrentStep != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentStep))
		}
	}

	return sb.String()
}

func label(step domain.StepDefinition) string {
	if step.Title == "" {
		return step.ID
	}
	return strings.ReplaceAll(step.Title, "\"", "'")
}

// writeTable draws one node per table entry, linked from its selection step
// and leading to the step that asks for its fields.
func writeTable(sb *strings.Builder, from, to string, table map[string][]domain.Field) {
	if from == "" || len(table) == 0 {
		return
	}
	for _, id := range slices.Sorted(maps.Keys(table)) {
		names := make([]string, 0, len(table[id]))
		for _, f := range table[id] {
			name := f.Name
			if f.Required {
				name += "*"
			}
			names = append(names, name)
		}
		node := sanitizeMermaidID(from + "-" + id)
		fmt.Fprintf(sb, "    %s -. \"%s\" .-> %s>\"%s\"]\n", from, id, node, strings.Join(names, "<br/>"))
		fmt.Fprintf(sb, "    %s -.-> %s\n", node, to)
	}
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
