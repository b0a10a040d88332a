package schema

import (
	"github.com/aretw0/agentforge/pkg/domain"
)

// Deriver maps a draft to the field list of the configure step.
// It holds no mutable state; Derive is a pure function of the draft.
type Deriver struct {
	rules Rules
}

// NewDeriver creates a deriver over a copy of rules.
func NewDeriver(rules Rules) *Deriver {
	return &Deriver{rules: Rules{}.Merge(rules)}
}

// Derive looks up the input and output selections of the draft and returns
// their required fields followed by the general fields.
// A field required by more than one selection appears once, keeping the
// first occurrence and the strictest required flag.
func (d *Deriver) Derive(draft domain.Draft) []domain.Field {
	input := draft.String(domain.KeyInputSource)
	output := draft.String(domain.KeyOutputChannel)

	var fields []domain.Field
	seen := make(map[string]int)

	add := func(trigger string, defs []domain.Field) {
		for _, def := range defs {
			f := def.Clone()
			if trigger != "" {
				f.DependsOn = trigger
			}
			if i, ok := seen[f.Name]; ok {
				fields[i].Required = fields[i].Required || f.Required
				continue
			}
			seen[f.Name] = len(fields)
			fields = append(fields, f)
		}
	}

	add(input, d.rules.Inputs[input])
	add(output, d.rules.Outputs[output])
	add("", d.rules.General)

	return fields
}

// Rules returns a copy of the lookup table.
func (d *Deriver) Rules() Rules {
	return Rules{}.Merge(d.rules)
}
