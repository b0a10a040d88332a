package schema

import (
	"slices"

	"github.com/aretw0/agentforge/pkg/domain"
)

// Rules is the lookup table used by the Deriver.
type Rules struct {
	// Inputs maps an input selection id to the fields it requires.
	Inputs map[string][]domain.Field
	// Outputs maps an output selection id to the fields it requires.
	Outputs map[string][]domain.Field
	// General fields are always appended after the selection specific ones.
	General []domain.Field
}

// DefaultRules returns the built-in table.
func DefaultRules() Rules {
	return Rules{
		Inputs: map[string][]domain.Field{
			"shopify-reviews": {
				{
					Name:     domain.KeyStoreURL,
					Label:    "Store URL",
					Kind:     domain.KindURL,
					Required: true,
					Help:     "The address of your Shopify store, e.g. https://my-shop.myshopify.com",
				},
				{
					Name:     domain.KeyAPIKey,
					Label:    "API Key",
					Kind:     domain.KindSecret,
					Required: true,
					Help:     "Admin API access token with read_products scope.",
				},
			},
		},
		Outputs: map[string][]domain.Field{
			"slack-message": {
				{
					Name:     domain.KeyWebhookURL,
					Label:    "Slack Webhook URL",
					Kind:     domain.KindURL,
					Secret:   true,
					Required: true,
					Help:     "Incoming webhook URL, e.g. https://hooks.slack.com/services/...",
				},
			},
			"google-sheet": {
				{
					Name:     domain.KeySheetID,
					Label:    "Sheet ID",
					Kind:     domain.KindText,
					Required: true,
					Help:     "The id between /d/ and /edit in the sheet URL.",
				},
			},
		},
		General: []domain.Field{
			{
				Name:  domain.KeyAgentName,
				Label: "Agent name",
				Kind:  domain.KindText,
			},
			{
				Name:    domain.KeyUpdateFrequency,
				Label:   "Update frequency",
				Kind:    domain.KindEnum,
				Options: domain.UpdateFrequencies(),
				Default: domain.DefaultUpdateFrequency,
			},
			{
				Name:  domain.KeyDescription,
				Label: "Description",
				Kind:  domain.KindText,
			},
		},
	}
}

// Merge returns a table where entries of other replace entries of r with the same id.
// General fields are replaced only when other defines any.
func (r Rules) Merge(other Rules) Rules {
	out := Rules{
		Inputs:  cloneTable(r.Inputs),
		Outputs: cloneTable(r.Outputs),
		General: cloneFields(r.General),
	}
	for id, fields := range other.Inputs {
		out.Inputs[id] = cloneFields(fields)
	}
	for id, fields := range other.Outputs {
		out.Outputs[id] = cloneFields(fields)
	}
	if len(other.General) > 0 {
		out.General = cloneFields(other.General)
	}
	return out
}

// FieldNames returns every field name the table can ever produce, in sorted order.
func (r Rules) FieldNames() []string {
	return r.names(func(domain.Field) bool { return true })
}

// SecretNames returns the names of the fields whose values must be masked, in sorted order.
func (r Rules) SecretNames() []string {
	return r.names(domain.Field.IsSecret)
}

func (r Rules) names(keep func(domain.Field) bool) []string {
	var names []string
	add := func(fields []domain.Field) {
		for _, f := range fields {
			if keep(f) && !slices.Contains(names, f.Name) {
				names = append(names, f.Name)
			}
		}
	}
	for _, fields := range r.Inputs {
		add(fields)
	}
	for _, fields := range r.Outputs {
		add(fields)
	}
	add(r.General)
	slices.Sort(names)
	return names
}

func cloneTable(t map[string][]domain.Field) map[string][]domain.Field {
	out := make(map[string][]domain.Field, len(t))
	for id, fields := range t {
		out[id] = cloneFields(fields)
	}
	return out
}

func cloneFields(fields []domain.Field) []domain.Field {
	if fields == nil {
		return nil
	}
	out := make([]domain.Field, len(fields))
	for i, f := range fields {
		out[i] = f.Clone()
	}
	return out
}
