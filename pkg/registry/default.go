package registry

import "github.com/aretw0/agentforge/pkg/domain"

// Built-in step ids.
const (
	StepInputSource   = "input-source"
	StepOutputChannel = "output-channel"
	StepConfigure     = "configure"
)

// DefaultConfigureKeys are the keys the configure step produces with the built-in rules.
func DefaultConfigureKeys() []string {
	return []string{
		domain.KeyStoreURL,
		domain.KeyAPIKey,
		domain.KeyWebhookURL,
		domain.KeySheetID,
		domain.KeyAgentName,
		domain.KeyUpdateFrequency,
		domain.KeyDescription,
	}
}

// DefaultSteps returns the built-in three step flow.
// inputs and outputs are the selectable option ids shown on the first two steps.
// configureKeys lists every field the derivation rules can produce; when empty
// DefaultConfigureKeys is used.
func DefaultSteps(inputs, outputs []string, configureKeys ...string) []domain.StepDefinition {
	if len(configureKeys) == 0 {
		configureKeys = DefaultConfigureKeys()
	}
	return []domain.StepDefinition{
		{
			ID:           StepInputSource,
			Order:        0,
			Role:         domain.RoleInput,
			Title:        "Choose a data source",
			Prompt:       "Where should your agent **read** data from?",
			ProducesKeys: []string{domain.KeyInputSource},
			Fields: []domain.Field{{
				Name:     domain.KeyInputSource,
				Label:    "Input source",
				Kind:     domain.KindEnum,
				Required: true,
				Options:  inputs,
			}},
		},
		{
			ID:           StepOutputChannel,
			Order:        1,
			Role:         domain.RoleOutput,
			Title:        "Choose an output",
			Prompt:       "Where should your agent **send** its results?",
			ProducesKeys: []string{domain.KeyOutputChannel},
			Fields: []domain.Field{{
				Name:     domain.KeyOutputChannel,
				Label:    "Output channel",
				Kind:     domain.KindEnum,
				Required: true,
				Options:  outputs,
			}},
		},
		{
			ID:            StepConfigure,
			Order:         2,
			Role:          domain.RoleCredentials,
			Title:         "Configure your agent",
			Prompt:        "Connect your accounts and name your agent.",
			ProducesKeys:  configureKeys,
			DependsOnKeys: []string{domain.KeyInputSource, domain.KeyOutputChannel},
			Derived:       true,
		},
	}
}

// Default builds the registry of the built-in flow.
func Default(inputs, outputs []string, configureKeys ...string) *Registry {
	return MustNew(DefaultSteps(inputs, outputs, configureKeys...)...)
}
