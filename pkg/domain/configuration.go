package domain

import (
	"maps"
	"time"
)

// AgentConfiguration is the frozen output record of the wizard.
// It is created once, when generation completes. Downstream actions work on copies.
type AgentConfiguration struct {
	ID            string    `json:"id"`
	DisplayName   string    `json:"display_name"`
	InputSource   string    `json:"input_source"`
	OutputChannel string    `json:"output_channel"`
	Settings      Settings  `json:"settings"`
	Draft         Draft     `json:"draft"`
	CreatedAt     time.Time `json:"created_at"`
}

// Settings is the typed view of the configure step answers.
type Settings struct {
	AgentName       string `json:"agent_name,omitempty" mapstructure:"agent-name"`
	UpdateFrequency string `json:"update_frequency" mapstructure:"update-frequency"`
	Description     string `json:"description,omitempty" mapstructure:"description"`
	StoreURL        string `json:"store_url,omitempty" mapstructure:"store-url"`
	APIKey          string `json:"api_key,omitempty" mapstructure:"api-key"`
	WebhookURL      string `json:"webhook_url,omitempty" mapstructure:"webhook-url"`
	SheetID         string `json:"sheet_id,omitempty" mapstructure:"sheet-id"`

	// Extra holds answers to fields declared by catalog options.
	Extra map[string]string `json:"extra,omitempty" mapstructure:",remain"`
}

// Copy returns an independent copy of the configuration.
func (c AgentConfiguration) Copy() AgentConfiguration {
	out := c
	out.Draft = NewDraft(c.Draft.Map())
	out.Settings.Extra = maps.Clone(c.Settings.Extra)
	return out
}

// CompletionAction is what the user chose to do with a finished configuration.
type CompletionAction string

const (
	ActionEdit      CompletionAction = "edit"
	ActionDeploy    CompletionAction = "deploy"
	ActionAPIAccess CompletionAction = "api-access"
)

// ParseCompletionAction validates an action name.
func ParseCompletionAction(s string) (CompletionAction, bool) {
	switch a := CompletionAction(s); a {
	case ActionEdit, ActionDeploy, ActionAPIAccess:
		return a, true
	}
	return "", false
}
