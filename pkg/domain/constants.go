package domain

// Draft keys written by the built-in steps.
const (
	KeyInputSource   = "input-source"
	KeyOutputChannel = "output-channel"

	KeyStoreURL        = "store-url"
	KeyAPIKey          = "api-key"
	KeyWebhookURL      = "webhook-url"
	KeySheetID         = "sheet-id"
	KeyAgentName       = "agent-name"
	KeyUpdateFrequency = "update-frequency"
	KeyDescription     = "description"
)

// Update frequencies accepted by the update-frequency field.
const (
	FrequencyRealtime = "realtime"
	FrequencyHourly   = "hourly"
	FrequencyDaily    = "daily"
	FrequencyWeekly   = "weekly"

	DefaultUpdateFrequency = FrequencyDaily
)

// DefaultDisplayName is used when the user leaves agent-name blank.
const DefaultDisplayName = "My AI Agent"

// MaskedValue stands in for a secret that was redacted before it was stored.
const MaskedValue = "***"

// UpdateFrequencies lists the enum values of the update-frequency field in display order.
func UpdateFrequencies() []string {
	return []string{FrequencyRealtime, FrequencyHourly, FrequencyDaily, FrequencyWeekly}
}
