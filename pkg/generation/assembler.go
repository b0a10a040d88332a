package generation

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/agentforge/pkg/domain"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
)

// Assembler builds the frozen AgentConfiguration from a completed draft.
type Assembler struct {
	newID func() string
	now   func() time.Time
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithIDGenerator overrides the configuration id source (default: UUIDv4).
func WithIDGenerator(fn func() string) AssemblerOption {
	return func(a *Assembler) {
		a.newID = fn
	}
}

// WithAssemblerClock overrides the creation timestamp source.
func WithAssemblerClock(now func() time.Time) AssemblerOption {
	return func(a *Assembler) {
		a.now = now
	}
}

// NewAssembler creates an assembler with UUIDv4 ids.
func NewAssembler(opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		newID: uuid.NewString,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble decodes the draft into a configuration.
// A blank agent name yields domain.DefaultDisplayName and a blank update
// frequency yields domain.DefaultUpdateFrequency.
func (a *Assembler) Assemble(draft domain.Draft) (domain.AgentConfiguration, error) {
	if err := a.Ready(draft); err != nil {
		return domain.AgentConfiguration{}, err
	}
	input := strings.TrimSpace(draft.String(domain.KeyInputSource))
	output := strings.TrimSpace(draft.String(domain.KeyOutputChannel))

	settings, err := decodeSettings(draft)
	if err != nil {
		return domain.AgentConfiguration{}, err
	}
	if settings.UpdateFrequency == "" {
		settings.UpdateFrequency = domain.DefaultUpdateFrequency
	}

	name := settings.AgentName
	if name == "" {
		name = domain.DefaultDisplayName
	}

	return domain.AgentConfiguration{
		ID:            a.newID(),
		DisplayName:   name,
		InputSource:   input,
		OutputChannel: output,
		Settings:      settings,
		Draft:         draft,
		CreatedAt:     a.now().UTC(),
	}, nil
}

// Ready reports whether draft holds both selections.
func (a *Assembler) Ready(draft domain.Draft) error {
	if strings.TrimSpace(draft.String(domain.KeyInputSource)) == "" ||
		strings.TrimSpace(draft.String(domain.KeyOutputChannel)) == "" {
		return fmt.Errorf("%w: draft has no input source or output channel", domain.ErrNotReady)
	}
	return nil
}

func decodeSettings(draft domain.Draft) (domain.Settings, error) {
	raw := make(map[string]any, draft.Len())
	for _, key := range draft.Keys() {
		if key == domain.KeyInputSource || key == domain.KeyOutputChannel {
			continue
		}
		if v := strings.TrimSpace(draft.String(key)); v != "" {
			raw[key] = v
		}
	}

	var settings domain.Settings
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &settings,
		TagName: "mapstructure",
	})
	if err != nil {
		return settings, fmt.Errorf("failed to create settings decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return settings, fmt.Errorf("failed to decode settings: %w", err)
	}
	return settings, nil
}
