package middleware

import (
	"context"
	"maps"
	"regexp"
	"sync"

	"github.com/aretw0/agentforge/pkg/domain"
	"github.com/aretw0/agentforge/pkg/ports"
)

// Mask replaces redacted values.
const Mask = domain.MaskedValue

// DefaultSecretPatterns match the credential fields of the built-in rules.
var DefaultSecretPatterns = []string{"api-key", "webhook-url", "token", "secret", "password"}

type piiMiddleware struct {
	next     ports.StateStore
	patterns []*regexp.Regexp

	mu sync.Mutex
	// kept holds the redacted values of each session for this process only.
	kept map[string]map[string]string
}

// NewPIIMiddleware creates a middleware that masks draft values whose key matches
// one of the patterns before they reach the store. The configuration record, if
// present, is masked the same way.
//
// The real values are kept in memory and put back on Load, so a session keeps
// its secrets for the lifetime of the process. A session loaded by another
// process sees Mask instead (see domain.ErrSecretsMasked).
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.StateStore) ports.StateStore {
		return &piiMiddleware{
			next:     next,
			patterns: patterns,
			kept:     make(map[string]map[string]string),
		}
	}
}

// ExactKeys returns patterns matching exactly the given keys.
func ExactKeys(keys ...string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = "^" + regexp.QuoteMeta(k) + "$"
	}
	return out
}

func (m *piiMiddleware) Save(ctx context.Context, sessionID string, state *domain.State) error {
	secrets := make(map[string]string)
	cloned := state.Clone()
	cloned.Draft = m.maskDraft(cloned.Draft, secrets)
	if cloned.Configuration != nil {
		cloned.Configuration.Draft = m.maskDraft(cloned.Configuration.Draft, secrets)
		m.maskSettings(&cloned.Configuration.Settings, secrets)
	}
	if err := m.next.Save(ctx, sessionID, cloned); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(secrets) == 0 {
		delete(m.kept, sessionID)
	} else {
		m.kept[sessionID] = secrets
	}
	return nil
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	state, err := m.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	secrets := maps.Clone(m.kept[sessionID])
	m.mu.Unlock()
	if len(secrets) == 0 {
		return state, nil
	}

	restored := state.Clone()
	restored.Draft = unmaskDraft(restored.Draft, secrets)
	if restored.Configuration != nil {
		restored.Configuration.Draft = unmaskDraft(restored.Configuration.Draft, secrets)
		for key, v := range settingFields(&restored.Configuration.Settings) {
			if orig, ok := secrets[key]; ok && *v == Mask {
				*v = orig
			}
		}
		for key, v := range restored.Configuration.Settings.Extra {
			if orig, ok := secrets[key]; ok && v == Mask {
				restored.Configuration.Settings.Extra[key] = orig
			}
		}
	}
	return restored, nil
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.kept, sessionID)
	m.mu.Unlock()
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *piiMiddleware) matches(key string) bool {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}

func (m *piiMiddleware) maskDraft(d domain.Draft, secrets map[string]string) domain.Draft {
	masked := make(map[string]string)
	for _, key := range d.Keys() {
		v := d.String(key)
		if v != "" && v != Mask && m.matches(key) {
			masked[key] = Mask
			secrets[key] = v
		}
	}
	if len(masked) == 0 {
		return d
	}
	return d.With(masked)
}

func (m *piiMiddleware) maskSettings(s *domain.Settings, secrets map[string]string) {
	for key, v := range settingFields(s) {
		if *v != "" && *v != Mask && m.matches(key) {
			secrets[key] = *v
			*v = Mask
		}
	}
	for key, v := range s.Extra {
		if v != "" && v != Mask && m.matches(key) {
			secrets[key] = v
			s.Extra[key] = Mask
		}
	}
}

func unmaskDraft(d domain.Draft, secrets map[string]string) domain.Draft {
	restored := make(map[string]string)
	for _, key := range d.Masked() {
		if orig, ok := secrets[key]; ok {
			restored[key] = orig
		}
	}
	if len(restored) == 0 {
		return d
	}
	return d.With(restored)
}

// settingFields maps the typed settings back to their draft keys.
func settingFields(s *domain.Settings) map[string]*string {
	return map[string]*string{
		domain.KeyAgentName:       &s.AgentName,
		domain.KeyUpdateFrequency: &s.UpdateFrequency,
		domain.KeyDescription:     &s.Description,
		domain.KeyStoreURL:        &s.StoreURL,
		domain.KeyAPIKey:          &s.APIKey,
		domain.KeyWebhookURL:      &s.WebhookURL,
		domain.KeySheetID:         &s.SheetID,
	}
}
