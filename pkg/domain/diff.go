package domain

// StateDiff represents the changes between two states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	CurrentStep *int             `json:"current_step,omitempty"`
	Status      *ExecutionStatus `json:"status,omitempty"`

	// Draft contains only changed, added or deleted keys.
	// For deletions, the key is present with a nil value.
	// Clients should merge these updates into their local draft.
	Draft map[string]*string `json:"draft,omitempty"`

	// History contains *new* step ids appended to history.
	History *HistoryDelta `json:"history,omitempty"`

	// ConfigurationID is set when generation has just finished.
	ConfigurationID *string `json:"configuration_id,omitempty"`
}

// HistoryDelta represents changes to the history stack.
type HistoryDelta struct {
	Appended []string `json:"appended"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
func Diff(oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{
		SessionID: newState.SessionID,
	}

	if oldState == nil || oldState.CurrentStep != newState.CurrentStep {
		step := newState.CurrentStep
		diff.CurrentStep = &step
	}
	if oldState == nil || oldState.Status != newState.Status {
		status := newState.Status
		diff.Status = &status
	}
	if newState.Configuration != nil && (oldState == nil || oldState.Configuration == nil) {
		id := newState.Configuration.ID
		diff.ConfigurationID = &id
	}

	diff.Draft = diffDraft(oldState, newState)
	diff.History = diffHistory(oldState, newState)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffDraft(old *State, new *State) map[string]*string {
	delta := make(map[string]*string)

	var oldDraft Draft
	if old != nil {
		oldDraft = old.Draft
	}

	for _, k := range new.Draft.Keys() {
		newVal := new.Draft.String(k)
		oldVal, exists := oldDraft.Get(k)
		if !exists || oldVal != newVal {
			delta[k] = &newVal
		}
	}

	for _, k := range oldDraft.Keys() {
		if !new.Draft.Has(k) {
			delta[k] = nil
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

// diffHistory assumes append-only history.
func diffHistory(old *State, new *State) *HistoryDelta {
	if len(new.History) == 0 {
		return nil
	}

	if old == nil {
		return &HistoryDelta{Appended: new.History}
	}

	oldLen := len(old.History)
	if len(new.History) > oldLen {
		return &HistoryDelta{
			Appended: new.History[oldLen:],
		}
	}

	return nil
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.CurrentStep == nil &&
		d.Status == nil &&
		d.ConfigurationID == nil &&
		len(d.Draft) == 0 &&
		d.History == nil
}
