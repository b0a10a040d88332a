package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	t.Run("Initial Load (Old is Nil)", func(t *testing.T) {
		s := &State{
			SessionID: "sess-1",
			Status:    StatusActive,
			Draft:     NewDraft(map[string]string{KeyInputSource: "shopify-reviews"}),
			History:   []string{"input-source"},
		}

		d := Diff(nil, s)
		require.NotNil(t, d)
		assert.Equal(t, "sess-1", d.SessionID)
		require.NotNil(t, d.CurrentStep)
		assert.Equal(t, 0, *d.CurrentStep)
		require.NotNil(t, d.Status)
		assert.Equal(t, StatusActive, *d.Status)
		require.Contains(t, d.Draft, KeyInputSource)
		assert.Equal(t, "shopify-reviews", *d.Draft[KeyInputSource])
		assert.Equal(t, []string{"input-source"}, d.History.Appended)
	})

	t.Run("No Changes", func(t *testing.T) {
		s := &State{
			SessionID: "sess-1",
			Status:    StatusActive,
			Draft:     NewDraft(map[string]string{"a": "1"}),
			History:   []string{"input-source"},
		}
		assert.Nil(t, Diff(s, s.Clone()))
	})

	t.Run("Advance", func(t *testing.T) {
		old := &State{
			SessionID: "sess-1",
			Status:    StatusActive,
			History:   []string{"input-source"},
		}
		next := &State{
			SessionID:   "sess-1",
			CurrentStep: 1,
			Status:      StatusActive,
			Draft:       NewDraft(map[string]string{KeyInputSource: "scheduled-check"}),
			History:     []string{"input-source", "output-channel"},
		}

		d := Diff(old, next)
		require.NotNil(t, d)
		assert.Equal(t, 1, *d.CurrentStep)
		assert.Nil(t, d.Status)
		assert.Equal(t, "scheduled-check", *d.Draft[KeyInputSource])
		assert.Equal(t, []string{"output-channel"}, d.History.Appended)
	})

	t.Run("Draft Deletion", func(t *testing.T) {
		old := &State{Draft: NewDraft(map[string]string{"a": "1", "b": "2"})}
		next := &State{Draft: NewDraft(map[string]string{"a": "1"})}

		d := Diff(old, next)
		require.NotNil(t, d)
		require.Contains(t, d.Draft, "b")
		assert.Nil(t, d.Draft["b"])
		assert.NotContains(t, d.Draft, "a")
	})

	t.Run("Configuration Assembled", func(t *testing.T) {
		old := &State{SessionID: "s", Status: StatusComplete}
		next := &State{SessionID: "s", Status: StatusGenerated, Configuration: &AgentConfiguration{ID: "cfg-1"}}

		d := Diff(old, next)
		require.NotNil(t, d)
		assert.Equal(t, "cfg-1", *d.ConfigurationID)
		assert.Equal(t, StatusGenerated, *d.Status)
	})
}

func TestDiffJSONSerialization(t *testing.T) {
	t.Run("Empty Draft Omitted", func(t *testing.T) {
		s1 := &State{SessionID: "s", CurrentStep: 1}
		s2 := &State{SessionID: "s", CurrentStep: 2}
		diff := Diff(s1, s2)
		require.NotNil(t, diff)

		bytes, err := json.Marshal(diff)
		require.NoError(t, err)
		assert.False(t, strings.Contains(string(bytes), `"draft"`), "got: %s", bytes)
	})

	t.Run("Deletions as Null", func(t *testing.T) {
		s1 := &State{Draft: NewDraft(map[string]string{"a": "1", "b": "2"})}
		s2 := &State{Draft: NewDraft(map[string]string{"a": "1"})}
		diff := Diff(s1, s2)
		require.NotNil(t, diff)

		bytes, err := json.Marshal(diff)
		require.NoError(t, err)
		assert.Contains(t, string(bytes), `"b":null`)
	})
}
