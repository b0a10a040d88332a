package domain

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraft_Immutable(t *testing.T) {
	src := map[string]string{"a": "1"}
	d := NewDraft(src)
	src["a"] = "changed"

	assert.Equal(t, "1", d.String("a"), "NewDraft must copy its input")

	m := d.Map()
	m["a"] = "mutated"
	assert.Equal(t, "1", d.String("a"), "Map must return a copy")

	d2 := d.With(map[string]string{"b": "2"})
	assert.False(t, d.Has("b"))
	assert.Equal(t, []string{"a", "b"}, d2.Keys())

	d3 := d2.Without("a")
	assert.True(t, d2.Has("a"))
	assert.Equal(t, []string{"b"}, d3.Keys())
}

func TestDraft_Masked(t *testing.T) {
	assert.Empty(t, Draft{}.Masked())

	d := NewDraft(map[string]string{
		KeyWebhookURL: MaskedValue,
		KeyAPIKey:     MaskedValue,
		KeyStoreURL:   "https://shop.example.com",
	})
	assert.Equal(t, []string{KeyAPIKey, KeyWebhookURL}, d.Masked())
}

func TestDraft_JSON(t *testing.T) {
	var zero Draft
	b, err := json.Marshal(zero)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(b))

	d := NewDraft(map[string]string{KeyAgentName: "Review Bot"})
	b, err = json.Marshal(d)
	require.NoError(t, err)

	var back Draft
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, d.Equal(back))
}

func TestValidationFailure_Error(t *testing.T) {
	vf := &ValidationFailure{
		StepID: "configure",
		Errors: map[string]string{
			KeyStoreURL: "Store URL is required",
			KeyAPIKey:   "API Key is required",
		},
	}

	assert.Equal(t, []string{KeyAPIKey, KeyStoreURL}, vf.Fields())
	assert.Contains(t, vf.Error(), "2 invalid field(s)")

	wrapped := fmt.Errorf("advance: %w", vf)
	got, ok := AsValidationFailure(wrapped)
	require.True(t, ok)
	assert.Same(t, vf, got)
}

func TestProgressPercent(t *testing.T) {
	assert.Equal(t, 100.0, ProgressPercent(7, 7))
	assert.Equal(t, 0.0, ProgressPercent(0, 7))
	assert.Equal(t, 100.0, ProgressPercent(0, 0))
	assert.Less(t, ProgressPercent(6, 7), 100.0)
}

func TestParseCompletionAction(t *testing.T) {
	a, ok := ParseCompletionAction("deploy")
	assert.True(t, ok)
	assert.Equal(t, ActionDeploy, a)

	_, ok = ParseCompletionAction("delete")
	assert.False(t, ok)
}
