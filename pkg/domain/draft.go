package domain

import (
	"encoding/json"
	"maps"
	"slices"
)

// Draft is the immutable mapping of answers collected by completed steps.
// The zero value is an empty draft.
// Every method returns copies, so a Draft can be shared freely between readers.
type Draft struct {
	values map[string]string
}

// NewDraft creates a draft holding a copy of values.
func NewDraft(values map[string]string) Draft {
	return Draft{values: maps.Clone(values)}
}

// Get returns the value stored for key.
func (d Draft) Get(key string) (string, bool) {
	v, ok := d.values[key]
	return v, ok
}

// String returns the value stored for key, or "" when absent.
func (d Draft) String(key string) string {
	return d.values[key]
}

// Has reports whether key is populated.
func (d Draft) Has(key string) bool {
	_, ok := d.values[key]
	return ok
}

// Len returns the number of populated keys.
func (d Draft) Len() int {
	return len(d.values)
}

// Keys returns the populated keys in sorted order.
func (d Draft) Keys() []string {
	return slices.Sorted(maps.Keys(d.values))
}

// Masked returns the keys whose value is MaskedValue, in sorted order.
func (d Draft) Masked() []string {
	var keys []string
	for _, k := range d.Keys() {
		if d.values[k] == MaskedValue {
			keys = append(keys, k)
		}
	}
	return keys
}

// Map returns a mutable copy of the underlying values.
func (d Draft) Map() map[string]string {
	out := make(map[string]string, len(d.values))
	maps.Copy(out, d.values)
	return out
}

// With returns a new draft with values merged over the current ones.
func (d Draft) With(values map[string]string) Draft {
	out := d.Map()
	maps.Copy(out, values)
	return Draft{values: out}
}

// Without returns a new draft with keys removed.
func (d Draft) Without(keys ...string) Draft {
	out := d.Map()
	for _, k := range keys {
		delete(out, k)
	}
	return Draft{values: out}
}

// Equal reports whether both drafts hold the same keys and values.
func (d Draft) Equal(other Draft) bool {
	return maps.Equal(d.values, other.values)
}

// MarshalJSON encodes the draft as a flat JSON object.
func (d Draft) MarshalJSON() ([]byte, error) {
	if d.values == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d.values)
}

// UnmarshalJSON decodes a flat JSON object of strings.
func (d *Draft) UnmarshalJSON(data []byte) error {
	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	d.values = values
	return nil
}
