package domain

import "slices"

// FieldKind tells renderers which kind of input control a field needs.
type FieldKind string

const (
	KindText   FieldKind = "text"
	KindSecret FieldKind = "secret"
	KindURL    FieldKind = "url"
	KindEnum   FieldKind = "enum"
)

// Field is one entry of a step schema.
type Field struct {
	Name     string    `json:"name" yaml:"name"`
	Label    string    `json:"label,omitempty" yaml:"label,omitempty"`
	Kind     FieldKind `json:"kind" yaml:"kind"`
	Required bool      `json:"required" yaml:"required"`

	// Secret masks the value on input and in persisted drafts.
	// A URL-shaped field can be secret too (e.g. webhook URLs).
	Secret bool `json:"secret,omitempty" yaml:"secret,omitempty"`

	// DependsOn is the selection id that caused the field to be included.
	DependsOn string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`

	Options []string `json:"options,omitempty" yaml:"options,omitempty"`
	Default string   `json:"default,omitempty" yaml:"default,omitempty"`
	Help    string   `json:"help,omitempty" yaml:"help,omitempty"`
}

// IsSecret reports whether the value must be masked.
func (f Field) IsSecret() bool {
	return f.Secret || f.Kind == KindSecret
}

// DisplayName returns the label, falling back to the field name.
func (f Field) DisplayName() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// Clone returns a copy that does not share the options slice.
func (f Field) Clone() Field {
	out := f
	out.Options = slices.Clone(f.Options)
	return out
}
