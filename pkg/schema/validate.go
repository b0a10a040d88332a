package schema

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/aretw0/agentforge/pkg/domain"
)

// Valid is the marker stored in Result.Fields for a field without errors.
const Valid = ""

// Result maps each schema field to Valid or an error message.
type Result struct {
	Fields map[string]string `json:"fields"`

	// Hints holds advisory format remarks. They never make a field invalid.
	Hints map[string]string `json:"hints,omitempty"`
}

// OK reports whether every field is valid.
func (r Result) OK() bool {
	for _, msg := range r.Fields {
		if msg != Valid {
			return false
		}
	}
	return true
}

// Errors returns only the invalid fields.
func (r Result) Errors() map[string]string {
	out := make(map[string]string)
	for name, msg := range r.Fields {
		if msg != Valid {
			out[name] = msg
		}
	}
	return out
}

// Err returns a *domain.ValidationFailure for stepID, or nil when OK.
func (r Result) Err(stepID string) error {
	if r.OK() {
		return nil
	}
	return &domain.ValidationFailure{StepID: stepID, Errors: r.Errors()}
}

// Validate checks submitted values against fields.
// Every required field that is missing or blank gets an error; all other
// fields are valid whatever their content. All fields are checked, so the
// caller can show every problem at once.
func Validate(fields []domain.Field, submitted map[string]string) Result {
	res := Result{
		Fields: make(map[string]string, len(fields)),
		Hints:  make(map[string]string),
	}

	for _, f := range fields {
		value, present := submitted[f.Name]
		blank := strings.TrimSpace(value) == ""

		if f.Required && (!present || blank) {
			res.Fields[f.Name] = fmt.Sprintf("%s is required", f.DisplayName())
			continue
		}
		res.Fields[f.Name] = Valid

		if blank {
			continue
		}
		if hint := advise(f, strings.TrimSpace(value)); hint != "" {
			res.Hints[f.Name] = hint
		}
	}

	if len(res.Hints) == 0 {
		res.Hints = nil
	}
	return res
}

// advise returns a format remark for value, or "" when it looks fine.
func advise(f domain.Field, value string) string {
	switch f.Kind {
	case domain.KindURL:
		u, err := url.ParseRequestURI(value)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Sprintf("%s does not look like an http(s) URL", f.DisplayName())
		}
	case domain.KindEnum:
		if len(f.Options) > 0 && !slices.Contains(f.Options, value) {
			return fmt.Sprintf("%s is usually one of: %s", f.DisplayName(), strings.Join(f.Options, ", "))
		}
	}
	return ""
}
