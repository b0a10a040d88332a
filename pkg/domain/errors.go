package domain

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ErrOutOfRange is returned when a step index does not address a registered step.
var ErrOutOfRange = errors.New("step index out of range")

// ErrSchemaViolation is returned when a step writes a key it does not declare.
var ErrSchemaViolation = errors.New("schema violation")

// ErrExitFlow signals that the user went back from the first step.
// It is not a failure: the host should leave the wizard.
var ErrExitFlow = errors.New("exit flow")

// ErrFlowComplete is returned when advancing after the last step was accepted,
// or when navigating or generating once the configuration exists.
var ErrFlowComplete = errors.New("flow already complete")

// ErrNotReady is returned when generation is requested before the last step was accepted.
var ErrNotReady = errors.New("flow has not reached the end")

// ErrSecretsMasked is returned when a draft holds redacted secrets, typically
// a session resumed from a store that masks them. The user has to go back and
// enter the values again.
var ErrSecretsMasked = errors.New("secret values were not kept by the session store")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ValidationFailure lists every invalid field of a submission.
// It is recoverable: the host re-prompts the user.
type ValidationFailure struct {
	StepID string
	Errors map[string]string // field name -> message
}

func (e *ValidationFailure) Error() string {
	fields := e.Fields()
	msgs := make([]string, len(fields))
	for i, f := range fields {
		msgs[i] = e.Errors[f]
	}
	return fmt.Sprintf("step '%s' has %d invalid field(s): %s", e.StepID, len(fields), strings.Join(msgs, "; "))
}

// Fields returns the invalid field names in sorted order.
func (e *ValidationFailure) Fields() []string {
	return slices.Sorted(maps.Keys(e.Errors))
}

// AsValidationFailure unwraps err into a ValidationFailure if it is one.
func AsValidationFailure(err error) (*ValidationFailure, bool) {
	var vf *ValidationFailure
	if errors.As(err, &vf) {
		return vf, true
	}
	return nil, false
}
