package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/agentforge/pkg/domain"
)

// Event types written by the JSONHandler, one JSON object per line.
const (
	EventStep     = "step"
	EventProgress = "progress"
	EventComplete = "complete"
	EventSystem   = "system"
)

// Event is a line of JSONHandler output.
type Event struct {
	Type          string                     `json:"type"`
	View          *domain.View               `json:"view,omitempty"`
	Errors        map[string]string          `json:"errors,omitempty"`
	Progress      *domain.Progress           `json:"progress,omitempty"`
	Configuration *domain.AgentConfiguration `json:"configuration,omitempty"`
	Message       string                     `json:"message,omitempty"`
}

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
//
// For each step it writes a "step" event and reads one line back: a Submission
// object, a bare object of field values, or a JSON string command ("back", "exit").
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

// Ask emits the step and decodes the answer.
func (h *JSONHandler) Ask(ctx context.Context, p Prompt) (Submission, error) {
	view := p.View
	ev := Event{Type: EventStep, View: &view}
	if p.Failure != nil {
		ev.Errors = p.Failure.Errors
	}
	if err := h.Encoder.Encode(ev); err != nil {
		return Submission{}, err
	}

	for {
		line, err := h.readLine(ctx)
		if err != nil {
			return Submission{}, err
		}
		sub, err := parseSubmission(line)
		if err != nil {
			if err := h.SystemOutput(ctx, err.Error()); err != nil {
				return Submission{}, err
			}
			continue
		}
		return sub, nil
	}
}

func parseSubmission(line string) (Submission, error) {
	var cmd string
	if err := json.Unmarshal([]byte(line), &cmd); err == nil {
		switch c := Command(cmd); c {
		case CommandBack, CommandExit, CommandAdvance:
			return Submission{Command: c}, nil
		}
		return Submission{}, fmt.Errorf("unknown command '%s'", cmd)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Submission{}, fmt.Errorf("invalid submission: %w", err)
	}

	// A Submission has a command or a values object; anything else is a bare values map.
	if _, ok := raw["command"]; ok {
		var sub Submission
		if err := json.Unmarshal([]byte(line), &sub); err != nil {
			return Submission{}, fmt.Errorf("invalid submission: %w", err)
		}
		if sub.Command == "" {
			sub.Command = CommandAdvance
		}
		return sub, nil
	}
	if v, ok := raw["values"]; ok && len(raw) == 1 {
		sub := Submission{Command: CommandAdvance}
		if err := json.Unmarshal(v, &sub.Values); err != nil {
			return Submission{}, fmt.Errorf("invalid values: %w", err)
		}
		return sub, nil
	}

	var values map[string]string
	if err := json.Unmarshal([]byte(line), &values); err != nil {
		return Submission{}, fmt.Errorf("invalid values: %w", err)
	}
	return Submission{Command: CommandAdvance, Values: values}, nil
}

// Progress emits a progress event.
func (h *JSONHandler) Progress(ctx context.Context, p domain.Progress) error {
	return h.Encoder.Encode(Event{Type: EventProgress, Progress: &p})
}

// Complete emits the configuration and reads an optional action line.
// End of input means no action.
func (h *JSONHandler) Complete(ctx context.Context, cfg domain.AgentConfiguration) (domain.CompletionAction, error) {
	if err := h.Encoder.Encode(Event{Type: EventComplete, Configuration: &cfg}); err != nil {
		return "", err
	}

	line, err := h.readLine(ctx)
	if err == io.EOF {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	var name string
	if err := json.Unmarshal([]byte(line), &name); err != nil {
		var req struct {
			Action string `json:"action"`
		}
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			return "", fmt.Errorf("invalid action: %w", err)
		}
		name = req.Action
	}
	if name == "" {
		return "", nil
	}
	action, ok := domain.ParseCompletionAction(name)
	if !ok {
		return "", fmt.Errorf("unknown completion action '%s'", name)
	}
	return action, nil
}

// SystemOutput emits a system event.
func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(Event{Type: EventSystem, Message: msg})
}

// readLine skips blank lines. It does not observe ctx while blocked.
func (h *JSONHandler) readLine(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := h.Reader.ReadString('\n')
		text = strings.TrimSpace(text)
		if text != "" {
			return text, nil
		}
		if err != nil {
			return "", err
		}
	}
}
