package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/aretw0/agentforge/pkg/domain"
	"golang.org/x/term"
)

// ContentRenderer transforms step prompts before they are printed.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// TextHandler implements the standard text-based interface.
// It asks one field at a time and reads secrets without echo when the input
// is a terminal.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer

	// Labels maps option ids to display names for selection lists.
	Labels map[string]string

	fd      int // terminal file descriptor, -1 when input is not a terminal
	pending chan inputResult
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithOptionLabels configures the display names of selectable options.
func WithOptionLabels(labels map[string]string) TextHandlerOption {
	return func(h *TextHandler) {
		h.Labels = labels
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader: bufio.NewReader(r),
		Writer: w,
		fd:     -1,
	}
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		h.fd = int(f.Fd())
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Ask prints the step and reads every field. After a rejected submission
// only the invalid fields are asked again.
func (h *TextHandler) Ask(ctx context.Context, p Prompt) (Submission, error) {
	view := p.View
	if p.Failure != nil {
		fmt.Fprintln(h.Writer, "\nPlease fix the following:")
		for _, name := range p.Failure.Fields() {
			fmt.Fprintf(h.Writer, "  - %s\n", p.Failure.Errors[name])
		}
	} else {
		fmt.Fprintf(h.Writer, "\n[%d/%d] %s\n", view.StepIndex+1, view.StepCount, view.Title)
		h.render(view.Prompt)
		if view.First {
			fmt.Fprintln(h.Writer, "(type 'back' to leave, 'exit' to save and quit)")
		} else {
			fmt.Fprintln(h.Writer, "(type 'back' for the previous step, 'exit' to save and quit)")
		}
	}

	values := make(map[string]string, len(view.Fields))
	for _, f := range view.Fields {
		if p.Failure != nil {
			if _, invalid := p.Failure.Errors[f.Name]; !invalid {
				if v, ok := p.Previous[f.Name]; ok {
					values[f.Name] = v
				}
				continue
			}
		}
		val, cmd, err := h.askField(ctx, f)
		if err != nil {
			return Submission{}, err
		}
		if cmd != CommandAdvance {
			return Submission{Command: cmd}, nil
		}
		values[f.Name] = val
	}
	return Submission{Command: CommandAdvance, Values: values}, nil
}

func (h *TextHandler) askField(ctx context.Context, f domain.Field) (string, Command, error) {
	if f.Help != "" {
		fmt.Fprintf(h.Writer, "  %s\n", f.Help)
	}
	enum := f.Kind == domain.KindEnum && len(f.Options) > 0
	if enum {
		for i, opt := range f.Options {
			fmt.Fprintf(h.Writer, "  %d) %s\n", i+1, h.label(opt))
		}
	}

	suffix := " (optional)"
	if f.Required {
		suffix = " (required)"
	}
	if f.Default != "" {
		suffix += fmt.Sprintf(" [%s]", f.Default)
	}
	fmt.Fprintf(h.Writer, "%s%s: ", f.DisplayName(), suffix)

	for {
		raw, err := h.read(ctx, f.IsSecret())
		if err != nil {
			return "", "", err
		}
		val, err := Sanitize(f, raw)
		if err != nil {
			fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n> ", err)
			continue
		}

		switch strings.ToLower(val) {
		case "back":
			return "", CommandBack, nil
		case "exit", "quit":
			return "", CommandExit, nil
		}

		if val == "" {
			return f.Default, CommandAdvance, nil
		}
		if enum {
			choice, ok := pickOption(f.Options, val)
			if !ok {
				fmt.Fprintf(h.Writer, "Please pick a number between 1 and %d.\n> ", len(f.Options))
				continue
			}
			val = choice
		}
		return val, CommandAdvance, nil
	}
}

func pickOption(options []string, val string) (string, bool) {
	if n, err := strconv.Atoi(val); err == nil {
		if n >= 1 && n <= len(options) {
			return options[n-1], true
		}
		return "", false
	}
	for _, opt := range options {
		if strings.EqualFold(opt, val) {
			return opt, true
		}
	}
	return "", false
}

// Progress prints one line per finished phase.
func (h *TextHandler) Progress(ctx context.Context, p domain.Progress) error {
	_, err := fmt.Fprintf(h.Writer, "  %s %3.0f%%  %s\n", progressBar(p.Percent, 20), p.Percent, p.Label)
	return err
}

func progressBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	filled = min(max(filled, 0), width)
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

// completionChoices is the order of the action menu.
var completionChoices = []struct {
	action domain.CompletionAction
	label  string
}{
	{domain.ActionEdit, "Edit configuration"},
	{domain.ActionDeploy, "Deploy agent"},
	{domain.ActionAPIAccess, "Get API access"},
	{"", "Done"},
}

// Complete prints a summary of cfg and asks for the next action.
func (h *TextHandler) Complete(ctx context.Context, cfg domain.AgentConfiguration) (domain.CompletionAction, error) {
	fmt.Fprintf(h.Writer, "\nYour agent %q is ready.\n", cfg.DisplayName)
	fmt.Fprintf(h.Writer, "  ID:        %s\n", cfg.ID)
	fmt.Fprintf(h.Writer, "  Input:     %s\n", h.label(cfg.InputSource))
	fmt.Fprintf(h.Writer, "  Output:    %s\n", h.label(cfg.OutputChannel))
	fmt.Fprintf(h.Writer, "  Frequency: %s\n", cfg.Settings.UpdateFrequency)
	if cfg.Settings.Description != "" {
		fmt.Fprintf(h.Writer, "  About:     %s\n", cfg.Settings.Description)
	}

	fmt.Fprintln(h.Writer, "\nWhat next?")
	for i, c := range completionChoices {
		fmt.Fprintf(h.Writer, "  %d) %s\n", i+1, c.label)
	}
	fmt.Fprint(h.Writer, "> ")

	for {
		raw, err := h.read(ctx, false)
		if err != nil {
			return "", err
		}
		val := strings.TrimSpace(raw)
		if val == "" {
			return "", nil
		}
		if n, err := strconv.Atoi(val); err == nil && n >= 1 && n <= len(completionChoices) {
			return completionChoices[n-1].action, nil
		}
		if a, ok := domain.ParseCompletionAction(val); ok {
			return a, nil
		}
		fmt.Fprintf(h.Writer, "Please pick a number between 1 and %d.\n> ", len(completionChoices))
	}
}

// SystemOutput prints a status line.
func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, "\n[System] %s\n", msg)
	return err
}

func (h *TextHandler) label(id string) string {
	if name, ok := h.Labels[id]; ok && name != "" {
		return fmt.Sprintf("%s (%s)", name, id)
	}
	return id
}

func (h *TextHandler) render(markdown string) {
	if markdown == "" {
		return
	}
	out := markdown
	if h.Renderer != nil {
		if rendered, err := h.Renderer(markdown); err == nil {
			out = rendered
		}
	}
	fmt.Fprintln(h.Writer, strings.TrimSpace(out))
}

// read returns the next line, or ctx.Err() when ctx is done first.
// A read abandoned by a cancelled ctx is picked up by the next call.
func (h *TextHandler) read(ctx context.Context, secret bool) (string, error) {
	if h.pending == nil {
		ch := make(chan inputResult, 1)
		h.pending = ch
		go func() {
			text, err := h.readLine(secret)
			ch <- inputResult{text: text, err: err}
		}()
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-h.pending:
		h.pending = nil
		return res.text, res.err
	}
}

func (h *TextHandler) readLine(secret bool) (string, error) {
	if secret && h.fd >= 0 {
		b, err := term.ReadPassword(h.fd)
		fmt.Fprintln(h.Writer)
		return string(b), err
	}
	text, err := h.Reader.ReadString('\n')
	if err == io.EOF && text != "" {
		return text, nil
	}
	return text, err
}
