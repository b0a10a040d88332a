package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/agentforge/pkg/domain"
)

// DefaultMaxInputSize bounds a submitted value in bytes.
const DefaultMaxInputSize = 4096

// EnvMaxInputSize overrides DefaultMaxInputSize.
const EnvMaxInputSize = "AGENTFORGE_MAX_INPUT_SIZE"

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// Sanitize is the input filter installed with agentforge.WithInputFilter.
//
// Every value loses control characters other than newline, tab and carriage
// return, and its surrounding whitespace. A required field rejects a value
// that is too large or not UTF-8, since a cut credential is worse than a retry.
// An optional field is repaired instead: invalid bytes become U+FFFD and the
// value is cut at the size limit on a rune boundary.
func Sanitize(f domain.Field, value string) (string, error) {
	limit := maxInputSize()
	if f.Required {
		if len(value) > limit {
			return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(value), limit)
		}
		if !utf8.ValidString(value) {
			return "", ErrInvalidUTF8
		}
	} else {
		value = truncate(strings.ToValidUTF8(value, string(utf8.RuneError)), limit)
	}
	return strings.TrimSpace(strings.Map(dropControl, value)), nil
}

func dropControl(r rune) rune {
	switch {
	case r == '\n', r == '\t', r == '\r':
		return r
	case unicode.IsControl(r):
		return -1
	}
	return r
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func maxInputSize() int {
	if size, err := strconv.Atoi(os.Getenv(EnvMaxInputSize)); err == nil && size > 0 {
		return size
	}
	return DefaultMaxInputSize
}
