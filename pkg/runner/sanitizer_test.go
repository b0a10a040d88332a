package runner

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/aretw0/agentforge/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	requiredField = domain.Field{Name: domain.KeyAPIKey, Required: true}
	optionalField = domain.Field{Name: domain.KeyDescription}
)

func TestSanitize_SizeLimit(t *testing.T) {
	limit := DefaultMaxInputSize

	tests := []struct {
		name      string
		inputSize int
		wantErr   bool
	}{
		{"Under Limit", limit - 1, false},
		{"Exact Limit", limit, false},
		{"Over Limit", limit + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Sanitize(requiredField, strings.Repeat("a", tt.inputSize))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInputTooLarge)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSanitize_OptionalFieldIsNeverRejected(t *testing.T) {
	long := strings.Repeat("é", DefaultMaxInputSize)

	got, err := Sanitize(optionalField, long)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(got), DefaultMaxInputSize)
	assert.True(t, utf8.ValidString(got), "the cut lands on a rune boundary")

	got, err = Sanitize(optionalField, "ok\xbd\xb2 done")
	require.NoError(t, err)
	assert.Equal(t, "ok� done", got)
}

func TestSanitize_ControlChars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Normal Text", "Hello World", "Hello World"},
		{"Safe Controls", "Line1\nLine2\tTabbed", "Line1\nLine2\tTabbed"},
		{"ANSI Code", "\x1b[31mRed\x1b[0m", "[31mRed[0m"},
		{"Null Byte", "Null\x00Byte", "NullByte"},
		{"Bell", "Ding\x07", "Ding"},
		{"Surrounding Space", "  https://shop.example  \n", "https://shop.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, f := range []domain.Field{requiredField, optionalField} {
				got, err := Sanitize(f, tt.input)
				require.NoError(t, err)
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestSanitize_EnvOverride(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "10")

	_, err := Sanitize(requiredField, "12345678901")
	assert.ErrorIs(t, err, ErrInputTooLarge)

	got, err := Sanitize(optionalField, "12345678901")
	require.NoError(t, err)
	assert.Equal(t, "1234567890", got)

	_, err = Sanitize(requiredField, "12345")
	assert.NoError(t, err)
}

func TestSanitize_InvalidUTF8(t *testing.T) {
	_, err := Sanitize(requiredField, "\xbd\xb2\x3d\xbc\x20\xe2\x8c\x98")
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}
