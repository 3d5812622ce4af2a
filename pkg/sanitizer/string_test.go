package sanitizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trim spaces", input: "  Ana Ruiz  ", want: "Ana Ruiz"},
		{name: "multiple spaces between words", input: "Ana    Ruiz", want: "Ana Ruiz"},
		{name: "tabs and newlines", input: "Ana\t\nRuiz", want: "Ana Ruiz"},
		{name: "empty string", input: "", want: ""},
		{name: "only whitespace", input: "   \t\n  ", want: ""},
		{name: "case is kept", input: "ana", want: "ana"},
		{name: "accents and symbols", input: " José & Co™ ", want: "José & Co™"},
		{name: "non-breaking space", input: "Ana\u00a0\u00a0Ruiz", want: "Ana Ruiz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeName(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizeName(got), "not idempotent")
		})
	}
}
