package accounting_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fisbench/internal/accounting"
	"fisbench/internal/domain"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"commentary around", "İşte sonuç: {\"a\":{\"b\":2}} umarım yardımcı olur", `{"a":{"b":2}}`},
		{"fence with prose", "Yanıt:\n```json\n{\"a\":1}\n```\nBitti.", `{"a":1}`},
		{"no object", "  nothing here  ", "nothing here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, accounting.ExtractJSON(tt.in))
		})
	}
}

func TestDecodeObject(t *testing.T) {
	out, err := accounting.DecodeObject("```json\n{\"vkn\": \"1234567890\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "1234567890", out["vkn"])
}

func TestDecodeObject_Malformed(t *testing.T) {
	for _, in := range []string{"not json", "{\"a\": }", "null", "[1,2]"} {
		_, err := accounting.DecodeObject(in)
		assert.ErrorIs(t, err, domain.ErrMalformedLLMOutput, in)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", accounting.Truncate("abc", 5))
	assert.Equal(t, "ab...", accounting.Truncate("abcdef", 2))

	cut := accounting.Truncate("ğğğ", 3)
	assert.Equal(t, "ğ...", cut)
	assert.True(t, strings.HasSuffix(cut, "..."))
}
