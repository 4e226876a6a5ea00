package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"quoted phrase", `ship "kit kat" fox`, []string{"ship", "kit kat", "fox"}},
		{"single quotes", `say 'hello world'`, []string{"say", "hello world"}},
		{"escaped space", `a\ b c`, []string{"a b", "c"}},
		{"extra whitespace", "  one   two\tthree ", []string{"one", "two", "three"}},
		{"empty", "", []string{}},
		{"only spaces", "    ", []string{}},
		{"hashtag kept", "tag #golang rocks", []string{"tag", "#golang", "rocks"}},
		{"hash mid word", "issue#12", []string{"issue#12"}},
		{"quoted hash", `"# not a comment"`, []string{"# not a comment"}},
		{"unterminated quote falls back", `say "hello world`, []string{"say", `"hello`, "world"}},
		{"trailing escape falls back", `path c:\`, []string{"path", `c:\`}},
		{"unicode", "ship café 東京", []string{"ship", "café", "東京"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.input))
		})
	}
}

func TestTokenize_NeverNil(t *testing.T) {
	assert.NotNil(t, Tokenize(""))
	assert.NotNil(t, Tokenize(`"`))
}
