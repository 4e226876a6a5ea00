package format

import (
	"strings"
	"testing"
)

func TestToMarkdownV2(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		contains    []string
		notContains []string
	}{
		{
			name:     "plain text with special chars",
			input:    "Hello! How are you?",
			contains: []string{"Hello\\!", "How are you?"}, // ? is not special in MarkdownV2
		},
		{
			name:        "bold text",
			input:       "This is **bold** text",
			contains:    []string{"*bold*"},
			notContains: []string{"**"},
		},
		{
			name:     "italic text",
			input:    "This is *slanted* text",
			contains: []string{"_slanted_"},
		},
		{
			name:     "underline",
			input:    "This is __under__ text",
			contains: []string{"__under__"},
		},
		{
			name:     "inline code",
			input:    "Run `go build` to compile",
			contains: []string{"`go build`"},
		},
		{
			name:  "code block",
			input: "Example:\n```go\nfunc main() {}\n```",
			contains: []string{
				"```go",
				"func main() {}",
				"```",
			},
		},
		{
			name:     "link",
			input:    "See [docs](https://example.com)",
			contains: []string{"[docs]", "(https://example.com)"},
		},
		{
			name:     "special chars escaped",
			input:    "Use foo.bar and test-case",
			contains: []string{"foo\\.bar", "test\\-case"},
		},
		{
			name:        "strikethrough",
			input:       "This is ~~deleted~~ text",
			contains:    []string{"~deleted~"},
			notContains: []string{"~~"},
		},
		{
			name:        "code inside bold",
			input:       "**run `ls`**",
			contains:    []string{"*run `ls`*"},
			notContains: []string{"\x00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToMarkdownV2(tt.input)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("ToMarkdownV2(%q)\ngot:  %q\nmissing: %q", tt.input, got, want)
				}
			}
			for _, notWant := range tt.notContains {
				if strings.Contains(got, notWant) {
					t.Errorf("ToMarkdownV2(%q)\ngot:  %q\nshould not contain: %q", tt.input, got, notWant)
				}
			}
		})
	}
}

func TestEscapeMarkdownV2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello", "hello"},
		{"hello.world", "hello\\.world"},
		{"test!", "test\\!"},
		{"foo-bar", "foo\\-bar"},
		{"(parens)", "\\(parens\\)"},
		{"[brackets]", "\\[brackets\\]"},
		{"a_b*c", "a\\_b\\*c"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := EscapeMarkdownV2(tt.input)
			if got != tt.expected {
				t.Errorf("EscapeMarkdownV2(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFormatters(t *testing.T) {
	tests := []struct {
		name string
		f    Formatter
		want []string
	}{
		{"plain", Plain{}, []string{"x = 1", "hi", "hi", "hi", "https://go.dev"}},
		{"markdown", Markdown{}, []string{"```go\nx = 1```", "**hi**", "*hi*", "__hi__", "<https://go.dev>"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []string{
				tt.f.Codeblock("x = 1", "go"),
				tt.f.Bold("hi"),
				tt.f.Italic("hi"),
				tt.f.Underline("hi"),
				tt.f.NoEmbedLink("https://go.dev"),
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("%s[%d] = %q, want %q", tt.name, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestByName(t *testing.T) {
	if _, ok := ByName("Markdown").(Markdown); !ok {
		t.Error("ByName(Markdown) should return Markdown")
	}
	if _, ok := ByName("anything").(Plain); !ok {
		t.Error("ByName(anything) should fall back to Plain")
	}
}
