package commands

import (
	"strings"

	"github.com/google/shlex"
)

// Tokenize splits text into arguments using shell-style quoting, so
// `ship "kit kat" fox` yields three tokens. If the text cannot be lexed
// (an unterminated quote, a trailing backslash) it falls back to plain
// whitespace splitting. It never fails.
func Tokenize(text string) []string {
	tokens, err := shlex.Split(escapeComments(text))
	if err != nil {
		return strings.Fields(text)
	}
	if tokens == nil {
		return []string{}
	}
	return tokens
}

// escapeComments backslash-escapes any '#' that starts a bare word. shlex
// treats those as the start of a comment, which would silently drop
// hashtags and everything after them.
func escapeComments(text string) string {
	if !strings.Contains(text, "#") {
		return text
	}

	var (
		b        strings.Builder
		inSingle bool
		inDouble bool
		escaped  bool
		atStart  = true
	)
	b.Grow(len(text) + 4)

	for _, r := range text {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && !inSingle:
			escaped = true
		case r == '\'' && !inDouble:
			inSingle = !inSingle
		case r == '"' && !inSingle:
			inDouble = !inDouble
		case r == '#' && atStart && !inSingle && !inDouble:
			b.WriteRune('\\')
		}
		b.WriteRune(r)
		atStart = !inSingle && !inDouble && !escaped && isSpace(r)
	}
	return b.String()
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}
