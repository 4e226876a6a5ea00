package format

import (
	"fmt"
	"regexp"
	"strings"
)

// MarkdownV2 special characters that need escaping
const markdownV2SpecialChars = `_*[]()~` + "`" + `>#+-=|{}.!`

// EscapeMarkdownV2 escapes special characters for Telegram MarkdownV2
func EscapeMarkdownV2(text string) string {
	var result strings.Builder
	for _, r := range text {
		if strings.ContainsRune(markdownV2SpecialChars, r) {
			result.WriteRune('\\')
		}
		result.WriteRune(r)
	}
	return result.String()
}

// escapeCode escapes characters inside inline code and code blocks (only ` and \)
func escapeCode(text string) string {
	text = strings.ReplaceAll(text, "\\", "\\\\")
	text = strings.ReplaceAll(text, "`", "\\`")
	return text
}

// Regex patterns for markdown elements
var (
	codeBlockRegex     = regexp.MustCompile("(?s)```([a-zA-Z0-9_+-]*)\\n?(.*?)```")
	inlineCodeRegex    = regexp.MustCompile("`([^`]+)`")
	linkRegex          = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	boldRegex          = regexp.MustCompile(`\*\*(.+?)\*\*`)
	underlineRegex     = regexp.MustCompile(`__(.+?)__`)
	italicRegex        = regexp.MustCompile(`\*([^*\n]+)\*`)
	strikethroughRegex = regexp.MustCompile(`~~(.+?)~~`)
)

// converter swaps protected elements for placeholder keys so the final
// escaping pass leaves them alone
type converter struct {
	keys   []string
	values []string
}

func (c *converter) protect(text string, re *regexp.Regexp, kind string, render func(parts []string) string) string {
	return re.ReplaceAllStringFunc(text, func(match string) string {
		key := fmt.Sprintf("\x00%s%d\x00", kind, len(c.keys))

		value := EscapeMarkdownV2(match)
		if parts := re.FindStringSubmatch(match); parts != nil {
			value = render(parts)
		}
		c.keys = append(c.keys, key)
		c.values = append(c.values, value)
		return key
	})
}

// ToMarkdownV2 converts standard markdown to Telegram MarkdownV2 format
func ToMarkdownV2(text string) string {
	c := &converter{}

	// Code first so nothing inside it is treated as markup
	text = c.protect(text, codeBlockRegex, "CODEBLOCK", func(parts []string) string {
		if parts[1] != "" {
			return fmt.Sprintf("```%s\n%s```", parts[1], escapeCode(parts[2]))
		}
		return fmt.Sprintf("```\n%s```", escapeCode(parts[2]))
	})
	text = c.protect(text, inlineCodeRegex, "INLINECODE", func(parts []string) string {
		return "`" + escapeCode(parts[1]) + "`"
	})

	// URLs in links need special escaping: only ) and \
	text = c.protect(text, linkRegex, "LINK", func(parts []string) string {
		url := strings.ReplaceAll(parts[2], "\\", "\\\\")
		url = strings.ReplaceAll(url, ")", "\\)")
		return fmt.Sprintf("[%s](%s)", EscapeMarkdownV2(parts[1]), url)
	})

	text = c.protect(text, boldRegex, "BOLD", func(parts []string) string {
		return "*" + EscapeMarkdownV2(parts[1]) + "*"
	})
	text = c.protect(text, underlineRegex, "UNDERLINE", func(parts []string) string {
		return "__" + EscapeMarkdownV2(parts[1]) + "__"
	})
	text = c.protect(text, italicRegex, "ITALIC", func(parts []string) string {
		return "_" + EscapeMarkdownV2(parts[1]) + "_"
	})
	text = c.protect(text, strikethroughRegex, "STRIKE", func(parts []string) string {
		return "~" + EscapeMarkdownV2(parts[1]) + "~"
	})

	text = EscapeMarkdownV2(text)

	// Keys contain no special characters, so they survive escaping. Later
	// elements may wrap earlier ones, so restore newest first.
	for i := len(c.keys) - 1; i >= 0; i-- {
		text = strings.ReplaceAll(text, c.keys[i], c.values[i])
	}

	return strings.TrimSpace(text)
}
