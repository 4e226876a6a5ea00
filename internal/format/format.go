// Package format renders rich text for the different chat services
package format

import "strings"

// Formatter decorates text for one output medium
type Formatter interface {
	Codeblock(text, syntax string) string
	Bold(text string) string
	Italic(text string) string
	Underline(text string) string
	// NoEmbedLink stops the service from unfurling a URL preview
	NoEmbedLink(url string) string
}

// Plain returns text unchanged. Used by the console.
type Plain struct{}

func (Plain) Codeblock(text, _ string) string { return text }
func (Plain) Bold(text string) string         { return text }
func (Plain) Italic(text string) string       { return text }
func (Plain) Underline(text string) string    { return text }
func (Plain) NoEmbedLink(url string) string   { return url }

// Markdown emits Discord-flavoured markdown. The Telegram transport runs
// its output through ToMarkdownV2 before sending.
type Markdown struct{}

func (Markdown) Codeblock(text, syntax string) string {
	return strings.Trim("```"+syntax+"\n"+text+"```", "\n")
}

func (Markdown) Bold(text string) string      { return "**" + text + "**" }
func (Markdown) Italic(text string) string    { return "*" + text + "*" }
func (Markdown) Underline(text string) string { return "__" + text + "__" }
func (Markdown) NoEmbedLink(url string) string {
	return "<" + url + ">"
}

// ByName returns the formatter registered under name, falling back to Plain
func ByName(name string) Formatter {
	switch strings.ToLower(name) {
	case "markdown", "discord":
		return Markdown{}
	default:
		return Plain{}
	}
}
