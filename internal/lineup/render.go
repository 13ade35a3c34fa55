package lineup

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mmr-tortoise/stack-lineup/internal/model"
)

const (
	// DefaultSeparator joins the entries of one stack into a paragraph.
	DefaultSeparator = " • "

	// DefaultEmptyPlaceholder is rendered for a stack with no services.
	DefaultEmptyPlaceholder = "_No services defined_"
)

// Renderer produces the replacement text of the lineup section.
// Its output depends only on its inputs: the same inventory and stacks
// always give byte-identical text.
type Renderer struct {
	Separator        string
	EmptyPlaceholder string
}

// NewRenderer returns a Renderer; empty arguments fall back to the defaults.
func NewRenderer(separator, emptyPlaceholder string) *Renderer {
	if separator == "" {
		separator = DefaultSeparator
	}
	if emptyPlaceholder == "" {
		emptyPlaceholder = DefaultEmptyPlaceholder
	}
	return &Renderer{Separator: separator, EmptyPlaceholder: emptyPlaceholder}
}

// Render builds the section: the original heading, the kept preamble, then
// one "### " subsection per header in document order.
func (r *Renderer) Render(inv *Inventory, stacks map[string][]model.Service) string {
	var b strings.Builder

	b.WriteString(inv.Heading)
	b.WriteString("\n\n")

	if inv.Preamble != "" {
		b.WriteString(inv.Preamble)
		b.WriteString("\n\n")
	}

	for i, h := range inv.Headers {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("### ")
		b.WriteString(h.DisplayName)
		b.WriteString("\n\n")
		b.WriteString(r.Paragraph(stacks[h.Key]))
		b.WriteString("\n")
	}

	return b.String()
}

// Paragraph renders one stack's services as a single line:
//
//	**Plex** - Stream your library • **Radarr**
//
// A paragraph rather than a table keeps the README compact.
func (r *Renderer) Paragraph(services []model.Service) string {
	if len(services) == 0 {
		return r.EmptyPlaceholder
	}

	entries := make([]string, 0, len(services))
	for _, s := range services {
		entry := "**" + Capitalize(s.Name) + "**"
		if s.Description != "" {
			entry += " - " + s.Description
		}
		entries = append(entries, entry)
	}
	return strings.Join(entries, r.Separator)
}

// Capitalize upper-cases the first character and lower-cases the rest:
// "whoAmI" → "Whoami".
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeRuneInString(s)
	return cases.Upper(language.Und).String(s[:size]) + cases.Lower(language.Und).String(s[size:])
}

// TitleCase upper-cases the first letter of every word: "home assistant"
// → "Home Assistant".
func TitleCase(s string) string {
	return cases.Title(language.Und).String(s)
}
