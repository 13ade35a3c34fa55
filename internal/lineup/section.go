package lineup

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mmr-tortoise/stack-lineup/internal/model"
)

// DefaultSectionTitle is the text that identifies the lineup section's
// "## " heading. The heading may carry decoration around it, e.g.
// "## 🏗️ Stack/Service Lineup".
const DefaultSectionTitle = "Stack/Service Lineup"

var (
	// ErrSectionNotFound is returned when the document has no "## " heading
	// containing the section title.
	ErrSectionNotFound = errors.New("lineup section not found")

	// ErrNoStackHeaders is returned when the section has no "### " headings.
	ErrNoStackHeaders = errors.New("no stack headers found")
)

var (
	sectionHeadingPattern = regexp.MustCompile(`^##[ \t]+(.*?)[ \t]*$`)
	stackHeaderPattern    = regexp.MustCompile(`^###[ \t]+(.+?)[ \t]*$`)
	sectionEndPattern     = regexp.MustCompile(`^#{1,2}(?:[ \t]|$)`)
)

// Inventory is what the document already declares about the lineup.
type Inventory struct {
	// Heading is the section's heading line as written, e.g.
	// "## 🏗️ Stack/Service Lineup". It is re-emitted unchanged.
	Heading string

	// Preamble is the prose between the heading and the first stack
	// header, trimmed. It is kept across regenerations.
	Preamble string

	// Headers lists the "### " subheadings in document order.
	Headers []model.HeaderEntry

	// Start and End delimit the section in the document: doc[Start:End].
	// End stops before the line break that precedes the next "#"/"##"
	// heading, or at the end of the document.
	Start, End int
}

// Keys returns the set of stack keys declared by the headers.
func (inv *Inventory) Keys() map[string]struct{} {
	keys := make(map[string]struct{}, len(inv.Headers))
	for _, h := range inv.Headers {
		keys[h.Key] = struct{}{}
	}
	return keys
}

// docLine is one line of the document with its byte offset.
type docLine struct {
	text  string
	start int
}

// splitLines splits doc into lines, keeping byte offsets. Lines do not
// include their trailing newline (or carriage return).
func splitLines(doc string) []docLine {
	var lines []docLine
	start := 0
	for start <= len(doc) {
		idx := strings.IndexByte(doc[start:], '\n')
		if idx < 0 {
			if start < len(doc) {
				lines = append(lines, docLine{text: strings.TrimSuffix(doc[start:], "\r"), start: start})
			}
			break
		}
		lines = append(lines, docLine{text: strings.TrimSuffix(doc[start:start+idx], "\r"), start: start})
		start += idx + 1
	}
	return lines
}

// lineEnding returns "\r\n" when doc uses Windows line endings and "\n"
// otherwise.
func lineEnding(doc string) string {
	if strings.Contains(doc, "\r\n") {
		return "\r\n"
	}
	return "\n"
}

// withLineEnding rewrites every line break in text to eol.
func withLineEnding(text, eol string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if eol == "\n" {
		return text
	}
	return strings.ReplaceAll(text, "\n", eol)
}

// isFence reports whether a line opens or closes a fenced code block.
func isFence(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	return strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")
}

// LocateSection finds the lineup section in doc.
//
// The section starts at the first "## " heading whose text contains title
// and ends before the next "# " or "## " heading (outside fenced code
// blocks), or at the end of the document. ok is false when no such heading
// exists.
func LocateSection(doc, title string) (start, end int, ok bool) {
	lines := splitLines(doc)
	inFence := false
	found := -1

	for i, line := range lines {
		if isFence(line.text) {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if found < 0 {
			if m := sectionHeadingPattern.FindStringSubmatch(line.text); m != nil && strings.Contains(m[1], title) {
				found = i
				start = line.start
			}
			continue
		}
		if sectionEndPattern.MatchString(line.text) {
			// Exclude the newline that separates the section from the
			// next heading.
			end = line.start - 1
			if end > start && doc[end-1] == '\r' {
				end--
			}
			return start, end, true
		}
	}

	if found < 0 {
		return 0, 0, false
	}
	return start, len(doc), true
}

// ParseInventory locates the lineup section and reads its stack headers.
//
// Both failure modes are configuration errors, not empty results: a
// document without the section, or a section without any "### " header,
// cannot be regenerated.
func ParseInventory(doc, title string, keys *StackKeyer) (*Inventory, error) {
	start, end, ok := LocateSection(doc, title)
	if !ok {
		return nil, fmt.Errorf("%w: no '## %s' heading in the document; add this section to define your stack structure",
			ErrSectionNotFound, title)
	}

	inv := &Inventory{Start: start, End: end}
	lines := splitLines(doc[start:end])

	inv.Heading = strings.TrimRight(lines[0].text, " \t")

	var preamble []string
	inFence := false
	for _, line := range lines[1:] {
		if isFence(line.text) {
			inFence = !inFence
		}
		if !inFence {
			if m := stackHeaderPattern.FindStringSubmatch(line.text); m != nil {
				display := strings.TrimSpace(m[1])
				inv.Headers = append(inv.Headers, model.HeaderEntry{
					DisplayName: display,
					Key:         keys.Key(display),
				})
				continue
			}
		}
		if len(inv.Headers) == 0 {
			preamble = append(preamble, line.text)
		}
	}

	if len(inv.Headers) == 0 {
		return nil, fmt.Errorf("%w: the '## %s' section has no '###' stack headers; add headers like '### 🧩 Root' to define your stacks",
			ErrNoStackHeaders, title)
	}

	inv.Preamble = strings.TrimSpace(strings.Join(preamble, "\n"))
	return inv, nil
}
