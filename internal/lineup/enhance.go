package lineup

import (
	"regexp"
	"strings"

	"github.com/mmr-tortoise/stack-lineup/internal/model"
)

// linkPattern matches a Markdown link: [label](url).
var linkPattern = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

// EnhancementKey normalizes a link label for comparison: lowercase with
// spaces, hyphens and underscores removed.
func EnhancementKey(label string) string {
	key := strings.ToLower(label)
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(key)
}

// stripBold removes a bold wrapper from a label: "**Plex**" → "Plex".
// Links written by a previous run have this shape.
func stripBold(label string) string {
	for _, marker := range []string{"**", "__"} {
		if len(label) > 2*len(marker) && strings.HasPrefix(label, marker) && strings.HasSuffix(label, marker) {
			return strings.TrimSpace(label[len(marker) : len(label)-len(marker)])
		}
	}
	return label
}

// ExtractEnhancements collects the hyperlinks in a previous version of
// the section. The result is ordered by first appearance; when the same
// normalized label appears twice the later link's label and URL win.
// Image links (![alt](src)) are ignored.
func ExtractEnhancements(text string) []model.Enhancement {
	var out []model.Enhancement
	index := make(map[string]int)

	for _, m := range linkPattern.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > 0 && text[m[0]-1] == '!' {
			continue
		}

		label := stripBold(strings.TrimSpace(text[m[2]:m[3]]))
		url := strings.TrimSpace(text[m[4]:m[5]])
		if label == "" {
			continue
		}

		e := model.Enhancement{Key: EnhancementKey(label), Label: label, URL: url}
		if i, ok := index[e.Key]; ok {
			out[i] = e
			continue
		}
		index[e.Key] = len(out)
		out = append(out, e)
	}

	return out
}

// labelVariants returns the spellings tried for a label, in order:
// exact, lowercase, capitalized and title case. Duplicates are dropped.
func labelVariants(label string) []string {
	candidates := []string{label, strings.ToLower(label), Capitalize(label), TitleCase(label)}

	seen := make(map[string]bool, len(candidates))
	variants := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if !seen[c] {
			seen[c] = true
			variants = append(variants, c)
		}
	}
	return variants
}

// PreserveEnhancements re-applies the links found in oldSection to
// newSection.
//
// For each link, the bold service name "**Label**" is searched in the new
// text (case-insensitively, trying each spelling variant). On the first
// variant found, every occurrence is rewritten to "[**Label**](url)".
// Occurrences inside an existing link are left as they are.
//
// This is a textual heuristic: a link survives as long as its label still
// matches a rendered service name.
func PreserveEnhancements(oldSection, newSection string) string {
	result := newSection

	for _, e := range ExtractEnhancements(oldSection) {
		for _, variant := range labelVariants(e.Label) {
			pattern := regexp.MustCompile(`(?i)\*\*` + regexp.QuoteMeta(variant) + `\*\*`)
			matches := pattern.FindAllStringIndex(result, -1)
			if len(matches) == 0 {
				continue
			}
			result = wrapMatches(result, matches, "[**"+e.Label+"**]("+e.URL+")")
			break
		}
	}

	return result
}

// wrapMatches replaces each match with replacement, skipping matches that
// fall inside an existing link, label or URL.
func wrapMatches(text string, matches [][]int, replacement string) string {
	links := linkPattern.FindAllStringIndex(text, -1)

	var b strings.Builder
	last := 0
	for _, m := range matches {
		if insideAny(m, links) {
			continue
		}
		b.WriteString(text[last:m[0]])
		b.WriteString(replacement)
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

// insideAny reports whether span lies within one of spans.
func insideAny(span []int, spans [][]int) bool {
	for _, s := range spans {
		if span[0] >= s[0] && span[1] <= s[1] {
			return true
		}
	}
	return false
}
