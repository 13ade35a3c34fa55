package lineup

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mmr-tortoise/stack-lineup/internal/model"
)

var (
	// stackNameStrip removes everything that is not a letter, digit,
	// underscore, whitespace or hyphen (emoji, punctuation, variation
	// selectors).
	stackNameStrip = regexp.MustCompile(`[^\p{L}\p{N}_\s\p{Zs}-]`)

	stackNameSpace = regexp.MustCompile(`[\s\p{Zs}]+`)
)

// DefaultSynonyms returns the built-in synonym table. Entries are checked
// in order and the first match wins.
func DefaultSynonyms() []model.Synonym {
	return []model.Synonym{
		{Key: "root", Aliases: []string{"root"}, Contains: true},
		{Key: "app", Aliases: []string{"app", "apps", "application", "applications"}},
		{Key: "core", Aliases: []string{"core", "infrastructure", "infra"}},
		{Key: "data", Aliases: []string{"data", "database", "storage"}},
		{Key: "log", Aliases: []string{"log", "logs", "logging", "monitoring"}},
		{Key: "media", Aliases: []string{"media", "movies", "tv", "entertainment"}},
	}
}

// NormalizeStackName applies the textual part of stack-key derivation:
// strip decoration, trim, lowercase, and join words with hyphens.
//
//	"🎬 Media Apps" → "media-apps"
func NormalizeStackName(name string) string {
	s := stackNameStrip.ReplaceAllString(name, "")
	s = strings.ToLower(strings.TrimSpace(s))
	return stackNameSpace.ReplaceAllString(s, "-")
}

// StackKeyer derives stack keys. The same keyer must be used for directory
// names and README headings so that both sides compare equal.
type StackKeyer struct {
	synonyms []model.Synonym
}

// NewStackKeyer creates a keyer over the given synonym table. A nil table
// means no synonyms; pass DefaultSynonyms() for the built-in one.
func NewStackKeyer(synonyms []model.Synonym) *StackKeyer {
	return &StackKeyer{synonyms: synonyms}
}

// Key returns the stack key for a display name or directory name.
func (k *StackKeyer) Key(name string) string {
	key := NormalizeStackName(name)
	if canonical, ok := k.lookup(key); ok {
		return canonical
	}
	return key
}

func (k *StackKeyer) lookup(key string) (string, bool) {
	for _, syn := range k.synonyms {
		if key == syn.Key {
			return syn.Key, true
		}
		for _, alias := range syn.Aliases {
			if syn.Contains && alias != "" && strings.Contains(key, alias) {
				return syn.Key, true
			}
			if !syn.Contains && key == alias {
				return syn.Key, true
			}
		}
	}
	return "", false
}

// Validate checks that the synonym table keeps Key idempotent: every
// canonical key must already be normalized and must map to itself. Aliases
// are compared against normalized names, so they must be normalized too.
func (k *StackKeyer) Validate() error {
	for i, syn := range k.synonyms {
		if syn.Key == "" {
			return fmt.Errorf("synonym %d: key must not be empty", i)
		}
		if NormalizeStackName(syn.Key) != syn.Key {
			return fmt.Errorf("synonym %q: key is not normalized (want %q)", syn.Key, NormalizeStackName(syn.Key))
		}
		for _, alias := range syn.Aliases {
			if alias == "" {
				return fmt.Errorf("synonym %q: alias must not be empty", syn.Key)
			}
			if NormalizeStackName(alias) != alias {
				return fmt.Errorf("synonym %q: alias %q is not normalized (want %q)", syn.Key, alias, NormalizeStackName(alias))
			}
		}
		if got := k.Key(syn.Key); got != syn.Key {
			return fmt.Errorf("synonym %q: key maps to %q because of an earlier entry", syn.Key, got)
		}
	}
	return nil
}
