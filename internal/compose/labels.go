package compose

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Label key constants for the compose labels the parser understands.
const (
	// LabelDescription is the homepage dashboard label that carries a
	// human-readable description of the service.
	LabelDescription = "homepage.description"

	// LabelRouterMarker is the key fragment shared by every traefik HTTP
	// router label, e.g. "traefik.http.routers.plex.rule".
	LabelRouterMarker = "traefik.http.routers"

	// LabelRuleSuffix marks the router label holding the routing rule.
	LabelRuleSuffix = ".rule"
)

// Label is a single compose label after normalization.
type Label struct {
	Key   string
	Value string
}

// LabelSet holds a service's labels in file order.
//
// Compose allows two encodings for the labels field:
//
//	labels:                              labels:
//	  homepage.description: Media server   - homepage.description=Media server
//	  traefik.enable: "true"               - "traefik.enable: true"
//
// LabelSet implements yaml.Unmarshaler so both shapes are resolved once,
// at parse time, into the same ordered list. Callers never branch on the
// original encoding.
type LabelSet []Label

// UnmarshalYAML decodes either a mapping or a sequence of "key=value" /
// "key:value" strings. A null labels field yields an empty set.
func (l *LabelSet) UnmarshalYAML(value *yaml.Node) error {
	node := resolveAlias(value)

	switch node.Kind {
	case yaml.MappingNode:
		*l = mappingLabels(node)
		return nil

	case yaml.SequenceNode:
		labels := make(LabelSet, 0, len(node.Content))
		for _, item := range node.Content {
			item = resolveAlias(item)
			if item.Kind != yaml.ScalarNode {
				continue
			}
			labels = append(labels, ParseLabelString(item.Value))
		}
		*l = labels
		return nil

	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" || node.Value == "" {
			*l = LabelSet{}
			return nil
		}
	}

	return fmt.Errorf("line %d: labels must be a mapping or a list of strings", value.Line)
}

// mappingLabels collects the scalar pairs of a labels mapping in file
// order. Merge keys ("<<: *anchor" or "<<: [*a, *b]") are expanded in
// place; explicit keys win over merged ones, and within a merge sequence
// the earlier mapping wins.
func mappingLabels(node *yaml.Node) LabelSet {
	explicit := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		if key := resolveAlias(node.Content[i]); !isMergeKey(key) {
			explicit[key.Value] = true
		}
	}

	labels := make(LabelSet, 0, len(node.Content)/2)
	seen := make(map[string]bool, len(node.Content)/2)
	add := func(label Label) {
		if seen[label.Key] {
			return
		}
		seen[label.Key] = true
		labels = append(labels, label)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := resolveAlias(node.Content[i])
		val := resolveAlias(node.Content[i+1])

		if isMergeKey(key) {
			for _, src := range mergeSources(val) {
				for _, label := range mappingLabels(src) {
					if !explicit[label.Key] {
						add(label)
					}
				}
			}
			continue
		}

		if val.Kind != yaml.ScalarNode {
			// Nested structures are not valid label values; ignore them
			// instead of failing the whole file.
			continue
		}
		add(Label{Key: key.Value, Value: scalarValue(val)})
	}
	return labels
}

// isMergeKey reports whether a mapping key is the YAML merge key "<<".
func isMergeKey(key *yaml.Node) bool {
	return key.Kind == yaml.ScalarNode && key.ShortTag() == "!!merge"
}

// mergeSources returns the mappings a merge key pulls in: the value itself
// or each mapping of a sequence value.
func mergeSources(val *yaml.Node) []*yaml.Node {
	switch val.Kind {
	case yaml.MappingNode:
		return []*yaml.Node{val}
	case yaml.SequenceNode:
		var out []*yaml.Node
		for _, item := range val.Content {
			if item = resolveAlias(item); item.Kind == yaml.MappingNode {
				out = append(out, item)
			}
		}
		return out
	}
	return nil
}

// ParseLabelString splits a list-encoded label into key and value.
// The key ends at the first "=" or ":"; whitespace around both parts is
// trimmed. A string with no separator becomes a key with an empty value.
func ParseLabelString(s string) Label {
	idx := strings.IndexAny(s, "=:")
	if idx < 0 {
		return Label{Key: strings.TrimSpace(s)}
	}
	return Label{
		Key:   strings.TrimSpace(s[:idx]),
		Value: strings.TrimSpace(s[idx+1:]),
	}
}

// Get returns the value of the first label with the given key.
func (l LabelSet) Get(key string) (string, bool) {
	for _, label := range l {
		if label.Key == key {
			return label.Value, true
		}
	}
	return "", false
}

// RouterRules returns the values of all traefik router rule labels,
// in file order.
func (l LabelSet) RouterRules() []string {
	var rules []string
	for _, label := range l {
		if strings.Contains(label.Key, LabelRouterMarker) && strings.Contains(label.Key, LabelRuleSuffix) {
			rules = append(rules, label.Value)
		}
	}
	return rules
}

// resolveAlias follows YAML aliases (*anchor) to the anchored node.
func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func scalarValue(n *yaml.Node) string {
	if n.ShortTag() == "!!null" {
		return ""
	}
	return n.Value
}
