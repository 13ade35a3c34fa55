// parser.go extracts service metadata from a single compose file.
//
// Two views of the file are used together:
//   - the YAML tree (yaml.v3 nodes) for the services mapping and labels
//   - the raw text for comments, which YAML decoding throws away
//
// The text heuristics live in small pure functions (IsCommentedOut,
// CommentDescription, ExtractDescription, ExtractURL) so they can be tested
// against literal fixture strings.
package compose

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/stack-lineup/internal/model"
)

// DefaultDomainPlaceholder replaces ${DOMAIN...} tokens in routing rules.
const DefaultDomainPlaceholder = "DOMAIN"

var (
	// hostRulePattern captures the host inside Host(`...`).
	hostRulePattern = regexp.MustCompile("Host\\(`([^`]+)`\\)")

	// domainVarPattern matches ${DOMAIN}, ${DOMAIN:?err}, ${DOMAIN_NAME} etc.
	domainVarPattern = regexp.MustCompile(`\$\{DOMAIN[^}]*\}`)

	// bulletPrefixPattern strips "- " or "* " from the start of a comment.
	bulletPrefixPattern = regexp.MustCompile(`^[-*]\s*`)
)

// serviceDef is the subset of a compose service definition the parser reads.
type serviceDef struct {
	Labels LabelSet `yaml:"labels"`
}

// Parser turns compose files into service lists.
type Parser struct {
	// DomainPlaceholder is substituted for ${DOMAIN...} in router rules.
	DomainPlaceholder string

	logger *zap.Logger
}

// NewParser creates a Parser. An empty domain falls back to
// DefaultDomainPlaceholder and a nil logger to a no-op logger.
func NewParser(domain string, logger *zap.Logger) *Parser {
	if domain == "" {
		domain = DefaultDomainPlaceholder
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{DomainPlaceholder: domain, logger: logger}
}

// ParseFile reads and parses the compose file at path.
//
// It never fails the run: a missing file yields no services silently, and
// a file that cannot be read or parsed yields no services with a warning.
func (p *Parser) ParseFile(path string) []model.Service {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		p.logger.Warn("failed to read compose file", zap.String("path", path), zap.Error(err))
		return nil
	}

	services, err := p.Parse(raw)
	if err != nil {
		p.logger.Warn("failed to parse compose file", zap.String("path", path), zap.Error(err))
		return nil
	}

	p.logger.Debug("parsed compose file", zap.String("path", path), zap.Int("services", len(services)))
	return services
}

// Parse extracts services from raw compose file contents. The result is
// sorted by name, case-insensitively. A document without a services
// mapping yields an empty result and no error.
func (p *Parser) Parse(raw []byte) ([]model.Service, error) {
	// Comment matching is line based; normalize Windows line endings first.
	text := strings.ReplaceAll(string(raw), "\r\n", "\n")

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	// An empty file decodes to a zero node with no content.
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil
	}

	root := resolveAlias(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, nil
	}

	servicesNode := mappingValue(root, "services")
	if servicesNode == nil || servicesNode.Kind != yaml.MappingNode {
		return nil, nil
	}

	var services []model.Service
	for i := 0; i+1 < len(servicesNode.Content); i += 2 {
		name := servicesNode.Content[i].Value
		defNode := resolveAlias(servicesNode.Content[i+1])

		// Non-mapping entries (null, scalars, lists) are not services.
		if defNode.Kind != yaml.MappingNode {
			continue
		}

		if IsCommentedOut(text, name) {
			p.logger.Debug("skipping commented-out service", zap.String("service", name))
			continue
		}

		var def serviceDef
		if err := defNode.Decode(&def); err != nil {
			// Bad labels only cost the label-based metadata; the service
			// itself is still listed.
			p.logger.Warn("ignoring labels of service", zap.String("service", name), zap.Error(err))
			def = serviceDef{}
		}

		services = append(services, model.Service{
			Name:        name,
			Description: ExtractDescription(def.Labels, text, name),
			URL:         ExtractURL(def.Labels, p.DomainPlaceholder),
		})
	}

	model.SortServices(services)
	return services, nil
}

// IsCommentedOut reports whether raw contains a line made only of a
// comment marker, the service name and a colon, e.g. "  # whoami:".
// Operators use this to disable a service without deleting it.
func IsCommentedOut(raw, name string) bool {
	pattern := regexp.MustCompile(`(?m)^[ \t]*#[ \t]*` + regexp.QuoteMeta(name) + `:[ \t]*$`)
	return pattern.MatchString(raw)
}

// CommentDescription returns the single-line comment directly above the
// service's declaration line, or "" when there is none.
//
// A leading "-" or "*" bullet is stripped. Comments starting with "!" are
// directives, not descriptions, and are rejected.
func CommentDescription(raw, name string) string {
	pattern := regexp.MustCompile(`(?m)^[ \t]*#[ \t]*(.+?)[ \t]*\n[ \t]*` + regexp.QuoteMeta(name) + `:`)
	m := pattern.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}

	comment := strings.TrimSpace(bulletPrefixPattern.ReplaceAllString(strings.TrimSpace(m[1]), ""))
	if comment == "" || strings.HasPrefix(comment, "!") {
		return ""
	}
	return comment
}

// ExtractDescription applies the description priority: the
// homepage.description label, then the preceding comment, then "".
func ExtractDescription(labels LabelSet, raw, name string) string {
	if desc, ok := labels.Get(LabelDescription); ok {
		if desc = strings.TrimSpace(desc); desc != "" {
			return desc
		}
	}
	return CommentDescription(raw, name)
}

// ExtractURL returns "https://<host>" for the first traefik router rule
// with a Host(`...`) matcher, or "" if there is none. ${DOMAIN...} tokens
// in the host are replaced with domain.
func ExtractURL(labels LabelSet, domain string) string {
	for _, rule := range labels.RouterRules() {
		m := hostRulePattern.FindStringSubmatch(rule)
		if m == nil {
			continue
		}
		host := domainVarPattern.ReplaceAllLiteralString(m[1], domain)
		return "https://" + host
	}
	return ""
}

// mappingValue returns the value node for key in a mapping node.
func mappingValue(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return resolveAlias(mapping.Content[i+1])
		}
	}
	return nil
}
