package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// decodeLabels decodes a YAML snippet of the form "labels: ..." into a LabelSet.
func decodeLabels(t *testing.T, src string) LabelSet {
	t.Helper()

	var holder struct {
		Labels LabelSet `yaml:"labels"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(src), &holder))
	return holder.Labels
}

// TestLabelSet_Mapping verifies the mapping encoding keeps file order and
// stringifies non-string scalars.
func TestLabelSet_Mapping(t *testing.T) {
	labels := decodeLabels(t, `
labels:
  homepage.description: Media server
  traefik.enable: true
  homepage.weight: 10
`)

	assert.Equal(t, LabelSet{
		{Key: "homepage.description", Value: "Media server"},
		{Key: "traefik.enable", Value: "true"},
		{Key: "homepage.weight", Value: "10"},
	}, labels)
}

// TestLabelSet_List verifies both "key=value" and "key:value" list items.
func TestLabelSet_List(t *testing.T) {
	labels := decodeLabels(t, `
labels:
  - "homepage.description: Media server"
  - traefik.http.routers.plex.rule=Host(`+"`plex.${DOMAIN}`"+`)
  - traefik.enable
`)

	require.Len(t, labels, 3)
	assert.Equal(t, Label{Key: "homepage.description", Value: "Media server"}, labels[0])
	assert.Equal(t, Label{Key: "traefik.http.routers.plex.rule", Value: "Host(`plex.${DOMAIN}`)"}, labels[1])
	assert.Equal(t, Label{Key: "traefik.enable", Value: ""}, labels[2])
}

// TestLabelSet_MergeKey verifies that "<<" entries are expanded and that
// explicit keys override merged ones.
func TestLabelSet_MergeKey(t *testing.T) {
	t.Run("single mapping", func(t *testing.T) {
		var holder struct {
			Labels LabelSet `yaml:"labels"`
		}
		src := `x-labels: &lbl
  homepage.description: Shared
  traefik.enable: true
labels:
  <<: *lbl
  traefik.enable: false
  homepage.group: Media
`
		require.NoError(t, yaml.Unmarshal([]byte(src), &holder))
		assert.Equal(t, LabelSet{
			{Key: "homepage.description", Value: "Shared"},
			{Key: "traefik.enable", Value: "false"},
			{Key: "homepage.group", Value: "Media"},
		}, holder.Labels)
	})

	t.Run("sequence of mappings", func(t *testing.T) {
		var holder struct {
			Labels LabelSet `yaml:"labels"`
		}
		src := `x-a: &a
  homepage.description: First
x-b: &b
  homepage.description: Second
  homepage.icon: plex.png
labels:
  <<: [*a, *b]
`
		require.NoError(t, yaml.Unmarshal([]byte(src), &holder))
		assert.Equal(t, LabelSet{
			{Key: "homepage.description", Value: "First"},
			{Key: "homepage.icon", Value: "plex.png"},
		}, holder.Labels)
	})
}

// TestLabelSet_Null checks that an empty labels field decodes to no labels.
func TestLabelSet_Null(t *testing.T) {
	labels := decodeLabels(t, "labels:\n")
	assert.Empty(t, labels)
}

// TestLabelSet_Invalid checks that a scalar labels value is rejected.
func TestLabelSet_Invalid(t *testing.T) {
	var holder struct {
		Labels LabelSet `yaml:"labels"`
	}
	err := yaml.Unmarshal([]byte("labels: just-a-string\n"), &holder)
	assert.Error(t, err)
}

func TestParseLabelString(t *testing.T) {
	tests := []struct {
		in   string
		want Label
	}{
		{"a=b", Label{Key: "a", Value: "b"}},
		{"a: b", Label{Key: "a", Value: "b"}},
		{"a=b:c", Label{Key: "a", Value: "b:c"}},
		{"a:b=c", Label{Key: "a", Value: "b=c"}},
		{"flag", Label{Key: "flag"}},
		{"  spaced = value  ", Label{Key: "spaced", Value: "value"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLabelString(tt.in))
		})
	}
}

func TestLabelSet_Get(t *testing.T) {
	labels := LabelSet{
		{Key: "a", Value: "first"},
		{Key: "a", Value: "second"},
	}

	v, ok := labels.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "first", v)

	_, ok = labels.Get("missing")
	assert.False(t, ok)
}

func TestLabelSet_RouterRules(t *testing.T) {
	labels := LabelSet{
		{Key: "traefik.enable", Value: "true"},
		{Key: "traefik.http.routers.app.rule", Value: "Host(`a`)"},
		{Key: "traefik.http.routers.app.entrypoints", Value: "websecure"},
		{Key: "traefik.http.routers.api.rule", Value: "Host(`b`)"},
	}

	assert.Equal(t, []string{"Host(`a`)", "Host(`b`)"}, labels.RouterRules())
}
