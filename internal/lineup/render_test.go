package lineup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmr-tortoise/stack-lineup/internal/model"
)

func TestCapitalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"whoami", "Whoami"},
		{"whoAmI", "Whoami"},
		{"PLEX", "Plex"},
		{"home-assistant", "Home-assistant"},
		{"élan", "Élan"},
		{"", ""},
		{"x", "X"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Capitalize(tt.in))
		})
	}
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Home Assistant", TitleCase("home assistant"))
	assert.Equal(t, "Plex", TitleCase("plex"))
}

func TestRenderer_Paragraph(t *testing.T) {
	r := NewRenderer("", "")

	t.Run("empty stack", func(t *testing.T) {
		assert.Equal(t, "_No services defined_", r.Paragraph(nil))
	})

	t.Run("with and without descriptions", func(t *testing.T) {
		got := r.Paragraph([]model.Service{
			{Name: "plex", Description: "Stream your library", URL: "https://plex.DOMAIN"},
			{Name: "radarr"},
		})
		assert.Equal(t, "**Plex** - Stream your library • **Radarr**", got)
	})

	t.Run("custom separator and placeholder", func(t *testing.T) {
		custom := NewRenderer(" | ", "_none_")
		assert.Equal(t, "_none_", custom.Paragraph([]model.Service{}))
		assert.Equal(t, "**A** | **B**", custom.Paragraph([]model.Service{{Name: "a"}, {Name: "b"}}))
	})
}

func TestRenderer_Render(t *testing.T) {
	inv := &Inventory{
		Heading:  "## 🏗️ Stack/Service Lineup",
		Preamble: "Intro text.",
		Headers: []model.HeaderEntry{
			{DisplayName: "🧩 Root", Key: "root"},
			{DisplayName: "🎬 Media", Key: "media"},
			{DisplayName: "📦 Spare", Key: "spare"},
		},
	}
	stacks := map[string][]model.Service{
		"root":  {{Name: "whoami", Description: "Identity service"}},
		"media": {{Name: "plex"}, {Name: "radarr", Description: "Movies"}},
	}

	want := "## 🏗️ Stack/Service Lineup\n\n" +
		"Intro text.\n\n" +
		"### 🧩 Root\n\n" +
		"**Whoami** - Identity service\n\n" +
		"### 🎬 Media\n\n" +
		"**Plex** • **Radarr** - Movies\n\n" +
		"### 📦 Spare\n\n" +
		"_No services defined_\n"

	r := NewRenderer("", "")
	got := r.Render(inv, stacks)
	assert.Equal(t, want, got)

	// Rendering is a pure function of its inputs.
	assert.Equal(t, got, r.Render(inv, stacks))
}

func TestRenderer_Render_NoPreamble(t *testing.T) {
	inv := &Inventory{
		Heading: "## Stack/Service Lineup",
		Headers: []model.HeaderEntry{{DisplayName: "Root", Key: "root"}},
	}

	got := NewRenderer("", "").Render(inv, map[string][]model.Service{
		"root": {{Name: "whoami"}},
	})
	assert.Equal(t, "## Stack/Service Lineup\n\n### Root\n\n**Whoami**\n", got)
}
