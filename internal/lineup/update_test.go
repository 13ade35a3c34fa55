package lineup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/stack-lineup/internal/compose"
)

// writeRepo creates a repository tree from a path→content map.
func writeRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func newTestUpdater(root string, dryRun bool) *Updater {
	keys := NewStackKeyer(DefaultSynonyms())
	return NewUpdater(Options{
		Root:     root,
		Document: "README.md",
		Layout:   compose.DefaultLayout(),
		DryRun:   dryRun,
	}, compose.NewParser("", nil), keys, NewRenderer("", ""), nil)
}

const whoamiCompose = `services:
  whoami:
    image: traefik/whoami
    labels:
      homepage.description: "Identity service"
`

func TestUpdater_Run_Minimal(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"compose.yaml": whoamiCompose,
		"README.md":    "# Home\n\n## Stack/Service Lineup\n\n### 🧩 Root\n\nstale\n",
	})

	result, err := newTestUpdater(root, false).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Changed)
	assert.True(t, result.Written)
	assert.Equal(t, 1, result.ServiceCount())
	assert.Equal(t,
		"# Home\n\n## Stack/Service Lineup\n\n### 🧩 Root\n\n**Whoami** - Identity service\n",
		readFile(t, filepath.Join(root, "README.md")))
}

func mediaRepo(t *testing.T) string {
	t.Helper()
	return writeRepo(t, map[string]string{
		"compose.yaml": whoamiCompose,
		"stacks/media/compose.yaml": `services:
  plex:
    image: plexinc/pms-docker
    labels:
      - homepage.description=Stream your library
      - traefik.http.routers.plex.rule=Host(` + "`plex.${DOMAIN}`" + `)
  # Movie manager
  radarr:
    image: linuxserver/radarr
`,
		"README.md": `# Home

Intro.

## 🏗️ Stack/Service Lineup

Deployed with Dockge.

### 🧩 Root

old

### 🎬 Media

[Plex](https://plex.example.com) is great.

## License

MIT
`,
	})
}

func TestUpdater_Run_PreservesSurroundingsAndLinks(t *testing.T) {
	root := mediaRepo(t)

	_, err := newTestUpdater(root, false).Run(context.Background())
	require.NoError(t, err)

	want := `# Home

Intro.

## 🏗️ Stack/Service Lineup

Deployed with Dockge.

### 🧩 Root

**Whoami** - Identity service

### 🎬 Media

[**Plex**](https://plex.example.com) - Stream your library • **Radarr** - Movie manager

## License

MIT
`
	assert.Equal(t, want, readFile(t, filepath.Join(root, "README.md")))
}

// TestUpdater_Run_Idempotent checks that a second run leaves the document
// byte-identical and does not write.
func TestUpdater_Run_Idempotent(t *testing.T) {
	root := mediaRepo(t)
	path := filepath.Join(root, "README.md")

	_, err := newTestUpdater(root, false).Run(context.Background())
	require.NoError(t, err)
	first := readFile(t, path)

	result, err := newTestUpdater(root, false).Run(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.False(t, result.Written)
	assert.Equal(t, first, readFile(t, path))
}

// TestUpdater_Run_CRLF checks that a Windows-style README keeps CRLF line
// endings in the regenerated section and stays stable on a second run.
func TestUpdater_Run_CRLF(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"compose.yaml": whoamiCompose,
		"README.md": "# Home\r\n\r\n## Stack/Service Lineup\r\n\r\nIntro\r\n\r\n" +
			"### 🧩 Root\r\n\r\nstale\r\n\r\n## License\r\n\r\nMIT\r\n",
	})
	path := filepath.Join(root, "README.md")

	_, err := newTestUpdater(root, false).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t,
		"# Home\r\n\r\n## Stack/Service Lineup\r\n\r\nIntro\r\n\r\n"+
			"### 🧩 Root\r\n\r\n**Whoami** - Identity service\r\n\r\n## License\r\n\r\nMIT\r\n",
		readFile(t, path))

	result, err := newTestUpdater(root, false).Run(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Changed)
}

func TestUpdater_Run_DryRun(t *testing.T) {
	root := mediaRepo(t)
	path := filepath.Join(root, "README.md")
	before := readFile(t, path)

	result, err := newTestUpdater(root, true).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Changed)
	assert.False(t, result.Written)
	assert.Contains(t, result.Diff, "+**Whoami** - Identity service")
	assert.Contains(t, result.Diff, "-old")
	assert.Equal(t, before, readFile(t, path))
}

// TestUpdater_Run_MismatchDoesNotWrite checks that a failed consistency
// check leaves the README untouched and reports both sides.
func TestUpdater_Run_MismatchDoesNotWrite(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"compose.yaml":             whoamiCompose,
		"stacks/core/compose.yaml": "services:\n  traefik:\n    image: traefik\n",
		"README.md":                "## Stack/Service Lineup\n\n### Root\n\n### Media\n",
	})
	path := filepath.Join(root, "README.md")
	before := readFile(t, path)

	result, err := newTestUpdater(root, false).Run(context.Background())
	require.Error(t, err)

	var mismatch *MismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, []string{"media"}, mismatch.DocumentOnly)
	assert.Equal(t, []string{"core"}, mismatch.DiskOnly)

	require.NotNil(t, result)
	assert.False(t, result.Written)
	assert.Equal(t, before, readFile(t, path))
}

func TestUpdater_Run_DocumentNotFound(t *testing.T) {
	root := writeRepo(t, map[string]string{"compose.yaml": whoamiCompose})

	_, err := newTestUpdater(root, false).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDocumentNotFound))
}

func TestUpdater_Run_SectionMissing(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"compose.yaml": whoamiCompose,
		"README.md":    "# Home\n",
	})

	_, err := newTestUpdater(root, false).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSectionNotFound))
	assert.Equal(t, "# Home\n", readFile(t, filepath.Join(root, "README.md")))
}

func TestUpdater_Run_Cancelled(t *testing.T) {
	root := mediaRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestUpdater(root, false).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUpdater_Check(t *testing.T) {
	root := mediaRepo(t)
	before := readFile(t, filepath.Join(root, "README.md"))

	result, err := newTestUpdater(root, false).Check(context.Background())
	require.NoError(t, err)
	assert.Len(t, result.Headers, 2)
	assert.Equal(t, 3, result.ServiceCount())
	assert.Equal(t, before, readFile(t, filepath.Join(root, "README.md")))
}

func TestUpdater_Preview(t *testing.T) {
	root := mediaRepo(t)
	before := readFile(t, filepath.Join(root, "README.md"))

	section, err := newTestUpdater(root, false).Preview(context.Background())
	require.NoError(t, err)
	assert.Contains(t, section, "[**Plex**](https://plex.example.com)")
	assert.Equal(t, before, readFile(t, filepath.Join(root, "README.md")))
}

func TestUpdater_ExpectedComposePath(t *testing.T) {
	u := newTestUpdater("/repo", false)
	assert.Equal(t, filepath.Join("/repo", "compose.yaml"), u.ExpectedComposePath("root"))
	assert.Equal(t, filepath.Join("/repo", "stacks", "media", "compose.yaml"), u.ExpectedComposePath("media"))
	assert.Equal(t, filepath.Join("/repo", "README.md"), u.DocumentPath())
}
