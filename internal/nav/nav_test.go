package nav

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/gallerygen/internal/gallery"
)

func testGallery() *gallery.Gallery {
	g := &gallery.Gallery{
		SrcDir:  "examples",
		DestDir: "docs/generated/gallery",
		Title:   "Example Gallery",
	}
	g.Scripts = []*gallery.Script{
		{SrcFile: "examples/plot_first.py", Gallery: g, Title: "First plot"},
	}
	sub := &gallery.Gallery{
		SrcDir:  "examples/advanced",
		DestDir: "docs/generated/gallery/advanced",
		Title:   "Advanced",
		Root:    g,
	}
	sub.Scripts = []*gallery.Script{
		{SrcFile: "examples/advanced/plot_deep.py", Gallery: sub, Title: "Deep dive"},
	}
	g.Subgalleries = []*gallery.Gallery{sub}
	return g
}

func TestBuildNavShape(t *testing.T) {
	entries, err := Build([]*gallery.Gallery{testGallery()}, "docs")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := yaml.Marshal(entries)
	require.NoError(t, err)

	// The mkdocs nav shape: lists of one-entry maps.
	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)

	section, ok := decoded[0]["Example Gallery"].([]any)
	require.True(t, ok, "gallery entry should be a section")

	first, ok := section[0].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "generated/gallery/index.md", first["Example Gallery"])

	page, ok := section[1].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "generated/gallery/plot_first.md", page["First plot"])

	subSection, ok := section[2].(map[string]any)
	require.True(t, ok)
	require.Contains(t, subSection, "Advanced")
}

func TestWriteIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nav.yml")
	entries, err := Build([]*gallery.Gallery{testGallery()}, "docs")
	require.NoError(t, err)

	require.NoError(t, Write(path, entries))
	info1, err := os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, Write(path, entries))
	info2, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, info1.ModTime(), info2.ModTime())
}
