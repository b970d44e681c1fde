package assembler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/gallerygen/internal/config"
)

const demoScript = `"""
# Demo example

A small demonstration script.
"""

import math

####################################################################
# Narrative section
# explaining the next step.

print(math.pi)
`

const tinyScript = `"""
# Tiny example

Short intro.
"""
print("hi")
`

// writeFixture lays out an examples tree with one subgallery and returns
// a config pointing at it.
func writeFixture(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	src := filepath.Join(root, "examples")
	sub := filepath.Join(src, "advanced")
	require.NoError(t, os.MkdirAll(sub, 0o750))

	write := func(path, content string) {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write(filepath.Join(src, "README.md"), "# My Gallery\n\nGallery intro text.\n")
	write(filepath.Join(src, "plot_demo.py"), demoScript)
	write(filepath.Join(src, "plot_tiny.py"), tinyScript)
	write(filepath.Join(src, "helper.txt"), "not a script")
	write(filepath.Join(sub, "README.md"), "# Advanced\n\nHarder examples.\n")
	write(filepath.Join(sub, "plot_deep.py"), tinyScript)

	cfg := &config.Config{
		Galleries: []config.GallerySpec{{
			SrcDir:  src,
			DestDir: filepath.Join(root, "docs", "generated", "gallery"),
		}},
		Output: config.OutputConfig{
			SiteRoot:            filepath.Join(root, "docs"),
			DownloadAllExamples: true,
			TimesSortKey:        "-time",
		},
	}
	applyTestDefaults(cfg)
	return cfg
}

func applyTestDefaults(cfg *config.Config) {
	if cfg.Filenames.Pattern == "" {
		cfg.Filenames.Pattern = `\.py$`
	}
	if cfg.Ordering.WithinGallery == "" {
		cfg.Ordering.WithinGallery = "code-lines"
	}
	if cfg.Ordering.Subgalleries == "" {
		cfg.Ordering.Subgalleries = "file-name"
	}
	if cfg.Execution.RunPattern == "" {
		cfg.Execution.RunPattern = `^plot_`
	}
	if cfg.Output.TimesSortKey == "" {
		cfg.Output.TimesSortKey = "-time"
	}
}

func TestCollectBuildsGalleryTree(t *testing.T) {
	cfg := writeFixture(t)
	galleries, err := Collect(cfg)
	require.NoError(t, err)
	require.Len(t, galleries, 1)

	g := galleries[0]
	require.Equal(t, "My Gallery", g.Title)
	require.Contains(t, g.Intro, "Gallery intro text")
	require.Len(t, g.Scripts, 2)
	require.Len(t, g.Subgalleries, 1)
	require.Equal(t, "Advanced", g.Subgalleries[0].Title)
	require.Len(t, g.AllScripts(), 3)

	for _, s := range g.Scripts {
		require.NotEmpty(t, s.Title)
		require.NotEmpty(t, s.Digest)
	}
}

func TestCollectTitleOverride(t *testing.T) {
	cfg := writeFixture(t)
	cfg.Galleries[0].Title = "Curated Examples"

	galleries, err := Collect(cfg)
	require.NoError(t, err)
	require.Equal(t, "Curated Examples", galleries[0].Title)
}

func TestCollectDirWithoutReadmeUsesDirName(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "signal_processing")
	require.NoError(t, os.MkdirAll(src, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(src, "plot_a.py"), []byte(tinyScript), 0o644))

	cfg := &config.Config{
		Galleries: []config.GallerySpec{{SrcDir: src, DestDir: filepath.Join(root, "out")}},
	}
	applyTestDefaults(cfg)

	galleries, err := Collect(cfg)
	require.NoError(t, err)
	require.Equal(t, "Signal Processing", galleries[0].Title)
}

// A build without an executor renders every page, copy, notebook, index,
// times page and bundle, and commits checksums so the second build is a
// no-op.
func TestBuildWithoutExecutor(t *testing.T) {
	cfg := writeFixture(t)
	asm := New(cfg, nil, nil)

	report, err := asm.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Results, 3)

	g := report.Galleries[0]
	for _, s := range g.AllScripts() {
		require.FileExists(t, s.PageFile())
		require.FileExists(t, s.SourceCopyFile())
		require.FileExists(t, s.NotebookFile())
		require.FileExists(t, s.ChecksumFile())
	}
	require.FileExists(t, g.IndexFile())
	require.FileExists(t, g.TimesFile())
	require.FileExists(t, g.ZipFile(".py"))
	require.FileExists(t, g.ZipFile(".ipynb"))

	page, err := os.ReadFile(g.Scripts[0].PageFile())
	require.NoError(t, err)
	require.Contains(t, string(page), "```python")

	index, err := os.ReadFile(g.IndexFile())
	require.NoError(t, err)
	require.Contains(t, string(index), "Gallery intro text")
	require.Contains(t, string(index), "## Advanced")

	// Second build: everything is cached.
	report2, err := asm.Build(context.Background())
	require.NoError(t, err)
	for _, res := range report2.Results {
		require.True(t, res.Stale, "expected %s to be cached", res.Script.Stem())
	}
}

func TestBuildSortsScriptsByCodeLines(t *testing.T) {
	cfg := writeFixture(t)
	asm := New(cfg, nil, nil)

	report, err := asm.Build(context.Background())
	require.NoError(t, err)

	g := report.Galleries[0]
	// tiny has one code line, demo has two blocks worth.
	require.Equal(t, "plot_tiny", g.Scripts[0].Stem())
	require.Equal(t, "plot_demo", g.Scripts[1].Stem())
}

func TestBuildWritesNavFragment(t *testing.T) {
	cfg := writeFixture(t)
	cfg.Output.NavFile = filepath.Join(cfg.Output.SiteRoot, "gallery_nav.yml")
	asm := New(cfg, nil, nil)

	_, err := asm.Build(context.Background())
	require.NoError(t, err)
	require.FileExists(t, cfg.Output.NavFile)
}

func TestBuildWritesJUnitReport(t *testing.T) {
	cfg := writeFixture(t)
	cfg.Output.JUnitFile = filepath.Join(cfg.Output.SiteRoot, "junit.xml")
	asm := New(cfg, nil, nil)

	_, err := asm.Build(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(cfg.Output.JUnitFile)
	require.NoError(t, err)
	require.Contains(t, string(data), `<testsuite`)
	require.Contains(t, string(data), `plot_demo`)
}

func TestBuildExplicitOrderMissingFileFails(t *testing.T) {
	cfg := writeFixture(t)
	cfg.Ordering.WithinGallery = "explicit"
	cfg.Ordering.Explicit = []string{"plot_demo.py"} // plot_tiny.py unlisted
	asm := New(cfg, nil, nil)

	_, err := asm.Build(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "plot_tiny.py")
}
