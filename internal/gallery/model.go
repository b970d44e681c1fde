// Package gallery holds the data model shared across the generation
// pipeline: galleries, scripts, blocks and run results, plus the ordering
// policies applied when assembling an index.
package gallery

import (
	"path/filepath"
	"strings"
	"time"
)

// BlockKind tags one contiguous unit of a script as code or narrative text.
type BlockKind string

const (
	BlockCode BlockKind = "code"
	BlockText BlockKind = "text"
)

// Block is one segment of a source script. Content is the raw segment text
// (comment prefixes already stripped for text blocks) and Line is the
// 1-based source line the segment starts at. Blocks are created by the
// splitter and never mutated afterwards.
type Block struct {
	Kind    BlockKind
	Content string
	Line    int
}

// Script is a single example source file after splitting. Identity is the
// source path plus the content digest; a changed file is a new version.
type Script struct {
	// SrcFile is the absolute path of the example source file.
	SrcFile string
	// Gallery is the owning (sub)gallery.
	Gallery *Gallery

	Title      string
	Intro      string
	HeaderText string // full header narrative, markdown
	Blocks     []Block
	// Directives are per-file options embedded as comments,
	// e.g. `# gallery_line_numbers = true`.
	Directives map[string]string
	// Digest is the sha256 of the line-ending-normalized source content.
	Digest string
}

// Stem returns the script file name without extension.
func (s *Script) Stem() string {
	base := filepath.Base(s.SrcFile)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// PageFile is the generated markdown page path.
func (s *Script) PageFile() string {
	return filepath.Join(s.Gallery.DestDir, s.Stem()+".md")
}

// SourceCopyFile is the cleaned copy of the source placed next to the page.
func (s *Script) SourceCopyFile() string {
	return filepath.Join(s.Gallery.DestDir, filepath.Base(s.SrcFile))
}

// NotebookFile is the generated notebook path.
func (s *Script) NotebookFile() string {
	return filepath.Join(s.Gallery.DestDir, s.Stem()+".ipynb")
}

// ChecksumFile is the sidecar recording the digest of the last successful
// generation.
func (s *Script) ChecksumFile() string {
	return filepath.Join(s.Gallery.DestDir, filepath.Base(s.SrcFile)+".sha256")
}

// ImageDir is the directory numbered images are written to.
func (s *Script) ImageDir() string {
	return filepath.Join(s.Gallery.DestDir, "images")
}

// ImagePrefix is the per-script naming template stem for scraped images:
// images are written as <prefix>_<counter>.<ext>.
func (s *Script) ImagePrefix() string {
	return "mg_" + s.Stem()
}

// CodeLineCount counts lines across all code blocks. Used by the default
// ordering policy.
func (s *Script) CodeLineCount() int {
	n := 0
	for _, b := range s.Blocks {
		if b.Kind == BlockCode {
			n += strings.Count(b.Content, "\n")
			if b.Content != "" && !strings.HasSuffix(b.Content, "\n") {
				n++
			}
		}
	}
	return n
}

// CodeContent concatenates all code blocks in order.
func (s *Script) CodeContent() string {
	var sb strings.Builder
	for _, b := range s.Blocks {
		if b.Kind == BlockCode {
			sb.WriteString(b.Content)
		}
	}
	return sb.String()
}

// RunResult is produced once per processed script and read-only afterwards.
// A stale-skipped script gets a RunResult with Stale=true and zero timing.
type RunResult struct {
	Script   *Script
	ExecTime time.Duration
	// MemoryMB is the peak interpreter memory delta over the pre-first-block
	// baseline, in megabytes. Zero when memory reporting is off.
	MemoryMB float64
	// Images are paths of images scraped during execution, in creation order.
	Images []string
	// ImageBlocks holds, per image, the index of the code block that
	// produced it. Parallel to Images.
	ImageBlocks []int
	// Outputs holds captured stdout per block index (code blocks only).
	Outputs map[int]string
	// Bindings maps names bound in the execution namespace to the module
	// path of their runtime type. Feeds the first resolver pass.
	Bindings map[string]string

	Stale            bool
	Failed           bool
	FailedAsExpected bool
	Traceback        string
}

// Gallery is a named grouping of scripts under one source directory, with
// at most one level of subgalleries. Constructed once per build.
type Gallery struct {
	SrcDir  string
	DestDir string
	Title   string
	// Intro is the README narrative for the section, markdown.
	Intro string

	Scripts      []*Script
	Subgalleries []*Gallery
	// Root is nil for a top-level gallery.
	Root *Gallery
}

// Name is the directory base name, used in logs and zip file names.
func (g *Gallery) Name() string { return filepath.Base(g.SrcDir) }

// IndexFile is the generated gallery index page.
func (g *Gallery) IndexFile() string { return filepath.Join(g.DestDir, "index.md") }

// TimesFile is the generated execution-times page.
func (g *Gallery) TimesFile() string {
	return filepath.Join(g.DestDir, "mg_execution_times.md")
}

// ZipFile returns the download bundle path for an artifact kind extension
// (".py" or ".ipynb").
func (g *Gallery) ZipFile(ext string) string {
	kind := "python"
	if ext == ".ipynb" {
		kind = "jupyter"
	}
	return filepath.Join(g.DestDir, g.Name()+"_"+kind+".zip")
}

// AllScripts returns the gallery's scripts followed by all subgallery
// scripts, in order.
func (g *Gallery) AllScripts() []*Script {
	out := make([]*Script, 0, len(g.Scripts))
	out = append(out, g.Scripts...)
	for _, sub := range g.Subgalleries {
		out = append(out, sub.Scripts...)
	}
	return out
}
