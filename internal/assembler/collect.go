package assembler

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"git.home.luguber.info/inful/gallerygen/internal/checksum"
	"git.home.luguber.info/inful/gallerygen/internal/config"
	"git.home.luguber.info/inful/gallerygen/internal/gallery"
	"git.home.luguber.info/inful/gallerygen/internal/splitter"
)

// readmeNames are accepted per-directory section headers, tried in order.
var readmeNames = []string{"README.md", "readme.md", "README.txt", "GALLERY_HEADER.md"}

// Collect walks the configured gallery source directories and builds the
// gallery tree: scripts split into blocks, one level of subgalleries, and
// section titles taken from each directory's README.
func Collect(cfg *config.Config) ([]*gallery.Gallery, error) {
	include, err := regexp.Compile(cfg.Filenames.Pattern)
	if err != nil {
		return nil, fmt.Errorf("compile filenames.pattern: %w", err)
	}
	var ignore *regexp.Regexp
	if cfg.Filenames.IgnorePattern != "" {
		ignore, err = regexp.Compile(cfg.Filenames.IgnorePattern)
		if err != nil {
			return nil, fmt.Errorf("compile filenames.ignore_pattern: %w", err)
		}
	}

	var galleries []*gallery.Gallery
	seenStems := map[string]string{}
	for _, spec := range cfg.Galleries {
		root, err := collectDir(cfg, spec.SrcDir, spec.DestDir, include, ignore, nil)
		if err != nil {
			return nil, err
		}
		if spec.Title != "" {
			root.Title = spec.Title
		}
		entries, err := os.ReadDir(spec.SrcDir)
		if err != nil {
			return nil, fmt.Errorf("read gallery dir %s: %w", spec.SrcDir, err)
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			sub, err := collectDir(cfg,
				filepath.Join(spec.SrcDir, e.Name()),
				filepath.Join(spec.DestDir, e.Name()),
				include, ignore, root)
			if err != nil {
				return nil, err
			}
			if len(sub.Scripts) > 0 {
				root.Subgalleries = append(root.Subgalleries, sub)
			}
		}
		warnDuplicates(root, seenStems)
		galleries = append(galleries, root)
	}
	return galleries, nil
}

// collectDir builds one (sub)gallery from a single directory, without
// recursing further.
func collectDir(cfg *config.Config, srcDir, destDir string, include, ignore *regexp.Regexp, root *gallery.Gallery) (*gallery.Gallery, error) {
	g := &gallery.Gallery{SrcDir: srcDir, DestDir: destDir, Root: root}

	if err := readSectionHeader(g); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return nil, fmt.Errorf("read gallery dir %s: %w", srcDir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !include.MatchString(name) {
			continue
		}
		if ignore != nil && ignore.MatchString(name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if strings.ContainsAny(name, " \t") {
			slog.Warn("example file name contains whitespace, links may break",
				"file", name, "gallery", srcDir)
		}
		script, err := loadScript(cfg, g, filepath.Join(srcDir, name))
		if err != nil {
			return nil, err
		}
		g.Scripts = append(g.Scripts, script)
	}
	return g, nil
}

func loadScript(cfg *config.Config, g *gallery.Gallery, srcFile string) (*gallery.Script, error) {
	src, err := os.ReadFile(srcFile)
	if err != nil {
		return nil, fmt.Errorf("read example %s: %w", srcFile, err)
	}
	res, err := splitter.Split(srcFile, src, splitter.Options{
		RemoveDirectives: cfg.Output.RemoveDirectives,
	})
	if err != nil {
		return nil, err
	}
	return &gallery.Script{
		SrcFile:    srcFile,
		Gallery:    g,
		Title:      res.Title,
		Intro:      res.Intro,
		HeaderText: res.HeaderText,
		Blocks:     res.Blocks,
		Directives: res.Directives,
		Digest:     checksum.Digest(src),
	}, nil
}

// readSectionHeader fills the gallery title and intro from the directory
// README. Without one, the directory base name serves as the title.
func readSectionHeader(g *gallery.Gallery) error {
	for _, name := range readmeNames {
		path := filepath.Join(g.SrcDir, name)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read section header %s: %w", path, err)
		}
		title, _, err := splitter.ExtractTitleIntro(string(data))
		if err != nil {
			return gallery.Configf("section header %s has no title heading", path)
		}
		g.Title = title
		g.Intro = strings.TrimSpace(string(data))
		return nil
	}
	g.Title = titleFromDirName(g.Name())
	return nil
}

func titleFromDirName(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '_' || r == '-' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	if len(words) == 0 {
		return name
	}
	return strings.Join(words, " ")
}

// warnDuplicates logs script stems that appear in more than one gallery,
// since generated page names could then collide in a flat nav.
func warnDuplicates(g *gallery.Gallery, seen map[string]string) {
	for _, s := range g.AllScripts() {
		stem := s.Stem()
		if prev, ok := seen[stem]; ok && prev != s.SrcFile {
			slog.Warn("duplicate example file name across galleries",
				"name", stem, "first", prev, "second", s.SrcFile)
			continue
		}
		seen[stem] = s.SrcFile
	}
}
