// Package nav renders the navigation fragment a host site generator
// splices into its own nav tree: an ordered yaml list mapping gallery and
// script titles to generated page paths.
package nav

import (
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/gallerygen/internal/checksum"
	"git.home.luguber.info/inful/gallerygen/internal/gallery"
)

// Entry is a single {title: target} pair; Children turns it into a
// section. yaml marshalling mirrors the mkdocs nav shape, where every
// level is a list of one-entry maps.
type Entry struct {
	Title    string
	Target   string
	Children []Entry
}

func (e Entry) MarshalYAML() (any, error) {
	if len(e.Children) > 0 {
		return map[string]any{e.Title: e.Children}, nil
	}
	return map[string]string{e.Title: e.Target}, nil
}

// Build assembles the fragment for all galleries, relative to siteRoot.
func Build(galleries []*gallery.Gallery, siteRoot string) ([]Entry, error) {
	var out []Entry
	for _, g := range galleries {
		entry, err := galleryEntry(g, siteRoot)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

func galleryEntry(g *gallery.Gallery, siteRoot string) (Entry, error) {
	index, err := rel(siteRoot, g.IndexFile())
	if err != nil {
		return Entry{}, err
	}
	entry := Entry{Title: g.Title, Children: []Entry{{Title: g.Title, Target: index}}}

	for _, s := range g.Scripts {
		page, err := rel(siteRoot, s.PageFile())
		if err != nil {
			return Entry{}, err
		}
		entry.Children = append(entry.Children, Entry{Title: s.Title, Target: page})
	}
	for _, sub := range g.Subgalleries {
		subEntry, err := galleryEntry(sub, siteRoot)
		if err != nil {
			return Entry{}, err
		}
		entry.Children = append(entry.Children, subEntry)
	}
	return entry, nil
}

// Write renders the fragment and promotes it atomically so a watching
// host only ever reads a complete file.
func Write(path string, entries []Entry) error {
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal nav fragment: %w", err)
	}
	if _, err := checksum.WriteFileIfChanged(path, data); err != nil {
		return fmt.Errorf("write nav fragment: %w", err)
	}
	return nil
}

func rel(root, target string) (string, error) {
	r, err := filepath.Rel(root, target)
	if err != nil {
		return "", fmt.Errorf("nav path for %s: %w", target, err)
	}
	return filepath.ToSlash(r), nil
}
