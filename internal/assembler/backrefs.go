package assembler

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/gallerygen/internal/checksum"
	"git.home.luguber.info/inful/gallerygen/internal/gallery"
)

// Backrefs accumulates, per fully-qualified name, the example scripts that
// use it, so API documentation pages can include "examples using X"
// sections. Files are only written on Finalize.
type Backrefs struct {
	Dir     string
	entries map[string][]backrefEntry
}

type backrefEntry struct {
	script *gallery.Script
	thumb  string
}

func NewBackrefs(dir string) *Backrefs {
	return &Backrefs{Dir: dir, entries: map[string][]backrefEntry{}}
}

// Add records that script uses every name in resolved (name -> fully
// qualified origin). thumb may be empty.
func (b *Backrefs) Add(script *gallery.Script, resolved map[string]string, thumb string) {
	seen := map[string]bool{}
	for _, fq := range resolved {
		if seen[fq] {
			continue
		}
		seen[fq] = true
		b.entries[fq] = append(b.entries[fq], backrefEntry{script: script, thumb: thumb})
	}
}

// Finalize writes one `<fqname>.examples.md` per recorded name with the
// usual promote-if-changed discipline.
func (b *Backrefs) Finalize() error {
	if len(b.entries) == 0 {
		return nil
	}
	if err := os.MkdirAll(b.Dir, 0o750); err != nil {
		return fmt.Errorf("create backreferences dir: %w", err)
	}
	names := make([]string, 0, len(b.entries))
	for name := range b.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(b.Dir, name+".examples.md")
		if _, err := checksum.WriteFileIfChanged(path, []byte(b.render(name))); err != nil {
			return fmt.Errorf("write backreference %s: %w", path, err)
		}
	}
	return nil
}

func (b *Backrefs) render(name string) string {
	var sb strings.Builder
	sb.WriteString("## Examples using `" + name + "`\n")
	entries := b.entries[name]
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].script.SrcFile < entries[j].script.SrcFile
	})
	for _, e := range entries {
		page, err := filepath.Rel(b.Dir, e.script.PageFile())
		if err != nil {
			page = e.script.PageFile()
		}
		page = filepath.ToSlash(page)
		if e.thumb != "" {
			if rel, err := filepath.Rel(b.Dir, e.thumb); err == nil {
				sb.WriteString(fmt.Sprintf("\n[![%s](%s)](%s)\n",
					e.script.Title, filepath.ToSlash(rel), page))
			}
		}
		sb.WriteString(fmt.Sprintf("\n[%s](%s)\n", e.script.Title, page))
	}
	return sb.String()
}
