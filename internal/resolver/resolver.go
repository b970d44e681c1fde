// Package resolver statically maps dotted names used in example code to
// their best-guess fully qualified origins, for backreference generation.
//
// Resolution is two-tier: a hint table supplied by the caller (configured
// name hints, or bindings reported by a previous execution) is consulted
// first, then textual import analysis. Runtime reflection is never used;
// unresolvable names are silently omitted.
package resolver

import (
	"regexp"
	"sort"
	"strings"

	"git.home.luguber.info/inful/gallerygen/internal/gallery"
)

// Resolver carries the static context for one script.
type Resolver struct {
	// Hints maps local identifiers (possibly dotted) to fully qualified
	// names. Hint matches are preferred over import matches, and longer
	// dotted hint prefixes over shorter ones.
	Hints map[string]string
	// DocModules restricts the result to names rooted under the given
	// module paths. Empty means keep everything.
	DocModules []string
}

var (
	importRe     = regexp.MustCompile(`^\s*import\s+(.+)$`)
	fromImportRe = regexp.MustCompile(`^\s*from\s+([\w.]+)\s+import\s+(.+)$`)
	dottedNameRe = regexp.MustCompile(`[A-Za-z_]\w*(?:\.[A-Za-z_]\w*)+`)
)

// Identify scans the code blocks and returns accessed dotted names mapped
// to fully qualified names. Only code blocks are inspected.
func (r *Resolver) Identify(blocks []gallery.Block) map[string]string {
	var code []string
	for _, b := range blocks {
		if b.Kind == gallery.BlockCode {
			code = append(code, b.Content)
		}
	}
	text := strings.Join(code, "\n")

	imports := collectImports(text)
	accessed := collectAccessedNames(text)

	out := make(map[string]string)
	for _, name := range accessed {
		if full, ok := r.resolve(name, imports); ok {
			if len(r.DocModules) == 0 || underAny(full, r.DocModules) {
				out[name] = full
			}
		}
	}
	return out
}

// resolve tries hint bindings first, then import bindings, preferring the
// longest dotted prefix within each tier.
func (r *Resolver) resolve(name string, imports map[string]string) (string, bool) {
	for _, table := range []map[string]string{r.Hints, imports} {
		if table == nil {
			continue
		}
		parts := strings.Split(name, ".")
		for level := len(parts); level > 0; level-- {
			prefix := strings.Join(parts[:level], ".")
			if full, ok := table[prefix]; ok {
				remainder := name[len(prefix):]
				return full + remainder, true
			}
		}
	}
	return "", false
}

// collectImports parses import statements line by line, handling aliases
// and comma-separated names.
func collectImports(code string) map[string]string {
	imports := make(map[string]string)
	for _, line := range strings.Split(code, "\n") {
		if m := fromImportRe.FindStringSubmatch(line); m != nil {
			module := m[1]
			for _, item := range strings.Split(m[2], ",") {
				local, origin := parseAlias(item)
				if local == "" {
					continue
				}
				imports[local] = module + "." + origin
			}
			continue
		}
		if m := importRe.FindStringSubmatch(line); m != nil {
			for _, item := range strings.Split(m[1], ",") {
				local, origin := parseAlias(item)
				if local == "" {
					continue
				}
				imports[local] = origin
			}
		}
	}
	return imports
}

// parseAlias splits "name as alias" into (alias, name); without an alias
// the local binding is the name itself.
func parseAlias(item string) (local, origin string) {
	fields := strings.Fields(item)
	switch {
	case len(fields) == 1:
		return fields[0], fields[0]
	case len(fields) == 3 && fields[1] == "as":
		return fields[2], fields[0]
	default:
		return "", ""
	}
}

// collectAccessedNames gathers dotted names from code, ignoring comment
// tails and import lines, deduplicated and sorted for deterministic
// output.
func collectAccessedNames(code string) []string {
	seen := make(map[string]bool)
	for _, line := range strings.Split(code, "\n") {
		if importRe.MatchString(line) || fromImportRe.MatchString(line) {
			continue
		}
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = line[:idx]
		}
		for _, m := range dottedNameRe.FindAllString(line, -1) {
			seen[m] = true
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func underAny(full string, roots []string) bool {
	for _, root := range roots {
		if full == root || strings.HasPrefix(full, root+".") {
			return true
		}
	}
	return false
}
