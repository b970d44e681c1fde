package gallery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Order selects the policy used to sort scripts within a gallery and
// subgalleries within their parent.
type Order string

const (
	OrderExplicit  Order = "explicit"
	OrderCodeLines Order = "code-lines"
	OrderFileSize  Order = "file-size"
	OrderFileName  Order = "file-name"
	OrderTitle     Order = "title"
)

// Orders lists all known ordering policies.
func Orders() []Order {
	return []Order{OrderExplicit, OrderCodeLines, OrderFileSize, OrderFileName, OrderTitle}
}

// ParseOrder validates an order name, suggesting the closest known name on
// a miss.
func ParseOrder(name string) (Order, error) {
	for _, o := range Orders() {
		if string(o) == name {
			return o, nil
		}
	}
	suggestion := ""
	for _, o := range Orders() {
		if strings.HasPrefix(string(o), name) || levenshtein(name, string(o)) <= 2 {
			suggestion = fmt.Sprintf(", did you mean %q?", o)
			break
		}
	}
	return "", Configf("unknown sort order %q%s (known: %v)", name, suggestion, Orders())
}

// SortScripts orders scripts in place. For OrderExplicit every script file
// name must appear in explicit; an unlisted file is a configuration error
// naming the missing file.
func SortScripts(scripts []*Script, order Order, explicit []string) error {
	switch order {
	case OrderExplicit:
		rank := make(map[string]int, len(explicit))
		for i, name := range explicit {
			rank[filepath.Clean(name)] = i
		}
		for _, s := range scripts {
			if _, ok := rank[filepath.Base(s.SrcFile)]; !ok {
				return Configf("explicit ordering is configured but %q is not listed; "+
					"all example files must be listed", filepath.Base(s.SrcFile))
			}
		}
		sort.SliceStable(scripts, func(i, j int) bool {
			return rank[filepath.Base(scripts[i].SrcFile)] < rank[filepath.Base(scripts[j].SrcFile)]
		})
	case OrderCodeLines, "":
		sort.SliceStable(scripts, func(i, j int) bool {
			return scripts[i].CodeLineCount() < scripts[j].CodeLineCount()
		})
	case OrderFileSize:
		size := func(s *Script) int64 {
			st, err := os.Stat(s.SrcFile)
			if err != nil {
				return 0
			}
			return st.Size()
		}
		sort.SliceStable(scripts, func(i, j int) bool { return size(scripts[i]) < size(scripts[j]) })
	case OrderFileName:
		sort.SliceStable(scripts, func(i, j int) bool {
			return filepath.Base(scripts[i].SrcFile) < filepath.Base(scripts[j].SrcFile)
		})
	case OrderTitle:
		sort.SliceStable(scripts, func(i, j int) bool { return scripts[i].Title < scripts[j].Title })
	default:
		return Configf("unknown sort order %q", order)
	}
	return nil
}

// SortSubgalleries orders subgalleries in place, by directory name or by an
// explicit directory list.
func SortSubgalleries(subs []*Gallery, order Order, explicit []string) error {
	switch order {
	case OrderExplicit:
		rank := make(map[string]int, len(explicit))
		for i, name := range explicit {
			rank[filepath.Clean(name)] = i
		}
		for _, g := range subs {
			if _, ok := rank[g.Name()]; !ok {
				return Configf("explicit subgallery ordering is configured but %q is not listed", g.Name())
			}
		}
		sort.SliceStable(subs, func(i, j int) bool { return rank[subs[i].Name()] < rank[subs[j].Name()] })
	case OrderFileName, "":
		sort.SliceStable(subs, func(i, j int) bool { return subs[i].Name() < subs[j].Name() })
	case OrderTitle:
		sort.SliceStable(subs, func(i, j int) bool { return subs[i].Title < subs[j].Title })
	default:
		return Configf("sort order %q cannot be applied to subgalleries", order)
	}
	return nil
}

// levenshtein is a small edit-distance helper for config suggestions.
func levenshtein(a, b string) int {
	la, lb := len(a), len(b)
	prev := make([]int, lb+1)
	cur := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		cur[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, min(cur[j-1]+1, prev[j-1]+cost))
		}
		prev, cur = cur, prev
	}
	return prev[lb]
}
