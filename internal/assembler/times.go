package assembler

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"git.home.luguber.info/inful/gallerygen/internal/gallery"
)

// sortResultsForReport orders results for the execution-times table:
// descending time, then descending memory, then script name.
func sortResultsForReport(results []*gallery.RunResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.ExecTime != b.ExecTime {
			return a.ExecTime > b.ExecTime
		}
		if a.MemoryMB != b.MemoryMB {
			return a.MemoryMB > b.MemoryMB
		}
		return a.Script.Stem() < b.Script.Stem()
	})
}

// renderTimesPage builds the per-gallery execution-times markdown table.
// sortKey is one of "-time", "-memory" or "name".
func renderTimesPage(g *gallery.Gallery, results []*gallery.RunResult, sortKey string, showMemory bool) string {
	rows := make([]*gallery.RunResult, 0, len(results))
	var total time.Duration
	for _, r := range results {
		if r.Script.Gallery != g && r.Script.Gallery.Root != g {
			continue
		}
		rows = append(rows, r)
		total += r.ExecTime
	}
	switch sortKey {
	case "-memory":
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].MemoryMB > rows[j].MemoryMB })
	case "name":
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Script.Stem() < rows[j].Script.Stem() })
	default:
		sortResultsForReport(rows)
	}

	var b strings.Builder
	b.WriteString("# Computation times\n\n")
	b.WriteString(fmt.Sprintf("**%s** total execution time for **%s** files:\n\n",
		prettyDuration(total), g.Name()))

	if showMemory {
		b.WriteString("| Example | Time | Memory (MB) |\n|---|---:|---:|\n")
	} else {
		b.WriteString("| Example | Time |\n|---|---:|\n")
	}
	for _, r := range rows {
		name := r.Script.Stem()
		t := prettyDuration(r.ExecTime)
		if r.Stale {
			t = "cached"
		}
		if showMemory {
			b.WriteString(fmt.Sprintf("| [%s](%s.md) | %s | %.1f |\n", name, name, t, r.MemoryMB))
		} else {
			b.WriteString(fmt.Sprintf("| [%s](%s.md) | %s |\n", name, name, t))
		}
	}
	return b.String()
}

// echoTimes logs each script that ran longer than minReported seconds.
func echoTimes(results []*gallery.RunResult, minReported float64) {
	for _, r := range results {
		if r.Stale || r.ExecTime.Seconds() < minReported {
			continue
		}
		slog.Info("Example executed",
			"script", r.Script.Stem(),
			"time", r.ExecTime.Round(time.Millisecond),
			"memory_mb", fmt.Sprintf("%.1f", r.MemoryMB))
	}
}
