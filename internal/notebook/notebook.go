// Package notebook renders the notebook-format equivalent of an example
// script: markdown cells for text blocks, code cells for code blocks.
package notebook

import (
	"encoding/json"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/gallerygen/internal/gallery"
)

type cell struct {
	CellType string         `json:"cell_type"`
	Metadata map[string]any `json:"metadata"`
	Source   []string       `json:"source"`

	// Code cells only.
	ExecutionCount *int  `json:"execution_count,omitempty"`
	Outputs        []any `json:"outputs,omitempty"`
}

type notebookDoc struct {
	Cells         []cell         `json:"cells"`
	Metadata      map[string]any `json:"metadata"`
	NBFormat      int            `json:"nbformat"`
	NBFormatMinor int            `json:"nbformat_minor"`
}

// Options carry optional cells injected around the script content.
type Options struct {
	// FirstCell is prepended as a code cell when non-empty (e.g. a plotting
	// backend directive).
	FirstCell string
	// LastCell is appended as a code cell when non-empty.
	LastCell string
}

// Render produces the ipynb (v4) JSON for a script. The header narrative
// becomes the first markdown cell.
func Render(script *gallery.Script, opts Options) ([]byte, error) {
	var cells []cell
	if opts.FirstCell != "" {
		cells = append(cells, codeCell(opts.FirstCell))
	}
	cells = append(cells, markdownCell(script.HeaderText))

	for _, b := range script.Blocks {
		switch b.Kind {
		case gallery.BlockCode:
			cells = append(cells, codeCell(b.Content))
		case gallery.BlockText:
			cells = append(cells, markdownCell(b.Content))
		}
	}
	if opts.LastCell != "" {
		cells = append(cells, codeCell(opts.LastCell))
	}

	doc := notebookDoc{
		Cells: cells,
		Metadata: map[string]any{
			"language_info": map[string]any{"name": "python"},
		},
		NBFormat:      4,
		NBFormatMinor: 5,
	}
	out, err := json.MarshalIndent(doc, "", " ")
	if err != nil {
		return nil, fmt.Errorf("marshal notebook for %s: %w", script.Stem(), err)
	}
	return append(out, '\n'), nil
}

func codeCell(src string) cell {
	zero := 0
	return cell{
		CellType:       "code",
		Metadata:       map[string]any{"collapsed": false},
		Source:         sourceLines(src),
		ExecutionCount: &zero,
		Outputs:        []any{},
	}
}

func markdownCell(src string) cell {
	return cell{CellType: "markdown", Metadata: map[string]any{}, Source: sourceLines(src)}
}

// sourceLines splits cell text the way notebook files store it: one entry
// per line, each keeping its trailing newline except the last.
func sourceLines(src string) []string {
	src = strings.TrimRight(src, "\n")
	if src == "" {
		return []string{}
	}
	lines := strings.SplitAfter(src+"\n", "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if n := len(lines); n > 0 {
		lines[n-1] = strings.TrimSuffix(lines[n-1], "\n")
	}
	return lines
}
