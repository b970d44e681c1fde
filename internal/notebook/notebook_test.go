package notebook

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/gallerygen/internal/gallery"
)

func sampleScript() *gallery.Script {
	return &gallery.Script{
		SrcFile:    "/examples/plot_demo.py",
		Title:      "Demo",
		HeaderText: "# Demo\n\nIntro text.\n",
		Blocks: []gallery.Block{
			{Kind: gallery.BlockCode, Content: "import numpy as np\nx = np.zeros(3)\n"},
			{Kind: gallery.BlockText, Content: "Some narrative.\n"},
			{Kind: gallery.BlockCode, Content: "print(x)\n"},
		},
	}
}

func TestRenderCellMapping(t *testing.T) {
	data, err := Render(sampleScript(), Options{})
	require.NoError(t, err)

	var doc struct {
		Cells []struct {
			CellType string   `json:"cell_type"`
			Source   []string `json:"source"`
		} `json:"cells"`
		NBFormat      int `json:"nbformat"`
		NBFormatMinor int `json:"nbformat_minor"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	require.Equal(t, 4, doc.NBFormat)
	require.Equal(t, 5, doc.NBFormatMinor)

	var kinds []string
	for _, c := range doc.Cells {
		kinds = append(kinds, c.CellType)
	}
	require.Equal(t, []string{"markdown", "code", "markdown", "code"}, kinds)

	// Source lines keep interior newlines, the last line has none.
	require.Equal(t, []string{"import numpy as np\n", "x = np.zeros(3)"}, doc.Cells[1].Source)
}

func TestRenderFirstAndLastCells(t *testing.T) {
	data, err := Render(sampleScript(), Options{
		FirstCell: "%matplotlib inline\n",
		LastCell:  "plt.show()\n",
	})
	require.NoError(t, err)

	var doc struct {
		Cells []struct {
			CellType string   `json:"cell_type"`
			Source   []string `json:"source"`
		} `json:"cells"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	first := doc.Cells[0]
	last := doc.Cells[len(doc.Cells)-1]
	require.Equal(t, "code", first.CellType)
	require.Equal(t, []string{"%matplotlib inline"}, first.Source)
	require.Equal(t, "code", last.CellType)
	require.Equal(t, []string{"plt.show()"}, last.Source)
}
