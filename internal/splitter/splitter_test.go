package splitter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/gallerygen/internal/gallery"
)

const sampleScript = `#!/usr/bin/env python
# -*- coding: utf-8 -*-
"""
# Plotting a sine wave

This example shows how to plot a sine wave
with sensible axis labels.
"""

# gallery_line_numbers = true

import numpy as np

x = np.linspace(0, 10, 100)

####################################################################
# The plotting part
# -----------------
# Now we draw the figure.

import matplotlib.pyplot as plt

plt.plot(x, np.sin(x))

# %% A second section marker

print("done")
`

func TestSplitSampleScript(t *testing.T) {
	res, err := Split("sample.py", []byte(sampleScript), Options{})
	require.NoError(t, err)

	require.Equal(t, "Plotting a sine wave", res.Title)
	require.Contains(t, res.Intro, "plot a sine wave")
	require.Equal(t, "true", res.Directives["line_numbers"])

	var kinds []gallery.BlockKind
	for _, b := range res.Blocks {
		kinds = append(kinds, b.Kind)
	}
	require.Equal(t, []gallery.BlockKind{
		gallery.BlockCode,
		gallery.BlockText,
		gallery.BlockCode,
		gallery.BlockText,
		gallery.BlockCode,
	}, kinds)

	// Text blocks keep their markdown but lose the comment prefix.
	require.Contains(t, res.Blocks[1].Content, "The plotting part")
	require.NotContains(t, res.Blocks[1].Content, "# The plotting part")

	// Marker text on the `# %%` line joins the text block.
	require.Contains(t, res.Blocks[3].Content, "A second section marker")
}

func TestSplitBlockLinesPointIntoSource(t *testing.T) {
	res, err := Split("sample.py", []byte(sampleScript), Options{})
	require.NoError(t, err)

	for _, b := range res.Blocks {
		require.Greater(t, b.Line, 0)
	}
	// First code block starts right after the closing docstring quotes.
	require.Equal(t, 9, res.Blocks[0].Line)
}

func TestSplitNormalizesCRLF(t *testing.T) {
	crlf := "\"\"\"\r\n# Title\r\n\"\"\"\r\nprint(1)\r\n"
	res, err := Split("win.py", []byte(crlf), Options{})
	require.NoError(t, err)
	require.Equal(t, "Title", res.Title)
	require.NotContains(t, res.Blocks[0].Content, "\r")
}

func TestSplitRemoveDirectives(t *testing.T) {
	src := "\"\"\"\n# Title\n\"\"\"\n# gallery_thumbnail_number = 2\nprint(1)\n"
	res, err := Split("d.py", []byte(src), Options{RemoveDirectives: true})
	require.NoError(t, err)
	require.Equal(t, "2", res.Directives["thumbnail_number"])
	for _, b := range res.Blocks {
		require.NotContains(t, b.Content, "gallery_thumbnail_number")
	}
}

func TestSplitOneLineHeader(t *testing.T) {
	src := `"""# Quick example"""` + "\nprint(1)\n"
	res, err := Split("one.py", []byte(src), Options{})
	require.NoError(t, err)
	require.Equal(t, "Quick example", res.Title)
}

func TestSplitErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"missing header", "import os\n"},
		{"unterminated header", "\"\"\"\n# Title\nprint(1)\n"},
		{"empty file", ""},
		{"header without heading", "\"\"\"\njust prose, no heading\n\"\"\"\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Split("bad.py", []byte(tc.src), Options{})
			var perr *gallery.ParseError
			require.Error(t, err)
			require.True(t, errors.As(err, &perr), "want ParseError, got %T", err)
			require.Equal(t, "bad.py", perr.File)
		})
	}
}

func TestExtractTitleIntro(t *testing.T) {
	title, intro, err := ExtractTitleIntro("# My title\n\nFirst paragraph\nspanning lines.\n")
	require.NoError(t, err)
	require.Equal(t, "My title", title)
	require.Equal(t, "First paragraph spanning lines.", intro)
}

func TestFirstSentenceTruncatesAtWordBoundary(t *testing.T) {
	long := "This introduction is quite a bit longer than the limit we configure here"
	got := FirstSentence(long, 30)
	require.LessOrEqual(t, len(got), 34)
	require.True(t, got[len(got)-3:] == "...")
	if got == long {
		t.Fatalf("expected truncation")
	}
}
