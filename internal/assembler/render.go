package assembler

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/gallerygen/internal/binder"
	"git.home.luguber.info/inful/gallerygen/internal/gallery"
	"git.home.luguber.info/inful/gallerygen/internal/splitter"
)

// renderScriptPage builds the markdown page for one script: header
// narrative, then alternating text and fenced code blocks with captured
// output and scraped images, then the footer with timing, binder badge and
// download links.
func renderScriptPage(res *gallery.RunResult, bc *binder.Config, siteRoot string, showMemory bool) string {
	s := res.Script
	var b strings.Builder

	b.WriteString(strings.TrimRight(s.HeaderText, "\n"))
	b.WriteString("\n")

	imgIdx := 0
	for i, blk := range s.Blocks {
		b.WriteString("\n")
		switch blk.Kind {
		case gallery.BlockText:
			b.WriteString(strings.TrimRight(blk.Content, "\n"))
			b.WriteString("\n")
		case gallery.BlockCode:
			b.WriteString("```python\n")
			b.WriteString(strings.TrimRight(blk.Content, "\n"))
			b.WriteString("\n```\n")
			// Images scraped while this block ran.
			for imgIdx < len(res.Images) && imageBlock(res, imgIdx) == i {
				b.WriteString("\n![](" + pageRelImage(s, res.Images[imgIdx]) + ")\n")
				imgIdx++
			}
			if out := strings.TrimRight(res.Outputs[i], "\n"); out != "" {
				b.WriteString("\nOut:\n\n```text\n")
				b.WriteString(out)
				b.WriteString("\n```\n")
			}
		}
	}
	// Images with no recorded block association trail the last block.
	for ; imgIdx < len(res.Images); imgIdx++ {
		b.WriteString("\n![](" + pageRelImage(s, res.Images[imgIdx]) + ")\n")
	}

	if res.Traceback != "" {
		b.WriteString("\n```pytb\n" + strings.TrimRight(res.Traceback, "\n") + "\n```\n")
	}

	b.WriteString("\n" + footer(res, bc, siteRoot, showMemory))
	return b.String()
}

// imageBlock reports the code block index an image belongs to, or -1 when
// untracked. Images are appended in block order, so ImageBlocks lines up
// with Images by position.
func imageBlock(res *gallery.RunResult, imgIdx int) int {
	if imgIdx < len(res.ImageBlocks) {
		return res.ImageBlocks[imgIdx]
	}
	return -1
}

func pageRelImage(s *gallery.Script, imgPath string) string {
	rel, err := filepath.Rel(s.Gallery.DestDir, imgPath)
	if err != nil {
		rel = imgPath
	}
	return filepath.ToSlash(rel)
}

func footer(res *gallery.RunResult, bc *binder.Config, siteRoot string, showMemory bool) string {
	s := res.Script
	var b strings.Builder

	if !res.Stale {
		b.WriteString(fmt.Sprintf("**Total running time of the script:** (%s)\n", prettyDuration(res.ExecTime)))
		if showMemory && res.MemoryMB > 0 {
			b.WriteString(fmt.Sprintf("\n**Estimated memory usage:** %.0f MB\n", res.MemoryMB))
		}
	}

	if bc != nil && bc.Enabled {
		rel, err := filepath.Rel(siteRoot, s.NotebookFile())
		if err == nil {
			b.WriteString("\n" + bc.BadgeMarkdown(filepath.ToSlash(rel)) + "\n")
		}
	}

	py := filepath.Base(s.SourceCopyFile())
	nb := filepath.Base(s.NotebookFile())
	b.WriteString(fmt.Sprintf("\n[:material-download: Download Python source code: %s](./%s)\n", py, py))
	b.WriteString(fmt.Sprintf("\n[:material-download: Download Jupyter notebook: %s](./%s)\n", nb, nb))
	return b.String()
}

// prettyDuration formats like "0 minutes 1.234 seconds".
func prettyDuration(d time.Duration) string {
	mins := int(d.Minutes())
	secs := d.Seconds() - float64(mins)*60
	return fmt.Sprintf("%d minutes %.3f seconds", mins, secs)
}

// renderIndexPage builds a gallery's index: the README narrative, the
// thumbnail grid of its scripts, one section per subgallery, and download
// buttons for the bundles.
func renderIndexPage(g *gallery.Gallery, thumbs map[*gallery.Script]string, withDownloads bool) string {
	var b strings.Builder

	if g.Intro != "" {
		b.WriteString(strings.TrimRight(g.Intro, "\n"))
		b.WriteString("\n")
	} else {
		b.WriteString("# " + g.Title + "\n")
	}

	writeThumbGrid(&b, g, g.Scripts, thumbs)

	for _, sub := range g.Subgalleries {
		b.WriteString("\n## " + sub.Title + "\n")
		if sub.Intro != "" {
			if body := stripLeadingHeading(sub.Intro); body != "" {
				b.WriteString("\n" + body + "\n")
			}
		}
		writeThumbGrid(&b, g, sub.Scripts, thumbs)
	}

	if withDownloads {
		py, err1 := filepath.Rel(g.DestDir, g.ZipFile(".py"))
		nb, err2 := filepath.Rel(g.DestDir, g.ZipFile(".ipynb"))
		if err1 == nil && err2 == nil {
			b.WriteString("\n[:material-download: Download all examples in Python source code](" +
				filepath.ToSlash(py) + ")\n")
			b.WriteString("\n[:material-download: Download all examples in Jupyter notebooks](" +
				filepath.ToSlash(nb) + ")\n")
		}
	}
	return b.String()
}

func writeThumbGrid(b *strings.Builder, root *gallery.Gallery, scripts []*gallery.Script, thumbs map[*gallery.Script]string) {
	if len(scripts) == 0 {
		return
	}
	b.WriteString("\n<div class=\"mg-gallery\" markdown>\n")
	for _, s := range scripts {
		page, err := filepath.Rel(root.DestDir, s.PageFile())
		if err != nil {
			page = filepath.Base(s.PageFile())
		}
		caption := splitter.FirstSentence(s.Intro, 120)
		if caption == "" {
			caption = s.Title
		}
		b.WriteString("\n<div class=\"mg-thumbnail\" markdown>\n")
		if thumb := thumbs[s]; thumb != "" {
			rel, err := filepath.Rel(root.DestDir, thumb)
			if err == nil {
				b.WriteString(fmt.Sprintf("[![%s](%s)](%s)\n",
					s.Title, filepath.ToSlash(rel), filepath.ToSlash(page)))
			}
		}
		b.WriteString(fmt.Sprintf("[%s](%s)\n", s.Title, filepath.ToSlash(page)))
		b.WriteString("<p>" + caption + "</p>\n")
		b.WriteString("</div>\n")
	}
	b.WriteString("</div>\n")
}

func stripLeadingHeading(md string) string {
	lines := strings.SplitN(md, "\n", 2)
	if len(lines) == 2 && strings.HasPrefix(lines[0], "#") {
		return strings.TrimSpace(lines[1])
	}
	if strings.HasPrefix(md, "#") {
		return ""
	}
	return strings.TrimSpace(md)
}
