package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/gallerygen/internal/gallery"
)

// ScrapeState tracks image numbering and filesystem snapshots for one
// script. A fresh state is created per script; Next starts at 1 and the
// counter is shared by all scrapers so images number in creation order.
type ScrapeState struct {
	WorkDir  string
	ImageDir string
	Prefix   string
	Next     int

	// snapshot holds the files seen in WorkDir before the current block,
	// for the fsdiff scraper.
	snapshot map[string]bool
}

// Scraper harvests one kind of output artifact produced by a block.
type Scraper interface {
	Name() string
	Scrape(ctx context.Context, sess Session, st *ScrapeState) ([]string, error)
}

// NewScraper resolves a configured scraper name.
func NewScraper(name string) (Scraper, error) {
	switch name {
	case "figures", "matplotlib":
		return figureScraper{}, nil
	case "fsdiff":
		return &fsdiffScraper{}, nil
	default:
		return nil, gallery.Configf("unknown image scraper %q (known: figures, fsdiff)", name)
	}
}

// figureScraper asks the interpreter session to serialize any figures
// opened since the previous block.
type figureScraper struct{}

func (figureScraper) Name() string { return "figures" }

func (figureScraper) Scrape(ctx context.Context, sess Session, st *ScrapeState) ([]string, error) {
	images, err := sess.ScrapeFigures(ctx, st.ImageDir, st.Prefix, st.Next)
	if err != nil {
		return nil, err
	}
	for _, img := range images {
		if _, err := os.Stat(img); err != nil {
			return nil, &gallery.ArtifactError{Script: st.Prefix,
				Msg: fmt.Sprintf("scraper reported image %s but it was not produced", img)}
		}
	}
	st.Next += len(images)
	return images, nil
}

var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".svg": true, ".gif": true}

// fsdiffScraper collects image files a block wrote into the working
// directory itself, for tools that save files directly instead of keeping
// figures open.
type fsdiffScraper struct{}

func (*fsdiffScraper) Name() string { return "fsdiff" }

func (*fsdiffScraper) Scrape(_ context.Context, _ Session, st *ScrapeState) ([]string, error) {
	current, err := listImages(st.WorkDir)
	if err != nil {
		return nil, err
	}
	if st.snapshot == nil {
		// First call: everything present predates the script.
		st.snapshot = current
		return nil, nil
	}

	var fresh []string
	for f := range current {
		if !st.snapshot[f] {
			fresh = append(fresh, f)
		}
	}
	sort.Strings(fresh)
	st.snapshot = current

	var images []string
	for _, f := range fresh {
		dst := filepath.Join(st.ImageDir, fmt.Sprintf("%s_%03d%s", st.Prefix, st.Next, filepath.Ext(f)))
		if err := os.Rename(filepath.Join(st.WorkDir, f), dst); err != nil {
			return nil, &gallery.ArtifactError{Script: st.Prefix,
				Msg: fmt.Sprintf("collect %s: %v", f, err)}
		}
		images = append(images, dst)
		st.Next++
	}
	return images, nil
}

func listImages(dir string) (map[string]bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	out := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			out[e.Name()] = true
		}
	}
	return out, nil
}
