package assembler

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"git.home.luguber.info/inful/gallerygen/internal/checksum"
	"git.home.luguber.info/inful/gallerygen/internal/gallery"
)

// zipEpoch is the fixed timestamp stamped on all archive members so the
// bundle bytes only change when member content changes.
var zipEpoch = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// writeBundles builds the per-gallery source and notebook zip archives
// with the same promote-if-changed discipline as every other artifact.
func writeBundles(g *gallery.Gallery) error {
	for _, ext := range []string{".py", ".ipynb"} {
		data, err := bundle(g, ext)
		if err != nil {
			return err
		}
		if _, err := checksum.WriteFileIfChanged(g.ZipFile(ext), data); err != nil {
			return fmt.Errorf("write bundle %s: %w", g.ZipFile(ext), err)
		}
	}
	return nil
}

func bundle(g *gallery.Gallery, ext string) ([]byte, error) {
	var members []string
	for _, s := range g.AllScripts() {
		switch ext {
		case ".py":
			members = append(members, s.SourceCopyFile())
		case ".ipynb":
			members = append(members, s.NotebookFile())
		}
	}
	sort.Strings(members)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, path := range members {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("bundle member %s: %w", path, err)
		}
		hdr := &zip.FileHeader{
			Name:     filepath.Base(path),
			Method:   zip.Deflate,
			Modified: zipEpoch,
		}
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return nil, fmt.Errorf("bundle member %s: %w", path, err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("bundle member %s: %w", path, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize bundle: %w", err)
	}
	return buf.Bytes(), nil
}
