package main

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// runClean removes generated artifacts under the configured destination
// directories. Checksum sidecars survive by default so the next build can
// still skip unchanged examples; --all wipes those too.
func runClean() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	removed := 0
	for _, g := range cfg.Galleries {
		n, err := cleanDir(g.DestDir, CLI.Clean.All)
		if err != nil {
			return err
		}
		removed += n
	}
	if CLI.Clean.All && cfg.History.Enabled {
		if err := os.Remove(cfg.History.Path); err == nil {
			removed++
		}
	}
	slog.Info("Clean finished", "removed", removed)
	return nil
}

func cleanDir(dir string, all bool) (int, error) {
	if all {
		if err := os.RemoveAll(dir); err != nil {
			return 0, fmt.Errorf("remove %s: %w", dir, err)
		}
		return 1, nil
	}

	removed := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || strings.HasSuffix(path, ".sha256") {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove %s: %w", path, err)
		}
		removed++
		return nil
	})
	if err != nil {
		return removed, err
	}
	return removed, nil
}
