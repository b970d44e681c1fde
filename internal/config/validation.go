package config

import (
	"regexp"

	"git.home.luguber.info/inful/gallerygen/internal/gallery"
)

// Validate checks the configuration for contradictions that would only
// surface halfway through a build.
func (c *Config) Validate() error {
	if len(c.Galleries) == 0 {
		return gallery.Configf("no galleries configured")
	}
	seenSrc := map[string]bool{}
	seenDest := map[string]bool{}
	for _, g := range c.Galleries {
		if g.SrcDir == "" || g.DestDir == "" {
			return gallery.Configf("gallery entries need both src_dir and dest_dir")
		}
		if seenSrc[g.SrcDir] {
			return gallery.Configf("duplicate gallery src_dir %q", g.SrcDir)
		}
		if seenDest[g.DestDir] {
			return gallery.Configf("duplicate gallery dest_dir %q", g.DestDir)
		}
		seenSrc[g.SrcDir] = true
		seenDest[g.DestDir] = true
	}

	for name, pattern := range map[string]string{
		"filenames.pattern":        c.Filenames.Pattern,
		"filenames.ignore_pattern": c.Filenames.IgnorePattern,
		"execution.run_pattern":    c.Execution.RunPattern,
	} {
		if pattern == "" {
			continue
		}
		if _, err := regexp.Compile(pattern); err != nil {
			return gallery.Configf("invalid %s: %v", name, err)
		}
	}

	if _, err := gallery.ParseOrder(c.Ordering.WithinGallery); err != nil {
		return err
	}
	if c.Ordering.WithinGallery == "explicit" && len(c.Ordering.Explicit) == 0 {
		return gallery.Configf("ordering.within_gallery is explicit but ordering.explicit is empty")
	}
	if _, err := gallery.ParseOrder(c.Ordering.Subgalleries); err != nil {
		return err
	}

	switch c.Execution.Scraper {
	case "matplotlib", "figures", "fsdiff":
	default:
		return gallery.Configf("unknown execution.scraper %q (matplotlib, figures or fsdiff)", c.Execution.Scraper)
	}

	switch c.Output.TimesSortKey {
	case "-time", "-memory", "name":
	default:
		return gallery.Configf("unknown output.times_sort_key %q (-time, -memory or name)", c.Output.TimesSortKey)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return gallery.Configf("unknown logging.level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return gallery.Configf("unknown logging.format %q", c.Logging.Format)
	}
	return nil
}
