package binder

import (
	_ "embed"
	"path/filepath"

	"git.home.luguber.info/inful/gallerygen/internal/checksum"
)

//go:embed badge.svg
var badgeSVG []byte

// BadgeAsset is the file name BadgeMarkdown links to inside a gallery's
// images directory.
const BadgeAsset = "binder_badge_logo.svg"

// WriteBadgeAsset places the badge image under imageDir so generated pages
// can reference it locally.
func WriteBadgeAsset(imageDir string) error {
	_, err := checksum.WriteFileIfChanged(filepath.Join(imageDir, BadgeAsset), badgeSVG)
	return err
}
