// Package checksum implements the staleness tracking that makes gallery
// builds incremental, plus the write-to-temporary-then-promote discipline
// all generated artifacts follow.
package checksum

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Digest returns the sha256 hex digest of content with line endings
// normalized to LF, so the same logical content hashes identically across
// platforms.
func Digest(content []byte) string {
	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	sum := sha256.Sum256(normalized)
	return hex.EncodeToString(sum[:])
}

// DigestFile computes the normalized digest of a file on disk.
func DigestFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return Digest(data), nil
}

// Store persists one digest sidecar per source file under Dir. A script is
// stale when no record exists or the recorded digest differs from the
// current content digest. Commit must only be called after a fully
// successful regeneration so the persisted state always reflects a
// completed artifact.
type Store struct {
	Dir string
}

// NewStore returns a store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create checksum dir: %w", err)
	}
	return &Store{Dir: dir}, nil
}

func (s *Store) sidecar(srcFile string) string {
	return filepath.Join(s.Dir, filepath.Base(srcFile)+".sha256")
}

// IsStale reports whether srcFile needs regeneration, returning the
// freshly computed digest so a later Commit does not recompute it.
func (s *Store) IsStale(srcFile string) (bool, string, error) {
	digest, err := DigestFile(srcFile)
	if err != nil {
		return false, "", err
	}
	recorded, err := os.ReadFile(s.sidecar(srcFile))
	if err != nil {
		if os.IsNotExist(err) {
			return true, digest, nil
		}
		return false, "", fmt.Errorf("read checksum record: %w", err)
	}
	return strings.TrimSpace(string(recorded)) != digest, digest, nil
}

// Commit records digest as the last successfully generated version of
// srcFile.
func (s *Store) Commit(srcFile, digest string) error {
	if _, err := WriteFileIfChanged(s.sidecar(srcFile), []byte(digest+"\n")); err != nil {
		return fmt.Errorf("commit checksum for %s: %w", filepath.Base(srcFile), err)
	}
	return nil
}

// WriteFileIfChanged writes data under a sibling .new path and promotes it
// over path only when the content digest differs from what is already
// there. Identical content leaves the target untouched, which keeps
// downstream file watchers and rebuild triggers quiet. Returns whether the
// target changed.
func WriteFileIfChanged(path string, data []byte) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return false, fmt.Errorf("create parent dir: %w", err)
	}
	newPath := path + ".new"
	if err := os.WriteFile(newPath, data, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", newPath, err)
	}
	return PromoteNew(newPath)
}

// PromoteNew replaces the target of a .new sibling file if content
// differs, otherwise discards the .new file. The rename is atomic, so a
// concurrent reader sees either the old or the new artifact, never a
// partial one.
func PromoteNew(newPath string) (bool, error) {
	target := strings.TrimSuffix(newPath, ".new")
	if target == newPath {
		return false, fmt.Errorf("promote: %s does not end in .new", newPath)
	}

	newDigest, err := DigestFile(newPath)
	if err != nil {
		return false, err
	}
	if oldDigest, err := DigestFile(target); err == nil && oldDigest == newDigest {
		if err := os.Remove(newPath); err != nil {
			return false, fmt.Errorf("remove identical %s: %w", newPath, err)
		}
		return false, nil
	}
	if err := os.Rename(newPath, target); err != nil {
		return false, fmt.Errorf("promote %s: %w", newPath, err)
	}
	return true, nil
}
