package binder

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-git/go-git/v5"
)

var githubRemoteRe = regexp.MustCompile(`(?:github\.com[:/])([^/]+)/([^/.]+)`)

// AutoDetect fills empty Org/Repo/Branch fields from the git repository
// containing dir, walking up to find the repository root. Explicitly
// configured values are never overwritten.
func (c *Config) AutoDetect(dir string) error {
	if c.Org != "" && c.Repo != "" && c.Branch != "" {
		return nil
	}

	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return fmt.Errorf("binder auto-detection: open repository at %s: %w", dir, err)
	}

	if c.Org == "" || c.Repo == "" {
		remote, err := repo.Remote("origin")
		if err != nil {
			return fmt.Errorf("binder auto-detection: no origin remote: %w", err)
		}
		urls := remote.Config().URLs
		if len(urls) == 0 {
			return fmt.Errorf("binder auto-detection: origin remote has no URL")
		}
		m := githubRemoteRe.FindStringSubmatch(urls[0])
		if m == nil {
			return fmt.Errorf("binder auto-detection: origin URL %q is not a recognized github remote", urls[0])
		}
		if c.Org == "" {
			c.Org = m[1]
		}
		if c.Repo == "" {
			c.Repo = strings.TrimSuffix(m[2], ".git")
		}
	}

	if c.Branch == "" {
		head, err := repo.Head()
		if err != nil {
			return fmt.Errorf("binder auto-detection: resolve HEAD: %w", err)
		}
		c.Branch = head.Name().Short()
	}
	return nil
}
