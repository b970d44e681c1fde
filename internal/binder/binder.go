// Package binder generates launch badges pointing script notebooks at a
// BinderHub instance.
package binder

import (
	"net/url"
	"path"
	"sort"
	"strings"

	"git.home.luguber.info/inful/gallerygen/internal/gallery"
)

// Config is the binder block of the gallery configuration. Org, Repo and
// Branch may be left empty when the examples live in a git clone; they are
// then auto-detected from the repository.
type Config struct {
	Enabled       bool     `yaml:"enabled"`
	BinderHubURL  string   `yaml:"binderhub_url"`
	Org           string   `yaml:"org"`
	Repo          string   `yaml:"repo"`
	Branch        string   `yaml:"branch"`
	Dependencies  []string `yaml:"dependencies"`
	UseJupyterLab bool     `yaml:"use_jupyter_lab"`
	NotebooksDir  string   `yaml:"notebooks_dir"`
	PathPrefix    string   `yaml:"filepath_prefix"`
}

// Validate checks the required keys once auto-detection had its chance.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	missing := []string{}
	for key, val := range map[string]string{
		"binderhub_url": c.BinderHubURL,
		"org":           c.Org,
		"repo":          c.Repo,
		"branch":        c.Branch,
	} {
		if val == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return gallery.Configf("binder configuration is missing required key(s): %s",
			strings.Join(missing, ", "))
	}
	if len(c.Dependencies) == 0 {
		return gallery.Configf("binder configuration requires at least one dependency file " +
			"(e.g. requirements.txt) so the binder environment can be built")
	}
	return nil
}

// BadgeURL builds the launch URL for a notebook path relative to the site
// root.
func (c *Config) BadgeURL(notebookRelPath string) string {
	link := path.Join(c.NotebooksDir, notebookRelPath)
	if c.PathPrefix != "" {
		link = path.Join(strings.Trim(c.PathPrefix, "/"), link)
	}

	base := strings.TrimRight(c.BinderHubURL, "/") + "/v2/gh/" +
		c.Org + "/" + c.Repo + "/" + url.PathEscape(c.Branch)
	if c.UseJupyterLab {
		return base + "?urlpath=lab/tree/" + url.QueryEscape(link)
	}
	return base + "?filepath=" + url.QueryEscape(link)
}

// BadgeMarkdown renders the badge image link for a script page.
func (c *Config) BadgeMarkdown(notebookRelPath string) string {
	return "[![Launch binder](./images/binder_badge_logo.svg)](" + c.BadgeURL(notebookRelPath) + ")"
}
