package binder

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Enabled:      true,
		BinderHubURL: "https://mybinder.org",
		Org:          "myorg",
		Repo:         "myrepo",
		Branch:       "main",
		Dependencies: []string{"requirements.txt"},
		NotebooksDir: "notebooks",
	}
}

func TestValidateDisabledNeedsNothing(t *testing.T) {
	c := Config{}
	require.NoError(t, c.Validate())
}

func TestValidateReportsMissingKeysSorted(t *testing.T) {
	c := Config{Enabled: true, BinderHubURL: "https://mybinder.org"}
	err := c.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "branch, org, repo")
}

func TestValidateRequiresDependencies(t *testing.T) {
	c := validConfig()
	c.Dependencies = nil
	err := c.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "dependency")
}

func TestBadgeURLFilepath(t *testing.T) {
	c := validConfig()
	got := c.BadgeURL("generated/gallery/plot_demo.ipynb")
	require.Equal(t,
		"https://mybinder.org/v2/gh/myorg/myrepo/main"+
			"?filepath=notebooks%2Fgenerated%2Fgallery%2Fplot_demo.ipynb",
		got)
}

func TestBadgeURLJupyterLabAndBranchEscaping(t *testing.T) {
	c := validConfig()
	c.UseJupyterLab = true
	c.Branch = "feature/new-examples"
	got := c.BadgeURL("plot_demo.ipynb")
	require.Contains(t, got, "/v2/gh/myorg/myrepo/feature%2Fnew-examples")
	require.Contains(t, got, "?urlpath=lab/tree/notebooks%2Fplot_demo.ipynb")
}

func TestBadgeURLPathPrefix(t *testing.T) {
	c := validConfig()
	c.PathPrefix = "/site/"
	got := c.BadgeURL("plot_demo.ipynb")
	require.Contains(t, got, "filepath=site%2Fnotebooks%2Fplot_demo.ipynb")
}
