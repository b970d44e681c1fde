package config

// applyDefaults fills in zero values so the rest of the program never re-checks them.
func (c *Config) applyDefaults() {
	if c.Filenames.Pattern == "" {
		c.Filenames.Pattern = `\.py$`
	}
	if c.Ordering.WithinGallery == "" {
		c.Ordering.WithinGallery = "code-lines"
	}
	if c.Ordering.Subgalleries == "" {
		c.Ordering.Subgalleries = "file-name"
	}
	if len(c.Execution.Interpreter) == 0 {
		c.Execution.Interpreter = []string{"python"}
	}
	if c.Execution.RunPattern == "" {
		c.Execution.RunPattern = `^plot_`
	}
	if c.Execution.Scraper == "" {
		c.Execution.Scraper = "matplotlib"
	}
	if c.Execution.ResetModules == nil {
		c.Execution.ResetModules = []string{"matplotlib", "seaborn"}
	}
	if c.Output.SiteRoot == "" {
		c.Output.SiteRoot = "docs"
	}
	if c.Output.TimesSortKey == "" {
		c.Output.TimesSortKey = "-time"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.History.Path == "" {
		c.History.Path = ".gallerygen/history.db"
	}
	if c.Binder.BinderHubURL == "" {
		c.Binder.BinderHubURL = "https://mybinder.org"
	}
	if c.Binder.NotebooksDir == "" {
		c.Binder.NotebooksDir = "notebooks"
	}
}
