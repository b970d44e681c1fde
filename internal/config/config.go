// Package config loads and validates the gallerygen configuration file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/gallerygen/internal/binder"
	"git.home.luguber.info/inful/gallerygen/internal/gallery"
)

// Config is the top level configuration.
type Config struct {
	Galleries  []GallerySpec    `yaml:"galleries"`
	Filenames  FilenameConfig   `yaml:"filenames"`
	Ordering   OrderingConfig   `yaml:"ordering"`
	Execution  ExecutionConfig  `yaml:"execution"`
	Resolution ResolutionConfig `yaml:"resolution"`
	Binder     binder.Config    `yaml:"binder"`
	Output     OutputConfig     `yaml:"output"`
	Logging    LoggingConfig    `yaml:"logging"`
	Server     ServerConfig     `yaml:"server"`
	History    HistoryConfig    `yaml:"history"`
}

// GallerySpec pairs one source directory of example scripts with its
// destination under the site.
type GallerySpec struct {
	SrcDir  string `yaml:"src_dir"`
	DestDir string `yaml:"dest_dir"`
	// Title overrides the heading from the gallery's README when set.
	Title string `yaml:"title,omitempty"`
}

// FilenameConfig controls which files in a gallery directory are treated
// as example scripts.
type FilenameConfig struct {
	Pattern       string `yaml:"pattern"`
	IgnorePattern string `yaml:"ignore_pattern"`
}

// OrderingConfig selects how scripts and subgalleries are ordered on
// index pages.
type OrderingConfig struct {
	WithinGallery string   `yaml:"within_gallery"`
	Subgalleries  string   `yaml:"subgalleries"`
	Explicit      []string `yaml:"explicit,omitempty"`
}

// ExecutionConfig controls how example scripts are run.
type ExecutionConfig struct {
	Interpreter     []string `yaml:"interpreter"`
	RunPattern      string   `yaml:"run_pattern"`
	RunStale        bool     `yaml:"run_stale_examples"`
	ExpectedFailing []string `yaml:"expected_failing,omitempty"`
	OnlyWarn        bool     `yaml:"only_warn_on_example_error"`
	ShowMemory      bool     `yaml:"show_memory"`
	ResetModules    []string `yaml:"reset_modules"`
	Scraper         string   `yaml:"scraper"`
	ScriptArgs      []string `yaml:"script_args,omitempty"`
}

// ResolutionConfig configures documentation cross-referencing.
type ResolutionConfig struct {
	DocModules        []string          `yaml:"doc_modules,omitempty"`
	Hints             map[string]string `yaml:"hints,omitempty"`
	ReferenceURL      map[string]string `yaml:"reference_url,omitempty"`
	BackreferencesDir string            `yaml:"backreferences_dir,omitempty"`
}

// OutputConfig controls rendered artifacts beyond the per-script pages.
type OutputConfig struct {
	SiteRoot            string  `yaml:"site_root"`
	DownloadAllExamples bool    `yaml:"download_all_examples"`
	MinReportedTime     float64 `yaml:"min_reported_time"`
	TimesSortKey        string  `yaml:"times_sort_key"`
	JUnitFile           string  `yaml:"junit_file,omitempty"`
	NavFile             string  `yaml:"nav_file,omitempty"`
	RemoveDirectives    bool    `yaml:"remove_directives"`
	FirstNotebookCell   string  `yaml:"first_notebook_cell,omitempty"`
	LastNotebookCell    string  `yaml:"last_notebook_cell,omitempty"`
}

// LoggingConfig selects log verbosity and format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig configures the preview server.
type ServerConfig struct {
	Addr    string `yaml:"addr"`
	Metrics bool   `yaml:"metrics"`
	Watch   bool   `yaml:"watch"`
}

// HistoryConfig configures the build history database.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads the configuration file, expands ${VAR} references from the
// environment (after loading a .env file when present), applies defaults
// and validates the result.
func Load(configPath string) (*Config, error) {
	// Missing .env is fine; values already in the environment win.
	_ = godotenv.Load()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, gallery.Configf("configuration file not found: %s", configPath)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, gallery.Configf("parse %s: %v", configPath, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
