package config

import (
	"fmt"
	"os"
)

const exampleYAML = `# gallerygen configuration
galleries:
  - src_dir: examples
    dest_dir: generated/gallery

filenames:
  pattern: '\.py$'
  # ignore_pattern: '_wip\.py$'

ordering:
  within_gallery: code-lines   # explicit | code-lines | file-size | file-name | title
  subgalleries: file-name

execution:
  interpreter: [python]
  run_pattern: '^plot_'
  scraper: matplotlib
  show_memory: false
  only_warn_on_example_error: false
  # expected_failing:
  #   - examples/plot_raises.py

resolution:
  # doc_modules: [mypackage]
  # hints:
  #   np: numpy

binder:
  enabled: false
  # org: myorg
  # repo: myrepo
  # dependencies: [requirements.txt]

output:
  site_root: docs
  download_all_examples: true
  min_reported_time: 0
  times_sort_key: "-time"

logging:
  level: info
  format: text

server:
  addr: ":8080"
  metrics: true
  watch: true

history:
  enabled: true
  path: .gallerygen/history.db
`

// WriteExample writes a starter configuration file. It refuses to
// overwrite an existing file unless force is set.
func WriteExample(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	if err := os.WriteFile(path, []byte(exampleYAML), 0o644); err != nil {
		return fmt.Errorf("write example config: %w", err)
	}
	return nil
}
