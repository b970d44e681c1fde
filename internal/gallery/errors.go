package gallery

import "fmt"

// ConfigError reports invalid or missing configuration. It always aborts
// the build before any generation happens.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "gallerygen: config error: " + e.Msg }

// Configf builds a ConfigError from a format string.
func Configf(format string, args ...any) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// ParseError reports a script that could not be split into blocks.
type ParseError struct {
	File string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("gallerygen: parse error: %s:%d: %s", e.File, e.Line, e.Msg)
}

// ExecutionError reports an exception raised while running a code block.
// Traceback carries the interpreter's full traceback text.
type ExecutionError struct {
	Script    string
	Line      int
	Traceback string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("gallerygen: execution error in %s (block at line %d):\n%s", e.Script, e.Line, e.Traceback)
}

// ArtifactError reports a missing or unproducible output artifact, such as
// an image a scraper expected to find. Always build-fatal: it signals a
// tool defect or a misconfigured scraper, not a bad example.
type ArtifactError struct {
	Script string
	Msg    string
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("gallerygen: artifact error for %s: %s", e.Script, e.Msg)
}
