package executor

import (
	"bufio"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

//go:embed driver.py
var driverSource []byte

// ExecResult is the outcome of running one code block.
type ExecResult struct {
	Stdout    string
	Failed    bool
	ErrMsg    string
	Traceback string
}

// Session is one interpreter conversation. The production implementation
// drives a child interpreter over a JSON-lines pipe; tests substitute a
// fake. A session is shared across the scripts of one build so that
// process-wide interpreter state behaves like it does for a reader pasting
// blocks into a console, with resetters scrubbing state between scripts.
type Session interface {
	// BeginScript discards the previous script's namespace and installs a
	// fresh one with the given argv, so scripts behave deterministically
	// regardless of the invoking command line.
	BeginScript(ctx context.Context, argv []string) error
	// Exec runs one code block in the current namespace. needsAsync marks
	// blocks requiring suspension-aware execution; the session drives them
	// to completion under a per-block cooperative runner.
	Exec(ctx context.Context, code string, line int, needsAsync bool) (ExecResult, error)
	// ScrapeFigures saves figures opened since the previous scrape as
	// numbered images <prefix>_<n> starting at start, returning their paths.
	ScrapeFigures(ctx context.Context, dir, prefix string, start int) ([]string, error)
	// Globals reports namespace bindings as name -> type module path.
	Globals(ctx context.Context) (map[string]string, error)
	// Reset scrubs one piece of process-global interpreter state.
	Reset(ctx context.Context, target string) error
	// Pid is the interpreter process id, for memory sampling.
	Pid() int
	Close() error
}

type request struct {
	Op     string   `json:"op"`
	Code   string   `json:"code,omitempty"`
	Line   int      `json:"line,omitempty"`
	Async  bool     `json:"async,omitempty"`
	Argv   []string `json:"argv,omitempty"`
	Dir    string   `json:"dir,omitempty"`
	Prefix string   `json:"prefix,omitempty"`
	Start  int      `json:"start,omitempty"`
	Target string   `json:"target,omitempty"`
}

type response struct {
	OK        bool              `json:"ok"`
	Stdout    string            `json:"stdout,omitempty"`
	Error     string            `json:"error,omitempty"`
	Traceback string            `json:"traceback,omitempty"`
	Images    []string          `json:"images,omitempty"`
	Globals   map[string]string `json:"globals,omitempty"`
}

// PythonSession runs code blocks in a persistent child interpreter via an
// embedded driver program.
type PythonSession struct {
	cmd    *exec.Cmd
	stdin  *json.Encoder
	stdout *bufio.Scanner
	// driverFile is removed on Close.
	driverFile string
}

// NewPythonSession materializes the driver, starts the interpreter and
// wires the protocol pipes. interpreter is the command plus fixed args,
// e.g. ["python3"]; workDir is where scripts nominally run (relative file
// output, fsdiff scraping).
func NewPythonSession(ctx context.Context, interpreter []string, workDir string) (*PythonSession, error) {
	if len(interpreter) == 0 {
		return nil, fmt.Errorf("no interpreter configured")
	}

	tmp, err := os.CreateTemp("", "gallerygen-driver-*.py")
	if err != nil {
		return nil, fmt.Errorf("write driver: %w", err)
	}
	if _, err := tmp.Write(driverSource); err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("write driver: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("write driver: %w", err)
	}

	args := append(append([]string{}, interpreter[1:]...), tmp.Name())
	cmd := exec.CommandContext(ctx, interpreter[0], args...)
	cmd.Dir = workDir
	cmd.Stderr = os.Stderr

	stdinPipe, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("driver stdin: %w", err)
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("driver stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start interpreter %q: %w", interpreter[0], err)
	}

	scanner := bufio.NewScanner(stdoutPipe)
	// Captured output for a whole block arrives as one JSON line.
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	return &PythonSession{
		cmd:        cmd,
		stdin:      json.NewEncoder(stdinPipe),
		stdout:     scanner,
		driverFile: tmp.Name(),
	}, nil
}

func (s *PythonSession) roundTrip(ctx context.Context, req request) (*response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.stdin.Encode(req); err != nil {
		return nil, fmt.Errorf("send %s request: %w", req.Op, err)
	}
	if !s.stdout.Scan() {
		if err := s.stdout.Err(); err != nil {
			return nil, fmt.Errorf("read %s response: %w", req.Op, err)
		}
		return nil, fmt.Errorf("interpreter exited during %s", req.Op)
	}
	var resp response
	if err := json.Unmarshal(s.stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", req.Op, err)
	}
	return &resp, nil
}

func (s *PythonSession) BeginScript(ctx context.Context, argv []string) error {
	if argv == nil {
		argv = []string{}
	}
	resp, err := s.roundTrip(ctx, request{Op: "begin_script", Argv: argv})
	if err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("begin_script: %s", resp.Error)
	}
	return nil
}

func (s *PythonSession) Exec(ctx context.Context, code string, line int, needsAsync bool) (ExecResult, error) {
	resp, err := s.roundTrip(ctx, request{Op: "exec", Code: code, Line: line, Async: needsAsync})
	if err != nil {
		return ExecResult{}, err
	}
	return ExecResult{
		Stdout:    resp.Stdout,
		Failed:    !resp.OK,
		ErrMsg:    resp.Error,
		Traceback: resp.Traceback,
	}, nil
}

func (s *PythonSession) ScrapeFigures(ctx context.Context, dir, prefix string, start int) ([]string, error) {
	resp, err := s.roundTrip(ctx, request{Op: "scrape", Dir: dir, Prefix: prefix, Start: start})
	if err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, fmt.Errorf("scrape figures: %s", resp.Error)
	}
	return resp.Images, nil
}

func (s *PythonSession) Globals(ctx context.Context) (map[string]string, error) {
	resp, err := s.roundTrip(ctx, request{Op: "globals"})
	if err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, fmt.Errorf("globals: %s", resp.Error)
	}
	return resp.Globals, nil
}

func (s *PythonSession) Reset(ctx context.Context, target string) error {
	resp, err := s.roundTrip(ctx, request{Op: "reset", Target: target})
	if err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("reset %s: %s", target, resp.Error)
	}
	return nil
}

func (s *PythonSession) Pid() int {
	if s.cmd.Process == nil {
		return 0
	}
	return s.cmd.Process.Pid
}

func (s *PythonSession) Close() error {
	_ = s.stdin.Encode(request{Op: "exit"})
	err := s.cmd.Wait()
	if s.driverFile != "" {
		_ = os.Remove(s.driverFile)
	}
	if err != nil {
		return fmt.Errorf("interpreter shutdown: %w", err)
	}
	return nil
}

// DriverPath is exposed for debugging sessions gone wrong.
func (s *PythonSession) DriverPath() string { return filepath.Clean(s.driverFile) }
