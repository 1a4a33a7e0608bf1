package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tt/internal/task"
)

// CLI provides a clean interface for running CLI commands in tests.
// It manages a temp directory and environment variables.
type CLI struct {
	t   *testing.T
	Dir string
	Env map[string]string
}

// NewCLI creates a new test CLI with a temp directory.
func NewCLI(t *testing.T) *CLI {
	t.Helper()

	return &CLI{
		t:   t,
		Dir: t.TempDir(),
		Env: map[string]string{},
	}
}

// Run executes the CLI with the given args and returns stdout, stderr, and exit code.
// Args should not include "tt" or "--cwd" - those are added automatically.
func (r *CLI) Run(args ...string) (string, string, int) {
	var outBuf, errBuf bytes.Buffer

	fullArgs := append([]string{"tt", "--cwd", r.Dir}, args...)
	code := Run(nil, &outBuf, &errBuf, fullArgs, r.Env, nil)

	return outBuf.String(), errBuf.String(), code
}

// MustRun executes the CLI and fails the test if the command returns non-zero.
// Returns trimmed stdout on success.
func (r *CLI) MustRun(args ...string) string {
	r.t.Helper()

	stdout, stderr, code := r.Run(args...)
	if code != 0 {
		r.t.Fatalf("command %v failed with exit code %d\nstderr: %s", args, code, stderr)
	}

	return strings.TrimSpace(stdout)
}

// MustFail executes the CLI and fails the test if the command succeeds.
// Also fails if stdout is not empty. Returns trimmed stderr.
func (r *CLI) MustFail(args ...string) string {
	r.t.Helper()

	stdout, stderr, code := r.Run(args...)
	if code == 0 {
		r.t.Fatalf("command %v should have failed but succeeded\nstdout: %s", args, stdout)
	}

	if stdout != "" {
		r.t.Fatalf("command %v failed but stdout should be empty\nstdout: %s", args, stdout)
	}

	return strings.TrimSpace(stderr)
}

// TasksPath returns the path to the default tasks file.
func (r *CLI) TasksPath() string {
	return filepath.Join(r.Dir, "tasks.json")
}

// ReadTasks decodes the tasks file. Fails the test if the file is missing
// or not a valid task array.
func (r *CLI) ReadTasks() []task.Task {
	r.t.Helper()

	data, err := os.ReadFile(r.TasksPath())
	if err != nil {
		r.t.Fatalf("failed to read tasks file: %v", err)
	}

	var tasks []task.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		r.t.Fatalf("failed to decode tasks file: %v", err)
	}

	return tasks
}

// ReadTasksRaw returns the raw contents of the tasks file.
func (r *CLI) ReadTasksRaw() string {
	r.t.Helper()

	data, err := os.ReadFile(r.TasksPath())
	if err != nil {
		r.t.Fatalf("failed to read tasks file: %v", err)
	}

	return string(data)
}

// WriteTasks writes raw content to the tasks file.
func (r *CLI) WriteTasks(content string) {
	r.t.Helper()

	err := os.WriteFile(r.TasksPath(), []byte(content), 0o600)
	if err != nil {
		r.t.Fatalf("failed to write tasks file: %v", err)
	}
}

// AssertContains fails the test if content doesn't contain substr.
func AssertContains(t *testing.T, content, substr string) {
	t.Helper()

	if !strings.Contains(content, substr) {
		t.Errorf("content should contain %q\ncontent:\n%s", substr, content)
	}
}

// AssertNotContains fails the test if content contains substr.
func AssertNotContains(t *testing.T, content, substr string) {
	t.Helper()

	if strings.Contains(content, substr) {
		t.Errorf("content should NOT contain %q\ncontent:\n%s", substr, content)
	}
}
