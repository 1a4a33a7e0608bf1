package cli_test

import (
	"fmt"
	"sync"
	"testing"

	"tt/internal/cli"
)

// TestTaskLifecycle drives a full add, list, search, update, remove workflow
// through the CLI and checks the persisted state after each step.
func TestTaskLifecycle(t *testing.T) {
	t.Parallel()

	h := cli.NewCLI(t)

	h.MustRun("add", "Design schema", "Sketch the tasks file layout", "4", "todo", "tracker")
	h.MustRun("add", "Implement API", "Wire the store into the CLI", "5", "todo", "tracker")
	h.MustRun("add", "Write docs", "Document every command", "2", "todo", "tracker")

	out := h.MustRun("list")
	for _, want := range []string{"Design schema", "Implement API", "Write docs"} {
		cli.AssertContains(t, out, want)
	}

	out = h.MustRun("search", "store")
	cli.AssertContains(t, out, "Implement API")
	cli.AssertNotContains(t, out, "Write docs")

	h.MustRun("update", "Implement API", "--status", "done")

	tasks := h.ReadTasks()
	if got, want := tasks[1].Status, "done"; got != want {
		t.Fatalf("tasks[1].Status=%q, want=%q", got, want)
	}

	out = h.MustRun("list-by-status", "--status", "done")
	cli.AssertContains(t, out, "Implement API")
	cli.AssertNotContains(t, out, "Design schema")

	h.MustRun("remove", "Write docs")

	tasks = h.ReadTasks()
	if got, want := len(tasks), 2; got != want {
		t.Fatalf("len(tasks)=%d, want=%d", got, want)
	}

	out = h.MustRun("list")
	cli.AssertNotContains(t, out, "Write docs")
}

func TestConcurrentTaskAdds(t *testing.T) {
	t.Parallel()

	h := cli.NewCLI(t)

	const numGoroutines = 5

	failures := addTasksConcurrently(t, h, numGoroutines)

	for _, failure := range failures {
		t.Errorf("goroutine failed with exit code %d: stderr=%s", failure.code, failure.stderr)
	}

	tasks := h.ReadTasks()
	if got, want := len(tasks), numGoroutines; got != want {
		t.Fatalf("len(tasks)=%d, want=%d", got, want)
	}

	seen := make(map[string]bool)
	for _, added := range tasks {
		seen[added.Title] = true
	}

	for i := range numGoroutines {
		title := fmt.Sprintf("Concurrent task %d", i)
		if !seen[title] {
			t.Errorf("task %q should have survived the concurrent adds", title)
		}
	}
}

type addResult struct {
	stderr string
	code   int
}

func addTasksConcurrently(t *testing.T, h *cli.CLI, count int) []addResult {
	t.Helper()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures = make([]addResult, 0)
	)

	wg.Add(count)

	for i := range count {
		go func() {
			defer wg.Done()

			title := fmt.Sprintf("Concurrent task %d", i)

			_, stderr, exitCode := h.Run("add", title, "", "1", "todo", "stress")
			if exitCode != 0 {
				mu.Lock()
				failures = append(failures, addResult{stderr, exitCode})
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	return failures
}
