package cli_test

import (
	"testing"

	"tt/internal/cli"
)

func TestUpdateCommand(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name       string
		args       []string
		wantExit   int
		wantStderr string
		checkFile  func(t *testing.T, c *cli.CLI)
	}{
		{
			name:     "updates single field and keeps the rest",
			args:     []string{"update", "Write report", "--status", "done"},
			wantExit: 0,
			checkFile: func(t *testing.T, c *cli.CLI) {
				t.Helper()

				got := c.ReadTasks()[0]

				if want := "done"; got.Status != want {
					t.Errorf("status=%q, want=%q", got.Status, want)
				}

				if want := "Draft the quarterly report"; got.Description != want {
					t.Errorf("description=%q, want=%q (must be untouched)", got.Description, want)
				}

				if want := uint8(3); got.Priority != want {
					t.Errorf("priority=%d, want=%d (must be untouched)", got.Priority, want)
				}
			},
		},
		{
			name:     "updates all fields at once",
			args:     []string{"update", "Write report", "--description", "New text", "--priority", "7", "--status", "done", "--project", "archive"},
			wantExit: 0,
			checkFile: func(t *testing.T, c *cli.CLI) {
				t.Helper()

				got := c.ReadTasks()[0]

				if want := "New text"; got.Description != want {
					t.Errorf("description=%q, want=%q", got.Description, want)
				}

				if want := uint8(7); got.Priority != want {
					t.Errorf("priority=%d, want=%d", got.Priority, want)
				}

				if want := "archive"; got.Project != want {
					t.Errorf("project=%q, want=%q", got.Project, want)
				}
			},
		},
		{
			name:     "explicitly empty value clears the field",
			args:     []string{"update", "Write report", "--project", ""},
			wantExit: 0,
			checkFile: func(t *testing.T, c *cli.CLI) {
				t.Helper()

				if got, want := c.ReadTasks()[0].Project, ""; got != want {
					t.Errorf("project=%q, want=%q", got, want)
				}
			},
		},
		{
			name:     "no flags is a valid no-op",
			args:     []string{"update", "Write report"},
			wantExit: 0,
			checkFile: func(t *testing.T, c *cli.CLI) {
				t.Helper()

				if got, want := c.ReadTasks()[0].Status, "todo"; got != want {
					t.Errorf("status=%q, want=%q", got, want)
				}
			},
		},
		{
			name:       "error on unknown title",
			args:       []string{"update", "ghost", "--status", "done"},
			wantExit:   1,
			wantStderr: "error: task not found: ghost",
		},
		{
			name:       "error on invalid priority leaves task unchanged",
			args:       []string{"update", "Write report", "--description", "tried", "--priority", "1000"},
			wantExit:   1,
			wantStderr: "error: invalid priority",
			checkFile: func(t *testing.T, c *cli.CLI) {
				t.Helper()

				got := c.ReadTasks()[0]

				if want := "Draft the quarterly report"; got.Description != want {
					t.Errorf("description=%q, want=%q (failed update must not apply anything)", got.Description, want)
				}
			},
		},
		{
			name:       "error on missing title argument",
			args:       []string{"update"},
			wantExit:   1,
			wantStderr: "error: update requires exactly 1 argument",
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := cli.NewCLI(t)
			c.MustRun("add", "Write report", "Draft the quarterly report", "3", "todo", "work")

			stdout, stderr, exitCode := c.Run(tt.args...)

			if got, want := exitCode, tt.wantExit; got != want {
				t.Errorf("exitCode=%d, want=%d\nstdout: %s\nstderr: %s", got, want, stdout, stderr)
			}

			if tt.wantExit == 0 {
				cli.AssertContains(t, stdout, "Task updated successfully!")
			}

			if tt.wantStderr != "" {
				cli.AssertContains(t, stderr, tt.wantStderr)
			}

			if tt.checkFile != nil {
				tt.checkFile(t, c)
			}
		})
	}
}

func TestUpdateCommand_TargetsFirstOfDuplicates(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	c.MustRun("add", "same", "first", "1", "todo", "p")
	c.Run("add", "same", "second", "2", "todo", "p")

	stdout, stderr, exitCode := c.Run("update", "same", "--status", "done")

	if got, want := exitCode, 0; got != want {
		t.Errorf("exitCode=%d, want=%d\nstderr: %s", got, want, stderr)
	}

	cli.AssertContains(t, stdout, "Task updated successfully!")
	cli.AssertContains(t, stderr, `2 tasks titled "same"`)

	tasks := c.ReadTasks()

	if got, want := tasks[0].Status, "done"; got != want {
		t.Errorf("tasks[0].Status=%q, want=%q (first match must be updated)", got, want)
	}

	if got, want := tasks[1].Status, "todo"; got != want {
		t.Errorf("tasks[1].Status=%q, want=%q (later matches must be untouched)", got, want)
	}
}

func TestUpdateCommand_NotFoundDoesNotRewriteFile(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteTasks(`[{"title": "a", "description": "b", "priority": 1, "status": "todo", "project": "p", "extra": "kept"}]`)

	c.MustFail("update", "ghost", "--status", "done")

	// The raw file is untouched: a failed transform writes nothing, so even
	// the unknown key survives byte for byte.
	cli.AssertContains(t, c.ReadTasksRaw(), `"extra": "kept"`)
}
