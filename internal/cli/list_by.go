package cli

import (
	"context"
	"errors"

	flag "github.com/spf13/pflag"

	"tt/internal/task"
)

// ListByProjectCmd returns the list-by-project command.
func ListByProjectCmd(store *task.Store) *Command {
	fs := flag.NewFlagSet("list-by-project", flag.ContinueOnError)
	fs.String("project", "", "Project to match (exact, case-sensitive)")
	fs.Bool("json", false, "Output as JSON array")

	return &Command{
		Flags: fs,
		Usage: "list-by-project --project <name> [flags]",
		Short: "List tasks filtered by project",
		Long: `List tasks whose project exactly equals the given name.

The match is case-sensitive and results keep stored order.

Examples:
  tt list-by-project --project work
  tt list-by-project --project "" --json`,
		Exec: func(_ context.Context, io *IO, _ []string) error {
			if !fs.Changed("project") {
				return errProjectRequired
			}

			project, _ := fs.GetString("project")
			jsonOutput, _ := fs.GetBool("json")

			return execListFiltered(io, store, jsonOutput, func(tasks []task.Task) []task.Task {
				return task.FindByProject(tasks, project)
			})
		},
	}
}

// ListByStatusCmd returns the list-by-status command.
func ListByStatusCmd(store *task.Store) *Command {
	fs := flag.NewFlagSet("list-by-status", flag.ContinueOnError)
	fs.String("status", "", "Status to match (exact, case-sensitive)")
	fs.Bool("json", false, "Output as JSON array")

	return &Command{
		Flags: fs,
		Usage: "list-by-status --status <name> [flags]",
		Short: "List tasks filtered by status",
		Long: `List tasks whose status exactly equals the given name.

Statuses are free-form, so the filter matches whatever labels were
stored, case-sensitively. Results keep stored order.

Examples:
  tt list-by-status --status todo
  tt list-by-status --status in-progress --json`,
		Exec: func(_ context.Context, io *IO, _ []string) error {
			if !fs.Changed("status") {
				return errStatusRequired
			}

			status, _ := fs.GetString("status")
			jsonOutput, _ := fs.GetBool("json")

			return execListFiltered(io, store, jsonOutput, func(tasks []task.Task) []task.Task {
				return task.FindByStatus(tasks, status)
			})
		},
	}
}

// ListByPriorityCmd returns the list-by-priority command.
func ListByPriorityCmd(store *task.Store) *Command {
	fs := flag.NewFlagSet("list-by-priority", flag.ContinueOnError)
	fs.String("priority", "", "Priority to match (0-255)")
	fs.Bool("json", false, "Output as JSON array")

	return &Command{
		Flags: fs,
		Usage: "list-by-priority --priority <n> [flags]",
		Short: "List tasks filtered by priority",
		Long: `List tasks whose priority equals the given value.

Examples:
  tt list-by-priority --priority 3
  tt list-by-priority --priority 0 --json`,
		Exec: func(_ context.Context, io *IO, _ []string) error {
			if !fs.Changed("priority") {
				return errPriorityRequired
			}

			raw, _ := fs.GetString("priority")

			priority, err := task.ParsePriority(raw)
			if err != nil {
				return err
			}

			jsonOutput, _ := fs.GetBool("json")

			return execListFiltered(io, store, jsonOutput, func(tasks []task.Task) []task.Task {
				return task.FindByPriority(tasks, priority)
			})
		},
	}
}

var (
	errProjectRequired  = errors.New("--project is required")
	errStatusRequired   = errors.New("--status is required")
	errPriorityRequired = errors.New("--priority is required")
)

func execListFiltered(io *IO, store *task.Store, jsonOutput bool, filter func([]task.Task) []task.Task) error {
	tasks, err := store.Load()
	if err != nil {
		return err
	}

	return printTasks(io, filter(tasks), jsonOutput)
}
