package cli

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"tt/internal/task"
)

// UpdateCmd returns the update command.
func UpdateCmd(store *task.Store) *Command {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	fs.String("description", "", "New description")
	fs.String("priority", "", "New priority (0-255)")
	fs.String("status", "", "New status")
	fs.String("project", "", "New project")

	return &Command{
		Flags: fs,
		Usage: "update <title> [flags]",
		Short: "Update the first task matching a title",
		Long: `Update fields of the first task whose title exactly equals <title>.

Only the fields given as flags change; the rest keep their values. An
explicitly empty value clears the field. Supplying no flags is a valid
no-op that still rewrites the collection. When several tasks share the
title, only the first (oldest) one is updated and a warning is printed.

The update is applied atomically: if any supplied value is invalid,
no field changes.

Examples:
  tt update "Write report" --status done
  tt update "Write report" --priority 1 --project urgent`,
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execUpdate(io, store, fs, args)
		},
	}
}

var errUpdateArgs = errors.New("update requires exactly 1 argument: <title>")

func execUpdate(io *IO, store *task.Store, fs *flag.FlagSet, args []string) error {
	if len(args) != 1 {
		return errUpdateArgs
	}

	title := args[0]

	var opts task.UpdateOptions

	if fs.Changed("description") {
		v, _ := fs.GetString("description")
		opts.Description = &v
	}

	if fs.Changed("priority") {
		v, _ := fs.GetString("priority")
		opts.Priority = &v
	}

	if fs.Changed("status") {
		v, _ := fs.GetString("status")
		opts.Status = &v
	}

	if fs.Changed("project") {
		v, _ := fs.GetString("project")
		opts.Project = &v
	}

	err := store.Mutate(func(tasks []task.Task) ([]task.Task, error) {
		if n := task.CountByTitle(tasks, title); n > 1 {
			io.Warn(
				fmt.Sprintf("%d tasks titled %q", n, title),
				"only the first one is updated; rename the others to address them individually",
			)
		}

		if err := task.UpdateTask(tasks, title, opts); err != nil {
			return nil, err
		}

		return tasks, nil
	})
	if err != nil {
		return err
	}

	io.Println("Task updated successfully!")

	return nil
}
