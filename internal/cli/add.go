package cli

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"tt/internal/task"
)

const addArgCount = 5

// AddCmd returns the add command.
func AddCmd(store *task.Store) *Command {
	return &Command{
		Flags: flag.NewFlagSet("add", flag.ContinueOnError),
		Usage: "add <title> <description> <priority> <status> <project>",
		Short: "Add a new task",
		Long: `Add a new task to the collection.

All five values are positional and required (quote values that contain
spaces). Priority is an integer between 0 and 255. Status and project
are free-form labels; no fixed set is enforced.

Titles are not unique: the task is appended even when the title already
exists, with a warning, since remove and update match by title.

Examples:
  tt add "Write report" "Draft the quarterly report" 3 todo work
  tt add "Water plants" "" 7 someday home`,
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execAdd(io, store, args)
		},
	}
}

var errAddArgs = errors.New("add requires exactly 5 arguments: <title> <description> <priority> <status> <project>")

func execAdd(io *IO, store *task.Store, args []string) error {
	if len(args) != addArgCount {
		return errAddArgs
	}

	t, err := task.New(args[0], args[1], args[2], args[3], args[4])
	if err != nil {
		return err
	}

	err = store.Mutate(func(tasks []task.Task) ([]task.Task, error) {
		if n := task.CountByTitle(tasks, t.Title); n > 0 {
			io.Warn(
				fmt.Sprintf("%d task(s) titled %q already exist", n, t.Title),
				"remove and update match by title; pick a distinct title to avoid ambiguity",
			)
		}

		return task.Add(tasks, t), nil
	})
	if err != nil {
		return err
	}

	io.Println("Task added successfully!")

	return nil
}
