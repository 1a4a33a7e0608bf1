package cli

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"tt/internal/task"
)

// RemoveCmd returns the remove command.
func RemoveCmd(store *task.Store) *Command {
	return &Command{
		Flags: flag.NewFlagSet("remove", flag.ContinueOnError),
		Usage: "remove <title>",
		Short: "Remove all tasks matching a title",
		Long: `Remove every task whose title exactly equals <title>.

Removing a title that matches nothing is not an error: the command
succeeds, prints a warning, and rewrites the collection unchanged.

Examples:
  tt remove "Write report"`,
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execRemove(io, store, args)
		},
	}
}

var errRemoveArgs = errors.New("remove requires exactly 1 argument: <title>")

func execRemove(io *IO, store *task.Store, args []string) error {
	if len(args) != 1 {
		return errRemoveArgs
	}

	title := args[0]

	err := store.Mutate(func(tasks []task.Task) ([]task.Task, error) {
		kept, removed := task.Remove(tasks, title)
		if removed == 0 {
			io.Warn(
				fmt.Sprintf("no task titled %q", title),
				"nothing was removed; run tt list to see existing titles",
			)
		}

		return kept, nil
	})
	if err != nil {
		return err
	}

	io.Println("Task removed successfully!")

	return nil
}
