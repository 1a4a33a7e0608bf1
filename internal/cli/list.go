package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"tt/internal/task"
)

// ListCmd returns the list command.
func ListCmd(store *task.Store) *Command {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.Bool("json", false, "Output as JSON array")

	return &Command{
		Flags: fs,
		Usage: "list [flags]",
		Short: "List all tasks",
		Long: `List every task in stored (insertion) order.

Examples:
  tt list
  tt list --json | jq '.[].title'`,
		Exec: func(_ context.Context, io *IO, _ []string) error {
			jsonOutput, _ := fs.GetBool("json")

			return execList(io, store, jsonOutput)
		},
	}
}

func execList(io *IO, store *task.Store, jsonOutput bool) error {
	tasks, err := store.Load()
	if err != nil {
		return err
	}

	return printTasks(io, tasks, jsonOutput)
}
