package cli

import (
	"context"
	"errors"

	flag "github.com/spf13/pflag"

	"tt/internal/task"
)

// SearchCmd returns the search command.
func SearchCmd(store *task.Store) *Command {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	fs.Bool("json", false, "Output as JSON array")

	return &Command{
		Flags: fs,
		Usage: "search <query> [flags]",
		Short: "Search tasks by title or description",
		Long: `List tasks whose title or description contains <query>.

Matching is case-insensitive and substring-based. An empty query
matches every task. Results keep stored order.

Examples:
  tt search report
  tt search "login bug" --json`,
		Exec: func(_ context.Context, io *IO, args []string) error {
			jsonOutput, _ := fs.GetBool("json")

			return execSearch(io, store, jsonOutput, args)
		},
	}
}

var errSearchArgs = errors.New("search requires exactly 1 argument: <query>")

func execSearch(io *IO, store *task.Store, jsonOutput bool, args []string) error {
	if len(args) != 1 {
		return errSearchArgs
	}

	tasks, err := store.Load()
	if err != nil {
		return err
	}

	return printTasks(io, task.Search(tasks, args[0]), jsonOutput)
}
