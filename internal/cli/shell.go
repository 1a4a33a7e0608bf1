package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/shlex"
	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"tt/internal/task"
)

// ShellCmd returns the shell command.
func ShellCmd(store *task.Store, cfg task.Config) *Command {
	return &Command{
		Flags: flag.NewFlagSet("shell", flag.ContinueOnError),
		Usage: "shell",
		Short: "Interactive shell with history and completion",
		Long: `Start an interactive shell accepting the same commands as the
top-level CLI (except shell itself). Lines are split like a shell, so
quoted arguments work:

  tt> add "Write report" "Draft the quarterly report" 3 todo work
  tt> list
  tt> exit

Line editing, tab completion and persistent history (history_file in
print-config) are available. Ctrl-C, Ctrl-D or 'exit' leave the shell.`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			return execShell(ctx, o, store, cfg)
		},
	}
}

func execShell(ctx context.Context, o *IO, store *task.Store, cfg task.Config) error {
	rl := liner.NewLiner()
	defer rl.Close()

	rl.SetCtrlCAborts(true)
	rl.SetCompleter(shellCompleter(commandSet(store, cfg)))

	loadShellHistory(rl, cfg.HistoryFileAbs)
	defer saveShellHistory(rl, cfg.HistoryFileAbs)

	o.Println("tt shell - type 'help' for commands, 'exit' to leave")

	for {
		if ctx.Err() != nil {
			return nil
		}

		input, err := rl.Prompt("tt> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				o.Println("Bye!")

				return nil
			}

			return fmt.Errorf("reading input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		rl.AppendHistory(input)

		if done := dispatchShellLine(ctx, o, store, cfg, input); done {
			o.Println("Bye!")

			return nil
		}
	}
}

// dispatchShellLine parses and executes one shell input line. Returns true
// when the shell should exit.
//
// Commands are constructed fresh per line so flag state never leaks from
// one input into the next.
func dispatchShellLine(ctx context.Context, o *IO, store *task.Store, cfg task.Config, input string) bool {
	args, err := shlex.Split(input)
	if err != nil {
		o.ErrPrintln("error:", err)

		return false
	}

	if len(args) == 0 {
		return false
	}

	switch args[0] {
	case "exit", "quit", "q":
		return true
	case "help", "?":
		for _, c := range commandSet(store, cfg) {
			o.Println(c.HelpLine())
		}

		o.Printf("  %-42s %s\n", "help", "Show this help")
		o.Printf("  %-42s %s\n", "exit", "Leave the shell")

		return false
	}

	for _, c := range commandSet(store, cfg) {
		if c.Name() == args[0] {
			_ = c.Run(ctx, o, args[1:])

			return false
		}
	}

	o.ErrPrintln("unknown command:", args[0], "(type 'help' for commands)")

	return false
}

// shellCompleter completes command names at the start of the line.
func shellCompleter(commands []*Command) liner.Completer {
	names := make([]string, 0, len(commands)+2)

	for _, c := range commands {
		names = append(names, c.Name())
	}

	names = append(names, "help", "exit")

	return func(line string) []string {
		var out []string

		for _, name := range names {
			if strings.HasPrefix(name, strings.ToLower(line)) {
				out = append(out, name)
			}
		}

		return out
	}
}

func loadShellHistory(rl *liner.State, path string) {
	if path == "" {
		return
	}

	if f, err := os.Open(path); err == nil {
		_, _ = rl.ReadHistory(f)
		_ = f.Close()
	}
}

func saveShellHistory(rl *liner.State, path string) {
	if path == "" {
		return
	}

	if f, err := os.Create(path); err == nil {
		_, _ = rl.WriteHistory(f)
		_ = f.Close()
	}
}
