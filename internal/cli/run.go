package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	flag "github.com/spf13/pflag"

	"tt/internal/fs"
	"tt/internal/task"
)

// Run is the main entry point. Returns exit code.
//
// args is the full argv including the program name, env the process
// environment as a map. sig, when non-nil, cancels the command context,
// which ends the interactive shell on Ctrl-C / SIGTERM.
func Run(_ io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sig <-chan os.Signal) int {
	o := NewIO(out, errOut)

	globals := flag.NewFlagSet("tt", flag.ContinueOnError)
	globals.SetInterspersed(false)
	globals.SetOutput(&strings.Builder{}) // discard pflag output

	var (
		workDir   = globals.StringP("cwd", "C", "", "run as if started in this directory")
		cfgPath   = globals.StringP("config", "c", "", "explicit config file (must exist)")
		tasksFile = globals.String("tasks-file", "", "tasks file path, overrides config")
		verbose   = globals.Bool("verbose", false, "debug logging on stderr")
		help      = globals.BoolP("help", "h", false, "show help")
	)

	if err := globals.Parse(args[1:]); err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sig != nil {
		go func() {
			select {
			case <-sig:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	logLevel := log.WarnLevel
	if *verbose {
		logLevel = log.DebugLevel
	}

	logger := log.NewWithOptions(errOut, log.Options{Level: logLevel, ReportTimestamp: false})

	cfg, err := task.LoadConfig(task.LoadConfigInput{
		WorkDirOverride:   *workDir,
		ConfigPath:        *cfgPath,
		TasksFileOverride: *tasksFile,
		Env:               env,
	})
	if err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	logger.Debug("config resolved",
		"cwd", cfg.EffectiveCwd,
		"tasks_file", cfg.TasksFileAbs,
	)

	store := task.NewStore(fs.NewReal(), cfg.TasksFileAbs, logger)

	commands := append(commandSet(store, cfg), ShellCmd(store, cfg))

	rest := globals.Args()

	if *help || len(rest) == 0 {
		o.Printf("%s", usageText(commands))

		return 0
	}

	name := rest[0]

	if name == "help" {
		return runHelp(o, commands, rest[1:])
	}

	for _, c := range commands {
		if c.Name() != name {
			continue
		}

		return o.Finish(c.Run(ctx, o, rest[1:]))
	}

	o.ErrPrintln("error: unknown command:", name)
	o.ErrPrintln()
	o.ErrPrintf("%s", usageText(commands))

	return 1
}

// runHelp implements "tt help [command]".
func runHelp(o *IO, commands []*Command, args []string) int {
	if len(args) == 0 {
		o.Printf("%s", usageText(commands))

		return 0
	}

	for _, c := range commands {
		if c.Name() == args[0] {
			c.PrintHelp(o)

			return 0
		}
	}

	o.ErrPrintln("error: unknown command:", args[0])

	return 1
}

// commandSet returns every command usable both from the top-level CLI and
// inside the interactive shell, in help order.
func commandSet(store *task.Store, cfg task.Config) []*Command {
	return []*Command{
		AddCmd(store),
		RemoveCmd(store),
		UpdateCmd(store),
		ListCmd(store),
		ListByProjectCmd(store),
		ListByStatusCmd(store),
		ListByPriorityCmd(store),
		SearchCmd(store),
		PrintConfigCmd(cfg),
	}
}

func usageText(commands []*Command) string {
	var b strings.Builder

	b.WriteString(`tt - file-backed task tracker

Usage: tt [options] <command> [args]

Options:
  -C, --cwd <dir>          Run as if started in <dir>
  -c, --config <file>      Use specified config file (must exist)
      --tasks-file <file>  Override the tasks file location
      --verbose            Debug logging on stderr
  -h, --help               Show help

Commands:
`)

	for _, c := range commands {
		b.WriteString(c.HelpLine())
		b.WriteByte('\n')
	}

	return b.String()
}
