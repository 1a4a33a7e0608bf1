package cli

import (
	"context"
	"encoding/json"
	"fmt"

	flag "github.com/spf13/pflag"

	"tt/internal/task"
)

// PrintConfigCmd returns the print-config command.
func PrintConfigCmd(cfg task.Config) *Command {
	fs := flag.NewFlagSet("print-config", flag.ContinueOnError)
	fs.Bool("json", false, "Output as JSON object")

	return &Command{
		Flags: fs,
		Usage: "print-config [flags]",
		Short: "Show resolved configuration",
		Long:  "Display the effective configuration and which layers supplied it.",
		Exec: func(_ context.Context, io *IO, _ []string) error {
			jsonOutput, _ := fs.GetBool("json")

			return execPrintConfig(io, cfg, jsonOutput)
		},
	}
}

// configJSON is the JSON representation of the resolved configuration.
type configJSON struct {
	EffectiveCwd  string `json:"effective_cwd"`
	TasksFile     string `json:"tasks_file"`
	HistoryFile   string `json:"history_file,omitempty"`
	GlobalConfig  string `json:"global_config,omitempty"`
	ProjectConfig string `json:"project_config,omitempty"`
	EnvOverride   string `json:"env_override,omitempty"`
	FlagOverride  string `json:"flag_override,omitempty"`
}

func execPrintConfig(io *IO, cfg task.Config, jsonOutput bool) error {
	if jsonOutput {
		data, err := json.MarshalIndent(configJSON{
			EffectiveCwd:  cfg.EffectiveCwd,
			TasksFile:     cfg.TasksFileAbs,
			HistoryFile:   cfg.HistoryFileAbs,
			GlobalConfig:  cfg.Sources.Global,
			ProjectConfig: cfg.Sources.Project,
			EnvOverride:   cfg.Sources.Env,
			FlagOverride:  cfg.Sources.Flag,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}

		io.Println(string(data))

		return nil
	}

	io.Println("effective_cwd=" + cfg.EffectiveCwd)
	io.Println("tasks_file=" + cfg.TasksFileAbs)

	if cfg.HistoryFileAbs != "" {
		io.Println("history_file=" + cfg.HistoryFileAbs)
	}

	io.Println("")
	io.Println("# sources")

	if cfg.Sources == (task.ConfigSources{}) {
		io.Println("(defaults only)")

		return nil
	}

	if cfg.Sources.Global != "" {
		io.Println("global_config=" + cfg.Sources.Global)
	}

	if cfg.Sources.Project != "" {
		io.Println("project_config=" + cfg.Sources.Project)
	}

	if cfg.Sources.Env != "" {
		io.Println("env_override=" + cfg.Sources.Env)
	}

	if cfg.Sources.Flag != "" {
		io.Println("flag_override=" + cfg.Sources.Flag)
	}

	return nil
}
