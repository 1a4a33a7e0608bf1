package task

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	TasksFile   string `json:"tasks_file"`
	HistoryFile string `json:"history_file,omitempty"`

	// Resolved paths (computed, not serialized)
	EffectiveCwd   string `json:"-"` // Absolute working directory (from -C flag or os.Getwd)
	TasksFileAbs   string `json:"-"` // Absolute path to the tasks file
	HistoryFileAbs string `json:"-"` // Absolute path to the shell history file, empty if unavailable

	// Sources tracks where values came from (for diagnostics)
	Sources ConfigSources `json:"-"`
}

// ConfigSources tracks which config layers contributed values.
type ConfigSources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project or explicit config if loaded, empty otherwise
	Env     string // Environment variable name if it overrode tasks_file
	Flag    string // Flag name if it overrode tasks_file
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		TasksFile: "tasks.json",
	}
}

// ConfigFileName is the default project config file name.
const ConfigFileName = ".tt.json"

// EnvTasksFile is the environment variable that overrides tasks_file.
// A .env file in the working directory is loaded before the environment is
// read, so the override works per-project without exporting.
const EnvTasksFile = "TT_TASKS_FILE"

// historyFileName is the default shell history file name (under $HOME).
const historyFileName = ".tt_history"

// getGlobalConfigPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/tt/config.json if set, otherwise ~/.config/tt/config.json.
// Returns empty string if home directory cannot be determined.
func getGlobalConfigPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "tt", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "tt", "config.json")
	}

	return ""
}

// LoadConfigInput holds the inputs for LoadConfig.
type LoadConfigInput struct {
	WorkDirOverride   string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath        string            // -c/--config flag value
	TasksFileOverride string            // --tasks-file flag value; empty means no override
	Env               map[string]string // environment variables
}

// LoadConfig loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config (~/.config/tt/config.json or $XDG_CONFIG_HOME/tt/config.json)
// 3. Project config file at default location (.tt.json, if exists)
// 4. Explicit config file via ConfigPath (if non-empty)
// 5. TT_TASKS_FILE environment variable
// 6. CLI overrides.
//
// All paths in the returned Config are resolved to absolute paths.
func LoadConfig(input LoadConfigInput) (Config, error) {
	// Resolve effective working directory
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := DefaultConfig()

	// Load global config if it exists
	globalCfg, globalPath, err := loadGlobalConfig(input.Env)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Global = globalPath
	cfg = mergeConfig(cfg, globalCfg)

	// Load project/explicit config file
	projectCfg, projectPath, err := loadProjectConfig(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Project = projectPath
	cfg = mergeConfig(cfg, projectCfg)

	// Apply environment override
	if envTasksFile := input.Env[EnvTasksFile]; envTasksFile != "" {
		cfg.TasksFile = envTasksFile
		cfg.Sources.Env = EnvTasksFile
	}

	// Apply CLI overrides
	if input.TasksFileOverride != "" {
		cfg.TasksFile = input.TasksFileOverride
		cfg.Sources.Flag = "--tasks-file"
	}

	// Validate
	validateErr := validateConfig(cfg)
	if validateErr != nil {
		return Config{}, validateErr
	}

	// Resolve all paths to absolute
	cfg.EffectiveCwd = workDir

	if filepath.IsAbs(cfg.TasksFile) {
		cfg.TasksFileAbs = cfg.TasksFile
	} else {
		cfg.TasksFileAbs = filepath.Join(workDir, cfg.TasksFile)
	}

	cfg.HistoryFileAbs = resolveHistoryFile(cfg.HistoryFile, workDir, input.Env)

	return cfg, nil
}

// resolveHistoryFile picks the shell history location: the configured path
// (relative to the working directory) or ~/.tt_history. Returns empty when
// neither is available, which disables persistent history.
func resolveHistoryFile(configured, workDir string, env map[string]string) string {
	if configured != "" {
		if filepath.IsAbs(configured) {
			return configured
		}

		return filepath.Join(workDir, configured)
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, historyFileName)
	}

	return ""
}

// loadGlobalConfig loads the global user config file if it exists.
// Returns the config, the path if loaded, and any error.
func loadGlobalConfig(env map[string]string) (Config, string, error) {
	globalCfgPath := getGlobalConfigPath(env)
	if globalCfgPath == "" {
		return Config{}, "", nil
	}

	globalCfg, explicitEmpty, loaded, err := loadConfigFile(globalCfgPath, false)
	if err != nil {
		return Config{}, "", err
	}

	if !loaded {
		return Config{}, "", nil
	}

	if explicitEmpty["tasks_file"] {
		return Config{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, globalCfgPath, ErrTasksFileEmpty)
	}

	return globalCfg, globalCfgPath, nil
}

// loadProjectConfig loads the project config file (.tt.json) or an explicit config file.
// Returns the config, the path if loaded, and any error.
func loadProjectConfig(workDir, configPath string) (Config, string, error) {
	var cfgFile string

	var mustExist bool

	if configPath != "" {
		// Explicit config file - must exist
		cfgFile = configPath
		if !filepath.IsAbs(cfgFile) {
			cfgFile = filepath.Join(workDir, cfgFile)
		}

		mustExist = true

		// Check existence first to provide a clear "not found" error
		_, statErr := os.Stat(cfgFile)
		if statErr != nil {
			return Config{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
		}
	} else {
		// Default project config file - optional
		cfgFile = filepath.Join(workDir, ConfigFileName)
		mustExist = false
	}

	fileCfg, explicitEmpty, loaded, err := loadConfigFile(cfgFile, mustExist)
	if err != nil {
		return Config{}, "", err
	}

	if !loaded {
		return Config{}, "", nil
	}

	if explicitEmpty["tasks_file"] {
		return Config{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, cfgFile, ErrTasksFileEmpty)
	}

	return fileCfg, cfgFile, nil
}

// loadConfigFile loads a config file. If mustExist is false, missing files return zero config.
// Returns the config, a map of explicitly empty fields, whether file was loaded, and any error.
func loadConfigFile(path string, mustExist bool) (Config, map[string]bool, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, nil, false, nil
		}

		if mustExist {
			return Config{}, nil, false, fmt.Errorf("%w: %s", ErrConfigFileRead, path)
		}

		return Config{}, nil, false, nil
	}

	cfg, explicitEmpty, parseErr := parseConfig(data)
	if parseErr != nil {
		return Config{}, nil, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, parseErr)
	}

	return cfg, explicitEmpty, true, nil
}

func parseConfig(data []byte) (Config, map[string]bool, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, nil, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	unmarshalErr := json.Unmarshal(standardized, &cfg)
	if unmarshalErr != nil {
		return Config{}, nil, fmt.Errorf("invalid JSON: %w", unmarshalErr)
	}

	// Check which fields were explicitly set to empty
	var raw map[string]any

	_ = json.Unmarshal(standardized, &raw)

	explicitEmpty := make(map[string]bool)

	if val, exists := raw["tasks_file"]; exists {
		if str, ok := val.(string); ok && str == "" {
			explicitEmpty["tasks_file"] = true
		}
	}

	return cfg, explicitEmpty, nil
}

func mergeConfig(base, overlay Config) Config {
	if overlay.TasksFile != "" {
		base.TasksFile = overlay.TasksFile
	}

	if overlay.HistoryFile != "" {
		base.HistoryFile = overlay.HistoryFile
	}

	return base
}

func validateConfig(cfg Config) error {
	if cfg.TasksFile == "" {
		return ErrTasksFileEmpty
	}

	return nil
}
