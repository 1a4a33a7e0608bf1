package task

import "errors"

// Error variables for task operations.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrTasksFileEmpty     = errors.New("tasks_file cannot be empty")
	ErrTasksFileRead      = errors.New("cannot read tasks file")
	ErrTasksFileWrite     = errors.New("cannot write tasks file")
	ErrTasksFileLock      = errors.New("cannot lock tasks file")
	ErrTasksFileInvalid   = errors.New("invalid tasks file")
	ErrTaskNotFound       = errors.New("task not found")
	ErrTitleRequired      = errors.New("task title is required")
	ErrInvalidPriority    = errors.New("invalid priority (must be an integer between 0 and 255)")
)
