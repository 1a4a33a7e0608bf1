package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"tt/internal/task"
)

// printTasks renders a result set, numbered in stored order, or as a JSON
// array when jsonOutput is set.
//
// In text mode an empty result prints "No tasks found." to stderr so stdout
// stays clean for piping. In JSON mode an empty result is the empty array.
func printTasks(o *IO, tasks []task.Task, jsonOutput bool) error {
	if jsonOutput {
		if tasks == nil {
			tasks = []task.Task{}
		}

		data, err := json.Marshal(tasks)
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}

		o.Println(string(data))

		return nil
	}

	if len(tasks) == 0 {
		o.ErrPrintln("No tasks found.")

		return nil
	}

	for i, t := range tasks {
		o.Println(formatTaskLine(i+1, t))
	}

	return nil
}

// formatTaskLine renders one task as a single line:
//
//	1. [todo] p3 Write report (work): Draft the quarterly report
//
// The position is 1-based and reflects stored order, not an identifier.
func formatTaskLine(position int, t task.Task) string {
	var builder strings.Builder

	builder.WriteString(strconv.Itoa(position))
	builder.WriteString(". [")
	builder.WriteString(t.Status)
	builder.WriteString("] p")
	builder.WriteString(strconv.Itoa(int(t.Priority)))
	builder.WriteString(" ")
	builder.WriteString(t.Title)

	if t.Project != "" {
		builder.WriteString(" (")
		builder.WriteString(t.Project)
		builder.WriteString(")")
	}

	if t.Description != "" {
		builder.WriteString(": ")
		builder.WriteString(t.Description)
	}

	return builder.String()
}
