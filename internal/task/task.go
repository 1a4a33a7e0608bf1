// Package task implements the task collection: the data model, the pure
// query/update operations over it, and the JSON-file store that persists it.
//
// The collection is an ordered sequence of [Task]; insertion order is
// preserved and significant only for display. Titles act as the update/remove
// key but are NOT unique: adds never deduplicate, Remove drops every match,
// and UpdateTask edits the first match. Callers that care about ambiguity can
// check [CountByTitle] before mutating.
package task

import (
	"fmt"
	"strconv"
	"strings"
)

// Task is the sole entity. Every field is required in the persisted form.
type Task struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    uint8  `json:"priority"`
	Status      string `json:"status"`
	Project     string `json:"project"`
}

// New builds a Task from CLI-decoded string values.
//
// The priority arrives as a raw string and is parsed here so the same
// validation applies no matter which surface produced the value. Status and
// project are free-form labels; no closed set is enforced.
func New(title, description, rawPriority, status, project string) (Task, error) {
	if title == "" {
		return Task{}, ErrTitleRequired
	}

	priority, err := ParsePriority(rawPriority)
	if err != nil {
		return Task{}, err
	}

	return Task{
		Title:       title,
		Description: description,
		Priority:    priority,
		Status:      status,
		Project:     project,
	}, nil
}

// ParsePriority parses raw as an unsigned 8-bit integer (0-255).
func ParsePriority(raw string) (uint8, error) {
	n, err := strconv.ParseUint(raw, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPriority, raw)
	}

	return uint8(n), nil
}

// Add appends t to the collection unconditionally. Duplicate titles are
// permitted; Add never fails, only persistence can.
func Add(tasks []Task, t Task) []Task {
	return append(tasks, t)
}

// Remove drops every task whose title exactly equals title, not just the
// first. Zero matches is a no-op, not an error; the caller re-persists the
// unchanged collection either way. Returns the kept tasks in their original
// order and how many were removed.
func Remove(tasks []Task, title string) ([]Task, int) {
	kept := make([]Task, 0, len(tasks))
	removed := 0

	for _, t := range tasks {
		if t.Title == title {
			removed++

			continue
		}

		kept = append(kept, t)
	}

	return kept, removed
}

// FindByProject returns the order-preserving subsequence of tasks whose
// project exactly equals project (case-sensitive).
func FindByProject(tasks []Task, project string) []Task {
	var out []Task

	for _, t := range tasks {
		if t.Project == project {
			out = append(out, t)
		}
	}

	return out
}

// FindByStatus returns the order-preserving subsequence of tasks whose
// status exactly equals status (case-sensitive).
func FindByStatus(tasks []Task, status string) []Task {
	var out []Task

	for _, t := range tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}

	return out
}

// FindByPriority returns the order-preserving subsequence of tasks whose
// priority equals priority.
func FindByPriority(tasks []Task, priority uint8) []Task {
	var out []Task

	for _, t := range tasks {
		if t.Priority == priority {
			out = append(out, t)
		}
	}

	return out
}

// Search returns every task whose title or description contains query as a
// case-insensitive substring. An empty query matches every task.
func Search(tasks []Task, query string) []Task {
	q := strings.ToLower(query)

	var out []Task

	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Title), q) || strings.Contains(strings.ToLower(t.Description), q) {
			out = append(out, t)
		}
	}

	return out
}

// CountByTitle returns how many tasks have exactly the given title.
func CountByTitle(tasks []Task, title string) int {
	count := 0

	for _, t := range tasks {
		if t.Title == title {
			count++
		}
	}

	return count
}

// UpdateOptions carries the optional field changes for [UpdateTask].
// Nil fields are left unchanged. Priority is the raw string form so the
// 0-255 validation lives in one place (see [ParsePriority]).
type UpdateOptions struct {
	Description *string
	Priority    *string
	Status      *string
	Project     *string
}

// UpdateTask applies opts to the first task whose title equals title,
// mutating the collection in place.
//
// All supplied fields are validated before any of them is assigned, so a bad
// priority leaves the collection untouched. Zero supplied fields is a valid
// no-op. Returns [ErrTaskNotFound] if no task matches, [ErrInvalidPriority]
// if a supplied priority does not parse.
func UpdateTask(tasks []Task, title string, opts UpdateOptions) error {
	idx := -1

	for i := range tasks {
		if tasks[i].Title == title {
			idx = i

			break
		}
	}

	if idx == -1 {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, title)
	}

	// Validate everything first: a rejected field must not leave the task
	// half-updated.
	var priority uint8

	if opts.Priority != nil {
		p, err := ParsePriority(*opts.Priority)
		if err != nil {
			return err
		}

		priority = p
	}

	t := &tasks[idx]

	if opts.Description != nil {
		t.Description = *opts.Description
	}

	if opts.Priority != nil {
		t.Priority = priority
	}

	if opts.Status != nil {
		t.Status = *opts.Status
	}

	if opts.Project != nil {
		t.Project = *opts.Project
	}

	return nil
}
