package domain

import "strings"

// Task is one to-do entry ("title") with its own checklist. Done is derived
// state: the backend stores it, but the client recomputes it from checklist
// items after every item mutation and pushes the result back.
type Task struct {
	ID    int64
	Title string
	Done  bool
}

// ChecklistItem is one line item within a task, independently completable.
type ChecklistItem struct {
	ID          int64
	TaskID      int64
	Description string
	Done        bool
}

// NewTaskTitle validates a task title from the add or rename forms.
func NewTaskTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", ErrInvalidTitle
	}
	return title, nil
}

// NewItemDescription validates a checklist item description.
func NewItemDescription(raw string) (string, error) {
	desc := strings.TrimSpace(raw)
	if desc == "" {
		return "", ErrInvalidDescription
	}
	return desc, nil
}

// FilterBlank drops whitespace-only entries while preserving order. Kept
// entries are passed through untrimmed, matching the creation payload the
// backend expects.
func FilterBlank(entries []string) []string {
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// AllComplete is the single derived-completion function: true only when the
// checklist is non-empty and every item is done. An empty checklist is never
// considered complete.
func AllComplete(items []ChecklistItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if !item.Done {
			return false
		}
	}
	return true
}

// Partition splits tasks into ongoing and completed, preserving input order
// within each subset.
func Partition(tasks []Task) (ongoing, completed []Task) {
	for _, task := range tasks {
		if task.Done {
			completed = append(completed, task)
		} else {
			ongoing = append(ongoing, task)
		}
	}
	return ongoing, completed
}
