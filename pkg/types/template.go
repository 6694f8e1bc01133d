package types

import "strings"

// TaskTemplate is a reusable task blueprint. Applying it to a farm creates a
// Task with the template's title, type, and priority.
type TaskTemplate struct {
	Record
	Name     string `json:"name"`
	Title    string `json:"title,omitempty"`
	Type     string `json:"type"`
	Priority string `json:"priority,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// TaskTitle returns the title a task created from this template gets.
func (t *TaskTemplate) TaskTitle() string {
	if strings.TrimSpace(t.Title) != "" {
		return t.Title
	}
	return t.Name
}

func (t *TaskTemplate) Validate() error {
	v := NewValidationError("task template")
	if strings.TrimSpace(t.Name) == "" {
		v.Add("name", "template name is required")
	}
	if !oneOf(t.Type, TaskTypes) {
		v.Add("type", "task type is required")
	}
	if t.Priority != "" && !oneOf(t.Priority, Priorities) {
		v.Add("priority", "priority must be one of low, medium, high")
	}
	return v.OrNil()
}
