package types

import "strings"

// Task types.
const (
	TaskWatering    = "watering"
	TaskFertilizing = "fertilizing"
	TaskHarvesting  = "harvesting"
	TaskPlanting    = "planting"
	TaskMaintenance = "maintenance"
	TaskInspection  = "inspection"
)

// TaskTypes lists the accepted task types.
var TaskTypes = []string{TaskWatering, TaskFertilizing, TaskHarvesting, TaskPlanting, TaskMaintenance, TaskInspection}

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Priorities lists the accepted task priorities.
var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh}

// Task is a scheduled piece of farm work. CropID is nil for general farm
// tasks; a CropID whose crop no longer exists is also treated as general.
type Task struct {
	Record
	FarmID    int    `json:"farmId"`
	CropID    *int   `json:"cropId"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	DueDate   string `json:"dueDate"`
	Priority  string `json:"priority"`
	Completed bool   `json:"completed"`
}

// Validate applies the task form rules.
func (t *Task) Validate() error {
	v := NewValidationError("task")
	if t.FarmID <= 0 {
		v.Add("farmId", "farm is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		v.Add("title", "task title is required")
	}
	if !oneOf(t.Type, TaskTypes) {
		v.Add("type", "task type is required")
	}
	requireDate(v, "dueDate", t.DueDate, "due date")
	if t.Priority != "" && !oneOf(t.Priority, Priorities) {
		v.Add("priority", "priority must be one of low, medium, high")
	}
	return v.OrNil()
}
