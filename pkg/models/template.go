package models

import (
	"fmt"
	"time"
)

type TaskType string

const (
	TaskTypeWork     TaskType = "work"
	TaskTypeStudy    TaskType = "study"
	TaskTypePersonal TaskType = "personal"
	TaskTypeHealth   TaskType = "health"
	TaskTypeOther    TaskType = "other"
)

// typeColors maps each task type to its display color (0xAARRGGBB).
var typeColors = map[TaskType]int64{
	TaskTypeWork:     0xFF3375F8,
	TaskTypeStudy:    0xFFA663F9,
	TaskTypePersonal: 0xFF19A69C,
	TaskTypeHealth:   0xFFF85977,
	TaskTypeOther:    0xFF8F97A3,
}

// Color returns the display color for the type. Unknown types fall back to
// the "other" color.
func (t TaskType) Color() int64 {
	if c, ok := typeColors[t]; ok {
		return c
	}
	return typeColors[TaskTypeOther]
}

func (t TaskType) Valid() bool {
	_, ok := typeColors[t]
	return ok
}

// TaskTemplate is a reusable preset of task fields used to prefill new-task
// creation. StartTime is a wall-clock "HH:MM" string with no date or zone.
type TaskTemplate struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	TaskName        string    `json:"task_name"`
	TaskDescription string    `json:"task_description"`
	Type            TaskType  `json:"type"`
	StartTime       string    `json:"start_time"`
	Color           int64     `json:"color"`
	FocusSessions   int       `json:"focus_sessions"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// StartOn resolves the template's wall-clock start time against a calendar
// day, in that day's location.
func (t *TaskTemplate) StartOn(day time.Time) (time.Time, error) {
	clock, err := time.Parse("15:04", t.StartTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start time %q: %w", t.StartTime, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(),
		clock.Hour(), clock.Minute(), 0, 0, day.Location()), nil
}
