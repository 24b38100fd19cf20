package models

import "time"

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

type Task struct {
	ID            string     `json:"id"`
	TemplateID    *string    `json:"template_id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Type          TaskType   `json:"type"`
	Color         int64      `json:"color"`
	Start         time.Time  `json:"start"`
	End           time.Time  `json:"end"`
	FocusSessions int        `json:"focus_sessions"`
	Status        TaskStatus `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	CompletedAt   *time.Time `json:"completed_at"`

	// TemplateName is a helper field for joined queries
	TemplateName string `json:"template_name,omitempty"`
}
