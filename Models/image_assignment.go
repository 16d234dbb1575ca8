package Models

import (
	"time"

	"gorm.io/gorm"
)

const (
	AssignmentPending   = "pending"
	AssignmentCompleted = "completed"
)

// ImageAssignment pins one imported image to one agent, so a task keeps its
// identity even if the folder on disk is reshuffled. A batch upload replaces
// all of an agent's rows; submitting marks the matching row completed.
type ImageAssignment struct {
	gorm.Model
	AgentID       string    `json:"agent_id" gorm:"index;not null"`
	ImageFilename string    `json:"image_filename" gorm:"not null"`
	ImagePath     string    `json:"image_path" gorm:"not null"`
	AssignedAt    time.Time `json:"assigned_at"`
	IsCompleted   string    `json:"is_completed" gorm:"default:pending"`
}
