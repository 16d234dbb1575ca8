package Models

import (
	"gorm.io/gorm"
)

// TaskProgress holds the per-agent cursor into the assigned image list.
// CurrentIndex only moves forward: +1 per accepted submission, reset to 0
// when a new batch replaces the agent's assignment.
type TaskProgress struct {
	gorm.Model
	AgentID      string `json:"agent_id" gorm:"uniqueIndex;not null"`
	CurrentIndex int    `json:"current_index" gorm:"default:0"`
}
