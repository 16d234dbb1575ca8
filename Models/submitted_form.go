package Models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SubmittedForm is one completed annotation form. FormData holds the 29
// crime-record fields plus the image name the form was filled against.
// Rows are append-only and deliberately survive agent deletion so exported
// data never disappears with an account.
type SubmittedForm struct {
	gorm.Model
	AgentID     string         `json:"agent_id" gorm:"index;not null"`
	FormData    datatypes.JSON `json:"form_data" gorm:"not null"`
	SubmittedAt time.Time      `json:"submitted_at" gorm:"index"`
}
