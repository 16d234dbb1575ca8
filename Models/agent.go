package Models

import (
	"gorm.io/gorm"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Agent is a data-entry worker account. AgentID is the generated public
// identifier (AGT + 6 digits) every other table keys on; the surrogate
// gorm.Model ID never leaves the database layer.
type Agent struct {
	gorm.Model
	AgentID        string `json:"agent_id" gorm:"uniqueIndex;not null"`
	Name           string `json:"name" gorm:"not null"`
	Email          string `json:"email" gorm:"uniqueIndex;not null"`
	Mobile         string `json:"mobile" gorm:"not null"`
	DOB            string `json:"dob"`
	Country        string `json:"country" gorm:"not null"`
	Gender         string `json:"gender" gorm:"not null"`
	HashedPassword string `json:"-" gorm:"not null"`
	Status         string `json:"status" gorm:"default:active"`
}
