package Models

import (
	"time"

	"gorm.io/gorm"
)

// AgentSession records one login/logout pair. An open session has a nil
// LogoutTime; at most one session per agent is open at a time, since login
// closes any leftovers before opening a new one.
type AgentSession struct {
	gorm.Model
	AgentID         string     `json:"agent_id" gorm:"index;not null"`
	LoginTime       time.Time  `json:"login_time"`
	LogoutTime      *time.Time `json:"logout_time"`
	DurationMinutes *float64   `json:"duration_minutes"`
	IPAddress       string     `json:"ip_address"`
	UserAgent       string     `json:"user_agent"`
}
