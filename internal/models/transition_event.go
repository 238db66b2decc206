package models

import (
	"time"

	"gorm.io/gorm"
)

type TransitionEvent struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Timestamp    time.Time      `gorm:"not null;index" json:"timestamp"`
	RootPID      int            `gorm:"not null;index" json:"root_pid"`
	AppName      string         `gorm:"not null;index" json:"app_name"`
	FromState    string         `gorm:"not null" json:"from_state"`
	ToState      string         `gorm:"not null" json:"to_state"`
	PidCount     int            `gorm:"not null;default:0" json:"pid_count"`
	SuspendedFor int64          `gorm:"not null;default:0" json:"suspended_for"` // Seconds suspended, set on resume
	Backend      string         `gorm:"not null" json:"backend"`                 // "x11" or "sway"
	CreatedAt    time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

type AppSummary struct {
	AppName          string  `json:"app_name"`
	SuspendedSeconds int64   `json:"suspended_seconds"`
	SuspendedMinutes float64 `json:"suspended_minutes"`
	SuspendedHours   float64 `json:"suspended_hours"`
	SuspendCount     int     `json:"suspend_count"`
	Percentage       float64 `json:"percentage,omitempty"`
}

type ReportPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Type  string    `json:"type"` // "day", "week", "month"
}

type Report struct {
	Period           ReportPeriod `json:"period"`
	Apps             []AppSummary `json:"apps"`
	SuspendedSeconds int64        `json:"suspended_seconds"`
	SuspendedMinutes float64      `json:"suspended_minutes"`
	SuspendedHours   float64      `json:"suspended_hours"`
	GeneratedAt      time.Time    `json:"generated_at"`
}
