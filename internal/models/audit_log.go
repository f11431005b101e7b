package models

import "time"

// AuditLog represents a recorded administrative action
type AuditLog struct {
	ID         int       `json:"id" db:"id"`
	UserID     int       `json:"user_id" db:"user_id"`
	Action     string    `json:"action" db:"action"`
	TargetType string    `json:"target_type" db:"target_type"`
	TargetID   int       `json:"target_id" db:"target_id"`
	Details    string    `json:"details" db:"details"`
	IPAddress  string    `json:"ip_address" db:"ip_address"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// AuditLogCreateRequest represents the data needed to record an action
type AuditLogCreateRequest struct {
	UserID     int    `json:"user_id"`
	Action     string `json:"action"`
	TargetType string `json:"target_type"`
	TargetID   int    `json:"target_id"`
	Details    string `json:"details"`
	IPAddress  string `json:"ip_address"`
}
