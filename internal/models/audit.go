package models

import "time"

// Audit actions recorded by the core workflows.
const (
	AuditActionLogin            = "auth.login"
	AuditActionAchievementNew   = "achievement.submit"
	AuditActionAchievementCheck = "achievement.review"
	AuditActionInstituteReview  = "institute_request.review"
)

// AuditLog is an append-only record of a security-relevant event.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	ActorID    *string   `db:"actor_id" json:"actor_id,omitempty"`
	ActorRole  string    `db:"actor_role" json:"actor_role"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
