package audit

import "time"

// AuditLog rows are append-only; the application never updates or deletes them.
type AuditLog struct {
	ID           string    `gorm:"primaryKey;type:uuid"`
	ActorID      string    `gorm:"column:actor_id;type:uuid;not null;index"`
	Action       string    `gorm:"column:action;not null;index"`
	ResourceType string    `gorm:"column:resource_type;not null;index"`
	ResourceID   string    `gorm:"column:resource_id"`
	Detail       string    `gorm:"column:detail"`
	Origin       string    `gorm:"column:origin"`
	CreatedAt    time.Time `gorm:"column:created_at;default:now()"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
