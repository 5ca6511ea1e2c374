package notification

import "time"

type Notification struct {
	ID           string    `gorm:"primaryKey;type:uuid"`
	Title        string    `gorm:"column:title;not null"`
	Body         string    `gorm:"column:body"`
	Audience     string    `gorm:"column:audience;not null"`
	TargetRole   *string   `gorm:"column:target_role"`
	TargetUserID *string   `gorm:"column:target_user_id;type:uuid"`
	CreatedBy    string    `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;default:now()"`
}

func (Notification) TableName() string {
	return "notifications"
}

// UserNotification is the per-principal read receipt for a notification.
type UserNotification struct {
	ID             string     `gorm:"primaryKey;type:uuid"`
	NotificationID string     `gorm:"column:notification_id;type:uuid;not null;index"`
	UserID         string     `gorm:"column:user_id;type:uuid;not null;index"`
	ReadAt         *time.Time `gorm:"column:read_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;default:now()"`
}

func (UserNotification) TableName() string {
	return "user_notifications"
}
