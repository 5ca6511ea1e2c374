package events

import (
	"time"

	"github.com/google/uuid"
)

const EventTypeNotificationCreated = "notification.created"

// NotificationCreatedEvent triggers receipt fan-out for the resolved
// audience of a freshly created notification.
type NotificationCreatedEvent struct {
	BaseEvent
	NotificationID string `json:"notification_id"`
	Audience       string `json:"audience"`
	TargetRole     string `json:"target_role,omitempty"`
	TargetUserID   string `json:"target_user_id,omitempty"`
}

func NewNotificationCreatedEvent(notificationID, audience, targetRole, targetUserID string) *NotificationCreatedEvent {
	return &NotificationCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      EventTypeNotificationCreated,
			Timestamp: time.Now(),
		},
		NotificationID: notificationID,
		Audience:       audience,
		TargetRole:     targetRole,
		TargetUserID:   targetUserID,
	}
}
