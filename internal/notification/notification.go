package notification

import (
	"context"
	"time"

	notificationDatamodel "github.com/giulianni/client-portal/internal/core/datamodel/notification"
)

// Audience is always explicit. A notification with no resolvable audience
// is rejected at creation time rather than defaulting to anything.
const (
	AudienceGlobal = "global"
	AudienceRole   = "role"
	AudienceUser   = "user"
)

func ValidAudience(audience string) bool {
	switch audience {
	case AudienceGlobal, AudienceRole, AudienceUser:
		return true
	}
	return false
}

type Notification struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	Audience     string    `json:"audience"`
	TargetRole   *string   `json:"target_role,omitempty"`
	TargetUserID *string   `json:"target_user_id,omitempty"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// Receipt is the per-principal delivery and read state.
type Receipt struct {
	ID             string     `json:"id"`
	NotificationID string     `json:"notification_id"`
	Title          string     `json:"title"`
	Body           string     `json:"body"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type ServiceAPI interface {
	Create(ctx context.Context, actorID string, dto CreateNotificationDTO) (*Notification, error)
	ListForUser(ctx context.Context, userID string) ([]Receipt, error)
	MarkRead(ctx context.Context, userID string, receiptID string) error
}

type RepositoryAPI interface {
	Create(ctx context.Context, n *notificationDatamodel.Notification) error
	GetByID(ctx context.Context, id string) (*notificationDatamodel.Notification, error)
	CreateReceipts(ctx context.Context, receipts []notificationDatamodel.UserNotification) error
	ListReceiptsForUser(ctx context.Context, userID string) ([]notificationDatamodel.UserNotification, error)
	MarkReceiptRead(ctx context.Context, receiptID string, userID string, at time.Time) error
	ListAudienceUserIDs(ctx context.Context, audience string, targetRole, targetUserID string) ([]string, error)
}

func FromDataModel(m *notificationDatamodel.Notification) *Notification {
	return &Notification{
		ID:           m.ID,
		Title:        m.Title,
		Body:         m.Body,
		Audience:     m.Audience,
		TargetRole:   m.TargetRole,
		TargetUserID: m.TargetUserID,
		CreatedBy:    m.CreatedBy,
		CreatedAt:    m.CreatedAt,
	}
}
