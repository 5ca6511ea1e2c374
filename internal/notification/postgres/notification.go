package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/giulianni/client-portal/internal"
	"github.com/giulianni/client-portal/internal/notification"

	notificationDatamodel "github.com/giulianni/client-portal/internal/core/datamodel/notification"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, n *notificationDatamodel.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *Repository) GetByID(ctx context.Context, id string) (*notificationDatamodel.Notification, error) {
	var model notificationDatamodel.Notification
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.NewNotFoundError("Notification not found", internal.ErrCodeNotifNotFound)
		}
		return nil, internal.NewStoreUnavailableError("relational store query failed", err)
	}
	return &model, nil
}

func (r *Repository) CreateReceipts(ctx context.Context, receipts []notificationDatamodel.UserNotification) error {
	if len(receipts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(receipts, 500).Error
}

func (r *Repository) ListReceiptsForUser(ctx context.Context, userID string) ([]notificationDatamodel.UserNotification, error) {
	var models []notificationDatamodel.UserNotification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, internal.NewStoreUnavailableError("relational store query failed", err)
	}
	return models, nil
}

func (r *Repository) MarkReceiptRead(ctx context.Context, receiptID string, userID string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&notificationDatamodel.UserNotification{}).
		Where("id = ? AND user_id = ?", receiptID, userID).
		Update("read_at", at).Error
}

// ListAudienceUserIDs resolves an explicit audience to concrete active
// principal ids.
func (r *Repository) ListAudienceUserIDs(ctx context.Context, audience string, targetRole, targetUserID string) ([]string, error) {
	var ids []string
	var err error

	switch audience {
	case notification.AudienceGlobal:
		err = r.db.WithContext(ctx).
			Raw(`SELECT id FROM users WHERE is_active = true`).Scan(&ids).Error
	case notification.AudienceRole:
		err = r.db.WithContext(ctx).
			Raw(`SELECT id FROM users WHERE is_active = true AND role = ?`, targetRole).Scan(&ids).Error
	case notification.AudienceUser:
		ids = []string{targetUserID}
	default:
		return nil, fmt.Errorf("unknown audience %q", audience)
	}
	if err != nil {
		return nil, internal.NewStoreUnavailableError("relational store query failed", err)
	}
	return ids, nil
}

// DeleteReceiptsByPrincipal removes every read receipt held by the
// principal. Used by the deletion cascade.
func (r *Repository) DeleteReceiptsByPrincipal(ctx context.Context, principalID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ?", principalID).
		Delete(&notificationDatamodel.UserNotification{})
	return res.RowsAffected, res.Error
}
