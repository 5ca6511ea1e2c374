package message

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/giulianni/client-portal/internal"

	messageDatamodel "github.com/giulianni/client-portal/internal/core/datamodel/message"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, m *messageDatamodel.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *Repository) GetByID(ctx context.Context, id string) (*messageDatamodel.Message, error) {
	var model messageDatamodel.Message
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrMessageNotFound
		}
		return nil, internal.NewStoreUnavailableError("relational store query failed", err)
	}
	return &model, nil
}

func (r *Repository) ListByCase(ctx context.Context, caseID string) ([]messageDatamodel.Message, error) {
	var models []messageDatamodel.Message
	err := r.db.WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("sent_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, internal.NewStoreUnavailableError("relational store query failed", err)
	}
	return models, nil
}

func (r *Repository) MarkRead(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&messageDatamodel.Message{}).
		Where("id = ? AND read_at IS NULL", id).
		Update("read_at", at).Error
}

func (r *Repository) DeleteByCase(ctx context.Context, caseID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("case_id = ?", caseID).Delete(&messageDatamodel.Message{})
	return res.RowsAffected, res.Error
}
