package document

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/giulianni/client-portal/internal"

	documentDatamodel "github.com/giulianni/client-portal/internal/core/datamodel/document"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, d *documentDatamodel.Document) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *Repository) GetByID(ctx context.Context, id string) (*documentDatamodel.Document, error) {
	var model documentDatamodel.Document
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrDocumentNotFound
		}
		return nil, internal.NewStoreUnavailableError("relational store query failed", err)
	}
	return &model, nil
}

func (r *Repository) ListByCase(ctx context.Context, caseID string) ([]documentDatamodel.Document, error) {
	var models []documentDatamodel.Document
	err := r.db.WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("uploaded_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, internal.NewStoreUnavailableError("relational store query failed", err)
	}
	return models, nil
}

func (r *Repository) ListByUploader(ctx context.Context, principalID string) ([]documentDatamodel.Document, error) {
	var models []documentDatamodel.Document
	err := r.db.WithContext(ctx).
		Where("uploaded_by = ?", principalID).
		Find(&models).Error
	if err != nil {
		return nil, internal.NewStoreUnavailableError("relational store query failed", err)
	}
	return models, nil
}

func (r *Repository) UpdateReviewStatus(ctx context.Context, id string, status string) error {
	return r.db.WithContext(ctx).Model(&documentDatamodel.Document{}).
		Where("id = ?", id).
		Update("review_status", status).Error
}

func (r *Repository) Delete(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&documentDatamodel.Document{})
	return res.RowsAffected, res.Error
}

func (r *Repository) DeleteByCase(ctx context.Context, caseID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("case_id = ?", caseID).Delete(&documentDatamodel.Document{})
	return res.RowsAffected, res.Error
}

func (r *Repository) DeleteByUploader(ctx context.Context, principalID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("uploaded_by = ?", principalID).Delete(&documentDatamodel.Document{})
	return res.RowsAffected, res.Error
}
