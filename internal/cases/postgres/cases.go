package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/giulianni/client-portal/internal"
	"github.com/giulianni/client-portal/internal/cases"

	casesDatamodel "github.com/giulianni/client-portal/internal/core/datamodel/cases"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, c *casesDatamodel.Case) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *Repository) GetByID(ctx context.Context, id string) (*casesDatamodel.Case, error) {
	var model casesDatamodel.Case
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrCaseNotFound
		}
		return nil, internal.NewStoreUnavailableError("relational store query failed", err)
	}
	return &model, nil
}

func (r *Repository) GetByNumber(ctx context.Context, caseNumber string) (*casesDatamodel.Case, error) {
	var model casesDatamodel.Case
	if err := r.db.WithContext(ctx).First(&model, "case_number = ?", caseNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrCaseNotFound
		}
		return nil, internal.NewStoreUnavailableError("relational store query failed", err)
	}
	return &model, nil
}

func (r *Repository) List(ctx context.Context, filter cases.ListFilter) ([]casesDatamodel.Case, error) {
	query := r.db.WithContext(ctx).Model(&casesDatamodel.Case{})

	if filter.ClientID != "" {
		query = query.Where("client_id = ?", filter.ClientID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CaseType != "" {
		query = query.Where("case_type = ?", filter.CaseType)
	}

	var models []casesDatamodel.Case
	err := query.Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&models).Error
	if err != nil {
		return nil, internal.NewStoreUnavailableError("relational store query failed", err)
	}
	return models, nil
}

func (r *Repository) Update(ctx context.Context, c *casesDatamodel.Case) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *Repository) CreateAssignment(ctx context.Context, a *casesDatamodel.CaseAssignment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *Repository) ListAssignments(ctx context.Context, caseID string) ([]casesDatamodel.CaseAssignment, error) {
	var models []casesDatamodel.CaseAssignment
	err := r.db.WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, internal.NewStoreUnavailableError("relational store query failed", err)
	}
	return models, nil
}

// CaseExists is the lightweight existence check document uploads use before
// writing rows that reference a case.
func (r *Repository) CaseExists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&casesDatamodel.Case{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, internal.NewStoreUnavailableError("relational store query failed", err)
	}
	return count > 0, nil
}

func (r *Repository) HasAssignment(ctx context.Context, caseID, principalID, role string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&casesDatamodel.CaseAssignment{}).
		Where("case_id = ? AND principal_id = ? AND role = ?", caseID, principalID, role).
		Count(&count).Error
	if err != nil {
		return false, internal.NewStoreUnavailableError("relational store query failed", err)
	}
	return count > 0, nil
}

func (r *Repository) GetAssignmentByID(ctx context.Context, id string) (*casesDatamodel.CaseAssignment, error) {
	var model casesDatamodel.CaseAssignment
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.NewNotFoundError("Assignment not found", internal.ErrCodeAssignNotFound)
		}
		return nil, internal.NewStoreUnavailableError("relational store query failed", err)
	}
	return &model, nil
}

func (r *Repository) DeleteAssignment(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&casesDatamodel.CaseAssignment{})
	return res.RowsAffected, res.Error
}

// DeleteAssignmentsByCase removes every assignment bound to the case and
// reports how many rows went away.
func (r *Repository) DeleteAssignmentsByCase(ctx context.Context, caseID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("case_id = ?", caseID).
		Delete(&casesDatamodel.CaseAssignment{})
	return res.RowsAffected, res.Error
}

// DeleteCase removes the case row itself. Callers are expected to have
// removed dependents first.
func (r *Repository) DeleteCase(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&casesDatamodel.Case{})
	return res.RowsAffected, res.Error
}
