package user

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/giulianni/client-portal/internal"
	"github.com/giulianni/client-portal/internal/user"

	userDatamodel "github.com/giulianni/client-portal/internal/core/datamodel/user"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, u *userDatamodel.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *Repository) GetByID(ctx context.Context, id string) (*userDatamodel.User, error) {
	var model userDatamodel.User
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, internal.NewStoreUnavailableError("relational store query failed", err)
	}
	return &model, nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	var model userDatamodel.User
	if err := r.db.WithContext(ctx).First(&model, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, internal.NewStoreUnavailableError("relational store query failed", err)
	}
	return &model, nil
}

func (r *Repository) List(ctx context.Context, filter user.ListFilter) ([]userDatamodel.User, error) {
	query := r.db.WithContext(ctx).Model(&userDatamodel.User{})

	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.SubRole != "" {
		query = query.Where("sub_role = ?", filter.SubRole)
	}
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	var models []userDatamodel.User
	err := query.Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&models).Error
	if err != nil {
		return nil, internal.NewStoreUnavailableError("relational store query failed", err)
	}
	return models, nil
}

func (r *Repository) Update(ctx context.Context, u *userDatamodel.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

// Delete removes the relational principal row and reports whether a row
// actually went away.
func (r *Repository) Delete(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&userDatamodel.User{})
	return res.RowsAffected, res.Error
}
