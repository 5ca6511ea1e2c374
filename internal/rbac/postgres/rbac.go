package postgres

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"

	"github.com/giulianni/client-portal/internal"
)

// PrincipalRepository reads the role fields of a principal row.
type PrincipalRepository struct {
	db *gorm.DB
}

func NewPrincipalRepository(db *gorm.DB) *PrincipalRepository {
	return &PrincipalRepository{db: db}
}

func (r *PrincipalRepository) GetRole(ctx context.Context, principalID string) (string, string, error) {
	var row struct {
		Role    string
		SubRole *string
	}
	err := r.db.WithContext(ctx).
		Table("users").
		Select("role", "sub_role").
		Where("id = ?", principalID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", internal.ErrUserNotFound
		}
		return "", "", internal.NewStoreUnavailableError("users table unreachable", err)
	}

	subRole := ""
	if row.SubRole != nil {
		subRole = *row.SubRole
	}
	return row.Role, subRole, nil
}

// BindingRepository reads the role_permissions lookup view with raw SQL. The
// view merges seeded rows with per-deployment overrides; an empty result is
// not an error (the resolver falls back to the seeded defaults).
type BindingRepository struct {
	db *sqlx.DB
}

func NewBindingRepository(db *sqlx.DB) *BindingRepository {
	return &BindingRepository{db: db}
}

func (r *BindingRepository) GetPermissions(ctx context.Context, subRole string) ([]string, error) {
	var perms []string
	query := `SELECT permission FROM role_permissions WHERE sub_role = $1 ORDER BY permission`
	if err := r.db.SelectContext(ctx, &perms, query, subRole); err != nil {
		return nil, err
	}
	return perms, nil
}
