package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/giulianni/client-portal/internal"
	"github.com/giulianni/client-portal/internal/auth"
	"github.com/giulianni/client-portal/internal/core/datamodel/user"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetCredentialsForEmail(ctx context.Context, email string) (string, string, bool, error) {
	var passwordHash string
	var userID string
	var active bool
	query := `SELECT id, password_hash, is_active FROM users WHERE email = ?`

	row := r.db.WithContext(ctx).Raw(query, email).Row()
	if err := row.Scan(&userID, &passwordHash, &active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", false, internal.ErrUserNotFound
		}
		return "", "", false, err
	}
	return passwordHash, userID, active, nil
}

func (r *Repository) GetUserByID(ctx context.Context, userID string) (*auth.User, error) {
	var row user.User
	if err := r.db.WithContext(ctx).First(&row, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}

	u := &auth.User{
		ID:       row.ID,
		Email:    row.Email,
		Name:     row.Name,
		Role:     row.Role,
		IsActive: row.IsActive,
	}
	if row.SubRole != nil {
		u.SubRole = *row.SubRole
	}
	return u, nil
}

func (r *Repository) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&user.User{}).
		Where("id = ?", userID).
		Update("last_login_at", at).Error
}
