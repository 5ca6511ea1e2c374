package user

import (
	"context"
	"time"

	userDatamodel "github.com/giulianni/client-portal/internal/core/datamodel/user"
	"github.com/giulianni/client-portal/internal/identity"
)

// User is the portal-facing view of a principal. The password hash never
// leaves the relational store through this type.
type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	SubRole     string     `json:"sub_role,omitempty"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type ListFilter struct {
	Role     string
	SubRole  string
	Active   *bool
	Search   string
	Limit    int
	Offset   int
}

type ServiceAPI interface {
	Create(ctx context.Context, actorID string, dto CreateUserDTO) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, filter ListFilter) ([]User, error)
	ChangeRole(ctx context.Context, actorID string, id string, dto ChangeRoleDTO) (*User, error)
	SetActive(ctx context.Context, actorID string, id string, active bool) (*User, error)
}

type RepositoryAPI interface {
	Create(ctx context.Context, u *userDatamodel.User) error
	GetByID(ctx context.Context, id string) (*userDatamodel.User, error)
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	List(ctx context.Context, filter ListFilter) ([]userDatamodel.User, error)
	Update(ctx context.Context, u *userDatamodel.User) error
}

type IdentityProvisioner interface {
	CreateIdentity(ctx context.Context, email, password string, attrs identity.Attributes) (string, error)
	DeleteIdentity(ctx context.Context, id string) error
}

func FromDataModel(m *userDatamodel.User) *User {
	u := &User{
		ID:          m.ID,
		Email:       m.Email,
		Name:        m.Name,
		Role:        m.Role,
		IsActive:    m.IsActive,
		LastLoginAt: m.LastLoginAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.SubRole != nil {
		u.SubRole = *m.SubRole
	}
	return u
}
