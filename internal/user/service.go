package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/giulianni/client-portal/internal"
	"github.com/giulianni/client-portal/internal/audit"
	"github.com/giulianni/client-portal/internal/identity"
	"github.com/giulianni/client-portal/internal/rbac"
	"golang.org/x/crypto/bcrypt"

	userDatamodel "github.com/giulianni/client-portal/internal/core/datamodel/user"
)

type AuditRecorder interface {
	Record(ctx context.Context, actorID, action, resourceType, resourceID, detail string) error
}

type Service struct {
	repo       RepositoryAPI
	identities IdentityProvisioner
	auditor    AuditRecorder
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, identities IdentityProvisioner, auditor AuditRecorder, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		identities: identities,
		auditor:    auditor,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Create provisions a principal in two phases: the identity record first,
// then the relational row keyed by the identity's id. If the relational
// insert fails the identity is deleted again so the two stores never hold
// a half-created principal.
func (s *Service) Create(ctx context.Context, actorID string, dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByEmail(ctx, dto.Email); err == nil && existing != nil {
		return nil, internal.NewConflictError("a user with this email already exists", internal.ErrCodeDuplicateEmail)
	} else if err != nil && !errors.Is(err, internal.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	identityID, err := s.identities.CreateIdentity(ctx, dto.Email, dto.Password, identity.Attributes{
		"name": dto.Name,
		"role": dto.Role,
	})
	if err != nil {
		return nil, internal.NewStoreUnavailableError("identity store rejected user creation", err)
	}

	now := time.Now()
	model := &userDatamodel.User{
		ID:           identityID,
		Email:        dto.Email,
		Name:         dto.Name,
		PasswordHash: string(hash),
		Role:         dto.Role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if dto.Role == rbac.RoleStaff {
		subRole := dto.SubRole
		model.SubRole = &subRole
	}

	if err := s.repo.Create(ctx, model); err != nil {
		if delErr := s.identities.DeleteIdentity(ctx, identityID); delErr != nil {
			s.logger.Error("failed to roll back identity after relational insert failure",
				"identity_id", identityID, "error", delErr)
		}
		return nil, fmt.Errorf("failed to create user record: %w", err)
	}

	if err := s.auditor.Record(ctx, actorID, audit.ActionCreate, audit.ResourceUser, identityID,
		fmt.Sprintf("created %s %s", model.Role, dto.Email)); err != nil {
		s.logger.Warn("audit write failed for user creation", "user_id", identityID, "error", err)
	}

	return FromDataModel(model), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	model, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(model), nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]User, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	models, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	users := make([]User, 0, len(models))
	for i := range models {
		users = append(users, *FromDataModel(&models[i]))
	}
	return users, nil
}

// ChangeRole reassigns a principal's role pair. The sub-role is cleared
// whenever the new role is not staff.
func (s *Service) ChangeRole(ctx context.Context, actorID string, id string, dto ChangeRoleDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	model, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := model.Role
	model.Role = dto.Role
	model.SubRole = nil
	if dto.Role == rbac.RoleStaff {
		subRole := dto.SubRole
		model.SubRole = &subRole
	}
	model.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, model); err != nil {
		return nil, fmt.Errorf("failed to update user role: %w", err)
	}

	if err := s.auditor.Record(ctx, actorID, audit.ActionUpdate, audit.ResourceUser, id,
		fmt.Sprintf("role changed from %s to %s", previous, dto.Role)); err != nil {
		s.logger.Warn("audit write failed for role change", "user_id", id, "error", err)
	}

	return FromDataModel(model), nil
}

func (s *Service) SetActive(ctx context.Context, actorID string, id string, active bool) (*User, error) {
	model, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if model.IsActive != active {
		model.IsActive = active
		model.UpdatedAt = time.Now()
		if err := s.repo.Update(ctx, model); err != nil {
			return nil, fmt.Errorf("failed to update user status: %w", err)
		}

		detail := "user deactivated"
		if active {
			detail = "user reactivated"
		}
		if err := s.auditor.Record(ctx, actorID, audit.ActionUpdate, audit.ResourceUser, id, detail); err != nil {
			s.logger.Warn("audit write failed for status change", "user_id", id, "error", err)
		}
	}

	return FromDataModel(model), nil
}
