package rbac

import (
	"context"
	"log/slog"

	"github.com/giulianni/client-portal/internal"
)

// PrincipalSource reads the principal's role fields from the relational
// store. Implementations must return internal.ErrUserNotFound (or an AppError
// with ErrorTypeNotFound) when no row exists and a store-unavailable error for
// infrastructure failures.
type PrincipalSource interface {
	GetRole(ctx context.Context, principalID string) (role string, subRole string, err error)
}

// BindingSource reads per-deployment override bindings from the
// role_permissions lookup view.
type BindingSource interface {
	GetPermissions(ctx context.Context, subRole string) ([]string, error)
}

// Resolver determines a principal's role, sub-role and effective permission
// set.
//
// The asymmetry here is deliberate and must be preserved: a missing principal
// row is fail-closed (NotFound, caller rejected), while a missing binding for
// an existing staff principal is fail-open (seeded defaults apply), so a
// freshly added sub-role without override rows is not locked out.
type Resolver struct {
	principals PrincipalSource
	bindings   BindingSource
	logger     *slog.Logger
}

func NewResolver(principals PrincipalSource, bindings BindingSource, logger *slog.Logger) *Resolver {
	return &Resolver{
		principals: principals,
		bindings:   bindings,
		logger:     logger,
	}
}

// Resolve fails with a NOT_FOUND error when the principal has no relational
// store record and STORE_UNAVAILABLE when the store cannot be reached.
func (r *Resolver) Resolve(ctx context.Context, principalID string) (*RoleProfile, error) {
	role, subRole, err := r.principals.GetRole(ctx, principalID)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		return nil, internal.NewStoreUnavailableError("could not resolve principal", err)
	}

	profile := &RoleProfile{
		PrincipalID: principalID,
		Role:        role,
		SubRole:     subRole,
	}

	switch role {
	case RoleAdmin:
		// full static enumeration, never looked up
		profile.Permissions = AllPermissions()
		return profile, nil

	case RoleStaff:
		profile.Permissions = r.lookupOrDefault(ctx, principalID, subRole)
		return profile, nil

	case RoleClient:
		// clients have no seeded defaults; only an explicit deployment
		// binding grants anything
		perms, err := r.bindings.GetPermissions(ctx, RoleClient)
		if err != nil {
			r.logger.Warn("client binding lookup failed, resolving empty set",
				"principal_id", principalID, "error", err)
			perms = nil
		}
		if perms == nil {
			perms = []string{}
		}
		profile.Permissions = perms
		return profile, nil

	default:
		r.logger.Warn("principal has unknown role, resolving empty set",
			"principal_id", principalID, "role", role)
		profile.Permissions = []string{}
		return profile, nil
	}
}

func (r *Resolver) lookupOrDefault(ctx context.Context, principalID, subRole string) []string {
	perms, err := r.bindings.GetPermissions(ctx, subRole)
	if err != nil {
		r.logger.Warn("binding lookup failed, falling back to seeded defaults",
			"principal_id", principalID, "sub_role", subRole, "error", err)
		perms = nil
	}
	if len(perms) > 0 {
		return perms
	}

	defaults := DefaultBindings(subRole)
	if defaults == nil {
		r.logger.Warn("staff sub-role has no seeded defaults",
			"principal_id", principalID, "sub_role", subRole)
		return []string{}
	}
	return defaults
}
