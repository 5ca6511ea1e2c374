package rbac

import (
	"context"
	"fmt"

	"github.com/giulianni/client-portal/internal"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// ProfileResolver is what the gate needs from the resolver.
type ProfileResolver interface {
	Resolve(ctx context.Context, principalID string) (*RoleProfile, error)
}

// Gate is the single entry point every privileged operation must pass
// through before mutating anything. It is a pure check: no side effects, no
// audit writes, safe to call speculatively (for example to render UI
// affordances).
type Gate struct {
	resolver ProfileResolver
}

func NewGate(resolver ProfileResolver) *Gate {
	return &Gate{resolver: resolver}
}

// Authorize allows iff the resolved permission set contains the required
// permission or the principal is an admin. An unknown principal is always
// denied; only store unavailability surfaces as an error (safe to retry).
func (g *Gate) Authorize(ctx context.Context, principalID, permission string) (Decision, error) {
	profile, err := g.resolver.Resolve(ctx, principalID)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Type == internal.ErrorTypeNotFound {
			return Decision{Allowed: false, Reason: "unknown principal"}, nil
		}
		return Decision{}, err
	}

	if profile.Has(permission) {
		return Decision{Allowed: true}, nil
	}

	return Decision{
		Allowed: false,
		Reason:  fmt.Sprintf("role %s lacks permission %s", describeRole(profile), permission),
	}, nil
}

func describeRole(p *RoleProfile) string {
	if p.SubRole != "" {
		return p.Role + "/" + p.SubRole
	}
	return p.Role
}
