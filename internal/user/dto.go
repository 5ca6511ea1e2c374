package user

import (
	"strings"

	"github.com/giulianni/client-portal/internal/rbac"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

type CreateUserDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	SubRole  string `json:"sub_role,omitempty"`
}

func (d CreateUserDTO) Validate() error {
	if strings.TrimSpace(d.Email) == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !strings.Contains(d.Email, "@") {
		return ValidationError{Field: "email", Message: "email is invalid"}
	}
	if len(d.Password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	if strings.TrimSpace(d.Name) == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	return validateRolePair(d.Role, d.SubRole)
}

type ChangeRoleDTO struct {
	Role    string `json:"role"`
	SubRole string `json:"sub_role,omitempty"`
}

func (d ChangeRoleDTO) Validate() error {
	return validateRolePair(d.Role, d.SubRole)
}

// A sub-role is meaningful only for staff. Admin and client principals
// must not carry one.
func validateRolePair(role, subRole string) error {
	if !rbac.ValidRole(role) {
		return ValidationError{Field: "role", Message: "role must be one of admin, staff, client"}
	}
	if role == rbac.RoleStaff {
		if subRole == "" {
			return ValidationError{Field: "sub_role", Message: "sub_role is required for staff"}
		}
		if !rbac.ValidSubRole(subRole) {
			return ValidationError{Field: "sub_role", Message: "unknown sub_role"}
		}
		return nil
	}
	if subRole != "" {
		return ValidationError{Field: "sub_role", Message: "sub_role is only allowed for staff"}
	}
	return nil
}
