package notification

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

type CreateNotificationDTO struct {
	Title        string `json:"title"`
	Body         string `json:"body"`
	Audience     string `json:"audience"`
	TargetRole   string `json:"target_role,omitempty"`
	TargetUserID string `json:"target_user_id,omitempty"`
}

func (d CreateNotificationDTO) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ValidationError{Field: "title", Message: "title is required"}
	}
	switch d.Audience {
	case AudienceGlobal:
		if d.TargetRole != "" || d.TargetUserID != "" {
			return ValidationError{Field: "audience", Message: "global notifications take no target"}
		}
	case AudienceRole:
		if !rbac.ValidRole(d.TargetRole) {
			return ValidationError{Field: "target_role", Message: "target_role must be one of admin, staff, client"}
		}
		if d.TargetUserID != "" {
			return ValidationError{Field: "target_user_id", Message: "role notifications take no target user"}
		}
	case AudienceUser:
		if strings.TrimSpace(d.TargetUserID) == "" {
			return ValidationError{Field: "target_user_id", Message: "target_user_id is required"}
		}
		if d.TargetRole != "" {
			return ValidationError{Field: "target_role", Message: "user notifications take no target role"}
		}
	default:
		return ValidationError{Field: "audience", Message: "audience must be one of global, role, user"}
	}
	return nil
}
