package rbac

// Primary roles. Sub-roles exist only underneath RoleStaff.
const (
	RoleAdmin  = "admin"
	RoleStaff  = "staff"
	RoleClient = "client"
)

const (
	SubRoleSeniorAttorney = "senior_attorney"
	SubRoleAttorney       = "attorney"
	SubRoleSecretary      = "secretary"
	SubRoleParalegal      = "paralegal"
	SubRoleClerk          = "clerk"
)

// Permission names checked by the authorization gate. Static enumeration;
// permissions are not created or destroyed at runtime.
const (
	PermManageUsers       = "manage_users"
	PermViewUsers         = "view_users"
	PermCreateCase        = "create_case"
	PermViewCases         = "view_cases"
	PermEditCase          = "edit_case"
	PermDeleteCase        = "delete_case"
	PermAssignCase        = "assign_case"
	PermUploadDocument    = "upload_document"
	PermViewDocuments     = "view_documents"
	PermReviewDocument    = "review_document"
	PermDeleteDocument    = "delete_document"
	PermSendNotifications = "send_notifications"
	PermViewAuditLogs     = "view_audit_logs"
)

var permissionLabels = map[string]string{
	PermManageUsers:       "Manage users",
	PermViewUsers:         "View users",
	PermCreateCase:        "Create cases",
	PermViewCases:         "View cases",
	PermEditCase:          "Edit cases",
	PermDeleteCase:        "Delete cases",
	PermAssignCase:        "Assign staff to cases",
	PermUploadDocument:    "Upload documents",
	PermViewDocuments:     "View documents",
	PermReviewDocument:    "Review documents",
	PermDeleteDocument:    "Delete documents",
	PermSendNotifications: "Send notifications",
	PermViewAuditLogs:     "View audit logs",
}

// AllPermissions returns the full static enumeration. Admin principals hold
// every permission implicitly and are never looked up through the binding view.
func AllPermissions() []string {
	perms := make([]string, 0, len(permissionLabels))
	for name := range permissionLabels {
		perms = append(perms, name)
	}
	return perms
}

// defaultBindings are the seeded sub-role permission sets, used whenever the
// role_permissions view has no override rows for a sub-role. Every sub-role
// has at least one binding.
var defaultBindings = map[string][]string{
	SubRoleSeniorAttorney: {
		PermCreateCase, PermViewCases, PermEditCase, PermDeleteCase, PermAssignCase,
		PermUploadDocument, PermViewDocuments, PermReviewDocument, PermDeleteDocument,
		PermSendNotifications, PermViewUsers,
	},
	SubRoleAttorney: {
		PermCreateCase, PermViewCases, PermEditCase, PermDeleteCase,
		PermUploadDocument, PermViewDocuments, PermReviewDocument,
		PermSendNotifications,
	},
	SubRoleSecretary: {
		PermCreateCase, PermViewCases, PermEditCase, PermDeleteCase,
		PermUploadDocument, PermViewDocuments,
		PermSendNotifications, PermViewUsers,
	},
	SubRoleParalegal: {
		PermViewCases, PermUploadDocument, PermViewDocuments,
	},
	SubRoleClerk: {
		PermViewCases, PermViewDocuments,
	},
}

// DefaultBindings returns a copy of the seeded permission set for a sub-role.
func DefaultBindings(subRole string) []string {
	perms, ok := defaultBindings[subRole]
	if !ok {
		return nil
	}
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// SubRoles lists all known staff sub-roles.
func SubRoles() []string {
	return []string{
		SubRoleSeniorAttorney,
		SubRoleAttorney,
		SubRoleSecretary,
		SubRoleParalegal,
		SubRoleClerk,
	}
}

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleStaff, RoleClient:
		return true
	}
	return false
}

func ValidSubRole(subRole string) bool {
	_, ok := defaultBindings[subRole]
	return ok
}

// RoleProfile is what the resolver produces for a principal.
type RoleProfile struct {
	PrincipalID string   `json:"principal_id"`
	Role        string   `json:"role"`
	SubRole     string   `json:"sub_role,omitempty"`
	Permissions []string `json:"permissions"`
}

// Has reports whether the profile carries a permission. Admin holds every
// permission regardless of the resolved set.
func (p *RoleProfile) Has(permission string) bool {
	if p.Role == RoleAdmin {
		return true
	}
	for _, perm := range p.Permissions {
		if perm == permission {
			return true
		}
	}
	return false
}
