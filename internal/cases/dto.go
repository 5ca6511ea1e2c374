package cases

import "strings"

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

type CreateCaseDTO struct {
	CaseNumber string `json:"case_number"`
	ClientID   string `json:"client_id"`
	CaseType   string `json:"case_type"`
}

func (d CreateCaseDTO) Validate() error {
	if strings.TrimSpace(d.CaseNumber) == "" {
		return ValidationError{Field: "case_number", Message: "case number is required"}
	}
	if strings.TrimSpace(d.ClientID) == "" {
		return ValidationError{Field: "client_id", Message: "client id is required"}
	}
	if strings.TrimSpace(d.CaseType) == "" {
		return ValidationError{Field: "case_type", Message: "case type is required"}
	}
	return nil
}

type UpdateStatusDTO struct {
	Status string `json:"status"`
}

func (d UpdateStatusDTO) Validate() error {
	if !ValidStatus(d.Status) {
		return ValidationError{Field: "status", Message: "status must be one of open, pending, closed"}
	}
	return nil
}

type AssignDTO struct {
	PrincipalID string `json:"principal_id"`
	Role        string `json:"role"`
}

func (d AssignDTO) Validate() error {
	if strings.TrimSpace(d.PrincipalID) == "" {
		return ValidationError{Field: "principal_id", Message: "principal id is required"}
	}
	if !ValidAssignmentRole(d.Role) {
		return ValidationError{Field: "role", Message: "unknown assignment role"}
	}
	return nil
}
