package cases

import (
	"context"
	"time"

	casesDatamodel "github.com/giulianni/client-portal/internal/core/datamodel/cases"
)

type Case struct {
	ID              string    `json:"id"`
	CaseNumber      string    `json:"case_number"`
	ClientID        string    `json:"client_id"`
	CaseType        string    `json:"case_type"`
	Status          string    `json:"status"`
	AssignedStaffID *string   `json:"assigned_staff_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

const (
	StatusOpen    = "open"
	StatusPending = "pending"
	StatusClosed  = "closed"
)

// Functional roles a staff principal can hold on a case.
const (
	AssignmentLeadAttorney      = "lead_attorney"
	AssignmentAssociateAttorney = "associate_attorney"
	AssignmentParalegal         = "paralegal"
	AssignmentLegalAssistant    = "legal_assistant"
	AssignmentCaseManager       = "case_manager"
)

func ValidStatus(status string) bool {
	switch status {
	case StatusOpen, StatusPending, StatusClosed:
		return true
	}
	return false
}

func ValidAssignmentRole(role string) bool {
	switch role {
	case AssignmentLeadAttorney, AssignmentAssociateAttorney, AssignmentParalegal,
		AssignmentLegalAssistant, AssignmentCaseManager:
		return true
	}
	return false
}

type Assignment struct {
	ID          string    `json:"id"`
	CaseID      string    `json:"case_id"`
	PrincipalID string    `json:"principal_id"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

type ListFilter struct {
	ClientID string
	Status   string
	CaseType string
	Limit    int
	Offset   int
}

type ServiceAPI interface {
	Create(ctx context.Context, actorID string, dto CreateCaseDTO) (*Case, error)
	GetByID(ctx context.Context, id string) (*Case, error)
	List(ctx context.Context, filter ListFilter) ([]Case, error)
	UpdateStatus(ctx context.Context, actorID string, id string, dto UpdateStatusDTO) (*Case, error)
	Assign(ctx context.Context, actorID string, caseID string, dto AssignDTO) (*Assignment, error)
	Unassign(ctx context.Context, actorID string, caseID string, assignmentID string) error
	ListAssignments(ctx context.Context, caseID string) ([]Assignment, error)
}

type RepositoryAPI interface {
	Create(ctx context.Context, c *casesDatamodel.Case) error
	GetByID(ctx context.Context, id string) (*casesDatamodel.Case, error)
	GetByNumber(ctx context.Context, caseNumber string) (*casesDatamodel.Case, error)
	List(ctx context.Context, filter ListFilter) ([]casesDatamodel.Case, error)
	Update(ctx context.Context, c *casesDatamodel.Case) error
	CreateAssignment(ctx context.Context, a *casesDatamodel.CaseAssignment) error
	ListAssignments(ctx context.Context, caseID string) ([]casesDatamodel.CaseAssignment, error)
	HasAssignment(ctx context.Context, caseID, principalID, role string) (bool, error)
	GetAssignmentByID(ctx context.Context, id string) (*casesDatamodel.CaseAssignment, error)
	DeleteAssignment(ctx context.Context, id string) (int64, error)
}

func FromDataModel(m *casesDatamodel.Case) *Case {
	return &Case{
		ID:              m.ID,
		CaseNumber:      m.CaseNumber,
		ClientID:        m.ClientID,
		CaseType:        m.CaseType,
		Status:          m.Status,
		AssignedStaffID: m.AssignedStaffID,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func assignmentFromDataModel(m *casesDatamodel.CaseAssignment) *Assignment {
	return &Assignment{
		ID:          m.ID,
		CaseID:      m.CaseID,
		PrincipalID: m.PrincipalID,
		Role:        m.Role,
		CreatedAt:   m.CreatedAt,
	}
}
