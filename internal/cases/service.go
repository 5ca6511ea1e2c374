package cases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/giulianni/client-portal/internal"
	"github.com/giulianni/client-portal/internal/audit"
	"github.com/giulianni/client-portal/internal/rbac"

	casesDatamodel "github.com/giulianni/client-portal/internal/core/datamodel/cases"
)

type AuditRecorder interface {
	Record(ctx context.Context, actorID, action, resourceType, resourceID, detail string) error
}

// PrincipalDirectory answers role lookups for referenced principals.
type PrincipalDirectory interface {
	GetRole(ctx context.Context, principalID string) (role string, subRole string, err error)
}

type Service struct {
	repo       RepositoryAPI
	principals PrincipalDirectory
	auditor    AuditRecorder
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, principals PrincipalDirectory, auditor AuditRecorder, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		principals: principals,
		auditor:    auditor,
		logger:     logger,
	}
}

// Create opens a new matter. The client reference is a direct foreign id and
// must point at an existing principal with role client.
func (s *Service) Create(ctx context.Context, actorID string, dto CreateCaseDTO) (*Case, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	role, _, err := s.principals.GetRole(ctx, dto.ClientID)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil, internal.NewValidationError("client does not exist", internal.ErrCodeUserNotFound)
		}
		return nil, err
	}
	if role != rbac.RoleClient {
		return nil, internal.NewValidationError("referenced principal is not a client", internal.ErrCodeInvalidRole)
	}

	if existing, err := s.repo.GetByNumber(ctx, dto.CaseNumber); err == nil && existing != nil {
		return nil, internal.NewConflictError("case number already in use", internal.ErrCodeDuplicateCase)
	} else if err != nil && !errors.Is(err, internal.ErrCaseNotFound) {
		return nil, err
	}

	now := time.Now()
	model := &casesDatamodel.Case{
		ID:         uuid.NewString(),
		CaseNumber: dto.CaseNumber,
		ClientID:   dto.ClientID,
		CaseType:   dto.CaseType,
		Status:     StatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, model); err != nil {
		return nil, fmt.Errorf("failed to create case: %w", err)
	}

	if err := s.auditor.Record(ctx, actorID, audit.ActionCreate, audit.ResourceCase, model.ID,
		fmt.Sprintf("opened case %s", model.CaseNumber)); err != nil {
		s.logger.Warn("audit write failed for case creation", "case_id", model.ID, "error", err)
	}

	return FromDataModel(model), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Case, error) {
	model, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(model), nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Case, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	models, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]Case, 0, len(models))
	for i := range models {
		out = append(out, *FromDataModel(&models[i]))
	}
	return out, nil
}

func (s *Service) UpdateStatus(ctx context.Context, actorID string, id string, dto UpdateStatusDTO) (*Case, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	model, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := model.Status
	if previous != dto.Status {
		model.Status = dto.Status
		model.UpdatedAt = time.Now()
		if err := s.repo.Update(ctx, model); err != nil {
			return nil, fmt.Errorf("failed to update case status: %w", err)
		}

		if err := s.auditor.Record(ctx, actorID, audit.ActionUpdate, audit.ResourceCase, id,
			fmt.Sprintf("status changed from %s to %s", previous, dto.Status)); err != nil {
			s.logger.Warn("audit write failed for status change", "case_id", id, "error", err)
		}
	}

	return FromDataModel(model), nil
}

// Assign binds a staff principal to the case with a functional role. The
// (case, principal, role) tuple is unique; a lead attorney assignment also
// sets the case's assigned staff reference.
func (s *Service) Assign(ctx context.Context, actorID string, caseID string, dto AssignDTO) (*Assignment, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	model, err := s.repo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	role, _, err := s.principals.GetRole(ctx, dto.PrincipalID)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil, internal.NewValidationError("assigned principal does not exist", internal.ErrCodeUserNotFound)
		}
		return nil, err
	}
	if role != rbac.RoleStaff {
		return nil, internal.NewValidationError("only staff can be assigned to a case", internal.ErrCodeInvalidRole)
	}

	exists, err := s.repo.HasAssignment(ctx, caseID, dto.PrincipalID, dto.Role)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, internal.NewConflictError("principal already holds this role on the case", internal.ErrCodeDuplicateAssign)
	}

	assignment := &casesDatamodel.CaseAssignment{
		ID:          uuid.NewString(),
		CaseID:      caseID,
		PrincipalID: dto.PrincipalID,
		Role:        dto.Role,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.CreateAssignment(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	if dto.Role == AssignmentLeadAttorney {
		model.AssignedStaffID = &assignment.PrincipalID
		model.UpdatedAt = time.Now()
		if err := s.repo.Update(ctx, model); err != nil {
			s.logger.Warn("failed to set assigned staff on case", "case_id", caseID, "error", err)
		}
	}

	if err := s.auditor.Record(ctx, actorID, audit.ActionUpdate, audit.ResourceCase, caseID,
		fmt.Sprintf("assigned %s as %s", dto.PrincipalID, dto.Role)); err != nil {
		s.logger.Warn("audit write failed for assignment", "case_id", caseID, "error", err)
	}

	return assignmentFromDataModel(assignment), nil
}

// Unassign removes one assignment from the case. Removing the lead attorney
// also clears the case's assigned staff reference.
func (s *Service) Unassign(ctx context.Context, actorID string, caseID string, assignmentID string) error {
	model, err := s.repo.GetByID(ctx, caseID)
	if err != nil {
		return err
	}

	assignment, err := s.repo.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		return err
	}
	if assignment.CaseID != caseID {
		return internal.NewNotFoundError("Assignment not found on this case", internal.ErrCodeAssignNotFound)
	}

	if _, err := s.repo.DeleteAssignment(ctx, assignmentID); err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}

	if assignment.Role == AssignmentLeadAttorney &&
		model.AssignedStaffID != nil && *model.AssignedStaffID == assignment.PrincipalID {
		model.AssignedStaffID = nil
		model.UpdatedAt = time.Now()
		if err := s.repo.Update(ctx, model); err != nil {
			s.logger.Warn("failed to clear assigned staff on case", "case_id", caseID, "error", err)
		}
	}

	if err := s.auditor.Record(ctx, actorID, audit.ActionUpdate, audit.ResourceCase, caseID,
		fmt.Sprintf("unassigned %s as %s", assignment.PrincipalID, assignment.Role)); err != nil {
		s.logger.Warn("audit write failed for unassignment", "case_id", caseID, "error", err)
	}

	return nil
}

func (s *Service) ListAssignments(ctx context.Context, caseID string) ([]Assignment, error) {
	if _, err := s.repo.GetByID(ctx, caseID); err != nil {
		return nil, err
	}

	models, err := s.repo.ListAssignments(ctx, caseID)
	if err != nil {
		return nil, err
	}

	out := make([]Assignment, 0, len(models))
	for i := range models {
		out = append(out, *assignmentFromDataModel(&models[i]))
	}
	return out, nil
}
