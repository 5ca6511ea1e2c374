package message

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/giulianni/client-portal/internal"
	"github.com/giulianni/client-portal/internal/core/common/validation"
	"github.com/giulianni/client-portal/internal/rbac"

	casesDatamodel "github.com/giulianni/client-portal/internal/core/datamodel/cases"
	messageDatamodel "github.com/giulianni/client-portal/internal/core/datamodel/message"
)

// CaseDirectory resolves the case a message thread is scoped to.
type CaseDirectory interface {
	GetByID(ctx context.Context, id string) (*casesDatamodel.Case, error)
}

type Service struct {
	repo  RepositoryAPI
	cases CaseDirectory
}

func NewService(repo RepositoryAPI, cases CaseDirectory) *Service {
	return &Service{repo: repo, cases: cases}
}

const maxBodyLength = 10000

// authorizeCase loads the case and rejects clients that do not own it.
// The miss is reported as not-found so the case id leaks nothing.
func (s *Service) authorizeCase(ctx context.Context, actorID, actorRole, caseID string) error {
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return err
	}
	if actorRole == rbac.RoleClient && c.ClientID != actorID {
		return internal.ErrCaseNotFound
	}
	return nil
}

func (s *Service) Send(ctx context.Context, actorID, actorRole, caseID string, body string) (*Message, error) {
	v := validation.NewValidator()
	v.Field("body", strings.TrimSpace(body)).Required().MaxLength(maxBodyLength)
	v.Field("case_id", caseID).Required()
	if err := v.Validate(); err != nil {
		return nil, err
	}

	if err := s.authorizeCase(ctx, actorID, actorRole, caseID); err != nil {
		return nil, err
	}

	model := &messageDatamodel.Message{
		ID:       uuid.NewString(),
		CaseID:   caseID,
		SenderID: actorID,
		Body:     body,
		SentAt:   time.Now(),
	}
	if err := s.repo.Create(ctx, model); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	return FromDataModel(model), nil
}

func (s *Service) ListByCase(ctx context.Context, actorID, actorRole, caseID string) ([]Message, error) {
	if err := s.authorizeCase(ctx, actorID, actorRole, caseID); err != nil {
		return nil, err
	}

	models, err := s.repo.ListByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	out := make([]Message, 0, len(models))
	for i := range models {
		out = append(out, *FromDataModel(&models[i]))
	}
	return out, nil
}

// MarkRead stamps the read time. The actor must be on the message's case;
// a client touching another matter's message gets not-found.
func (s *Service) MarkRead(ctx context.Context, actorID, actorRole, id string) error {
	model, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.authorizeCase(ctx, actorID, actorRole, model.CaseID); err != nil {
		return err
	}

	return s.repo.MarkRead(ctx, id, time.Now())
}
