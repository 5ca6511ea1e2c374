package message

import (
	"context"
	"time"

	messageDatamodel "github.com/giulianni/client-portal/internal/core/datamodel/message"
)

type Message struct {
	ID       string     `json:"id"`
	CaseID   string     `json:"case_id"`
	SenderID string     `json:"sender_id"`
	Body     string     `json:"body"`
	SentAt   time.Time  `json:"sent_at"`
	ReadAt   *time.Time `json:"read_at,omitempty"`
}

type ServiceAPI interface {
	Send(ctx context.Context, actorID, actorRole, caseID string, body string) (*Message, error)
	ListByCase(ctx context.Context, actorID, actorRole, caseID string) ([]Message, error)
	MarkRead(ctx context.Context, actorID, actorRole, id string) error
}

type RepositoryAPI interface {
	Create(ctx context.Context, m *messageDatamodel.Message) error
	GetByID(ctx context.Context, id string) (*messageDatamodel.Message, error)
	ListByCase(ctx context.Context, caseID string) ([]messageDatamodel.Message, error)
	MarkRead(ctx context.Context, id string, at time.Time) error
}

func FromDataModel(m *messageDatamodel.Message) *Message {
	return &Message{
		ID:       m.ID,
		CaseID:   m.CaseID,
		SenderID: m.SenderID,
		Body:     m.Body,
		SentAt:   m.SentAt,
		ReadAt:   m.ReadAt,
	}
}
