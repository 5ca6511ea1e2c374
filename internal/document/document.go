package document

import (
	"context"
	"time"

	documentDatamodel "github.com/giulianni/client-portal/internal/core/datamodel/document"
)

type Document struct {
	ID           string    `json:"id"`
	CaseID       string    `json:"case_id"`
	FileName     string    `json:"file_name"`
	MimeType     string    `json:"mime_type"`
	SizeBytes    int64     `json:"size_bytes"`
	UploadedBy   string    `json:"uploaded_by"`
	ReviewStatus string    `json:"review_status"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

const (
	ReviewPending  = "pending"
	ReviewApproved = "approved"
	ReviewRejected = "rejected"
)

func ValidReviewStatus(status string) bool {
	switch status {
	case ReviewPending, ReviewApproved, ReviewRejected:
		return true
	}
	return false
}

type UploadInput struct {
	CaseID   string
	FileName string
	MimeType string
	Data     []byte
}

type ServiceAPI interface {
	Upload(ctx context.Context, actorID string, input UploadInput) (*Document, error)
	GetByID(ctx context.Context, id string) (*Document, error)
	ListByCase(ctx context.Context, actorID, actorRole, caseID string) ([]Document, error)
	Review(ctx context.Context, actorID string, id string, status string) (*Document, error)
	DownloadURL(ctx context.Context, actorID, actorRole, id string) (string, error)
	Delete(ctx context.Context, actorID string, id string) ([]string, error)
}

type RepositoryAPI interface {
	Create(ctx context.Context, d *documentDatamodel.Document) error
	GetByID(ctx context.Context, id string) (*documentDatamodel.Document, error)
	ListByCase(ctx context.Context, caseID string) ([]documentDatamodel.Document, error)
	UpdateReviewStatus(ctx context.Context, id string, status string) error
	Delete(ctx context.Context, id string) (int64, error)
}

func FromDataModel(m *documentDatamodel.Document) *Document {
	return &Document{
		ID:           m.ID,
		CaseID:       m.CaseID,
		FileName:     m.FileName,
		MimeType:     m.MimeType,
		SizeBytes:    m.SizeBytes,
		UploadedBy:   m.UploadedBy,
		ReviewStatus: m.ReviewStatus,
		UploadedAt:   m.UploadedAt,
	}
}
