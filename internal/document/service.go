package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/giulianni/client-portal/internal"
	"github.com/giulianni/client-portal/internal/audit"
	"github.com/giulianni/client-portal/internal/objectstore"
	"github.com/giulianni/client-portal/internal/rbac"

	casesDatamodel "github.com/giulianni/client-portal/internal/core/datamodel/cases"
	documentDatamodel "github.com/giulianni/client-portal/internal/core/datamodel/document"
)

type AuditRecorder interface {
	Record(ctx context.Context, actorID, action, resourceType, resourceID, detail string) error
}

// CaseDirectory confirms the owning case exists before metadata is written
// and resolves ownership for client-scoped reads.
type CaseDirectory interface {
	CaseExists(ctx context.Context, caseID string) (bool, error)
	GetByID(ctx context.Context, id string) (*casesDatamodel.Case, error)
}

const signedURLTTL = 15 * time.Minute

type Service struct {
	repo    RepositoryAPI
	blobs   objectstore.Store
	cases   CaseDirectory
	auditor AuditRecorder
	bucket  string
	logger  *slog.Logger
}

func NewService(repo RepositoryAPI, blobs objectstore.Store, cases CaseDirectory, auditor AuditRecorder, bucket string, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		blobs:   blobs,
		cases:   cases,
		auditor: auditor,
		bucket:  bucket,
		logger:  logger,
	}
}

// Upload stores the blob first, then the metadata row. The owning case must
// exist; the store has no foreign key into the cases collection so the check
// lives here. A failed metadata insert removes the just-written blob so the
// bucket does not accumulate unreferenced objects.
func (s *Service) Upload(ctx context.Context, actorID string, input UploadInput) (*Document, error) {
	if input.FileName == "" {
		return nil, internal.NewValidationError("file name is required", internal.ErrCodeValidationFailed)
	}
	if len(input.Data) == 0 {
		return nil, internal.NewValidationError("file is empty", internal.ErrCodeValidationFailed)
	}

	exists, err := s.cases.CaseExists(ctx, input.CaseID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, internal.ErrCaseNotFound
	}

	id := uuid.NewString()
	storagePath := path.Join("cases", input.CaseID, id+path.Ext(input.FileName))

	if _, err := s.blobs.Upload(ctx, s.bucket, storagePath, input.Data, input.MimeType); err != nil {
		return nil, internal.NewStoreUnavailableError("object store upload failed", err)
	}

	model := &documentDatamodel.Document{
		ID:           id,
		CaseID:       input.CaseID,
		FileName:     input.FileName,
		MimeType:     input.MimeType,
		SizeBytes:    int64(len(input.Data)),
		UploadedBy:   actorID,
		Bucket:       s.bucket,
		StoragePath:  storagePath,
		ReviewStatus: ReviewPending,
		UploadedAt:   time.Now(),
	}

	if err := s.repo.Create(ctx, model); err != nil {
		if remErr := s.blobs.Remove(ctx, s.bucket, []string{storagePath}); remErr != nil {
			s.logger.Error("failed to remove blob after metadata insert failure",
				"path", storagePath, "error", remErr)
		}
		return nil, fmt.Errorf("failed to create document record: %w", err)
	}

	if err := s.auditor.Record(ctx, actorID, audit.ActionCreate, audit.ResourceDocument, id,
		fmt.Sprintf("uploaded %s to case %s", input.FileName, input.CaseID)); err != nil {
		s.logger.Warn("audit write failed for document upload", "document_id", id, "error", err)
	}

	return FromDataModel(model), nil
}

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

func (s *Service) GetByID(ctx context.Context, id string) (*Document, error) {
	model, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(model), nil
}

func (s *Service) ListByCase(ctx context.Context, actorID, actorRole, caseID string) ([]Document, error) {
	if err := s.authorizeCase(ctx, actorID, actorRole, caseID); err != nil {
		return nil, err
	}

	models, err := s.repo.ListByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	out := make([]Document, 0, len(models))
	for i := range models {
		out = append(out, *FromDataModel(&models[i]))
	}
	return out, nil
}

func (s *Service) Review(ctx context.Context, actorID string, id string, status string) (*Document, error) {
	if !ValidReviewStatus(status) {
		return nil, internal.NewValidationError("status must be one of pending, approved, rejected", internal.ErrCodeInvalidStatus)
	}

	model, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if model.ReviewStatus != status {
		if err := s.repo.UpdateReviewStatus(ctx, id, status); err != nil {
			return nil, fmt.Errorf("failed to update review status: %w", err)
		}
		model.ReviewStatus = status

		if err := s.auditor.Record(ctx, actorID, audit.ActionUpdate, audit.ResourceDocument, id,
			fmt.Sprintf("review status set to %s", status)); err != nil {
			s.logger.Warn("audit write failed for document review", "document_id", id, "error", err)
		}
	}

	return FromDataModel(model), nil
}

// DownloadURL signs a short-lived link for the blob. A client asking for a
// document on another matter gets document-not-found, never a URL.
func (s *Service) DownloadURL(ctx context.Context, actorID, actorRole, id string) (string, error) {
	model, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	if err := s.authorizeCase(ctx, actorID, actorRole, model.CaseID); err != nil {
		if errors.Is(err, internal.ErrCaseNotFound) {
			return "", internal.ErrDocumentNotFound
		}
		return "", err
	}

	url, err := s.blobs.SignedURL(ctx, model.Bucket, model.StoragePath, signedURLTTL)
	if err != nil {
		return "", internal.NewStoreUnavailableError("failed to sign download url", err)
	}
	return url, nil
}

// Delete removes the metadata row and then the blob. Blob removal always
// runs but its failure degrades to a warning; the metadata row is the
// authoritative record and its removal decides success.
func (s *Service) Delete(ctx context.Context, actorID string, id string) ([]string, error) {
	model, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to delete document record: %w", err)
	}

	var warnings []string
	if err := s.blobs.Remove(ctx, model.Bucket, []string{model.StoragePath}); err != nil &&
		!errors.Is(err, objectstore.ErrObjectNotFound) {
		warnings = append(warnings, fmt.Sprintf("blob %s not removed: %v", model.StoragePath, err))
		s.logger.Warn("blob removal failed", "path", model.StoragePath, "error", err)
	}

	if err := s.auditor.Record(ctx, actorID, audit.ActionDelete, audit.ResourceDocument, id,
		fmt.Sprintf("deleted %s from case %s", model.FileName, model.CaseID)); err != nil {
		warnings = append(warnings, "audit entry not written")
		s.logger.Warn("audit write failed for document deletion", "document_id", id, "error", err)
	}

	return warnings, nil
}
