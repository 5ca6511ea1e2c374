package lifecycle

import (
	"context"

	"github.com/giulianni/client-portal/internal/rbac"

	documentDatamodel "github.com/giulianni/client-portal/internal/core/datamodel/document"
)

// Result is the structured outcome of a cascade. A non-empty Errors list
// means overall failure; a non-empty Warnings list means success with
// caveats. Removed names each completed step with its row count.
type Result struct {
	Removed  []string `json:"removed"`
	Warnings []string `json:"warnings"`
	Errors   []string `json:"errors"`
}

func (r *Result) Failed() bool {
	return len(r.Errors) > 0
}

type ServiceAPI interface {
	DeletePrincipal(ctx context.Context, actorID string, principalID string) (*Result, error)
	DeleteCase(ctx context.Context, actorID string, caseID string) (*Result, error)
}

// AuthorizationGate is the pure permission check run before any mutation.
type AuthorizationGate interface {
	Authorize(ctx context.Context, principalID, permission string) (rbac.Decision, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, actorID, action, resourceType, resourceID, detail string) error
}

// ReceiptStore removes a principal's notification read receipts.
type ReceiptStore interface {
	DeleteReceiptsByPrincipal(ctx context.Context, principalID string) (int64, error)
}

// DocumentStore exposes the bulk metadata operations the cascades need.
type DocumentStore interface {
	ListByUploader(ctx context.Context, principalID string) ([]documentDatamodel.Document, error)
	DeleteByUploader(ctx context.Context, principalID string) (int64, error)
	ListByCase(ctx context.Context, caseID string) ([]documentDatamodel.Document, error)
	DeleteByCase(ctx context.Context, caseID string) (int64, error)
}

// BlobStore removes orphan-prone object storage blobs alongside metadata.
type BlobStore interface {
	Remove(ctx context.Context, bucket string, paths []string) error
}

// PrincipalStore deletes the relational principal row. Deleting a row that
// is already gone reports zero rows and no error.
type PrincipalStore interface {
	Delete(ctx context.Context, principalID string) (int64, error)
}

// IdentityStore deletes the hosted identity record for the same id.
type IdentityStore interface {
	DeleteIdentity(ctx context.Context, id string) error
}

type AssignmentStore interface {
	DeleteAssignmentsByCase(ctx context.Context, caseID string) (int64, error)
}

type MessageStore interface {
	DeleteByCase(ctx context.Context, caseID string) (int64, error)
}

type CaseStore interface {
	DeleteCase(ctx context.Context, id string) (int64, error)
}
