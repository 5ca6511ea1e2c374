package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/giulianni/client-portal/internal"
	"github.com/giulianni/client-portal/internal/audit"
	"github.com/giulianni/client-portal/internal/identity"
	"github.com/giulianni/client-portal/internal/rbac"

	documentDatamodel "github.com/giulianni/client-portal/internal/core/datamodel/document"
)

// Orchestrator runs the two deletion cascades. Each cascade is an ordered
// list of independent steps against different stores; steps run even when an
// earlier step failed, and outcomes accumulate rather than short-circuit,
// because the stores offer no cross-store transaction to lean on. Steps run
// sequentially within one request; concurrent cascades for different ids are
// independent, and a concurrent second delete of the same id degrades to
// idempotent success because every step treats "already gone" as done.
type Orchestrator struct {
	gate        AuthorizationGate
	receipts    ReceiptStore
	documents   DocumentStore
	blobs       BlobStore
	principals  PrincipalStore
	identities  IdentityStore
	assignments AssignmentStore
	messages    MessageStore
	cases       CaseStore
	auditor     AuditRecorder
	logger      *slog.Logger
}

type Config struct {
	Gate        AuthorizationGate
	Receipts    ReceiptStore
	Documents   DocumentStore
	Blobs       BlobStore
	Principals  PrincipalStore
	Identities  IdentityStore
	Assignments AssignmentStore
	Messages    MessageStore
	Cases       CaseStore
	Auditor     AuditRecorder
	Logger      *slog.Logger
}

func NewOrchestrator(cfg Config) *Orchestrator {
	return &Orchestrator{
		gate:        cfg.Gate,
		receipts:    cfg.Receipts,
		documents:   cfg.Documents,
		blobs:       cfg.Blobs,
		principals:  cfg.Principals,
		identities:  cfg.Identities,
		assignments: cfg.Assignments,
		messages:    cfg.Messages,
		cases:       cfg.Cases,
		auditor:     cfg.Auditor,
		logger:      cfg.Logger,
	}
}

// DeletePrincipal removes a principal and everything that references it:
// read receipts first, then uploaded documents with their blobs, then the
// relational row, then the identity record. Only the relational row is
// fatal; an identity record that is already gone counts as success with a
// warning, since the desired end state already holds.
func (o *Orchestrator) DeletePrincipal(ctx context.Context, actorID string, principalID string) (*Result, error) {
	decision, err := o.gate.Authorize(ctx, actorID, rbac.PermManageUsers)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, internal.ErrPermissionDenied
	}

	result := &Result{}

	// step 1: read receipts, a dependent leaf that must not dangle if the
	// same id were ever provisioned again
	if n, err := o.receipts.DeleteReceiptsByPrincipal(ctx, principalID); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("notification receipts not removed: %v", err))
	} else {
		result.Removed = append(result.Removed, fmt.Sprintf("user_notifications (%d)", n))
	}

	// step 2: documents the principal uploaded, blobs included
	o.removeDocuments(ctx, result, "uploader",
		func() ([]documentDatamodel.Document, error) { return o.documents.ListByUploader(ctx, principalID) },
		func() (int64, error) { return o.documents.DeleteByUploader(ctx, principalID) })

	// step 3: the relational principal row. Fatal on failure: reporting
	// success while the row survives would break the invariant that a
	// deleted principal has no relational record.
	if _, err := o.principals.Delete(ctx, principalID); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("principal record not removed: %v", err))
	} else {
		result.Removed = append(result.Removed, "users (1)")
	}

	// step 4: identity record for the same id. Already absent means the
	// desired end state holds.
	if err := o.identities.DeleteIdentity(ctx, principalID); err != nil {
		if errors.Is(err, identity.ErrIdentityNotFound) {
			result.Warnings = append(result.Warnings, "identity record already absent")
		} else {
			result.Warnings = append(result.Warnings, fmt.Sprintf("identity record not removed: %v", err))
		}
	} else {
		result.Removed = append(result.Removed, "identity (1)")
	}

	// step 5: one audit entry regardless of the outcomes above
	o.recordCascade(ctx, result, actorID, audit.ResourceUser, principalID)

	if result.Failed() {
		return result, internal.NewPartialFailureError("principal deletion incomplete", result)
	}
	return result, nil
}

// DeleteCase removes a case and its dependents: documents with blobs, then
// assignments, then messages, then the case row itself (fatal), then one
// audit entry. The delete_case permission check runs before any mutation.
func (o *Orchestrator) DeleteCase(ctx context.Context, actorID string, caseID string) (*Result, error) {
	decision, err := o.gate.Authorize(ctx, actorID, rbac.PermDeleteCase)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, internal.ErrPermissionDenied
	}

	result := &Result{}

	o.removeDocuments(ctx, result, "case",
		func() ([]documentDatamodel.Document, error) { return o.documents.ListByCase(ctx, caseID) },
		func() (int64, error) { return o.documents.DeleteByCase(ctx, caseID) })

	if n, err := o.assignments.DeleteAssignmentsByCase(ctx, caseID); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("assignments not removed: %v", err))
	} else {
		result.Removed = append(result.Removed, fmt.Sprintf("case_assignments (%d)", n))
	}

	if n, err := o.messages.DeleteByCase(ctx, caseID); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("messages not removed: %v", err))
	} else {
		result.Removed = append(result.Removed, fmt.Sprintf("messages (%d)", n))
	}

	if _, err := o.cases.DeleteCase(ctx, caseID); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("case record not removed: %v", err))
	} else {
		result.Removed = append(result.Removed, "cases (1)")
	}

	o.recordCascade(ctx, result, actorID, audit.ResourceCase, caseID)

	if result.Failed() {
		return result, internal.NewPartialFailureError("case deletion incomplete", result)
	}
	return result, nil
}

// removeDocuments deletes document metadata and the backing blobs. Blob
// removal is mandatory but never fatal; the metadata rows decide the step's
// outcome.
func (o *Orchestrator) removeDocuments(ctx context.Context, result *Result, scope string,
	list func() ([]documentDatamodel.Document, error), deleteRows func() (int64, error)) {

	docs, err := list()
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("documents by %s not listed: %v", scope, err))
		return
	}

	n, err := deleteRows()
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("documents by %s not removed: %v", scope, err))
		return
	}
	result.Removed = append(result.Removed, fmt.Sprintf("documents (%d)", n))

	byBucket := map[string][]string{}
	for _, d := range docs {
		byBucket[d.Bucket] = append(byBucket[d.Bucket], d.StoragePath)
	}
	for bucket, paths := range byBucket {
		if err := o.blobs.Remove(ctx, bucket, paths); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%d blob(s) in %s not removed: %v", len(paths), bucket, err))
		}
	}
}

// recordCascade appends the single audit entry summarizing the cascade. A
// failed audit write is a warning of the operation, never an error: the
// audit trail is observability, not a correctness invariant of the deletion.
func (o *Orchestrator) recordCascade(ctx context.Context, result *Result, actorID, resourceType, resourceID string) {
	detail := fmt.Sprintf("removed: %s", strings.Join(result.Removed, ", "))
	if len(result.Warnings) > 0 {
		detail += fmt.Sprintf("; warnings: %s", strings.Join(result.Warnings, ", "))
	}
	if len(result.Errors) > 0 {
		detail += fmt.Sprintf("; errors: %s", strings.Join(result.Errors, ", "))
	}

	if err := o.auditor.Record(ctx, actorID, audit.ActionDelete, resourceType, resourceID, detail); err != nil {
		result.Warnings = append(result.Warnings, "audit entry not written")
		o.logger.Warn("audit write failed for cascade",
			"resource_type", resourceType, "resource_id", resourceID, "error", err)
	}
}
