package audit

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/giulianni/client-portal/internal"
	"github.com/google/uuid"
)

const exportLimit = 10000

// Service appends and queries audit log entries. Recording is observability,
// not a correctness invariant: a failed append must never unwind the
// operation that triggered it, so Record reports failure through its return
// value and the caller downgrades it to a warning.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Record appends one immutable entry. It never panics and never wraps the
// failure into anything fatal.
func (s *Service) Record(ctx context.Context, actorID, action, resourceType, resourceID, detail string) error {
	if actorID == "" {
		actorID = internal.UserIDFromContext(ctx)
	}
	entry := &Entry{
		ID:           uuid.NewString(),
		ActorID:      actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Detail:       detail,
		CreatedAt:    time.Now(),
	}

	if origin, ok := originFromContext(ctx); ok {
		entry.Origin = origin
	}

	if err := s.repo.Append(ctx, entry); err != nil {
		s.logger.Warn("audit append failed",
			"actor_id", actorID,
			"action", action,
			"resource_type", resourceType,
			"resource_id", resourceID,
			"error", err)
		return fmt.Errorf("audit append failed: %w", err)
	}
	return nil
}

// List returns entries matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter Filter) ([]*Entry, error) {
	if filter.Limit <= 0 || filter.Limit > exportLimit {
		filter.Limit = 100
	}
	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("audit list failed", "error", err)
		return nil, err
	}
	return entries, nil
}

// ExportCSV streams entries matching the filter as CSV. Pagination is
// disabled for export, capped at exportLimit rows.
func (s *Service) ExportCSV(ctx context.Context, filter Filter, w io.Writer) error {
	filter.Limit = exportLimit
	filter.Offset = 0

	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("audit export failed", "error", err)
		return err
	}

	cw := csv.NewWriter(w)
	header := []string{"id", "actor_id", "action", "resource_type", "resource_id", "detail", "origin", "created_at"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, e := range entries {
		record := []string{
			e.ID,
			e.ActorID,
			e.Action,
			e.ResourceType,
			e.ResourceID,
			e.Detail,
			e.Origin,
			e.CreatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type originKey struct{}

// ContextWithOrigin attaches the request origin (remote address) so Record
// can stamp entries without taking an *http.Request.
func ContextWithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, originKey{}, origin)
}

func originFromContext(ctx context.Context) (string, bool) {
	origin, ok := ctx.Value(originKey{}).(string)
	return origin, ok
}
