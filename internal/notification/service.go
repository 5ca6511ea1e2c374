package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/giulianni/client-portal/internal/audit"
	"github.com/giulianni/client-portal/internal/core/events"

	notificationDatamodel "github.com/giulianni/client-portal/internal/core/datamodel/notification"
)

type AuditRecorder interface {
	Record(ctx context.Context, actorID, action, resourceType, resourceID, detail string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event)
}

type Service struct {
	repo      RepositoryAPI
	publisher EventPublisher
	auditor   AuditRecorder
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, publisher EventPublisher, auditor AuditRecorder, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		auditor:   auditor,
		logger:    logger,
	}
}

// Create stores the notification and publishes a created event. Receipt
// fan-out happens in the event handler so a slow audience query never
// blocks the caller.
func (s *Service) Create(ctx context.Context, actorID string, dto CreateNotificationDTO) (*Notification, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	model := &notificationDatamodel.Notification{
		ID:        uuid.NewString(),
		Title:     dto.Title,
		Body:      dto.Body,
		Audience:  dto.Audience,
		CreatedBy: actorID,
		CreatedAt: time.Now(),
	}
	if dto.Audience == AudienceRole {
		role := dto.TargetRole
		model.TargetRole = &role
	}
	if dto.Audience == AudienceUser {
		target := dto.TargetUserID
		model.TargetUserID = &target
	}

	if err := s.repo.Create(ctx, model); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	// The fan-out goroutine must outlive the request; publishing with the
	// request context would cancel the receipt writes once the response
	// is sent.
	s.publisher.Publish(context.WithoutCancel(ctx), events.NewNotificationCreatedEvent(
		model.ID, dto.Audience, dto.TargetRole, dto.TargetUserID))

	if err := s.auditor.Record(ctx, actorID, audit.ActionCreate, audit.ResourceNotification, model.ID,
		fmt.Sprintf("notification to %s audience", dto.Audience)); err != nil {
		s.logger.Warn("audit write failed for notification", "notification_id", model.ID, "error", err)
	}

	return FromDataModel(model), nil
}

// FanOutReceipts resolves the audience and writes one receipt per user.
// Registered on the event bus for notification.created.
func (s *Service) FanOutReceipts(ctx context.Context, event events.Event) error {
	created, ok := event.(*events.NotificationCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %s", event.EventType())
	}

	userIDs, err := s.repo.ListAudienceUserIDs(ctx, created.Audience, created.TargetRole, created.TargetUserID)
	if err != nil {
		return fmt.Errorf("failed to resolve audience: %w", err)
	}
	if len(userIDs) == 0 {
		return nil
	}

	now := time.Now()
	receipts := make([]notificationDatamodel.UserNotification, 0, len(userIDs))
	for _, userID := range userIDs {
		receipts = append(receipts, notificationDatamodel.UserNotification{
			ID:             uuid.NewString(),
			NotificationID: created.NotificationID,
			UserID:         userID,
			CreatedAt:      now,
		})
	}

	if err := s.repo.CreateReceipts(ctx, receipts); err != nil {
		return fmt.Errorf("failed to write receipts: %w", err)
	}

	s.logger.Info("notification receipts written",
		"notification_id", created.NotificationID, "count", len(receipts))
	return nil
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]Receipt, error) {
	models, err := s.repo.ListReceiptsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]Receipt, 0, len(models))
	for _, m := range models {
		receipt := Receipt{
			ID:             m.ID,
			NotificationID: m.NotificationID,
			ReadAt:         m.ReadAt,
			CreatedAt:      m.CreatedAt,
		}
		if n, err := s.repo.GetByID(ctx, m.NotificationID); err == nil {
			receipt.Title = n.Title
			receipt.Body = n.Body
		}
		out = append(out, receipt)
	}
	return out, nil
}

func (s *Service) MarkRead(ctx context.Context, userID string, receiptID string) error {
	return s.repo.MarkReceiptRead(ctx, receiptID, userID, time.Now())
}
