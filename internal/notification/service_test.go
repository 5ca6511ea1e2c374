package notification

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/giulianni/client-portal/internal/core/events"
	"github.com/giulianni/client-portal/internal/rbac"

	notificationDatamodel "github.com/giulianni/client-portal/internal/core/datamodel/notification"
)

func TestNotification(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Notification Module Suite")
}

type mockNotifRepo struct {
	notifications map[string]*notificationDatamodel.Notification
	receipts      []notificationDatamodel.UserNotification
	usersByRole   map[string][]string
	receiptsErr   error
}

func newMockNotifRepo() *mockNotifRepo {
	return &mockNotifRepo{
		notifications: map[string]*notificationDatamodel.Notification{},
		usersByRole:   map[string][]string{},
	}
}

func (m *mockNotifRepo) Create(_ context.Context, n *notificationDatamodel.Notification) error {
	m.notifications[n.ID] = n
	return nil
}

func (m *mockNotifRepo) GetByID(_ context.Context, id string) (*notificationDatamodel.Notification, error) {
	if n, ok := m.notifications[id]; ok {
		return n, nil
	}
	return nil, errors.New("not found")
}

func (m *mockNotifRepo) CreateReceipts(_ context.Context, receipts []notificationDatamodel.UserNotification) error {
	if m.receiptsErr != nil {
		return m.receiptsErr
	}
	m.receipts = append(m.receipts, receipts...)
	return nil
}

func (m *mockNotifRepo) ListReceiptsForUser(_ context.Context, userID string) ([]notificationDatamodel.UserNotification, error) {
	var out []notificationDatamodel.UserNotification
	for _, r := range m.receipts {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockNotifRepo) MarkReceiptRead(_ context.Context, receiptID string, userID string, at time.Time) error {
	for i := range m.receipts {
		if m.receipts[i].ID == receiptID && m.receipts[i].UserID == userID {
			m.receipts[i].ReadAt = &at
			return nil
		}
	}
	return errors.New("receipt not found")
}

func (m *mockNotifRepo) ListAudienceUserIDs(_ context.Context, audience string, targetRole, targetUserID string) ([]string, error) {
	switch audience {
	case AudienceGlobal:
		var all []string
		for _, ids := range m.usersByRole {
			all = append(all, ids...)
		}
		return all, nil
	case AudienceRole:
		return m.usersByRole[targetRole], nil
	case AudienceUser:
		return []string{targetUserID}, nil
	}
	return nil, errors.New("unknown audience")
}

var _ = ginkgo.Describe("Notification Service", func() {
	var (
		service *Service
		repo    *mockNotifRepo
		bus     *events.EventBus
		ctx     context.Context
	)

	const actorID = "admin-0000-0000-0000-000000000001"

	ginkgo.BeforeEach(func() {
		repo = newMockNotifRepo()
		repo.usersByRole = map[string][]string{
			rbac.RoleStaff:  {"staff-1", "staff-2"},
			rbac.RoleClient: {"client-1"},
		}
		bus = events.NewEventBus(slog.Default())
		service = NewService(repo, syncPublisher{bus}, noopAuditor{}, slog.Default())
		bus.Subscribe(events.EventTypeNotificationCreated, service.FanOutReceipts)
		ctx = context.Background()
	})

	ginkgo.Describe("Create", func() {
		ginkgo.It("should fan a role notification out to every principal in the role", func() {
			created, err := service.Create(ctx, actorID, CreateNotificationDTO{
				Title:      "Office closure",
				Body:       "Closed Friday",
				Audience:   AudienceRole,
				TargetRole: rbac.RoleStaff,
			})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(created.Audience).To(gomega.Equal(AudienceRole))
			gomega.Expect(repo.receipts).To(gomega.HaveLen(2))
		})

		ginkgo.It("should target exactly one principal for a user notification", func() {
			_, err := service.Create(ctx, actorID, CreateNotificationDTO{
				Title:        "Your hearing date",
				Audience:     AudienceUser,
				TargetUserID: "client-1",
			})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(repo.receipts).To(gomega.HaveLen(1))
			gomega.Expect(repo.receipts[0].UserID).To(gomega.Equal("client-1"))
		})

		ginkgo.It("should reach everyone for a global notification", func() {
			_, err := service.Create(ctx, actorID, CreateNotificationDTO{
				Title:    "System maintenance",
				Audience: AudienceGlobal,
			})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(repo.receipts).To(gomega.HaveLen(3))
		})

		ginkgo.It("should reject a missing audience instead of defaulting", func() {
			_, err := service.Create(ctx, actorID, CreateNotificationDTO{
				Title: "No audience",
			})

			var ve ValidationError
			gomega.Expect(errors.As(err, &ve)).To(gomega.BeTrue())
			gomega.Expect(ve.Field).To(gomega.Equal("audience"))
		})

		ginkgo.It("should reject a global notification carrying a target", func() {
			_, err := service.Create(ctx, actorID, CreateNotificationDTO{
				Title:      "Confused",
				Audience:   AudienceGlobal,
				TargetRole: rbac.RoleStaff,
			})

			var ve ValidationError
			gomega.Expect(errors.As(err, &ve)).To(gomega.BeTrue())
		})

		ginkgo.It("should reject a role audience without a valid role", func() {
			_, err := service.Create(ctx, actorID, CreateNotificationDTO{
				Title:      "Oops",
				Audience:   AudienceRole,
				TargetRole: "partners",
			})

			var ve ValidationError
			gomega.Expect(errors.As(err, &ve)).To(gomega.BeTrue())
			gomega.Expect(ve.Field).To(gomega.Equal("target_role"))
		})

		ginkgo.It("should publish on a context that outlives the request", func() {
			capture := &capturingPublisher{}
			service = NewService(repo, capture, noopAuditor{}, slog.Default())

			requestCtx, cancel := context.WithCancel(context.Background())
			_, err := service.Create(requestCtx, actorID, CreateNotificationDTO{
				Title:    "Survives the response",
				Audience: AudienceGlobal,
			})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			// The request context dies once the handler returns; the
			// fan-out context must not die with it.
			cancel()
			gomega.Expect(capture.ctx.Err()).To(gomega.BeNil())

			gomega.Expect(service.FanOutReceipts(capture.ctx, capture.event)).To(gomega.Succeed())
			gomega.Expect(repo.receipts).To(gomega.HaveLen(3))
		})
	})

	ginkgo.Describe("Receipts", func() {
		ginkgo.BeforeEach(func() {
			_, err := service.Create(ctx, actorID, CreateNotificationDTO{
				Title:        "Your hearing date",
				Body:         "March 3rd",
				Audience:     AudienceUser,
				TargetUserID: "client-1",
			})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
		})

		ginkgo.It("should list receipts with the notification content attached", func() {
			receipts, err := service.ListForUser(ctx, "client-1")

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(receipts).To(gomega.HaveLen(1))
			gomega.Expect(receipts[0].Title).To(gomega.Equal("Your hearing date"))
			gomega.Expect(receipts[0].ReadAt).To(gomega.BeNil())
		})

		ginkgo.It("should mark a receipt read for its owner only", func() {
			receipts, err := service.ListForUser(ctx, "client-1")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			err = service.MarkRead(ctx, "someone-else", receipts[0].ID)
			gomega.Expect(err).To(gomega.HaveOccurred())

			err = service.MarkRead(ctx, "client-1", receipts[0].ID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			receipts, _ = service.ListForUser(ctx, "client-1")
			gomega.Expect(receipts[0].ReadAt).NotTo(gomega.BeNil())
		})
	})
})

// syncPublisher runs fan-out inline so assertions see the receipts.
type syncPublisher struct {
	bus *events.EventBus
}

func (p syncPublisher) Publish(ctx context.Context, event events.Event) {
	_ = p.bus.PublishSync(ctx, event)
}

// capturingPublisher records what the service hands to the bus.
type capturingPublisher struct {
	ctx   context.Context
	event events.Event
}

func (p *capturingPublisher) Publish(ctx context.Context, event events.Event) {
	p.ctx = ctx
	p.event = event
}

type noopAuditor struct{}

func (noopAuditor) Record(_ context.Context, _, _, _, _, _ string) error {
	return nil
}
