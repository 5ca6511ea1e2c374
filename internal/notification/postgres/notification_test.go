package postgres_test

import (
	"context"
	"testing"
	"time"

	notificationDatamodel "github.com/giulianni/client-portal/internal/core/datamodel/notification"
	"github.com/giulianni/client-portal/internal/notification"
	notificationPostgres "github.com/giulianni/client-portal/internal/notification/postgres"
	"github.com/giulianni/client-portal/internal/rbac"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestNotificationPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Notification Postgres Suite")
}

type sqliteUser struct {
	ID       string `gorm:"primaryKey"`
	Email    string `gorm:"column:email;uniqueIndex"`
	Name     string `gorm:"column:name"`
	Role     string `gorm:"column:role"`
	IsActive bool   `gorm:"column:is_active"`
}

func (sqliteUser) TableName() string { return "users" }

type sqliteNotification struct {
	ID           string    `gorm:"primaryKey"`
	Title        string    `gorm:"column:title"`
	Body         string    `gorm:"column:body"`
	Audience     string    `gorm:"column:audience"`
	TargetRole   *string   `gorm:"column:target_role"`
	TargetUserID *string   `gorm:"column:target_user_id"`
	CreatedBy    string    `gorm:"column:created_by"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (sqliteNotification) TableName() string { return "notifications" }

type sqliteReceipt struct {
	ID             string     `gorm:"primaryKey"`
	NotificationID string     `gorm:"column:notification_id"`
	UserID         string     `gorm:"column:user_id"`
	ReadAt         *time.Time `gorm:"column:read_at"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
}

func (sqliteReceipt) TableName() string { return "user_notifications" }

var _ = Describe("Notification Repository", func() {
	var (
		db   *gorm.DB
		repo *notificationPostgres.Repository
		ctx  context.Context
	)

	seedUser := func(role string, active bool) string {
		id := uuid.NewString()
		Expect(db.Create(&sqliteUser{
			ID:       id,
			Email:    id + "@firm.example",
			Name:     "user " + id[:8],
			Role:     role,
			IsActive: active,
		}).Error).To(Succeed())
		return id
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(db.AutoMigrate(&sqliteUser{}, &sqliteNotification{}, &sqliteReceipt{})).To(Succeed())

		repo = notificationPostgres.NewRepository(db)
		ctx = context.Background()
	})

	Describe("ListAudienceUserIDs", func() {
		It("resolves a global audience to every active principal", func() {
			active1 := seedUser(rbac.RoleStaff, true)
			active2 := seedUser(rbac.RoleClient, true)
			seedUser(rbac.RoleClient, false)

			ids, err := repo.ListAudienceUserIDs(ctx, notification.AudienceGlobal, "", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(ConsistOf(active1, active2))
		})

		It("resolves a role audience to active holders of that role", func() {
			staff := seedUser(rbac.RoleStaff, true)
			seedUser(rbac.RoleClient, true)
			seedUser(rbac.RoleStaff, false)

			ids, err := repo.ListAudienceUserIDs(ctx, notification.AudienceRole, rbac.RoleStaff, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(ConsistOf(staff))
		})

		It("resolves a user audience to exactly the target", func() {
			target := uuid.NewString()
			ids, err := repo.ListAudienceUserIDs(ctx, notification.AudienceUser, "", target)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(Equal([]string{target}))
		})

		It("rejects an unknown audience", func() {
			_, err := repo.ListAudienceUserIDs(ctx, "everyone", "", "")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("receipts", func() {
		var notifID string

		BeforeEach(func() {
			notifID = uuid.NewString()
			Expect(repo.Create(ctx, &notificationDatamodel.Notification{
				ID:        notifID,
				Title:     "maintenance window",
				Audience:  notification.AudienceGlobal,
				CreatedBy: uuid.NewString(),
				CreatedAt: time.Now(),
			})).To(Succeed())
		})

		It("creates receipts in batch and lists them per user", func() {
			userID := uuid.NewString()
			receipts := []notificationDatamodel.UserNotification{
				{ID: uuid.NewString(), NotificationID: notifID, UserID: userID, CreatedAt: time.Now()},
				{ID: uuid.NewString(), NotificationID: notifID, UserID: uuid.NewString(), CreatedAt: time.Now()},
			}
			Expect(repo.CreateReceipts(ctx, receipts)).To(Succeed())

			mine, err := repo.ListReceiptsForUser(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(mine).To(HaveLen(1))
			Expect(mine[0].NotificationID).To(Equal(notifID))
		})

		It("marks a receipt read only for its owner", func() {
			owner := uuid.NewString()
			receiptID := uuid.NewString()
			Expect(repo.CreateReceipts(ctx, []notificationDatamodel.UserNotification{
				{ID: receiptID, NotificationID: notifID, UserID: owner, CreatedAt: time.Now()},
			})).To(Succeed())

			now := time.Now()
			Expect(repo.MarkReceiptRead(ctx, receiptID, uuid.NewString(), now)).To(Succeed())
			mine, err := repo.ListReceiptsForUser(ctx, owner)
			Expect(err).NotTo(HaveOccurred())
			Expect(mine[0].ReadAt).To(BeNil())

			Expect(repo.MarkReceiptRead(ctx, receiptID, owner, now)).To(Succeed())
			mine, err = repo.ListReceiptsForUser(ctx, owner)
			Expect(err).NotTo(HaveOccurred())
			Expect(mine[0].ReadAt).NotTo(BeNil())
		})

		It("deletes every receipt a principal holds and reports the count", func() {
			principal := uuid.NewString()
			Expect(repo.CreateReceipts(ctx, []notificationDatamodel.UserNotification{
				{ID: uuid.NewString(), NotificationID: notifID, UserID: principal, CreatedAt: time.Now()},
				{ID: uuid.NewString(), NotificationID: notifID, UserID: principal, CreatedAt: time.Now()},
				{ID: uuid.NewString(), NotificationID: notifID, UserID: uuid.NewString(), CreatedAt: time.Now()},
			})).To(Succeed())

			n, err := repo.DeleteReceiptsByPrincipal(ctx, principal)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(int64(2)))

			n, err = repo.DeleteReceiptsByPrincipal(ctx, principal)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeZero())
		})
	})
})
