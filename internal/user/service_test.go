package user

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/giulianni/client-portal/internal"
	"github.com/giulianni/client-portal/internal/identity"
	"github.com/giulianni/client-portal/internal/rbac"

	userDatamodel "github.com/giulianni/client-portal/internal/core/datamodel/user"
)

func TestUser(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "User Module Suite")
}

type mockUserRepo struct {
	byID        map[string]*userDatamodel.User
	byEmail     map[string]*userDatamodel.User
	createErr   error
	createdWith *userDatamodel.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		byID:    map[string]*userDatamodel.User{},
		byEmail: map[string]*userDatamodel.User{},
	}
}

func (m *mockUserRepo) Create(_ context.Context, u *userDatamodel.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.createdWith = u
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*userDatamodel.User, error) {
	if u, ok := m.byID[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, internal.ErrUserNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*userDatamodel.User, error) {
	if u, ok := m.byEmail[email]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, internal.ErrUserNotFound
}

func (m *mockUserRepo) List(_ context.Context, _ ListFilter) ([]userDatamodel.User, error) {
	var out []userDatamodel.User
	for _, u := range m.byID {
		out = append(out, *u)
	}
	return out, nil
}

func (m *mockUserRepo) Update(_ context.Context, u *userDatamodel.User) error {
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u
	return nil
}

type mockIdentityStore struct {
	nextID     string
	createErr  error
	deleted    []string
	deleteErr  error
	createdFor []string
}

func (m *mockIdentityStore) CreateIdentity(_ context.Context, email, _ string, _ identity.Attributes) (string, error) {
	if m.createErr != nil {
		return "", m.createErr
	}
	m.createdFor = append(m.createdFor, email)
	return m.nextID, nil
}

func (m *mockIdentityStore) DeleteIdentity(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type recordedAudit struct {
	actorID      string
	action       string
	resourceType string
	resourceID   string
	detail       string
}

type mockAuditor struct {
	records []recordedAudit
	err     error
}

func (m *mockAuditor) Record(_ context.Context, actorID, action, resourceType, resourceID, detail string) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, recordedAudit{actorID, action, resourceType, resourceID, detail})
	return nil
}

var _ = ginkgo.Describe("User Service", func() {
	var (
		service    *Service
		repo       *mockUserRepo
		identities *mockIdentityStore
		auditor    *mockAuditor
		ctx        context.Context
	)

	const adminID = "00000000-0000-0000-0000-000000000001"

	ginkgo.BeforeEach(func() {
		repo = newMockUserRepo()
		identities = &mockIdentityStore{nextID: "aaaaaaaa-0000-0000-0000-000000000001"}
		auditor = &mockAuditor{}
		service = NewService(repo, identities, auditor, bcrypt.MinCost, slog.Default())
		ctx = context.Background()
	})

	ginkgo.Describe("Create", func() {
		ginkgo.It("should provision identity first and key the row by the identity id", func() {
			created, err := service.Create(ctx, adminID, CreateUserDTO{
				Email:    "new.paralegal@firm.test",
				Password: "s3cret-pass",
				Name:     "New Paralegal",
				Role:     rbac.RoleStaff,
				SubRole:  rbac.SubRoleParalegal,
			})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(created.ID).To(gomega.Equal("aaaaaaaa-0000-0000-0000-000000000001"))
			gomega.Expect(identities.createdFor).To(gomega.ContainElement("new.paralegal@firm.test"))
			gomega.Expect(repo.createdWith.ID).To(gomega.Equal("aaaaaaaa-0000-0000-0000-000000000001"))
			gomega.Expect(*repo.createdWith.SubRole).To(gomega.Equal(rbac.SubRoleParalegal))
		})

		ginkgo.It("should store the password only as a bcrypt hash", func() {
			_, err := service.Create(ctx, adminID, CreateUserDTO{
				Email:    "client@firm.test",
				Password: "s3cret-pass",
				Name:     "A Client",
				Role:     rbac.RoleClient,
			})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(repo.createdWith.PasswordHash).NotTo(gomega.Equal("s3cret-pass"))
			compareErr := bcrypt.CompareHashAndPassword([]byte(repo.createdWith.PasswordHash), []byte("s3cret-pass"))
			gomega.Expect(compareErr).NotTo(gomega.HaveOccurred())
		})

		ginkgo.It("should delete the identity again when the relational insert fails", func() {
			repo.createErr = errors.New("insert failed")

			_, err := service.Create(ctx, adminID, CreateUserDTO{
				Email:    "doomed@firm.test",
				Password: "s3cret-pass",
				Name:     "Doomed",
				Role:     rbac.RoleClient,
			})

			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(identities.deleted).To(gomega.ContainElement("aaaaaaaa-0000-0000-0000-000000000001"))
		})

		ginkgo.It("should not touch the identity store when validation fails", func() {
			_, err := service.Create(ctx, adminID, CreateUserDTO{
				Email:    "attorney@firm.test",
				Password: "s3cret-pass",
				Name:     "An Attorney",
				Role:     rbac.RoleStaff,
			})

			var ve ValidationError
			gomega.Expect(errors.As(err, &ve)).To(gomega.BeTrue())
			gomega.Expect(ve.Field).To(gomega.Equal("sub_role"))
			gomega.Expect(identities.createdFor).To(gomega.BeEmpty())
		})

		ginkgo.It("should reject a sub-role on a client principal", func() {
			_, err := service.Create(ctx, adminID, CreateUserDTO{
				Email:    "client@firm.test",
				Password: "s3cret-pass",
				Name:     "A Client",
				Role:     rbac.RoleClient,
				SubRole:  rbac.SubRoleParalegal,
			})

			var ve ValidationError
			gomega.Expect(errors.As(err, &ve)).To(gomega.BeTrue())
			gomega.Expect(ve.Field).To(gomega.Equal("sub_role"))
		})

		ginkgo.It("should reject duplicate emails", func() {
			existing := &userDatamodel.User{ID: "bbbbbbbb-0000-0000-0000-000000000001", Email: "taken@firm.test"}
			repo.byEmail[existing.Email] = existing

			_, err := service.Create(ctx, adminID, CreateUserDTO{
				Email:    "taken@firm.test",
				Password: "s3cret-pass",
				Name:     "Late Comer",
				Role:     rbac.RoleClient,
			})

			var appErr *internal.AppError
			gomega.Expect(errors.As(err, &appErr)).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeDuplicateEmail))
		})

		ginkgo.It("should record an audit entry for the creation", func() {
			_, err := service.Create(ctx, adminID, CreateUserDTO{
				Email:    "client@firm.test",
				Password: "s3cret-pass",
				Name:     "A Client",
				Role:     rbac.RoleClient,
			})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(auditor.records).To(gomega.HaveLen(1))
			gomega.Expect(auditor.records[0].actorID).To(gomega.Equal(adminID))
			gomega.Expect(auditor.records[0].resourceType).To(gomega.Equal("user"))
		})

		ginkgo.It("should still succeed when the audit write fails", func() {
			auditor.err = errors.New("audit store down")

			created, err := service.Create(ctx, adminID, CreateUserDTO{
				Email:    "client@firm.test",
				Password: "s3cret-pass",
				Name:     "A Client",
				Role:     rbac.RoleClient,
			})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(created).NotTo(gomega.BeNil())
		})
	})

	ginkgo.Describe("ChangeRole", func() {
		ginkgo.BeforeEach(func() {
			subRole := rbac.SubRoleClerk
			repo.byID["cccccccc-0000-0000-0000-000000000001"] = &userDatamodel.User{
				ID:        "cccccccc-0000-0000-0000-000000000001",
				Email:     "clerk@firm.test",
				Role:      rbac.RoleStaff,
				SubRole:   &subRole,
				IsActive:  true,
				CreatedAt: time.Now(),
			}
		})

		ginkgo.It("should promote within staff and keep the new sub-role", func() {
			updated, err := service.ChangeRole(ctx, adminID, "cccccccc-0000-0000-0000-000000000001", ChangeRoleDTO{
				Role:    rbac.RoleStaff,
				SubRole: rbac.SubRoleAttorney,
			})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(updated.SubRole).To(gomega.Equal(rbac.SubRoleAttorney))
		})

		ginkgo.It("should clear the sub-role on promotion to admin", func() {
			updated, err := service.ChangeRole(ctx, adminID, "cccccccc-0000-0000-0000-000000000001", ChangeRoleDTO{
				Role: rbac.RoleAdmin,
			})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(updated.Role).To(gomega.Equal(rbac.RoleAdmin))
			gomega.Expect(updated.SubRole).To(gomega.BeEmpty())
		})

		ginkgo.It("should fail for an unknown principal", func() {
			_, err := service.ChangeRole(ctx, adminID, "dddddddd-0000-0000-0000-000000000001", ChangeRoleDTO{
				Role: rbac.RoleAdmin,
			})

			gomega.Expect(err).To(gomega.MatchError(internal.ErrUserNotFound))
		})
	})

	ginkgo.Describe("SetActive", func() {
		ginkgo.BeforeEach(func() {
			repo.byID["eeeeeeee-0000-0000-0000-000000000001"] = &userDatamodel.User{
				ID:       "eeeeeeee-0000-0000-0000-000000000001",
				Email:    "client@firm.test",
				Role:     rbac.RoleClient,
				IsActive: true,
			}
		})

		ginkgo.It("should deactivate and audit the change", func() {
			updated, err := service.SetActive(ctx, adminID, "eeeeeeee-0000-0000-0000-000000000001", false)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(updated.IsActive).To(gomega.BeFalse())
			gomega.Expect(auditor.records).To(gomega.HaveLen(1))
			gomega.Expect(auditor.records[0].detail).To(gomega.Equal("user deactivated"))
		})

		ginkgo.It("should be a no-op when the flag already matches", func() {
			updated, err := service.SetActive(ctx, adminID, "eeeeeeee-0000-0000-0000-000000000001", true)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(updated.IsActive).To(gomega.BeTrue())
			gomega.Expect(auditor.records).To(gomega.BeEmpty())
		})
	})
})
