package document

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/giulianni/client-portal/internal"
	"github.com/giulianni/client-portal/internal/objectstore"
	"github.com/giulianni/client-portal/internal/rbac"

	casesDatamodel "github.com/giulianni/client-portal/internal/core/datamodel/cases"
	documentDatamodel "github.com/giulianni/client-portal/internal/core/datamodel/document"
)

func TestDocument(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Document Module Suite")
}

type mockDocRepo struct {
	byID      map[string]*documentDatamodel.Document
	createErr error
	deleted   []string
}

func newMockDocRepo() *mockDocRepo {
	return &mockDocRepo{byID: map[string]*documentDatamodel.Document{}}
}

func (m *mockDocRepo) Create(_ context.Context, d *documentDatamodel.Document) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.byID[d.ID] = d
	return nil
}

func (m *mockDocRepo) GetByID(_ context.Context, id string) (*documentDatamodel.Document, error) {
	if d, ok := m.byID[id]; ok {
		copied := *d
		return &copied, nil
	}
	return nil, internal.ErrDocumentNotFound
}

func (m *mockDocRepo) ListByCase(_ context.Context, caseID string) ([]documentDatamodel.Document, error) {
	var out []documentDatamodel.Document
	for _, d := range m.byID {
		if d.CaseID == caseID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *mockDocRepo) UpdateReviewStatus(_ context.Context, id string, status string) error {
	if d, ok := m.byID[id]; ok {
		d.ReviewStatus = status
		return nil
	}
	return internal.ErrDocumentNotFound
}

func (m *mockDocRepo) Delete(_ context.Context, id string) (int64, error) {
	if _, ok := m.byID[id]; !ok {
		return 0, nil
	}
	delete(m.byID, id)
	m.deleted = append(m.deleted, id)
	return 1, nil
}

type mockCaseDirectory struct {
	cases map[string]*casesDatamodel.Case
}

func (m *mockCaseDirectory) CaseExists(_ context.Context, caseID string) (bool, error) {
	_, ok := m.cases[caseID]
	return ok, nil
}

func (m *mockCaseDirectory) GetByID(_ context.Context, id string) (*casesDatamodel.Case, error) {
	if c, ok := m.cases[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, internal.ErrCaseNotFound
}

type failingBlobStore struct {
	*objectstore.MemoryStore
	removeErr error
}

func (f *failingBlobStore) Remove(ctx context.Context, bucket string, paths []string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	return f.MemoryStore.Remove(ctx, bucket, paths)
}

type countingAuditor struct {
	records int
}

func (c *countingAuditor) Record(_ context.Context, _, _, _, _, _ string) error {
	c.records++
	return nil
}

var _ = ginkgo.Describe("Document Service", func() {
	var (
		service   *Service
		repo      *mockDocRepo
		blobs     *failingBlobStore
		directory *mockCaseDirectory
		auditor   *countingAuditor
		ctx       context.Context
	)

	const (
		bucket        = "case-documents"
		caseID        = "c0000000-0000-0000-0000-000000000001"
		actorID       = "a0000000-0000-0000-0000-000000000001"
		clientID      = "10000000-0000-0000-0000-000000000001"
		otherClientID = "10000000-0000-0000-0000-000000000002"
	)

	ginkgo.BeforeEach(func() {
		repo = newMockDocRepo()
		blobs = &failingBlobStore{MemoryStore: objectstore.NewMemoryStore()}
		directory = &mockCaseDirectory{cases: map[string]*casesDatamodel.Case{
			caseID: {ID: caseID, ClientID: clientID},
		}}
		auditor = &countingAuditor{}
		service = NewService(repo, blobs, directory, auditor, bucket, slog.Default())
		ctx = context.Background()
	})

	ginkgo.Describe("Upload", func() {
		ginkgo.It("should write the blob and the metadata row", func() {
			created, err := service.Upload(ctx, actorID, UploadInput{
				CaseID:   caseID,
				FileName: "retainer.pdf",
				MimeType: "application/pdf",
				Data:     []byte("pdf-bytes"),
			})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(created.ReviewStatus).To(gomega.Equal(ReviewPending))
			gomega.Expect(created.SizeBytes).To(gomega.Equal(int64(9)))

			stored := repo.byID[created.ID]
			gomega.Expect(blobs.Exists(bucket, stored.StoragePath)).To(gomega.BeTrue())
		})

		ginkgo.It("should refuse an upload against a missing case", func() {
			_, err := service.Upload(ctx, actorID, UploadInput{
				CaseID:   "missing-case",
				FileName: "retainer.pdf",
				Data:     []byte("pdf-bytes"),
			})

			gomega.Expect(err).To(gomega.MatchError(internal.ErrCaseNotFound))
		})

		ginkgo.It("should remove the blob when the metadata insert fails", func() {
			repo.createErr = errors.New("insert failed")

			_, err := service.Upload(ctx, actorID, UploadInput{
				CaseID:   caseID,
				FileName: "retainer.pdf",
				Data:     []byte("pdf-bytes"),
			})

			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(blobs.Count(bucket)).To(gomega.Equal(0))
		})
	})

	ginkgo.Describe("ListByCase", func() {
		ginkgo.BeforeEach(func() {
			repo.byID["d1"] = &documentDatamodel.Document{ID: "d1", CaseID: caseID, FileName: "retainer.pdf"}
		})

		ginkgo.It("should list the case's documents for staff", func() {
			documents, err := service.ListByCase(ctx, actorID, rbac.RoleStaff, caseID)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(documents).To(gomega.HaveLen(1))
		})

		ginkgo.It("should list the case's documents for the owning client", func() {
			documents, err := service.ListByCase(ctx, clientID, rbac.RoleClient, caseID)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(documents).To(gomega.HaveLen(1))
		})

		ginkgo.It("should hide another client's case", func() {
			documents, err := service.ListByCase(ctx, otherClientID, rbac.RoleClient, caseID)

			gomega.Expect(err).To(gomega.MatchError(internal.ErrCaseNotFound))
			gomega.Expect(documents).To(gomega.BeNil())
		})
	})

	ginkgo.Describe("DownloadURL", func() {
		var docID string

		ginkgo.BeforeEach(func() {
			created, err := service.Upload(ctx, actorID, UploadInput{
				CaseID:   caseID,
				FileName: "exhibit.pdf",
				Data:     []byte("pdf-bytes"),
			})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			docID = created.ID
		})

		ginkgo.It("should sign a URL for the owning client", func() {
			url, err := service.DownloadURL(ctx, clientID, rbac.RoleClient, docID)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(url).NotTo(gomega.BeEmpty())
		})

		ginkgo.It("should refuse another client a URL for the document", func() {
			url, err := service.DownloadURL(ctx, otherClientID, rbac.RoleClient, docID)

			gomega.Expect(err).To(gomega.MatchError(internal.ErrDocumentNotFound))
			gomega.Expect(url).To(gomega.BeEmpty())
		})

		ginkgo.It("should fail for an unknown document", func() {
			_, err := service.DownloadURL(ctx, clientID, rbac.RoleClient, "nope")

			gomega.Expect(err).To(gomega.MatchError(internal.ErrDocumentNotFound))
		})
	})

	ginkgo.Describe("Review", func() {
		ginkgo.BeforeEach(func() {
			repo.byID["d1"] = &documentDatamodel.Document{ID: "d1", CaseID: caseID, ReviewStatus: ReviewPending}
		})

		ginkgo.It("should approve a pending document", func() {
			updated, err := service.Review(ctx, actorID, "d1", ReviewApproved)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(updated.ReviewStatus).To(gomega.Equal(ReviewApproved))
			gomega.Expect(auditor.records).To(gomega.Equal(1))
		})

		ginkgo.It("should reject an unknown review status", func() {
			_, err := service.Review(ctx, actorID, "d1", "maybe")

			var appErr *internal.AppError
			gomega.Expect(errors.As(err, &appErr)).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeInvalidStatus))
		})
	})

	ginkgo.Describe("Delete", func() {
		var storagePath string

		ginkgo.BeforeEach(func() {
			created, err := service.Upload(ctx, actorID, UploadInput{
				CaseID:   caseID,
				FileName: "exhibit.pdf",
				Data:     []byte("pdf-bytes"),
			})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			storagePath = repo.byID[created.ID].StoragePath
			auditor.records = 0
		})

		ginkgo.It("should remove both the row and the blob", func() {
			id := repo.onlyID()

			warnings, err := service.Delete(ctx, actorID, id)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(warnings).To(gomega.BeEmpty())
			gomega.Expect(repo.byID).To(gomega.BeEmpty())
			gomega.Expect(blobs.Exists(bucket, storagePath)).To(gomega.BeFalse())
			gomega.Expect(auditor.records).To(gomega.Equal(1))
		})

		ginkgo.It("should succeed with a warning when blob removal fails", func() {
			id := repo.onlyID()
			blobs.removeErr = errors.New("object store down")

			warnings, err := service.Delete(ctx, actorID, id)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(warnings).To(gomega.HaveLen(1))
			gomega.Expect(repo.byID).To(gomega.BeEmpty())
		})

		ginkgo.It("should fail for an unknown document", func() {
			_, err := service.Delete(ctx, actorID, "nope")

			gomega.Expect(err).To(gomega.MatchError(internal.ErrDocumentNotFound))
		})
	})
})

// onlyID returns the id of the only stored document.
func (m *mockDocRepo) onlyID() string {
	for id := range m.byID {
		return id
	}
	return ""
}
