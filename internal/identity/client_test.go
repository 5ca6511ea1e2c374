package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/giulianni/client-portal/pkg/logger"
)

func TestIdentity(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Identity Module Suite")
}

var _ = ginkgo.Describe("Client", func() {
	var (
		server *httptest.Server
		client *Client
		ctx    context.Context
	)

	ginkgo.AfterEach(func() {
		if server != nil {
			server.Close()
		}
	})

	newClient := func(handler http.HandlerFunc) *Client {
		server = httptest.NewServer(handler)
		return NewClient(Config{
			BaseURL:    server.URL,
			ServiceKey: "service-key",
		}, logger.LoggerWrapper())
	}

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
	})

	ginkgo.Describe("CreateIdentity", func() {
		ginkgo.It("should post the credential and return the provider id", func() {
			var gotAuth string
			var gotPayload map[string]interface{}

			client = newClient(func(w http.ResponseWriter, r *http.Request) {
				gomega.Expect(r.Method).To(gomega.Equal(http.MethodPost))
				gomega.Expect(r.URL.Path).To(gomega.Equal("/admin/users"))
				gotAuth = r.Header.Get("Authorization")
				gomega.Expect(json.NewDecoder(r.Body).Decode(&gotPayload)).To(gomega.Succeed())
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]string{"id": "uid-123"})
			})

			id, err := client.CreateIdentity(ctx, "client@example.com", "s3cret", Attributes{"role": "client"})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(id).To(gomega.Equal("uid-123"))
			gomega.Expect(gotAuth).To(gomega.Equal("Bearer service-key"))
			gomega.Expect(gotPayload["email"]).To(gomega.Equal("client@example.com"))
		})

		ginkgo.It("should fail when the provider returns no id", func() {
			client = newClient(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{})
			})

			_, err := client.CreateIdentity(ctx, "client@example.com", "s3cret", nil)

			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("DeleteIdentity", func() {
		ginkgo.It("should issue a DELETE against the admin endpoint", func() {
			var gotPath string
			client = newClient(func(w http.ResponseWriter, r *http.Request) {
				gomega.Expect(r.Method).To(gomega.Equal(http.MethodDelete))
				gotPath = r.URL.Path
				w.WriteHeader(http.StatusOK)
			})

			err := client.DeleteIdentity(ctx, "uid-123")

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(gotPath).To(gomega.Equal("/admin/users/uid-123"))
		})

		ginkgo.It("should map a 404 to ErrIdentityNotFound", func() {
			client = newClient(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			})

			err := client.DeleteIdentity(ctx, "ghost")

			gomega.Expect(errors.Is(err, ErrIdentityNotFound)).To(gomega.BeTrue())
		})

		ginkgo.It("should surface other statuses as plain errors", func() {
			client = newClient(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			})

			err := client.DeleteIdentity(ctx, "uid-123")

			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(errors.Is(err, ErrIdentityNotFound)).To(gomega.BeFalse())
		})
	})
})
