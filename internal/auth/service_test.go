package auth

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/giulianni/client-portal/internal"
	"github.com/giulianni/client-portal/internal/rbac"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

type mockUserRepository struct {
	credentials   map[string]mockCredential
	usersByID     map[string]*User
	lastLoginFor  string
	returnError   bool
	errorToReturn error
}

type mockCredential struct {
	hash   string
	userID string
	active bool
}

func newMockUserRepository() *mockUserRepository {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.MinCost)

	return &mockUserRepository{
		credentials: map[string]mockCredential{
			"admin@firm.test":     {hash: string(hashedPassword), userID: "11111111-1111-1111-1111-111111111111", active: true},
			"paralegal@firm.test": {hash: string(hashedPassword), userID: "22222222-2222-2222-2222-222222222222", active: true},
			"former@firm.test":    {hash: string(hashedPassword), userID: "33333333-3333-3333-3333-333333333333", active: false},
		},
		usersByID: map[string]*User{
			"11111111-1111-1111-1111-111111111111": {ID: "11111111-1111-1111-1111-111111111111", Email: "admin@firm.test", Role: rbac.RoleAdmin, IsActive: true},
			"22222222-2222-2222-2222-222222222222": {ID: "22222222-2222-2222-2222-222222222222", Email: "paralegal@firm.test", Role: rbac.RoleStaff, SubRole: rbac.SubRoleParalegal, IsActive: true},
		},
	}
}

func (m *mockUserRepository) GetCredentialsForEmail(_ context.Context, email string) (string, string, bool, error) {
	if m.returnError {
		return "", "", false, m.errorToReturn
	}
	cred, ok := m.credentials[email]
	if !ok {
		return "", "", false, internal.ErrUserNotFound
	}
	return cred.hash, cred.userID, cred.active, nil
}

func (m *mockUserRepository) GetUserByID(_ context.Context, userID string) (*User, error) {
	u, ok := m.usersByID[userID]
	if !ok {
		return nil, internal.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepository) UpdateLastLogin(_ context.Context, userID string, _ time.Time) error {
	m.lastLoginFor = userID
	return nil
}

type mockProfileResolver struct {
	profiles map[string]*rbac.RoleProfile
	err      error
}

func (m *mockProfileResolver) Resolve(_ context.Context, principalID string) (*rbac.RoleProfile, error) {
	if m.err != nil {
		return nil, m.err
	}
	if p, ok := m.profiles[principalID]; ok {
		return p, nil
	}
	return nil, internal.ErrUserNotFound
}

var _ = ginkgo.Describe("Auth Service", func() {
	var (
		service  *Service
		userRepo *mockUserRepository
		profiles *mockProfileResolver
		tokenGen *JWTTokenGenerator
		ctx      context.Context
	)

	ginkgo.BeforeEach(func() {
		userRepo = newMockUserRepository()
		profiles = &mockProfileResolver{
			profiles: map[string]*rbac.RoleProfile{
				"11111111-1111-1111-1111-111111111111": {
					PrincipalID: "11111111-1111-1111-1111-111111111111",
					Role:        rbac.RoleAdmin,
					Permissions: rbac.AllPermissions(),
				},
				"22222222-2222-2222-2222-222222222222": {
					PrincipalID: "22222222-2222-2222-2222-222222222222",
					Role:        rbac.RoleStaff,
					SubRole:     rbac.SubRoleParalegal,
					Permissions: rbac.DefaultBindings(rbac.SubRoleParalegal),
				},
			},
		}
		tokenGen = NewJWTTokenGenerator(
			"access-secret-for-tests-0123456789ab",
			"refresh-secret-for-tests-0123456789a",
			15*time.Minute,
			24*time.Hour,
		)
		service = NewService(userRepo, tokenGen, profiles, bcrypt.MinCost, slog.Default())
		ctx = context.Background()
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.It("should return access and refresh tokens for valid credentials", func() {
			tokens, err := service.Authenticate(ctx, LoginDTO{Email: "admin@firm.test", Password: "correct_password"})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(tokens.AccessToken).NotTo(gomega.BeEmpty())
			gomega.Expect(tokens.RefreshToken).NotTo(gomega.BeEmpty())
		})

		ginkgo.It("should stamp last login on success", func() {
			_, err := service.Authenticate(ctx, LoginDTO{Email: "admin@firm.test", Password: "correct_password"})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(userRepo.lastLoginFor).To(gomega.Equal("11111111-1111-1111-1111-111111111111"))
		})

		ginkgo.It("should reject an unknown email", func() {
			_, err := service.Authenticate(ctx, LoginDTO{Email: "nobody@firm.test", Password: "correct_password"})

			gomega.Expect(err).To(gomega.MatchError(ErrInvalidCredentials))
		})

		ginkgo.It("should reject a wrong password", func() {
			_, err := service.Authenticate(ctx, LoginDTO{Email: "admin@firm.test", Password: "wrong_password"})

			gomega.Expect(err).To(gomega.MatchError(ErrInvalidCredentials))
		})

		ginkgo.It("should reject a deactivated user", func() {
			_, err := service.Authenticate(ctx, LoginDTO{Email: "former@firm.test", Password: "correct_password"})

			gomega.Expect(err).To(gomega.MatchError(ErrUserInactive))
		})

		ginkgo.It("should reject a malformed email before touching the repository", func() {
			_, err := service.Authenticate(ctx, LoginDTO{Email: "not-an-email", Password: "correct_password"})

			var ve ValidationError
			gomega.Expect(err).To(gomega.BeAssignableToTypeOf(ve))
		})
	})

	ginkgo.Describe("Token validation", func() {
		ginkgo.It("should round-trip claims through an access token", func() {
			tokens, err := service.Authenticate(ctx, LoginDTO{Email: "admin@firm.test", Password: "correct_password"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			claims, err := service.ValidateAccessToken(tokens.AccessToken)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(claims.UserID).To(gomega.Equal("11111111-1111-1111-1111-111111111111"))
			gomega.Expect(claims.Email).To(gomega.Equal("admin@firm.test"))
		})

		ginkgo.It("should reject garbage tokens", func() {
			_, err := service.ValidateAccessToken("not.a.token")

			gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
		})

		ginkgo.It("should reject expired tokens", func() {
			token, err := tokenGen.generate("user-1", "user@firm.test", tokenGen.AccessTokenSecret, -time.Minute)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = tokenGen.parseWith(token, tokenGen.AccessTokenSecret)
			gomega.Expect(err).To(gomega.MatchError(ErrTokenExpired))
		})
	})

	ginkgo.Describe("RefreshTokens", func() {
		ginkgo.It("should issue a fresh pair from a valid refresh token", func() {
			tokens, err := service.Authenticate(ctx, LoginDTO{Email: "paralegal@firm.test", Password: "correct_password"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			refreshed, err := service.RefreshTokens(ctx, tokens.RefreshToken)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(refreshed.AccessToken).NotTo(gomega.BeEmpty())
			gomega.Expect(refreshed.RefreshToken).NotTo(gomega.BeEmpty())
		})

		ginkgo.It("should reject an invalid refresh token", func() {
			_, err := service.RefreshTokens(ctx, "bogus")

			gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
		})
	})

	ginkgo.Describe("GetUserWithPermissions", func() {
		ginkgo.It("should attach the resolved permission set", func() {
			user, err := service.GetUserWithPermissions(ctx, "22222222-2222-2222-2222-222222222222")

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(user.Role).To(gomega.Equal(rbac.RoleStaff))
			gomega.Expect(user.SubRole).To(gomega.Equal(rbac.SubRoleParalegal))
			gomega.Expect(user.Permissions).To(gomega.ContainElement(rbac.PermViewCases))
			gomega.Expect(user.HasPermission(rbac.PermDeleteCase)).To(gomega.BeFalse())
		})

		ginkgo.It("should let admins pass every permission check", func() {
			user, err := service.GetUserWithPermissions(ctx, "11111111-1111-1111-1111-111111111111")

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(user.HasPermission(rbac.PermDeleteCase)).To(gomega.BeTrue())
			gomega.Expect(user.HasPermission(rbac.PermManageUsers)).To(gomega.BeTrue())
		})

		ginkgo.It("should fail for an unknown principal", func() {
			_, err := service.GetUserWithPermissions(ctx, "99999999-9999-9999-9999-999999999999")

			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})
})
