package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/luisale89/storage-manager-sub000/internal/config"
	"github.com/luisale89/storage-manager-sub000/internal/models"
	"github.com/luisale89/storage-manager-sub000/internal/repository"
	"github.com/luisale89/storage-manager-sub000/internal/security"
)

type stubUserStore struct {
	byEmail map[string]models.User
	byID    map[string]models.User

	created        []models.User
	confirmed      []string
	completed      []string
	passwordResets []string

	createErr error
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{
		byEmail: map[string]models.User{},
		byID:    map[string]models.User{},
	}
}

func (s *stubUserStore) Create(ctx context.Context, user models.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, user)
	s.byEmail[user.Email] = user
	s.byID[user.ID] = user
	return nil
}

func (s *stubUserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (s *stubUserStore) GetByID(ctx context.Context, id string) (models.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (s *stubUserStore) MarkEmailConfirmed(ctx context.Context, email string) error {
	user, ok := s.byEmail[email]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.EmailConfirmed = true
	s.byEmail[email] = user
	s.confirmed = append(s.confirmed, email)
	return nil
}

func (s *stubUserStore) CompleteSignup(ctx context.Context, email string, passwordHash []byte, displayName string) error {
	user, ok := s.byEmail[email]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.SignupCompleted = true
	user.PasswordHash = passwordHash
	user.DisplayName = displayName
	s.byEmail[email] = user
	s.byID[user.ID] = user
	s.completed = append(s.completed, email)
	return nil
}

func (s *stubUserStore) UpdatePassword(ctx context.Context, email string, passwordHash []byte) error {
	user, ok := s.byEmail[email]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	s.byEmail[email] = user
	s.passwordResets = append(s.passwordResets, email)
	return nil
}

type stubRoleStore struct {
	role models.Role
	err  error
}

func (s stubRoleStore) GetByUserAndCompany(ctx context.Context, userID, companyID string) (models.Role, error) {
	return s.role, s.err
}

type stubRevoker struct {
	revoked []string
	err     error
}

func (s *stubRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if s.err != nil {
		return s.err
	}
	s.revoked = append(s.revoked, jti)
	return nil
}

type stubMailer struct {
	sent []string
	err  error
}

func (s *stubMailer) SendVerificationCode(ctx context.Context, to string, code int) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, to)
	return nil
}

func testSecurityConfig() config.SecurityConfig {
	return config.SecurityConfig{
		JWTSecret:       "svc-test-secret",
		UserTokenTTL:    time.Hour,
		RoleTokenTTL:    time.Hour,
		VerificationTTL: 15 * time.Minute,
		VerifiedTTL:     15 * time.Minute,
		SuperTokenTTL:   time.Hour,
	}
}

func newTestAuthService(users *stubUserStore, roles stubRoleStore, revoker *stubRevoker, mailer *stubMailer) *AuthService {
	cfg := testSecurityConfig()
	return NewAuthService(users, roles, revoker, mailer, security.NewTokenIssuer(cfg.JWTSecret), cfg, zerolog.Nop())
}

func parseClaims(t *testing.T, raw string) *security.TokenClaims {
	t.Helper()
	claims, err := security.NewTokenIssuer(testSecurityConfig().JWTSecret).Parse(raw)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	return claims
}

func TestSignupCreatesUserAndIssuesVerificationToken(t *testing.T) {
	users := newStubUserStore()
	mailer := &stubMailer{}
	svc := newTestAuthService(users, stubRoleStore{}, &stubRevoker{}, mailer)

	raw, err := svc.Signup(context.Background(), "New@Example.COM ", "New User")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	if len(users.created) != 1 {
		t.Fatalf("expected one user row, got %d", len(users.created))
	}
	if users.created[0].Email != "new@example.com" {
		t.Fatalf("email not normalized: %s", users.created[0].Email)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected one mail, got %d", len(mailer.sent))
	}

	principal, err := parseClaims(t, raw).Principal()
	if err != nil {
		t.Fatalf("principal: %v", err)
	}
	if _, ok := principal.(security.VerificationToken); !ok {
		t.Fatalf("expected VerificationToken, got %T", principal)
	}
}

func TestSignupMailFailureLeavesNoRow(t *testing.T) {
	users := newStubUserStore()
	mailer := &stubMailer{err: errors.New("smtp down")}
	svc := newTestAuthService(users, stubRoleStore{}, &stubRevoker{}, mailer)

	if _, err := svc.Signup(context.Background(), "a@b.co", ""); err == nil {
		t.Fatal("expected error")
	}
	if len(users.created) != 0 {
		t.Fatalf("mail failure must not create a user row, got %d", len(users.created))
	}
}

func TestSignupRejectsCompletedAccount(t *testing.T) {
	users := newStubUserStore()
	users.byEmail["a@b.co"] = models.User{ID: "user-1", Email: "a@b.co", SignupCompleted: true}
	svc := newTestAuthService(users, stubRoleStore{}, &stubRevoker{}, &stubMailer{})

	if _, err := svc.Signup(context.Background(), "a@b.co", ""); !errors.Is(err, ErrEmailRegistered) {
		t.Fatalf("expected ErrEmailRegistered, got %v", err)
	}
}

func TestSignupResendsForUnfinishedAccount(t *testing.T) {
	users := newStubUserStore()
	users.byEmail["a@b.co"] = models.User{ID: "user-1", Email: "a@b.co"}
	mailer := &stubMailer{}
	svc := newTestAuthService(users, stubRoleStore{}, &stubRevoker{}, mailer)

	if _, err := svc.Signup(context.Background(), "a@b.co", ""); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if len(users.created) != 0 {
		t.Fatal("unfinished signup must reuse the existing row")
	}
	if len(mailer.sent) != 1 {
		t.Fatal("expected a fresh code mail")
	}
}

func TestCheckVerificationCode(t *testing.T) {
	users := newStubUserStore()
	users.byEmail["a@b.co"] = models.User{ID: "user-1", Email: "a@b.co"}
	revoker := &stubRevoker{}
	svc := newTestAuthService(users, stubRoleStore{}, revoker, &stubMailer{})

	subject := security.VerificationToken{Email: "a@b.co", Code: 123456}
	rawToken, err := security.NewTokenIssuer(testSecurityConfig().JWTSecret).
		IssueVerificationToken("a@b.co", 123456, 15*time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims := parseClaims(t, rawToken)

	t.Run("wrong code", func(t *testing.T) {
		if _, err := svc.CheckVerificationCode(context.Background(), subject, claims, 999999); !errors.Is(err, ErrInvalidCode) {
			t.Fatalf("expected ErrInvalidCode, got %v", err)
		}
		if len(users.confirmed) != 0 {
			t.Fatal("wrong code must not confirm the email")
		}
	})

	t.Run("correct code", func(t *testing.T) {
		raw, err := svc.CheckVerificationCode(context.Background(), subject, claims, 123456)
		if err != nil {
			t.Fatalf("check: %v", err)
		}
		if len(users.confirmed) != 1 {
			t.Fatal("email not confirmed")
		}
		if len(revoker.revoked) != 1 || revoker.revoked[0] != claims.ID {
			t.Fatalf("verification token not burned: %v", revoker.revoked)
		}
		principal, err := parseClaims(t, raw).Principal()
		if err != nil {
			t.Fatalf("principal: %v", err)
		}
		if _, ok := principal.(security.VerifiedToken); !ok {
			t.Fatalf("expected VerifiedToken, got %T", principal)
		}
	})
}

func TestCompleteSignupIssuesUserToken(t *testing.T) {
	users := newStubUserStore()
	users.byEmail["a@b.co"] = models.User{ID: "user-1", Email: "a@b.co", EmailConfirmed: true}
	revoker := &stubRevoker{}
	svc := newTestAuthService(users, stubRoleStore{}, revoker, &stubMailer{})

	rawToken, err := security.NewTokenIssuer(testSecurityConfig().JWTSecret).
		IssueVerifiedToken("a@b.co", 15*time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims := parseClaims(t, rawToken)

	raw, user, err := svc.CompleteSignup(context.Background(), security.VerifiedToken{Email: "a@b.co"}, claims, "hunter22", "Ann")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if user.ID != "user-1" {
		t.Fatalf("expected user-1, got %s", user.ID)
	}
	if len(revoker.revoked) != 1 {
		t.Fatal("verified token not burned")
	}

	principal, err := parseClaims(t, raw).Principal()
	if err != nil {
		t.Fatalf("principal: %v", err)
	}
	tok, ok := principal.(security.UserToken)
	if !ok || tok.UserID != "user-1" {
		t.Fatalf("expected UserToken for user-1, got %#v", principal)
	}
}

func TestLogin(t *testing.T) {
	hash, err := security.HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	t.Run("success", func(t *testing.T) {
		users := newStubUserStore()
		users.byEmail["a@b.co"] = models.User{
			ID: "user-1", Email: "a@b.co", PasswordHash: hash,
			EmailConfirmed: true, SignupCompleted: true,
		}
		svc := newTestAuthService(users, stubRoleStore{}, &stubRevoker{}, &stubMailer{})

		result, err := svc.Login(context.Background(), "a@b.co", "hunter22")
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		if result.AccessToken == "" {
			t.Fatal("expected an access token")
		}
		if result.SuperUserToken != "" {
			t.Fatal("plain user must not get a super user token")
		}
	})

	t.Run("super user gets both tokens", func(t *testing.T) {
		users := newStubUserStore()
		users.byEmail["a@b.co"] = models.User{
			ID: "user-1", Email: "a@b.co", PasswordHash: hash,
			EmailConfirmed: true, SignupCompleted: true, SuperUser: true,
		}
		svc := newTestAuthService(users, stubRoleStore{}, &stubRevoker{}, &stubMailer{})

		result, err := svc.Login(context.Background(), "a@b.co", "hunter22")
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		if result.SuperUserToken == "" {
			t.Fatal("expected a super user token")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		users := newStubUserStore()
		users.byEmail["a@b.co"] = models.User{
			ID: "user-1", Email: "a@b.co", PasswordHash: hash,
			EmailConfirmed: true, SignupCompleted: true,
		}
		svc := newTestAuthService(users, stubRoleStore{}, &stubRevoker{}, &stubMailer{})

		if _, err := svc.Login(context.Background(), "a@b.co", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		svc := newTestAuthService(newStubUserStore(), stubRoleStore{}, &stubRevoker{}, &stubMailer{})
		if _, err := svc.Login(context.Background(), "nobody@b.co", "x"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("disabled account", func(t *testing.T) {
		users := newStubUserStore()
		users.byEmail["a@b.co"] = models.User{ID: "user-1", Email: "a@b.co", PasswordHash: hash}
		svc := newTestAuthService(users, stubRoleStore{}, &stubRevoker{}, &stubMailer{})

		if _, err := svc.Login(context.Background(), "a@b.co", "hunter22"); !errors.Is(err, ErrAccountDisabled) {
			t.Fatalf("expected ErrAccountDisabled, got %v", err)
		}
	})
}

func TestSelectCompany(t *testing.T) {
	active := models.Role{ID: "role-1", UserID: "user-1", CompanyID: "company-1", IsActive: true}

	t.Run("issues role token", func(t *testing.T) {
		svc := newTestAuthService(newStubUserStore(), stubRoleStore{role: active}, &stubRevoker{}, &stubMailer{})
		raw, role, err := svc.SelectCompany(context.Background(), "user-1", "company-1")
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		if role.ID != "role-1" {
			t.Fatalf("expected role-1, got %s", role.ID)
		}
		principal, err := parseClaims(t, raw).Principal()
		if err != nil {
			t.Fatalf("principal: %v", err)
		}
		tok, ok := principal.(security.RoleToken)
		if !ok || tok.RoleID != "role-1" {
			t.Fatalf("expected RoleToken for role-1, got %#v", principal)
		}
	})

	t.Run("inactive role", func(t *testing.T) {
		inactive := active
		inactive.IsActive = false
		svc := newTestAuthService(newStubUserStore(), stubRoleStore{role: inactive}, &stubRevoker{}, &stubMailer{})
		if _, _, err := svc.SelectCompany(context.Background(), "user-1", "company-1"); !errors.Is(err, ErrAccountDisabled) {
			t.Fatalf("expected ErrAccountDisabled, got %v", err)
		}
	})

	t.Run("no membership", func(t *testing.T) {
		svc := newTestAuthService(newStubUserStore(), stubRoleStore{err: repository.ErrRoleNotFound}, &stubRevoker{}, &stubMailer{})
		if _, _, err := svc.SelectCompany(context.Background(), "user-1", "company-1"); !errors.Is(err, repository.ErrRoleNotFound) {
			t.Fatalf("expected ErrRoleNotFound, got %v", err)
		}
	})
}

func TestLogoutRevokesToken(t *testing.T) {
	revoker := &stubRevoker{}
	svc := newTestAuthService(newStubUserStore(), stubRoleStore{}, revoker, &stubMailer{})

	rawToken, err := security.NewTokenIssuer(testSecurityConfig().JWTSecret).IssueUserToken("user-1", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims := parseClaims(t, rawToken)

	if err := svc.Logout(context.Background(), claims); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(revoker.revoked) != 1 || revoker.revoked[0] != claims.ID {
		t.Fatalf("token not revoked: %v", revoker.revoked)
	}
}
