package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/luisale89/storage-manager-sub000/internal/models"
	"github.com/luisale89/storage-manager-sub000/internal/repository"
	"github.com/luisale89/storage-manager-sub000/internal/security"
)

const testSecret = "gate-test-secret"

type stubRevocations struct {
	revoked bool
	err     error
}

func (s stubRevocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return s.revoked, s.err
}

type stubUsers struct {
	user models.User
	err  error
}

func (s stubUsers) GetByID(ctx context.Context, id string) (models.User, error) {
	return s.user, s.err
}

type stubRoles struct {
	principal models.RolePrincipal
	err       error
}

func (s stubRoles) GetPrincipal(ctx context.Context, roleID string) (models.RolePrincipal, error) {
	return s.principal, s.err
}

func enabledUser(id string) models.User {
	return models.User{ID: id, EmailConfirmed: true, SignupCompleted: true}
}

func activePrincipal(level models.RoleLevel) models.RolePrincipal {
	return models.RolePrincipal{
		Role: models.Role{
			ID:        "role-1",
			UserID:    "user-1",
			CompanyID: "company-1",
			Function:  models.RoleFunction{Level: level},
			IsActive:  true,
		},
		UserEnabled: true,
	}
}

// runGate sends one request through the gate and returns the recorder plus
// whether the inner handler ran.
func runGate(t *testing.T, gate gin.HandlerFunc, authHeader string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handled := false
	router := gin.New()
	router.GET("/probe", gate, func(c *gin.Context) {
		handled = true
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec, handled
}

// issueKind signs a short-lived token of the given kind with the test secret.
func issueKind(kind string) string {
	issuer := security.NewTokenIssuer(testSecret)
	var raw string
	switch kind {
	case "user":
		raw, _ = issuer.IssueUserToken("user-1", time.Minute)
	case "role":
		raw, _ = issuer.IssueRoleToken("role-1", time.Minute)
	case "verification":
		raw, _ = issuer.IssueVerificationToken("a@b.co", 123456, time.Minute)
	case "verified":
		raw, _ = issuer.IssueVerifiedToken("a@b.co", time.Minute)
	case "super":
		raw, _ = issuer.IssueSuperUserToken("user-1", time.Minute)
	}
	return "Bearer " + raw
}

func newTestGuard(revoked RevocationChecker, users UserSource, roles RoleSource) *Guard {
	return NewGuard(security.NewTokenIssuer(testSecret), revoked, users, roles)
}

func TestUserGateAdmitsEnabledUser(t *testing.T) {
	guard := newTestGuard(stubRevocations{}, stubUsers{user: enabledUser("user-1")}, stubRoles{})

	var seen models.User
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/probe", guard.UserGate(), func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			t.Error("expected user in context")
		}
		seen = user
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", issueKind("user"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if seen.ID != "user-1" {
		t.Fatalf("expected user-1, got %s", seen.ID)
	}
}

func TestUserGateRejections(t *testing.T) {
	cases := []struct {
		name       string
		header     string
		revs       stubRevocations
		users      stubUsers
		wantStatus int
	}{
		{"missing token", "", stubRevocations{}, stubUsers{}, http.StatusUnauthorized},
		{"not bearer", "Basic abc", stubRevocations{}, stubUsers{}, http.StatusUnauthorized},
		{"garbage token", "Bearer junk", stubRevocations{}, stubUsers{}, http.StatusUnauthorized},
		{"revoked token", issueKind("user"), stubRevocations{revoked: true}, stubUsers{user: enabledUser("user-1")}, http.StatusUnauthorized},
		{"revocation store down", issueKind("user"), stubRevocations{err: errors.New("redis gone")}, stubUsers{user: enabledUser("user-1")}, http.StatusServiceUnavailable},
		{"wrong token kind", issueKind("role"), stubRevocations{}, stubUsers{user: enabledUser("user-1")}, http.StatusUnauthorized},
		{"disabled account", issueKind("user"), stubRevocations{}, stubUsers{user: models.User{ID: "user-1"}}, http.StatusForbidden},
		{"deleted user", issueKind("user"), stubRevocations{}, stubUsers{err: repository.ErrUserNotFound}, http.StatusNotFound},
		{"user lookup down", issueKind("user"), stubRevocations{}, stubUsers{err: errors.New("pg gone")}, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			guard := newTestGuard(tc.revs, tc.users, stubRoles{})
			rec, handled := runGate(t, guard.UserGate(), tc.header)
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}
			if handled {
				t.Fatal("inner handler must not run")
			}
		})
	}
}

func TestUserGateExpiredToken(t *testing.T) {
	raw, err := security.NewTokenIssuer(testSecret).IssueUserToken("user-1", -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	guard := newTestGuard(stubRevocations{}, stubUsers{user: enabledUser("user-1")}, stubRoles{})
	rec, _ := runGate(t, guard.UserGate(), "Bearer "+raw)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

// A signed token whose kind flag has no matching id claim points at an
// issuance bug and must surface as a server error, not a client one.
func TestUserGateMalformedClaims(t *testing.T) {
	now := time.Now()
	claims := security.TokenClaims{
		UserAccessToken: true,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
			ID:        "jti-1",
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	guard := newTestGuard(stubRevocations{}, stubUsers{user: enabledUser("user-1")}, stubRoles{})
	rec, _ := runGate(t, guard.UserGate(), "Bearer "+raw)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRoleGateLevels(t *testing.T) {
	cases := []struct {
		name       string
		level      models.RoleLevel
		required   models.RoleLevel
		wantStatus int
	}{
		{"owner on owner route", models.LevelOwner, models.LevelOwner, http.StatusOK},
		{"owner on viewer route", models.LevelOwner, models.LevelViewer, http.StatusOK},
		{"admin on admin route", models.LevelAdmin, models.LevelAdmin, http.StatusOK},
		{"admin on owner route", models.LevelAdmin, models.LevelOwner, http.StatusForbidden},
		{"operator on admin route", models.LevelOperator, models.LevelAdmin, http.StatusForbidden},
		{"viewer on viewer route", models.LevelViewer, models.LevelViewer, http.StatusOK},
		{"viewer on operator route", models.LevelViewer, models.LevelOperator, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			guard := newTestGuard(stubRevocations{}, stubUsers{}, stubRoles{principal: activePrincipal(tc.level)})
			rec, _ := runGate(t, guard.RoleGate(tc.required), issueKind("role"))
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRoleGateRejections(t *testing.T) {
	inactive := activePrincipal(models.LevelOwner)
	inactive.IsActive = false

	disabledOwner := activePrincipal(models.LevelOwner)
	disabledOwner.UserEnabled = false

	cases := []struct {
		name       string
		header     string
		roles      stubRoles
		wantStatus int
	}{
		{"wrong token kind", issueKind("user"), stubRoles{principal: activePrincipal(models.LevelOwner)}, http.StatusUnauthorized},
		{"inactive role", issueKind("role"), stubRoles{principal: inactive}, http.StatusForbidden},
		{"disabled owning user", issueKind("role"), stubRoles{principal: disabledOwner}, http.StatusForbidden},
		{"deleted role", issueKind("role"), stubRoles{err: repository.ErrRoleNotFound}, http.StatusNotFound},
		{"role lookup down", issueKind("role"), stubRoles{err: errors.New("pg gone")}, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			guard := newTestGuard(stubRevocations{}, stubUsers{}, tc.roles)
			rec, handled := runGate(t, guard.RoleGate(models.LevelViewer), tc.header)
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}
			if handled {
				t.Fatal("inner handler must not run")
			}
		})
	}
}

func TestRoleGateInjectsPrincipal(t *testing.T) {
	guard := newTestGuard(stubRevocations{}, stubUsers{}, stubRoles{principal: activePrincipal(models.LevelAdmin)})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/probe", guard.RoleGate(models.LevelViewer), func(c *gin.Context) {
		role, ok := CurrentRole(c)
		if !ok {
			t.Error("expected role in context")
		}
		if role.CompanyID != "company-1" {
			t.Errorf("expected company-1, got %s", role.CompanyID)
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", issueKind("role"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestVerificationGate(t *testing.T) {
	guard := newTestGuard(stubRevocations{}, stubUsers{}, stubRoles{})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/probe", guard.VerificationGate(), func(c *gin.Context) {
		subject, ok := VerificationSubject(c)
		if !ok {
			t.Error("expected verification subject in context")
		}
		if subject.Email != "a@b.co" || subject.Code != 123456 {
			t.Errorf("unexpected subject: %+v", subject)
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", issueKind("verification"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec, _ = runGate(t, guard.VerificationGate(), issueKind("user"))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong kind: expected 401, got %d", rec.Code)
	}
}

func TestVerifiedGate(t *testing.T) {
	guard := newTestGuard(stubRevocations{}, stubUsers{}, stubRoles{})

	rec, handled := runGate(t, guard.VerifiedGate(), issueKind("verified"))
	if rec.Code != http.StatusOK || !handled {
		t.Fatalf("expected 200 with handler run, got %d", rec.Code)
	}

	rec, _ = runGate(t, guard.VerifiedGate(), issueKind("verification"))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong kind: expected 401, got %d", rec.Code)
	}
}

func TestSuperUserGate(t *testing.T) {
	super := enabledUser("user-1")
	super.SuperUser = true

	t.Run("admits super user", func(t *testing.T) {
		guard := newTestGuard(stubRevocations{}, stubUsers{user: super}, stubRoles{})
		rec, handled := runGate(t, guard.SuperUserGate(), issueKind("super"))
		if rec.Code != http.StatusOK || !handled {
			t.Fatalf("expected 200 with handler run, got %d", rec.Code)
		}
	})

	t.Run("rejects plain user account", func(t *testing.T) {
		guard := newTestGuard(stubRevocations{}, stubUsers{user: enabledUser("user-1")}, stubRoles{})
		rec, _ := runGate(t, guard.SuperUserGate(), issueKind("super"))
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("rejects user token", func(t *testing.T) {
		guard := newTestGuard(stubRevocations{}, stubUsers{user: super}, stubRoles{})
		rec, _ := runGate(t, guard.SuperUserGate(), issueKind("user"))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}
