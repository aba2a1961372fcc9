package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/luisale89/storage-manager-sub000/internal/models"
	"github.com/luisale89/storage-manager-sub000/internal/repository"
	"github.com/luisale89/storage-manager-sub000/internal/security"
)

const (
	ctxClaims = "token_claims"
	ctxUser   = "principal_user"
	ctxRole   = "principal_role"
)

// RevocationChecker answers whether a jti has been invalidated. A store
// error must abort the request; it never means "not revoked".
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// UserSource loads user principals for the user and super-user gates.
type UserSource interface {
	GetByID(ctx context.Context, id string) (models.User, error)
}

// RoleSource loads role principals, joined with the owning user's liveness.
type RoleSource interface {
	GetPrincipal(ctx context.Context, roleID string) (models.RolePrincipal, error)
}

// Guard builds the per-endpoint claim-type gates. Every protected route
// group selects exactly one gate; gates are never stacked.
type Guard struct {
	tokens  *security.TokenIssuer
	revoked RevocationChecker
	users   UserSource
	roles   RoleSource
}

func NewGuard(tokens *security.TokenIssuer, revoked RevocationChecker, users UserSource, roles RoleSource) *Guard {
	return &Guard{tokens: tokens, revoked: revoked, users: users, roles: roles}
}

// verify runs the gate steps shared by every token kind: bearer extraction,
// signature and expiry verification, revocation lookup, claim classification.
// On failure it aborts the request and returns false.
func (g *Guard) verify(c *gin.Context) (*security.TokenClaims, any, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
		return nil, nil, false
	}

	claims, err := g.tokens.Parse(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
		return nil, nil, false
	}

	revoked, err := g.revoked.IsRevoked(c.Request.Context(), claims.ID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "revocation_store_unavailable"})
		return nil, nil, false
	}
	if revoked {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token_revoked"})
		return nil, nil, false
	}

	principal, err := claims.Principal()
	if err != nil {
		if errors.Is(err, security.ErrMalformedClaims) {
			// A kind flag without its id claim is an issuance bug, not a
			// client mistake.
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "malformed_claims"})
			return nil, nil, false
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
		return nil, nil, false
	}

	return claims, principal, true
}

// UserGate admits user access tokens whose account is enabled.
func (g *Guard) UserGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, principal, ok := g.verify(c)
		if !ok {
			return
		}

		token, ok := principal.(security.UserToken)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_token_required"})
			return
		}

		user, err := g.users.GetByID(c.Request.Context(), token.UserID)
		if err != nil {
			g.abortPrincipalLookup(c, err)
			return
		}
		if !user.Enabled() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account_disabled"})
			return
		}

		c.Set(ctxClaims, claims)
		c.Set(ctxUser, user)
		c.Next()
	}
}

// RoleGate admits role access tokens whose role is active, whose owning user
// is enabled, and whose level satisfies the required minimum. Lower level is
// more privileged; a level greater than required is rejected.
func (g *Guard) RoleGate(required models.RoleLevel) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, principal, ok := g.verify(c)
		if !ok {
			return
		}

		token, ok := principal.(security.RoleToken)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "role_token_required"})
			return
		}

		role, err := g.roles.GetPrincipal(c.Request.Context(), token.RoleID)
		if err != nil {
			g.abortPrincipalLookup(c, err)
			return
		}
		if !role.IsActive || !role.UserEnabled {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "principal_disabled"})
			return
		}
		if !role.Authorizes(required) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient_level"})
			return
		}

		c.Set(ctxClaims, claims)
		c.Set(ctxRole, role)
		c.Next()
	}
}

// VerificationGate admits verification tokens, carrying the emailed code.
func (g *Guard) VerificationGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, principal, ok := g.verify(c)
		if !ok {
			return
		}

		token, ok := principal.(security.VerificationToken)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "verification_token_required"})
			return
		}

		c.Set(ctxClaims, claims)
		c.Set(ctxUser, token)
		c.Next()
	}
}

// VerifiedGate admits tokens proving a just-completed code check.
func (g *Guard) VerifiedGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, principal, ok := g.verify(c)
		if !ok {
			return
		}

		token, ok := principal.(security.VerifiedToken)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "verified_token_required"})
			return
		}

		c.Set(ctxClaims, claims)
		c.Set(ctxUser, token)
		c.Next()
	}
}

// SuperUserGate admits super-user tokens for enabled super-user accounts.
func (g *Guard) SuperUserGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, principal, ok := g.verify(c)
		if !ok {
			return
		}

		token, ok := principal.(security.SuperUserToken)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "super_user_token_required"})
			return
		}

		user, err := g.users.GetByID(c.Request.Context(), token.UserID)
		if err != nil {
			g.abortPrincipalLookup(c, err)
			return
		}
		if !user.Enabled() || !user.SuperUser {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "super_user_required"})
			return
		}

		c.Set(ctxClaims, claims)
		c.Set(ctxUser, user)
		c.Next()
	}
}

func (g *Guard) abortPrincipalLookup(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrUserNotFound), errors.Is(err, repository.ErrRoleNotFound):
		// The principal was deleted after the token was issued.
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "principal_not_found"})
	default:
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "service_unavailable"})
	}
}

// CurrentUser returns the principal resolved by UserGate or SuperUserGate.
func CurrentUser(c *gin.Context) (models.User, bool) {
	val, exists := c.Get(ctxUser)
	if !exists {
		return models.User{}, false
	}
	user, ok := val.(models.User)
	return user, ok
}

// CurrentRole returns the principal resolved by RoleGate. Handlers take the
// company id from it for every tenant-scoped query.
func CurrentRole(c *gin.Context) (models.RolePrincipal, bool) {
	val, exists := c.Get(ctxRole)
	if !exists {
		return models.RolePrincipal{}, false
	}
	role, ok := val.(models.RolePrincipal)
	return role, ok
}

// VerificationSubject returns the variant injected by VerificationGate.
func VerificationSubject(c *gin.Context) (security.VerificationToken, bool) {
	val, exists := c.Get(ctxUser)
	if !exists {
		return security.VerificationToken{}, false
	}
	token, ok := val.(security.VerificationToken)
	return token, ok
}

// VerifiedSubject returns the variant injected by VerifiedGate.
func VerifiedSubject(c *gin.Context) (security.VerifiedToken, bool) {
	val, exists := c.Get(ctxUser)
	if !exists {
		return security.VerifiedToken{}, false
	}
	token, ok := val.(security.VerifiedToken)
	return token, ok
}

// BearerClaims exposes the verified claim bag, which consume-once handlers
// need for the jti and remaining lifetime.
func BearerClaims(c *gin.Context) (*security.TokenClaims, bool) {
	val, exists := c.Get(ctxClaims)
	if !exists {
		return nil, false
	}
	claims, ok := val.(*security.TokenClaims)
	return claims, ok
}
