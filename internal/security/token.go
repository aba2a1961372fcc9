package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrMissingToken means no bearer credential was presented at all.
	ErrMissingToken = errors.New("missing token")
	// ErrInvalidToken covers forged signatures, malformed tokens and
	// expired tokens alike.
	ErrInvalidToken = errors.New("invalid token")
	// ErrMalformedClaims means a kind flag is set but the claim it promises
	// is absent. That is an issuance bug on our side, not a client error.
	ErrMalformedClaims = errors.New("malformed token claims")
)

// TokenClaims is the wire shape of every token this service issues. Exactly
// one kind flag is set per token; the ids and email fields accompany their
// kind.
type TokenClaims struct {
	UserAccessToken   bool   `json:"user_access_token,omitempty"`
	RoleAccessToken   bool   `json:"role_access_token,omitempty"`
	VerificationToken bool   `json:"verification_token,omitempty"`
	VerifiedToken     bool   `json:"verified_token,omitempty"`
	SuperUser         bool   `json:"super_user,omitempty"`
	UserID            string `json:"user_id,omitempty"`
	RoleID            string `json:"role_id,omitempty"`
	Email             string `json:"email,omitempty"`
	VerificationCode  int    `json:"verification_code,omitempty"`
	jwt.RegisteredClaims
}

// Principal variants produced by classifying a verified claim bag. Each gate
// matches on exactly one of these instead of poking at raw claim keys.
type (
	UserToken         struct{ UserID string }
	RoleToken         struct{ RoleID string }
	VerificationToken struct {
		Email string
		Code  int
	}
	VerifiedToken  struct{ Email string }
	SuperUserToken struct{ UserID string }
)

// Principal returns the typed variant encoded in the claim bag. A token with
// no kind flag is invalid; a kind flag without its payload claim is a server
// fault (ErrMalformedClaims).
func (c *TokenClaims) Principal() (any, error) {
	switch {
	case c.SuperUser:
		if c.UserID == "" {
			return nil, ErrMalformedClaims
		}
		return SuperUserToken{UserID: c.UserID}, nil
	case c.UserAccessToken:
		if c.UserID == "" {
			return nil, ErrMalformedClaims
		}
		return UserToken{UserID: c.UserID}, nil
	case c.RoleAccessToken:
		if c.RoleID == "" {
			return nil, ErrMalformedClaims
		}
		return RoleToken{RoleID: c.RoleID}, nil
	case c.VerificationToken:
		if c.Email == "" || c.VerificationCode == 0 {
			return nil, ErrMalformedClaims
		}
		return VerificationToken{Email: c.Email, Code: c.VerificationCode}, nil
	case c.VerifiedToken:
		if c.Email == "" {
			return nil, ErrMalformedClaims
		}
		return VerifiedToken{Email: c.Email}, nil
	default:
		return nil, ErrInvalidToken
	}
}

// Remaining returns how long the token is still good for, used as the TTL of
// its revocation record so the record never outlives what it guards.
func (c *TokenClaims) Remaining(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Time.Sub(now)
}

// TokenIssuer signs and verifies the five token kinds.
type TokenIssuer struct {
	secret []byte
}

func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret)}
}

func (i *TokenIssuer) sign(claims TokenClaims, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

func (i *TokenIssuer) IssueUserToken(userID string, ttl time.Duration) (string, error) {
	return i.sign(TokenClaims{UserAccessToken: true, UserID: userID}, userID, ttl)
}

func (i *TokenIssuer) IssueRoleToken(roleID string, ttl time.Duration) (string, error) {
	return i.sign(TokenClaims{RoleAccessToken: true, RoleID: roleID}, roleID, ttl)
}

func (i *TokenIssuer) IssueVerificationToken(email string, code int, ttl time.Duration) (string, error) {
	return i.sign(TokenClaims{VerificationToken: true, Email: email, VerificationCode: code}, email, ttl)
}

func (i *TokenIssuer) IssueVerifiedToken(email string, ttl time.Duration) (string, error) {
	return i.sign(TokenClaims{VerifiedToken: true, Email: email}, email, ttl)
}

func (i *TokenIssuer) IssueSuperUserToken(userID string, ttl time.Duration) (string, error) {
	return i.sign(TokenClaims{SuperUser: true, UserID: userID}, userID, ttl)
}

// Parse verifies signature and expiry. It does not consult the revocation
// store; callers must check the jti separately before trusting the token.
func (i *TokenIssuer) Parse(raw string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
