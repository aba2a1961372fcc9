package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/luisale89/storage-manager-sub000/internal/config"
	"github.com/luisale89/storage-manager-sub000/internal/ids"
	"github.com/luisale89/storage-manager-sub000/internal/models"
	"github.com/luisale89/storage-manager-sub000/internal/repository"
	"github.com/luisale89/storage-manager-sub000/internal/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCode        = errors.New("invalid verification code")
)

// UserStore is the slice of UserRepository the auth flows need.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	MarkEmailConfirmed(ctx context.Context, email string) error
	CompleteSignup(ctx context.Context, email string, passwordHash []byte, displayName string) error
	UpdatePassword(ctx context.Context, email string, passwordHash []byte) error
}

type RoleStore interface {
	GetByUserAndCompany(ctx context.Context, userID, companyID string) (models.Role, error)
}

// Revoker invalidates a jti for the token's remaining lifetime.
type Revoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

type VerificationMailer interface {
	SendVerificationCode(ctx context.Context, to string, code int) error
}

type AuthService struct {
	users   UserStore
	roles   RoleStore
	revoker Revoker
	mailer  VerificationMailer
	tokens  *security.TokenIssuer
	cfg     config.SecurityConfig
	log     zerolog.Logger
}

func NewAuthService(
	users UserStore,
	roles RoleStore,
	revoker Revoker,
	mailer VerificationMailer,
	tokens *security.TokenIssuer,
	cfg config.SecurityConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:   users,
		roles:   roles,
		revoker: revoker,
		mailer:  mailer,
		tokens:  tokens,
		cfg:     cfg,
		log:     log,
	}
}

// Signup registers an email and mails its verification code. The user row is
// created only after the send succeeds, so a mail outage leaves no orphan.
func (s *AuthService) Signup(ctx context.Context, email, displayName string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return "", ErrInvalidCredentials
	}

	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.SignupCompleted {
			return "", ErrEmailRegistered
		}
		// Unfinished signup: re-send a fresh code for the same row.
	case errors.Is(err, repository.ErrUserNotFound):
	default:
		return "", err
	}

	code, err := security.NewVerificationCode()
	if err != nil {
		return "", err
	}

	if err := s.mailer.SendVerificationCode(ctx, email, code); err != nil {
		return "", err
	}

	if existing.ID == "" {
		user := models.User{
			ID:          ids.New(),
			Email:       email,
			DisplayName: displayName,
		}
		if err := s.users.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return "", ErrEmailRegistered
			}
			return "", err
		}
	}

	return s.tokens.IssueVerificationToken(email, code, s.cfg.VerificationTTL)
}

// RequestPasswordReset mails a code to an existing, enabled account.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if !user.Enabled() {
		return "", ErrAccountDisabled
	}

	code, err := security.NewVerificationCode()
	if err != nil {
		return "", err
	}
	if err := s.mailer.SendVerificationCode(ctx, email, code); err != nil {
		return "", err
	}

	return s.tokens.IssueVerificationToken(email, code, s.cfg.VerificationTTL)
}

// CheckVerificationCode compares the submitted code against the claim and,
// on success, burns the presented token and promotes it to a verified token.
func (s *AuthService) CheckVerificationCode(ctx context.Context, subject security.VerificationToken, claims *security.TokenClaims, submitted int) (string, error) {
	if submitted != subject.Code {
		return "", ErrInvalidCode
	}

	if err := s.users.MarkEmailConfirmed(ctx, subject.Email); err != nil {
		return "", err
	}

	// Consume-once: the same verification token must never validate twice.
	if err := s.revoker.Revoke(ctx, claims.ID, claims.Remaining(time.Now())); err != nil {
		return "", err
	}

	return s.tokens.IssueVerifiedToken(subject.Email, s.cfg.VerifiedTTL)
}

// CompleteSignup sets the password on a verified account and hands out the
// first user access token. The verified token is burned.
func (s *AuthService) CompleteSignup(ctx context.Context, subject security.VerifiedToken, claims *security.TokenClaims, password, displayName string) (string, models.User, error) {
	hash, err := security.HashPassword(password)
	if err != nil {
		return "", models.User{}, err
	}

	if err := s.users.CompleteSignup(ctx, subject.Email, hash, displayName); err != nil {
		return "", models.User{}, err
	}
	if err := s.revoker.Revoke(ctx, claims.ID, claims.Remaining(time.Now())); err != nil {
		return "", models.User{}, err
	}

	user, err := s.users.FindByEmail(ctx, subject.Email)
	if err != nil {
		return "", models.User{}, err
	}

	token, err := s.tokens.IssueUserToken(user.ID, s.cfg.UserTokenTTL)
	if err != nil {
		return "", models.User{}, err
	}
	return token, user, nil
}

// ResetPassword replaces the password behind a verified token and burns it.
func (s *AuthService) ResetPassword(ctx context.Context, subject security.VerifiedToken, claims *security.TokenClaims, password string) error {
	hash, err := security.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, subject.Email, hash); err != nil {
		return err
	}
	return s.revoker.Revoke(ctx, claims.ID, claims.Remaining(time.Now()))
}

type LoginResult struct {
	AccessToken    string
	SuperUserToken string
	User           models.User
}

func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if !user.Enabled() {
		return LoginResult{}, ErrAccountDisabled
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.tokens.IssueUserToken(user.ID, s.cfg.UserTokenTTL)
	if err != nil {
		return LoginResult{}, err
	}

	result := LoginResult{AccessToken: token, User: user}
	if user.SuperUser {
		superToken, err := s.tokens.IssueSuperUserToken(user.ID, s.cfg.SuperTokenTTL)
		if err != nil {
			return LoginResult{}, err
		}
		result.SuperUserToken = superToken
	}
	return result, nil
}

// SelectCompany exchanges a user token for a role token scoped to one
// tenant. The role must exist and be active.
func (s *AuthService) SelectCompany(ctx context.Context, userID, companyID string) (string, models.Role, error) {
	role, err := s.roles.GetByUserAndCompany(ctx, userID, companyID)
	if err != nil {
		return "", models.Role{}, err
	}
	if !role.IsActive {
		return "", models.Role{}, ErrAccountDisabled
	}

	token, err := s.tokens.IssueRoleToken(role.ID, s.cfg.RoleTokenTTL)
	if err != nil {
		return "", models.Role{}, err
	}
	return token, role, nil
}

// Logout revokes the presented token for its remaining lifetime.
func (s *AuthService) Logout(ctx context.Context, claims *security.TokenClaims) error {
	return s.revoker.Revoke(ctx, claims.ID, claims.Remaining(time.Now()))
}
