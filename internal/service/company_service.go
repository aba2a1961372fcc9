package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/luisale89/storage-manager-sub000/internal/ids"
	"github.com/luisale89/storage-manager-sub000/internal/models"
	"github.com/luisale89/storage-manager-sub000/internal/repository"
)

var (
	// ErrSelfModify rejects an owner editing or removing their own role.
	ErrSelfModify = errors.New("cannot modify own role")
	// ErrMemberExists means the user already holds a role in the company.
	ErrMemberExists = errors.New("user already has a role in this company")
)

type CompanyStore interface {
	GetByID(ctx context.Context, id string) (models.Company, error)
	Update(ctx context.Context, company models.Company) error
}

type MemberStore interface {
	GetByUserAndCompany(ctx context.Context, userID, companyID string) (models.Role, error)
	ListByUser(ctx context.Context, userID string) ([]repository.Membership, error)
	ListByCompany(ctx context.Context, companyID string) ([]repository.Membership, error)
	UpdateFunction(ctx context.Context, roleID, companyID, functionID string) error
	SetActive(ctx context.Context, roleID, companyID string, active bool) error
	Delete(ctx context.Context, roleID, companyID string) error
	GetFunctionByLevel(ctx context.Context, level models.RoleLevel) (models.RoleFunction, error)
}

type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
}

// MemberTxStore is the transactional slice of repository.TxStore the
// company flows need.
type MemberTxStore interface {
	CreateCompanyWithOwner(ctx context.Context, company models.Company, owner models.Role) error
	AddMember(ctx context.Context, newUser *models.User, role models.Role) error
}

type InviteMailer interface {
	SendInvitation(ctx context.Context, to, companyName string) error
}

type CompanyService struct {
	companies CompanyStore
	members   MemberStore
	users     UserFinder
	tx        MemberTxStore
	mailer    InviteMailer
	log       zerolog.Logger
}

func NewCompanyService(
	companies CompanyStore,
	members MemberStore,
	users UserFinder,
	tx MemberTxStore,
	mailer InviteMailer,
	log zerolog.Logger,
) *CompanyService {
	return &CompanyService{
		companies: companies,
		members:   members,
		users:     users,
		tx:        tx,
		mailer:    mailer,
		log:       log,
	}
}

// CreateCompany creates a tenant with the acting user as its owner.
func (s *CompanyService) CreateCompany(ctx context.Context, userID, name, currency string) (models.Company, error) {
	ownerFn, err := s.members.GetFunctionByLevel(ctx, models.LevelOwner)
	if err != nil {
		return models.Company{}, err
	}

	company := models.Company{
		ID:       ids.New(),
		Name:     strings.TrimSpace(name),
		Currency: currency,
	}
	owner := models.Role{
		ID:        ids.New(),
		UserID:    userID,
		CompanyID: company.ID,
		Function:  ownerFn,
		IsActive:  true,
	}

	if err := s.tx.CreateCompanyWithOwner(ctx, company, owner); err != nil {
		return models.Company{}, err
	}
	return company, nil
}

// Invite adds a member by email at the given level. The invitation mail is
// sent before any row is written, so a mail failure creates nothing.
func (s *CompanyService) Invite(ctx context.Context, actor models.RolePrincipal, email string, level models.RoleLevel) (models.Role, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	fn, err := s.members.GetFunctionByLevel(ctx, level)
	if err != nil {
		return models.Role{}, err
	}

	var newUser *models.User
	invitee, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if _, err := s.members.GetByUserAndCompany(ctx, invitee.ID, actor.CompanyID); err == nil {
			return models.Role{}, ErrMemberExists
		} else if !errors.Is(err, repository.ErrRoleNotFound) {
			return models.Role{}, err
		}
	case errors.Is(err, repository.ErrUserNotFound):
		newUser = &models.User{
			ID:    ids.New(),
			Email: email,
		}
		invitee = *newUser
	default:
		return models.Role{}, err
	}

	company, err := s.companies.GetByID(ctx, actor.CompanyID)
	if err != nil {
		return models.Role{}, err
	}

	if err := s.mailer.SendInvitation(ctx, email, company.Name); err != nil {
		return models.Role{}, err
	}

	role := models.Role{
		ID:        ids.New(),
		UserID:    invitee.ID,
		CompanyID: actor.CompanyID,
		Function:  fn,
		IsActive:  true,
	}
	if err := s.tx.AddMember(ctx, newUser, role); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost the race against a concurrent invite for the same email.
			return models.Role{}, ErrMemberExists
		}
		return models.Role{}, err
	}
	return role, nil
}

func (s *CompanyService) ListMine(ctx context.Context, userID string) ([]repository.Membership, error) {
	return s.members.ListByUser(ctx, userID)
}

func (s *CompanyService) ListMembers(ctx context.Context, companyID string) ([]repository.Membership, error) {
	return s.members.ListByCompany(ctx, companyID)
}

// UpdateMemberLevel reassigns a member's role function. Owners cannot change
// their own role.
func (s *CompanyService) UpdateMemberLevel(ctx context.Context, actor models.RolePrincipal, roleID string, level models.RoleLevel) error {
	if roleID == actor.ID {
		return ErrSelfModify
	}
	fn, err := s.members.GetFunctionByLevel(ctx, level)
	if err != nil {
		return err
	}
	return s.members.UpdateFunction(ctx, roleID, actor.CompanyID, fn.ID)
}

func (s *CompanyService) SetMemberActive(ctx context.Context, actor models.RolePrincipal, roleID string, active bool) error {
	if roleID == actor.ID {
		return ErrSelfModify
	}
	return s.members.SetActive(ctx, roleID, actor.CompanyID, active)
}

func (s *CompanyService) RemoveMember(ctx context.Context, actor models.RolePrincipal, roleID string) error {
	if roleID == actor.ID {
		return ErrSelfModify
	}
	return s.members.Delete(ctx, roleID, actor.CompanyID)
}
