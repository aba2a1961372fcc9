package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/luisale89/storage-manager-sub000/internal/models"
	"github.com/luisale89/storage-manager-sub000/internal/repository"
)

type stubCompanyStore struct {
	company models.Company
	err     error
	updated []models.Company
}

func (s *stubCompanyStore) GetByID(ctx context.Context, id string) (models.Company, error) {
	return s.company, s.err
}

func (s *stubCompanyStore) Update(ctx context.Context, company models.Company) error {
	s.updated = append(s.updated, company)
	return s.err
}

type stubMemberStore struct {
	role    models.Role
	roleErr error

	fn    models.RoleFunction
	fnErr error

	updatedFns  []string
	deactivated []string
	deleted     []string
}

func (s *stubMemberStore) GetByUserAndCompany(ctx context.Context, userID, companyID string) (models.Role, error) {
	return s.role, s.roleErr
}

func (s *stubMemberStore) ListByUser(ctx context.Context, userID string) ([]repository.Membership, error) {
	return nil, nil
}

func (s *stubMemberStore) ListByCompany(ctx context.Context, companyID string) ([]repository.Membership, error) {
	return nil, nil
}

func (s *stubMemberStore) UpdateFunction(ctx context.Context, roleID, companyID, functionID string) error {
	s.updatedFns = append(s.updatedFns, roleID)
	return nil
}

func (s *stubMemberStore) SetActive(ctx context.Context, roleID, companyID string, active bool) error {
	s.deactivated = append(s.deactivated, roleID)
	return nil
}

func (s *stubMemberStore) Delete(ctx context.Context, roleID, companyID string) error {
	s.deleted = append(s.deleted, roleID)
	return nil
}

func (s *stubMemberStore) GetFunctionByLevel(ctx context.Context, level models.RoleLevel) (models.RoleFunction, error) {
	if s.fnErr != nil {
		return models.RoleFunction{}, s.fnErr
	}
	return s.fn, nil
}

type stubUserFinder struct {
	user models.User
	err  error
}

func (s stubUserFinder) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return s.user, s.err
}

type stubMemberTx struct {
	companies []models.Company
	owners    []models.Role
	newUsers  []*models.User
	roles     []models.Role
	addErr    error
}

func (s *stubMemberTx) CreateCompanyWithOwner(ctx context.Context, company models.Company, owner models.Role) error {
	s.companies = append(s.companies, company)
	s.owners = append(s.owners, owner)
	return nil
}

func (s *stubMemberTx) AddMember(ctx context.Context, newUser *models.User, role models.Role) error {
	if s.addErr != nil {
		return s.addErr
	}
	s.newUsers = append(s.newUsers, newUser)
	s.roles = append(s.roles, role)
	return nil
}

type stubInviteMailer struct {
	sent      []string
	companies []string
	err       error
}

func (s *stubInviteMailer) SendInvitation(ctx context.Context, to, companyName string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, to)
	s.companies = append(s.companies, companyName)
	return nil
}

func actingOwner() models.RolePrincipal {
	return models.RolePrincipal{
		Role: models.Role{
			ID:        "role-owner",
			UserID:    "user-owner",
			CompanyID: "company-1",
			Function:  models.RoleFunction{ID: "rf_owner", Level: models.LevelOwner},
			IsActive:  true,
		},
		UserEnabled: true,
	}
}

func TestCreateCompanyAssignsOwnerRole(t *testing.T) {
	members := &stubMemberStore{fn: models.RoleFunction{ID: "rf_owner", Level: models.LevelOwner}}
	tx := &stubMemberTx{}
	svc := NewCompanyService(&stubCompanyStore{}, members, stubUserFinder{}, tx, &stubInviteMailer{}, zerolog.Nop())

	company, err := svc.CreateCompany(context.Background(), "user-1", " Acme ", "USD")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if company.Name != "Acme" {
		t.Fatalf("name not trimmed: %q", company.Name)
	}
	if len(tx.owners) != 1 {
		t.Fatalf("expected one owner role, got %d", len(tx.owners))
	}
	owner := tx.owners[0]
	if owner.UserID != "user-1" || owner.CompanyID != company.ID {
		t.Fatalf("owner role mis-wired: %+v", owner)
	}
	if owner.Function.Level != models.LevelOwner {
		t.Fatalf("expected owner level, got %d", owner.Function.Level)
	}
	if !owner.IsActive {
		t.Fatal("owner role must start active")
	}
}

func TestInviteExistingUser(t *testing.T) {
	members := &stubMemberStore{
		fn:      models.RoleFunction{ID: "rf_viewer", Level: models.LevelViewer},
		roleErr: repository.ErrRoleNotFound,
	}
	tx := &stubMemberTx{}
	mailer := &stubInviteMailer{}
	svc := NewCompanyService(
		&stubCompanyStore{company: models.Company{ID: "company-1", Name: "Acme"}},
		members,
		stubUserFinder{user: models.User{ID: "user-2", Email: "b@b.co"}},
		tx, mailer, zerolog.Nop(),
	)

	role, err := svc.Invite(context.Background(), actingOwner(), "B@b.co", models.LevelViewer)
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if role.UserID != "user-2" || role.CompanyID != "company-1" {
		t.Fatalf("role mis-wired: %+v", role)
	}
	if len(tx.newUsers) != 1 || tx.newUsers[0] != nil {
		t.Fatal("existing user must not get a new row")
	}
	if len(mailer.sent) != 1 || mailer.sent[0] != "b@b.co" {
		t.Fatalf("expected invitation to b@b.co, got %v", mailer.sent)
	}
	if mailer.companies[0] != "Acme" {
		t.Fatalf("invitation must carry the company name, got %q", mailer.companies[0])
	}
}

func TestInviteUnknownEmailCreatesUser(t *testing.T) {
	members := &stubMemberStore{fn: models.RoleFunction{ID: "rf_viewer", Level: models.LevelViewer}}
	tx := &stubMemberTx{}
	svc := NewCompanyService(
		&stubCompanyStore{company: models.Company{ID: "company-1", Name: "Acme"}},
		members,
		stubUserFinder{err: repository.ErrUserNotFound},
		tx, &stubInviteMailer{}, zerolog.Nop(),
	)

	role, err := svc.Invite(context.Background(), actingOwner(), "new@b.co", models.LevelViewer)
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if len(tx.newUsers) != 1 || tx.newUsers[0] == nil {
		t.Fatal("expected a new user row alongside the role")
	}
	if tx.newUsers[0].Email != "new@b.co" {
		t.Fatalf("unexpected invitee email: %s", tx.newUsers[0].Email)
	}
	if role.UserID != tx.newUsers[0].ID {
		t.Fatal("role must point at the new user")
	}
}

func TestInviteRejectsExistingMember(t *testing.T) {
	members := &stubMemberStore{
		fn:   models.RoleFunction{ID: "rf_viewer", Level: models.LevelViewer},
		role: models.Role{ID: "role-2"},
	}
	svc := NewCompanyService(
		&stubCompanyStore{company: models.Company{ID: "company-1"}},
		members,
		stubUserFinder{user: models.User{ID: "user-2", Email: "b@b.co"}},
		&stubMemberTx{}, &stubInviteMailer{}, zerolog.Nop(),
	)

	if _, err := svc.Invite(context.Background(), actingOwner(), "b@b.co", models.LevelViewer); !errors.Is(err, ErrMemberExists) {
		t.Fatalf("expected ErrMemberExists, got %v", err)
	}
}

func TestInviteMailFailureWritesNothing(t *testing.T) {
	members := &stubMemberStore{
		fn:      models.RoleFunction{ID: "rf_viewer", Level: models.LevelViewer},
		roleErr: repository.ErrRoleNotFound,
	}
	tx := &stubMemberTx{}
	svc := NewCompanyService(
		&stubCompanyStore{company: models.Company{ID: "company-1", Name: "Acme"}},
		members,
		stubUserFinder{user: models.User{ID: "user-2", Email: "b@b.co"}},
		tx,
		&stubInviteMailer{err: errors.New("smtp down")},
		zerolog.Nop(),
	)

	if _, err := svc.Invite(context.Background(), actingOwner(), "b@b.co", models.LevelViewer); err == nil {
		t.Fatal("expected error")
	}
	if len(tx.roles) != 0 {
		t.Fatal("mail failure must not write a role row")
	}
}

func TestInviteDuplicateRaceMapsToMemberExists(t *testing.T) {
	members := &stubMemberStore{
		fn:      models.RoleFunction{ID: "rf_viewer", Level: models.LevelViewer},
		roleErr: repository.ErrRoleNotFound,
	}
	svc := NewCompanyService(
		&stubCompanyStore{company: models.Company{ID: "company-1", Name: "Acme"}},
		members,
		stubUserFinder{user: models.User{ID: "user-2", Email: "b@b.co"}},
		&stubMemberTx{addErr: repository.ErrDuplicate},
		&stubInviteMailer{}, zerolog.Nop(),
	)

	if _, err := svc.Invite(context.Background(), actingOwner(), "b@b.co", models.LevelViewer); !errors.Is(err, ErrMemberExists) {
		t.Fatalf("expected ErrMemberExists, got %v", err)
	}
}

func TestMemberSelfModificationRejected(t *testing.T) {
	members := &stubMemberStore{fn: models.RoleFunction{ID: "rf_admin", Level: models.LevelAdmin}}
	svc := NewCompanyService(&stubCompanyStore{}, members, stubUserFinder{}, &stubMemberTx{}, &stubInviteMailer{}, zerolog.Nop())
	actor := actingOwner()

	if err := svc.UpdateMemberLevel(context.Background(), actor, actor.ID, models.LevelAdmin); !errors.Is(err, ErrSelfModify) {
		t.Fatalf("expected ErrSelfModify, got %v", err)
	}
	if err := svc.SetMemberActive(context.Background(), actor, actor.ID, false); !errors.Is(err, ErrSelfModify) {
		t.Fatalf("expected ErrSelfModify, got %v", err)
	}
	if err := svc.RemoveMember(context.Background(), actor, actor.ID); !errors.Is(err, ErrSelfModify) {
		t.Fatalf("expected ErrSelfModify, got %v", err)
	}

	if err := svc.RemoveMember(context.Background(), actor, "role-other"); err != nil {
		t.Fatalf("remove other member: %v", err)
	}
	if len(members.deleted) != 1 || members.deleted[0] != "role-other" {
		t.Fatalf("expected role-other deleted, got %v", members.deleted)
	}
}
