package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/luisale89/storage-manager-sub000/internal/models"
)

var (
	ErrRoleNotFound         = errors.New("role not found")
	ErrRoleFunctionNotFound = errors.New("role function not found")
)

type RoleRepository struct {
	db Querier
}

func NewRoleRepository(db Querier) *RoleRepository {
	return &RoleRepository{db: db}
}

// Membership is a role joined with its company and function, the shape the
// "my companies" and member listings need.
type Membership struct {
	models.Role
	CompanyName string
	UserEmail   string
	UserName    string
}

func (r *RoleRepository) Create(ctx context.Context, role models.Role) error {
	const query = `
		INSERT INTO roles (id, user_id, company_id, role_function_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, role.ID, role.UserID, role.CompanyID, role.Function.ID, role.IsActive)
	return mapWriteError(err)
}

// GetPrincipal loads a role together with the liveness state of its owning
// user. This is the single lookup the role gate performs per request.
func (r *RoleRepository) GetPrincipal(ctx context.Context, roleID string) (models.RolePrincipal, error) {
	const query = `
		SELECT r.id, r.user_id, r.company_id, r.is_active, r.created_at, r.updated_at,
		       f.id, f.name, f.level,
		       u.email, u.email_confirmed AND u.signup_completed
		FROM roles r
		JOIN role_functions f ON f.id = r.role_function_id
		JOIN users u ON u.id = r.user_id
		WHERE r.id = $1
	`

	row := r.db.QueryRow(ctx, query, roleID)
	var p models.RolePrincipal
	if err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.CompanyID,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.Function.ID,
		&p.Function.Name,
		&p.Function.Level,
		&p.UserEmail,
		&p.UserEnabled,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.RolePrincipal{}, ErrRoleNotFound
		}
		return models.RolePrincipal{}, err
	}
	return p, nil
}

func (r *RoleRepository) GetByUserAndCompany(ctx context.Context, userID, companyID string) (models.Role, error) {
	const query = `
		SELECT r.id, r.user_id, r.company_id, r.is_active, r.created_at, r.updated_at,
		       f.id, f.name, f.level
		FROM roles r
		JOIN role_functions f ON f.id = r.role_function_id
		WHERE r.user_id = $1 AND r.company_id = $2
	`

	row := r.db.QueryRow(ctx, query, userID, companyID)
	var role models.Role
	if err := row.Scan(
		&role.ID,
		&role.UserID,
		&role.CompanyID,
		&role.IsActive,
		&role.CreatedAt,
		&role.UpdatedAt,
		&role.Function.ID,
		&role.Function.Name,
		&role.Function.Level,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Role{}, ErrRoleNotFound
		}
		return models.Role{}, err
	}
	return role, nil
}

func (r *RoleRepository) ListByUser(ctx context.Context, userID string) ([]Membership, error) {
	const query = `
		SELECT r.id, r.user_id, r.company_id, r.is_active, r.created_at, r.updated_at,
		       f.id, f.name, f.level,
		       c.name, u.email, u.display_name
		FROM roles r
		JOIN role_functions f ON f.id = r.role_function_id
		JOIN companies c ON c.id = r.company_id
		JOIN users u ON u.id = r.user_id
		WHERE r.user_id = $1
		ORDER BY r.created_at
	`
	return r.listMemberships(ctx, query, userID)
}

func (r *RoleRepository) ListByCompany(ctx context.Context, companyID string) ([]Membership, error) {
	const query = `
		SELECT r.id, r.user_id, r.company_id, r.is_active, r.created_at, r.updated_at,
		       f.id, f.name, f.level,
		       c.name, u.email, u.display_name
		FROM roles r
		JOIN role_functions f ON f.id = r.role_function_id
		JOIN companies c ON c.id = r.company_id
		JOIN users u ON u.id = r.user_id
		WHERE r.company_id = $1
		ORDER BY f.level, r.created_at
	`
	return r.listMemberships(ctx, query, companyID)
}

func (r *RoleRepository) listMemberships(ctx context.Context, query string, arg any) ([]Membership, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []Membership
	for rows.Next() {
		var m Membership
		if err := rows.Scan(
			&m.ID,
			&m.UserID,
			&m.CompanyID,
			&m.IsActive,
			&m.CreatedAt,
			&m.UpdatedAt,
			&m.Function.ID,
			&m.Function.Name,
			&m.Function.Level,
			&m.CompanyName,
			&m.UserEmail,
			&m.UserName,
		); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// UpdateFunction reassigns a member's authorization level. The company
// filter keeps one tenant from editing another tenant's roles.
func (r *RoleRepository) UpdateFunction(ctx context.Context, roleID, companyID, functionID string) error {
	const query = `
		UPDATE roles SET role_function_id = $3, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
	`
	cmd, err := r.db.Exec(ctx, query, roleID, companyID, functionID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrRoleNotFound
	}
	return nil
}

func (r *RoleRepository) SetActive(ctx context.Context, roleID, companyID string, active bool) error {
	const query = `
		UPDATE roles SET is_active = $3, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
	`
	cmd, err := r.db.Exec(ctx, query, roleID, companyID, active)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrRoleNotFound
	}
	return nil
}

func (r *RoleRepository) Delete(ctx context.Context, roleID, companyID string) error {
	const query = `DELETE FROM roles WHERE id = $1 AND company_id = $2`
	cmd, err := r.db.Exec(ctx, query, roleID, companyID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrRoleNotFound
	}
	return nil
}

func (r *RoleRepository) GetFunctionByLevel(ctx context.Context, level models.RoleLevel) (models.RoleFunction, error) {
	const query = `SELECT id, name, level FROM role_functions WHERE level = $1`

	row := r.db.QueryRow(ctx, query, level)
	var fn models.RoleFunction
	if err := row.Scan(&fn.ID, &fn.Name, &fn.Level); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.RoleFunction{}, ErrRoleFunctionNotFound
		}
		return models.RoleFunction{}, err
	}
	return fn, nil
}

// SeedRoleFunctions installs the fixed authorization catalog. Safe to run on
// every startup.
func (r *RoleRepository) SeedRoleFunctions(ctx context.Context) error {
	const query = `
		INSERT INTO role_functions (id, name, level) VALUES
			('rf_owner', 'owner', 0),
			('rf_admin', 'admin', 1),
			('rf_operator', 'operator', 2),
			('rf_viewer', 'viewer', 3)
		ON CONFLICT (level) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query)
	return err
}
