package models

import "time"

// RoleLevel is the numeric authorization rank of a role function. Lower is
// more privileged: an owner passes every level check.
type RoleLevel int

const (
	LevelOwner    RoleLevel = 0
	LevelAdmin    RoleLevel = 1
	LevelOperator RoleLevel = 2
	LevelViewer   RoleLevel = 3
)

// RoleFunction is one entry of the fixed, seeded authorization catalog.
type RoleFunction struct {
	ID    string
	Name  string
	Level RoleLevel
}

// Role links a user to a company with an authorization level. It is the
// acting principal for every tenant-scoped operation. A user holds at most
// one role per company.
type Role struct {
	ID        string
	UserID    string
	CompanyID string
	Function  RoleFunction
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Authorizes reports whether the role satisfies the required minimum level.
// The check is level <= required: a numerically greater level is less
// privileged and must be rejected.
func (r Role) Authorizes(required RoleLevel) bool {
	return r.Function.Level <= required
}

// RolePrincipal is a role joined with the liveness state of its owning user,
// which the role gate needs in a single lookup.
type RolePrincipal struct {
	Role
	UserEmail   string
	UserEnabled bool
}
