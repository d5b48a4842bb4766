package models

import "time"

// UserRole represents the fixed set of office roles.
type UserRole string

const (
	RoleMayor          UserRole = "Mayor"
	RoleSecretary      UserRole = "Secretary"
	RoleDepartmentHead UserRole = "Department Head"
)

// TopLevelRole may act on any announcement regardless of authorship.
const TopLevelRole = RoleMayor

// Roles lists every valid role.
var Roles = []UserRole{RoleMayor, RoleSecretary, RoleDepartmentHead}

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// User represents an application user stored in the users table.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Role         UserRole  `db:"role" json:"role"`
	Department   *string   `db:"department" json:"department"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// UserFilter narrows user listings. A non-nil empty Department selects users
// without a department.
type UserFilter struct {
	Role       *UserRole
	Department *string
}
