package users

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser       Role = "USER"
	RoleProvider   Role = "PROVIDER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPERADMIN"
	RoleManager    Role = "MANAGER"
)

type User struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	FirstName string    `json:"first_name" gorm:"not null"`
	LastName  string    `json:"last_name" gorm:"not null"`
	Password  string    `json:"-" gorm:"not null"` // hide in json
	Role      Role      `json:"role" gorm:"not null;default:'USER'"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func IsValidRole(role string) bool {
	switch Role(role) {
	case RoleUser, RoleProvider, RoleAdmin, RoleSuperAdmin, RoleManager:
		return true
	default:
		return false
	}
}

// IsPrivileged reports whether the role bypasses seat-limit enforcement
// and writes directly to the passenger table instead of the request table.
func (r Role) IsPrivileged() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleSuperAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}
