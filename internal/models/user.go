package models

import (
	"slices"
	"time"

	"gorm.io/datatypes"
)

type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RolePO         Role = "PO"
	RoleBO         Role = "BO"
	RoleTO         Role = "TO"
	RoleManagement Role = "MANAGEMENT"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RolePO, RoleBO, RoleTO, RoleManagement:
		return true
	}
	return false
}

// Roles is the set of roles held by a user, stored as a JSON array.
type Roles = datatypes.JSONSlice[Role]

type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Department   string    `gorm:"type:varchar(100)" json:"department"`
	PhoneNumber  string    `gorm:"type:varchar(50)" json:"phone_number"`
	Roles        Roles     `json:"roles"`
	ParentID     *uint64   `gorm:"index" json:"parent_id"`
	TeamID       *uint64   `gorm:"index" json:"team_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasRole reports whether the user holds role.
func (u *User) HasRole(role Role) bool {
	return HasRole(u.Roles, role)
}

// HasRole reports whether roles contains role.
func HasRole(roles []Role, role Role) bool {
	return slices.Contains(roles, role)
}

// HasAnyRole reports whether roles contains at least one of allowed.
func HasAnyRole(roles []Role, allowed ...Role) bool {
	for _, r := range allowed {
		if slices.Contains(roles, r) {
			return true
		}
	}
	return false
}
