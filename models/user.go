package models

import (
	"gorm.io/gorm"

	"github.com/HodeX7/KDJeevraksha/internal/error/code"
	"github.com/HodeX7/KDJeevraksha/utils"
)

// Role is the closed set of staff roles. Keeping it a dedicated type means an
// invalid role cannot survive past construction or update.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleCatcher   Role = "catcher"
	RoleVet       Role = "vet"
	RoleCaretaker Role = "caretaker"
)

// Valid reports whether the role is one of the allowed staff roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCatcher, RoleVet, RoleCaretaker:
		return true
	}
	return false
}

// CanActAsVet reports whether the role may submit veterinary updates
func (r Role) CanActAsVet() bool {
	return r == RoleVet || r == RoleAdmin
}

// CanActAsCaretaker reports whether the role may submit daily monitoring reports
func (r Role) CanActAsCaretaker() bool {
	return r == RoleCaretaker || r == RoleAdmin
}

// User is a staff account. Accounts are created by an admin without a PIN and
// stay inactive until the user generates one. The access token is long-lived
// and reused across logins until it expires.
type User struct {
	BaseModel
	Name          string `gorm:"type:varchar(100);not null" json:"name"`
	ContactNumber string `gorm:"type:varchar(20);uniqueIndex;not null" json:"contact_number"`
	Password      string `gorm:"type:varchar(100)" json:"-"`
	IsActive      bool   `gorm:"default:false" json:"is_active"`
	Role          Role   `gorm:"type:varchar(20);default:'catcher'" json:"role"`
	AccessToken   string `gorm:"type:text" json:"-"`
}

// BeforeSave is a GORM hook validating the role and hashing a plain PIN
func (u *User) BeforeSave(tx *gorm.DB) error {
	if !u.Role.Valid() {
		return code.New(code.ErrUserRoleInvalid)
	}
	// bcrypt hashes are 60 bytes; anything shorter is a plain PIN
	if u.Password != "" && len(u.Password) < 60 {
		hashed, err := utils.HashPassword(u.Password)
		if err != nil {
			return err
		}
		u.Password = hashed
	}
	return nil
}
