package model

import (
	"fmt"
	"time"
)

// Role is the access tier stored on a profile.
type Role string

const (
	RoleCustomer Role = "cliente"
	RoleAdmin    Role = "admin"
)

var validRoles = []Role{RoleCustomer, RoleAdmin}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}

// Identity is the profile document of an authenticated principal.
type Identity struct {
	UID       string    `json:"uid" db:"uid"`
	Email     string    `json:"email" db:"email"`
	Role      Role      `json:"rol" db:"role"`
	Name      string    `json:"nombre,omitempty" db:"name"`
	Surname   string    `json:"apellido,omitempty" db:"surname"`
	Phone     string    `json:"telefono,omitempty" db:"phone"`
	CreatedAt time.Time `json:"-" db:"created_at"`
	UpdatedAt time.Time `json:"-" db:"updated_at"`
}

// ProfileFields are the optional profile attributes collected at registration.
type ProfileFields struct {
	Name    string `json:"nombre"`
	Surname string `json:"apellido"`
	Phone   string `json:"telefono"`
}

// Credential is the authentication backend's record of how a uid signs in.
type Credential struct {
	UID           string    `db:"uid"`
	Email         string    `db:"email"`
	PasswordHash  *string   `db:"password_hash"`
	GoogleSubject *string   `db:"google_subject"`
	Disabled      bool      `db:"disabled"`
	CreatedAt     time.Time `db:"created_at"`
}
