package domain

import (
	"net/mail"
	"strings"
	"time"
)

// Role is the access level label carried by a user record.
type Role string

const (
	RoleUser      Role = "user"
	RoleDeveloper Role = "developer"
	RoleAdmin     Role = "admin"
)

// Roles lists every accepted role, in display order.
var Roles = []Role{RoleUser, RoleDeveloper, RoleAdmin}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// UserStatus marks whether a user account is in use.
type UserStatus string

const (
	StatusActive   UserStatus = "active"
	StatusInactive UserStatus = "inactive"
)

// Valid reports whether s is one of the known statuses.
func (s UserStatus) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// User is a managed account record.
type User struct {
	ID        string     `json:"_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	Status    UserStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Normalize trims text fields, lowercases the email and fills in the
// default role and status.
func (u *User) Normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = normalizeEmail(u.Email)
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.Status == "" {
		u.Status = StatusActive
	}
}

// Validate checks the field rules enforced before a user reaches the store.
func (u User) Validate() error {
	if u.Name == "" {
		return InvalidInput("name is required")
	}
	if err := validateEmail(u.Email); err != nil {
		return err
	}
	if !u.Role.Valid() {
		return InvalidInput("role must be one of: user developer admin")
	}
	if !u.Status.Valid() {
		return InvalidInput("status must be one of: active inactive")
	}
	return nil
}

// UserPatch holds the fields of a partial update. Nil fields are left untouched.
type UserPatch struct {
	Name   *string
	Email  *string
	Role   *Role
	Status *UserStatus
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Role == nil && p.Status == nil
}

// Normalize applies the same trimming rules as User.Normalize to set fields.
func (p *UserPatch) Normalize() {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		p.Name = &name
	}
	if p.Email != nil {
		email := normalizeEmail(*p.Email)
		p.Email = &email
	}
}

// Validate runs the create-time field rules on every field the patch sets.
func (p UserPatch) Validate() error {
	if p.Name != nil && *p.Name == "" {
		return InvalidInput("name is required")
	}
	if p.Email != nil {
		if err := validateEmail(*p.Email); err != nil {
			return err
		}
	}
	if p.Role != nil && !p.Role.Valid() {
		return InvalidInput("role must be one of: user developer admin")
	}
	if p.Status != nil && !p.Status.Valid() {
		return InvalidInput("status must be one of: active inactive")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return InvalidInput("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return InvalidInput("email must be a valid email")
	}
	return nil
}
