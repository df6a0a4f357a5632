package accounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleUser is the default role assigned at registration
	RoleUser UserRole = "user"
	// RoleAdmin is the administrator role. No registration path assigns it
	// to a stored account; it normally only appears on admin session tokens.
	RoleAdmin UserRole = "admin"
)

const (
	// AdminSubjectID is the fixed sentinel subject carried by administrator
	// tokens. It never matches a stored account id.
	AdminSubjectID = "admin-id-001"

	// AdminDisplayName is the presentation name of the administrator identity.
	AdminDisplayName = "Global Administrator"
)

// DefaultProfileImage is used when an account has no resolved image ref.
const DefaultProfileImage = "https://icon-library.com/images/anonymous-avatar-icon/anonymous-avatar-icon-25.jpg"

// User is the account model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role          UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash" json:"-"`
	Blocked       bool       `bun:"is_blocked,notnull,default:false" json:"is_blocked"`
	ProfileImage  string     `bun:"profile_image" json:"profile_image,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// EnsureRole defaults an empty role to RoleUser
func (u *User) EnsureRole() {
	if u.Role == "" {
		u.Role = RoleUser
	}
}

// Sanitize strips the password hash before the record crosses any boundary.
func (u *User) Sanitize() *User {
	if u == nil {
		return nil
	}
	u.PasswordHash = ""
	return u
}

// ImageOrDefault returns the profile image ref, falling back to the default avatar.
func (u *User) ImageOrDefault() string {
	if u == nil || u.ProfileImage == "" {
		return DefaultProfileImage
	}
	return u.ProfileImage
}
