package accounts

// Principal is the authenticated identity attached to an authorized request.
// It is a closed sum: AdminPrincipal or UserPrincipal. Keeping the admin as
// its own variant, rather than a special account row, structurally enforces
// that the administrator is never stored, looked up, or blocked.
type Principal interface {
	ID() string
	Name() string
	Email() string
	Role() string
	IsAdmin() bool
}

// AdminPrincipal is the synthetic administrator identity. It carries the
// fixed sentinel subject id and exists only for the lifetime of a request.
type AdminPrincipal struct {
	email string
}

// NewAdminPrincipal returns the administrator principal. The email is the
// configured admin identifier, kept for display only.
func NewAdminPrincipal(email string) AdminPrincipal {
	return AdminPrincipal{email: email}
}

func (a AdminPrincipal) ID() string    { return AdminSubjectID }
func (a AdminPrincipal) Name() string  { return AdminDisplayName }
func (a AdminPrincipal) Email() string { return a.email }
func (a AdminPrincipal) Role() string  { return RoleAdmin }
func (a AdminPrincipal) IsAdmin() bool { return true }

// UserPrincipal adapts an account row into a Principal. The password hash is
// stripped before construction; see Authorizer.
type UserPrincipal struct {
	user *User
}

// NewUserPrincipal returns a Principal backed by the given account.
func NewUserPrincipal(user *User) Principal {
	if user == nil {
		return nil
	}
	return UserPrincipal{user: user.Sanitize()}
}

// User returns the underlying account record, hash already stripped.
func (u UserPrincipal) User() *User {
	return u.user
}

func (u UserPrincipal) ID() string {
	if u.user == nil {
		return ""
	}
	return u.user.ID.String()
}

func (u UserPrincipal) Name() string {
	if u.user == nil {
		return ""
	}
	return u.user.Name
}

func (u UserPrincipal) Email() string {
	if u.user == nil {
		return ""
	}
	return u.user.Email
}

func (u UserPrincipal) Role() string {
	if u.user == nil {
		return ""
	}
	u.user.EnsureRole()
	return string(u.user.Role)
}

func (u UserPrincipal) IsAdmin() bool {
	return u.Role() == RoleAdmin
}

var (
	_ Principal = AdminPrincipal{}
	_ Principal = UserPrincipal{}
)
