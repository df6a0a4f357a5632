package accounts

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// Authorizer is the single entry point protected operations call before
// proceeding. It walks the request through the authorization states:
//
//	no credential      -> ErrMissingCredential
//	credential invalid -> ErrInvalidCredential
//	admin role claim   -> AdminPrincipal, store never consulted
//	user role claim    -> live store lookup:
//	    missing  -> ErrSubjectNotFound
//	    blocked  -> ErrAccountBlocked
//	    active   -> UserPrincipal, hash stripped
//
// The block check is a per-request store read on purpose: a block must take
// effect immediately for every outstanding token, and the token itself stays
// cryptographically valid until expiry.
type Authorizer struct {
	validator  TokenValidator
	store      UserStore
	adminEmail string
	logger     Logger
}

// NewAuthorizer returns a new Authorizer backed by the given token validator
// and account store.
func NewAuthorizer(validator TokenValidator, store UserStore) *Authorizer {
	return &Authorizer{
		validator: validator,
		store:     store,
		logger:    defLogger{},
	}
}

func (a *Authorizer) WithLogger(logger Logger) *Authorizer {
	a.logger = logger
	return a
}

// WithAdminEmail sets the display email carried by admin principals.
func (a *Authorizer) WithAdminEmail(email string) *Authorizer {
	a.adminEmail = email
	return a
}

// Authorize resolves the raw bearer credential into a Principal or a denial.
func (a *Authorizer) Authorize(ctx context.Context, raw string) (Principal, error) {
	if raw == "" {
		return nil, ErrMissingCredential
	}

	claims, err := a.validator.Validate(raw)
	if err != nil {
		// Present-but-untrusted is not distinguishable from absent at this
		// layer; both deny with an authentication-required class of error.
		a.logger.Debug("Authorize token rejected", "error", err)
		return nil, ErrInvalidCredential
	}

	if claims.IsAdmin() {
		return NewAdminPrincipal(a.adminEmail), nil
	}

	user, err := a.store.GetByID(ctx, claims.UserID())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrSubjectNotFound
		}
		a.logger.Error("Authorize store lookup failed", "error", err, "subject", claims.UserID())
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to resolve token subject")
	}

	if user == nil {
		return nil, ErrSubjectNotFound
	}

	if user.Blocked {
		return nil, ErrAccountBlocked
	}

	return NewUserPrincipal(user), nil
}
