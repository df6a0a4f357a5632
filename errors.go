package accounts

import (
	"github.com/goliatone/go-errors"
)

// ErrMissingCredential is returned when a protected request carries no bearer
// credential at all.
var ErrMissingCredential = errors.New("authentication required", errors.CategoryAuth).
	WithTextCode("MISSING_CREDENTIAL").
	WithCode(errors.CodeUnauthorized)

// ErrInvalidCredential is returned for any token that does not verify:
// malformed, bad signature, or expired. The cases are deliberately not
// distinguishable by the caller.
var ErrInvalidCredential = errors.New("invalid or expired session", errors.CategoryAuth).
	WithTextCode("INVALID_CREDENTIAL").
	WithCode(errors.CodeUnauthorized)

// ErrSubjectNotFound is returned when a token verifies but its subject no
// longer exists in the store, e.g. the account was deleted.
var ErrSubjectNotFound = errors.New("account not found", errors.CategoryAuth).
	WithTextCode("SUBJECT_NOT_FOUND").
	WithCode(errors.CodeUnauthorized)

// ErrAccountBlocked is returned when credentials or token are valid but the
// account is administratively blocked.
var ErrAccountBlocked = errors.New("account blocked by administrator", errors.CategoryAuthz).
	WithTextCode("ACCOUNT_BLOCKED").
	WithCode(errors.CodeForbidden)

// ErrBadCredentials is the single login failure signal. It does not reveal
// whether the email or the password was wrong.
var ErrBadCredentials = errors.New("invalid email or password", errors.CategoryAuth).
	WithTextCode("BAD_CREDENTIALS").
	WithCode(errors.CodeUnauthorized)

// ErrDuplicateAccount is returned when registration hits an existing email.
var ErrDuplicateAccount = errors.New("an account with this email already exists", errors.CategoryConflict).
	WithTextCode("DUPLICATE_ACCOUNT").
	WithCode(errors.CodeConflict)

// ErrNoEmptyPassword rejects empty plaintext before it reaches the hasher.
var ErrNoEmptyPassword = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode("EMPTY_PASSWORD").
	WithCode(errors.CodeBadRequest)

// IsBlockedError will check for the blocked account signal
func IsBlockedError(err error) bool {
	return hasTextCode(err, ErrAccountBlocked.TextCode)
}

// IsDuplicateAccountError will check for the duplicate registration signal
func IsDuplicateAccountError(err error) bool {
	return hasTextCode(err, ErrDuplicateAccount.TextCode)
}

// IsAuthDenial reports whether err is one of the recoverable authorization
// denials, as opposed to an internal failure.
func IsAuthDenial(err error) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	switch richErr.Category {
	case errors.CategoryAuth, errors.CategoryAuthz:
		return true
	default:
		return false
	}
}

func hasTextCode(err error, code string) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == code
}
