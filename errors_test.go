package accounts_test

import (
	"testing"

	"github.com/goliatone/go-accounts"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name     string
		err      *goerrors.Error
		category any
		textCode string
		code     int
	}{
		{"missing credential", accounts.ErrMissingCredential, goerrors.CategoryAuth, "MISSING_CREDENTIAL", goerrors.CodeUnauthorized},
		{"invalid credential", accounts.ErrInvalidCredential, goerrors.CategoryAuth, "INVALID_CREDENTIAL", goerrors.CodeUnauthorized},
		{"subject not found", accounts.ErrSubjectNotFound, goerrors.CategoryAuth, "SUBJECT_NOT_FOUND", goerrors.CodeUnauthorized},
		{"account blocked", accounts.ErrAccountBlocked, goerrors.CategoryAuthz, "ACCOUNT_BLOCKED", goerrors.CodeForbidden},
		{"bad credentials", accounts.ErrBadCredentials, goerrors.CategoryAuth, "BAD_CREDENTIALS", goerrors.CodeUnauthorized},
		{"duplicate account", accounts.ErrDuplicateAccount, goerrors.CategoryConflict, "DUPLICATE_ACCOUNT", goerrors.CodeConflict},
		{"empty password", accounts.ErrNoEmptyPassword, goerrors.CategoryValidation, "EMPTY_PASSWORD", goerrors.CodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, tt.err.Category)
			assert.Equal(t, tt.textCode, tt.err.TextCode)
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}
}

func TestErrorHelpers(t *testing.T) {
	assert.True(t, accounts.IsBlockedError(accounts.ErrAccountBlocked))
	assert.False(t, accounts.IsBlockedError(accounts.ErrBadCredentials))

	assert.True(t, accounts.IsDuplicateAccountError(accounts.ErrDuplicateAccount))
	assert.False(t, accounts.IsDuplicateAccountError(accounts.ErrAccountBlocked))

	assert.True(t, accounts.IsAuthDenial(accounts.ErrMissingCredential))
	assert.True(t, accounts.IsAuthDenial(accounts.ErrAccountBlocked))
	assert.False(t, accounts.IsAuthDenial(accounts.ErrDuplicateAccount))
	assert.False(t, accounts.IsAuthDenial(assert.AnError))
}
