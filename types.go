package accounts

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// TokenService mints and validates session tokens
type TokenService interface {
	TokenValidator
	Generate(subjectID string, role UserRole) (string, error)
	SignClaims(claims *SessionClaims) (string, error)
}

// Config holds the out-of-band values the core cannot run without
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetAdminEmail() string
	GetAdminPassword() string
	GetContextKey() string
	GetTokenLookup() string
	GetAuthScheme() string
}

// UserStore is the read side of the account store the Authorizer consults.
// Non-admin authorization performs one live lookup per request; implementations
// must not cache account state across requests.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// Authenticator holds the account lifecycle entry points
type Authenticator interface {
	Register(ctx context.Context, msg RegisterUserMessage) (*User, string, error)
	Login(ctx context.Context, email, password string) (*User, string, error)
	AdminLogin(ctx context.Context, email, password string) (string, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ACCOUNTS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
