package accounts

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
)

// AccountStore is what the Auther needs from the account store: lookups plus
// account creation. The bun-backed Users repository satisfies it.
type AccountStore interface {
	UserStore
	Register(ctx context.Context, user *User) (*User, error)
}

// Auther implements the account lifecycle rules: registration uniqueness,
// login failure classification, and admin login against the fixed pair.
type Auther struct {
	store            AccountStore
	tokenService     TokenService
	adminEmail       string
	adminPassword    string
	logger           Logger
	deterministicIDs bool
}

// NewAuthenticator returns a new Authenticator. The configuration must carry
// a signing key and the admin credential pair; NewConfig enforces that at
// process start.
func NewAuthenticator(store AccountStore, cfg Config) *Auther {
	tokenService := NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenExpiration(),
		defLogger{},
	)

	return &Auther{
		store:         store,
		tokenService:  tokenService,
		adminEmail:    cfg.GetAdminEmail(),
		adminPassword: cfg.GetAdminPassword(),
		logger:        defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	return s
}

// WithTokenService overrides the token service, e.g. for tests with a fixed clock.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	s.tokenService = ts
	return s
}

// WithDeterministicIDs derives new account ids from the email via hashid
// instead of leaving id generation to the store.
func (s *Auther) WithDeterministicIDs() *Auther {
	s.deterministicIDs = true
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Register creates a new account and issues its first session token.
// Duplicate emails are rejected before any row is written.
func (s *Auther) Register(ctx context.Context, msg RegisterUserMessage) (*User, string, error) {
	if err := msg.Validate(); err != nil {
		return nil, "", errors.Wrap(err, errors.CategoryValidation, "invalid registration payload").
			WithCode(errors.CodeBadRequest)
	}

	email := NormalizeEmail(msg.Email)

	if existing, err := s.store.GetByEmail(ctx, email); err != nil && !repository.IsRecordNotFound(err) {
		return nil, "", errors.Wrap(err, errors.CategoryInternal, "failed to check for existing account")
	} else if existing != nil {
		return nil, "", ErrDuplicateAccount
	}

	hash, err := HashPassword(msg.Password)
	if err != nil {
		return nil, "", err
	}

	user := &User{
		Name:         msg.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         RoleUser,
		Blocked:      false,
		ProfileImage: msg.ProfileImage,
	}

	if s.deterministicIDs {
		if id, err := hashid.NewUUID(email); err == nil {
			user.ID = id
		}
	}

	created, err := s.store.Register(ctx, user)
	if err != nil {
		s.logger.Error("Register create error", "error", err, "email", email)
		return nil, "", errors.Wrap(err, errors.CategoryConflict, "could not create account")
	}

	token, err := s.tokenService.Generate(created.ID.String(), RoleUser)
	if err != nil {
		return nil, "", err
	}

	return created.Sanitize(), token, nil
}

// Login verifies the email/password pair and issues a session token. A
// missing account and a wrong password yield the same ErrBadCredentials;
// a blocked account is denied before any token is minted.
func (s *Auther) Login(ctx context.Context, email, password string) (*User, string, error) {
	user, err := s.store.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, "", ErrBadCredentials
		}
		return nil, "", errors.Wrap(err, errors.CategoryInternal, "failed to retrieve account during login")
	}

	if user == nil {
		return nil, "", ErrBadCredentials
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		s.logger.Debug("Login password mismatch", "email", email)
		return nil, "", ErrBadCredentials
	}

	if user.Blocked {
		s.logger.Warn("Login denied for blocked account", "user_id", user.ID.String())
		return nil, "", ErrAccountBlocked
	}

	user.EnsureRole()

	token, err := s.tokenService.Generate(user.ID.String(), user.Role)
	if err != nil {
		return nil, "", err
	}

	return user.Sanitize(), token, nil
}

// AdminLogin matches the supplied pair against the configured administrator
// credentials: exact match, no hashing, no store lookup, no block check.
func (s *Auther) AdminLogin(ctx context.Context, email, password string) (string, error) {
	if !s.adminPairMatches(email, password) {
		return "", ErrBadCredentials
	}

	return s.tokenService.Generate(AdminSubjectID, RoleAdmin)
}

func (s *Auther) adminPairMatches(email, password string) bool {
	// Both halves compared in constant time; the pair is plaintext
	// configuration, not a stored hash.
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.adminEmail)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.adminPassword)) == 1
	return emailOK && passOK
}

// NormalizeEmail applies the uniqueness rule used at both write and lookup
// time: emails are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ Authenticator = (*Auther)(nil)
