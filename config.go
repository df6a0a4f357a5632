package accounts

import (
	"github.com/goliatone/go-errors"
)

// Options is the concrete Config used when the host application does not
// bring its own configuration container. The signing secret and the admin
// credential pair are resolved once at process start; a missing value is a
// startup failure, never a per-request error.
type Options struct {
	SigningKey      string
	TokenExpiration int
	AdminEmail      string
	AdminPassword   string
	ContextKey      string
	TokenLookup     string
	AuthScheme      string
}

// NewConfig validates the required out-of-band values and fills defaults.
func NewConfig(opts Options) (*Options, error) {
	if opts.SigningKey == "" {
		return nil, errors.New("missing signing key", errors.CategoryInternal).
			WithTextCode("MISSING_SIGNING_KEY")
	}

	if opts.AdminEmail == "" || opts.AdminPassword == "" {
		return nil, errors.New("missing administrator credential pair", errors.CategoryInternal).
			WithTextCode("MISSING_ADMIN_CREDENTIALS")
	}

	if opts.TokenExpiration <= 0 {
		opts.TokenExpiration = DefaultTokenExpiration
	}

	if opts.ContextKey == "" {
		opts.ContextKey = "principal"
	}

	if opts.TokenLookup == "" {
		opts.TokenLookup = "header:Authorization"
	}

	if opts.AuthScheme == "" {
		opts.AuthScheme = "Bearer"
	}

	return &opts, nil
}

func (o *Options) GetSigningKey() string   { return o.SigningKey }
func (o *Options) GetTokenExpiration() int { return o.TokenExpiration }
func (o *Options) GetAdminEmail() string   { return o.AdminEmail }
func (o *Options) GetAdminPassword() string { return o.AdminPassword }
func (o *Options) GetContextKey() string   { return o.ContextKey }
func (o *Options) GetTokenLookup() string  { return o.TokenLookup }
func (o *Options) GetAuthScheme() string   { return o.AuthScheme }

var _ Config = (*Options)(nil)
