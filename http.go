package accounts

import (
	"context"

	"github.com/goliatone/go-accounts/middleware/authware"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RouteGuard wires the authorization resolver into route middleware. Every
// guarded request resolves its token against the live account store.
type RouteGuard struct {
	authorizer   *Authorizer
	cfg          Config
	Logger       Logger
	ErrorHandler func(c router.Context, err error) error
}

func NewRouteGuard(authorizer *Authorizer, cfg Config) (*RouteGuard, error) {
	if authorizer == nil {
		return nil, errors.New("route guard requires an authorizer", errors.CategoryBadInput).
			WithTextCode("MISSING_AUTHORIZER")
	}

	g := &RouteGuard{
		authorizer: authorizer,
		cfg:        cfg,
		Logger:     defLogger{},
	}

	g.ErrorHandler = g.defaultErrHandler

	return g, nil
}

// Protected guards a route for any resolved principal, admin or account.
func (g *RouteGuard) Protected() router.MiddlewareFunc {
	return authware.New(g.middlewareConfig(false))
}

// AdminOnly guards a route for the administrator principal.
func (g *RouteGuard) AdminOnly() router.MiddlewareFunc {
	return authware.New(g.middlewareConfig(true))
}

func (g *RouteGuard) middlewareConfig(adminOnly bool) authware.Config {
	return authware.Config{
		ErrorHandler: g.ErrorHandler,
		ContextKey:   g.cfg.GetContextKey(),
		TokenLookup:  g.cfg.GetTokenLookup(),
		AuthScheme:   g.cfg.GetAuthScheme(),
		RequireAdmin: adminOnly,
		Authorize: func(ctx context.Context, raw string) (authware.Principal, error) {
			principal, err := g.authorizer.Authorize(ctx, raw)
			if err != nil {
				return nil, err
			}
			return principal, nil
		},
		ContextEnricher: func(c context.Context, principal authware.Principal) context.Context {
			return WithPrincipalContext(c, principal)
		},
	}
}

func (g *RouteGuard) defaultErrHandler(c router.Context, err error) error {
	return RespondError(c, g.Logger, err)
}

// GetRoutePrincipal returns the principal the guard stored for the request.
func GetRoutePrincipal(c router.Context, key string) (Principal, error) {
	val := c.Locals(key)
	if val == nil {
		return nil, ErrMissingCredential
	}

	principal, ok := val.(Principal)
	if !ok || principal == nil {
		return nil, ErrMissingCredential
	}

	return principal, nil
}

// RespondError maps an error to its JSON response. Denials keep their
// taxonomy status, anything unrecognized becomes an opaque 500.
func RespondError(c router.Context, logger Logger, err error) error {
	if logger == nil {
		logger = defLogger{}
	}

	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		if err == authware.ErrAdminRequired {
			richErr = errors.New("administrator access required", errors.CategoryAuthz).
				WithTextCode("ADMIN_REQUIRED").
				WithCode(errors.CodeForbidden)
		} else {
			richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
				WithCode(errors.CodeInternal)
		}
	}

	status := richErr.Code
	if status == 0 {
		status = router.StatusInternalServerError
	}

	logger.Info(
		"Request error handler",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	return c.JSON(status, map[string]any{
		"error": map[string]any{
			"message":   richErr.Message,
			"text_code": richErr.TextCode,
			"category":  richErr.Category,
		},
	})
}
