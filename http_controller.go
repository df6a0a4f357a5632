package accounts

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Patch(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

type AccountsControllerRoutes struct {
	Register     string
	Login        string
	AdminLogin   string
	Me           string
	ProfileImage string
	AdminUsers   string
}

type AccountsController struct {
	Debug        bool
	Logger       Logger
	Repo         RepositoryManager
	Auth         Authenticator
	Guard        *RouteGuard
	Routes       *AccountsControllerRoutes
	ContextKey   string
	ErrorHandler func(c router.Context, err error) error
}

type AccountsControllerOption func(*AccountsController) *AccountsController

func WithControllerLogger(logger Logger) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		c.Logger = logger
		return c
	}
}

func WithControllerRepo(repo RepositoryManager) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuth(auth Authenticator) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		c.Auth = auth
		return c
	}
}

func WithControllerGuard(guard *RouteGuard) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		c.Guard = guard
		return c
	}
}

func WithControllerDebug(debug bool) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		c.Debug = debug
		return c
	}
}

func NewAccountsController(opts ...AccountsControllerOption) *AccountsController {
	c := &AccountsController{
		Logger:     defLogger{},
		ContextKey: "principal",
		Routes: &AccountsControllerRoutes{
			Register:     "/auth/register",
			Login:        "/auth/login",
			AdminLogin:   "/auth/admin/login",
			Me:           "/auth/me",
			ProfileImage: "/auth/me/profile-image",
			AdminUsers:   "/admin/users",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in accounts controller...")
	}

	if c.Auth == nil {
		panic("Missing Authenticator in accounts controller...")
	}

	if c.Guard == nil {
		panic("Missing RouteGuard in accounts controller...")
	}

	if c.ErrorHandler == nil {
		c.ErrorHandler = func(ctx router.Context, err error) error {
			return RespondError(ctx, c.Logger, err)
		}
	}

	return c
}

func RegisterAuthRoutes(app RouteRegistrar, opts ...AccountsControllerOption) *AccountsController {
	c := NewAccountsController(opts...)

	app.Post(c.Routes.Register, c.RegistrationCreate)
	app.Post(c.Routes.Login, c.LoginPost)
	app.Post(c.Routes.AdminLogin, c.AdminLoginPost)

	app.Get(c.Routes.Me, c.Me, c.Guard.Protected())
	app.Patch(c.Routes.ProfileImage, c.ProfileImageUpdate, c.Guard.Protected())

	app.Get(c.Routes.AdminUsers, c.UserList, c.Guard.AdminOnly())
	app.Post(c.Routes.AdminUsers, c.UserCreate, c.Guard.AdminOnly())
	app.Patch(c.Routes.AdminUsers+"/:id", c.UserUpdate, c.Guard.AdminOnly())
	app.Post(c.Routes.AdminUsers+"/:id/block", c.UserBlock, c.Guard.AdminOnly())
	app.Post(c.Routes.AdminUsers+"/:id/unblock", c.UserUnblock, c.Guard.AdminOnly())
	app.Delete(c.Routes.AdminUsers+"/:id", c.UserDelete, c.Guard.AdminOnly())

	return c
}

// RegistrationCreatePayload is the registration body.
type RegistrationCreatePayload struct {
	Name         string `form:"name" json:"name"`
	Email        string `form:"email" json:"email"`
	Password     string `form:"password" json:"password"`
	ProfileImage string `form:"profile_image" json:"profile_image"`
}

// Validate will validate the payload
func (r RegistrationCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(2, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(&r.ProfileImage, is.URL),
	)
}

func (a *AccountsController) RegistrationCreate(ctx router.Context) error {
	payload := new(RegistrationCreatePayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("register account parse payload: ", "error", err)
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "unable to parse request body").
			WithCode(errors.CodeBadRequest))
	}

	if a.Debug {
		fmt.Println("======= ACCOUNT REGISTER ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("===============================")
	}

	var res *RegisterUserResponse

	msg := RegisterUserMessage{
		Name:         payload.Name,
		Email:        payload.Email,
		Password:     payload.Password,
		ProfileImage: payload.ProfileImage,
		OnResponse: func(resp *RegisterUserResponse) {
			res = resp
		},
	}

	registerUser := RegisterUserHandler{Auth: a.Auth}
	if err := registerUser.Execute(ctx.Context(), msg); err != nil {
		a.Logger.Error("register account error: ", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, map[string]any{
		"user":  res.User,
		"token": res.Token,
	})
}

// LoginRequest is the credential pair body shared by account and admin login.
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AccountsController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "unable to parse request body").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryValidation, "invalid login payload").
			WithCode(errors.CodeBadRequest))
	}

	user, token, err := a.Auth.Login(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		a.Logger.Warn("login denied", "email", payload.Email)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"user":  user,
		"token": token,
	})
}

func (a *AccountsController) AdminLoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "unable to parse request body").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryValidation, "invalid login payload").
			WithCode(errors.CodeBadRequest))
	}

	token, err := a.Auth.AdminLogin(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		a.Logger.Warn("admin login denied", "email", payload.Email)
		return a.ErrorHandler(ctx, err)
	}

	admin := NewAdminPrincipal(NormalizeEmail(payload.Email))

	return ctx.JSON(router.StatusOK, map[string]any{
		"user":  principalView(admin),
		"token": token,
	})
}

// Me returns the resolved principal for the request token.
func (a *AccountsController) Me(ctx router.Context) error {
	principal, err := GetRoutePrincipal(ctx, a.ContextKey)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if user, ok := principal.(UserPrincipal); ok {
		return ctx.JSON(router.StatusOK, map[string]any{
			"user": user.User(),
		})
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"user": principalView(principal),
	})
}

// ProfileImagePayload carries a profile image reference.
type ProfileImagePayload struct {
	ProfileImage string `form:"profile_image" json:"profile_image"`
}

// Validate will validate the payload
func (r ProfileImagePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProfileImage, validation.Required, is.URL),
	)
}

func (a *AccountsController) ProfileImageUpdate(ctx router.Context) error {
	principal, err := GetRoutePrincipal(ctx, a.ContextKey)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if principal.IsAdmin() {
		return a.ErrorHandler(ctx, errors.New("administrator has no stored profile", errors.CategoryBadInput).
			WithTextCode("ADMIN_HAS_NO_PROFILE").
			WithCode(errors.CodeBadRequest))
	}

	payload := new(ProfileImagePayload)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "unable to parse request body").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryValidation, "invalid profile image payload").
			WithCode(errors.CodeBadRequest))
	}

	id, err := uuid.Parse(principal.ID())
	if err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "invalid account id").
			WithCode(errors.CodeBadRequest))
	}

	user, err := a.Repo.Users().UpdateFields(ctx.Context(), id, UserPatch{
		ProfileImage: &payload.ProfileImage,
	})
	if err != nil {
		return a.ErrorHandler(ctx, a.mapRepoError(err))
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"user": user,
	})
}

func (a *AccountsController) UserList(ctx router.Context) error {
	users, err := a.Repo.Users().List(ctx.Context())
	if err != nil {
		a.Logger.Error("account list error: ", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"users": users,
	})
}

// UpdateUserPayload is the admin account edit body. Nil fields are untouched.
type UpdateUserPayload struct {
	Name         *string `form:"name" json:"name"`
	Email        *string `form:"email" json:"email"`
	Role         *string `form:"user_role" json:"user_role"`
	Blocked      *bool   `form:"is_blocked" json:"is_blocked"`
	ProfileImage *string `form:"profile_image" json:"profile_image"`
}

// Validate will validate the payload
func (r UpdateUserPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(2, 200)),
		validation.Field(&r.Email, validation.NilOrNotEmpty, validation.Length(6, 100), is.Email),
		validation.Field(&r.Role, validation.NilOrNotEmpty, validation.In(RoleUser, RoleAdmin)),
		validation.Field(&r.ProfileImage, validation.NilOrNotEmpty, is.URL),
	)
}

func (a *AccountsController) UserUpdate(ctx router.Context) error {
	id, err := a.paramAccountID(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	payload := new(UpdateUserPayload)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "unable to parse request body").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryValidation, "invalid account payload").
			WithCode(errors.CodeBadRequest))
	}

	patch := UserPatch{
		Name:         payload.Name,
		Email:        payload.Email,
		Blocked:      payload.Blocked,
		ProfileImage: payload.ProfileImage,
	}
	if payload.Role != nil {
		role := UserRole(*payload.Role)
		patch.Role = &role
	}

	user, err := a.Repo.Users().UpdateFields(ctx.Context(), id, patch)
	if err != nil {
		return a.ErrorHandler(ctx, a.mapRepoError(err))
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"user": user,
	})
}

// CreateUserPayload is the admin provisioning body. Password is optional:
// accounts created without one get a random placeholder hash, so they can
// only log in after an administrator sets a real password.
type CreateUserPayload struct {
	Name         string `form:"name" json:"name"`
	Email        string `form:"email" json:"email"`
	Password     string `form:"password" json:"password"`
	ProfileImage string `form:"profile_image" json:"profile_image"`
}

// Validate will validate the payload
func (r CreateUserPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(2, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Length(8, 100)),
		validation.Field(&r.ProfileImage, is.URL),
	)
}

func (a *AccountsController) UserCreate(ctx router.Context) error {
	payload := new(CreateUserPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "unable to parse request body").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryValidation, "invalid account payload").
			WithCode(errors.CodeBadRequest))
	}

	email := NormalizeEmail(payload.Email)

	if existing, err := a.Repo.Users().GetByEmail(ctx.Context(), email); err != nil && !repository.IsRecordNotFound(err) {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryInternal, "failed to check for existing account"))
	} else if existing != nil {
		return a.ErrorHandler(ctx, ErrDuplicateAccount)
	}

	record := &User{
		Name:         payload.Name,
		Email:        email,
		Role:         RoleUser,
		ProfileImage: payload.ProfileImage,
	}

	// An empty hash is replaced with a random placeholder by the repository.
	if payload.Password != "" {
		hash, err := HashPassword(payload.Password)
		if err != nil {
			return a.ErrorHandler(ctx, err)
		}
		record.PasswordHash = hash
	}

	created, err := a.Repo.Users().Register(ctx.Context(), record)
	if err != nil {
		a.Logger.Error("account create error: ", "error", err)
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryConflict, "could not create account"))
	}

	return ctx.JSON(router.StatusCreated, map[string]any{
		"user": created.Sanitize(),
	})
}

func (a *AccountsController) UserBlock(ctx router.Context) error {
	return a.setBlocked(ctx, true)
}

func (a *AccountsController) UserUnblock(ctx router.Context) error {
	return a.setBlocked(ctx, false)
}

func (a *AccountsController) setBlocked(ctx router.Context, blocked bool) error {
	id, err := a.paramAccountID(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	user, err := a.Repo.Users().SetBlocked(ctx.Context(), id, blocked)
	if err != nil {
		return a.ErrorHandler(ctx, a.mapRepoError(err))
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"user": user,
	})
}

func (a *AccountsController) UserDelete(ctx router.Context) error {
	id, err := a.paramAccountID(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	user, err := a.Repo.Users().DeleteAccount(ctx.Context(), id)
	if err != nil {
		return a.ErrorHandler(ctx, a.mapRepoError(err))
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"user": user,
	})
}

// paramAccountID parses the :id route param. The administrator sentinel is
// not a UUID and never resolves to a stored row.
func (a *AccountsController) paramAccountID(ctx router.Context) (uuid.UUID, error) {
	raw := ctx.Param("id")

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, errors.CategoryBadInput, "invalid account id").
			WithTextCode("INVALID_ACCOUNT_ID").
			WithCode(errors.CodeBadRequest).
			WithMetadata(map[string]any{"id": raw})
	}

	return id, nil
}

func (a *AccountsController) mapRepoError(err error) error {
	if repository.IsRecordNotFound(err) || errors.IsNotFound(err) {
		return errors.New("account not found", errors.CategoryNotFound).
			WithTextCode("ACCOUNT_NOT_FOUND").
			WithCode(errors.CodeNotFound)
	}
	return err
}

func principalView(p Principal) map[string]any {
	return map[string]any{
		"id":       p.ID(),
		"name":     p.Name(),
		"email":    p.Email(),
		"role":     p.Role(),
		"is_admin": p.IsAdmin(),
	}
}
