package accounts

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the account repository. Reads always exclude soft-deleted rows,
// so a deleted account's tokens resolve to a not-found subject. The generic
// repository surface stays an implementation detail of the bun-backed store;
// the interface carries only the domain operations so GetByID and List keep
// the narrow shapes UserStore and the controller consume.
type Users interface {
	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)

	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)

	UpdateFields(ctx context.Context, id uuid.UUID, patch UserPatch) (*User, error)
	UpdateFieldsTx(ctx context.Context, tx bun.IDB, id uuid.UUID, patch UserPatch) (*User, error)
	SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) (*User, error)
	SetBlockedTx(ctx context.Context, tx bun.IDB, id uuid.UUID, blocked bool) (*User, error)
	DeleteAccount(ctx context.Context, id uuid.UUID) (*User, error)
	DeleteAccountTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error)
}

// UserPatch carries the admin-editable fields. Nil means "leave unchanged".
type UserPatch struct {
	Name         *string   `json:"name,omitempty"`
	Email        *string   `json:"email,omitempty"`
	Role         *UserRole `json:"user_role,omitempty"`
	Blocked      *bool     `json:"is_blocked,omitempty"`
	ProfileImage *string   `json:"profile_image,omitempty"`
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users        = (*users)(nil)
	_ UserStore    = (*users)(nil)
	_ AccountStore = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	prepareUserDefaults(user)
	return a.Repository.CreateTx(ctx, tx, user)
}

func (a *users) GetByID(ctx context.Context, id string) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"id": id})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", NormalizeEmail(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"email": email})
		}
		return nil, err
	}

	return record, nil
}

// List returns every account, newest first, password hashes stripped.
func (a *users) List(ctx context.Context) ([]*User, error) {
	records := []*User{}
	err := a.db.NewSelect().
		Model(&records).
		Order("created_at DESC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	for _, record := range records {
		record.Sanitize()
	}

	return records, nil
}

func (a *users) UpdateFields(ctx context.Context, id uuid.UUID, patch UserPatch) (*User, error) {
	return a.UpdateFieldsTx(ctx, a.db, id, patch)
}

func (a *users) UpdateFieldsTx(ctx context.Context, tx bun.IDB, id uuid.UUID, patch UserPatch) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id.String()).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"id": id.String()})
		}
		return nil, err
	}

	if patch.Name != nil {
		record.Name = *patch.Name
	}
	if patch.Email != nil {
		record.Email = NormalizeEmail(*patch.Email)
	}
	if patch.Role != nil {
		record.Role = *patch.Role
	}
	if patch.Blocked != nil {
		record.Blocked = *patch.Blocked
	}
	if patch.ProfileImage != nil {
		record.ProfileImage = *patch.ProfileImage
	}
	record.EnsureRole()

	now := time.Now()
	record.UpdatedAt = &now

	// NOTE: Column list is explicit so a false is_blocked is written instead
	// of being skipped as a zero value.
	_, err = tx.NewUpdate().
		Model(record).
		Column("name", "email", "user_role", "is_blocked", "profile_image", "updated_at").
		Where("?TableAlias.id = ?", id.String()).
		Exec(ctx)

	if err != nil {
		return nil, err
	}

	return record.Sanitize(), nil
}

func (a *users) SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) (*User, error) {
	return a.SetBlockedTx(ctx, a.db, id, blocked)
}

func (a *users) SetBlockedTx(ctx context.Context, tx bun.IDB, id uuid.UUID, blocked bool) (*User, error) {
	return a.UpdateFieldsTx(ctx, tx, id, UserPatch{Blocked: &blocked})
}

func (a *users) DeleteAccount(ctx context.Context, id uuid.UUID) (*User, error) {
	return a.DeleteAccountTx(ctx, a.db, id)
}

// DeleteAccountTx soft deletes the row; every read path filters deleted rows,
// so outstanding tokens for the account resolve to a missing subject.
func (a *users) DeleteAccountTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id.String()).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"id": id.String()})
		}
		return nil, err
	}

	_, err = tx.NewDelete().
		Model(record).
		Where("?TableAlias.id = ?", id.String()).
		Exec(ctx)

	if err != nil {
		return nil, err
	}

	return record.Sanitize(), nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	record.EnsureRole()
	record.Email = NormalizeEmail(record.Email)

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if record.PasswordHash == "" {
		record.PasswordHash = RandomPasswordHash()
	}
}
