package accounts_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/goliatone/go-accounts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteCreateUsers = `CREATE TABLE users (
	id TEXT NOT NULL PRIMARY KEY,
	user_role TEXT NOT NULL DEFAULT 'user',
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT,
	is_blocked BOOLEAN NOT NULL DEFAULT FALSE,
	profile_image TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	deleted_at TIMESTAMP
);`

func setupUsersRepo(t *testing.T) (accounts.Users, *bun.DB, func()) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())

	_, err = bunDB.Exec(sqliteCreateUsers)
	require.NoError(t, err)

	cleanup := func() {
		_ = bunDB.Close()
		_ = db.Close()
	}

	return accounts.NewUsersRepository(bunDB), bunDB, cleanup
}

func seedUser(t *testing.T, repo accounts.Users, name, email string) *accounts.User {
	t.Helper()

	created, err := repo.Register(context.Background(), &accounts.User{
		Name:  name,
		Email: email,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	return created
}

func TestUsersRepositoryServesAsAccountStore(t *testing.T) {
	repo, _, cleanup := setupUsersRepo(t)
	defer cleanup()

	ctx := context.Background()

	// The repository is what the resolver and the lifecycle rules consume,
	// so it has to fit their narrow store interfaces.
	var store accounts.AccountStore = repo

	created, err := store.Register(ctx, &accounts.User{
		Name:  "Alice",
		Email: "alice@example.com",
	})
	require.NoError(t, err)

	got, err := store.GetByID(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	got, err = store.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestUsersRepositoryRegister(t *testing.T) {
	repo, _, cleanup := setupUsersRepo(t)
	defer cleanup()

	ctx := context.Background()

	created := seedUser(t, repo, "Alice", "Alice@Example.com")

	// Defaults applied on the way in.
	assert.Equal(t, accounts.RoleUser, created.Role)
	assert.Equal(t, "alice@example.com", created.Email)
	assert.NotEmpty(t, created.PasswordHash)

	got, err := repo.GetByID(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Alice", got.Name)
}

func TestUsersRepositoryGetByEmail(t *testing.T) {
	repo, _, cleanup := setupUsersRepo(t)
	defer cleanup()

	ctx := context.Background()
	created := seedUser(t, repo, "Alice", "alice@example.com")

	got, err := repo.GetByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = repo.GetByEmail(ctx, "missing@example.com")
	require.Error(t, err)
}

func TestUsersRepositoryList(t *testing.T) {
	repo, bunDB, cleanup := setupUsersRepo(t)
	defer cleanup()

	ctx := context.Background()

	first := seedUser(t, repo, "First", "first@example.com")
	second := seedUser(t, repo, "Second", "second@example.com")

	// Force distinct creation times so ordering is observable.
	_, err := bunDB.Exec(
		"UPDATE users SET created_at = ? WHERE id = ?",
		time.Now().Add(-time.Hour), first.ID.String(),
	)
	require.NoError(t, err)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	// Newest first, hashes stripped.
	assert.Equal(t, second.ID, users[0].ID)
	assert.Equal(t, first.ID, users[1].ID)
	for _, u := range users {
		assert.Empty(t, u.PasswordHash)
	}
}

func TestUsersRepositorySetBlocked(t *testing.T) {
	repo, _, cleanup := setupUsersRepo(t)
	defer cleanup()

	ctx := context.Background()
	created := seedUser(t, repo, "Alice", "alice@example.com")

	blocked, err := repo.SetBlocked(ctx, created.ID, true)
	require.NoError(t, err)
	assert.True(t, blocked.Blocked)

	got, err := repo.GetByID(ctx, created.ID.String())
	require.NoError(t, err)
	assert.True(t, got.Blocked)

	// Unblocking writes the false value back.
	unblocked, err := repo.SetBlocked(ctx, created.ID, false)
	require.NoError(t, err)
	assert.False(t, unblocked.Blocked)

	got, err = repo.GetByID(ctx, created.ID.String())
	require.NoError(t, err)
	assert.False(t, got.Blocked)
}

func TestUsersRepositoryUpdateFields(t *testing.T) {
	repo, _, cleanup := setupUsersRepo(t)
	defer cleanup()

	ctx := context.Background()
	created := seedUser(t, repo, "Alice", "alice@example.com")

	name := "Alice Renamed"
	image := "https://cdn.example.com/alice.png"
	updated, err := repo.UpdateFields(ctx, created.ID, accounts.UserPatch{
		Name:         &name,
		ProfileImage: &image,
	})
	require.NoError(t, err)

	assert.Equal(t, "Alice Renamed", updated.Name)
	assert.Equal(t, image, updated.ProfileImage)
	// Untouched fields survive the patch.
	assert.Equal(t, "alice@example.com", updated.Email)

	_, err = repo.UpdateFields(ctx, uuid.New(), accounts.UserPatch{Name: &name})
	require.Error(t, err)
}

func TestUsersRepositoryDeleteAccount(t *testing.T) {
	repo, bunDB, cleanup := setupUsersRepo(t)
	defer cleanup()

	ctx := context.Background()
	created := seedUser(t, repo, "Alice", "alice@example.com")

	_, err := repo.DeleteAccount(ctx, created.ID)
	require.NoError(t, err)

	// Soft-deleted rows are invisible to every read path.
	_, err = repo.GetByID(ctx, created.ID.String())
	require.Error(t, err)

	_, err = repo.GetByEmail(ctx, "alice@example.com")
	require.Error(t, err)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	// The row itself is retained with a deletion timestamp.
	var count int
	err = bunDB.QueryRow("SELECT COUNT(*) FROM users WHERE deleted_at IS NOT NULL").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
