package accounts_test

import (
	"context"
	"strings"
	"sync"

	"github.com/goliatone/go-accounts"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserStore implements accounts.AccountStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByID(ctx context.Context, id string) (*accounts.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*accounts.User)
	return user, args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*accounts.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*accounts.User)
	return user, args.Error(1)
}

func (m *MockUserStore) Register(ctx context.Context, user *accounts.User) (*accounts.User, error) {
	args := m.Called(ctx, user)
	created, _ := args.Get(0).(*accounts.User)
	return created, args.Error(1)
}

// memStore is an in-memory AccountStore for lifecycle tests. Reads return
// copies so callers stripping the hash do not corrupt the stored record.
type memStore struct {
	mu      sync.Mutex
	byEmail map[string]*accounts.User
}

func newMemStore() *memStore {
	return &memStore{byEmail: map[string]*accounts.User{}}
}

func (s *memStore) GetByID(ctx context.Context, id string) (*accounts.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.byEmail {
		if user.ID.String() == id {
			return copyUser(user), nil
		}
	}
	return nil, repository.NewRecordNotFound()
}

func (s *memStore) GetByEmail(ctx context.Context, email string) (*accounts.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, repository.NewRecordNotFound()
	}
	return copyUser(user), nil
}

func (s *memStore) Register(ctx context.Context, user *accounts.User) (*accounts.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	s.byEmail[strings.ToLower(user.Email)] = copyUser(user)
	return copyUser(user), nil
}

func (s *memStore) setBlocked(email string, blocked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.byEmail[strings.ToLower(email)]; ok {
		user.Blocked = blocked
	}
}

func copyUser(u *accounts.User) *accounts.User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}

func newTestConfig() *accounts.Options {
	cfg, err := accounts.NewConfig(accounts.Options{
		SigningKey:    "test-signing-key",
		AdminEmail:    "root@example.com",
		AdminPassword: "root-password-123",
	})
	if err != nil {
		panic(err)
	}
	return cfg
}
