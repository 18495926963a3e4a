// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

package auth

import (
	"context"
	"sync"
	"time"

	"github.com/Nikhilrai1/lms/internal/platform/apperr"
	"github.com/Nikhilrai1/lms/internal/users/identity"
)

// # In-Memory Implementations
//
// Used by handler-level tests and local runs without infrastructure. They
// honour the same error contracts as the Postgres and Redis stores.

// MemoryUserRepository is a mutex-guarded [UserRepository].
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*identity.User
}

// NewMemoryUserRepository returns an empty repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]*identity.User)}
}

func cloneUser(user *identity.User, withPassword bool) *identity.User {
	clone := user.Public()
	if withPassword {
		clone.PasswordHash = user.PasswordHash
	}
	return clone
}

func (repository *MemoryUserRepository) find(match func(*identity.User) bool, withPassword bool) (*identity.User, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	for _, user := range repository.users {
		if match(user) {
			return cloneUser(user, withPassword), nil
		}
	}
	return nil, apperr.NotFound(userResource)
}

func byID(id string) func(*identity.User) bool {
	return func(user *identity.User) bool { return user.ID == id }
}

func byEmail(email string) func(*identity.User) bool {
	email = NormalizeEmail(email)
	return func(user *identity.User) bool { return NormalizeEmail(user.Email) == email }
}

func (repository *MemoryUserRepository) FindByID(_ context.Context, id string) (*identity.User, error) {
	return repository.find(byID(id), false)
}

func (repository *MemoryUserRepository) FindByIDWithPassword(_ context.Context, id string) (*identity.User, error) {
	return repository.find(byID(id), true)
}

func (repository *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*identity.User, error) {
	return repository.find(byEmail(email), false)
}

func (repository *MemoryUserRepository) FindByEmailWithPassword(_ context.Context, email string) (*identity.User, error) {
	return repository.find(byEmail(email), true)
}

func (repository *MemoryUserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, err := repository.find(byEmail(email), false)
	return err == nil, nil
}

func (repository *MemoryUserRepository) Create(_ context.Context, user *identity.User) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	match := byEmail(user.Email)
	for _, existing := range repository.users {
		if match(existing) {
			return apperr.Conflict(MsgEmailExists).WithCode(CodeEmailExists)
		}
	}

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	repository.users[user.ID] = cloneUser(user, true)
	return nil
}

func (repository *MemoryUserRepository) Update(_ context.Context, user *identity.User) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	current, ok := repository.users[user.ID]
	if !ok {
		return apperr.NotFound(userResource)
	}

	match := byEmail(user.Email)
	for id, existing := range repository.users {
		if id != user.ID && match(existing) {
			return apperr.Conflict(MsgEmailExists).WithCode(CodeEmailExists)
		}
	}

	user.UpdatedAt = time.Now()
	updated := cloneUser(user, false)
	updated.PasswordHash = current.PasswordHash
	updated.CreatedAt = current.CreatedAt
	repository.users[user.ID] = updated
	return nil
}

func (repository *MemoryUserRepository) UpdatePassword(_ context.Context, userID, newHash string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	current, ok := repository.users[userID]
	if !ok {
		return apperr.NotFound(userResource)
	}
	current.PasswordHash = newHash
	current.UpdatedAt = time.Now()
	return nil
}

// MemorySessionStore is a mutex-guarded [SessionStore] with lazy expiry.
type MemorySessionStore struct {
	mu       sync.Mutex
	now      func() time.Time
	sessions map[string]memorySession
}

type memorySession struct {
	user      *identity.User
	expiresAt time.Time
}

// NewMemorySessionStore returns an empty store. now may be nil.
func NewMemorySessionStore(now func() time.Time) *MemorySessionStore {
	if now == nil {
		now = time.Now
	}
	return &MemorySessionStore{now: now, sessions: make(map[string]memorySession)}
}

func (store *MemorySessionStore) live(userID string) (memorySession, bool) {
	session, ok := store.sessions[userID]
	if ok && !store.now().Before(session.expiresAt) {
		delete(store.sessions, userID)
		return memorySession{}, false
	}
	return session, ok
}

func (store *MemorySessionStore) Save(_ context.Context, user *identity.User, ttl time.Duration) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.sessions[user.ID] = memorySession{user: user.Public(), expiresAt: store.now().Add(ttl)}
	return nil
}

func (store *MemorySessionStore) Replace(_ context.Context, user *identity.User) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	session, ok := store.live(user.ID)
	if !ok {
		return identity.ErrSessionNotFound
	}
	session.user = user.Public()
	store.sessions[user.ID] = session
	return nil
}

func (store *MemorySessionStore) Get(_ context.Context, userID string) (*identity.User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	session, ok := store.live(userID)
	if !ok {
		return nil, identity.ErrSessionNotFound
	}
	return session.user.Public(), nil
}

func (store *MemorySessionStore) Delete(_ context.Context, userID string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.sessions, userID)
	return nil
}
