package identity

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]Account // keyed by id
}

// NewMemoryRepository builds an in-memory account store for dev and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{accounts: make(map[string]Account)}
}

func (r *memoryRepository) Create(_ context.Context, account Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == account.Email {
			return ErrAlreadyRegistered
		}
	}
	r.accounts[account.ID] = account
	return nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return Account{}, ErrNotFound
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	return a, nil
}

func (r *memoryRepository) UpdateTokenVersion(_ context.Context, id string, version int) error {
	return r.update(id, func(a *Account) { a.TokenVersion = version })
}

func (r *memoryRepository) UpdateMetadata(_ context.Context, id, username, role string) error {
	return r.update(id, func(a *Account) {
		a.Username = username
		a.Role = role
	})
}

func (r *memoryRepository) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	return r.update(id, func(a *Account) { a.LastLogin = at })
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[id]; !ok {
		return ErrNotFound
	}
	delete(r.accounts, id)
	return nil
}

func (r *memoryRepository) update(id string, mutate func(*Account)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return ErrNotFound
	}
	mutate(&a)
	r.accounts[id] = a
	return nil
}
