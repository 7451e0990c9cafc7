package users

import (
	"context"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: make(map[string]User)}
}

// Upsert stores profile fields. Calendar tokens of an existing user survive a
// fresh login.
func (r *MemoryRepo) Upsert(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[user.ID]
	now := time.Now().UTC()
	if !ok {
		user.CreatedAt = now
	} else {
		user.CreatedAt = existing.CreatedAt
		user.CalendarAccessToken = existing.CalendarAccessToken
		user.CalendarRefreshToken = existing.CalendarRefreshToken
		user.CalendarTokenExpiry = existing.CalendarTokenExpiry
	}
	user.UpdatedAt = now
	r.users[user.ID] = user
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *MemoryRepo) UpdateCalendarTokens(ctx context.Context, userID string, tokens CalendarTokens) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return ErrNotFound
	}
	if tokens.AccessToken != "" {
		user.CalendarAccessToken = tokens.AccessToken
	}
	if tokens.RefreshToken != "" {
		user.CalendarRefreshToken = tokens.RefreshToken
	}
	if tokens.Expiry != nil {
		expiry := tokens.Expiry.UTC()
		user.CalendarTokenExpiry = &expiry
	}
	user.UpdatedAt = time.Now().UTC()
	r.users[userID] = user
	return nil
}

func (r *MemoryRepo) ClearCalendarTokens(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return ErrNotFound
	}
	user.CalendarAccessToken = ""
	user.CalendarRefreshToken = ""
	user.CalendarTokenExpiry = nil
	user.UpdatedAt = time.Now().UTC()
	r.users[userID] = user
	return nil
}
