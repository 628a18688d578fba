package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"
	repo "github.com/Ignaci05/Area51Bazar/internal/repository"
)

type userRepository struct {
	mu    sync.RWMutex
	users map[string]model.User
}

func newUserRepository() *userRepository {
	return &userRepository{users: map[string]model.User{}}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; ok {
		return repo.ErrDuplicate
	}
	if r.emailTaken(user.Email, user.ID) {
		return repo.ErrDuplicate
	}
	r.users[user.ID] = *user
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, userID string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, repo.ErrUserNotFound
	}
	return &u, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			found := u
			return &found, nil
		}
	}
	return nil, repo.ErrUserNotFound
}

func (r *userRepository) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.User, 0)
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *userRepository) CountByRole(ctx context.Context, role model.Role) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return repo.ErrUserNotFound
	}
	if r.emailTaken(user.Email, user.ID) {
		return repo.ErrDuplicate
	}
	r.users[user.ID] = *user
	return nil
}

func (r *userRepository) Delete(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[userID]; !ok {
		return repo.ErrUserNotFound
	}
	delete(r.users, userID)
	return nil
}

func (r *userRepository) IncrementTokenVersion(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return repo.ErrUserNotFound
	}
	u.TokenVersion++
	r.users[userID] = u
	return nil
}

func (r *userRepository) emailTaken(email string, exceptID string) bool {
	for id, u := range r.users {
		if id != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}
