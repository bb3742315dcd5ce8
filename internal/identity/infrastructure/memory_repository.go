package infrastructure

import (
	"context"
	"sort"
	"sync"

	"github.com/luxtrip/go-busline/internal/identity/domain"
)

// InMemoryUserRepository backs the identity slice in tests and demos.
type InMemoryUserRepository struct {
	mu     sync.RWMutex
	data   map[int]domain.User
	nextID int
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		data:   make(map[int]domain.User),
		nextID: 1,
	}
}

func (r *InMemoryUserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.data {
		if existing.Email == user.Email {
			return domain.User{}, domain.ErrEmailTaken
		}
	}

	user.ID = r.nextID
	r.nextID++
	r.data[user.ID] = user

	return user, nil
}

func (r *InMemoryUserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.data {
		if user.Email == email {
			return user, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (r *InMemoryUserRepository) FindByID(ctx context.Context, id int) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.data[id]
	if !exists {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *InMemoryUserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]domain.User, 0, len(r.data))
	for _, user := range r.data {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}
