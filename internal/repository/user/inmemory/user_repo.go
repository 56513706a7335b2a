package inmemory

import (
	"context"
	"strings"
	"sync"
	"time"

	"taskManager/internal/models/user"
	repo "taskManager/internal/repository"
)

type UserStorage struct {
	storage map[string]*user.ExternalUser
	mtx     *sync.RWMutex
	ids     []string
}

func NewUserStorage() *UserStorage {
	return &UserStorage{
		storage: make(map[string]*user.ExternalUser),
		mtx:     &sync.RWMutex{},
	}
}

func clone(u *user.ExternalUser) *user.ExternalUser {
	c := *u
	if u.UpdatedAt != nil {
		t := *u.UpdatedAt
		c.UpdatedAt = &t
	}
	return &c
}

func (s *UserStorage) Create(ctx context.Context, u *user.ExternalUser) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[u.ID]; ok {
		return repo.ErrAlreadyExists
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	s.storage[u.ID] = clone(u)
	s.ids = append(s.ids, u.ID)
	return nil
}

func (s *UserStorage) Update(ctx context.Context, u *user.ExternalUser) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[u.ID]; !ok {
		return repo.ErrNotFound
	}
	now := time.Now()
	u.UpdatedAt = &now
	s.storage[u.ID] = clone(u)
	return nil
}

func (s *UserStorage) GetByID(ctx context.Context, id string) (*user.ExternalUser, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	u, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return clone(u), nil
}

// List returns users in creation order. A non-empty search narrows by a
// case-insensitive substring of the name; activeOnly drops inactive users.
func (s *UserStorage) List(ctx context.Context, search string, activeOnly bool) ([]*user.ExternalUser, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	search = strings.ToLower(strings.TrimSpace(search))
	res := []*user.ExternalUser{}
	for _, id := range s.ids {
		u := s.storage[id]
		if activeOnly && !u.IsActive {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(u.Name), search) {
			continue
		}
		res = append(res, clone(u))
	}
	return res, nil
}

func (s *UserStorage) Delete(ctx context.Context, id string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.storage, id)
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
	return nil
}
