package inmemory_test

import (
	"context"
	"testing"

	"taskManager/internal/models/user"
	"taskManager/internal/repository"
	"taskManager/internal/repository/user/inmemory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, s *inmemory.UserStorage) {
	t.Helper()
	ctx := context.Background()
	for _, u := range []*user.ExternalUser{
		{ID: "u1", Name: "Anna Nowak", IsActive: true},
		{ID: "u2", Name: "Bartek Kowalski", IsActive: false},
		{ID: "u3", Name: "Joanna Wiśniewska", IsActive: true},
	} {
		require.NoError(t, s.Create(ctx, u))
	}
}

func TestUserStorage_Create(t *testing.T) {
	s := inmemory.NewUserStorage()
	seed(t, s)

	got, err := s.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Anna Nowak", got.Name)
	assert.False(t, got.CreatedAt.IsZero())

	err = s.Create(context.Background(), &user.ExternalUser{ID: "u1", Name: "Dup"})
	assert.ErrorIs(t, err, repository.ErrAlreadyExists)
}

func TestUserStorage_List(t *testing.T) {
	s := inmemory.NewUserStorage()
	seed(t, s)
	ctx := context.Background()

	tests := []struct {
		name       string
		search     string
		activeOnly bool
		want       []string
	}{
		{name: "all", want: []string{"u1", "u2", "u3"}},
		{name: "active only", activeOnly: true, want: []string{"u1", "u3"}},
		{name: "search case-insensitive", search: "ANNA", want: []string{"u1", "u3"}},
		{name: "search and active", search: "kowal", activeOnly: true, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, err := s.List(ctx, tt.search, tt.activeOnly)
			require.NoError(t, err)
			ids := []string{}
			for _, u := range users {
				ids = append(ids, u.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestUserStorage_UpdateDelete(t *testing.T) {
	s := inmemory.NewUserStorage()
	seed(t, s)
	ctx := context.Background()

	u, err := s.GetByID(ctx, "u2")
	require.NoError(t, err)
	u.IsActive = true
	require.NoError(t, s.Update(ctx, u))
	assert.NotNil(t, u.UpdatedAt)

	got, err := s.GetByID(ctx, "u2")
	require.NoError(t, err)
	assert.True(t, got.IsActive)

	assert.ErrorIs(t, s.Update(ctx, &user.ExternalUser{ID: "missing"}), repository.ErrNotFound)

	require.NoError(t, s.Delete(ctx, "u2"))
	_, err = s.GetByID(ctx, "u2")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "u2"), repository.ErrNotFound)
}
