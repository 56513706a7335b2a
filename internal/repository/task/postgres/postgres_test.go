package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"taskManager/internal/config"
	"taskManager/internal/migrations"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/repository"
	"taskManager/internal/repository/task/postgres"
	userpg "taskManager/internal/repository/user/postgres"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresTestSuite runs the pgx repositories against a throwaway PostgreSQL container.
type PostgresTestSuite struct {
	suite.Suite
	container testcontainers.Container
	storage   *postgres.Storage
	users     *userpg.UserStorage
	ctx       context.Context
}

func (s *PostgresTestSuite) SetupSuite() {
	s.ctx = context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(s.T(), err)
	s.container = container

	host, err := container.Host(s.ctx)
	require.NoError(s.T(), err)
	port, err := container.MappedPort(s.ctx, "5432")
	require.NoError(s.T(), err)

	url := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	require.NoError(s.T(), migrations.Up(url))

	s.storage, err = postgres.New(s.ctx, config.DatabaseConfig{URL: url, MaxConnections: 4})
	require.NoError(s.T(), err)
	s.users = userpg.NewUserStorage(s.storage.Pool())
}

func (s *PostgresTestSuite) TearDownSuite() {
	if s.storage != nil {
		s.storage.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresTestSuite) SetupTest() {
	_, err := s.storage.Pool().Exec(s.ctx, "TRUNCATE tasks, external_users")
	require.NoError(s.T(), err)
}

func TestPostgresTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(PostgresTestSuite))
}

func newTask(owner string) *task.Task {
	due := time.Date(2030, 1, 15, 0, 0, 0, 0, time.UTC)
	return &task.Task{
		UUID:       uuid.New(),
		Title:      "Test Task",
		Status:     task.StatusTodo,
		Priority:   task.PriorityHigh,
		DueDate:    &due,
		Tags:       []string{"work", "work"},
		OwnerID:    owner,
		AssignedTo: task.Assignees{owner},
	}
}

func (s *PostgresTestSuite) TestStorage_HealthCheck() {
	assert.NoError(s.T(), s.storage.HealthCheck(s.ctx))
}

func (s *PostgresTestSuite) TestStorage_CreateAndGet() {
	t := newTask("u1")
	require.NoError(s.T(), s.storage.Create(s.ctx, t))
	assert.Equal(s.T(), 1, t.Version)

	got, err := s.storage.GetByID(s.ctx, t.UUID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Test Task", got.Title)
	assert.Equal(s.T(), task.PriorityHigh, got.Priority)
	assert.Equal(s.T(), []string{"work", "work"}, got.Tags)
	assert.Equal(s.T(), task.Assignees{"u1"}, got.AssignedTo)
	assert.Empty(s.T(), got.SharedWith)
	require.NotNil(s.T(), got.DueDate)
	assert.Equal(s.T(), "2030-01-15", got.DueDate.Format(time.DateOnly))

	err = s.storage.Create(s.ctx, t)
	assert.ErrorIs(s.T(), err, repository.ErrAlreadyExists)

	_, err = s.storage.GetByID(s.ctx, uuid.New())
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestStorage_Update() {
	t := newTask("u1")
	require.NoError(s.T(), s.storage.Create(s.ctx, t))

	current, err := s.storage.GetByID(s.ctx, t.UUID)
	require.NoError(s.T(), err)
	current.Title = "Updated Title"
	current.Status = task.StatusInProgress
	current.SharedWith = []string{"u9"}
	current.DueDate = nil
	require.NoError(s.T(), s.storage.Update(s.ctx, current))
	assert.Equal(s.T(), 2, current.Version)
	assert.NotNil(s.T(), current.UpdatedAt)

	got, err := s.storage.GetByID(s.ctx, t.UUID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Updated Title", got.Title)
	assert.Equal(s.T(), task.StatusInProgress, got.Status)
	assert.Equal(s.T(), []string{"u9"}, got.SharedWith)
	assert.Nil(s.T(), got.DueDate)

	stale := got.Clone()
	stale.Version = 1
	assert.ErrorIs(s.T(), s.storage.Update(s.ctx, stale), repository.ErrVersionConflict)

	missing := newTask("u1")
	assert.ErrorIs(s.T(), s.storage.Update(s.ctx, missing), repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestStorage_ListVisibleTo() {
	owned := newTask("u1")
	owned.CreatedAt = time.Now().Add(-3 * time.Minute)
	assigned := newTask("u2")
	assigned.AssignedTo = task.Assignees{"ann@example.com"}
	assigned.CreatedAt = time.Now().Add(-2 * time.Minute)
	shared := newTask("u3")
	shared.SharedWith = []string{"u1"}
	shared.CreatedAt = time.Now().Add(-1 * time.Minute)
	other := newTask("u4")

	for _, t := range []*task.Task{owned, assigned, shared, other} {
		require.NoError(s.T(), s.storage.Create(s.ctx, t))
	}

	got, err := s.storage.ListVisibleTo(s.ctx, "u1", "ann@example.com")
	require.NoError(s.T(), err)
	require.Len(s.T(), got, 3)
	assert.Equal(s.T(), owned.UUID, got[0].UUID)
	assert.Equal(s.T(), assigned.UUID, got[1].UUID)
	assert.Equal(s.T(), shared.UUID, got[2].UUID)

	got, err = s.storage.ListVisibleTo(s.ctx, "", "")
	require.NoError(s.T(), err)
	assert.Empty(s.T(), got)
}

func (s *PostgresTestSuite) TestStorage_Delete() {
	t := newTask("u1")
	require.NoError(s.T(), s.storage.Create(s.ctx, t))

	require.NoError(s.T(), s.storage.Delete(s.ctx, t.UUID))
	assert.ErrorIs(s.T(), s.storage.Delete(s.ctx, t.UUID), repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestUserStorage_CRUD() {
	require.NoError(s.T(), s.users.Create(s.ctx, &user.ExternalUser{ID: "u1", Name: "Anna Nowak", IsActive: true}))
	require.NoError(s.T(), s.users.Create(s.ctx, &user.ExternalUser{ID: "u2", Name: "Jan Kowalski"}))

	err := s.users.Create(s.ctx, &user.ExternalUser{ID: "u1", Name: "Dup"})
	assert.ErrorIs(s.T(), err, repository.ErrAlreadyExists)

	list, err := s.users.List(s.ctx, "anna", false)
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 1)
	assert.Equal(s.T(), "u1", list[0].ID)

	active, err := s.users.List(s.ctx, "", true)
	require.NoError(s.T(), err)
	require.Len(s.T(), active, 1)

	u, err := s.users.GetByID(s.ctx, "u2")
	require.NoError(s.T(), err)
	u.IsActive = true
	require.NoError(s.T(), s.users.Update(s.ctx, u))
	assert.NotNil(s.T(), u.UpdatedAt)

	require.NoError(s.T(), s.users.Delete(s.ctx, "u2"))
	_, err = s.users.GetByID(s.ctx, "u2")
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}
