package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskManager/internal/config"
	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	repo "taskManager/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const slowQuery = 100 * time.Millisecond

const taskColumns = `uuid, title, description, status, priority, due_date, created_at, updated_at,
	completed_at, tags, images, owner_id, assigned_to, shared_with, note, note_author_id, version`

type Storage struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg config.DatabaseConfig) (*Storage, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		logger.Error("Repository: parsing database config", err)
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	if cfg.MaxConnections > 0 {
		poolConfig.MaxConns = cfg.MaxConnections
	}
	if cfg.MinConnections > 0 {
		poolConfig.MinConns = cfg.MinConnections
	}
	if cfg.IdleTimeout > 0 {
		poolConfig.MaxConnIdleTime = cfg.IdleTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("Repository: creating pool", err)
		return nil, fmt.Errorf("creating pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("Repository: ping failed", err)
		return nil, fmt.Errorf("ping: %w", err)
	}

	logger.Info("Repository: connected to PostgreSQL")
	return &Storage{pool: pool}, nil
}

// Pool exposes the connection pool so other repositories can share it.
func (s *Storage) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: closed all PostgreSQL connections")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: ping failed", err)
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

func warnIfSlow(op string, start time.Time) {
	if d := time.Since(start); d > slowQuery {
		logger.Warn("Repository: slow query", zap.String("op", op), zap.Duration("ms", d))
	}
}

func scanTask(row pgx.Row) (*task.Task, error) {
	t := &task.Task{}
	var assigned []string
	err := row.Scan(
		&t.UUID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.DueDate,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.CompletedAt,
		&t.Tags,
		&t.Images,
		&t.OwnerID,
		&assigned,
		&t.SharedWith,
		&t.Note,
		&t.NoteAuthorID,
		&t.Version,
	)
	if err != nil {
		return nil, err
	}
	t.AssignedTo = assigned
	return t, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()
	defer warnIfSlow("create_task", start)

	if taskToCreate.CreatedAt.IsZero() {
		taskToCreate.CreatedAt = time.Now()
	}

	query := `INSERT INTO tasks
				(uuid, title, description, status, priority, due_date, created_at, completed_at,
				 tags, images, owner_id, assigned_to, shared_with, note, note_author_id, version)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, 1)
				RETURNING version`

	err := s.pool.QueryRow(ctx, query,
		taskToCreate.UUID,
		taskToCreate.Title,
		taskToCreate.Description,
		taskToCreate.Status,
		taskToCreate.Priority,
		taskToCreate.DueDate,
		taskToCreate.CreatedAt,
		taskToCreate.CompletedAt,
		nonNil(taskToCreate.Tags),
		nonNil(taskToCreate.Images),
		taskToCreate.OwnerID,
		nonNil(taskToCreate.AssignedTo),
		nonNil(taskToCreate.SharedWith),
		taskToCreate.Note,
		taskToCreate.NoteAuthorID,
	).Scan(&taskToCreate.Version)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repo.ErrAlreadyExists
		}
		logger.Error("Repository: inserting task", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

// Update writes every mutable column when the stored version equals
// taskToUpdate.Version. A stale version yields ErrVersionConflict, a missing
// row ErrNotFound.
func (s *Storage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	start := time.Now()
	defer warnIfSlow("update_task", start)

	query := `UPDATE tasks
			SET title = $1,
				description = $2,
				status = $3,
				priority = $4,
				due_date = $5,
				completed_at = $6,
				tags = $7,
				images = $8,
				assigned_to = $9,
				shared_with = $10,
				note = $11,
				note_author_id = $12,
				version = version + 1,
				updated_at = NOW()
			WHERE uuid = $13 AND version = $14
			RETURNING updated_at, version`

	err := s.pool.QueryRow(ctx, query,
		taskToUpdate.Title,
		taskToUpdate.Description,
		taskToUpdate.Status,
		taskToUpdate.Priority,
		taskToUpdate.DueDate,
		taskToUpdate.CompletedAt,
		nonNil(taskToUpdate.Tags),
		nonNil(taskToUpdate.Images),
		nonNil(taskToUpdate.AssignedTo),
		nonNil(taskToUpdate.SharedWith),
		taskToUpdate.Note,
		taskToUpdate.NoteAuthorID,
		taskToUpdate.UUID,
		taskToUpdate.Version,
	).Scan(&taskToUpdate.UpdatedAt, &taskToUpdate.Version)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := s.GetByID(ctx, taskToUpdate.UUID); errors.Is(getErr, repo.ErrNotFound) {
				return repo.ErrNotFound
			}
			logger.Warn("Repository: version conflict on update",
				zap.String("task_id", taskToUpdate.UUID.String()),
				zap.Int("expected_version", taskToUpdate.Version))
			return repo.ErrVersionConflict
		}
		logger.Error("Repository: updating task", err)
		return fmt.Errorf("updating task: %w", err)
	}
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	start := time.Now()
	defer warnIfSlow("get_task", start)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE uuid = $1`

	t, err := scanTask(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: getting task", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("getting task: %w", err)
	}
	return t, nil
}

// ListVisibleTo returns tasks owned by, assigned to or shared with the user,
// matching either the id or the email, in creation order.
func (s *Storage) ListVisibleTo(ctx context.Context, userID, email string) ([]*task.Task, error) {
	start := time.Now()
	defer warnIfSlow("list_tasks", start)

	query := `SELECT ` + taskColumns + ` FROM tasks
				WHERE ($1 <> '' AND (owner_id = $1 OR $1 = ANY(assigned_to) OR $1 = ANY(shared_with)))
				   OR ($2 <> '' AND ($2 = ANY(assigned_to) OR $2 = ANY(shared_with)))
				ORDER BY created_at, uuid`

	rows, err := s.pool.Query(ctx, query, userID, email)
	if err != nil {
		logger.Error("Repository: listing tasks", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Warn("Repository: scanning task", zap.Error(err))
			continue
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: iterating rows", err)
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return tasks, nil
}

func (s *Storage) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	defer warnIfSlow("delete_task", start)

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE uuid = $1`, id)
	if err != nil {
		logger.Error("Repository: deleting task", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("deleting task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}
