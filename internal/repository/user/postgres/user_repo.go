package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/user"
	repo "taskManager/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const slowQuery = 100 * time.Millisecond

type UserStorage struct {
	pool *pgxpool.Pool
}

// NewUserStorage reuses a pool opened by the task storage.
func NewUserStorage(pool *pgxpool.Pool) *UserStorage {
	return &UserStorage{pool: pool}
}

func warnIfSlow(op string, start time.Time) {
	if d := time.Since(start); d > slowQuery {
		logger.Warn("Repository: slow query", zap.String("op", op), zap.Duration("ms", d))
	}
}

func scanUser(row pgx.Row) (*user.ExternalUser, error) {
	u := &user.ExternalUser{}
	err := row.Scan(&u.ID, &u.Name, &u.Avatar, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (s *UserStorage) Create(ctx context.Context, u *user.ExternalUser) error {
	start := time.Now()
	defer warnIfSlow("create_user", start)

	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO external_users (id, name, avatar, is_active, created_at) VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Name, u.Avatar, u.IsActive, u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repo.ErrAlreadyExists
		}
		logger.Error("Repository: inserting user", err)
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (s *UserStorage) Update(ctx context.Context, u *user.ExternalUser) error {
	start := time.Now()
	defer warnIfSlow("update_user", start)

	err := s.pool.QueryRow(ctx,
		`UPDATE external_users SET name = $1, avatar = $2, is_active = $3, updated_at = NOW()
		 WHERE id = $4 RETURNING updated_at`,
		u.Name, u.Avatar, u.IsActive, u.ID).Scan(&u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrNotFound
		}
		logger.Error("Repository: updating user", err)
		return fmt.Errorf("updating user: %w", err)
	}
	return nil
}

func (s *UserStorage) GetByID(ctx context.Context, id string) (*user.ExternalUser, error) {
	start := time.Now()
	defer warnIfSlow("get_user", start)

	u, err := scanUser(s.pool.QueryRow(ctx,
		`SELECT id, name, avatar, is_active, created_at, updated_at FROM external_users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: getting user", err)
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

func (s *UserStorage) List(ctx context.Context, search string, activeOnly bool) ([]*user.ExternalUser, error) {
	start := time.Now()
	defer warnIfSlow("list_users", start)

	rows, err := s.pool.Query(ctx,
		`SELECT id, name, avatar, is_active, created_at, updated_at FROM external_users
		 WHERE ($1 = '' OR name ILIKE '%' || $1 || '%') AND (NOT $2 OR is_active)
		 ORDER BY created_at, id`,
		search, activeOnly)
	if err != nil {
		logger.Error("Repository: listing users", err)
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	users := []*user.ExternalUser{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			logger.Warn("Repository: scanning user", zap.Error(err))
			continue
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return users, nil
}

func (s *UserStorage) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM external_users WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: deleting user", err)
		return fmt.Errorf("deleting user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}
