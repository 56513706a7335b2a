package notify

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"taskManager/internal/logger"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("notification not found")

// Store persists notifications and dedup markers in a local SQLite file.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewStore opens (or creates) the database at path and applies pending
// migrations. Use ":memory:" for a throwaway store.
func NewStore(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// a single connection serializes writers and keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enabling WAL mode: %w", err)
		}
	}

	s := &Store{db: db, now: time.Now}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) runMigrations() error {
	current := 0

	var tables int
	err := s.db.Get(&tables,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'")
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}
	if tables > 0 {
		if err := s.db.Get(&current, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}
	return nil
}

func (s *Store) prepare(n *Notification) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}
	n.CreatedAt = n.CreatedAt.UTC()
}

const insertNotification = `
	INSERT INTO notifications (
		id, type, title, message, task_id, task_title,
		from_user_id, from_user_name, read, created_at
	) VALUES (
		:id, :type, :title, :message, :task_id, :task_title,
		:from_user_id, :from_user_name, :read, :created_at
	)`

// Add inserts a notification without any dedup check.
func (s *Store) Add(ctx context.Context, n Notification) (Notification, error) {
	s.prepare(&n)
	if _, err := s.db.NamedExecContext(ctx, insertNotification, n); err != nil {
		return Notification{}, fmt.Errorf("creating notification: %w", err)
	}
	return n, nil
}

// EmitOnce writes the marker for key, owned by viewerID, and inserts n in one
// transaction. When the marker already exists nothing is written and the bool is false.
func (s *Store) EmitOnce(ctx context.Context, viewerID string, key MarkerKey, n Notification) (Notification, bool, error) {
	s.prepare(&n)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return n, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO dedup_markers (key, kind, task_id, subject_id, viewer_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		key.String(), string(key.Kind), key.TaskID, key.Subject, viewerID, n.CreatedAt,
	)
	if err != nil {
		return n, false, fmt.Errorf("writing marker %s: %w", key, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return n, false, fmt.Errorf("writing marker %s: %w", key, err)
	}
	if affected == 0 {
		return n, false, nil
	}

	if _, err := tx.NamedExecContext(ctx, insertNotification, n); err != nil {
		return n, false, fmt.Errorf("creating notification: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return n, false, fmt.Errorf("committing marker %s: %w", key, err)
	}
	return n, true, nil
}

func (s *Store) HasMarker(ctx context.Context, key MarkerKey) (bool, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM dedup_markers WHERE key = ?", key.String()); err != nil {
		return false, fmt.Errorf("reading marker %s: %w", key, err)
	}
	return n > 0, nil
}

// DeleteMarker re-arms the event for key.
func (s *Store) DeleteMarker(ctx context.Context, key MarkerKey) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM dedup_markers WHERE key = ?", key.String()); err != nil {
		return fmt.Errorf("deleting marker %s: %w", key, err)
	}
	return nil
}

// PruneMarkers drops the markers of viewerID whose task is not in keep and
// returns how many were removed. Markers of other viewers are left alone; an
// empty keep removes every marker of viewerID.
func (s *Store) PruneMarkers(ctx context.Context, viewerID string, keep []string) (int64, error) {
	if viewerID == "" {
		return 0, nil
	}

	var (
		res sql.Result
		err error
	)
	if len(keep) == 0 {
		res, err = s.db.ExecContext(ctx, "DELETE FROM dedup_markers WHERE viewer_id = ?", viewerID)
	} else {
		query, args, inErr := sqlx.In("DELETE FROM dedup_markers WHERE viewer_id = ? AND task_id NOT IN (?)", viewerID, keep)
		if inErr != nil {
			return 0, fmt.Errorf("building prune query: %w", inErr)
		}
		res, err = s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	}
	if err != nil {
		return 0, fmt.Errorf("pruning markers: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pruning markers: %w", err)
	}
	if n > 0 {
		logger.Debug("Notify: pruned dedup markers", zap.String("viewer", viewerID), zap.Int64("count", n))
	}
	return n, nil
}

func (s *Store) MarkerCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM dedup_markers"); err != nil {
		return 0, fmt.Errorf("counting markers: %w", err)
	}
	return n, nil
}

// List returns notifications newest first.
func (s *Store) List(ctx context.Context, unreadOnly bool) ([]Notification, error) {
	query := "SELECT * FROM notifications"
	if unreadOnly {
		query += " WHERE read = 0"
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	out := make([]Notification, 0)
	if err := s.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	return out, nil
}

func (s *Store) UnreadCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM notifications WHERE read = 0"); err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return n, nil
}

func (s *Store) MarkRead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE notifications SET read = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("marking notification %s as read: %w", id, err)
	}
	return expectOne(res, id)
}

func (s *Store) MarkAllRead(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "UPDATE notifications SET read = 1 WHERE read = 0"); err != nil {
		return fmt.Errorf("marking all notifications as read: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM notifications WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting notification %s: %w", id, err)
	}
	return expectOne(res, id)
}

// Clear removes every notification. Markers are kept so cleared events stay quiet.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM notifications"); err != nil {
		return fmt.Errorf("clearing notifications: %w", err)
	}
	return nil
}

func expectOne(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("notification %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	return nil
}
