package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/me/godp/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns a Store.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

func (s *SQLiteStore) SaveTask(ctx context.Context, task *model.Task) error {
	s.logger.Debug("sql", "op", "upsert", "table", "tasks", "id", task.ID)

	paramsJSON, err := json.Marshal(task.Config.Parameters)
	if err != nil {
		return fmt.Errorf("marshal parameters: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO tasks
		 (id, submitter, name, priority, async, timeout, parameters,
		  status, result_status, result_message, result_data, error_message,
		  created_at, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.SubmitterID, task.Config.Name, string(task.Config.Priority),
		boolInt(task.Config.Async), task.Config.Timeout.String(), string(paramsJSON),
		string(task.Status), string(task.Result.Status), task.Result.Message,
		task.Result.Data, task.ErrorMessage,
		task.CreatedAt.Format(time.RFC3339Nano),
		formatTimePtr(task.StartedAt), formatTimePtr(task.EndedAt),
	)
	return err
}

func (s *SQLiteStore) GetTask(ctx context.Context, id string) (*model.Task, error) {
	s.logger.Debug("sql", "op", "select", "table", "tasks", "id", id)

	row := s.db.QueryRowContext(ctx,
		`SELECT id, submitter, name, priority, async, timeout, parameters,
		        status, result_status, result_message, result_data, error_message,
		        created_at, started_at, ended_at
		 FROM tasks WHERE id = ?`, id,
	)

	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *SQLiteStore) ListTasks(ctx context.Context, opts model.ListOptions) ([]*model.Task, int, error) {
	s.logger.Debug("sql", "op", "list", "table", "tasks",
		"limit", opts.Limit, "offset", opts.Offset, "status", opts.Status)
	opts.Clamp()

	where := ""
	args := []any{}
	if opts.Status != "" {
		where = " WHERE status = ?"
		args = append(args, opts.Status)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, submitter, name, priority, async, timeout, parameters,
		        status, result_status, result_message, result_data, error_message,
		        created_at, started_at, ended_at
		 FROM tasks`+where+` ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		append(args, opts.Limit, opts.Offset)...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, task)
	}
	return tasks, total, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(sc scanner) (*model.Task, error) {
	var (
		task            model.Task
		priority        string
		async           int
		timeout         string
		paramsJSON      string
		status          string
		resultStatus    string
		createdAt       string
		startedAt       sql.NullString
		endedAt         sql.NullString
	)

	err := sc.Scan(&task.ID, &task.SubmitterID, &task.Config.Name, &priority,
		&async, &timeout, &paramsJSON,
		&status, &resultStatus, &task.Result.Message, &task.Result.Data, &task.ErrorMessage,
		&createdAt, &startedAt, &endedAt)
	if err != nil {
		return nil, err
	}

	task.Config.Priority = model.Priority(priority)
	task.Config.Async = async != 0
	if timeout != "" {
		task.Config.Timeout, _ = time.ParseDuration(timeout)
	}
	if err := json.Unmarshal([]byte(paramsJSON), &task.Config.Parameters); err != nil {
		return nil, fmt.Errorf("unmarshal parameters: %w", err)
	}
	task.Status = model.TaskStatus(status)
	task.Result.Status = model.ResultStatus(resultStatus)
	task.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	task.StartedAt = parseTimePtr(startedAt)
	task.EndedAt = parseTimePtr(endedAt)

	return &task, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}

func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil
	}
	return &t
}
