package store

import (
	"context"

	"github.com/me/godp/pkg/model"
)

// Store is the task-history archive. Terminal task snapshots are written here
// as they finish; the live queue never reads from it.
type Store interface {
	// SaveTask inserts or replaces the archived snapshot for a task.
	SaveTask(ctx context.Context, task *model.Task) error
	// GetTask returns an archived task, or nil when the id is unknown.
	GetTask(ctx context.Context, id string) (*model.Task, error)
	// ListTasks returns a page of archived tasks, newest first, plus the
	// total count matching the filter.
	ListTasks(ctx context.Context, opts model.ListOptions) ([]*model.Task, int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
