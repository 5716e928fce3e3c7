package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lecturelab/study-api/internal/store"
	"github.com/lecturelab/study-api/internal/task"
)

// TaskStore implements the task.TaskStore interface using a PostgreSQL
// database as the storage backend. Persisted rows let the runner recover
// unfinished work after a restart.
type TaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewTaskStore creates a new PostgreSQL implementation of the task.TaskStore
// interface. If logger is nil, the default logger is used.
func NewTaskStore(db store.DBTX, logger *slog.Logger) *TaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &TaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure TaskStore implements task.TaskStore
var _ task.TaskStore = (*TaskStore)(nil)

// WithTx implements task.TaskStore.WithTx.
func (s *TaskStore) WithTx(tx *sql.Tx) task.TaskStore {
	return &TaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// SaveTask implements task.TaskStore.SaveTask.
func (s *TaskStore) SaveTask(ctx context.Context, t task.Task) error {
	query := `
		INSERT INTO tasks (id, type, payload, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, query,
		t.ID(), t.Type(), t.Payload(), t.Status(), now, now)
	if err != nil {
		return MapError(err)
	}

	return nil
}

// UpdateTaskStatus implements task.TaskStore.UpdateTaskStatus.
// A missing task is treated as a no-op: the runner updates statuses of tasks
// that may have been cleaned up concurrently.
func (s *TaskStore) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status task.TaskStatus,
	errorMsg string,
) error {
	query := `
		UPDATE tasks
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4`

	result, err := s.db.ExecContext(ctx, query, status, errorMsg, time.Now().UTC(), taskID)
	if err != nil {
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "task"); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("no task found to update status",
				slog.String("task_id", taskID.String()),
				slog.String("status", string(status)))
			return nil
		}
		return err
	}

	return nil
}

// GetPendingTasks implements task.TaskStore.GetPendingTasks.
func (s *TaskStore) GetPendingTasks(ctx context.Context) ([]task.Task, error) {
	return s.getTasksByStatus(ctx, task.TaskStatusPending, 0)
}

// GetProcessingTasks implements task.TaskStore.GetProcessingTasks.
func (s *TaskStore) GetProcessingTasks(
	ctx context.Context,
	olderThan time.Duration,
) ([]task.Task, error) {
	return s.getTasksByStatus(ctx, task.TaskStatusProcessing, olderThan)
}

func (s *TaskStore) getTasksByStatus(
	ctx context.Context,
	status task.TaskStatus,
	olderThan time.Duration,
) ([]task.Task, error) {
	query := `
		SELECT id, type, payload, status, error_message, created_at, updated_at
		FROM tasks
		WHERE status = $1`
	args := []any{status}

	if olderThan > 0 {
		query += ` AND updated_at < $2`
		args = append(args, time.Now().UTC().Add(-olderThan))
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []task.Task
	for rows.Next() {
		var record taskRecord
		var errorMessage sql.NullString
		err := rows.Scan(&record.id, &record.taskType, &record.payload,
			&record.status, &errorMessage, &record.createdAt, &record.updatedAt)
		if err != nil {
			return nil, MapError(err)
		}
		record.errorMessage = errorMessage.String
		tasks = append(tasks, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return tasks, nil
}

// taskRecord is a task loaded back from the database. It carries the
// persisted identity and payload but no execution logic; the runner rebuilds
// an executable task from it via a registered reconstructor.
type taskRecord struct {
	id           uuid.UUID
	taskType     string
	payload      []byte
	status       task.TaskStatus
	errorMessage string
	createdAt    time.Time
	updatedAt    time.Time
}

// Ensure taskRecord implements task.Task
var _ task.Task = (*taskRecord)(nil)

func (t *taskRecord) ID() uuid.UUID           { return t.id }
func (t *taskRecord) Type() string            { return t.taskType }
func (t *taskRecord) Payload() []byte         { return t.payload }
func (t *taskRecord) Status() task.TaskStatus { return t.status }

// Execute fails: recovered records must be rebuilt by a reconstructor first.
func (t *taskRecord) Execute(_ context.Context) error {
	return errors.New("recovered task record has no execution logic; reconstruct it first")
}
