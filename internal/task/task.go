// Package task implements the background task machinery: a persisted task
// queue, a worker-pool runner with crash recovery, and the card generation
// task that turns transcripts into flashcards.
package task

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task type constants
const (
	// TaskTypeCardGeneration identifies tasks that generate flashcards from
	// a transcript.
	TaskTypeCardGeneration = "card_generation"
)

// Task represents a unit of background work to be processed.
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Payload returns the task data as a byte slice
	Payload() []byte

	// Status returns the current task status
	Status() TaskStatus

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// TaskSubmitter accepts tasks for background execution.
type TaskSubmitter interface {
	// Submit persists the task and queues it for processing.
	Submit(ctx context.Context, task Task) error
}

// TaskStore defines the interface for persisting task lifecycle state.
// Persisted tasks survive process restarts; the runner re-queues them on
// startup.
type TaskStore interface {
	// SaveTask persists a new task.
	SaveTask(ctx context.Context, task Task) error

	// UpdateTaskStatus updates the status of a task, recording an error
	// message for failed tasks.
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error

	// GetPendingTasks retrieves all tasks with "pending" status.
	GetPendingTasks(ctx context.Context) ([]Task, error)

	// GetProcessingTasks retrieves tasks with "processing" status. If
	// olderThan is non-zero, only tasks that have sat in that state longer
	// than the given duration are returned.
	GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error)

	// WithTx returns a TaskStore bound to the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
