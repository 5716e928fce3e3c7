package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Reconstructor rebuilds an executable task from a persisted payload. The
// store hands back inert task records on recovery; a registered reconstructor
// re-attaches the dependencies the task needs to run.
type Reconstructor func(payload []byte) (Task, error)

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// StuckTaskAge defines how long a task can sit in the processing state
	// before it is considered stuck and reset
	StuckTaskAge time.Duration

	// StuckTaskCheckInterval defines how often to check for stuck tasks.
	// If zero, defaults to 5 minutes.
	StuckTaskCheckInterval time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:            2,
		QueueSize:              100,
		StuckTaskAge:           30 * time.Minute,
		StuckTaskCheckInterval: 5 * time.Minute,
	}
}

// TaskRunner manages background task processing with a bounded queue and a
// fixed worker pool. Submitted tasks are persisted before being queued, so
// an unprocessed queue survives a crash and is recovered on the next start.
type TaskRunner struct {
	store          TaskStore
	taskChan       chan Task
	ctx            context.Context
	cancelFunc     context.CancelFunc
	wg             sync.WaitGroup
	config         TaskRunnerConfig
	logger         *slog.Logger
	reconstructors map[string]Reconstructor
}

// Ensure TaskRunner implements TaskSubmitter
var _ TaskSubmitter = (*TaskRunner)(nil)

// NewTaskRunner creates a new TaskRunner.
func NewTaskRunner(store TaskStore, config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultTaskRunnerConfig().WorkerCount
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultTaskRunnerConfig().QueueSize
	}
	if config.StuckTaskAge == 0 {
		config.StuckTaskAge = DefaultTaskRunnerConfig().StuckTaskAge
	}
	if config.StuckTaskCheckInterval == 0 {
		config.StuckTaskCheckInterval = DefaultTaskRunnerConfig().StuckTaskCheckInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &TaskRunner{
		store:          store,
		taskChan:       make(chan Task, config.QueueSize),
		ctx:            ctx,
		cancelFunc:     cancel,
		config:         config,
		logger:         logger.With(slog.String("component", "task_runner")),
		reconstructors: make(map[string]Reconstructor),
	}
}

// RegisterReconstructor registers a rebuild function for the given task type,
// used when recovering persisted tasks after a restart.
func (r *TaskRunner) RegisterReconstructor(taskType string, fn Reconstructor) {
	r.reconstructors[taskType] = fn
}

// Submit persists the task and adds it to the in-memory queue.
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	if err := r.store.SaveTask(ctx, task); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	select {
	case r.taskChan <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full, try again later")
	}
}

// Start recovers unfinished tasks and launches the worker pool.
func (r *TaskRunner) Start() error {
	if err := r.Recover(); err != nil {
		return fmt.Errorf("failed to recover tasks: %w", err)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.wg.Add(1)
	go r.stuckTaskMonitor()

	return nil
}

// Stop gracefully shuts down the task runner, waiting for in-flight tasks.
func (r *TaskRunner) Stop() {
	r.cancelFunc()
	r.wg.Wait()
	close(r.taskChan)
}

// Recover loads unfinished tasks from the store and re-queues them. Tasks
// stuck in the processing state from a previous run are reset to pending.
func (r *TaskRunner) Recover() error {
	ctx := context.Background()

	pendingTasks, err := r.store.GetPendingTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending tasks: %w", err)
	}

	processingTasks, err := r.store.GetProcessingTasks(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing tasks: %w", err)
	}

	r.logger.Info("recovering unfinished tasks",
		slog.Int("pending_count", len(pendingTasks)),
		slog.Int("processing_count", len(processingTasks)))

	for _, t := range pendingTasks {
		r.requeue(t)
	}

	for _, t := range processingTasks {
		if err := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusPending, "reset after recovery"); err != nil {
			r.logger.Error("failed to reset processing task status",
				slog.String("task_id", t.ID().String()),
				slog.String("task_type", t.Type()),
				slog.String("error", err.Error()))
			continue
		}
		r.requeue(t)
	}

	return nil
}

// requeue rebuilds a recovered task if a reconstructor is registered for its
// type, then places it back on the queue.
func (r *TaskRunner) requeue(t Task) {
	if fn, ok := r.reconstructors[t.Type()]; ok {
		rebuilt, err := fn(t.Payload())
		if err != nil {
			r.logger.Error("failed to reconstruct recovered task",
				slog.String("task_id", t.ID().String()),
				slog.String("task_type", t.Type()),
				slog.String("error", err.Error()))
			return
		}
		t = rebuilt
	}

	select {
	case r.taskChan <- t:
	default:
		r.logger.Error("failed to requeue task, queue is full",
			slog.String("task_id", t.ID().String()),
			slog.String("task_type", t.Type()))
	}
}

// worker processes tasks from the queue until the runner is stopped.
func (r *TaskRunner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", slog.Int("worker_id", id))

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", slog.Int("worker_id", id))
			return

		case task, ok := <-r.taskChan:
			if !ok {
				return
			}
			r.processTask(task, id)
		}
	}
}

// processTask handles execution of a single task and its status transitions.
func (r *TaskRunner) processTask(task Task, workerID int) {
	ctx := context.Background()
	logger := r.logger.With(
		slog.String("task_id", task.ID().String()),
		slog.String("task_type", task.Type()),
		slog.Int("worker_id", workerID),
	)

	if err := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusProcessing, ""); err != nil {
		logger.Error("failed to update task status to processing",
			slog.String("error", err.Error()))
		return
	}

	logger.Info("processing task")

	if err := task.Execute(ctx); err != nil {
		logger.Error("task execution failed", slog.String("error", err.Error()))
		if updateErr := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			logger.Error("failed to update task status to failed",
				slog.String("error", updateErr.Error()))
		}
		return
	}

	logger.Info("task completed")
	if err := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusCompleted, ""); err != nil {
		logger.Error("failed to update task status to completed",
			slog.String("error", err.Error()))
	}
}

// stuckTaskMonitor periodically resets tasks that have been in the
// processing state for too long, typically after a worker died mid-task.
func (r *TaskRunner) stuckTaskMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckTaskCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return

		case <-ticker.C:
			ctx := context.Background()

			stuckTasks, err := r.store.GetProcessingTasks(ctx, r.config.StuckTaskAge)
			if err != nil {
				r.logger.Error("failed to check for stuck tasks",
					slog.String("error", err.Error()))
				continue
			}

			if len(stuckTasks) == 0 {
				continue
			}

			r.logger.Info("found stuck tasks", slog.Int("count", len(stuckTasks)))

			for _, t := range stuckTasks {
				if err := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusPending,
					"reset after being stuck in processing state"); err != nil {
					r.logger.Error("failed to reset stuck task status",
						slog.String("task_id", t.ID().String()),
						slog.String("error", err.Error()))
					continue
				}
				r.requeue(t)
			}
		}
	}
}
