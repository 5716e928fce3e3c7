package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lecturelab/study-api/internal/events"
)

// CardGenerationEventHandler implements events.EventHandler. It turns card
// generation request events into tasks and submits them to the runner.
type CardGenerationEventHandler struct {
	factory   *CardGenerationTaskFactory
	submitter TaskSubmitter
	logger    *slog.Logger
}

// Ensure CardGenerationEventHandler implements events.EventHandler
var _ events.EventHandler = (*CardGenerationEventHandler)(nil)

// NewCardGenerationEventHandler creates a handler that builds tasks with the
// given factory and submits them to the given submitter.
func NewCardGenerationEventHandler(
	factory *CardGenerationTaskFactory,
	submitter TaskSubmitter,
	logger *slog.Logger,
) *CardGenerationEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CardGenerationEventHandler{
		factory:   factory,
		submitter: submitter,
		logger:    logger.With(slog.String("component", "card_generation_event_handler")),
	}
}

// HandleEvent processes card generation request events. Events of other
// types are ignored.
func (h *CardGenerationEventHandler) HandleEvent(
	ctx context.Context,
	event *events.TaskRequestEvent,
) error {
	if event.Type != events.TypeCardGeneration {
		h.logger.Debug("ignoring event with unsupported type",
			slog.String("event_type", event.Type),
			slog.String("event_id", event.ID.String()))
		return nil
	}

	var payload struct {
		TranscriptID string `json:"transcript_id"`
	}
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	transcriptID, err := uuid.Parse(payload.TranscriptID)
	if err != nil {
		return fmt.Errorf("invalid transcript ID %q: %w", payload.TranscriptID, err)
	}

	task, err := h.factory.CreateTask(transcriptID)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.submitter.Submit(ctx, task); err != nil {
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Info("card generation task submitted",
		slog.String("task_id", task.ID().String()),
		slog.String("transcript_id", transcriptID.String()),
		slog.String("event_id", event.ID.String()))
	return nil
}
