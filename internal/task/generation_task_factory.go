package task

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// CardGenerationTaskFactory builds card generation tasks with their runtime
// dependencies attached. It also serves as the reconstructor for persisted
// tasks recovered after a restart.
type CardGenerationTaskFactory struct {
	transcriptService TranscriptService
	generator         Generator
	cardService       CardService
	logger            *slog.Logger
}

// NewCardGenerationTaskFactory creates a factory wired with the task's
// dependencies.
func NewCardGenerationTaskFactory(
	transcriptService TranscriptService,
	generator Generator,
	cardService CardService,
	logger *slog.Logger,
) *CardGenerationTaskFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &CardGenerationTaskFactory{
		transcriptService: transcriptService,
		generator:         generator,
		cardService:       cardService,
		logger:            logger,
	}
}

// CreateTask builds a new card generation task for the given transcript.
func (f *CardGenerationTaskFactory) CreateTask(transcriptID uuid.UUID) (*CardGenerationTask, error) {
	return NewCardGenerationTask(
		transcriptID,
		f.transcriptService,
		f.generator,
		f.cardService,
		f.logger,
	)
}

// ReconstructTask rebuilds an executable task from a persisted payload.
// It satisfies the Reconstructor signature for TaskTypeCardGeneration.
func (f *CardGenerationTaskFactory) ReconstructTask(payload []byte) (Task, error) {
	var data cardGenerationPayload
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal card generation payload: %w", err)
	}
	return f.CreateTask(data.TranscriptID)
}
