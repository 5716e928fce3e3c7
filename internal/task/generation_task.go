package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lecturelab/study-api/internal/domain"
)

// Common errors
var (
	ErrNilTranscriptService = errors.New("transcript service cannot be nil")
	ErrNilGenerator         = errors.New("generator cannot be nil")
	ErrNilCardService       = errors.New("card service cannot be nil")
	ErrEmptyTranscriptID    = errors.New("transcript ID cannot be empty")
)

// TranscriptService is the slice of the transcript service this task needs.
type TranscriptService interface {
	// GetTranscript retrieves a transcript by its ID
	GetTranscript(ctx context.Context, transcriptID uuid.UUID) (*domain.Transcript, error)

	// UpdateTranscriptStatus moves a transcript through the generation pipeline
	UpdateTranscriptStatus(ctx context.Context, transcriptID uuid.UUID, status domain.TranscriptStatus) error
}

// Generator is the slice of the card generator this task needs.
type Generator interface {
	// GenerateCards creates flashcards from transcript text
	GenerateCards(
		ctx context.Context,
		transcriptText string,
		userID uuid.UUID,
		transcriptID uuid.UUID,
	) ([]*domain.Card, error)
}

// CardService is the slice of the card service this task needs.
type CardService interface {
	// CreateCards stores cards together with their initial scheduling states
	// in a single transaction, making them immediately due for review.
	CreateCards(ctx context.Context, cards []*domain.Card) error
}

// cardGenerationPayload is the serialized task data persisted with the task.
type cardGenerationPayload struct {
	TranscriptID uuid.UUID `json:"transcript_id"`
}

// CardGenerationTask implements the Task interface for generating flashcards
// from a transcript.
type CardGenerationTask struct {
	id                uuid.UUID
	transcriptID      uuid.UUID
	transcriptService TranscriptService
	generator         Generator
	cardService       CardService
	logger            *slog.Logger
	status            TaskStatus
}

// Ensure CardGenerationTask implements Task
var _ Task = (*CardGenerationTask)(nil)

// NewCardGenerationTask creates a new card generation task for a transcript.
func NewCardGenerationTask(
	transcriptID uuid.UUID,
	transcriptService TranscriptService,
	generator Generator,
	cardService CardService,
	logger *slog.Logger,
) (*CardGenerationTask, error) {
	if transcriptService == nil {
		return nil, ErrNilTranscriptService
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if cardService == nil {
		return nil, ErrNilCardService
	}
	if transcriptID == uuid.Nil {
		return nil, ErrEmptyTranscriptID
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CardGenerationTask{
		id:                uuid.New(),
		transcriptID:      transcriptID,
		transcriptService: transcriptService,
		generator:         generator,
		cardService:       cardService,
		logger: logger.With(
			slog.String("task_type", TaskTypeCardGeneration),
			slog.String("transcript_id", transcriptID.String())),
		status: TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *CardGenerationTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *CardGenerationTask) Type() string {
	return TaskTypeCardGeneration
}

// Payload returns the task data as a byte slice
func (t *CardGenerationTask) Payload() []byte {
	data, err := json.Marshal(cardGenerationPayload{TranscriptID: t.transcriptID})
	if err != nil {
		t.logger.Error("failed to marshal task payload", slog.String("error", err.Error()))
		return []byte{}
	}
	return data
}

// Status returns the current task status
func (t *CardGenerationTask) Status() TaskStatus {
	return t.status
}

// Execute runs the full generation pipeline: fetch the transcript, mark it
// processing, generate cards, store them with initial scheduling states, and
// mark the transcript completed. Any failure marks the transcript failed.
func (t *CardGenerationTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	t.logger.Info("starting card generation task")

	if err := ctx.Err(); err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	transcript, err := t.transcriptService.GetTranscript(ctx, t.transcriptID)
	if err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("failed to retrieve transcript: %w", err)
	}

	if err := t.transcriptService.UpdateTranscriptStatus(ctx, t.transcriptID, domain.TranscriptStatusProcessing); err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("failed to update transcript status to processing: %w", err)
	}

	cards, err := t.generator.GenerateCards(ctx, transcript.Text, transcript.UserID, transcript.ID)
	if err != nil {
		t.markFailed(ctx)
		t.status = TaskStatusFailed
		return fmt.Errorf("failed to generate cards: %w", err)
	}

	t.logger.Info("cards generated", slog.Int("count", len(cards)))

	if len(cards) > 0 {
		if err := t.cardService.CreateCards(ctx, cards); err != nil {
			t.markFailed(ctx)
			t.status = TaskStatusFailed
			return fmt.Errorf("failed to save generated cards: %w", err)
		}
	} else {
		t.logger.Warn("transcript produced no cards")
	}

	// Cards are already saved; a failed status update is logged, not fatal.
	if err := t.transcriptService.UpdateTranscriptStatus(ctx, t.transcriptID, domain.TranscriptStatusCompleted); err != nil {
		t.logger.Error("failed to mark transcript completed after saving cards",
			slog.String("error", err.Error()),
			slog.Int("cards_generated", len(cards)))
	}

	t.status = TaskStatusCompleted
	t.logger.Info("card generation task completed", slog.Int("cards_generated", len(cards)))
	return nil
}

func (t *CardGenerationTask) markFailed(ctx context.Context) {
	if err := t.transcriptService.UpdateTranscriptStatus(ctx, t.transcriptID, domain.TranscriptStatusFailed); err != nil {
		t.logger.Error("failed to mark transcript failed",
			slog.String("error", err.Error()))
	}
}
