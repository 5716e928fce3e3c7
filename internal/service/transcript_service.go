package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lecturelab/study-api/internal/domain"
	"github.com/lecturelab/study-api/internal/events"
	"github.com/lecturelab/study-api/internal/store"
)

// TranscriptService provides transcript ingestion and lifecycle operations.
type TranscriptService interface {
	// CreateTranscript persists a new transcript with pending status and
	// emits a card generation request event for background processing.
	CreateTranscript(
		ctx context.Context,
		userID uuid.UUID,
		title string,
		text string,
	) (*domain.Transcript, error)

	// GetTranscript retrieves a transcript by its ID.
	// Returns ErrTranscriptNotFound if it does not exist.
	GetTranscript(ctx context.Context, transcriptID uuid.UUID) (*domain.Transcript, error)

	// UpdateTranscriptStatus moves a transcript through the card generation
	// pipeline (pending, processing, completed, failed).
	UpdateTranscriptStatus(
		ctx context.Context,
		transcriptID uuid.UUID,
		status domain.TranscriptStatus,
	) error
}

// transcriptServiceImpl implements the TranscriptService interface.
type transcriptServiceImpl struct {
	transcriptStore store.TranscriptStore
	eventEmitter    events.EventEmitter
	logger          *slog.Logger
}

// Ensure transcriptServiceImpl implements TranscriptService
var _ TranscriptService = (*transcriptServiceImpl)(nil)

// NewTranscriptService creates a new TranscriptService.
func NewTranscriptService(
	transcriptStore store.TranscriptStore,
	eventEmitter events.EventEmitter,
	logger *slog.Logger,
) (TranscriptService, error) {
	if transcriptStore == nil {
		return nil, &Error{Operation: "create_service", Message: "transcriptStore cannot be nil"}
	}
	if eventEmitter == nil {
		return nil, &Error{Operation: "create_service", Message: "eventEmitter cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &transcriptServiceImpl{
		transcriptStore: transcriptStore,
		eventEmitter:    eventEmitter,
		logger:          logger.With(slog.String("component", "transcript_service")),
	}, nil
}

// CreateTranscript implements TranscriptService.CreateTranscript.
func (s *transcriptServiceImpl) CreateTranscript(
	ctx context.Context,
	userID uuid.UUID,
	title string,
	text string,
) (*domain.Transcript, error) {
	transcript, err := domain.NewTranscript(userID, title, text)
	if err != nil {
		return nil, &Error{
			Operation: "create_transcript",
			Message:   "invalid transcript",
			Err:       err,
		}
	}

	if err := s.transcriptStore.Create(ctx, transcript); err != nil {
		s.logger.Error("failed to save transcript",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, &Error{
			Operation: "create_transcript",
			Message:   "failed to save transcript",
			Err:       err,
		}
	}

	s.logger.Info("transcript created",
		slog.String("transcript_id", transcript.ID.String()),
		slog.String("user_id", userID.String()),
		slog.Int("text_length", len(text)))

	payload := struct {
		TranscriptID uuid.UUID `json:"transcript_id"`
	}{TranscriptID: transcript.ID}

	event, err := events.NewTaskRequestEvent(events.TypeCardGeneration, payload)
	if err != nil {
		return nil, &Error{
			Operation: "create_transcript",
			Message:   "failed to create generation event",
			Err:       err,
		}
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit card generation event",
			slog.String("error", err.Error()),
			slog.String("transcript_id", transcript.ID.String()),
			slog.String("event_id", event.ID.String()))
		return nil, &Error{
			Operation: "create_transcript",
			Message:   "failed to emit generation event",
			Err:       err,
		}
	}

	s.logger.Debug("card generation event emitted",
		slog.String("transcript_id", transcript.ID.String()),
		slog.String("event_id", event.ID.String()))

	return transcript, nil
}

// GetTranscript implements TranscriptService.GetTranscript.
func (s *transcriptServiceImpl) GetTranscript(
	ctx context.Context,
	transcriptID uuid.UUID,
) (*domain.Transcript, error) {
	transcript, err := s.transcriptStore.GetByID(ctx, transcriptID)
	if err != nil {
		if errors.Is(err, store.ErrTranscriptNotFound) {
			return nil, ErrTranscriptNotFound
		}
		return nil, &Error{
			Operation: "get_transcript",
			Message:   "failed to retrieve transcript",
			Err:       err,
		}
	}

	return transcript, nil
}

// UpdateTranscriptStatus implements TranscriptService.UpdateTranscriptStatus.
func (s *transcriptServiceImpl) UpdateTranscriptStatus(
	ctx context.Context,
	transcriptID uuid.UUID,
	status domain.TranscriptStatus,
) error {
	if err := s.transcriptStore.UpdateStatus(ctx, transcriptID, status); err != nil {
		if errors.Is(err, store.ErrTranscriptNotFound) {
			return ErrTranscriptNotFound
		}
		return &Error{
			Operation: "update_transcript_status",
			Message:   fmt.Sprintf("failed to set status %s", status),
			Err:       err,
		}
	}

	s.logger.Info("transcript status updated",
		slog.String("transcript_id", transcriptID.String()),
		slog.String("status", string(status)))
	return nil
}
