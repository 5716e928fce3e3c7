package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TranscriptStatus represents the card-generation state of a transcript.
type TranscriptStatus string

// Possible transcript status values
const (
	TranscriptStatusPending    TranscriptStatus = "pending"
	TranscriptStatusProcessing TranscriptStatus = "processing"
	TranscriptStatusCompleted  TranscriptStatus = "completed"
	TranscriptStatusFailed     TranscriptStatus = "failed"
)

// Common validation errors for Transcript
var (
	ErrEmptyTranscriptID     = errors.New("transcript ID cannot be empty")
	ErrEmptyTranscriptUserID = errors.New("transcript user ID cannot be empty")
	ErrEmptyTranscriptText   = errors.New("transcript text cannot be empty")
)

// Transcript represents the text of a recorded meeting or lecture submitted
// by a user. Flashcards are generated from it in the background, and the
// Status field tracks that pipeline.
type Transcript struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Title     string           `json:"title"`
	Text      string           `json:"text"`
	Status    TranscriptStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// NewTranscript creates a new Transcript with the given user ID, title and text.
// It generates a new UUID, sets the status to pending and stamps the timestamps.
// Returns an error if validation fails.
func NewTranscript(userID uuid.UUID, title, text string) (*Transcript, error) {
	transcript := &Transcript{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Text:      text,
		Status:    TranscriptStatusPending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := transcript.Validate(); err != nil {
		return nil, err
	}

	return transcript, nil
}

// Validate checks if the Transcript has valid data.
// Returns an error if any field fails validation.
func (t *Transcript) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTranscriptID
	}

	if t.UserID == uuid.Nil {
		return ErrEmptyTranscriptUserID
	}

	if t.Text == "" {
		return ErrEmptyTranscriptText
	}

	if !isValidTranscriptStatus(t.Status) {
		return ErrInvalidTranscriptStatus
	}

	return nil
}

// UpdateStatus updates the transcript's status and the UpdatedAt timestamp.
// Returns an error if the new status is invalid.
func (t *Transcript) UpdateStatus(status TranscriptStatus) error {
	if !isValidTranscriptStatus(status) {
		return ErrInvalidTranscriptStatus
	}

	t.Status = status
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// isValidTranscriptStatus checks if the given status is a valid TranscriptStatus.
func isValidTranscriptStatus(status TranscriptStatus) bool {
	switch status {
	case TranscriptStatusPending, TranscriptStatusProcessing,
		TranscriptStatusCompleted, TranscriptStatusFailed:
		return true
	default:
		return false
	}
}
