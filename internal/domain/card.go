package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardUserIDEmpty is returned when a card's user ID is empty or nil.
	ErrCardUserIDEmpty = errors.New("card user ID cannot be empty")

	// ErrCardTranscriptIDEmpty is returned when a card's transcript ID is empty or nil.
	ErrCardTranscriptIDEmpty = errors.New("card transcript ID cannot be empty")

	// ErrCardContentEmpty is returned when a card's content is empty.
	ErrCardContentEmpty = errors.New("card content cannot be empty")

	// ErrCardContentInvalid is returned when a card's content is not valid JSON.
	ErrCardContentInvalid = errors.New("card content must be valid JSON")
)

// Card represents a flashcard generated from a user's transcript.
// The content is stored as a JSONB structure, allowing for flexible
// card formats and future extensibility.
type Card struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	TranscriptID uuid.UUID       `json:"transcript_id"`
	Content      json.RawMessage `json:"content"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CardContent is the conventional structure of a card's content field.
// Cards can carry extra keys since content is stored as JSONB.
type CardContent struct {
	Front string   `json:"front"`
	Back  string   `json:"back"`
	Hint  string   `json:"hint,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

// NewCard creates a new Card with the given user ID, transcript ID, and content.
// It generates a new UUID for the card ID and sets the creation/update timestamps.
// Returns an error if validation fails.
func NewCard(userID, transcriptID uuid.UUID, content json.RawMessage) (*Card, error) {
	card := &Card{
		ID:           uuid.New(),
		UserID:       userID,
		TranscriptID: transcriptID,
		Content:      content,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.UserID == uuid.Nil {
		return ErrCardUserIDEmpty
	}

	if c.TranscriptID == uuid.Nil {
		return ErrCardTranscriptIDEmpty
	}

	if len(c.Content) == 0 {
		return ErrCardContentEmpty
	}

	var js json.RawMessage
	if err := json.Unmarshal(c.Content, &js); err != nil {
		return ErrCardContentInvalid
	}

	return nil
}
