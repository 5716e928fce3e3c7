package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/lecturelab/study-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresAt is the ISO 8601 timestamp when the access token expires
	ExpiresAt string `json:"expires_at,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh
// endpoint. Refreshing rotates both tokens.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

// CreateTranscriptRequest defines the payload for submitting a transcript.
type CreateTranscriptRequest struct {
	Title string `json:"title" validate:"max=500"`
	Text  string `json:"text"  validate:"required,min=1"`
}

// TranscriptResponse represents the response data for a transcript.
type TranscriptResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GradeCardRequest defines the payload for grading a card review.
// Quality is a pointer so a grade of 0 survives "required" validation.
type GradeCardRequest struct {
	Quality *int `json:"quality" validate:"required,gte=0,lte=5"`
}

// PostponeCardRequest defines the payload for postponing a card.
type PostponeCardRequest struct {
	Days int `json:"days" validate:"required,gt=0"`
}

// CardResponse represents the response data for a card.
type CardResponse struct {
	ID           string      `json:"id"`
	UserID       string      `json:"user_id"`
	TranscriptID string      `json:"transcript_id"`
	Content      interface{} `json:"content"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// SchedulingStateResponse represents the response data for a card's schedule.
type SchedulingStateResponse struct {
	UserID         string     `json:"user_id"`
	CardID         string     `json:"card_id"`
	IntervalDays   int        `json:"interval_days"`
	EaseFactor     float64    `json:"ease_factor"`
	Repetitions    int        `json:"repetitions"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
	DueAt          time.Time  `json:"due_at"`
}

// transcriptToResponse converts a domain.Transcript to a TranscriptResponse.
func transcriptToResponse(transcript *domain.Transcript) TranscriptResponse {
	return TranscriptResponse{
		ID:        transcript.ID.String(),
		UserID:    transcript.UserID.String(),
		Title:     transcript.Title,
		Status:    string(transcript.Status),
		CreatedAt: transcript.CreatedAt,
		UpdatedAt: transcript.UpdatedAt,
	}
}

// cardToResponse converts a domain.Card to a CardResponse.
func cardToResponse(card *domain.Card) CardResponse {
	var content interface{}
	if err := json.Unmarshal(card.Content, &content); err != nil {
		// Fall back to the raw bytes when the stored JSON cannot be decoded.
		content = string(card.Content)
	}

	return CardResponse{
		ID:           card.ID.String(),
		UserID:       card.UserID.String(),
		TranscriptID: card.TranscriptID.String(),
		Content:      content,
		CreatedAt:    card.CreatedAt,
		UpdatedAt:    card.UpdatedAt,
	}
}

// stateToResponse converts a domain.SchedulingState to a SchedulingStateResponse.
func stateToResponse(state *domain.SchedulingState) SchedulingStateResponse {
	resp := SchedulingStateResponse{
		UserID:       state.UserID.String(),
		CardID:       state.CardID.String(),
		IntervalDays: state.IntervalDays,
		EaseFactor:   state.EaseFactor,
		Repetitions:  state.Repetitions,
		DueAt:        state.DueAt,
	}
	if !state.LastReviewedAt.IsZero() {
		reviewedAt := state.LastReviewedAt
		resp.LastReviewedAt = &reviewedAt
	}
	return resp
}
