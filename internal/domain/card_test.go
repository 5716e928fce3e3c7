package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCard(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	transcriptID := uuid.New()
	content := json.RawMessage(`{"front":"What is SM-2?","back":"A spaced-repetition algorithm"}`)

	card, err := NewCard(userID, transcriptID, content)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, card.ID)
	assert.Equal(t, userID, card.UserID)
	assert.Equal(t, transcriptID, card.TranscriptID)
	assert.JSONEq(t, string(content), string(card.Content))
}

func TestCardValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		mutate   func(*Card)
		expected error
	}{
		{"missing user ID", func(c *Card) { c.UserID = uuid.Nil }, ErrCardUserIDEmpty},
		{"missing transcript ID", func(c *Card) { c.TranscriptID = uuid.Nil }, ErrCardTranscriptIDEmpty},
		{"empty content", func(c *Card) { c.Content = nil }, ErrCardContentEmpty},
		{"invalid JSON content", func(c *Card) { c.Content = json.RawMessage(`{front`) }, ErrCardContentInvalid},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			card := Card{
				ID:           uuid.New(),
				UserID:       uuid.New(),
				TranscriptID: uuid.New(),
				Content:      json.RawMessage(`{"front":"q","back":"a"}`),
			}
			tc.mutate(&card)

			assert.ErrorIs(t, card.Validate(), tc.expected)
		})
	}
}
