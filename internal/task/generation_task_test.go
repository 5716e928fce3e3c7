package task

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lecturelab/study-api/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockTranscriptService struct {
	transcript    *domain.Transcript
	getErr        error
	updateErr     error
	statusChanges []domain.TranscriptStatus
}

func (m *mockTranscriptService) GetTranscript(
	_ context.Context,
	_ uuid.UUID,
) (*domain.Transcript, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.transcript, nil
}

func (m *mockTranscriptService) UpdateTranscriptStatus(
	_ context.Context,
	_ uuid.UUID,
	status domain.TranscriptStatus,
) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.statusChanges = append(m.statusChanges, status)
	return nil
}

type mockGenerator struct {
	cards []*domain.Card
	err   error
}

func (m *mockGenerator) GenerateCards(
	_ context.Context,
	_ string,
	_ uuid.UUID,
	_ uuid.UUID,
) ([]*domain.Card, error) {
	return m.cards, m.err
}

type mockCardService struct {
	created []*domain.Card
	err     error
}

func (m *mockCardService) CreateCards(_ context.Context, cards []*domain.Card) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, cards...)
	return nil
}

func newTestTranscript(t *testing.T) *domain.Transcript {
	t.Helper()
	transcript, err := domain.NewTranscript(uuid.New(), "Lecture 4", "mitochondria are the powerhouse")
	require.NoError(t, err)
	return transcript
}

func newTestCards(t *testing.T, transcript *domain.Transcript, n int) []*domain.Card {
	t.Helper()
	content, err := json.Marshal(domain.CardContent{Front: "Q", Back: "A"})
	require.NoError(t, err)

	cards := make([]*domain.Card, 0, n)
	for i := 0; i < n; i++ {
		card, err := domain.NewCard(transcript.UserID, transcript.ID, content)
		require.NoError(t, err)
		cards = append(cards, card)
	}
	return cards
}

func TestNewCardGenerationTask_Validation(t *testing.T) {
	t.Parallel()

	transcripts := &mockTranscriptService{}
	generator := &mockGenerator{}
	cardSvc := &mockCardService{}

	_, err := NewCardGenerationTask(uuid.Nil, transcripts, generator, cardSvc, testLogger())
	assert.ErrorIs(t, err, ErrEmptyTranscriptID)

	_, err = NewCardGenerationTask(uuid.New(), nil, generator, cardSvc, testLogger())
	assert.ErrorIs(t, err, ErrNilTranscriptService)

	_, err = NewCardGenerationTask(uuid.New(), transcripts, nil, cardSvc, testLogger())
	assert.ErrorIs(t, err, ErrNilGenerator)

	_, err = NewCardGenerationTask(uuid.New(), transcripts, generator, nil, testLogger())
	assert.ErrorIs(t, err, ErrNilCardService)
}

func TestCardGenerationTask_Execute(t *testing.T) {
	t.Parallel()

	transcript := newTestTranscript(t)
	transcripts := &mockTranscriptService{transcript: transcript}
	generator := &mockGenerator{cards: newTestCards(t, transcript, 3)}
	cardSvc := &mockCardService{}

	task, err := NewCardGenerationTask(transcript.ID, transcripts, generator, cardSvc, testLogger())
	require.NoError(t, err)

	require.NoError(t, task.Execute(context.Background()))

	assert.Equal(t, TaskStatusCompleted, task.Status())
	assert.Len(t, cardSvc.created, 3)
	assert.Equal(t, []domain.TranscriptStatus{
		domain.TranscriptStatusProcessing,
		domain.TranscriptStatusCompleted,
	}, transcripts.statusChanges)
}

func TestCardGenerationTask_GeneratorFailureMarksTranscriptFailed(t *testing.T) {
	t.Parallel()

	transcript := newTestTranscript(t)
	transcripts := &mockTranscriptService{transcript: transcript}
	generator := &mockGenerator{err: errors.New("model unavailable")}
	cardSvc := &mockCardService{}

	task, err := NewCardGenerationTask(transcript.ID, transcripts, generator, cardSvc, testLogger())
	require.NoError(t, err)

	err = task.Execute(context.Background())
	require.Error(t, err)

	assert.Equal(t, TaskStatusFailed, task.Status())
	assert.Empty(t, cardSvc.created)
	assert.Contains(t, transcripts.statusChanges, domain.TranscriptStatusFailed)
}

func TestCardGenerationTask_SaveFailureMarksTranscriptFailed(t *testing.T) {
	t.Parallel()

	transcript := newTestTranscript(t)
	transcripts := &mockTranscriptService{transcript: transcript}
	generator := &mockGenerator{cards: newTestCards(t, transcript, 1)}
	cardSvc := &mockCardService{err: errors.New("insert failed")}

	task, err := NewCardGenerationTask(transcript.ID, transcripts, generator, cardSvc, testLogger())
	require.NoError(t, err)

	err = task.Execute(context.Background())
	require.Error(t, err)
	assert.Equal(t, TaskStatusFailed, task.Status())
	assert.Contains(t, transcripts.statusChanges, domain.TranscriptStatusFailed)
}

func TestCardGenerationTask_Payload(t *testing.T) {
	t.Parallel()

	transcript := newTestTranscript(t)
	task, err := NewCardGenerationTask(
		transcript.ID,
		&mockTranscriptService{transcript: transcript},
		&mockGenerator{},
		&mockCardService{},
		testLogger(),
	)
	require.NoError(t, err)

	var payload cardGenerationPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, transcript.ID, payload.TranscriptID)
}

func TestCardGenerationTaskFactory_ReconstructTask(t *testing.T) {
	t.Parallel()

	transcript := newTestTranscript(t)
	factory := NewCardGenerationTaskFactory(
		&mockTranscriptService{transcript: transcript},
		&mockGenerator{},
		&mockCardService{},
		testLogger(),
	)

	payload, err := json.Marshal(cardGenerationPayload{TranscriptID: transcript.ID})
	require.NoError(t, err)

	rebuilt, err := factory.ReconstructTask(payload)
	require.NoError(t, err)
	assert.Equal(t, TaskTypeCardGeneration, rebuilt.Type())

	_, err = factory.ReconstructTask([]byte("not json"))
	assert.Error(t, err)
}
