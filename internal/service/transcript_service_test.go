package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lecturelab/study-api/internal/domain"
	"github.com/lecturelab/study-api/internal/events"
	"github.com/lecturelab/study-api/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockTranscriptStore struct {
	transcripts map[uuid.UUID]*domain.Transcript

	createErr error
	updateErr error
}

func newMockTranscriptStore() *mockTranscriptStore {
	return &mockTranscriptStore{transcripts: make(map[uuid.UUID]*domain.Transcript)}
}

func (m *mockTranscriptStore) Create(_ context.Context, transcript *domain.Transcript) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.transcripts[transcript.ID] = transcript
	return nil
}

func (m *mockTranscriptStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Transcript, error) {
	transcript, ok := m.transcripts[id]
	if !ok {
		return nil, store.ErrTranscriptNotFound
	}
	return transcript, nil
}

func (m *mockTranscriptStore) UpdateStatus(
	_ context.Context,
	id uuid.UUID,
	status domain.TranscriptStatus,
) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	transcript, ok := m.transcripts[id]
	if !ok {
		return store.ErrTranscriptNotFound
	}
	return transcript.UpdateStatus(status)
}

func (m *mockTranscriptStore) WithTx(_ *sql.Tx) store.TranscriptStore {
	return m
}

type recordingEmitter struct {
	events []*events.TaskRequestEvent
	err    error
}

func (e *recordingEmitter) EmitEvent(_ context.Context, event *events.TaskRequestEvent) error {
	if e.err != nil {
		return e.err
	}
	e.events = append(e.events, event)
	return nil
}

func newTranscriptService(
	t *testing.T,
	transcripts store.TranscriptStore,
	emitter events.EventEmitter,
) TranscriptService {
	t.Helper()
	svc, err := NewTranscriptService(transcripts, emitter, testLogger())
	require.NoError(t, err)
	return svc
}

func TestCreateTranscript_PersistsAndEmitsEvent(t *testing.T) {
	t.Parallel()

	transcripts := newMockTranscriptStore()
	emitter := &recordingEmitter{}
	svc := newTranscriptService(t, transcripts, emitter)

	userID := uuid.New()
	transcript, err := svc.CreateTranscript(
		context.Background(), userID, "Distributed Systems L4", "Consensus requires a quorum...")
	require.NoError(t, err)

	assert.Equal(t, userID, transcript.UserID)
	assert.Equal(t, domain.TranscriptStatusPending, transcript.Status)
	assert.Contains(t, transcripts.transcripts, transcript.ID)

	require.Len(t, emitter.events, 1)
	event := emitter.events[0]
	assert.Equal(t, events.TypeCardGeneration, event.Type)

	var payload struct {
		TranscriptID uuid.UUID `json:"transcript_id"`
	}
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, transcript.ID, payload.TranscriptID)
}

func TestCreateTranscript_EmptyText(t *testing.T) {
	t.Parallel()

	svc := newTranscriptService(t, newMockTranscriptStore(), &recordingEmitter{})

	_, err := svc.CreateTranscript(context.Background(), uuid.New(), "Empty", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmptyTranscriptText)
}

func TestCreateTranscript_StoreFailure(t *testing.T) {
	t.Parallel()

	transcripts := newMockTranscriptStore()
	transcripts.createErr = assert.AnError
	emitter := &recordingEmitter{}
	svc := newTranscriptService(t, transcripts, emitter)

	_, err := svc.CreateTranscript(context.Background(), uuid.New(), "Title", "Some text")
	require.Error(t, err)
	assert.Empty(t, emitter.events, "no event should be emitted when persistence fails")
}

func TestCreateTranscript_EmitFailure(t *testing.T) {
	t.Parallel()

	transcripts := newMockTranscriptStore()
	emitter := &recordingEmitter{err: assert.AnError}
	svc := newTranscriptService(t, transcripts, emitter)

	_, err := svc.CreateTranscript(context.Background(), uuid.New(), "Title", "Some text")
	require.Error(t, err)

	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "create_transcript", svcErr.Operation)
}

func TestGetTranscript(t *testing.T) {
	t.Parallel()

	transcripts := newMockTranscriptStore()
	svc := newTranscriptService(t, transcripts, &recordingEmitter{})

	created, err := svc.CreateTranscript(context.Background(), uuid.New(), "Title", "Some text")
	require.NoError(t, err)

	got, err := svc.GetTranscript(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.GetTranscript(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrTranscriptNotFound)
}

func TestUpdateTranscriptStatus(t *testing.T) {
	t.Parallel()

	transcripts := newMockTranscriptStore()
	svc := newTranscriptService(t, transcripts, &recordingEmitter{})

	created, err := svc.CreateTranscript(context.Background(), uuid.New(), "Title", "Some text")
	require.NoError(t, err)

	require.NoError(t, svc.UpdateTranscriptStatus(
		context.Background(), created.ID, domain.TranscriptStatusProcessing))
	assert.Equal(t, domain.TranscriptStatusProcessing, transcripts.transcripts[created.ID].Status)

	err = svc.UpdateTranscriptStatus(
		context.Background(), uuid.New(), domain.TranscriptStatusCompleted)
	assert.ErrorIs(t, err, ErrTranscriptNotFound)
}
