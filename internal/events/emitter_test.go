package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	events []*TaskRequestEvent
	err    error
}

func (h *recordingHandler) HandleEvent(_ context.Context, event *TaskRequestEvent) error {
	h.events = append(h.events, event)
	return h.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewTaskRequestEvent(t *testing.T) {
	t.Parallel()

	transcriptID := uuid.New()
	event, err := NewTaskRequestEvent(TypeCardGeneration, map[string]string{
		"transcript_id": transcriptID.String(),
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, TypeCardGeneration, event.Type)
	assert.False(t, event.CreatedAt.IsZero())

	var payload struct {
		TranscriptID string `json:"transcript_id"`
	}
	require.NoError(t, event.UnmarshalPayload(&payload))
	assert.Equal(t, transcriptID.String(), payload.TranscriptID)
}

func TestEmitEvent_NoHandlers(t *testing.T) {
	t.Parallel()

	emitter := NewInMemoryEventEmitter(testLogger())
	event, err := NewTaskRequestEvent(TypeCardGeneration, nil)
	require.NoError(t, err)

	assert.NoError(t, emitter.EmitEvent(context.Background(), event))
}

func TestEmitEvent_DeliversToAllHandlers(t *testing.T) {
	t.Parallel()

	emitter := NewInMemoryEventEmitter(testLogger())
	first := &recordingHandler{}
	second := &recordingHandler{}
	emitter.RegisterHandler(first)
	emitter.RegisterHandler(second)

	event, err := NewTaskRequestEvent(TypeCardGeneration, nil)
	require.NoError(t, err)

	require.NoError(t, emitter.EmitEvent(context.Background(), event))
	assert.Len(t, first.events, 1)
	assert.Len(t, second.events, 1)
}

func TestEmitEvent_HandlerErrorDoesNotStopDelivery(t *testing.T) {
	t.Parallel()

	emitter := NewInMemoryEventEmitter(testLogger())
	failing := &recordingHandler{err: errors.New("handler exploded")}
	working := &recordingHandler{}
	emitter.RegisterHandler(failing)
	emitter.RegisterHandler(working)

	event, err := NewTaskRequestEvent(TypeCardGeneration, nil)
	require.NoError(t, err)

	err = emitter.EmitEvent(context.Background(), event)
	assert.ErrorContains(t, err, "handler exploded")
	assert.Len(t, working.events, 1, "later handlers still receive the event")
}
