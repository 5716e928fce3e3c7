package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lecturelab/study-api/internal/domain"
	"github.com/lecturelab/study-api/internal/store"
)

type mockCardStore struct {
	cards map[uuid.UUID]*domain.Card

	createErr error
}

func newMockCardStore() *mockCardStore {
	return &mockCardStore{cards: make(map[uuid.UUID]*domain.Card)}
}

func (m *mockCardStore) CreateMultiple(_ context.Context, cards []*domain.Card) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, card := range cards {
		m.cards[card.ID] = card
	}
	return nil
}

func (m *mockCardStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Card, error) {
	card, ok := m.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	return card, nil
}

func (m *mockCardStore) GetNextDue(
	_ context.Context,
	_ uuid.UUID,
	_ time.Time,
) (*domain.Card, error) {
	return nil, store.ErrCardNotFound
}

func (m *mockCardStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.cards[id]; !ok {
		return store.ErrCardNotFound
	}
	delete(m.cards, id)
	return nil
}

func (m *mockCardStore) WithTx(_ *sql.Tx) store.CardStore {
	return m
}

type mockScheduleStore struct {
	states map[uuid.UUID]*domain.SchedulingState

	createErr error
}

func newMockScheduleStore() *mockScheduleStore {
	return &mockScheduleStore{states: make(map[uuid.UUID]*domain.SchedulingState)}
}

func (m *mockScheduleStore) Create(_ context.Context, state *domain.SchedulingState) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.states[state.CardID] = state
	return nil
}

func (m *mockScheduleStore) Get(
	_ context.Context,
	_ uuid.UUID,
	cardID uuid.UUID,
) (*domain.SchedulingState, error) {
	state, ok := m.states[cardID]
	if !ok {
		return nil, store.ErrScheduleNotFound
	}
	return state, nil
}

func (m *mockScheduleStore) GetForUpdate(
	ctx context.Context,
	userID uuid.UUID,
	cardID uuid.UUID,
) (*domain.SchedulingState, error) {
	return m.Get(ctx, userID, cardID)
}

func (m *mockScheduleStore) Update(_ context.Context, state *domain.SchedulingState) error {
	if _, ok := m.states[state.CardID]; !ok {
		return store.ErrScheduleNotFound
	}
	m.states[state.CardID] = state
	return nil
}

func (m *mockScheduleStore) WithTx(_ *sql.Tx) store.ScheduleStore {
	return m
}

func newCardServiceFixture(
	cards *mockCardStore,
	schedules *mockScheduleStore,
) *cardServiceImpl {
	return &cardServiceImpl{
		db:            nil,
		cardStore:     cards,
		scheduleStore: schedules,
		runTx: func(ctx context.Context, _ *sql.DB, fn store.TxFn) error {
			return fn(ctx, nil)
		},
		logger: testLogger(),
	}
}

func newTestCards(t *testing.T, userID uuid.UUID, count int) []*domain.Card {
	t.Helper()

	transcriptID := uuid.New()
	cards := make([]*domain.Card, 0, count)
	for i := 0; i < count; i++ {
		content, err := json.Marshal(domain.CardContent{
			Front: "What is the capital of France?",
			Back:  "Paris",
		})
		require.NoError(t, err)

		card, err := domain.NewCard(userID, transcriptID, content)
		require.NoError(t, err)
		cards = append(cards, card)
	}
	return cards
}

func TestCreateCards_CreatesCardsAndSchedules(t *testing.T) {
	t.Parallel()

	cardStore := newMockCardStore()
	scheduleStore := newMockScheduleStore()
	svc := newCardServiceFixture(cardStore, scheduleStore)

	userID := uuid.New()
	cards := newTestCards(t, userID, 3)

	require.NoError(t, svc.CreateCards(context.Background(), cards))
	assert.Len(t, cardStore.cards, 3)
	assert.Len(t, scheduleStore.states, 3)

	for _, card := range cards {
		state, ok := scheduleStore.states[card.ID]
		require.True(t, ok, "card %s should have a scheduling state", card.ID)
		assert.Equal(t, userID, state.UserID)
		assert.Equal(t, 0, state.Repetitions)
		assert.Equal(t, domain.DefaultEaseFactor, state.EaseFactor)
		assert.False(t, state.DueAt.After(time.Now().UTC()), "new cards should be immediately due")
	}
}

func TestCreateCards_EmptySliceIsNoOp(t *testing.T) {
	t.Parallel()

	cardStore := newMockCardStore()
	svc := newCardServiceFixture(cardStore, newMockScheduleStore())

	require.NoError(t, svc.CreateCards(context.Background(), nil))
	assert.Empty(t, cardStore.cards)
}

func TestCreateCards_CardStoreFailure(t *testing.T) {
	t.Parallel()

	cardStore := newMockCardStore()
	cardStore.createErr = assert.AnError
	scheduleStore := newMockScheduleStore()
	svc := newCardServiceFixture(cardStore, scheduleStore)

	err := svc.CreateCards(context.Background(), newTestCards(t, uuid.New(), 2))
	require.Error(t, err)

	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "create_cards", svcErr.Operation)
	assert.Empty(t, scheduleStore.states)
}

func TestCreateCards_ScheduleStoreFailure(t *testing.T) {
	t.Parallel()

	scheduleStore := newMockScheduleStore()
	scheduleStore.createErr = assert.AnError
	svc := newCardServiceFixture(newMockCardStore(), scheduleStore)

	err := svc.CreateCards(context.Background(), newTestCards(t, uuid.New(), 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestGetCard(t *testing.T) {
	t.Parallel()

	cardStore := newMockCardStore()
	svc := newCardServiceFixture(cardStore, newMockScheduleStore())

	cards := newTestCards(t, uuid.New(), 1)
	require.NoError(t, svc.CreateCards(context.Background(), cards))

	got, err := svc.GetCard(context.Background(), cards[0].ID)
	require.NoError(t, err)
	assert.Equal(t, cards[0].ID, got.ID)

	_, err = svc.GetCard(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrCardNotFound)
}
