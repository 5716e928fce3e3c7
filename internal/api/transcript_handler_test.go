package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lecturelab/study-api/internal/api/shared"
	"github.com/lecturelab/study-api/internal/domain"
	"github.com/lecturelab/study-api/internal/service"
)

// mockTranscriptService is a hand-rolled mock of service.TranscriptService.
type mockTranscriptService struct {
	createFn func(ctx context.Context, userID uuid.UUID, title, text string) (*domain.Transcript, error)
	getFn    func(ctx context.Context, transcriptID uuid.UUID) (*domain.Transcript, error)
}

func (m *mockTranscriptService) CreateTranscript(
	ctx context.Context,
	userID uuid.UUID,
	title string,
	text string,
) (*domain.Transcript, error) {
	return m.createFn(ctx, userID, title, text)
}

func (m *mockTranscriptService) GetTranscript(
	ctx context.Context,
	transcriptID uuid.UUID,
) (*domain.Transcript, error) {
	return m.getFn(ctx, transcriptID)
}

func (m *mockTranscriptService) UpdateTranscriptStatus(
	_ context.Context,
	_ uuid.UUID,
	_ domain.TranscriptStatus,
) error {
	return nil
}

func TestCreateTranscript(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name           string
		userIDInCtx    uuid.UUID
		body           string
		serviceError   error
		expectedStatus int
	}{
		{
			name:           "Success",
			userIDInCtx:    userID,
			body:           `{"title": "Lecture 4", "text": "Raft elects a leader per term."}`,
			expectedStatus: http.StatusAccepted,
		},
		{
			name:           "Missing Text",
			userIDInCtx:    userID,
			body:           `{"title": "Lecture 4"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Malformed Body",
			userIDInCtx:    userID,
			body:           `{"text": `,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Missing User ID",
			userIDInCtx:    uuid.Nil,
			body:           `{"text": "some text"}`,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Service Error",
			userIDInCtx:    userID,
			body:           `{"title": "Lecture 4", "text": "Raft elects a leader per term."}`,
			serviceError:   assert.AnError,
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			handler := NewTranscriptHandler(&mockTranscriptService{
				createFn: func(_ context.Context, userID uuid.UUID, title, text string) (*domain.Transcript, error) {
					if tc.serviceError != nil {
						return nil, tc.serviceError
					}
					return &domain.Transcript{
						ID:        uuid.New(),
						UserID:    userID,
						Title:     title,
						Text:      text,
						Status:    domain.TranscriptStatusPending,
						CreatedAt: time.Now().UTC(),
						UpdatedAt: time.Now().UTC(),
					}, nil
				},
			}, nil)

			req := httptest.NewRequest(http.MethodPost, "/api/transcripts", strings.NewReader(tc.body))
			if tc.userIDInCtx != uuid.Nil {
				ctx := context.WithValue(req.Context(), shared.UserIDContextKey, tc.userIDInCtx)
				req = req.WithContext(ctx)
			}

			rr := httptest.NewRecorder()
			handler.CreateTranscript(rr, req)

			require.Equal(t, tc.expectedStatus, rr.Code, "body: %s", rr.Body.String())

			if tc.expectedStatus == http.StatusAccepted {
				var response TranscriptResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
				assert.Equal(t, userID.String(), response.UserID)
				assert.Equal(t, "Lecture 4", response.Title)
				assert.Equal(t, string(domain.TranscriptStatusPending), response.Status)
			}
		})
	}
}

func TestGetTranscript(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	transcript := &domain.Transcript{
		ID:     uuid.New(),
		UserID: userID,
		Title:  "Lecture 4",
		Text:   "Raft elects a leader per term.",
		Status: domain.TranscriptStatusCompleted,
	}

	tests := []struct {
		name           string
		userIDInCtx    uuid.UUID
		serviceError   error
		expectedStatus int
	}{
		{
			name:           "Success",
			userIDInCtx:    userID,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Not Found",
			userIDInCtx:    userID,
			serviceError:   service.ErrTranscriptNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Other Users Transcript Looks Missing",
			userIDInCtx:    uuid.New(),
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			handler := NewTranscriptHandler(&mockTranscriptService{
				getFn: func(_ context.Context, _ uuid.UUID) (*domain.Transcript, error) {
					if tc.serviceError != nil {
						return nil, tc.serviceError
					}
					return transcript, nil
				},
			}, nil)

			transcriptID := transcript.ID
			req := newAuthedRequest(http.MethodGet,
				"/api/transcripts/"+transcriptID.String(), "", tc.userIDInCtx, &transcriptID)

			rr := httptest.NewRecorder()
			handler.GetTranscript(rr, req)

			require.Equal(t, tc.expectedStatus, rr.Code, "body: %s", rr.Body.String())

			if tc.expectedStatus == http.StatusOK {
				var response TranscriptResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
				assert.Equal(t, transcript.ID.String(), response.ID)
				assert.Equal(t, string(domain.TranscriptStatusCompleted), response.Status)
			}
		})
	}
}
