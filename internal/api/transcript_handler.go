// Package api provides the HTTP handlers for the study API.
package api

import (
	"log/slog"
	"net/http"

	"github.com/lecturelab/study-api/internal/api/shared"
	"github.com/lecturelab/study-api/internal/platform/logger"
	"github.com/lecturelab/study-api/internal/redact"
	"github.com/lecturelab/study-api/internal/service"
)

// TranscriptHandler handles transcript-related HTTP requests.
type TranscriptHandler struct {
	transcriptService service.TranscriptService
	logger            *slog.Logger
}

// NewTranscriptHandler creates a new TranscriptHandler.
func NewTranscriptHandler(
	transcriptService service.TranscriptService,
	logger *slog.Logger,
) *TranscriptHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &TranscriptHandler{
		transcriptService: transcriptService,
		logger:            logger.With(slog.String("component", "transcript_handler")),
	}
}

// CreateTranscript handles POST /api/transcripts requests. Card generation
// happens asynchronously, so the response is 202 Accepted with the transcript
// in pending status.
func (h *TranscriptHandler) CreateTranscript(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateTranscriptRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	transcript, err := h.transcriptService.CreateTranscript(r.Context(), userID, req.Title, req.Text)
	if err != nil {
		log.Error("failed to create transcript",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to create transcript", err)
		return
	}

	log.Debug("transcript accepted for card generation",
		slog.String("transcript_id", transcript.ID.String()),
		slog.String("user_id", userID.String()))
	shared.RespondWithJSON(w, r, http.StatusAccepted, transcriptToResponse(transcript))
}

// GetTranscript handles GET /api/transcripts/{id} requests, letting clients
// poll the card generation status.
func (h *TranscriptHandler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	transcriptID, ok := getPathUUID(w, r, "id")
	if !ok {
		return
	}

	transcript, err := h.transcriptService.GetTranscript(r.Context(), transcriptID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	// Transcripts are private to their owner.
	if transcript.UserID != userID {
		shared.RespondWithError(w, r, http.StatusNotFound, "Transcript not found")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, transcriptToResponse(transcript))
}
