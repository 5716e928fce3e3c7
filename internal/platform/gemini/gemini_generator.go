// Package gemini implements generation.CardGenerator on top of Google's
// Gemini API via the google.golang.org/genai client.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"text/template"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/lecturelab/study-api/internal/config"
	"github.com/lecturelab/study-api/internal/domain"
	"github.com/lecturelab/study-api/internal/generation"
)

// defaultPromptTemplate asks the model for a strict JSON document so the
// response can be parsed without any post-cleanup.
const defaultPromptTemplate = `You are generating study flashcards from the transcript of a recorded lecture or meeting.

Produce at most {{.MaxCards}} flashcards covering the most important facts, definitions and conclusions in the transcript. Respond with JSON only, no prose, matching this shape:

{"cards": [{"front": "question", "back": "answer", "hint": "optional hint", "tags": ["optional", "tags"]}]}

Transcript:
{{.TranscriptText}}`

// responseSchema is the JSON document shape expected back from the model.
type responseSchema struct {
	Cards []cardSchema `json:"cards"`
}

type cardSchema struct {
	Front string   `json:"front"`
	Back  string   `json:"back"`
	Hint  string   `json:"hint,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

type promptData struct {
	TranscriptText string
	MaxCards       int
}

// contentClient is the slice of the genai client the generator uses.
// Narrowing it to one method keeps the API call mockable in tests.
type contentClient interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Generator implements generation.CardGenerator using the Gemini API.
type Generator struct {
	client         contentClient
	model          string
	maxCards       int
	requestTimeout time.Duration
	promptTemplate *template.Template
	logger         *slog.Logger
}

// Ensure Generator implements generation.CardGenerator
var _ generation.CardGenerator = (*Generator)(nil)

// NewGenerator creates a Gemini-backed card generator from the given
// configuration. It fails fast on missing API key or model name.
func NewGenerator(
	ctx context.Context,
	cfg config.GenerationConfig,
	logger *slog.Logger,
) (*Generator, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	promptTemplate, err := template.New("flashcards").Parse(defaultPromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v",
			generation.ErrInvalidConfig, err)
	}

	maxCards := cfg.MaxCards
	if maxCards <= 0 {
		maxCards = 20
	}

	requestTimeout := time.Duration(cfg.RequestTimeout) * time.Second
	if requestTimeout <= 0 {
		requestTimeout = 60 * time.Second
	}

	return &Generator{
		client:         client.Models,
		model:          cfg.ModelName,
		maxCards:       maxCards,
		requestTimeout: requestTimeout,
		promptTemplate: promptTemplate,
		logger:         logger.With(slog.String("component", "gemini_generator")),
	}, nil
}

// GenerateCards implements generation.CardGenerator.GenerateCards.
func (g *Generator) GenerateCards(
	ctx context.Context,
	transcriptText string,
	userID uuid.UUID,
	transcriptID uuid.UUID,
) ([]*domain.Card, error) {
	prompt, err := g.buildPrompt(transcriptText)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.requestTimeout)
	defer cancel()

	g.logger.Debug("calling Gemini API",
		slog.String("model", g.model),
		slog.Int("transcript_length", len(transcriptText)))

	resp, err := g.client.GenerateContent(ctx, g.model, genai.Text(prompt),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
		})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
		}
		return nil, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}

	schema, err := parseModelResponse(resp)
	if err != nil {
		return nil, err
	}

	cards, err := cardsFromSchema(schema, userID, transcriptID, g.maxCards)
	if err != nil {
		return nil, err
	}

	g.logger.Info("generated cards from transcript",
		slog.String("transcript_id", transcriptID.String()),
		slog.Int("card_count", len(cards)))

	return cards, nil
}

// buildPrompt renders the prompt template for the given transcript text.
func (g *Generator) buildPrompt(transcriptText string) (string, error) {
	if transcriptText == "" {
		return "", generation.ErrEmptyInput
	}

	var buf bytes.Buffer
	err := g.promptTemplate.Execute(&buf, promptData{
		TranscriptText: transcriptText,
		MaxCards:       g.maxCards,
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to render prompt: %v",
			generation.ErrGenerationFailed, err)
	}

	return buf.String(), nil
}

// parseModelResponse extracts and decodes the JSON document from a Gemini
// response, mapping safety blocks and malformed output to sentinel errors.
func parseModelResponse(resp *genai.GenerateContentResponse) (*responseSchema, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, generation.ErrContentBlocked
	}
	if candidate.Content == nil {
		return nil, fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var text string
	for _, part := range candidate.Content.Parts {
		if part != nil {
			text += part.Text
		}
	}
	if text == "" {
		return nil, fmt.Errorf("%w: no text in response", generation.ErrInvalidResponse)
	}

	var schema responseSchema
	if err := json.Unmarshal([]byte(text), &schema); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v",
			generation.ErrInvalidResponse, err)
	}

	return &schema, nil
}

// cardsFromSchema converts a parsed model response into domain cards,
// validating each card and capping the total at maxCards.
func cardsFromSchema(
	schema *responseSchema,
	userID uuid.UUID,
	transcriptID uuid.UUID,
	maxCards int,
) ([]*domain.Card, error) {
	if len(schema.Cards) == 0 {
		return nil, fmt.Errorf("%w: no cards in response", generation.ErrInvalidResponse)
	}

	raw := schema.Cards
	if len(raw) > maxCards {
		raw = raw[:maxCards]
	}

	cards := make([]*domain.Card, 0, len(raw))
	for i, c := range raw {
		if c.Front == "" {
			return nil, fmt.Errorf("%w: card %d missing front side", generation.ErrInvalidResponse, i)
		}
		if c.Back == "" {
			return nil, fmt.Errorf("%w: card %d missing back side", generation.ErrInvalidResponse, i)
		}

		content, err := json.Marshal(domain.CardContent{
			Front: c.Front,
			Back:  c.Back,
			Hint:  c.Hint,
			Tags:  c.Tags,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal card content: %w", err)
		}

		card, err := domain.NewCard(userID, transcriptID, content)
		if err != nil {
			return nil, fmt.Errorf("failed to create card: %w", err)
		}
		cards = append(cards, card)
	}

	return cards, nil
}
