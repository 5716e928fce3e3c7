// Package generation defines the boundary between the application core and
// the LLM service that turns transcript text into flashcards.
package generation

import (
	"context"

	"github.com/google/uuid"

	"github.com/lecturelab/study-api/internal/domain"
)

// CardGenerator creates flashcards from transcript text. Implementations
// talk to an external model; the rest of the application only sees this
// interface.
type CardGenerator interface {
	// GenerateCards creates flashcards from the given transcript text for the
	// given user. The returned cards reference the transcript they came from.
	// Errors are classified with the sentinel errors in this package.
	GenerateCards(
		ctx context.Context,
		transcriptText string,
		userID uuid.UUID,
		transcriptID uuid.UUID,
	) ([]*domain.Card, error)
}
