package driving

import (
	"context"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
)

// AskService answers questions by routing them to agents and merging the results.
type AskService interface {
	// Ask answers a question. It only fails for a blank question;
	// provider, routing and synthesis failures degrade the answer instead.
	Ask(ctx context.Context, q domain.Question) (*domain.FinalAnswer, error)
}

// LogService exposes the interaction log.
type LogService interface {
	// List returns every entry in insertion order.
	List(ctx context.Context) ([]domain.LogEntry, error)

	// Recent returns the last n entries in insertion order.
	Recent(ctx context.Context, n int) ([]domain.LogEntry, error)
}
