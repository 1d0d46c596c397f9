// Package llm generates quiz questions and tutor answers through an
// OpenAI-compatible chat-completions backend (Groq in production).
package llm

import (
	"context"

	"github.com/edubotswana/edubot/internal/domain"
)

// ChatRequest carries one tutor question plus its conversation framing.
type ChatRequest struct {
	Topic            domain.Topic
	Question         string
	Context          []domain.ContextEntry
	ConversationType domain.ConversationType
}

// Generator produces quiz questions and chat answers. Implementations must
// honor the deadline on the supplied context; callers enforce interactive
// and background budgets through it.
type Generator interface {
	// QuizQuestions generates count questions for a topic. Returns
	// domain.ErrNoAnswer when the backend produced nothing usable; the
	// caller falls back to the static bank.
	QuizQuestions(ctx context.Context, topic domain.Topic, count int, difficulty string) ([]domain.Question, error)

	// ChatAnswer answers one tutor question given the bounded context
	// window. Returns domain.ErrNoAnswer when the backend produced
	// nothing usable.
	ChatAnswer(ctx context.Context, req ChatRequest) (string, error)
}
