// Package engine implements the USSD dialog state machine: input parsing and
// routing, the quiz and chat sub-flows, response shaping, and the
// timeout-escalation coordinator. Every exchange is stateless on the wire;
// position is reconstructed from the persisted session plus the cumulative
// navigation path.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/edubotswana/edubot/internal/content"
	"github.com/edubotswana/edubot/internal/domain"
	"github.com/edubotswana/edubot/internal/llm"
	"github.com/edubotswana/edubot/internal/logging"
	"github.com/edubotswana/edubot/internal/metrics"
	"github.com/edubotswana/edubot/internal/sms"
	"github.com/edubotswana/edubot/internal/store"
)

// ContentCatalog supplies lessons and the static quiz bank.
type ContentCatalog interface {
	Lesson(topic domain.Topic) (content.Lesson, bool)
	StaticQuestions(topic domain.Topic, count int) []domain.Question
}

// Config carries the dialog budgets and deadlines.
type Config struct {
	MenuCharBudget      int
	ChatTargetChars     int
	ChatHardCeiling     int
	InteractiveDeadline time.Duration
	BackgroundDeadline  time.Duration
	ContextTurns        int
	MinQuestionChars    int
	DefaultQuizCount    int

	// FallbackText answers inline when generation returned nothing usable.
	FallbackText string
	// TimeoutAckText acknowledges inline when generation missed the
	// interactive deadline; the real answer follows via SMS.
	TimeoutAckText string
}

// DefaultConfig returns the production budgets.
func DefaultConfig() Config {
	return Config{
		MenuCharBudget:      160,
		ChatTargetChars:     90,
		ChatHardCeiling:     95,
		InteractiveDeadline: 6 * time.Second,
		BackgroundDeadline:  30 * time.Second,
		ContextTurns:        3,
		MinQuestionChars:    3,
		DefaultQuizCount:    5,
		FallbackText:        "Hmm, I couldn't answer that one. Try asking again in simpler words!",
		TimeoutAckText:      "Still thinking... Your answer will arrive by SMS in a moment!",
	}
}

// Engine is the dialog router plus its sub-engines. Collaborators are
// injected as interfaces so the state machine is testable in isolation.
type Engine struct {
	store     store.SessionStore
	catalog   ContentCatalog
	generator llm.Generator // nil runs static-only (no chat answers, static quizzes)
	notifier  sms.Notifier
	cfg       Config
	logger    *slog.Logger
	metrics   *metrics.Metrics

	bg sync.WaitGroup
}

type Option func(*Engine)

// WithGenerator enables LLM-backed quiz generation and chat answers.
func WithGenerator(g llm.Generator) Option {
	return func(e *Engine) {
		e.generator = g
	}
}

// WithConfig overrides the default budgets.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithLogger configures a logger for engine events.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics configures prometheus counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// New creates a dialog engine.
func New(sessions store.SessionStore, catalog ContentCatalog, notifier sms.Notifier, opts ...Option) *Engine {
	e := &Engine{
		store:    sessions,
		catalog:  catalog,
		notifier: notifier,
		cfg:      DefaultConfig(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Exchange is one inbound USSD request.
type Exchange struct {
	SessionID   string
	PhoneNumber string
	ServiceCode string
	Text        string // cumulative navigation path, tokens joined by "*"
}

// Handle processes one exchange and returns the wire response ("CON ..." or
// "END ..."). Collaborator failures never escape: every path resolves to a
// re-prompt or a worded terminal message.
func (e *Engine) Handle(ctx context.Context, ex Exchange) string {
	sess, err := e.store.Get(ctx, ex.SessionID)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			e.logger.Warn("session load failed, starting fresh", "session", ex.SessionID, "err", err)
		}
		sess = domain.NewSession(ex.SessionID, ex.PhoneNumber)
	}

	reply := e.route(ctx, sess, splitInput(ex.Text))

	if err := e.store.Save(ctx, sess); err != nil {
		e.logger.Warn("session save failed", "session", ex.SessionID, "err", err)
	}

	rendered := reply.Render()
	if len(rendered) > e.cfg.MenuCharBudget+len("CON ") {
		e.logger.Debug("response exceeds menu budget", "session", ex.SessionID, "len", len(rendered))
	}
	return rendered
}

// Wait blocks until all detached background work has finished. Used by
// graceful shutdown and tests.
func (e *Engine) Wait() {
	e.bg.Wait()
}

// detach runs fn on its own goroutine with a deadline decoupled from the
// interactive request lifecycle. Failures inside fn are only ever observable
// through the out-of-band channel.
func (e *Engine) detach(deadline time.Duration, fn func(context.Context)) {
	e.bg.Add(1)
	go func() {
		defer e.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), deadline)
		defer cancel()
		fn(ctx)
	}()
}

// deliverAsync queues an out-of-band message, fire-and-forget.
func (e *Engine) deliverAsync(kind, phoneNumber, message string) {
	e.metrics.Delivery(kind)
	e.detach(e.cfg.BackgroundDeadline, func(ctx context.Context) {
		if err := e.notifier.Deliver(ctx, phoneNumber, message); err != nil {
			e.logger.Warn("out-of-band delivery failed", "kind", kind, "err", err)
		}
	})
}

// shapeChat shapes a chat answer to the display target, with the hard
// ceiling as a final guard.
func (e *Engine) shapeChat(answer string) (short, full string, truncated bool) {
	short, full, truncated = Shape(answer, e.cfg.ChatTargetChars)
	if len(short) > e.cfg.ChatHardCeiling {
		short = strings.TrimSpace(truncateAtRuneBoundary(short, e.cfg.ChatHardCeiling-len(ellipsis))) + ellipsis
		truncated = true
	}
	return short, full, truncated
}
