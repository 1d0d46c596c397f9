package engine

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/edubotswana/edubot/internal/content"
	"github.com/edubotswana/edubot/internal/domain"
	"github.com/edubotswana/edubot/internal/llm"
	"github.com/edubotswana/edubot/internal/store"
	"github.com/stretchr/testify/require"
)

// stubGenerator is a scriptable llm.Generator. A non-zero delay makes every
// call sleep (honoring the context) before answering, which is how the
// timeout tests force escalation.
type stubGenerator struct {
	mu        sync.Mutex
	questions []domain.Question
	quizErr   error
	answer    string
	chatErr   error
	delay     time.Duration
	chatCalls int
	quizCalls int
}

func (g *stubGenerator) wait(ctx context.Context) error {
	if g.delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(g.delay):
		return nil
	}
}

func (g *stubGenerator) QuizQuestions(ctx context.Context, topic domain.Topic, count int, difficulty string) ([]domain.Question, error) {
	g.mu.Lock()
	g.quizCalls++
	g.mu.Unlock()
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	return g.questions, g.quizErr
}

func (g *stubGenerator) ChatAnswer(ctx context.Context, req llm.ChatRequest) (string, error) {
	g.mu.Lock()
	g.chatCalls++
	g.mu.Unlock()
	if err := g.wait(ctx); err != nil {
		return "", err
	}
	return g.answer, g.chatErr
}

func (g *stubGenerator) chatCallCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.chatCalls
}

// stubNotifier records delivered messages.
type stubNotifier struct {
	mu       sync.Mutex
	messages []deliveredMessage
	err      error
}

type deliveredMessage struct {
	Phone   string
	Message string
}

func (n *stubNotifier) Deliver(ctx context.Context, phoneNumber, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, deliveredMessage{Phone: phoneNumber, Message: message})
	return n.err
}

func (n *stubNotifier) delivered() []deliveredMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]deliveredMessage, len(n.messages))
	copy(out, n.messages)
	return out
}

// dialer replays a USSD session: each step appends one token to the
// cumulative navigation path, exactly as the gateway does.
type dialer struct {
	t         *testing.T
	engine    *Engine
	sessionID string
	phone     string
	path      []string
}

func newDialer(t *testing.T, e *Engine) *dialer {
	t.Helper()
	return &dialer{t: t, engine: e, sessionID: "at-session-1", phone: "+26771234567"}
}

func (d *dialer) step(input string) string {
	d.t.Helper()
	if input != "" {
		d.path = append(d.path, input)
	}
	return d.resend()
}

// resend replays the current path without a new token, simulating a gateway
// retry of the same cumulative text.
func (d *dialer) resend() string {
	d.t.Helper()
	return d.engine.Handle(context.Background(), Exchange{
		SessionID:   d.sessionID,
		PhoneNumber: d.phone,
		ServiceCode: "*384*123#",
		Text:        strings.Join(d.path, "*"),
	})
}

func (d *dialer) session(sessions store.SessionStore) *domain.Session {
	d.t.Helper()
	sess, err := sessions.Get(context.Background(), d.sessionID)
	require.NoError(d.t, err)
	return sess
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *store.MemoryStore, *stubNotifier) {
	t.Helper()
	sessions := store.NewMemory()
	notifier := &stubNotifier{}
	e := New(sessions, content.MustNew(), notifier, opts...)
	return e, sessions, notifier
}

func fiveAdditionQuestions() []domain.Question {
	return []domain.Question{
		{Question: "What is 2 + 3?", Answer: "5"},
		{Question: "What is 4 + 4?", Answer: "8"},
		{Question: "What is 7 + 2?", Answer: "9"},
		{Question: "What is 1 + 6?", Answer: "7"},
		{Question: "What is 9 + 3?", Answer: "12"},
	}
}

func TestHandleAlwaysPrefixed(t *testing.T) {
	gen := &stubGenerator{questions: fiveAdditionQuestions(), answer: "Two plus two is four."}
	e, _, _ := newTestEngine(t, WithGenerator(gen))

	inputs := []string{
		"", "1", "2", "3", "4", "9", "banana",
		"1*1", "1*0", "1*9",
		"2*1", "2*0", "2*9",
		"3*1", "3*0", "3*1*2", "3*1*0",
	}
	for _, input := range inputs {
		resp := e.Handle(context.Background(), Exchange{
			SessionID: "prefix-" + input, PhoneNumber: "+26771234567", Text: input,
		})
		isCon := strings.HasPrefix(resp, "CON ")
		isEnd := strings.HasPrefix(resp, "END ")
		require.True(t, isCon != isEnd, "input %q produced %q", input, resp)
		require.NotEmpty(t, strings.TrimSpace(resp[4:]), "input %q produced empty body", input)
	}
	e.Wait()
}

func TestHandleMenuFitsBudget(t *testing.T) {
	e, _, _ := newTestEngine(t)

	for _, input := range []string{"", "1", "2", "3"} {
		resp := e.Handle(context.Background(), Exchange{
			SessionID: "budget-" + input, PhoneNumber: "+26771234567", Text: input,
		})
		require.LessOrEqual(t, len(resp), DefaultConfig().MenuCharBudget+len("CON "),
			"input %q over budget: %q", input, resp)
	}
}
