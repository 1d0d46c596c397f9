package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/edubotswana/edubot/internal/domain"
	"github.com/edubotswana/edubot/internal/logging"
	openai "github.com/sashabaranov/go-openai"
)

// GroqConfig configures the Groq-backed generator. Groq exposes an
// OpenAI-compatible API, so the client only needs a BaseURL override.
type GroqConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

// Groq implements Generator against the Groq chat-completions API.
type Groq struct {
	client    *openai.Client
	model     string
	maxTokens int
	logger    *slog.Logger
}

type GroqOption func(*Groq)

// WithLogger configures a logger for request diagnostics.
func WithLogger(logger *slog.Logger) GroqOption {
	return func(g *Groq) {
		g.logger = logger
	}
}

// NewGroq creates a Groq generator.
func NewGroq(cfg GroqConfig, opts ...GroqOption) (*Groq, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("groq API key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "llama-3.1-8b-instant"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 300
	}

	g := &Groq{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     model,
		maxTokens: maxTokens,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// QuizQuestions generates quiz questions as structured JSON.
func (g *Groq) QuizQuestions(ctx context.Context, topic domain.Topic, count int, difficulty string) ([]domain.Question, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a helpful maths teacher. Always respond with valid JSON only.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: quizPrompt(topic, count, difficulty),
			},
		},
		MaxTokens:   g.maxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("quiz generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, domain.ErrNoAnswer
	}

	questions, err := ParseQuizResponse(resp.Choices[0].Message.Content)
	if err != nil {
		g.logger.Warn("unparseable quiz response", "err", err, "topic", topic)
		return nil, domain.ErrNoAnswer
	}
	if len(questions) < count {
		g.logger.Warn("insufficient questions generated", "got", len(questions), "want", count)
		return nil, domain.ErrNoAnswer
	}

	return questions[:count], nil
}

// ChatAnswer answers a tutor question with the context window attached.
func (g *Groq) ChatAnswer(ctx context.Context, req ChatRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Context)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: chatSystemPrompt(req.Topic, req.ConversationType),
	})
	for _, entry := range req.Context {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    entry.Role,
			Content: entry.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Question,
	})

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		MaxTokens:   g.maxTokens,
		Temperature: 0.5,
	})
	if err != nil {
		return "", fmt.Errorf("chat generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", domain.ErrNoAnswer
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return "", domain.ErrNoAnswer
	}
	return answer, nil
}

// quizWire tolerates answers arriving as either strings or numbers.
type quizWire struct {
	Questions []struct {
		Question string `json:"question"`
		Answer   any    `json:"answer"`
	} `json:"questions"`
}

// ParseQuizResponse parses a model response into questions, stripping
// markdown code fences if present and normalizing answers to canonical
// strings.
func ParseQuizResponse(raw string) ([]domain.Question, error) {
	cleaned := stripFences(strings.TrimSpace(raw))

	var wire quizWire
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		return nil, fmt.Errorf("invalid quiz JSON: %w", err)
	}
	if len(wire.Questions) == 0 {
		return nil, fmt.Errorf("quiz JSON contains no questions")
	}

	questions := make([]domain.Question, 0, len(wire.Questions))
	for _, q := range wire.Questions {
		text := strings.TrimSpace(q.Question)
		answer := NormalizeAnswer(q.Answer)
		if text == "" || answer == "" {
			continue
		}
		questions = append(questions, domain.Question{Question: text, Answer: answer})
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("quiz JSON contains no usable questions")
	}
	return questions, nil
}

// NormalizeAnswer converts a generated answer of any JSON type to its
// canonical string form. Whole floats lose their fractional part so "5",
// 5 and 5.0 all normalize to "5".
func NormalizeAnswer(v any) string {
	switch a := v.(type) {
	case string:
		return strings.TrimSpace(a)
	case float64:
		if a == float64(int64(a)) {
			return strconv.FormatInt(int64(a), 10)
		}
		return strconv.FormatFloat(a, 'f', -1, 64)
	case json.Number:
		return a.String()
	case int:
		return strconv.Itoa(a)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(a))
	}
}

// stripFences removes a surrounding markdown code block, a common model
// quirk even when told to output bare JSON.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if strings.HasPrefix(lines[0], "```") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
