package domain

import "time"

// ConversationType frames how the tutor should answer.
type ConversationType string

const (
	ConvExplain ConversationType = "explain"
	ConvExample ConversationType = "example"
	ConvSolve   ConversationType = "solve"
	ConvFree    ConversationType = "free"
)

// ConversationTypeFromChoice maps a menu token ("1".."4") to a type.
func ConversationTypeFromChoice(token string) (ConversationType, bool) {
	switch token {
	case "1":
		return ConvExplain, true
	case "2":
		return ConvExample, true
	case "3":
		return ConvSolve, true
	case "4":
		return ConvFree, true
	}
	return "", false
}

// ContextEntry is one fragment of the bounded context window handed to the
// generator.
type ContextEntry struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Turn is one question/answer round kept in the unbounded full history for
// out-of-band delivery.
type Turn struct {
	Question     string    `json:"question"`
	AnswerShort  string    `json:"answer_short"`
	AnswerFull   string    `json:"answer_full"`
	WasTruncated bool      `json:"was_truncated"`
	WasTimeout   bool      `json:"was_timeout"`
	Timestamp    time.Time `json:"timestamp"`
}

// ChatState tracks the AI tutor conversation. Active distinguishes
// mid-conversation from "topic/type not yet chosen"; deactivating (to change
// topic) clears the context window but keeps the full history.
type ChatState struct {
	Active           bool             `json:"active"`
	Topic            Topic            `json:"topic"`
	ConversationType ConversationType `json:"conversation_type"`
	ContextWindow    []ContextEntry   `json:"context_window"`
	FullHistory      []Turn           `json:"full_history"`
	TurnCount        int              `json:"turn_count"`
	TimeoutCount     int              `json:"timeout_count"`
	StartedAt        time.Time        `json:"started_at"`
}

// NewChatState enters the chat flow for a topic.
func NewChatState(topic Topic) *ChatState {
	return &ChatState{
		Active:    true,
		Topic:     topic,
		StartedAt: time.Now().UTC(),
	}
}

// Deactivate ends the current conversation, keeping the full history so it
// can still be delivered on exit. The context window is cleared so a new
// topic starts fresh, and Topic is cleared so the selection flow knows the
// next token is a topic choice.
func (c *ChatState) Deactivate() {
	c.Active = false
	c.ContextWindow = nil
	c.Topic = ""
}

// Reactivate resumes chat after a topic change.
func (c *ChatState) Reactivate(topic Topic) {
	if topic != c.Topic {
		c.ContextWindow = nil
	}
	c.Topic = topic
	c.Active = true
}

// AddTurn appends a turn to the full history and slides the context window.
// The window holds whole user/assistant pairs, evicting the oldest pair
// first, so its length stays even and never exceeds 2*maxTurns.
func (c *ChatState) AddTurn(turn Turn, maxTurns int) {
	c.ContextWindow = append(c.ContextWindow,
		ContextEntry{Role: "user", Content: turn.Question},
		ContextEntry{Role: "assistant", Content: turn.AnswerShort},
	)
	for maxTurns > 0 && len(c.ContextWindow) > 2*maxTurns {
		c.ContextWindow = c.ContextWindow[2:]
	}

	c.FullHistory = append(c.FullHistory, turn)
	c.TurnCount++
	if turn.WasTimeout {
		c.TimeoutCount++
	}
}
