// Package domain holds the session model shared by the dialog engine and its
// adapters. Sessions are serialized as JSON at the store boundary only; the
// rest of the application works with these typed structs.
package domain

import "time"

// Menu identifies the top-level flow driving the session.
type Menu string

const (
	MenuMain   Menu = "main"
	MenuLesson Menu = "lesson"
	MenuQuiz   Menu = "quiz"
	MenuChat   Menu = "chat"
)

// Topic is one of the four maths topics the bot teaches.
type Topic string

const (
	TopicAddition       Topic = "addition"
	TopicSubtraction    Topic = "subtraction"
	TopicMultiplication Topic = "multiplication"
	TopicDivision       Topic = "division"
)

// Topics lists all topics in menu order.
var Topics = []Topic{TopicAddition, TopicSubtraction, TopicMultiplication, TopicDivision}

// TopicFromChoice maps a menu token ("1".."4") to a topic.
func TopicFromChoice(token string) (Topic, bool) {
	switch token {
	case "1":
		return TopicAddition, true
	case "2":
		return TopicSubtraction, true
	case "3":
		return TopicMultiplication, true
	case "4":
		return TopicDivision, true
	}
	return "", false
}

// Name returns the display name of the topic.
func (t Topic) Name() string {
	switch t {
	case TopicAddition:
		return "Addition"
	case TopicSubtraction:
		return "Subtraction"
	case TopicMultiplication:
		return "Multiplication"
	case TopicDivision:
		return "Division"
	}
	return "Maths"
}

// Session is the externally persisted state of one USSD session. Every
// exchange reconstructs its position from this blob plus the cumulative
// navigation path; nothing else carries state between requests.
type Session struct {
	SessionID    string     `json:"session_id"`
	PhoneNumber  string     `json:"phone_number"`
	CurrentMenu  Menu       `json:"current_menu"`
	Topic        Topic      `json:"topic,omitempty"`
	QuizState    *QuizState `json:"quiz_state,omitempty"`
	ChatState    *ChatState `json:"chat_state,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	LastActivity time.Time  `json:"last_activity"`
}

// NewSession creates a fresh session positioned at the main menu.
func NewSession(sessionID, phoneNumber string) *Session {
	now := time.Now().UTC()
	return &Session{
		SessionID:    sessionID,
		PhoneNumber:  phoneNumber,
		CurrentMenu:  MenuMain,
		CreatedAt:    now,
		LastActivity: now,
	}
}

// HasActivity reports whether anything happened worth summarizing on exit.
func (s *Session) HasActivity() bool {
	if s.Topic != "" {
		return true
	}
	if s.QuizState != nil && len(s.QuizState.Answers) > 0 {
		return true
	}
	if s.ChatState != nil && len(s.ChatState.FullHistory) > 0 {
		return true
	}
	return false
}
