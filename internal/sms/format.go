package sms

import (
	"fmt"
	"strings"

	"github.com/edubotswana/edubot/internal/content"
	"github.com/edubotswana/edubot/internal/domain"
)

// FormatLesson builds the lesson delivery message.
func FormatLesson(lesson content.Lesson) string {
	return lesson.Body
}

// FormatQuizResults builds the full result-set message sent when a quiz
// completes.
func FormatQuizResults(topic domain.Topic, quiz *domain.QuizState) string {
	var b strings.Builder

	fmt.Fprintf(&b, "QUIZ RESULTS\n\nTopic: %s\nScore: %d/%d (%d%%)\n\n",
		topic.Name(), quiz.Score, quiz.Total, quiz.Percentage())
	b.WriteString(performanceLine(quiz.Percentage()))
	b.WriteString("\n\n")

	for i, ans := range quiz.Answers {
		fmt.Fprintf(&b, "Q%d: %s\nYour answer: %s %s\n", i+1, ans.Question, ans.UserAnswer, mark(ans.IsCorrect))
		if !ans.IsCorrect {
			fmt.Fprintf(&b, "Correct: %s\n", ans.CorrectAnswer)
		}
		b.WriteString("\n")
	}

	b.WriteString("Dial back to learn more!")
	return b.String()
}

// FormatChatHistory builds the full conversation transcript sent when the
// user exits chat. Full answers go out here; the interactive screen only
// ever saw the short forms.
func FormatChatHistory(topic domain.Topic, turns []domain.Turn) string {
	var b strings.Builder

	fmt.Fprintf(&b, "CHAT HISTORY\nTopic: %s\n\n", topic.Name())
	for i, turn := range turns {
		fmt.Fprintf(&b, "Q%d: %s\nA%d: %s\n\n", i+1, turn.Question, i+1, turn.AnswerFull)
	}
	b.WriteString("Dial back anytime!")
	return b.String()
}

// FormatTimeoutAnswer builds the delayed-answer message delivered by the
// background continuation after the interactive exchange already finished.
func FormatTimeoutAnswer(question, answer string) string {
	return fmt.Sprintf("EduBot - Your Answer\n\nYou asked:\n\"%s\"\n\n%s\n\nDial back to keep learning!",
		clip(question, 50), answer)
}

// FormatApology builds the apology sent when even the background deadline
// passed without an answer.
func FormatApology(question string) string {
	return fmt.Sprintf("EduBot - Timeout\n\nSorry! I couldn't answer:\n\"%s\"\n\nPlease try again with a simpler question, like \"What is addition?\"\n\nDial back anytime!",
		clip(question, 50))
}

// FormatSessionSummary builds the exit summary covering whatever the session
// touched.
func FormatSessionSummary(sess *domain.Session) string {
	var b strings.Builder

	b.WriteString("EDUBOT SESSION SUMMARY\n\n")
	if sess.Topic != "" {
		fmt.Fprintf(&b, "Topic: %s\n\n", sess.Topic.Name())
	}
	if quiz := sess.QuizState; quiz != nil && len(quiz.Answers) > 0 {
		fmt.Fprintf(&b, "Quiz: %d/%d (%d%%)\n%s\n\n",
			quiz.Score, quiz.Total, quiz.Percentage(), performanceLine(quiz.Percentage()))
	}
	if chat := sess.ChatState; chat != nil && len(chat.FullHistory) > 0 {
		fmt.Fprintf(&b, "Tutor questions asked: %d\n\n", len(chat.FullHistory))
	}
	b.WriteString("Dial back anytime to learn more!")
	return b.String()
}

// performanceLine maps a percentage to the feedback tier.
func performanceLine(pct int) string {
	switch {
	case pct >= 80:
		return "Excellent work!"
	case pct >= 60:
		return "Good job!"
	default:
		return "Keep practicing!"
	}
}

func mark(correct bool) string {
	if correct {
		return "[correct]"
	}
	return "[wrong]"
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
