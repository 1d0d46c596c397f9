package engine

import (
	"context"
	"strconv"
	"strings"

	"github.com/edubotswana/edubot/internal/domain"
	"github.com/edubotswana/edubot/internal/sms"
)

// allowedCounts is the fixed set of quiz lengths a user may pick.
var allowedCounts = map[string]int{"3": 3, "5": 5, "10": 10}

// parseCount maps the count token to a quiz length. Malformed or
// out-of-set input falls back to the default; leniency, not an error.
func parseCount(token string, fallback int) int {
	if n, ok := allowedCounts[strings.TrimSpace(token)]; ok {
		return n
	}
	return fallback
}

// handleQuiz drives TopicSelect -> CountSelect -> InProgress -> Complete.
// Position within the flow is re-derived from the tokens after "2" plus the
// persisted quiz state, never from any out-of-session counter.
func (e *Engine) handleQuiz(ctx context.Context, sess *domain.Session, rest []string) Reply {
	if sess.QuizState != nil {
		return e.handleQuizInProgress(ctx, sess, rest)
	}

	// TopicSelect
	if len(rest) == 0 {
		sess.CurrentMenu = domain.MenuQuiz
		return Con("%s", topicMenu("quiz on"))
	}
	if rest[0] == "0" {
		sess.CurrentMenu = domain.MenuMain
		return Con(mainMenuText)
	}
	topic, ok := domain.TopicFromChoice(rest[0])
	if !ok {
		return Con("%s", topicMenu("quiz on"))
	}

	// CountSelect
	if len(rest) == 1 {
		sess.CurrentMenu = domain.MenuQuiz
		sess.Topic = topic
		return Con("%s Quiz\n\nHow many questions?\nEnter: 3, 5, or 10", topic.Name())
	}

	// Answer tokens without a live quiz mean the quiz state was lost
	// (expired or already finished): a quiz-state error, not a restart.
	if len(rest) > 2 {
		return End("Quiz error: no active quiz.\nPlease dial back to start again.")
	}

	// Start: fix the question set and immediately show question #1.
	count := parseCount(rest[1], e.cfg.DefaultQuizCount)
	questions, source := e.obtainQuestions(ctx, topic, count)
	if len(questions) == 0 {
		return End("Quiz unavailable right now.\nPlease dial back later.")
	}

	sess.CurrentMenu = domain.MenuQuiz
	sess.Topic = topic
	sess.QuizState = domain.NewQuizState(questions, source)
	return e.showQuestion(sess, "")
}

// handleQuizInProgress treats the latest token as the answer to the current
// question. The tokens after "2" are always [topic, count, answers...], so
// re-sending the path with no new answer re-displays the current question
// instead of advancing.
func (e *Engine) handleQuizInProgress(ctx context.Context, sess *domain.Session, rest []string) Reply {
	answered := 0
	if len(rest) > 2 {
		answered = len(rest) - 2
	}
	if answered <= sess.QuizState.CurrentIndex {
		return e.showQuestion(sess, "")
	}
	return e.submitAnswer(sess, rest[len(rest)-1])
}

// obtainQuestions asks the generator under the interactive deadline and
// falls back to the static bank on anything but success. Quiz generation
// gets no background continuation: the user needs questions now.
func (e *Engine) obtainQuestions(ctx context.Context, topic domain.Topic, count int) ([]domain.Question, domain.QuizSource) {
	if e.generator != nil {
		questions, outcome := awaitWithDeadline(ctx, e.cfg.InteractiveDeadline,
			func(c context.Context) ([]domain.Question, error) {
				return e.generator.QuizQuestions(c, topic, count, "easy")
			},
			func(qs []domain.Question) bool { return len(qs) == 0 },
		)
		e.metrics.Generation("quiz", outcome.String())
		if outcome == OutcomeSuccess {
			return questions, domain.SourceGenerated
		}
		e.logger.Info("quiz generation unavailable, using static bank",
			"topic", topic, "outcome", outcome.String())
	}
	return e.catalog.StaticQuestions(topic, count), domain.SourceStatic
}

// submitAnswer records the answer, advances by exactly one question, and
// either shows the next question or completes the quiz.
func (e *Engine) submitAnswer(sess *domain.Session, token string) Reply {
	quiz := sess.QuizState
	current, ok := quiz.Current()
	if !ok {
		return End("Quiz error: quiz already complete.\nPlease dial back to start again.")
	}

	userAnswer := strings.TrimSpace(token)
	correct := answersMatch(userAnswer, current.Answer)
	quiz.Record(domain.AnswerRecord{
		Question:      current.Question,
		UserAnswer:    userAnswer,
		CorrectAnswer: current.Answer,
		IsCorrect:     correct,
	})

	feedback := "Correct!"
	if !correct {
		feedback = "Wrong. Answer: " + current.Answer
	}

	if quiz.Complete() {
		e.deliverAsync("quiz_results", sess.PhoneNumber, sms.FormatQuizResults(sess.Topic, quiz))
		return End("%s\n\nQuiz Complete!\nScore: %d/%d (%d%%)\n%s\n\nFull results sent via SMS!",
			feedback, quiz.Score, quiz.Total, quiz.Percentage(), quizPerformance(quiz.Percentage()))
	}

	return e.showQuestion(sess, feedback)
}

// showQuestion displays the current question. Re-displaying without a new
// answer never advances the quiz.
func (e *Engine) showQuestion(sess *domain.Session, feedback string) Reply {
	quiz := sess.QuizState
	question, ok := quiz.Current()
	if !ok {
		return End("Quiz error.\nPlease dial back to start again.")
	}

	if feedback != "" {
		return Con("%s\n\nQ%d of %d\n%s\n\nEnter your answer:",
			feedback, quiz.CurrentIndex+1, quiz.Total, question.Question)
	}
	return Con("Q%d of %d\n\n%s\n\nEnter your answer:",
		quiz.CurrentIndex+1, quiz.Total, question.Question)
}

// answersMatch compares answers case-insensitively after trimming. When
// both sides parse as numbers, numeric equality wins, so "5" and "5.0"
// match; otherwise exact string equality.
func answersMatch(user, correct string) bool {
	u := strings.ToLower(strings.TrimSpace(user))
	c := strings.ToLower(strings.TrimSpace(correct))

	uf, uerr := strconv.ParseFloat(u, 64)
	cf, cerr := strconv.ParseFloat(c, 64)
	if uerr == nil && cerr == nil {
		return uf == cf
	}
	return u == c
}

func quizPerformance(pct int) string {
	switch {
	case pct >= 80:
		return "Excellent work!"
	case pct >= 60:
		return "Good job!"
	default:
		return "Keep practicing!"
	}
}
