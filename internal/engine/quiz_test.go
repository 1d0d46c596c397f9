package engine

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/edubotswana/edubot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuizFullRun(t *testing.T) {
	gen := &stubGenerator{questions: fiveAdditionQuestions()}
	e, sessions, notifier := newTestEngine(t, WithGenerator(gen))
	d := newDialer(t, e)

	d.step("")
	resp := d.step("2")
	assert.Contains(t, resp, "Select topic to quiz on")

	resp = d.step("1")
	assert.Contains(t, resp, "Addition Quiz")
	assert.Contains(t, resp, "How many questions?")

	resp = d.step("5")
	require.True(t, strings.HasPrefix(resp, "CON "))
	assert.Contains(t, resp, "Q1 of 5")
	assert.Contains(t, resp, "What is 2 + 3?")

	// Four correct answers, then one wrong.
	for _, answer := range []string{"5", "8", "9", "7"} {
		resp = d.step(answer)
		require.True(t, strings.HasPrefix(resp, "CON "))
		assert.Contains(t, resp, "Correct!")

		quiz := d.session(sessions).QuizState
		require.NotNil(t, quiz)
		assert.Len(t, quiz.Answers, quiz.CurrentIndex)
		assert.LessOrEqual(t, quiz.Score, quiz.CurrentIndex)
	}

	resp = d.step("999")
	require.True(t, strings.HasPrefix(resp, "END "))
	assert.Contains(t, resp, "Wrong. Answer: 12")
	assert.Contains(t, resp, "Score: 4/5 (80%)")
	assert.Contains(t, resp, "Excellent work!")

	e.Wait()
	delivered := notifier.delivered()
	require.Len(t, delivered, 1)
	assert.Contains(t, delivered[0].Message, "QUIZ RESULTS")
	assert.Contains(t, delivered[0].Message, "Score: 4/5 (80%)")
	assert.Contains(t, delivered[0].Message, "[wrong]")
	assert.Contains(t, delivered[0].Message, "Correct: 12")

	quiz := d.session(sessions).QuizState
	require.NotNil(t, quiz)
	assert.True(t, quiz.Complete())
	assert.Equal(t, 4, quiz.Score)
	assert.Equal(t, domain.SourceGenerated, quiz.Source)
}

func TestQuizRedisplayDoesNotAdvance(t *testing.T) {
	gen := &stubGenerator{questions: fiveAdditionQuestions()}
	e, sessions, _ := newTestEngine(t, WithGenerator(gen))
	d := newDialer(t, e)

	d.step("")
	d.step("2")
	d.step("1")
	first := d.step("5")
	assert.Contains(t, first, "Q1 of 5")

	// The gateway resends the same cumulative path; no new answer arrived.
	again := d.resend()
	assert.Contains(t, again, "Q1 of 5")

	quiz := d.session(sessions).QuizState
	require.NotNil(t, quiz)
	assert.Equal(t, 0, quiz.CurrentIndex)
	assert.Empty(t, quiz.Answers)

	// Answering still advances by exactly one.
	resp := d.step("5")
	assert.Contains(t, resp, "Q2 of 5")
	assert.Equal(t, 1, d.session(sessions).QuizState.CurrentIndex)
}

func TestQuizUnknownCountFallsBackToDefault(t *testing.T) {
	gen := &stubGenerator{questions: fiveAdditionQuestions()}
	e, _, _ := newTestEngine(t, WithGenerator(gen))
	d := newDialer(t, e)

	d.step("")
	d.step("2")
	d.step("1")
	resp := d.step("7")
	assert.Contains(t, resp, "Q1 of 5")
}

func TestQuizAnswersWithoutStateIsTerminalError(t *testing.T) {
	e, _, _ := newTestEngine(t)
	d := newDialer(t, e)

	// A session that expired mid-quiz replays its full path against a
	// fresh session: answer tokens with no live quiz.
	d.path = []string{"2", "1", "5", "4"}
	resp := d.resend()
	require.True(t, strings.HasPrefix(resp, "END "))
	assert.Contains(t, resp, "Quiz error: no active quiz")
}

func TestQuizFallsBackToStaticOnTimeout(t *testing.T) {
	gen := &stubGenerator{questions: fiveAdditionQuestions(), delay: 200 * time.Millisecond}
	cfg := DefaultConfig()
	cfg.InteractiveDeadline = 20 * time.Millisecond
	e, sessions, _ := newTestEngine(t, WithGenerator(gen), WithConfig(cfg))
	d := newDialer(t, e)

	d.step("")
	d.step("2")
	d.step("1")
	resp := d.step("5")
	require.True(t, strings.HasPrefix(resp, "CON "))
	assert.Contains(t, resp, "Q1 of 5")

	quiz := d.session(sessions).QuizState
	require.NotNil(t, quiz)
	assert.Equal(t, domain.SourceStatic, quiz.Source)
	assert.Equal(t, 5, quiz.Total)
}

func TestQuizFallsBackToStaticOnGeneratorError(t *testing.T) {
	gen := &stubGenerator{quizErr: errors.New("backend down")}
	e, sessions, _ := newTestEngine(t, WithGenerator(gen))
	d := newDialer(t, e)

	d.step("")
	d.step("2")
	d.step("3")
	resp := d.step("3")
	assert.Contains(t, resp, "Q1 of 3")
	assert.Equal(t, domain.SourceStatic, d.session(sessions).QuizState.Source)
}

func TestQuizWithoutGeneratorUsesStaticBank(t *testing.T) {
	e, sessions, _ := newTestEngine(t)
	d := newDialer(t, e)

	d.step("")
	d.step("2")
	d.step("4")
	resp := d.step("10")
	assert.Contains(t, resp, "Q1 of 10")
	assert.Equal(t, domain.SourceStatic, d.session(sessions).QuizState.Source)
}

func TestQuizBackReturnsToMainMenu(t *testing.T) {
	e, _, _ := newTestEngine(t)
	d := newDialer(t, e)

	d.step("")
	d.step("2")
	resp := d.step("0")
	assert.Contains(t, resp, "Welcome to EduBot!")
}

func TestAnswersMatch(t *testing.T) {
	cases := []struct {
		user, correct string
		want          bool
	}{
		{"5", "5", true},
		{"5.0", "5", true},
		{" 12 ", "12", true},
		{"0.5", "1/2", false},
		{"Twelve", "twelve", true},
		{"four", "4", false},
		{"6", "9", false},
		{"", "5", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, answersMatch(tc.user, tc.correct),
			"answersMatch(%q, %q)", tc.user, tc.correct)
	}
}
