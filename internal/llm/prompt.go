package llm

import (
	"fmt"

	"github.com/edubotswana/edubot/internal/domain"
)

// topicGuidance constrains generated questions to primary-school range.
var topicGuidance = map[domain.Topic]string{
	domain.TopicAddition:       "Use numbers between 1-20. Answers should be under 30.",
	domain.TopicSubtraction:    "Use numbers between 1-20. No negative answers.",
	domain.TopicMultiplication: "Use times tables 1-10. Keep it simple.",
	domain.TopicDivision:       "Use numbers that divide evenly. No remainders.",
}

func quizPrompt(topic domain.Topic, count int, difficulty string) string {
	guidance, ok := topicGuidance[topic]
	if !ok {
		guidance = "Keep questions simple."
	}

	return fmt.Sprintf(`You are a primary school maths teacher in Botswana creating a quiz.

Generate exactly %d %s questions for primary school students.

RULES:
- Difficulty: %s
- %s
- Answers must be single numbers (no fractions, no words)
- Questions should be clear and simple
- Vary the numbers used

OUTPUT FORMAT:
Return ONLY a valid JSON object with this exact structure:
{"questions": [{"question": "What is 2 + 3?", "answer": "5"}, {"question": "What is 4 + 1?", "answer": "5"}]}

IMPORTANT:
- Output ONLY the JSON object
- No markdown, no explanation, no extra text
- Ensure valid JSON syntax (proper quotes, commas)

Generate %d %s questions now:`, count, topic, difficulty, guidance, count, topic)
}

// chatSystemPrompt frames the tutor persona for one conversation type. The
// answer length instruction matters: USSD screens hold ~90 characters, and
// short answers also keep interactive latency down.
func chatSystemPrompt(topic domain.Topic, convType domain.ConversationType) string {
	base := fmt.Sprintf(
		"You are a friendly primary school maths tutor in Botswana helping a student with %s over a basic mobile phone. "+
			"Answer in at most 2 short sentences of plain simple English. No markdown, no lists, no emoji.",
		topic.Name())

	switch convType {
	case domain.ConvExplain:
		return base + " Explain the concept the student asks about in the simplest possible terms."
	case domain.ConvExample:
		return base + " Answer with one small worked example using numbers under 20."
	case domain.ConvSolve:
		return base + " Solve the student's problem step by step, but keep it very short."
	default:
		return base + " Answer whatever the student asks about maths."
	}
}
