package content

import (
	"testing"

	"github.com/edubotswana/edubot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogLoads(t *testing.T) {
	catalog, err := New()
	require.NoError(t, err)

	for _, topic := range domain.Topics {
		lesson, ok := catalog.Lesson(topic)
		require.True(t, ok, "missing lesson for %s", topic)
		assert.NotEmpty(t, lesson.Title)
		assert.NotEmpty(t, lesson.Body)
	}
}

func TestLessonUnknownTopic(t *testing.T) {
	catalog := MustNew()
	_, ok := catalog.Lesson(domain.Topic("algebra"))
	assert.False(t, ok)
}

func TestStaticQuestionsCount(t *testing.T) {
	catalog := MustNew()

	for _, topic := range domain.Topics {
		questions := catalog.StaticQuestions(topic, 5)
		require.Len(t, questions, 5, "topic %s", topic)
		for _, q := range questions {
			assert.NotEmpty(t, q.Question)
			assert.NotEmpty(t, q.Answer)
		}
	}
}

func TestStaticQuestionsCappedAtBankSize(t *testing.T) {
	catalog := MustNew()

	questions := catalog.StaticQuestions(domain.TopicAddition, 100)
	assert.NotEmpty(t, questions)
	assert.LessOrEqual(t, len(questions), 100)

	// Unknown topics have no bank.
	assert.Nil(t, catalog.StaticQuestions(domain.Topic("algebra"), 5))
}

func TestStaticQuestionsReturnsCopy(t *testing.T) {
	catalog := MustNew()

	first := catalog.StaticQuestions(domain.TopicDivision, 3)
	require.NotEmpty(t, first)
	first[0].Answer = "tampered"

	again := catalog.StaticQuestions(domain.TopicDivision, 10)
	for _, q := range again {
		assert.NotEqual(t, "tampered", q.Answer)
	}
}
