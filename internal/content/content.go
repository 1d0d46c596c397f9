// Package content is the static teaching catalog: lesson texts for SMS
// delivery and a pre-written quiz bank used when generation is unavailable.
package content

import (
	"embed"
	"fmt"
	"math/rand"

	"github.com/edubotswana/edubot/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed lessons.yaml quizzes.yaml
var catalogFS embed.FS

// Lesson is one topic's teaching text.
type Lesson struct {
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
}

// Catalog serves lessons and static quiz questions by topic.
type Catalog struct {
	lessons map[domain.Topic]Lesson
	quizzes map[domain.Topic][]domain.Question
}

// New loads the embedded catalog.
func New() (*Catalog, error) {
	lessonData, err := catalogFS.ReadFile("lessons.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read lessons: %w", err)
	}
	lessons := make(map[domain.Topic]Lesson)
	if err := yaml.Unmarshal(lessonData, &lessons); err != nil {
		return nil, fmt.Errorf("failed to parse lessons: %w", err)
	}

	quizData, err := catalogFS.ReadFile("quizzes.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read quizzes: %w", err)
	}
	quizzes := make(map[domain.Topic][]domain.Question)
	if err := yaml.Unmarshal(quizData, &quizzes); err != nil {
		return nil, fmt.Errorf("failed to parse quizzes: %w", err)
	}

	for _, topic := range domain.Topics {
		if _, ok := lessons[topic]; !ok {
			return nil, fmt.Errorf("catalog missing lesson for topic %q", topic)
		}
		if len(quizzes[topic]) == 0 {
			return nil, fmt.Errorf("catalog missing quiz bank for topic %q", topic)
		}
	}

	return &Catalog{lessons: lessons, quizzes: quizzes}, nil
}

// MustNew loads the embedded catalog and panics on error. The catalog is
// compiled into the binary, so a failure here is a build defect.
func MustNew() *Catalog {
	c, err := New()
	if err != nil {
		panic(err)
	}
	return c
}

// Lesson returns the lesson for a topic.
func (c *Catalog) Lesson(topic domain.Topic) (Lesson, bool) {
	l, ok := c.lessons[topic]
	return l, ok
}

// StaticQuestions returns up to count questions for a topic, in shuffled
// order. The returned slice is a copy; callers may keep it in session state.
func (c *Catalog) StaticQuestions(topic domain.Topic, count int) []domain.Question {
	bank := c.quizzes[topic]
	if len(bank) == 0 {
		return nil
	}

	picked := make([]domain.Question, len(bank))
	copy(picked, bank)
	rand.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})

	if count > len(picked) {
		count = len(picked)
	}
	return picked[:count]
}
