package domain

// QuizSource records where the question set came from.
type QuizSource string

const (
	SourceGenerated QuizSource = "generated"
	SourceStatic    QuizSource = "static"
)

// Question is a single quiz question with its canonical answer. Answers are
// normalized to strings at the ingestion boundary, so comparison logic never
// sees mixed types.
type Question struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// AnswerRecord captures one submitted answer.
type AnswerRecord struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
}

// QuizState tracks an in-progress quiz. The question set is fixed at quiz
// start; CurrentIndex advances by exactly one per recorded answer, so
// len(Answers) == CurrentIndex and Score <= CurrentIndex always hold.
type QuizState struct {
	Questions    []Question     `json:"questions"`
	CurrentIndex int            `json:"current_index"`
	Answers      []AnswerRecord `json:"answers"`
	Score        int            `json:"score"`
	Total        int            `json:"total"`
	Source       QuizSource     `json:"source"`
}

// NewQuizState starts a quiz over the given fixed question set.
func NewQuizState(questions []Question, source QuizSource) *QuizState {
	return &QuizState{
		Questions: questions,
		Answers:   make([]AnswerRecord, 0, len(questions)),
		Total:     len(questions),
		Source:    source,
	}
}

// Current returns the question at CurrentIndex, or false when the quiz is
// complete.
func (q *QuizState) Current() (Question, bool) {
	if q.CurrentIndex >= len(q.Questions) {
		return Question{}, false
	}
	return q.Questions[q.CurrentIndex], true
}

// Complete reports whether every question has been answered.
func (q *QuizState) Complete() bool {
	return q.CurrentIndex >= q.Total
}

// Record appends an answer record and advances the quiz by one question,
// regardless of correctness.
func (q *QuizState) Record(rec AnswerRecord) {
	q.Answers = append(q.Answers, rec)
	if rec.IsCorrect {
		q.Score++
	}
	q.CurrentIndex++
}

// Percentage returns the score as a rounded percentage of the total.
func (q *QuizState) Percentage() int {
	if q.Total == 0 {
		return 0
	}
	return int(float64(q.Score)/float64(q.Total)*100 + 0.5)
}
