package models

type QuestionKind string

const (
	KindMultipleChoice QuestionKind = "multiple-choice"
	KindTrueFalse      QuestionKind = "true-false"
)

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

type Category string

const (
	CategoryWarmup    Category = "warmup"
	CategoryGeneral   Category = "general"
	CategoryQuickfire Category = "quickfire"
)

// CorrectAnswer is either an IndexAnswer (multiple-choice) or a
// LiteralAnswer (true-false).
type CorrectAnswer interface {
	correctAnswer()
}

// IndexAnswer points at the correct entry of Question.Options.
type IndexAnswer int

// LiteralAnswer is the exact expected submission, e.g. "true".
type LiteralAnswer string

func (IndexAnswer) correctAnswer()   {}
func (LiteralAnswer) correctAnswer() {}

type Question struct {
	ID          string
	Prompt      string
	Kind        QuestionKind
	Options     []string
	Correct     CorrectAnswer
	Explanation string
	TimeLimit   int // seconds
	Points      int
	Category    Category
}

// CorrectText renders the correct answer the way a learner would have submitted it.
func (q Question) CorrectText() string {
	switch c := q.Correct.(type) {
	case IndexAnswer:
		if int(c) >= 0 && int(c) < len(q.Options) {
			return q.Options[c]
		}
	case LiteralAnswer:
		return string(c)
	}
	return ""
}

// View strips the answer key before a question is sent to a learner.
func (q Question) View() QuestionView {
	return QuestionView{
		ID:        q.ID,
		Prompt:    q.Prompt,
		Kind:      q.Kind,
		Options:   q.Options,
		TimeLimit: q.TimeLimit,
		Points:    q.Points,
		Category:  q.Category,
	}
}

type QuestionView struct {
	ID        string       `json:"id"`
	Prompt    string       `json:"question"`
	Kind      QuestionKind `json:"type"`
	Options   []string     `json:"options,omitempty"`
	TimeLimit int          `json:"time_limit"`
	Points    int          `json:"points"`
	Category  Category     `json:"category"`
}

type Section struct {
	ID          int
	Title       string
	Description string
	Difficulty  Difficulty
	Duration    float64 // minutes
	Questions   []Question
}

func (s Section) View() SectionView {
	views := make([]QuestionView, len(s.Questions))
	for i, q := range s.Questions {
		views[i] = q.View()
	}
	return SectionView{
		ID:            s.ID,
		Title:         s.Title,
		Description:   s.Description,
		Difficulty:    s.Difficulty,
		Duration:      s.Duration,
		QuestionCount: len(s.Questions),
		Questions:     views,
	}
}

type SectionView struct {
	ID            int            `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Difficulty    Difficulty     `json:"difficulty"`
	Duration      float64        `json:"duration"`
	QuestionCount int            `json:"question_count"`
	Questions     []QuestionView `json:"questions,omitempty"`
}
