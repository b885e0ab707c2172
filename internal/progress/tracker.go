package progress

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/copilot-learning/backend/internal/catalog"
	"github.com/copilot-learning/backend/internal/models"
	"github.com/google/uuid"
)

type State string

const (
	StateNotStarted State = "not_started"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

var (
	ErrSectionNotFound  = catalog.ErrSectionNotFound
	ErrInvalidState     = errors.New("invalid session state")
	ErrDuplicateAnswer  = errors.New("question already answered")
	ErrQuestionMismatch = errors.New("answer does not match the current question")
	ErrNoSession        = errors.New("no active session")
)

// EventLog receives the answer and completion events a tracker emits.
type EventLog interface {
	AppendAnswer(ctx context.Context, ev models.AnswerEvent) error
	AppendCompletion(ctx context.Context, ev models.SectionCompletionEvent) error
}

// Session is the serializable state of one section attempt.
type Session struct {
	LearnerID         string     `json:"learner_id"`
	SectionID         int        `json:"section_id"`
	State             State      `json:"state"`
	QuestionIndex     int        `json:"question_index"`
	Score             int        `json:"score"`
	CorrectCount      int        `json:"questions_correct"`
	Answered          []string   `json:"answered"`
	StartedAt         time.Time  `json:"started_at"`
	QuestionStartedAt time.Time  `json:"question_started_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
}

// Result describes the outcome of one submission.
type Result struct {
	Question   *models.Question
	Answer     models.AnswerEvent
	Completion *models.SectionCompletionEvent
}

// Tracker drives one learner through one section. It is not safe for
// concurrent use; the Service serializes access per learner.
type Tracker struct {
	bank    *catalog.Bank
	events  EventLog
	now     func() time.Time
	section *models.Section
	session Session
}

func NewTracker(bank *catalog.Bank, events EventLog, learnerID string) *Tracker {
	return &Tracker{
		bank:    bank,
		events:  events,
		now:     time.Now,
		session: Session{LearnerID: learnerID, State: StateNotStarted},
	}
}

// Restore rebuilds a tracker from a saved session.
func Restore(bank *catalog.Bank, events EventLog, sess Session) (*Tracker, error) {
	t := &Tracker{bank: bank, events: events, now: time.Now, session: sess}
	if sess.State == StateNotStarted {
		return t, nil
	}
	section, err := bank.GetSection(sess.SectionID)
	if err != nil {
		return nil, err
	}
	if sess.QuestionIndex < 0 || sess.QuestionIndex > len(section.Questions) {
		return nil, fmt.Errorf("restore session: question index %d out of range", sess.QuestionIndex)
	}
	t.section = section
	return t, nil
}

func (t *Tracker) Start(sectionID int) error {
	if t.session.State != StateNotStarted {
		return fmt.Errorf("start section %d: %w", sectionID, ErrInvalidState)
	}
	section, err := t.bank.GetSection(sectionID)
	if err != nil {
		return err
	}

	now := t.now()
	t.section = section
	t.session = Session{
		LearnerID:         t.session.LearnerID,
		SectionID:         sectionID,
		State:             StateInProgress,
		Answered:          []string{},
		StartedAt:         now,
		QuestionStartedAt: now,
	}
	return nil
}

// Submit evaluates answer against the current question and advances.
func (t *Tracker) Submit(ctx context.Context, questionID, answer string) (*Result, error) {
	return t.record(ctx, questionID, answer, false)
}

// Expire records a timeout for questionID: an empty, incorrect answer.
func (t *Tracker) Expire(ctx context.Context, questionID string) (*Result, error) {
	return t.record(ctx, questionID, "", true)
}

func (t *Tracker) record(ctx context.Context, questionID, answer string, timedOut bool) (*Result, error) {
	if t.session.State != StateInProgress {
		return nil, fmt.Errorf("submit answer: %w", ErrInvalidState)
	}

	q := t.Current()
	if q == nil {
		return nil, fmt.Errorf("submit answer: %w", ErrInvalidState)
	}
	if questionID != q.ID {
		for _, id := range t.session.Answered {
			if id == questionID {
				return nil, fmt.Errorf("question %s: %w", questionID, ErrDuplicateAnswer)
			}
		}
		return nil, fmt.Errorf("question %s, expected %s: %w", questionID, q.ID, ErrQuestionMismatch)
	}

	now := t.now()
	correct := !timedOut && catalog.Evaluate(q, answer)
	if correct {
		t.session.Score += q.Points
		t.session.CorrectCount++
	}

	ev := models.AnswerEvent{
		ID:           uuid.NewString(),
		LearnerID:    t.session.LearnerID,
		SectionID:    t.session.SectionID,
		QuestionID:   q.ID,
		Answer:       answer,
		IsCorrect:    correct,
		ResponseTime: wholeSeconds(now.Sub(t.session.QuestionStartedAt)),
		TimedOut:     timedOut,
		Timestamp:    now,
	}
	if err := t.events.AppendAnswer(ctx, ev); err != nil {
		log.Printf("[progress] failed to record answer for %s: %v", t.session.LearnerID, err)
	}

	t.session.Answered = append(t.session.Answered, q.ID)
	t.session.QuestionIndex++
	t.session.QuestionStartedAt = now

	res := &Result{Question: q, Answer: ev}
	if t.session.QuestionIndex >= len(t.section.Questions) {
		res.Completion = t.complete(ctx, now)
	}
	return res, nil
}

func (t *Tracker) complete(ctx context.Context, now time.Time) *models.SectionCompletionEvent {
	t.session.State = StateCompleted
	t.session.CompletedAt = &now

	total := len(t.section.Questions)
	ev := &models.SectionCompletionEvent{
		ID:             uuid.NewString(),
		LearnerID:      t.session.LearnerID,
		SectionID:      t.section.ID,
		SectionTitle:   t.section.Title,
		TotalQuestions: total,
		CorrectCount:   t.session.CorrectCount,
		Score:          t.session.Score,
		Accuracy:       Accuracy(t.session.CorrectCount, total),
		TimeSpent:      wholeSeconds(now.Sub(t.session.StartedAt)),
		CompletedAt:    now,
	}
	if err := t.events.AppendCompletion(ctx, *ev); err != nil {
		log.Printf("[progress] failed to record completion of section %d for %s: %v",
			t.section.ID, t.session.LearnerID, err)
	}
	return ev
}

// Current returns the question awaiting an answer, or nil outside InProgress.
func (t *Tracker) Current() *models.Question {
	if t.session.State != StateInProgress || t.section == nil {
		return nil
	}
	if t.session.QuestionIndex >= len(t.section.Questions) {
		return nil
	}
	return &t.section.Questions[t.session.QuestionIndex]
}

func (t *Tracker) Section() *models.Section { return t.section }

func (t *Tracker) Session() Session {
	s := t.session
	s.Answered = append([]string{}, t.session.Answered...)
	return s
}

// Accuracy is round(correct/total*100), 0 for an empty denominator.
func Accuracy(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

func wholeSeconds(d time.Duration) int {
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}
