package progress

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/copilot-learning/backend/internal/catalog"
	"github.com/copilot-learning/backend/internal/models"
	"github.com/copilot-learning/backend/internal/store"
	"github.com/copilot-learning/backend/internal/timer"
)

// ErrLearnerNotFound is returned by Start for an account that no longer exists.
var ErrLearnerNotFound = errors.New("learner not found")

// Store is the persistence the service needs: the event log plus account lookup.
type Store interface {
	EventLog
	GetLearner(ctx context.Context, id string) (*models.Learner, error)
}

// CompletionHook runs after a learner finishes a section, outside the
// service lock.
type CompletionHook func(ctx context.Context, learnerID string, ev models.SectionCompletionEvent)

// Service keeps one active section attempt per learner and, when timed,
// a countdown for the question on screen.
type Service struct {
	bank     *catalog.Bank
	events   Store
	sessions SessionStore
	timed    bool
	tick     time.Duration

	mu     sync.Mutex
	timers map[string]*questionTimer
	hooks  []CompletionHook
}

type questionTimer struct {
	questionID string
	timer      *timer.Timer
}

func NewService(bank *catalog.Bank, events Store, sessions SessionStore, timed bool) *Service {
	return &Service{
		bank:     bank,
		events:   events,
		sessions: sessions,
		timed:    timed,
		tick:     time.Second,
		timers:   make(map[string]*questionTimer),
	}
}

// SetTickInterval changes how long one timer second lasts. Tests shorten it.
func (s *Service) SetTickInterval(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tick = d
}

func (s *Service) OnComplete(hook CompletionHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, hook)
}

// Start begins sectionID for the learner, replacing any attempt in progress.
// Deleted accounts are refused; an unreachable store is not.
func (s *Service) Start(ctx context.Context, learnerID string, sectionID int) (*models.SessionResponse, error) {
	if _, err := s.events.GetLearner(ctx, learnerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrLearnerNotFound
		}
		log.Printf("[progress] learner lookup failed for %s, starting anyway: %v", learnerID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tracker := NewTracker(s.bank, s.events, learnerID)
	if err := tracker.Start(sectionID); err != nil {
		return nil, err
	}

	s.stopTimer(learnerID)
	sess := tracker.Session()
	if err := s.sessions.Save(ctx, &sess); err != nil {
		return nil, fmt.Errorf("start section: %w", err)
	}

	if q := tracker.Current(); q != nil {
		s.arm(learnerID, q.ID, q.TimeLimit)
	}
	log.Printf("[progress] %s started section %d", learnerID, sectionID)

	resp := s.view(tracker)
	return &resp, nil
}

// Current returns the learner's active attempt.
func (s *Service) Current(ctx context.Context, learnerID string) (*models.SessionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tracker, err := s.load(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	// Sessions outlive the process when stored in redis; re-arm a lost countdown.
	if q := tracker.Current(); q != nil && s.timed && s.timers[learnerID] == nil {
		elapsed := wholeSeconds(time.Since(tracker.session.QuestionStartedAt))
		remaining := q.TimeLimit - elapsed
		if remaining < 1 {
			remaining = 1
		}
		s.arm(learnerID, q.ID, remaining)
	}

	resp := s.view(tracker)
	return &resp, nil
}

func (s *Service) Submit(ctx context.Context, learnerID, questionID, answer string) (*models.SubmitAnswerResponse, error) {
	return s.record(ctx, learnerID, questionID, answer, nil)
}

// Abandon discards the learner's active attempt. Events already recorded stay.
func (s *Service) Abandon(ctx context.Context, learnerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTimer(learnerID)
	return s.sessions.Delete(ctx, learnerID)
}

// ActiveSessions counts learners with an attempt in progress.
func (s *Service) ActiveSessions(ctx context.Context) (int, error) {
	return s.sessions.Count(ctx)
}

// Shutdown stops every running countdown.
func (s *Service) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.timers {
		s.stopTimer(id)
	}
}

// record applies a submission. A non-nil owner marks a timeout fired by that
// countdown; it is dropped unless the countdown is still the learner's current one.
func (s *Service) record(ctx context.Context, learnerID, questionID, answer string, owner *questionTimer) (*models.SubmitAnswerResponse, error) {
	s.mu.Lock()

	if owner != nil && s.timers[learnerID] != owner {
		s.mu.Unlock()
		return nil, fmt.Errorf("timeout for %s: %w", questionID, ErrQuestionMismatch)
	}

	tracker, err := s.load(ctx, learnerID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	var res *Result
	if owner != nil {
		res, err = tracker.Expire(ctx, questionID)
	} else {
		res, err = tracker.Submit(ctx, questionID, answer)
	}
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	s.stopTimer(learnerID)
	if res.Completion != nil {
		if err := s.sessions.Delete(ctx, learnerID); err != nil {
			log.Printf("[progress] failed to clear finished session for %s: %v", learnerID, err)
		}
	} else {
		sess := tracker.Session()
		if err := s.sessions.Save(ctx, &sess); err != nil {
			log.Printf("[progress] failed to save session for %s: %v", learnerID, err)
		}
		if q := tracker.Current(); q != nil {
			s.arm(learnerID, q.ID, q.TimeLimit)
		}
	}

	resp := &models.SubmitAnswerResponse{
		Correct:       res.Answer.IsCorrect,
		CorrectAnswer: res.Question.CorrectText(),
		Explanation:   res.Question.Explanation,
		Session:       s.view(tracker),
		Completion:    res.Completion,
	}
	hooks := append([]CompletionHook(nil), s.hooks...)
	s.mu.Unlock()

	if res.Completion != nil {
		log.Printf("[progress] %s completed section %d: %d/%d correct",
			learnerID, res.Completion.SectionID, res.Completion.CorrectCount, res.Completion.TotalQuestions)
		for _, hook := range hooks {
			hook(ctx, learnerID, *res.Completion)
		}
	}
	return resp, nil
}

// load restores the learner's tracker. Caller holds s.mu.
func (s *Service) load(ctx context.Context, learnerID string) (*Tracker, error) {
	sess, err := s.sessions.Get(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	tracker, err := Restore(s.bank, s.events, *sess)
	if err != nil {
		log.Printf("[progress] discarding unusable session for %s: %v", learnerID, err)
		if err := s.sessions.Delete(ctx, learnerID); err != nil {
			log.Printf("[progress] unusable session for %s not removed: %v", learnerID, err)
		}
		return nil, ErrNoSession
	}
	return tracker, nil
}

// arm starts the countdown for questionID. Caller holds s.mu.
func (s *Service) arm(learnerID, questionID string, seconds int) {
	if !s.timed || seconds <= 0 {
		return
	}
	s.stopTimer(learnerID)

	qt := &questionTimer{questionID: questionID}
	qt.timer = timer.NewWithInterval(s.tick, nil, func() {
		s.expire(learnerID, qt)
	})
	s.timers[learnerID] = qt
	qt.timer.Start(seconds)
}

// stopTimer cancels the learner's countdown. Caller holds s.mu.
func (s *Service) stopTimer(learnerID string) {
	if qt, ok := s.timers[learnerID]; ok {
		qt.timer.Stop()
		delete(s.timers, learnerID)
	}
}

func (s *Service) expire(learnerID string, qt *questionTimer) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := s.record(ctx, learnerID, qt.questionID, "", qt)
	switch {
	case err == nil:
		log.Printf("[timer] %s ran out of time on %s", learnerID, qt.questionID)
	case errors.Is(err, ErrQuestionMismatch), errors.Is(err, ErrDuplicateAnswer),
		errors.Is(err, ErrNoSession), errors.Is(err, ErrInvalidState):
		// The learner moved on before the countdown fired.
	default:
		log.Printf("[timer] failed to record timeout for %s: %v", learnerID, err)
	}
}

// view renders a tracker for the API. Caller holds s.mu.
func (s *Service) view(t *Tracker) models.SessionResponse {
	sess := t.session
	resp := models.SessionResponse{
		SectionID:     sess.SectionID,
		State:         string(sess.State),
		QuestionIndex: sess.QuestionIndex,
		Score:         sess.Score,
		CorrectCount:  sess.CorrectCount,
	}
	if sec := t.Section(); sec != nil {
		resp.SectionTitle = sec.Title
		resp.TotalQuestions = len(sec.Questions)
	}
	if q := t.Current(); q != nil {
		v := q.View()
		resp.CurrentQuestion = &v
		if qt, ok := s.timers[sess.LearnerID]; ok && qt.questionID == q.ID {
			resp.TimeRemaining = qt.timer.Remaining()
		}
	}
	return resp
}
