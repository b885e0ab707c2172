package progress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/copilot-learning/backend/internal/middleware"
	"github.com/copilot-learning/backend/internal/models"
	"github.com/copilot-learning/backend/internal/store"
	"github.com/gorilla/mux"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

// learnerStore is an in-memory store with learner-1 registered.
func learnerStore(t *testing.T) *store.Memory {
	t.Helper()
	m := store.NewMemory()
	if err := m.UpsertLearner(context.Background(), &models.Learner{ID: "learner-1", Name: "Ada", Email: "ada@example.com"}); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestServiceCompletionRunsHooks(t *testing.T) {
	ctx := context.Background()
	events := learnerStore(t)
	svc := NewService(testBank(t), events, NewMemorySessions(), false)

	var mu sync.Mutex
	var hooked []models.SectionCompletionEvent
	svc.OnComplete(func(ctx context.Context, learnerID string, ev models.SectionCompletionEvent) {
		mu.Lock()
		defer mu.Unlock()
		hooked = append(hooked, ev)
	})

	resp, err := svc.Start(ctx, "learner-1", 2)
	if err != nil {
		t.Fatal(err)
	}
	if resp.CurrentQuestion == nil || resp.CurrentQuestion.ID != "s2q1" || resp.TotalQuestions != 2 {
		t.Fatalf("unexpected start response: %+v", resp)
	}

	first, err := svc.Submit(ctx, "learner-1", "s2q1", "true")
	if err != nil {
		t.Fatal(err)
	}
	if !first.Correct || first.Completion != nil || first.Session.QuestionIndex != 1 {
		t.Errorf("unexpected first answer response: %+v", first)
	}

	last, err := svc.Submit(ctx, "learner-1", "s2q2", "true")
	if err != nil {
		t.Fatal(err)
	}
	if last.Correct || last.CorrectAnswer != "false" || last.Completion == nil {
		t.Fatalf("unexpected last answer response: %+v", last)
	}

	mu.Lock()
	if len(hooked) != 1 || hooked[0].Accuracy != 50 {
		t.Errorf("hooks saw %+v", hooked)
	}
	mu.Unlock()

	if _, err := svc.Current(ctx, "learner-1"); !errors.Is(err, ErrNoSession) {
		t.Errorf("finished session should be cleared, got %v", err)
	}
	if n, _ := svc.ActiveSessions(ctx); n != 0 {
		t.Errorf("active sessions = %d, want 0", n)
	}
}

func TestServiceRestartReplacesAttempt(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testBank(t), learnerStore(t), NewMemorySessions(), false)

	svc.Start(ctx, "learner-1", 1)
	svc.Submit(ctx, "learner-1", "s1q1", "right")

	resp, err := svc.Start(ctx, "learner-1", 1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.QuestionIndex != 0 || resp.Score != 0 {
		t.Errorf("restart should reset progress: %+v", resp)
	}
}

func TestServiceTimerRecordsTimeout(t *testing.T) {
	ctx := context.Background()
	events := learnerStore(t)
	svc := NewService(testBank(t), events, NewMemorySessions(), true)
	svc.SetTickInterval(2 * time.Millisecond)
	defer svc.Shutdown()

	if _, err := svc.Start(ctx, "learner-1", 2); err != nil {
		t.Fatal(err)
	}

	// Both questions time out; the section completes on its own.
	waitFor(t, func() bool {
		c, _ := events.ListCompletions(ctx, "learner-1")
		return len(c) == 1
	})

	answers, _ := events.ListAnswers(ctx, "learner-1")
	if len(answers) != 2 {
		t.Fatalf("expected 2 answer events, got %d", len(answers))
	}
	for _, a := range answers {
		if !a.TimedOut || a.IsCorrect {
			t.Errorf("expected timed-out incorrect answer, got %+v", a)
		}
	}
	completions, _ := events.ListCompletions(ctx, "learner-1")
	if completions[0].Accuracy != 0 {
		t.Errorf("accuracy = %d, want 0", completions[0].Accuracy)
	}
}

func TestServiceStaleTimerDoesNotRecord(t *testing.T) {
	ctx := context.Background()
	events := learnerStore(t)
	svc := NewService(testBank(t), events, NewMemorySessions(), true)
	svc.SetTickInterval(20 * time.Millisecond)
	defer svc.Shutdown()

	svc.Start(ctx, "learner-1", 2)
	if _, err := svc.Submit(ctx, "learner-1", "s2q1", "true"); err != nil {
		t.Fatal(err)
	}
	svc.Abandon(ctx, "learner-1")

	time.Sleep(150 * time.Millisecond)

	answers, _ := events.ListAnswers(ctx, "learner-1")
	if len(answers) != 1 {
		t.Fatalf("expected only the submitted answer, got %d events", len(answers))
	}
	if answers[0].TimedOut {
		t.Error("a superseded countdown recorded a timeout")
	}
}

func TestServiceCurrentReportsRemainingTime(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testBank(t), learnerStore(t), NewMemorySessions(), true)
	defer svc.Shutdown()

	svc.Start(ctx, "learner-1", 1)
	resp, err := svc.Current(ctx, "learner-1")
	if err != nil {
		t.Fatal(err)
	}
	if resp.TimeRemaining <= 0 || resp.TimeRemaining > 30 {
		t.Errorf("time remaining = %d", resp.TimeRemaining)
	}
}

func TestServiceRearmsAfterRestart(t *testing.T) {
	ctx := context.Background()
	sessions := NewMemorySessions()
	bank := testBank(t)

	first := NewService(bank, learnerStore(t), sessions, false)
	first.Start(ctx, "learner-1", 1)

	// A second process sharing the session store picks the attempt up.
	second := NewService(bank, learnerStore(t), sessions, true)
	defer second.Shutdown()
	resp, err := second.Current(ctx, "learner-1")
	if err != nil {
		t.Fatal(err)
	}
	if resp.CurrentQuestion == nil || resp.TimeRemaining == 0 {
		t.Errorf("expected a re-armed countdown, got %+v", resp)
	}
}

func newTestRouter(svc *Service, learnerID string) http.Handler {
	r := mux.NewRouter()
	NewHandler(svc).RegisterRoutes(r)
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.ServeHTTP(w, req.WithContext(middleware.WithLearnerID(req.Context(), learnerID)))
	})
}

func TestHandlerSessionFlow(t *testing.T) {
	svc := NewService(testBank(t), learnerStore(t), NewMemorySessions(), false)
	h := newTestRouter(svc, "learner-1")

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			json.NewEncoder(&buf).Encode(body)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
		return rec
	}

	if rec := do("GET", "/sessions/current", nil); rec.Code != http.StatusNotFound {
		t.Errorf("no session: status = %d, want 404", rec.Code)
	}
	if rec := do("POST", "/sessions", models.StartSessionRequest{SectionID: 0}); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid section id: status = %d, want 400", rec.Code)
	}
	if rec := do("POST", "/sessions", models.StartSessionRequest{SectionID: 9}); rec.Code != http.StatusNotFound {
		t.Errorf("unknown section: status = %d, want 404", rec.Code)
	}

	rec := do("POST", "/sessions", models.StartSessionRequest{SectionID: 2})
	if rec.Code != http.StatusCreated {
		t.Fatalf("start: status = %d body=%s", rec.Code, rec.Body.String())
	}

	rec = do("POST", "/sessions/current/answers", models.SubmitAnswerRequest{QuestionID: "s2q1", Answer: "true"})
	if rec.Code != http.StatusOK {
		t.Fatalf("submit: status = %d", rec.Code)
	}
	var resp models.SubmitAnswerResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if !resp.Correct {
		t.Error("expected a correct answer")
	}

	rec = do("POST", "/sessions/current/answers", models.SubmitAnswerRequest{QuestionID: "s2q1", Answer: "true"})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate: status = %d, want 409", rec.Code)
	}

	if rec := do("DELETE", "/sessions/current", nil); rec.Code != http.StatusNoContent {
		t.Errorf("abandon: status = %d", rec.Code)
	}
	if rec := do("GET", "/sessions/current", nil); rec.Code != http.StatusNotFound {
		t.Errorf("after abandon: status = %d, want 404", rec.Code)
	}
}

func TestServiceStartRequiresLearner(t *testing.T) {
	ctx := context.Background()
	m := learnerStore(t)
	svc := NewService(testBank(t), m, NewMemorySessions(), false)

	if _, err := svc.Start(ctx, "nobody", 1); !errors.Is(err, ErrLearnerNotFound) {
		t.Errorf("unknown learner: got %v, want ErrLearnerNotFound", err)
	}

	// A store outage does not block the quiz.
	m.SetUnavailable(true)
	if _, err := svc.Start(ctx, "learner-1", 1); err != nil {
		t.Errorf("start with the store down: %v", err)
	}
}

func TestHandlerRejectsDeletedLearner(t *testing.T) {
	ctx := context.Background()
	m := learnerStore(t)
	svc := NewService(testBank(t), m, NewMemorySessions(), false)
	h := newTestRouter(svc, "learner-1")

	start := func() int {
		var buf bytes.Buffer
		json.NewEncoder(&buf).Encode(models.StartSessionRequest{SectionID: 1})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("POST", "/sessions", &buf))
		return rec.Code
	}

	if code := start(); code != http.StatusCreated {
		t.Fatalf("start: status = %d", code)
	}
	if err := m.DeleteLearner(ctx, "learner-1"); err != nil {
		t.Fatal(err)
	}
	if code := start(); code != http.StatusNotFound {
		t.Errorf("start after account deletion: status = %d, want 404", code)
	}
	answers, _ := m.ListAnswers(ctx, "learner-1")
	if len(answers) != 0 {
		t.Errorf("deleted learner has %d answer events", len(answers))
	}
}

// brokenSessions hands back a session that cannot be restored and fails to
// delete it.
type brokenSessions struct {
	mu      sync.Mutex
	deletes int
}

func (b *brokenSessions) Name() string { return "broken" }

func (b *brokenSessions) Get(ctx context.Context, learnerID string) (*Session, error) {
	return &Session{LearnerID: learnerID, SectionID: 42, State: StateInProgress}, nil
}

func (b *brokenSessions) Save(ctx context.Context, sess *Session) error { return nil }

func (b *brokenSessions) Delete(ctx context.Context, learnerID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deletes++
	return errors.New("session store offline")
}

func (b *brokenSessions) Count(ctx context.Context) (int, error) { return 0, nil }

func TestServiceDiscardsUnusableSession(t *testing.T) {
	ctx := context.Background()
	sessions := &brokenSessions{}
	svc := NewService(testBank(t), learnerStore(t), sessions, false)

	if _, err := svc.Current(ctx, "learner-1"); !errors.Is(err, ErrNoSession) {
		t.Errorf("Current() error = %v, want ErrNoSession", err)
	}
	if _, err := svc.Submit(ctx, "learner-1", "s1q1", "right"); !errors.Is(err, ErrNoSession) {
		t.Errorf("Submit() error = %v, want ErrNoSession", err)
	}

	sessions.mu.Lock()
	defer sessions.mu.Unlock()
	if sessions.deletes != 2 {
		t.Errorf("expected a delete attempt per load, got %d", sessions.deletes)
	}
}
