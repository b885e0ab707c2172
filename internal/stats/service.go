package stats

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/copilot-learning/backend/internal/catalog"
	"github.com/copilot-learning/backend/internal/models"
	"github.com/copilot-learning/backend/internal/store"
)

const NoDataMessage = "No data found. Complete a section to see your statistics."

// ActivityCounter reports how many learners have an attempt in progress.
type ActivityCounter interface {
	ActiveSessions(ctx context.Context) (int, error)
}

type Service struct {
	store    store.Store
	activity ActivityCounter
	now      func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewService(s store.Store, activity ActivityCounter) *Service {
	return &Service{
		store:    s,
		activity: activity,
		now:      time.Now,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Summary recomputes the learner's statistics. Store failures are logged and
// reported as an empty history.
func (s *Service) Summary(ctx context.Context, learnerID string) *models.SummaryResponse {
	completions, answers := s.load(ctx, learnerID)
	summary := ComputeSummary(completions, answers, s.now())

	resp := &models.SummaryResponse{Summary: summary, HasData: len(answers) > 0 || len(completions) > 0}
	if !resp.HasData {
		resp.Message = NoDataMessage
	}
	return resp
}

// History returns every recorded event, duplicates included.
func (s *Service) History(ctx context.Context, learnerID string) *models.HistoryResponse {
	completions, answers := s.load(ctx, learnerID)
	return &models.HistoryResponse{Completions: completions, Answers: answers}
}

func (s *Service) load(ctx context.Context, learnerID string) ([]models.SectionCompletionEvent, []models.AnswerEvent) {
	completions, err := s.store.ListCompletions(ctx, learnerID)
	if err != nil {
		log.Printf("[stats] failed to read completions for %s: %v", learnerID, err)
		completions = []models.SectionCompletionEvent{}
	}
	answers, err := s.store.ListAnswers(ctx, learnerID)
	if err != nil {
		log.Printf("[stats] failed to read answers for %s: %v", learnerID, err)
		answers = []models.AnswerEvent{}
	}
	return completions, answers
}

// ClearProgress deletes the learner's event logs. The learner and any
// certificate record are kept.
func (s *Service) ClearProgress(ctx context.Context, learnerID string) error {
	if err := s.store.DeleteProgress(ctx, learnerID); err != nil {
		return fmt.Errorf("clear progress: %w", err)
	}
	log.Printf("[stats] cleared progress for %s", learnerID)
	return nil
}

// Dashboard aggregates all learners. When the store cannot be read it returns
// simulated figures flagged as such.
func (s *Service) Dashboard(ctx context.Context) models.DashboardStats {
	learners, err := s.store.ListLearners(ctx)
	if err != nil {
		log.Printf("[stats] dashboard falling back to simulated figures: %v", err)
		return s.simulated()
	}
	completions, err := s.store.ListAllCompletions(ctx)
	if err != nil {
		log.Printf("[stats] dashboard falling back to simulated figures: %v", err)
		return s.simulated()
	}
	answers, err := s.store.ListAllAnswers(ctx)
	if err != nil {
		log.Printf("[stats] dashboard falling back to simulated figures: %v", err)
		return s.simulated()
	}

	active := 0
	if s.activity != nil {
		if active, err = s.activity.ActiveSessions(ctx); err != nil {
			log.Printf("[stats] failed to count active sessions: %v", err)
			active = 0
		}
	}

	d := Aggregate(learners, completions, answers)
	d.ActiveParticipants = active
	d.CurrentActivity = activityLabel(active)
	d.GeneratedAt = s.now()
	return d
}

// Aggregate computes the store-derived dashboard figures.
//
// AverageScore is the mean accuracy over each learner's latest completion per
// section. CompletionRate is the share of learners who answered anything and
// went on to finish every section; DropOffRate is its complement.
func Aggregate(learners []models.Learner, completions []models.SectionCompletionEvent, answers []models.AnswerEvent) models.DashboardStats {
	d := models.DashboardStats{TotalParticipants: len(learners)}

	byLearner := make(map[string][]models.SectionCompletionEvent)
	for _, c := range completions {
		byLearner[c.LearnerID] = append(byLearner[c.LearnerID], c)
	}

	accuracySum, accuracyCount, finished := 0, 0, 0
	for _, events := range byLearner {
		latest := LatestPerSection(events)
		for _, c := range latest {
			accuracySum += c.Accuracy
			accuracyCount++
		}
		if len(latest) >= catalog.SectionCount {
			finished++
		}
	}
	d.AverageScore = roundDiv(accuracySum, accuracyCount)

	started := make(map[string]struct{})
	for _, a := range answers {
		started[a.LearnerID] = struct{}{}
	}
	if len(started) > 0 {
		d.CompletionRate = roundDiv(100*finished, len(started))
		if d.CompletionRate > 100 {
			d.CompletionRate = 100
		}
		d.DropOffRate = 100 - d.CompletionRate
	}
	return d
}

func activityLabel(active int) string {
	if active > 0 {
		return "Learning in Progress"
	}
	return "No Active Sessions"
}

func (s *Service) simulated() models.DashboardStats {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()

	completion := s.rng.Intn(30) + 70
	active := s.rng.Intn(40) + 15
	return models.DashboardStats{
		TotalParticipants:  s.rng.Intn(50) + 20,
		ActiveParticipants: active,
		AverageScore:       s.rng.Intn(40) + 60,
		CompletionRate:     completion,
		DropOffRate:        100 - completion,
		CurrentActivity:    activityLabel(active),
		Simulated:          true,
		GeneratedAt:        s.now(),
	}
}
