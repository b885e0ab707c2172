package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/copilot-learning/backend/internal/models"
)

// Memory keeps everything in process memory. It backs tests and is the last
// fallback when neither durable store is reachable.
type Memory struct {
	mu           sync.RWMutex
	learners     map[string]models.Learner
	answers      []models.AnswerEvent
	completions  []models.SectionCompletionEvent
	eventIDs     map[string]struct{}
	certificates map[string]models.CertificateRecord
	tombstones   []Tombstone
	nextTomb     int64
	unavailable  bool
}

func NewMemory() *Memory {
	return &Memory{
		learners:     make(map[string]models.Learner),
		eventIDs:     make(map[string]struct{}),
		certificates: make(map[string]models.CertificateRecord),
	}
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Ping(ctx context.Context) error {
	return m.check()
}

// SetUnavailable makes every later call fail with ErrPersistenceUnavailable.
func (m *Memory) SetUnavailable(down bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unavailable = down
}

func (m *Memory) check() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.unavailable {
		return ErrPersistenceUnavailable
	}
	return nil
}

// ── Learners ─────────────────────────────────────────────

func (m *Memory) UpsertLearner(ctx context.Context, l *models.Learner) error {
	if err := m.check(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, existing := range m.learners {
		if id != l.ID && strings.EqualFold(existing.Email, l.Email) {
			return fmt.Errorf("upsert learner: email %s already registered", l.Email)
		}
	}
	m.learners[l.ID] = *l
	return nil
}

func (m *Memory) GetLearner(ctx context.Context, id string) (*models.Learner, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.learners[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &l, nil
}

func (m *Memory) FindLearnerByEmail(ctx context.Context, email string) (*models.Learner, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, l := range m.learners {
		if strings.EqualFold(l.Email, email) {
			found := l
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) TouchLearner(ctx context.Context, id string, at time.Time) error {
	if err := m.check(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.learners[id]
	if !ok {
		return ErrNotFound
	}
	l.LastActive = at
	m.learners[id] = l
	return nil
}

func (m *Memory) DeleteLearner(ctx context.Context, id string) error {
	if err := m.check(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.learners, id)
	delete(m.certificates, id)
	m.dropEvents(id)
	m.addTombstone(id, TombstoneLearner)
	return nil
}

func (m *Memory) ListLearners(ctx context.Context) ([]models.Learner, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Learner, 0, len(m.learners))
	for _, l := range m.learners {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ── Event Logs ───────────────────────────────────────────

func (m *Memory) AppendAnswer(ctx context.Context, ev models.AnswerEvent) error {
	if err := m.check(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, dup := m.eventIDs[ev.ID]; dup {
		return nil
	}
	m.eventIDs[ev.ID] = struct{}{}
	m.answers = append(m.answers, ev)
	return nil
}

func (m *Memory) AppendCompletion(ctx context.Context, ev models.SectionCompletionEvent) error {
	if err := m.check(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, dup := m.eventIDs[ev.ID]; dup {
		return nil
	}
	m.eventIDs[ev.ID] = struct{}{}
	m.completions = append(m.completions, ev)
	return nil
}

func (m *Memory) ListAnswers(ctx context.Context, learnerID string) ([]models.AnswerEvent, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.AnswerEvent{}
	for _, ev := range m.answers {
		if ev.LearnerID == learnerID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *Memory) ListCompletions(ctx context.Context, learnerID string) ([]models.SectionCompletionEvent, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.SectionCompletionEvent{}
	for _, ev := range m.completions {
		if ev.LearnerID == learnerID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *Memory) ListAllAnswers(ctx context.Context) ([]models.AnswerEvent, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]models.AnswerEvent{}, m.answers...), nil
}

func (m *Memory) ListAllCompletions(ctx context.Context) ([]models.SectionCompletionEvent, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]models.SectionCompletionEvent{}, m.completions...), nil
}

func (m *Memory) DeleteProgress(ctx context.Context, learnerID string) error {
	if err := m.check(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.dropEvents(learnerID)
	m.addTombstone(learnerID, TombstoneProgress)
	return nil
}

// dropEvents removes both logs for a learner. Caller holds m.mu.
func (m *Memory) dropEvents(learnerID string) {
	answers := m.answers[:0]
	for _, ev := range m.answers {
		if ev.LearnerID == learnerID {
			delete(m.eventIDs, ev.ID)
			continue
		}
		answers = append(answers, ev)
	}
	m.answers = answers

	completions := m.completions[:0]
	for _, ev := range m.completions {
		if ev.LearnerID == learnerID {
			delete(m.eventIDs, ev.ID)
			continue
		}
		completions = append(completions, ev)
	}
	m.completions = completions
}

// ── Tombstones ───────────────────────────────────────────

// addTombstone records a deletion. Caller holds m.mu.
func (m *Memory) addTombstone(learnerID string, kind TombstoneKind) {
	m.nextTomb++
	m.tombstones = append(m.tombstones, Tombstone{
		ID: m.nextTomb, LearnerID: learnerID, Kind: kind, CreatedAt: time.Now().UTC(),
	})
}

func (m *Memory) ListTombstones(ctx context.Context) ([]Tombstone, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]Tombstone(nil), m.tombstones...), nil
}

func (m *Memory) PurgeTombstones(ctx context.Context, ids []int64) error {
	if err := m.check(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	purge := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		purge[id] = struct{}{}
	}
	kept := m.tombstones[:0]
	for _, t := range m.tombstones {
		if _, ok := purge[t.ID]; !ok {
			kept = append(kept, t)
		}
	}
	m.tombstones = kept
	return nil
}

// ── Certificates ─────────────────────────────────────────

func (m *Memory) GetCertificates(ctx context.Context, learnerID string) (*models.CertificateRecord, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.certificates[learnerID]
	if !ok {
		return emptyRecord(learnerID), nil
	}
	return copyRecord(rec), nil
}

func (m *Memory) SaveCertificates(ctx context.Context, rec *models.CertificateRecord) error {
	if err := m.check(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.certificates[rec.LearnerID] = *copyRecord(*rec)
	return nil
}

func copyRecord(rec models.CertificateRecord) *models.CertificateRecord {
	out := rec
	if rec.Master != nil {
		master := *rec.Master
		out.Master = &master
	}
	out.Sections = append([]models.SectionCertificate{}, rec.Sections...)
	return &out
}
