package store

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/copilot-learning/backend/internal/models"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
	ErrMalformedData          = errors.New("malformed data")
)

// Store is the durable home of learners, their event logs and certificate
// records. Event logs are append-only; DeleteProgress and DeleteLearner are
// the only operations that remove events.
type Store interface {
	Name() string
	Ping(ctx context.Context) error

	UpsertLearner(ctx context.Context, l *models.Learner) error
	GetLearner(ctx context.Context, id string) (*models.Learner, error)
	FindLearnerByEmail(ctx context.Context, email string) (*models.Learner, error)
	TouchLearner(ctx context.Context, id string, at time.Time) error
	DeleteLearner(ctx context.Context, id string) error
	ListLearners(ctx context.Context) ([]models.Learner, error)

	AppendAnswer(ctx context.Context, ev models.AnswerEvent) error
	AppendCompletion(ctx context.Context, ev models.SectionCompletionEvent) error
	ListAnswers(ctx context.Context, learnerID string) ([]models.AnswerEvent, error)
	ListCompletions(ctx context.Context, learnerID string) ([]models.SectionCompletionEvent, error)
	ListAllAnswers(ctx context.Context) ([]models.AnswerEvent, error)
	ListAllCompletions(ctx context.Context) ([]models.SectionCompletionEvent, error)
	DeleteProgress(ctx context.Context, learnerID string) error

	// GetCertificates returns an empty record, not ErrNotFound, for a learner
	// who has earned nothing yet.
	GetCertificates(ctx context.Context, learnerID string) (*models.CertificateRecord, error)
	SaveCertificates(ctx context.Context, rec *models.CertificateRecord) error
}

type TombstoneKind string

const (
	TombstoneLearner  TombstoneKind = "learner"
	TombstoneProgress TombstoneKind = "progress"
)

// Tombstone records a deletion so it can be replayed on another store.
type Tombstone struct {
	ID        int64
	LearnerID string
	Kind      TombstoneKind
	CreatedAt time.Time
}

// TombstoneLog is implemented by stores that remember their deletions.
// The Replicator replays them on the remote before copying anything.
type TombstoneLog interface {
	ListTombstones(ctx context.Context) ([]Tombstone, error)
	PurgeTombstones(ctx context.Context, ids []int64) error
}

// Select pings the remote store and falls back to the local cache, then to
// process memory, when it cannot be reached.
func Select(ctx context.Context, remote, local Store) Store {
	for _, s := range []Store{remote, local} {
		if s == nil {
			continue
		}
		if err := s.Ping(ctx); err != nil {
			log.Printf("[store] %s unreachable: %v", s.Name(), err)
			continue
		}
		log.Printf("[store] using %s store", s.Name())
		return s
	}
	log.Printf("[store] no durable store available, keeping state in memory")
	return NewMemory()
}

// emptyRecord is the certificate record of a learner with nothing earned.
func emptyRecord(learnerID string) *models.CertificateRecord {
	return &models.CertificateRecord{LearnerID: learnerID, Sections: []models.SectionCertificate{}}
}
