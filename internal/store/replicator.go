package store

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/copilot-learning/backend/internal/models"
	"github.com/robfig/cron/v3"
)

// Replicator copies the local cache into the remote store on a cron schedule
// once the remote store answers a ping. Event ids make every copy idempotent.
type Replicator struct {
	local    Store
	remote   Store
	schedule string
	cron     *cron.Cron

	mu       sync.Mutex
	prepare  func(ctx context.Context) error
	prepared bool
}

type SyncReport struct {
	Deletions    int `json:"deletions"`
	Learners     int `json:"learners"`
	Answers      int `json:"answers"`
	Completions  int `json:"completions"`
	Certificates int `json:"certificates"`
}

func NewReplicator(local, remote Store, schedule string) *Replicator {
	return &Replicator{
		local:    local,
		remote:   remote,
		schedule: schedule,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
	}
}

// Prepare sets a step that must succeed once against a reachable remote
// before anything is copied, e.g. running its migrations.
func (r *Replicator) Prepare(fn func(ctx context.Context) error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prepare = fn
	r.prepared = false
}

// Start registers the sync job and stops the scheduler when ctx is cancelled.
func (r *Replicator) Start(ctx context.Context) error {
	_, err := r.cron.AddFunc(r.schedule, func() {
		runCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()

		report, err := r.SyncOnce(runCtx)
		if err != nil {
			log.Printf("[sync] skipped: %v", err)
			return
		}
		if report.Deletions+report.Answers+report.Completions+report.Learners > 0 {
			log.Printf("[sync] replayed %d deletions, copied %d learners, %d answers, %d completions, %d certificate records",
				report.Deletions, report.Learners, report.Answers, report.Completions, report.Certificates)
		}
	})
	if err != nil {
		return fmt.Errorf("add sync job: %w", err)
	}

	log.Printf("[sync] started schedule=%q %s -> %s", r.schedule, r.local.Name(), r.remote.Name())
	r.cron.Start()

	go func() {
		<-ctx.Done()
		<-r.cron.Stop().Done()
		log.Println("[sync] stopped")
	}()
	return nil
}

// SyncOnce performs one full copy. Learners go first so event rows always
// have a parent row on the remote side.
func (r *Replicator) SyncOnce(ctx context.Context) (SyncReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var report SyncReport
	if err := r.remote.Ping(ctx); err != nil {
		return report, err
	}
	if r.prepare != nil && !r.prepared {
		if err := r.prepare(ctx); err != nil {
			return report, fmt.Errorf("prepare %s: %w", r.remote.Name(), err)
		}
		r.prepared = true
	}

	deleted, err := r.replayDeletions(ctx)
	report.Deletions = deleted
	if err != nil {
		return report, err
	}

	learners, err := r.local.ListLearners(ctx)
	if err != nil {
		return report, fmt.Errorf("read local learners: %w", err)
	}
	for i := range learners {
		if err := r.remote.UpsertLearner(ctx, &learners[i]); err != nil {
			return report, fmt.Errorf("copy learner %s: %w", learners[i].ID, err)
		}
		report.Learners++
	}

	answers, err := r.local.ListAllAnswers(ctx)
	if err != nil {
		return report, fmt.Errorf("read local answers: %w", err)
	}
	for _, ev := range answers {
		if err := r.remote.AppendAnswer(ctx, ev); err != nil {
			return report, fmt.Errorf("copy answer %s: %w", ev.ID, err)
		}
		report.Answers++
	}

	completions, err := r.local.ListAllCompletions(ctx)
	if err != nil {
		return report, fmt.Errorf("read local completions: %w", err)
	}
	for _, ev := range completions {
		if err := r.remote.AppendCompletion(ctx, ev); err != nil {
			return report, fmt.Errorf("copy completion %s: %w", ev.ID, err)
		}
		report.Completions++
	}

	for _, l := range learners {
		local, err := r.local.GetCertificates(ctx, l.ID)
		if err != nil {
			return report, fmt.Errorf("read local certificates: %w", err)
		}
		if !local.HasMaster() && len(local.Sections) == 0 {
			continue
		}
		remote, err := r.remote.GetCertificates(ctx, l.ID)
		if err != nil {
			return report, fmt.Errorf("read remote certificates: %w", err)
		}
		if err := r.remote.SaveCertificates(ctx, MergeCertificates(remote, local)); err != nil {
			return report, fmt.Errorf("copy certificates %s: %w", l.ID, err)
		}
		report.Certificates++
	}

	return report, nil
}

// replayDeletions applies the cache's tombstones to the remote, oldest first,
// and purges the ones applied. Copying afterwards restores anything the
// learner recorded locally after a progress reset.
func (r *Replicator) replayDeletions(ctx context.Context) (int, error) {
	tl, ok := r.local.(TombstoneLog)
	if !ok {
		return 0, nil
	}
	tombstones, err := tl.ListTombstones(ctx)
	if err != nil {
		return 0, fmt.Errorf("read local tombstones: %w", err)
	}

	applied := make([]int64, 0, len(tombstones))
	for _, t := range tombstones {
		switch t.Kind {
		case TombstoneLearner:
			err = r.remote.DeleteLearner(ctx, t.LearnerID)
		case TombstoneProgress:
			err = r.remote.DeleteProgress(ctx, t.LearnerID)
		default:
			log.Printf("[sync] skipping tombstone %d with unknown kind %q", t.ID, t.Kind)
			err = nil
		}
		if err != nil {
			break
		}
		applied = append(applied, t.ID)
	}

	if purgeErr := tl.PurgeTombstones(ctx, applied); purgeErr != nil {
		return len(applied), fmt.Errorf("purge tombstones: %w", purgeErr)
	}
	if err != nil {
		return len(applied), fmt.Errorf("replay deletion: %w", err)
	}
	return len(applied), nil
}

// MergeCertificates combines two records for the same learner. A master
// certificate on either side survives, keeping the earliest earn time and the
// larger download count; per section the later snapshot wins.
func MergeCertificates(a, b *models.CertificateRecord) *models.CertificateRecord {
	out := emptyRecord(a.LearnerID)

	switch {
	case a.HasMaster() && b.HasMaster():
		m := *a.Master
		if b.Master.EarnedAt.Before(m.EarnedAt) {
			m.EarnedAt = b.Master.EarnedAt
		}
		if b.Master.DownloadCount > m.DownloadCount {
			m.DownloadCount = b.Master.DownloadCount
			m.LastDownloadedAt = b.Master.LastDownloadedAt
		}
		m.IsPermanent = true
		out.Master = &m
	case a.HasMaster():
		m := *a.Master
		out.Master = &m
	case b.HasMaster():
		m := *b.Master
		out.Master = &m
	}

	index := make(map[int]int)
	for _, rec := range []*models.CertificateRecord{a, b} {
		for _, sc := range rec.Sections {
			if i, ok := index[sc.SectionID]; ok {
				if sc.EarnedAt.After(out.Sections[i].EarnedAt) {
					out.Sections[i] = sc
				}
				continue
			}
			index[sc.SectionID] = len(out.Sections)
			out.Sections = append(out.Sections, sc)
		}
	}
	return out
}
