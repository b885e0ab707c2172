package certificate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/copilot-learning/backend/internal/catalog"
	"github.com/copilot-learning/backend/internal/middleware"
	"github.com/copilot-learning/backend/internal/models"
	"github.com/copilot-learning/backend/internal/stats"
	"github.com/copilot-learning/backend/internal/store"
)

const (
	RequiredSections = catalog.SectionCount
	RequiredAccuracy = 60

	exportSignatureTTL = 365 * 24 * time.Hour
)

var (
	ErrNotEarned       = errors.New("master certificate not earned")
	ErrLearnerMismatch = errors.New("certificate data belongs to another learner")
	ErrUnverified      = errors.New("certificate data is unsigned or was modified")
)

// MeetsRequirements reports whether the master certificate thresholds are met.
func MeetsRequirements(sectionsCompleted, overallAccuracy int) bool {
	return sectionsCompleted >= RequiredSections && overallAccuracy >= RequiredAccuracy
}

type Service struct {
	store store.Store
	stats *stats.Service
	now   func() time.Time
}

func NewService(s store.Store, st *stats.Service) *Service {
	return &Service{store: s, stats: st, now: time.Now}
}

// CheckAndAward sets the master flag the first time the requirements are met
// and reports whether the learner holds it. An existing award is never rewritten.
func (s *Service) CheckAndAward(ctx context.Context, learnerID string, sectionsCompleted, overallAccuracy int) (bool, error) {
	rec, err := s.store.GetCertificates(ctx, learnerID)
	if err != nil {
		return false, fmt.Errorf("check certificate: %w", err)
	}
	if rec.HasMaster() {
		return true, nil
	}
	if !MeetsRequirements(sectionsCompleted, overallAccuracy) {
		return false, nil
	}

	rec.Master = &models.MasterCertificate{EarnedAt: s.now(), IsPermanent: true}
	if err := s.store.SaveCertificates(ctx, rec); err != nil {
		return false, fmt.Errorf("award master certificate: %w", err)
	}
	log.Printf("[certificate] master certificate awarded to %s", learnerID)
	return true, nil
}

// AwardSection stores a snapshot of the completion, replacing any earlier
// snapshot for the same section.
func (s *Service) AwardSection(ctx context.Context, learnerID string, ev models.SectionCompletionEvent) error {
	rec, err := s.store.GetCertificates(ctx, learnerID)
	if err != nil {
		return fmt.Errorf("award section certificate: %w", err)
	}

	cert := models.SectionCertificate{
		SectionID: ev.SectionID,
		EarnedAt:  s.now(),
		Completion: models.SectionCompletionData{
			Accuracy:         ev.Accuracy,
			QuestionsCorrect: ev.CorrectCount,
			TotalQuestions:   ev.TotalQuestions,
			TimeSpent:        ev.TimeSpent,
			Score:            ev.Score,
			CompletedAt:      ev.CompletedAt,
		},
	}

	replaced := false
	for i := range rec.Sections {
		if rec.Sections[i].SectionID == ev.SectionID {
			rec.Sections[i] = cert
			replaced = true
			break
		}
	}
	if !replaced {
		rec.Sections = append(rec.Sections, cert)
	}

	if err := s.store.SaveCertificates(ctx, rec); err != nil {
		return fmt.Errorf("award section certificate: %w", err)
	}
	return nil
}

// HandleCompletion is registered as a progress completion hook.
func (s *Service) HandleCompletion(ctx context.Context, learnerID string, ev models.SectionCompletionEvent) {
	if err := s.AwardSection(ctx, learnerID, ev); err != nil {
		log.Printf("[certificate] %v", err)
	}
	if _, err := s.Check(ctx, learnerID); err != nil {
		log.Printf("[certificate] %v", err)
	}
}

// Status reports eligibility and the stored record without side effects.
func (s *Service) Status(ctx context.Context, learnerID string) (*models.CertificateStatusResponse, error) {
	summary := s.stats.Summary(ctx, learnerID).Summary
	rec, err := s.store.GetCertificates(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("certificate status: %w", err)
	}
	return &models.CertificateStatusResponse{
		Eligible: MeetsRequirements(summary.SectionsCompleted, summary.OverallAccuracy),
		Earned:   rec.HasMaster(),
		Record:   rec,
		Summary:  summary,
	}, nil
}

// Check recomputes the learner's statistics and awards the master
// certificate when due.
func (s *Service) Check(ctx context.Context, learnerID string) (*models.CertificateStatusResponse, error) {
	summary := s.stats.Summary(ctx, learnerID).Summary
	if _, err := s.CheckAndAward(ctx, learnerID, summary.SectionsCompleted, summary.OverallAccuracy); err != nil {
		return nil, err
	}
	return s.Status(ctx, learnerID)
}

// Download renders the master certificate and counts the download. It
// returns the document and a suggested file name.
func (s *Service) Download(ctx context.Context, learnerID string) ([]byte, string, error) {
	rec, err := s.store.GetCertificates(ctx, learnerID)
	if err != nil {
		return nil, "", fmt.Errorf("download certificate: %w", err)
	}
	if !rec.HasMaster() {
		return nil, "", ErrNotEarned
	}
	learner, err := s.store.GetLearner(ctx, learnerID)
	if err != nil {
		return nil, "", fmt.Errorf("download certificate: %w", err)
	}

	summary := s.stats.Summary(ctx, learnerID).Summary
	doc, err := Generate(learner.ID, learner.Name, summary, s.now())
	if err != nil {
		return nil, "", err
	}

	if err := s.IncrementDownloadCount(ctx, learnerID); err != nil {
		log.Printf("[certificate] download count not updated for %s: %v", learnerID, err)
	}
	return doc, Filename(learner.Name), nil
}

// IncrementDownloadCount bumps the master certificate's download counter.
// Callers treat failures as non-fatal.
func (s *Service) IncrementDownloadCount(ctx context.Context, learnerID string) error {
	rec, err := s.store.GetCertificates(ctx, learnerID)
	if err != nil {
		return err
	}
	if !rec.HasMaster() {
		return ErrNotEarned
	}
	now := s.now()
	rec.Master.DownloadCount++
	rec.Master.LastDownloadedAt = &now
	return s.store.SaveCertificates(ctx, rec)
}

// Export returns the learner's certificate record as an indented, signed
// backup that Import accepts back for the same learner.
func (s *Service) Export(ctx context.Context, learnerID string) ([]byte, error) {
	rec, err := s.store.GetCertificates(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("export certificates: %w", err)
	}
	digest, err := recordDigest(rec)
	if err != nil {
		return nil, fmt.Errorf("export certificates: %w", err)
	}
	sig, err := middleware.SignDigest(learnerID, middleware.PurposeCertificateExport, digest, exportSignatureTTL)
	if err != nil {
		return nil, fmt.Errorf("export certificates: %w", err)
	}
	return json.MarshalIndent(models.CertificateExport{Record: *rec, Signature: sig}, "", "  ")
}

// Import merges a backup produced by Export for the same learner. Unsigned or
// edited files are rejected. Nothing already earned is lost.
func (s *Service) Import(ctx context.Context, learnerID string, data []byte) (*models.CertificateRecord, error) {
	var backup models.CertificateExport
	if err := json.Unmarshal(data, &backup); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrMalformedData, err)
	}
	incoming := backup.Record
	if incoming.LearnerID != learnerID {
		return nil, ErrLearnerMismatch
	}
	if backup.Signature == "" {
		return nil, ErrUnverified
	}

	subject, signed, err := middleware.VerifyDigest(backup.Signature, middleware.PurposeCertificateExport)
	if err != nil {
		log.Printf("[certificate] rejected import for %s: %v", learnerID, err)
		return nil, ErrUnverified
	}
	if subject != learnerID {
		return nil, ErrLearnerMismatch
	}
	digest, err := recordDigest(&incoming)
	if err != nil {
		return nil, fmt.Errorf("import certificates: %w", err)
	}
	if digest != signed {
		log.Printf("[certificate] rejected edited import for %s", learnerID)
		return nil, ErrUnverified
	}

	current, err := s.store.GetCertificates(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("import certificates: %w", err)
	}
	merged := store.MergeCertificates(current, &incoming)
	if err := s.store.SaveCertificates(ctx, merged); err != nil {
		return nil, fmt.Errorf("import certificates: %w", err)
	}
	return merged, nil
}

// recordDigest is the hex SHA-256 of the record's compact JSON encoding.
func recordDigest(rec *models.CertificateRecord) (string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
