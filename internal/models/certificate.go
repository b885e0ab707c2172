package models

import "time"

type CertificateRecord struct {
	LearnerID string               `json:"learner_id"`
	Master    *MasterCertificate   `json:"master_certificate"`
	Sections  []SectionCertificate `json:"section_certificates"`
}

// HasMaster reports whether the permanent master flag is set.
func (r *CertificateRecord) HasMaster() bool {
	return r != nil && r.Master != nil
}

type MasterCertificate struct {
	EarnedAt         time.Time  `json:"earned_at"`
	IsPermanent      bool       `json:"is_permanent"`
	DownloadCount    int        `json:"download_count"`
	LastDownloadedAt *time.Time `json:"last_downloaded_at,omitempty"`
}

type SectionCertificate struct {
	SectionID  int                   `json:"section_number"`
	EarnedAt   time.Time             `json:"earned_at"`
	Completion SectionCompletionData `json:"completion_data"`
}

type SectionCompletionData struct {
	Accuracy         int       `json:"accuracy"`
	QuestionsCorrect int       `json:"questions_correct"`
	TotalQuestions   int       `json:"total_questions"`
	TimeSpent        int       `json:"time_spent"`
	Score            int       `json:"score"`
	CompletedAt      time.Time `json:"completed_at"`
}

// CertificateExport is the backup file format: the record plus a signature
// over its JSON encoding.
type CertificateExport struct {
	Record    CertificateRecord `json:"record"`
	Signature string            `json:"signature"`
}

type CertificateStatusResponse struct {
	Eligible bool               `json:"eligible"`
	Earned   bool               `json:"earned"`
	Record   *CertificateRecord `json:"record"`
	Summary  SummaryStatistics  `json:"summary"`
}
