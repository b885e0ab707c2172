package certificate

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"
	"unicode"

	"github.com/copilot-learning/backend/internal/catalog"
	"github.com/copilot-learning/backend/internal/models"
)

const CourseTitle = "GitHub Copilot Complete Learning Path"

//go:embed templates/master.html
var templateFS embed.FS

var masterTemplate = template.Must(template.ParseFS(templateFS, "templates/master.html"))

type documentData struct {
	LearnerName      string
	CourseTitle      string
	Summary          models.SummaryStatistics
	SectionsRequired int
	StudyMinutes     int
	CompletionDate   string
	CertificateID    string
}

// Generate renders the master certificate as a standalone HTML document.
// Output depends only on its arguments; issuedAt is the sole time input.
func Generate(learnerID, learnerName string, summary models.SummaryStatistics, issuedAt time.Time) ([]byte, error) {
	name := strings.TrimSpace(learnerName)
	if name == "" {
		name = "Learner"
	}

	data := documentData{
		LearnerName:      name,
		CourseTitle:      CourseTitle,
		Summary:          summary,
		SectionsRequired: catalog.SectionCount,
		StudyMinutes:     summary.TotalTimeSpent / 60,
		CompletionDate:   issuedAt.Format("January 2, 2006"),
		CertificateID:    CertificateID(learnerID, issuedAt),
	}

	var buf bytes.Buffer
	if err := masterTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}
	return buf.Bytes(), nil
}

// CertificateID is GCP-MASTER-<unix millis>-<first 8 chars of the learner id>.
func CertificateID(learnerID string, issuedAt time.Time) string {
	short := learnerID
	if len(short) > 8 {
		short = short[:8]
	}
	if short == "" {
		short = "ANON"
	}
	return fmt.Sprintf("GCP-MASTER-%d-%s", issuedAt.UnixMilli(), strings.ToUpper(short))
}

// Filename is the suggested download name for a learner's certificate.
func Filename(learnerName string) string {
	var fields []string
	for _, f := range strings.Fields(learnerName) {
		f = strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return r
			}
			return -1
		}, f)
		if f != "" {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		fields = []string{"Learner"}
	}
	return "GitHub-Copilot-MASTER-Certificate-" + strings.Join(fields, "-") + ".html"
}
