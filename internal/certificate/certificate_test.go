package certificate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/copilot-learning/backend/internal/middleware"
	"github.com/copilot-learning/backend/internal/models"
	"github.com/copilot-learning/backend/internal/stats"
	"github.com/copilot-learning/backend/internal/store"
	"github.com/gorilla/mux"
)

var issued = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

func TestMeetsRequirements(t *testing.T) {
	tests := []struct {
		sections, accuracy int
		want               bool
	}{
		{6, 60, true},
		{5, 100, false},
		{6, 59, false},
		{1, 80, false},
		{7, 100, true},
		{0, 0, false},
	}
	for _, tt := range tests {
		if got := MeetsRequirements(tt.sections, tt.accuracy); got != tt.want {
			t.Errorf("MeetsRequirements(%d, %d) = %v, want %v", tt.sections, tt.accuracy, got, tt.want)
		}
	}
}

// completeAllSections records six completions and 10 answers, 6 correct.
func completeAllSections(t *testing.T, m *store.Memory, learnerID string) {
	t.Helper()
	ctx := context.Background()
	m.UpsertLearner(ctx, &models.Learner{ID: learnerID, Name: "Ada Lovelace", Email: learnerID + "@example.com"})
	for s := 1; s <= 6; s++ {
		m.AppendCompletion(ctx, models.SectionCompletionEvent{
			ID: fmt.Sprintf("%s-c%d", learnerID, s), LearnerID: learnerID, SectionID: s,
			TotalQuestions: 5, CorrectCount: 3, Accuracy: 60, TimeSpent: 120, CompletedAt: issued,
		})
	}
	for i := 0; i < 10; i++ {
		m.AppendAnswer(ctx, models.AnswerEvent{
			ID: fmt.Sprintf("%s-a%d", learnerID, i), LearnerID: learnerID, IsCorrect: i < 6, Timestamp: issued,
		})
	}
}

func newService(m *store.Memory) *Service {
	svc := NewService(m, stats.NewService(m, nil))
	svc.now = func() time.Time { return issued }
	return svc
}

func TestCheckAndAwardIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	svc := newService(m)

	awarded, err := svc.CheckAndAward(ctx, "l-1", 6, 60)
	if err != nil || !awarded {
		t.Fatalf("first award: (%v, %v)", awarded, err)
	}

	svc.now = func() time.Time { return issued.Add(24 * time.Hour) }
	awarded, err = svc.CheckAndAward(ctx, "l-1", 6, 60)
	if err != nil || !awarded {
		t.Fatalf("second call: (%v, %v)", awarded, err)
	}

	rec, _ := m.GetCertificates(ctx, "l-1")
	if !rec.Master.EarnedAt.Equal(issued) {
		t.Errorf("earned timestamp rewritten: %v", rec.Master.EarnedAt)
	}

	if awarded, _ := svc.CheckAndAward(ctx, "l-2", 5, 100); awarded {
		t.Error("five sections must not earn the master certificate")
	}
}

func TestCheckAndAwardSurfacesWriteFailure(t *testing.T) {
	m := store.NewMemory()
	m.SetUnavailable(true)
	if _, err := newService(m).CheckAndAward(context.Background(), "l-1", 6, 100); !errors.Is(err, store.ErrPersistenceUnavailable) {
		t.Errorf("expected ErrPersistenceUnavailable, got %v", err)
	}
}

func TestHandleCompletionAwardsSectionAndMaster(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	completeAllSections(t, m, "l-1")
	svc := newService(m)

	ev := models.SectionCompletionEvent{LearnerID: "l-1", SectionID: 6, TotalQuestions: 5, CorrectCount: 3, Accuracy: 60, CompletedAt: issued}
	svc.HandleCompletion(ctx, "l-1", ev)
	ev.Accuracy = 100
	svc.HandleCompletion(ctx, "l-1", ev)

	rec, _ := m.GetCertificates(ctx, "l-1")
	if !rec.HasMaster() {
		t.Error("expected the master certificate after completing every section")
	}
	if len(rec.Sections) != 1 || rec.Sections[0].Completion.Accuracy != 100 {
		t.Errorf("section snapshot should be replaced, got %+v", rec.Sections)
	}
}

func TestMasterSurvivesClearProgress(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	completeAllSections(t, m, "l-1")
	svc := newService(m)

	if _, err := svc.Check(ctx, "l-1"); err != nil {
		t.Fatal(err)
	}
	m.DeleteProgress(ctx, "l-1")

	status, err := svc.Status(ctx, "l-1")
	if err != nil {
		t.Fatal(err)
	}
	if !status.Earned || status.Eligible {
		t.Errorf("expected earned but no longer eligible, got %+v", status)
	}
}

func TestGenerate(t *testing.T) {
	summary := models.SummaryStatistics{OverallAccuracy: 87, QuestionsAnswered: 30, TotalTimeSpent: 754}

	doc, err := Generate("3f2a9c1e-0000-4000-8000-000000000000", "Ada <Lovelace>", summary, issued)
	if err != nil {
		t.Fatal(err)
	}
	html := string(doc)

	for _, want := range []string{
		"Ada &lt;Lovelace&gt;",
		"87%",
		"6/6",
		">30<",
		"12m",
		"March 14, 2026",
		"GCP-MASTER-" + fmt.Sprint(issued.UnixMilli()) + "-3F2A9C1E",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("certificate missing %q", want)
		}
	}
	if strings.Contains(html, "<Lovelace>") {
		t.Error("learner name was not escaped")
	}

	again, _ := Generate("3f2a9c1e-0000-4000-8000-000000000000", "Ada <Lovelace>", summary, issued)
	if !bytes.Equal(doc, again) {
		t.Error("identical inputs produced different documents")
	}
}

func TestFilename(t *testing.T) {
	tests := []struct{ name, want string }{
		{"Ada Lovelace", "GitHub-Copilot-MASTER-Certificate-Ada-Lovelace.html"},
		{`  "Bo"  O'Neil `, "GitHub-Copilot-MASTER-Certificate-Bo-ONeil.html"},
		{"", "GitHub-Copilot-MASTER-Certificate-Learner.html"},
	}
	for _, tt := range tests {
		if got := Filename(tt.name); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDownloadCountsBestEffort(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	completeAllSections(t, m, "l-1")
	svc := newService(m)

	if _, _, err := svc.Download(ctx, "l-1"); !errors.Is(err, ErrNotEarned) {
		t.Fatalf("expected ErrNotEarned before the award, got %v", err)
	}

	svc.Check(ctx, "l-1")
	for i := 0; i < 2; i++ {
		if _, _, err := svc.Download(ctx, "l-1"); err != nil {
			t.Fatal(err)
		}
	}
	rec, _ := m.GetCertificates(ctx, "l-1")
	if rec.Master.DownloadCount != 2 || rec.Master.LastDownloadedAt == nil {
		t.Errorf("unexpected download analytics: %+v", rec.Master)
	}
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	source := store.NewMemory()
	completeAllSections(t, source, "l-1")
	svc := newService(source)
	svc.Check(ctx, "l-1")

	data, err := svc.Export(ctx, "l-1")
	if err != nil {
		t.Fatal(err)
	}
	var backup models.CertificateExport
	if err := json.Unmarshal(data, &backup); err != nil {
		t.Fatalf("export is not a backup envelope: %v", err)
	}
	if backup.Signature == "" || backup.Record.LearnerID != "l-1" {
		t.Fatalf("unexpected envelope: %+v", backup)
	}

	target := store.NewMemory()
	target.UpsertLearner(ctx, &models.Learner{ID: "l-1", Name: "Ada Lovelace", Email: "l-1@example.com"})
	restored := newService(target)
	if _, err := restored.Import(ctx, "l-2", data); !errors.Is(err, ErrLearnerMismatch) {
		t.Errorf("expected ErrLearnerMismatch, got %v", err)
	}
	if _, err := restored.Import(ctx, "l-1", []byte("{nope")); !errors.Is(err, store.ErrMalformedData) {
		t.Errorf("expected ErrMalformedData, got %v", err)
	}

	rec, err := restored.Import(ctx, "l-1", data)
	if err != nil {
		t.Fatal(err)
	}
	if !rec.HasMaster() || !rec.Master.IsPermanent {
		t.Error("imported master certificate not set")
	}
	if _, _, err := restored.Download(ctx, "l-1"); err != nil {
		t.Errorf("download after a genuine import: %v", err)
	}
}

func TestImportRejectsForgedBackups(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	m.UpsertLearner(ctx, &models.Learner{ID: "l-1", Name: "Ada Lovelace", Email: "l-1@example.com"})
	m.UpsertLearner(ctx, &models.Learner{ID: "l-2", Name: "Grace Hopper", Email: "l-2@example.com"})
	svc := newService(m)

	// Genuine exports of records without a master certificate.
	signedEmpty, err := svc.Export(ctx, "l-1")
	if err != nil {
		t.Fatal(err)
	}
	var tampered models.CertificateExport
	if err := json.Unmarshal(signedEmpty, &tampered); err != nil {
		t.Fatal(err)
	}
	tampered.Record.Master = &models.MasterCertificate{EarnedAt: issued, IsPermanent: true}
	tamperedData, _ := json.Marshal(tampered)

	otherData, err := svc.Export(ctx, "l-2")
	if err != nil {
		t.Fatal(err)
	}
	var borrowed models.CertificateExport
	json.Unmarshal(otherData, &borrowed)
	borrowed.Record = models.CertificateRecord{
		LearnerID: "l-1",
		Master:    &models.MasterCertificate{EarnedAt: issued, IsPermanent: true},
	}
	borrowedData, _ := json.Marshal(borrowed)

	tests := []struct {
		name string
		data string
		want error
	}{
		{
			name: "unsigned record",
			data: `{"record":{"learner_id":"l-1","master_certificate":{"earned_at":"2026-01-01T00:00:00Z","is_permanent":true}}}`,
			want: ErrUnverified,
		},
		{
			name: "bare record without envelope",
			data: `{"learner_id":"l-1","master_certificate":{"earned_at":"2026-01-01T00:00:00Z","is_permanent":true}}`,
			want: ErrLearnerMismatch,
		},
		{
			name: "garbage signature",
			data: `{"record":{"learner_id":"l-1","master_certificate":{"earned_at":"2026-01-01T00:00:00Z","is_permanent":true}},"signature":"abc.def.ghi"}`,
			want: ErrUnverified,
		},
		{name: "master added to a signed export", data: string(tamperedData), want: ErrUnverified},
		{name: "signature from another learner", data: string(borrowedData), want: ErrLearnerMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Import(ctx, "l-1", []byte(tt.data)); !errors.Is(err, tt.want) {
				t.Fatalf("Import() error = %v, want %v", err, tt.want)
			}
			if _, _, err := svc.Download(ctx, "l-1"); !errors.Is(err, ErrNotEarned) {
				t.Errorf("Download() after a rejected import: %v, want ErrNotEarned", err)
			}
			rec, _ := m.GetCertificates(ctx, "l-1")
			if rec.HasMaster() {
				t.Error("master certificate stored from a rejected import")
			}
		})
	}
}

func TestImportHandlerRejectsUnsignedData(t *testing.T) {
	m := store.NewMemory()
	svc := newService(m)
	r := mux.NewRouter()
	NewHandler(svc).RegisterRoutes(r)

	body := `{"record":{"learner_id":"l-1","master_certificate":{"earned_at":"2026-01-01T00:00:00Z","is_permanent":true}}}`
	req := httptest.NewRequest("POST", "/certificates/import", bytes.NewBufferString(body))
	req = req.WithContext(middleware.WithLearnerID(req.Context(), "l-1"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestDownloadHandler(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	completeAllSections(t, m, "l-1")
	svc := newService(m)

	r := mux.NewRouter()
	NewHandler(svc).RegisterRoutes(r)
	get := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/certificates/master", nil)
		req = req.WithContext(middleware.WithLearnerID(req.Context(), "l-1"))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	if rec := get(); rec.Code != http.StatusForbidden {
		t.Errorf("before award: status = %d, want 403", rec.Code)
	}

	svc.Check(ctx, "l-1")
	rec := get()
	if rec.Code != http.StatusOK {
		t.Fatalf("after award: status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "Ada-Lovelace") {
		t.Errorf("content disposition = %q", cd)
	}
}
