package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler(t *testing.T, wantID string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := LearnerID(r.Context())
		if !ok || id != wantID {
			t.Errorf("learner id in context = %q, want %q", id, wantID)
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthMiddleware(t *testing.T) {
	learnerToken, _, err := GenerateToken("learner-1", RoleLearner, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	expired, _, _ := GenerateToken("learner-1", RoleLearner, -time.Minute)
	purpose, _, _ := GeneratePurposeToken("learner-1", PurposeAccountDeletion, time.Minute)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + learnerToken, http.StatusNoContent},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Token " + learnerToken, http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"purpose token", "Bearer " + purpose, http.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			AuthMiddleware(okHandler(t, "learner-1")).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestAdminMiddleware(t *testing.T) {
	adminToken, _, _ := GenerateToken("admin", RoleAdmin, time.Hour)
	learnerToken, _, _ := GenerateToken("learner-1", RoleLearner, time.Hour)

	chain := AuthMiddleware(AdminMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	for token, want := range map[string]int{adminToken: http.StatusOK, learnerToken: http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		chain.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Errorf("status = %d, want %d", rec.Code, want)
		}
	}
}

func TestParsePurposeToken(t *testing.T) {
	token, _, _ := GeneratePurposeToken("learner-1", PurposeAccountDeletion, time.Minute)

	sub, err := ParsePurposeToken(token, PurposeAccountDeletion)
	if err != nil || sub != "learner-1" {
		t.Errorf("got (%q, %v)", sub, err)
	}
	if _, err := ParsePurposeToken(token, "other"); err == nil {
		t.Error("expected purpose mismatch to fail")
	}

	session, _, _ := GenerateToken("learner-1", RoleLearner, time.Minute)
	if _, err := ParsePurposeToken(session, PurposeAccountDeletion); err == nil {
		t.Error("a session token must not confirm a deletion")
	}
}

func TestLearnerMiddleware(t *testing.T) {
	adminToken, _, _ := GenerateToken("admin", RoleAdmin, time.Hour)
	learnerToken, _, _ := GenerateToken("learner-1", RoleLearner, time.Hour)
	otherRole, _, _ := GenerateToken("learner-1", "auditor", time.Hour)

	chain := AuthMiddleware(LearnerMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"learner", learnerToken, http.StatusOK},
		{"admin", adminToken, http.StatusForbidden},
		{"unknown role", otherRole, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			rec := httptest.NewRecorder()
			chain.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestSignDigest(t *testing.T) {
	token, err := SignDigest("learner-1", PurposeCertificateExport, "abc123", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	sub, sum, err := VerifyDigest(token, PurposeCertificateExport)
	if err != nil || sub != "learner-1" || sum != "abc123" {
		t.Errorf("VerifyDigest() = (%q, %q, %v)", sub, sum, err)
	}
	if _, _, err := VerifyDigest(token, PurposeAccountDeletion); err == nil {
		t.Error("expected purpose mismatch to fail")
	}

	noDigest, _, _ := GeneratePurposeToken("learner-1", PurposeCertificateExport, time.Hour)
	if _, _, err := VerifyDigest(noDigest, PurposeCertificateExport); err == nil {
		t.Error("a purpose token without a digest must not verify")
	}

	expired, _ := SignDigest("learner-1", PurposeCertificateExport, "abc123", -time.Minute)
	if _, _, err := VerifyDigest(expired, PurposeCertificateExport); err == nil {
		t.Error("expected expired signature to fail")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	AuthMiddleware(okHandler(t, "learner-1")).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("export signature accepted as a session token: status %d", rec.Code)
	}
}
