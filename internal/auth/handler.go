package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/copilot-learning/backend/internal/middleware"
	"github.com/copilot-learning/backend/internal/models"
	"github.com/copilot-learning/backend/internal/store"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
)

const (
	learnerTokenTTL  = 72 * time.Hour
	adminTokenTTL    = 12 * time.Hour
	deletionTokenTTL = 5 * time.Minute

	// DeleteConfirmation is the phrase DELETE /account requires.
	DeleteConfirmation = "DELETE"

	accountNotFoundMessage = "We cannot find your account. Please check your email or register first."
)

// SessionAbandoner ends a learner's active section attempt.
type SessionAbandoner interface {
	Abandon(ctx context.Context, learnerID string) error
}

type Handler struct {
	store     store.Store
	sessions  SessionAbandoner
	adminHash []byte
	validate  *validator.Validate
	now       func() time.Time
}

func NewHandler(s store.Store, sessions SessionAbandoner, adminPasswordHash string) *Handler {
	return &Handler{
		store:     s,
		sessions:  sessions,
		adminHash: []byte(adminPasswordHash),
		validate:  newValidator(),
		now:       time.Now,
	}
}

// RegisterPublicRoutes mounts the unauthenticated endpoints.
func (h *Handler) RegisterPublicRoutes(r *mux.Router) {
	r.HandleFunc("/auth/register", h.Register).Methods("POST")
	r.HandleFunc("/auth/login", h.Login).Methods("POST")
	r.HandleFunc("/admin/login", h.AdminLogin).Methods("POST")
}

// RegisterRoutes mounts the endpoints that need a learner token.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/auth/me", h.GetCurrentLearner).Methods("GET")
	r.HandleFunc("/account/deletion", h.RequestDeletion).Methods("POST")
	r.HandleFunc("/account", h.DeleteAccount).Methods("DELETE")
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = NormalizePhone(req.Phone)

	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: validationMessage(err)})
		return
	}

	ctx := r.Context()
	if _, err := h.store.FindLearnerByEmail(ctx, req.Email); err == nil {
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "An account with this email already exists"})
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Printf("[auth] lookup %s: %v", req.Email, err)
		writeJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: "Account service unavailable"})
		return
	}

	now := h.now()
	learner := models.Learner{
		ID:         uuid.NewString(),
		Name:       req.Name,
		Email:      req.Email,
		CreatedAt:  now,
		LastActive: now,
	}
	if req.Phone != "" {
		phone := req.Phone
		learner.Phone = &phone
	}

	if err := h.store.UpsertLearner(ctx, &learner); err != nil {
		log.Printf("[auth] create learner: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create account"})
		return
	}

	token, _, err := middleware.GenerateToken(learner.ID, middleware.RoleLearner, learnerTokenTTL)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate token"})
		return
	}

	log.Printf("[auth] registered %s", learner.ID)
	writeJSON(w, http.StatusCreated, models.AuthResponse{Token: token, Learner: learner})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: validationMessage(err)})
		return
	}

	ctx := r.Context()
	learner, err := h.store.FindLearnerByEmail(ctx, req.Email)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: accountNotFoundMessage})
		return
	}
	if err != nil {
		log.Printf("[auth] lookup %s: %v", req.Email, err)
		writeJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: "Account service unavailable"})
		return
	}

	now := h.now()
	if err := h.store.TouchLearner(ctx, learner.ID, now); err != nil {
		log.Printf("[auth] failed to update last active for %s: %v", learner.ID, err)
	} else {
		learner.LastActive = now
	}

	token, _, err := middleware.GenerateToken(learner.ID, middleware.RoleLearner, learnerTokenTTL)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate token"})
		return
	}

	writeJSON(w, http.StatusOK, models.AuthResponse{Token: token, Learner: *learner})
}

func (h *Handler) GetCurrentLearner(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := middleware.LearnerID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	learner, err := h.store.GetLearner(r.Context(), learnerID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: accountNotFoundMessage})
		return
	}
	writeJSON(w, http.StatusOK, learner)
}

func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	if len(h.adminHash) == 0 {
		writeJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: "Admin login is not configured"})
		return
	}

	var req models.AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: validationMessage(err)})
		return
	}

	if err := bcrypt.CompareHashAndPassword(h.adminHash, []byte(req.Password)); err != nil {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid admin password"})
		return
	}

	token, exp, err := middleware.GenerateToken("admin", middleware.RoleAdmin, adminTokenTTL)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate token"})
		return
	}
	writeJSON(w, http.StatusOK, models.TokenResponse{Token: token, ExpiresAt: exp})
}

// RequestDeletion issues the short-lived token DeleteAccount requires.
func (h *Handler) RequestDeletion(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := middleware.LearnerID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	token, exp, err := middleware.GeneratePurposeToken(learnerID, middleware.PurposeAccountDeletion, deletionTokenTTL)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate token"})
		return
	}
	writeJSON(w, http.StatusOK, models.TokenResponse{Token: token, ExpiresAt: exp})
}

// DeleteAccount removes the learner, their events, certificate record and
// active session. It needs the token from RequestDeletion and the phrase DELETE.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := middleware.LearnerID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req models.ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Confirm != DeleteConfirmation {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{
			Error: `Deleting your account cannot be undone. Send {"confirm":"DELETE","token":"..."} to continue.`,
		})
		return
	}

	subject, err := middleware.ParsePurposeToken(req.Token, middleware.PurposeAccountDeletion)
	if err != nil || subject != learnerID {
		writeJSON(w, http.StatusForbidden, models.ErrorResponse{Error: "Deletion confirmation expired or invalid"})
		return
	}

	ctx := r.Context()
	if h.sessions != nil {
		if err := h.sessions.Abandon(ctx, learnerID); err != nil {
			log.Printf("[auth] failed to end session for %s: %v", learnerID, err)
		}
	}
	if err := h.store.DeleteLearner(ctx, learnerID); err != nil {
		log.Printf("[auth] delete %s: %v", learnerID, err)
		writeJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: "Failed to delete account"})
		return
	}

	log.Printf("[auth] deleted account %s", learnerID)
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
