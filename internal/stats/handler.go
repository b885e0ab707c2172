package stats

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/copilot-learning/backend/internal/middleware"
	"github.com/copilot-learning/backend/internal/models"
	"github.com/gorilla/mux"
)

// ClearConfirmation is the phrase DELETE /progress requires.
const ClearConfirmation = "CLEAR"

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/stats/summary", h.GetSummary).Methods("GET")
	r.HandleFunc("/stats/history", h.GetHistory).Methods("GET")
	r.HandleFunc("/progress", h.ClearProgress).Methods("DELETE")
}

// RegisterAdminRoutes expects a router already guarded by AdminMiddleware.
func (h *Handler) RegisterAdminRoutes(r *mux.Router) {
	r.HandleFunc("/dashboard", h.GetDashboard).Methods("GET")
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := middleware.LearnerID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, h.service.Summary(r.Context(), learnerID))
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := middleware.LearnerID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, h.service.History(r.Context(), learnerID))
}

func (h *Handler) ClearProgress(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := middleware.LearnerID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req models.ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Confirm != ClearConfirmation {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{
			Error: `Clearing progress cannot be undone. Send {"confirm":"CLEAR"} to continue.`,
		})
		return
	}

	if err := h.service.ClearProgress(r.Context(), learnerID); err != nil {
		log.Printf("[handler] clear progress for %s: %v", learnerID, err)
		writeJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: "Failed to clear progress"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Dashboard(r.Context()))
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
