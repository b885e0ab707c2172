package certificate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/copilot-learning/backend/internal/middleware"
	"github.com/copilot-learning/backend/internal/models"
	"github.com/copilot-learning/backend/internal/store"
	"github.com/gorilla/mux"
)

const maxImportBytes = 1 << 20

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/certificates", h.GetStatus).Methods("GET")
	r.HandleFunc("/certificates/check", h.Check).Methods("POST")
	r.HandleFunc("/certificates/master", h.DownloadMaster).Methods("GET")
	r.HandleFunc("/certificates/export", h.Export).Methods("GET")
	r.HandleFunc("/certificates/import", h.Import).Methods("POST")
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := middleware.LearnerID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	status, err := h.service.Status(r.Context(), learnerID)
	if err != nil {
		log.Printf("[handler] certificate status for %s: %v", learnerID, err)
		writeJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: "Certificate records unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := middleware.LearnerID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	status, err := h.service.Check(r.Context(), learnerID)
	if err != nil {
		log.Printf("[handler] certificate check for %s: %v", learnerID, err)
		writeJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: "Certificate records unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) DownloadMaster(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := middleware.LearnerID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	doc, filename, err := h.service.Download(r.Context(), learnerID)
	switch {
	case errors.Is(err, ErrNotEarned):
		writeJSON(w, http.StatusForbidden, models.ErrorResponse{
			Error: "Complete all 6 sections with at least 60% accuracy to earn the master certificate",
		})
		return
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Account not found"})
		return
	case err != nil:
		log.Printf("[handler] certificate download for %s: %v", learnerID, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate certificate"})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := middleware.LearnerID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	data, err := h.service.Export(r.Context(), learnerID)
	if err != nil {
		log.Printf("[handler] certificate export for %s: %v", learnerID, err)
		writeJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: "Certificate records unavailable"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="certificates.json"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := middleware.LearnerID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	rec, err := h.service.Import(r.Context(), learnerID, body)
	switch {
	case errors.Is(err, store.ErrMalformedData):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Certificate data is not valid JSON"})
		return
	case errors.Is(err, ErrLearnerMismatch):
		writeJSON(w, http.StatusForbidden, models.ErrorResponse{Error: "Certificate data belongs to another account"})
		return
	case errors.Is(err, ErrUnverified):
		writeJSON(w, http.StatusForbidden, models.ErrorResponse{Error: "Certificate data could not be verified. Import a file exported from this account."})
		return
	case err != nil:
		log.Printf("[handler] certificate import for %s: %v", learnerID, err)
		writeJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: "Certificate records unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
