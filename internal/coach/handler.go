package coach

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/copilot-learning/backend/internal/catalog"
	"github.com/copilot-learning/backend/internal/middleware"
	"github.com/copilot-learning/backend/internal/models"
	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/coach/sections/{id:[0-9]+}", h.GetFeedback).Methods("POST")
}

func (h *Handler) GetFeedback(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := middleware.LearnerID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	sectionID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid section id"})
		return
	}

	resp, err := h.service.Feedback(r.Context(), learnerID, sectionID)
	switch {
	case errors.Is(err, catalog.ErrSectionNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Section not found"})
	case errors.Is(err, ErrNoCompletion):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Finish the section before asking for feedback"})
	case err != nil:
		log.Printf("[handler] coach feedback for %s: %v", learnerID, err)
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Study coach is unavailable right now"})
	default:
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
