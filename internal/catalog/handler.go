package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/copilot-learning/backend/internal/models"
	"github.com/gorilla/mux"
)

type Handler struct {
	bank *Bank
}

func NewHandler(bank *Bank) *Handler {
	return &Handler{bank: bank}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/sections", h.ListSections).Methods("GET")
	r.HandleFunc("/sections/{id}", h.GetSection).Methods("GET")
}

func (h *Handler) ListSections(w http.ResponseWriter, r *http.Request) {
	sections := h.bank.Sections()
	views := make([]models.SectionView, len(sections))
	for i, s := range sections {
		v := s.View()
		v.Questions = nil
		views[i] = v
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) GetSection(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid section ID"})
		return
	}

	section, err := h.bank.GetSection(id)
	if errors.Is(err, ErrSectionNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Section not found"})
		return
	}

	writeJSON(w, http.StatusOK, section.View())
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
