package progress

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/copilot-learning/backend/internal/middleware"
	"github.com/copilot-learning/backend/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type Handler struct {
	service  *Service
	validate *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service, validate: validator.New()}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/sessions", h.StartSession).Methods("POST")
	r.HandleFunc("/sessions/current", h.GetCurrentSession).Methods("GET")
	r.HandleFunc("/sessions/current/answers", h.SubmitAnswer).Methods("POST")
	r.HandleFunc("/sessions/current", h.AbandonSession).Methods("DELETE")
}

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := middleware.LearnerID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req models.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "section_id must be a positive integer"})
		return
	}

	resp, err := h.service.Start(r.Context(), learnerID, req.SectionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) GetCurrentSession(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := middleware.LearnerID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	resp, err := h.service.Current(r.Context(), learnerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := middleware.LearnerID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req models.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "question_id is required"})
		return
	}

	resp, err := h.service.Submit(r.Context(), learnerID, req.QuestionID, req.Answer)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) AbandonSession(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := middleware.LearnerID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.service.Abandon(r.Context(), learnerID); err != nil {
		log.Printf("[handler] abandon session for %s: %v", learnerID, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to end session"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSectionNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Section not found"})
	case errors.Is(err, ErrLearnerNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Learner not found"})
	case errors.Is(err, ErrNoSession):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "No active session"})
	case errors.Is(err, ErrDuplicateAnswer):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Question already answered"})
	case errors.Is(err, ErrQuestionMismatch):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Answer is not for the current question"})
	case errors.Is(err, ErrInvalidState):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Session is not in progress"})
	default:
		log.Printf("[handler] session error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
