package httpd

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/zsbati/exam-service/internal/models"
	"github.com/zsbati/exam-service/internal/service"
)

type Handler struct {
	catalogService    service.CatalogService
	submissionService service.SubmissionService
	accountService    service.AccountService
	validate          *validator.Validate
	logger            zerolog.Logger
}

func NewHandler(
	catalogService service.CatalogService,
	submissionService service.SubmissionService,
	accountService service.AccountService,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		catalogService:    catalogService,
		submissionService: submissionService,
		accountService:    accountService,
		validate:          validator.New(),
		logger:            logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)

	router.Route("/api/v1", func(api chi.Router) {
		api.Use(h.ResolveRole)

		api.Route("/teachers", func(r chi.Router) {
			r.Post("/", h.CreateTeacher)
			r.Get("/", h.ListTeachers)
			r.Delete("/{id}", h.DeleteTeacher)
		})

		api.Post("/superusers", h.ProvisionSuperuser)

		api.Route("/students", func(r chi.Router) {
			r.Post("/", h.CreateStudent)
			r.Get("/", h.ListStudents)
			r.Get("/{id}", h.GetStudent)
			r.Delete("/{id}", h.DeleteStudent)
		})

		api.Route("/exams", func(r chi.Router) {
			r.Post("/", h.CreateExam)
			r.Get("/", h.ListExams)
			r.Get("/{id}", h.GetExam)
			r.Put("/{id}", h.UpdateExam)
			r.Delete("/{id}", h.DeleteExam)
			r.Post("/{id}/questions", h.AddQuestion)
			r.Get("/{id}/questions", h.GetQuestions)
			r.Post("/{id}/submissions", h.SubmitAnswers)
			r.Get("/{id}/answers", h.GetAnswersByExam)
			r.Post("/{id}/aggregate", h.AggregateExam)
		})

		api.Put("/answers/{id}/score", h.RecordScore)

		// Read-only role-scoped mirror of the remaining records.
		api.Get("/student-answers", h.ListAnswers)
		api.Get("/exam-results", h.ListResults)
		api.Get("/student-ledger", h.ListLedger)
	})
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "exam-service",
		"timestamp": time.Now().UTC(),
	}

	writeJSON(w, http.StatusOK, response)
}

func getIntQueryParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	response := map[string]interface{}{
		"success": true,
		"data":    data,
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return h.validate.Struct(dst)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrAccessDenied):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrAlreadySubmitted):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrIntegrityConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrInvalidScore):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, models.ErrInvalidGrade),
		errors.Is(err, models.ErrInvalidQuestion),
		errors.Is(err, models.ErrEmptyChoices),
		errors.Is(err, models.ErrEmptySubmission):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("Internal server error")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
