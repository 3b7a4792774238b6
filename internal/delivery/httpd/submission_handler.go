package httpd

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/zsbati/exam-service/internal/models"
)

func (h *Handler) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	role := roleFromContext(r.Context())
	if !role.IsStudent() {
		writeError(w, http.StatusForbidden, "only students can submit answers")
		return
	}

	examID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(examID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid exam id format")
		return
	}

	var req models.SubmitAnswersRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	response, err := h.submissionService.SubmitAnswers(r.Context(), role.StudentID, examID, req.Answers)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, response)
}

func (h *Handler) RecordScore(w http.ResponseWriter, r *http.Request) {
	role := roleFromContext(r.Context())
	answerID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(answerID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid answer id format")
		return
	}

	var req models.RecordScoreRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.submissionService.RecordScore(r.Context(), role, answerID, req.Score); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Score recorded successfully",
	})
}

func (h *Handler) GetAnswersByExam(w http.ResponseWriter, r *http.Request) {
	role := roleFromContext(r.Context())
	examID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(examID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid exam id format")
		return
	}

	page := getIntQueryParam(r, "page", 1)
	limit := getIntQueryParam(r, "limit", 20)

	response, err := h.submissionService.GetAnswersByExam(r.Context(), role, examID, page, limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, response)
}

func (h *Handler) AggregateExam(w http.ResponseWriter, r *http.Request) {
	role := roleFromContext(r.Context())
	examID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(examID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid exam id format")
		return
	}

	response, err := h.submissionService.AggregateExam(r.Context(), role, examID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, response)
}

func (h *Handler) ListAnswers(w http.ResponseWriter, r *http.Request) {
	role := roleFromContext(r.Context())
	page := getIntQueryParam(r, "page", 1)
	limit := getIntQueryParam(r, "limit", 20)

	response, err := h.submissionService.ListAnswers(r.Context(), role, page, limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, response)
}

func (h *Handler) ListResults(w http.ResponseWriter, r *http.Request) {
	role := roleFromContext(r.Context())

	results, err := h.submissionService.ListResults(r.Context(), role)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, results)
}

func (h *Handler) ListLedger(w http.ResponseWriter, r *http.Request) {
	role := roleFromContext(r.Context())

	entries, err := h.submissionService.ListLedger(r.Context(), role)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, entries)
}
