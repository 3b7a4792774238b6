package httpd

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/zsbati/exam-service/internal/models"
)

func (h *Handler) CreateExam(w http.ResponseWriter, r *http.Request) {
	role := roleFromContext(r.Context())
	if !role.IsTeacher() && !role.IsSuperuser() {
		writeError(w, http.StatusForbidden, "only teachers can create exams")
		return
	}
	if role.TeacherID == "" {
		writeError(w, http.StatusForbidden, "no teacher record for this account")
		return
	}

	var req models.CreateExamRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	exam, err := h.catalogService.CreateExam(r.Context(), role.TeacherID, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, exam)
}

func (h *Handler) ListExams(w http.ResponseWriter, r *http.Request) {
	role := roleFromContext(r.Context())
	page := getIntQueryParam(r, "page", 1)
	limit := getIntQueryParam(r, "limit", 20)

	response, err := h.catalogService.ListExams(r.Context(), role, page, limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, response)
}

func (h *Handler) GetExam(w http.ResponseWriter, r *http.Request) {
	role := roleFromContext(r.Context())
	examID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(examID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid exam id format")
		return
	}

	exam, err := h.catalogService.GetExamForRole(r.Context(), role, examID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, exam)
}

func (h *Handler) UpdateExam(w http.ResponseWriter, r *http.Request) {
	role := roleFromContext(r.Context())
	examID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(examID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid exam id format")
		return
	}

	var req models.UpdateExamRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.catalogService.UpdateExam(r.Context(), role, examID, &req); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Exam updated successfully",
	})
}

func (h *Handler) DeleteExam(w http.ResponseWriter, r *http.Request) {
	role := roleFromContext(r.Context())
	examID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(examID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid exam id format")
		return
	}

	if err := h.catalogService.DeleteExam(r.Context(), role, examID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Exam deleted successfully",
	})
}

func (h *Handler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	role := roleFromContext(r.Context())
	examID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(examID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid exam id format")
		return
	}

	var req models.AddQuestionRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	question, err := h.catalogService.AddQuestion(r.Context(), role, examID, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, question)
}

func (h *Handler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	role := roleFromContext(r.Context())
	examID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(examID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid exam id format")
		return
	}

	questions, err := h.catalogService.GetQuestionsForRole(r.Context(), role, examID, time.Now())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, questions)
}
