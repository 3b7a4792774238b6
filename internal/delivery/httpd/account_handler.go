package httpd

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/zsbati/exam-service/internal/models"
)

func (h *Handler) CreateTeacher(w http.ResponseWriter, r *http.Request) {
	role := roleFromContext(r.Context())
	if !role.IsSuperuser() {
		writeError(w, http.StatusForbidden, "only superusers can create teachers")
		return
	}

	var req models.CreateTeacherRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	teacher, err := h.accountService.CreateTeacher(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, teacher)
}

func (h *Handler) ListTeachers(w http.ResponseWriter, r *http.Request) {
	role := roleFromContext(r.Context())
	page := getIntQueryParam(r, "page", 1)
	limit := getIntQueryParam(r, "limit", 20)

	response, err := h.accountService.ListTeachers(r.Context(), role, page, limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, response)
}

func (h *Handler) DeleteTeacher(w http.ResponseWriter, r *http.Request) {
	role := roleFromContext(r.Context())
	if !role.IsSuperuser() {
		writeError(w, http.StatusForbidden, "only superusers can delete teachers")
		return
	}

	teacherID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(teacherID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid teacher id format")
		return
	}

	// Cascading deletes are destructive; the caller must say so.
	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusBadRequest, "deletion must be confirmed with confirm=true")
		return
	}

	if err := h.accountService.DeleteTeacher(r.Context(), teacherID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Teacher deleted successfully",
	})
}

func (h *Handler) ProvisionSuperuser(w http.ResponseWriter, r *http.Request) {
	role := roleFromContext(r.Context())
	if !role.IsSuperuser() {
		writeError(w, http.StatusForbidden, "only superusers can provision superusers")
		return
	}

	var req models.ProvisionSuperuserRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.accountService.ProvisionSuperuser(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, account)
}

func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	role := roleFromContext(r.Context())
	if !role.IsSuperuser() {
		writeError(w, http.StatusForbidden, "only superusers can create students")
		return
	}

	var req models.CreateStudentRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	student, err := h.accountService.CreateStudent(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, student)
}

func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	role := roleFromContext(r.Context())
	page := getIntQueryParam(r, "page", 1)
	limit := getIntQueryParam(r, "limit", 20)

	response, err := h.accountService.ListStudents(r.Context(), role, page, limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, response)
}

func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	role := roleFromContext(r.Context())
	studentID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(studentID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid student id format")
		return
	}

	// Students may only read themselves.
	if role.IsStudent() && role.StudentID != studentID {
		writeError(w, http.StatusForbidden, "students can only view their own record")
		return
	}
	if role.Kind == models.RoleUnassigned {
		writeError(w, http.StatusForbidden, "access denied")
		return
	}

	student, err := h.accountService.GetStudent(r.Context(), studentID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, student)
}

func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	role := roleFromContext(r.Context())
	if !role.IsSuperuser() {
		writeError(w, http.StatusForbidden, "only superusers can delete students")
		return
	}

	studentID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(studentID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid student id format")
		return
	}

	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusBadRequest, "deletion must be confirmed with confirm=true")
		return
	}

	if err := h.accountService.DeleteStudent(r.Context(), studentID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Student deleted successfully",
	})
}
