package httpd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsbati/exam-service/internal/models"
	"github.com/zsbati/exam-service/internal/service"
)

// stubAccountService overrides only ResolveRole; the embedded interface
// panics on anything else, which is what a middleware test wants.
type stubAccountService struct {
	service.AccountService
	roles map[string]models.Role
}

func (s *stubAccountService) ResolveRole(_ context.Context, accountID string) (models.Role, error) {
	if role, ok := s.roles[accountID]; ok {
		return role, nil
	}
	return models.Role{}, models.ErrNotFound
}

func TestResolveRoleMiddleware(t *testing.T) {
	accounts := &stubAccountService{
		roles: map[string]models.Role{
			"acc-1": {Kind: models.RoleTeacher, AccountID: "acc-1", TeacherID: "t1"},
		},
	}
	h := NewHandler(nil, nil, accounts, zerolog.Nop())

	var seen models.Role
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = roleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	t.Run("resolves the header account into a role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Account-ID", "acc-1")
		rec := httptest.NewRecorder()

		h.ResolveRole(next).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, models.RoleTeacher, seen.Kind)
		assert.Equal(t, "t1", seen.TeacherID)
	})

	t.Run("missing header yields the unassigned role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		h.ResolveRole(next).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, models.RoleUnassigned, seen.Kind)
	})

	t.Run("unknown account is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Account-ID", "ghost")
		rec := httptest.NewRecorder()

		h.ResolveRole(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleServiceError(t *testing.T) {
	h := NewHandler(nil, nil, nil, zerolog.Nop())

	cases := []struct {
		name string
		err  error
		code int
	}{
		{"not found", models.ErrNotFound, http.StatusNotFound},
		{"access denied", models.ErrAccessDenied, http.StatusForbidden},
		{"already submitted", models.ErrAlreadySubmitted, http.StatusConflict},
		{"integrity conflict", models.ErrIntegrityConflict, http.StatusConflict},
		{"invalid score", models.ErrInvalidScore, http.StatusUnprocessableEntity},
		{"invalid grade", models.ErrInvalidGrade, http.StatusBadRequest},
		{"empty submission", models.ErrEmptySubmission, http.StatusBadRequest},
		{"unknown", assert.AnError, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.handleServiceError(rec, tc.err)
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}
