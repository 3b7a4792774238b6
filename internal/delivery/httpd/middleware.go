package httpd

import (
	"context"
	"net/http"

	"github.com/zsbati/exam-service/internal/models"
)

type contextKey string

const roleContextKey contextKey = "role"

// ResolveRole turns the caller-supplied account reference into an
// explicit Role once per request. Requests without an account header
// carry the unassigned role; each handler decides what that may do.
func (h *Handler) ResolveRole(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role := models.Role{Kind: models.RoleUnassigned}

		if accountID := r.Header.Get("X-Account-ID"); accountID != "" {
			resolved, err := h.accountService.ResolveRole(r.Context(), accountID)
			if err != nil {
				h.handleServiceError(w, err)
				return
			}
			role = resolved
		}

		ctx := context.WithValue(r.Context(), roleContextKey, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func roleFromContext(ctx context.Context) models.Role {
	if role, ok := ctx.Value(roleContextKey).(models.Role); ok {
		return role
	}
	return models.Role{Kind: models.RoleUnassigned}
}
