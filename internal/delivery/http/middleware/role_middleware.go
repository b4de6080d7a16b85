package middleware

import (
	"net/http"
	"strings"

	"go-appointment-saas/internal/domain/entity"
	"go-appointment-saas/pkg/response"
)

// RequireRole admits callers whose role is one of roleIDs. It must run
// behind Authenticate, which puts the principal in the context.
func RequireRole(roleIDs ...int) func(http.Handler) http.Handler {
	allowed := make(map[int]bool, len(roleIDs))
	names := make([]string, 0, len(roleIDs))
	for _, id := range roleIDs {
		allowed[id] = true
		names = append(names, entity.RoleName(id))
	}
	denied := "This action requires one of the roles: " + strings.Join(names, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetPrincipal(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}
			if !allowed[principal.RoleID] {
				response.Forbidden(w, denied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin guards organization management.
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDAdmin)(next)
}

// RequireStaff admits anyone who can hold a calendar.
func RequireStaff(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDAdmin, entity.RoleIDProvider)(next)
}
