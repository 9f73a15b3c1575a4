package middleware

import (
	"errors"
	"net/http"

	"github.com/phrazzld/rota-api/internal/api/shared"
	"github.com/phrazzld/rota-api/internal/authz"
	"github.com/phrazzld/rota-api/internal/domain"
)

// RequirePermission rejects requests whose employee holds none of perms.
// It must run after Authenticate.
func RequirePermission(guard authz.Guard, perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			emp, ok := GetEmployee(r)
			if !ok {
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
				return
			}

			if err := guard.RequireAny(r.Context(), emp, perms...); err != nil {
				if errors.Is(err, domain.ErrForbidden) {
					shared.RespondWithErrorAndLog(w, r, http.StatusForbidden,
						"You do not have permission to perform this action", err,
						shared.WithElevatedLogLevel())
					return
				}
				logRedacted(r, "permission check failed", err)
				shared.RespondWithError(w, r, http.StatusInternalServerError, "An unexpected error occurred")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
