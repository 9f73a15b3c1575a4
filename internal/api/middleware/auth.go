package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/rota-api/internal/api/shared"
	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/platform/logger"
	"github.com/phrazzld/rota-api/internal/redact"
	"github.com/phrazzld/rota-api/internal/service/auth"
	"github.com/phrazzld/rota-api/internal/store"
)

// AuthMiddleware authenticates requests with a bearer token and resolves the
// acting employee.
type AuthMiddleware struct {
	jwtService auth.JWTService
	employees  store.EmployeeStore
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(jwtService auth.JWTService, employees store.EmployeeStore) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		employees:  employees,
	}
}

// Authenticate validates the Authorization header, loads the employee named by
// the token and stores it in the request context. Unknown and inactive
// employees are rejected with 401.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenNotYetValid):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			default:
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
			}
			return
		}

		emp, err := m.employees.GetByID(r.Context(), claims.EmployeeID)
		switch {
		case errors.Is(err, store.ErrEmployeeNotFound):
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			return
		case err != nil:
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
			return
		case !emp.Active:
			logger.FromContext(r.Context()).Info("rejected token of inactive employee",
				slog.Int64("employee_id", emp.ID))
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			return
		}

		log := logger.FromContext(r.Context()).With(slog.Int64("employee_id", emp.ID))
		ctx := shared.WithEmployee(r.Context(), emp)
		ctx = logger.WithLogger(ctx, log)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetEmployee returns the authenticated employee of the request.
func GetEmployee(r *http.Request) (*domain.Employee, bool) {
	return shared.EmployeeFromContext(r.Context())
}

// logRedacted is used where a middleware has to report an error outside a
// response.
func logRedacted(r *http.Request, msg string, err error) {
	logger.FromContext(r.Context()).Error(msg, redact.Attr(err))
}
