package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/rota-api/internal/api/shared"
	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/domain/calendar"
	"github.com/phrazzld/rota-api/internal/platform/logger"
)

// requireEmployee returns the authenticated employee, or writes a 401 and
// returns false.
func requireEmployee(w http.ResponseWriter, r *http.Request) (*domain.Employee, bool) {
	emp, ok := shared.EmployeeFromContext(r.Context())
	if !ok {
		logger.FromContext(r.Context()).Warn("employee not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return nil, false
	}
	return emp, true
}

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrValidation)
	}
	return id, nil
}

// handleEmployeeAndPathUUID combines requireEmployee and getPathUUID. It
// writes the error response itself when either fails.
func handleEmployeeAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	log *slog.Logger,
) (*domain.Employee, uuid.UUID, bool) {
	emp, ok := requireEmployee(w, r)
	if !ok {
		return nil, uuid.Nil, false
	}

	id, err := getPathUUID(r, paramName)
	if err != nil {
		log.Debug("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return nil, uuid.Nil, false
	}
	return emp, id, true
}

// parseAndValidateRequest decodes and validates a JSON body into v, writing a
// 400 response on failure.
func parseAndValidateRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}

// parseDate parses an optional YYYY-MM-DD value. Empty input yields the zero time.
func parseDate(field, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	d, err := calendar.ParseDate(raw)
	if err != nil {
		return time.Time{}, domain.NewValidationError(field, "must be a YYYY-MM-DD date", domain.ErrInvalidDate)
	}
	return d, nil
}

// getPathEmployeeID extracts a positive integer employee id path parameter.
func getPathEmployeeID(r *http.Request, paramName string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, paramName), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(paramName, "must be a positive integer", domain.ErrValidation)
	}
	return id, nil
}

// parseEmployeeIDQuery parses the optional employee_id query parameter.
func parseEmployeeIDQuery(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("employee_id")
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("employee_id", "must be a positive integer", domain.ErrValidation)
	}
	return id, nil
}
