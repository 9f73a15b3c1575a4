package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/rota-api/internal/api/shared"
	"github.com/phrazzld/rota-api/internal/service"
	"github.com/phrazzld/rota-api/internal/store"
)

// ScheduleHandler serves shift schedule endpoints.
type ScheduleHandler struct {
	schedules service.ScheduleService
	logger    *slog.Logger
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(schedules service.ScheduleService, logger *slog.Logger) *ScheduleHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ScheduleHandler")
	}
	return &ScheduleHandler{
		schedules: schedules,
		logger:    logger.With(slog.String("component", "schedule_handler")),
	}
}

// ListShifts handles GET /schedules with optional employee_id, from and to.
func (h *ScheduleHandler) ListShifts(w http.ResponseWriter, r *http.Request) {
	emp, ok := requireEmployee(w, r)
	if !ok {
		return
	}

	var filter store.ShiftFilter
	var err error
	if filter.EmployeeID, err = parseEmployeeIDQuery(r); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if filter.From, err = parseDate("from", r.URL.Query().Get("from")); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if filter.To, err = parseDate("to", r.URL.Query().Get("to")); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shifts, err := h.schedules.ListShifts(r.Context(), emp, filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list shifts")
		return
	}

	out := make([]ShiftResponse, 0, len(shifts))
	for _, s := range shifts {
		out = append(out, shiftToResponse(s))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// CreateShift handles POST /schedules.
func (h *ScheduleHandler) CreateShift(w http.ResponseWriter, r *http.Request) {
	emp, ok := requireEmployee(w, r)
	if !ok {
		return
	}

	var req CreateShiftRequest
	if !parseAndValidateRequest(w, r, &req) {
		return
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shift, err := h.schedules.CreateShift(r.Context(), emp, service.CreateShiftRequest{
		EmployeeID: req.EmployeeID,
		Date:       date,
		Label:      req.Label,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create shift")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, shiftToResponse(shift))
}
