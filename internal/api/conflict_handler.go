package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/rota-api/internal/api/shared"
	"github.com/phrazzld/rota-api/internal/platform/logger"
	"github.com/phrazzld/rota-api/internal/service/conflict"
)

// ConflictHandler serves the manager's conflict queue.
type ConflictHandler struct {
	queue  conflict.Queue
	logger *slog.Logger
}

// NewConflictHandler creates a new ConflictHandler.
func NewConflictHandler(queue conflict.Queue, logger *slog.Logger) *ConflictHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ConflictHandler")
	}
	return &ConflictHandler{
		queue:  queue,
		logger: logger.With(slog.String("component", "conflict_handler")),
	}
}

// ListPending handles GET /conflicts.
func (h *ConflictHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	emp, ok := requireEmployee(w, r)
	if !ok {
		return
	}

	pending, err := h.queue.ListPending(r.Context(), emp)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list conflicts")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, notificationsToResponse(pending))
}

// Resolve handles POST /conflicts/{id}/resolve. It answers 200 with the new
// task, or 409 when the chosen employee is not working on the chosen date.
func (h *ConflictHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	emp, id, ok := handleEmployeeAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req ResolveConflictRequest
	if !parseAndValidateRequest(w, r, &req) {
		return
	}

	var action conflict.Action
	switch req.Action {
	case "reassign":
		action = conflict.Reassign{EmployeeID: req.EmployeeID}
	case "reschedule":
		date, err := parseDate("date", req.Date)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		action = conflict.Reschedule{Date: date}
	}

	outcome, err := h.queue.Resolve(r.Context(), emp, id, action)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to resolve conflict")
		return
	}

	if outcome.Conflict != nil {
		shared.RespondWithJSON(w, r, http.StatusConflict, reConflictToResponse(outcome.Conflict))
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ResolveResponse{
		Task:         taskToResponse(outcome.Task),
		Notification: notificationToResponse(outcome.Notification),
	})
}
