package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/phrazzld/rota-api/internal/api/shared"
	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/service"
)

// EmployeeHandler serves the employee directory.
type EmployeeHandler struct {
	employees service.EmployeeService
	logger    *slog.Logger
}

// NewEmployeeHandler creates a new EmployeeHandler.
func NewEmployeeHandler(employees service.EmployeeService, logger *slog.Logger) *EmployeeHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for EmployeeHandler")
	}
	return &EmployeeHandler{
		employees: employees,
		logger:    logger.With(slog.String("component", "employee_handler")),
	}
}

// ListEmployees handles GET /employees. active=true limits the list to
// employees that can receive tasks.
func (h *EmployeeHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	emp, ok := requireEmployee(w, r)
	if !ok {
		return
	}

	var activeOnly bool
	if raw := r.URL.Query().Get("active"); raw != "" {
		var err error
		if activeOnly, err = strconv.ParseBool(raw); err != nil {
			HandleAPIError(w, r, domain.NewValidationError("active", "must be true or false", domain.ErrValidation), "")
			return
		}
	}

	employees, err := h.employees.ListEmployees(r.Context(), emp, activeOnly)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list employees")
		return
	}
	out := make([]EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		out = append(out, employeeToResponse(e))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// CreateEmployee handles POST /employees.
func (h *EmployeeHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	emp, ok := requireEmployee(w, r)
	if !ok {
		return
	}

	var req CreateEmployeeRequest
	if !parseAndValidateRequest(w, r, &req) {
		return
	}

	created, err := h.employees.CreateEmployee(r.Context(), emp, service.CreateEmployeeRequest{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create employee")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, employeeToResponse(created))
}

// UpdateEmployee handles PUT /employees/{id}.
func (h *EmployeeHandler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	emp, ok := requireEmployee(w, r)
	if !ok {
		return
	}
	id, err := getPathEmployeeID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req UpdateEmployeeRequest
	if !parseAndValidateRequest(w, r, &req) {
		return
	}

	updated, err := h.employees.UpdateEmployee(r.Context(), emp, id, service.UpdateEmployeeRequest{
		Name:   req.Name,
		Email:  req.Email,
		Role:   req.Role,
		Active: req.Active,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update employee")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, employeeToResponse(updated))
}
