package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/rota-api/internal/api/shared"
	"github.com/phrazzld/rota-api/internal/authz"
	"github.com/phrazzld/rota-api/internal/platform/logger"
	"github.com/phrazzld/rota-api/internal/service"
)

// RoleHandler serves role and permission endpoints.
type RoleHandler struct {
	roles  service.RoleService
	logger *slog.Logger
}

// NewRoleHandler creates a new RoleHandler.
func NewRoleHandler(roles service.RoleService, logger *slog.Logger) *RoleHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for RoleHandler")
	}
	return &RoleHandler{
		roles:  roles,
		logger: logger.With(slog.String("component", "role_handler")),
	}
}

// ListRoles handles GET /roles.
func (h *RoleHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	emp, ok := requireEmployee(w, r)
	if !ok {
		return
	}

	roles, err := h.roles.ListRoles(r.Context(), emp)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list roles")
		return
	}
	out := make([]RoleResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, roleToResponse(role))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// GetRolePermissions handles GET /roles/{id}/permissions.
func (h *RoleHandler) GetRolePermissions(w http.ResponseWriter, r *http.Request) {
	emp, ok := requireEmployee(w, r)
	if !ok {
		return
	}

	role, err := h.roles.GetRole(r.Context(), emp, chi.URLParam(r, "id"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get role")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, roleToResponse(role))
}

// UpdateRolePermissions handles PUT /roles/{id}/permissions.
func (h *RoleHandler) UpdateRolePermissions(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	emp, ok := requireEmployee(w, r)
	if !ok {
		return
	}

	var req UpdatePermissionsRequest
	if !parseAndValidateRequest(w, r, &req) {
		return
	}

	roleID := chi.URLParam(r, "id")
	role, err := h.roles.UpdatePermissions(r.Context(), emp, roleID, req.Permissions)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update role permissions")
		return
	}
	log.Info("role permissions updated",
		slog.String("role_id", roleID),
		slog.Int("permission_count", len(role.Permissions)))
	shared.RespondWithJSON(w, r, http.StatusOK, roleToResponse(role))
}

// Catalog handles GET /permissions.
func (h *RoleHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	emp, ok := requireEmployee(w, r)
	if !ok {
		return
	}

	perms, err := h.roles.Catalog(r.Context(), emp)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list permissions")
		return
	}
	byCategory := make(map[string][]authz.Permission)
	for _, p := range perms {
		byCategory[p.Category] = append(byCategory[p.Category], p)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, PermissionCatalogResponse{
		Permissions: perms,
		ByCategory:  byCategory,
	})
}

// MyPermissions handles GET /me/permissions.
func (h *RoleHandler) MyPermissions(w http.ResponseWriter, r *http.Request) {
	emp, ok := requireEmployee(w, r)
	if !ok {
		return
	}

	perms, err := h.roles.MyPermissions(r.Context(), emp)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load permissions")
		return
	}
	if perms == nil {
		perms = []string{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, MyPermissionsResponse{
		EmployeeID:  emp.ID,
		Role:        emp.Role,
		Permissions: perms,
	})
}
