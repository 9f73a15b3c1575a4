package authz

import (
	"fmt"
	"sort"

	"github.com/phrazzld/rota-api/internal/domain"
)

// Permission ids, namespaced as resource.action.
const (
	TasksView        = "tasks.view"
	TasksViewAll     = "tasks.view_all"
	TasksCreate      = "tasks.create"
	TasksUpdate      = "tasks.update"
	TasksUpdateAny   = "tasks.update_any"
	SchedulesView    = "schedules.view"
	SchedulesViewAll = "schedules.view_all"
	SchedulesCreate  = "schedules.create"
	ConflictsView    = "conflicts.view"
	ConflictsResolve = "conflicts.resolve"
	RolesView        = "roles.view"
	RolesManage      = "roles.manage"
	EmployeesView    = "employees.view"
	EmployeesManage  = "employees.manage"
)

// Permission describes one entry of the permission catalog.
type Permission struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

var catalog = []Permission{
	{TasksView, "tasks", "View own tasks"},
	{TasksViewAll, "tasks", "View tasks of every employee"},
	{TasksCreate, "tasks", "Create one-off and recurring tasks"},
	{TasksUpdate, "tasks", "Start and finish own tasks"},
	{TasksUpdateAny, "tasks", "Start and finish tasks of any employee"},
	{SchedulesView, "schedules", "View own shifts"},
	{SchedulesViewAll, "schedules", "View shifts of every employee"},
	{SchedulesCreate, "schedules", "Assign shifts"},
	{ConflictsView, "conflicts", "View pending assignment conflicts"},
	{ConflictsResolve, "conflicts", "Resolve conflicts by reassigning or rescheduling"},
	{RolesView, "roles", "View roles and their permissions"},
	{RolesManage, "roles", "Change role permissions"},
	{EmployeesView, "employees", "View the employee directory"},
	{EmployeesManage, "employees", "Add employees, change their role and activate or deactivate them"},
}

var known = func() map[string]struct{} {
	m := make(map[string]struct{}, len(catalog))
	for _, p := range catalog {
		m[p.ID] = struct{}{}
	}
	return m
}()

// Catalog returns every known permission in display order.
func Catalog() []Permission {
	return append([]Permission(nil), catalog...)
}

// CatalogByCategory groups the catalog by category.
func CatalogByCategory() map[string][]Permission {
	out := make(map[string][]Permission)
	for _, p := range catalog {
		out[p.Category] = append(out[p.Category], p)
	}
	return out
}

// IsKnown reports whether id is in the permission catalog.
func IsKnown(id string) bool {
	_, ok := known[id]
	return ok
}

// ValidatePermissions checks every id against the catalog and returns the
// set deduplicated and sorted. Unknown ids fail with domain.ErrInvalidPermission.
func ValidatePermissions(ids []string) ([]string, error) {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	var unknown []string
	for _, id := range ids {
		if !IsKnown(id) {
			unknown = append(unknown, id)
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(unknown) > 0 {
		return nil, domain.NewValidationError("permissions",
			fmt.Sprintf("contains unknown permissions %v", unknown), domain.ErrInvalidPermission)
	}
	sort.Strings(out)
	return out, nil
}

// Default role ids.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleWorker  = "worker"
)

// DefaultRoles returns the roles a fresh installation starts with.
func DefaultRoles() []*domain.Role {
	all := make([]string, 0, len(catalog))
	for _, p := range catalog {
		all = append(all, p.ID)
	}
	return []*domain.Role{
		{
			ID:          RoleAdmin,
			Name:        "Administrator",
			Description: "Full access",
			Permissions: all,
		},
		{
			ID:          RoleManager,
			Name:        "Manager",
			Description: "Plans shifts and tasks and resolves conflicts",
			Permissions: []string{
				TasksView, TasksViewAll, TasksCreate, TasksUpdate, TasksUpdateAny,
				SchedulesView, SchedulesViewAll, SchedulesCreate,
				ConflictsView, ConflictsResolve,
				RolesView,
				EmployeesView,
			},
		},
		{
			ID:          RoleWorker,
			Name:        "Worker",
			Description: "Works assigned tasks",
			Permissions: []string{TasksView, TasksUpdate, SchedulesView},
		},
	}
}
