package authz

import (
	"fmt"
	"strings"

	"github.com/phrazzld/rota-api/internal/domain"
)

// ForbiddenError reports that an actor lacks the permissions an operation needs.
// It matches domain.ErrForbidden with errors.Is.
type ForbiddenError struct {
	EmployeeID int64
	Role       string
	// Required lists the permissions that were checked.
	Required []string
	// AnyOf is true when holding any one of Required would have been enough.
	AnyOf bool
}

// Error implements the error interface.
func (e *ForbiddenError) Error() string {
	if len(e.Required) == 1 {
		return fmt.Sprintf("forbidden: role %q lacks permission %s", e.Role, e.Required[0])
	}
	mode := "all of"
	if e.AnyOf {
		mode = "one of"
	}
	return fmt.Sprintf("forbidden: role %q needs %s [%s]", e.Role, mode, strings.Join(e.Required, ", "))
}

// Unwrap returns domain.ErrForbidden.
func (e *ForbiddenError) Unwrap() error {
	return domain.ErrForbidden
}
