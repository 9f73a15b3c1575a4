package domain

// Role is a named bundle of permissions. Permission checks are pure set
// membership: there is no inheritance between roles or permissions.
type Role struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions"`
}

// PermissionSet returns the role's permissions as a lookup set.
// A nil role yields an empty set.
func (r *Role) PermissionSet() map[string]struct{} {
	set := make(map[string]struct{})
	if r == nil {
		return set
	}
	for _, p := range r.Permissions {
		set[p] = struct{}{}
	}
	return set
}
