// Package domain holds the scheduling entities: employees and roles, shift
// assignments, task instances, recurrence templates and conflict
// notifications, together with their validation rules and sentinel errors.
// It has no knowledge of storage or transport.
package domain
