// Package service contains the application use cases of the scheduling core
// that sit directly behind the HTTP API: task assignment with the staffing
// conflict guard, task lifecycle, shift scheduling, the employee directory and
// role management.
//
// Services receive their stores, the staffing checker and the authorization
// guard through constructor injection and depend only on the interfaces in
// internal/store, never on a concrete database. Every operation takes the
// acting employee and checks its permissions before touching data.
//
// Error handling:
//   - Expected conditions are returned as the sentinel errors of the layers
//     below (store.ErrNotFound family, domain.ErrValidation family,
//     domain.ErrForbidden, domain.ErrInactiveEmployee) so the API can map
//     them with errors.Is.
//   - A staffing conflict is not an error: CreateTask reports it through
//     CreateTaskResult.Conflict.
//   - Unexpected failures are wrapped in *ServiceError.
//
// The recurrence engine and the conflict queue live in the recurrence and
// conflict subpackages.
package service
