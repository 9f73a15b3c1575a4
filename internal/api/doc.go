// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It adapts the task, conflict, schedule, employee and role
// services to JSON over HTTP: handlers read the acting employee from the
// request context, translate request bodies into service calls, and map
// service errors to status codes with MapErrorToStatusCode.
//
// Staffing conflicts are not errors. POST /tasks and conflict resolution
// answer 409 with a ConflictResponse body when the chosen employee is not
// working on the chosen date.
package api
