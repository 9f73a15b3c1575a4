// Package store defines the persistence contracts for employees, roles,
// shifts, tasks, recurrence templates and conflict notifications, and the
// Transactor that groups writes into one unit of work.
package store
