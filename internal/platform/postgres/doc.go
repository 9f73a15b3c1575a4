// Package postgres provides PostgreSQL implementations of the persistence
// interfaces defined in the internal/store package, plus the embedded goose
// migrations that create the schema and seed the default roles.
//
// Every store accepts a store.DBTX so the same code runs against a *sql.DB or
// a *sql.Tx. Transactor wires the stores to a single transaction for units of
// work that must be atomic, such as advancing a recurrence template together
// with the tasks it materializes.
package postgres
