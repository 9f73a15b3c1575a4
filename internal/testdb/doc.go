//go:build integration

// Package testdb provides helpers for tests that run against a real
// PostgreSQL database.
//
// Tests are skipped unless ROTA_TEST_DATABASE_URL (or DATABASE_URL) is set.
// The schema is migrated once per connection and each test body runs in a
// transaction that is rolled back afterwards, so tests may run in parallel:
//
//	func TestShiftStore(t *testing.T) {
//	    db := testdb.GetTestDBWithT(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        shifts := postgres.NewPostgresShiftStore(tx, nil)
//	        ...
//	    })
//	}
package testdb
