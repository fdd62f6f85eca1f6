// Package testdb provides helpers for tests that need a real Postgres database.
//
// Tests run inside a transaction that is always rolled back, so they can run
// in parallel against a shared database without cleanup:
//
//	func TestSomething(t *testing.T) {
//	    db := testdb.Open(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        // use tx
//	    })
//	}
//
// Open skips the test when VOCAB_TEST_DATABASE_URL is not set.
package testdb
