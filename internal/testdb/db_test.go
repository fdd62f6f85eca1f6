package testdb

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldSkip(t *testing.T) {
	t.Setenv(EnvDatabaseURL, "")
	assert.True(t, ShouldSkip())

	t.Setenv(EnvDatabaseURL, "postgres://localhost/vocab_test")
	assert.False(t, ShouldSkip())
	assert.Equal(t, "postgres://localhost/vocab_test", DatabaseURL())
}

func TestWithTxRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO cards").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectRollback()

	WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		_, err := tx.Exec("INSERT INTO cards (word) VALUES ('fast')")
		require.NoError(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "boom", func() {
		WithTx(t, db, func(*testing.T, *sql.Tx) { panic("boom") })
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}
