package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"anoa.com/plantspeak/internal/config"
	"anoa.com/plantspeak/pkg/apperror"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"duplicate key", gorm.ErrDuplicatedKey, apperror.ErrConflict},
		{"not found", gorm.ErrRecordNotFound, apperror.ErrNotFound},
		{"postgres lock timeout", &pgconn.PgError{Code: "55P03", Message: "canceling statement due to lock timeout"}, apperror.ErrStorageBusy},
		{"postgres deadlock", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "40P01"}), apperror.ErrStorageBusy},
		{"sqlite busy", errors.New("database is locked"), apperror.ErrStorageBusy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, Classify(tt.err), tt.want)
		})
	}

	t.Run("passes through other errors", func(t *testing.T) {
		other := errors.New("disk full")
		assert.Same(t, other, Classify(other))
		assert.NoError(t, Classify(nil))
	})

	t.Run("unrelated postgres error is not a lock timeout", func(t *testing.T) {
		assert.False(t, IsLockTimeout(&pgconn.PgError{Code: "23502"}))
	})
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "file:plantspeak.db?_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL&_txlock=immediate", SQLiteDSN("plantspeak.db", 5*time.Second))
	assert.Contains(t, SQLiteDSN("x.db", 0), "_busy_timeout=5000")
}

func TestWriteTxPostgresLockTimeout(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SET LOCAL lock_timeout = '3000ms'")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET name = $1")).
		WithArgs("asha").
		WillReturnError(&pgconn.PgError{Code: "55P03", Message: "lock timeout"})
	mock.ExpectRollback()

	err = WriteTx(context.Background(), db, 3*time.Second, func(tx *gorm.DB) error {
		return tx.Exec("UPDATE users SET name = ?", "asha").Error
	})

	assert.ErrorIs(t, err, apperror.ErrStorageBusy)
	assert.True(t, apperror.IsTransient(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteTxSQLiteWaitIsBounded(t *testing.T) {
	db, err := Open(config.DatabaseConfig{
		Driver:      "sqlite",
		SQLitePath:  filepath.Join(t.TempDir(), "busy.db"),
		LockTimeout: 200 * time.Millisecond,
	}, logger.Default.LogMode(logger.Silent))
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)").Error)

	held := db.Begin()
	require.NoError(t, held.Error)
	require.NoError(t, held.Exec("INSERT INTO notes (body) VALUES (?)", "held").Error)

	start := time.Now()
	err = WriteTx(context.Background(), db, 200*time.Millisecond, func(tx *gorm.DB) error {
		return tx.Exec("INSERT INTO notes (body) VALUES (?)", "waiting").Error
	})
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, apperror.ErrStorageBusy)
	assert.Less(t, elapsed, 2*time.Second)

	t.Run("readers are not blocked by the open writer", func(t *testing.T) {
		var count int64
		require.NoError(t, db.Raw("SELECT COUNT(*) FROM notes").Scan(&count).Error)
		assert.Zero(t, count)
	})

	require.NoError(t, held.Rollback().Error)
	require.NoError(t, WriteTx(context.Background(), db, 200*time.Millisecond, func(tx *gorm.DB) error {
		return tx.Exec("INSERT INTO notes (body) VALUES (?)", "after").Error
	}))
}
