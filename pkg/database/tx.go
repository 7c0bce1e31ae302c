package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"anoa.com/plantspeak/pkg/apperror"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes that mean "gave up waiting for someone else".
const (
	pgLockNotAvailable = "55P03"
	pgDeadlockDetected = "40P01"
	pgQueryCanceled    = "57014"
	pgSerialization    = "40001"
)

// WriteTx runs fn inside one transaction. On postgres the lock wait is bounded
// by lockTimeout for the duration of the transaction; sqlite bounds it through
// the busy timeout in the DSN, which also covers BEGIN IMMEDIATE. Errors come
// back classified.
func WriteTx(ctx context.Context, db *gorm.DB, lockTimeout time.Duration, fn func(tx *gorm.DB) error) error {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" && lockTimeout > 0 {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return fn(tx)
	})
	return Classify(err)
}

// Classify maps driver errors onto the application error taxonomy. Errors that
// already carry an apperror sentinel pass through untouched.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", apperror.ErrConflict, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %v", apperror.ErrNotFound, err)
	case IsLockTimeout(err):
		return fmt.Errorf("%w: %v", apperror.ErrStorageBusy, err)
	}
	return err
}

// IsLockTimeout reports whether err means the storage engine declined the
// write because another writer held the lock for too long.
func IsLockTimeout(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgLockNotAvailable, pgDeadlockDetected, pgQueryCanceled, pgSerialization:
			return true
		}
		return false
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "sqlite_busy")
}
