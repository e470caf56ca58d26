package files_repo

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// OwnerLocker runs callbacks inside a transaction that holds an owner-scoped
// lock. On PostgreSQL this is a transaction advisory lock; SQLite serializes
// writers on its single connection.
type OwnerLocker struct {
	db           *sqlx.DB
	entries      *EntryRepository
	reservations *ReservationRepository
	logger       *logrus.Logger
}

func NewOwnerLocker(db *sqlx.DB, entries *EntryRepository, reservations *ReservationRepository, logger *logrus.Logger) *OwnerLocker {
	return &OwnerLocker{
		db:           db,
		entries:      entries,
		reservations: reservations,
		logger:       logger,
	}
}

// WithOwnerLock executes fn with stores bound to the locked transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (l *OwnerLocker) WithOwnerLock(ctx context.Context, ownerID string, fn func(tx *OwnerTx) error) (err error) {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin owner transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				l.logger.WithError(rbErr).WithField("owner_id", ownerID).Warn("Owner transaction rollback failed")
			}
		}
	}()

	if l.db.DriverName() == "postgres" {
		if _, err = tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", ownerLockKey(ownerID)); err != nil {
			return fmt.Errorf("acquire owner lock: %w", err)
		}
	}

	if err = fn(&OwnerTx{
		Entries:      l.entries.withExecutor(tx),
		Reservations: l.reservations.withExecutor(tx),
	}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit owner transaction: %w", err)
	}
	return nil
}

// ownerLockKey derives a stable advisory lock key from the owner id
func ownerLockKey(ownerID string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("entries:"))
	_, _ = h.Write([]byte(ownerID))
	return int64(h.Sum64())
}
