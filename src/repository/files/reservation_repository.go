package files_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/drive-clone/api/src/domain/files"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// ReservationRepository tracks quota held by uploads that have not been
// committed yet. Expired rows no longer count against the owner.
type ReservationRepository struct {
	db     sqlx.ExtContext
	logger *logrus.Logger
	now    func() time.Time
}

func NewReservationRepository(db *sqlx.DB, logger *logrus.Logger) *ReservationRepository {
	return &ReservationRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// SetClock overrides the timestamp source (tests)
func (r *ReservationRepository) SetClock(now func() time.Time) {
	r.now = now
}

func (r *ReservationRepository) withExecutor(ext sqlx.ExtContext) *ReservationRepository {
	return &ReservationRepository{db: ext, logger: r.logger, now: r.now}
}

func (r *ReservationRepository) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Microsecond)
}

// EnsureTable creates the quota_reservations table
func (r *ReservationRepository) EnsureTable(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS quota_reservations (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			size BIGINT NOT NULL CHECK (size >= 0),
			created_at TIMESTAMP NOT NULL,
			expires_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_quota_reservations_owner ON quota_reservations (owner_id, expires_at)`,
	}

	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure quota_reservations table: %w", err)
		}
	}
	return nil
}

// Create holds size bytes for ownerID until ttl elapses
func (r *ReservationRepository) Create(ctx context.Context, ownerID string, size int64, ttl time.Duration) (*files.Reservation, error) {
	now := r.timestamp()
	res := &files.Reservation{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Size:      size,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	query := `INSERT INTO quota_reservations (id, owner_id, size, created_at, expires_at)
		VALUES (:id, :owner_id, :size, :created_at, :expires_at)`
	bound, args, err := r.db.BindNamed(query, res)
	if err != nil {
		return nil, fmt.Errorf("bind reservation insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, bound, args...); err != nil {
		return nil, fmt.Errorf("insert reservation: %w", err)
	}
	return res, nil
}

// Delete releases a reservation. Releasing an unknown id is not an error.
func (r *ReservationRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM quota_reservations WHERE id = ?"), id); err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	return nil
}

// PendingBytes sums the live reservations of an owner, skipping excludeID
func (r *ReservationRepository) PendingBytes(ctx context.Context, ownerID, excludeID string) (int64, error) {
	query := `SELECT COALESCE(SUM(size), 0) FROM quota_reservations
		WHERE owner_id = ? AND expires_at > ? AND id <> ?`

	var total int64
	if err := sqlx.GetContext(ctx, r.db, &total, r.db.Rebind(query), ownerID, r.timestamp(), excludeID); err != nil {
		return 0, fmt.Errorf("sum reservations: %w", err)
	}
	return total, nil
}

// PurgeExpired deletes reservations whose ttl has elapsed
func (r *ReservationRepository) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM quota_reservations WHERE expires_at <= ?"), r.timestamp())
	if err != nil {
		return 0, fmt.Errorf("purge reservations: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}
