package content

import (
	"context"
	"fmt"
	"time"

	"github.com/drive-clone/api/src/domain/files"
	files_repo "github.com/drive-clone/api/src/repository/files"
	"github.com/sirupsen/logrus"
)

const bytesPerMB = 1024 * 1024

// QuotaLimits are the per-owner storage ceilings
type QuotaLimits struct {
	MaxFileSize     int64
	MaxTotalStorage int64
	ReservationTTL  time.Duration
}

// QuotaService computes usage and admits uploads. Admission decisions that
// lead to a write are taken under the owner lock together with a reservation,
// so concurrent uploads cannot overshoot the total ceiling.
type QuotaService struct {
	entries      files_repo.EntryRepositoryInterface
	reservations files_repo.ReservationRepositoryInterface
	locker       files_repo.OwnerLockerInterface
	limits       QuotaLimits
	logger       *logrus.Logger
}

func NewQuotaService(
	entries files_repo.EntryRepositoryInterface,
	reservations files_repo.ReservationRepositoryInterface,
	locker files_repo.OwnerLockerInterface,
	limits QuotaLimits,
	logger *logrus.Logger,
) *QuotaService {
	if limits.ReservationTTL <= 0 {
		limits.ReservationTTL = 15 * time.Minute
	}
	return &QuotaService{
		entries:      entries,
		reservations: reservations,
		locker:       locker,
		limits:       limits,
		logger:       logger,
	}
}

// Limits returns the configured ceilings
func (q *QuotaService) Limits() QuotaLimits {
	return q.limits
}

// ComputeStats aggregates the owner's files into a storage snapshot
func (q *QuotaService) ComputeStats(ctx context.Context, ownerID string) (*files.StorageSnapshot, error) {
	if err := authorize(ctx, ownerID); err != nil {
		return nil, err
	}

	rows, err := q.entries.UsageByMimeType(ctx, ownerID)
	if err != nil {
		return nil, files.NewExternalServiceError("compute storage usage", err)
	}
	return files.NewStorageSnapshot(rows, CategoryForMime, q.limits.MaxTotalStorage), nil
}

// CheckFileSize applies the per-file ceiling. The boundary is inclusive.
func (q *QuotaService) CheckFileSize(name string, size int64) error {
	if size < 0 {
		return files.NewValidationError("File size cannot be negative")
	}
	if size <= q.limits.MaxFileSize {
		return nil
	}
	if name == "" {
		return files.NewValidationError("File is too large. Maximum file size is %s.", formatMB(q.limits.MaxFileSize))
	}
	return files.NewValidationError("File %q is too large. Maximum file size is %s.", name, formatMB(q.limits.MaxFileSize))
}

// AdmitUpload reports whether a file of size bytes fits: the per-file ceiling
// is checked first, then stored usage plus live reservations against the total.
func (q *QuotaService) AdmitUpload(ctx context.Context, ownerID string, size int64) error {
	if err := authorize(ctx, ownerID); err != nil {
		return err
	}
	if err := q.CheckFileSize("", size); err != nil {
		return err
	}
	return q.admitLocked(ctx, q.entries, q.reservations, ownerID, size, "")
}

// Reserve admits size bytes and holds them until Release or expiry
func (q *QuotaService) Reserve(ctx context.Context, ownerID string, size int64) (*files.Reservation, error) {
	if err := authorize(ctx, ownerID); err != nil {
		return nil, err
	}
	if err := q.CheckFileSize("", size); err != nil {
		return nil, err
	}

	var res *files.Reservation
	err := q.locker.WithOwnerLock(ctx, ownerID, func(tx *files_repo.OwnerTx) error {
		if err := q.admitLocked(ctx, tx.Entries, tx.Reservations, ownerID, size, ""); err != nil {
			return err
		}
		var err error
		res, err = tx.Reservations.Create(ctx, ownerID, size, q.limits.ReservationTTL)
		return err
	})
	if err != nil {
		return nil, files.NewExternalServiceError("reserve quota", err)
	}

	q.logger.WithFields(logrus.Fields{
		"owner_id":       ownerID,
		"reservation_id": res.ID,
		"size":           size,
	}).Debug("Quota reserved")

	return res, nil
}

// Release drops a reservation. Unknown ids are ignored.
func (q *QuotaService) Release(ctx context.Context, reservationID string) error {
	if reservationID == "" {
		return nil
	}
	if err := q.reservations.Delete(ctx, reservationID); err != nil {
		return files.NewExternalServiceError("release quota", err)
	}
	return nil
}

// admitLocked runs the aggregate check against the given stores, skipping
// excludeID among the reservations (the caller's own hold).
func (q *QuotaService) admitLocked(
	ctx context.Context,
	entries files_repo.EntryRepositoryInterface,
	reservations files_repo.ReservationRepositoryInterface,
	ownerID string,
	size int64,
	excludeID string,
) error {
	rows, err := entries.UsageByMimeType(ctx, ownerID)
	if err != nil {
		return files.NewExternalServiceError("compute storage usage", err)
	}
	var used int64
	for _, row := range rows {
		used += row.Size
	}

	pending, err := reservations.PendingBytes(ctx, ownerID, excludeID)
	if err != nil {
		return files.NewExternalServiceError("sum quota reservations", err)
	}

	if used+pending+size > q.limits.MaxTotalStorage {
		remaining := q.limits.MaxTotalStorage - used - pending
		if remaining < 0 {
			remaining = 0
		}
		q.logger.WithFields(logrus.Fields{
			"owner_id": ownerID,
			"used":     used,
			"pending":  pending,
			"size":     size,
		}).Info("Upload rejected by storage quota")
		return files.NewQuotaExceededError("Storage limit exceeded. You have %.1fMB remaining.", float64(remaining)/bytesPerMB)
	}
	return nil
}

func formatMB(n int64) string {
	if n%bytesPerMB == 0 {
		return fmt.Sprintf("%dMB", n/bytesPerMB)
	}
	return fmt.Sprintf("%.1fMB", float64(n)/bytesPerMB)
}
