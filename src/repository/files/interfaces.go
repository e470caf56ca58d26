package files_repo

import (
	"context"
	"time"

	"github.com/drive-clone/api/src/domain/files"
)

// EntryRepositoryInterface defines the entry store operations used by the core
type EntryRepositoryInterface interface {
	Query(ctx context.Context, filter files.EntryFilter, order files.EntryOrder, limit int) ([]files.Entry, error)
	Get(ctx context.Context, id string) (*files.Entry, error)
	Create(ctx context.Context, entry *files.Entry) error
	Update(ctx context.Context, id string, patch files.EntryPatch) (*files.Entry, error)
	Delete(ctx context.Context, id string) error
	UsageByMimeType(ctx context.Context, ownerID string) ([]files.MimeUsage, error)
	HasBlobReference(ctx context.Context, blobID string) (bool, error)
}

// ReservationRepositoryInterface defines quota reservation bookkeeping
type ReservationRepositoryInterface interface {
	Create(ctx context.Context, ownerID string, size int64, ttl time.Duration) (*files.Reservation, error)
	Delete(ctx context.Context, id string) error
	PendingBytes(ctx context.Context, ownerID, excludeID string) (int64, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

// OwnerTx exposes both stores bound to one locked transaction
type OwnerTx struct {
	Entries      EntryRepositoryInterface
	Reservations ReservationRepositoryInterface
}

// OwnerLockerInterface serializes mutations within one owner's namespace
type OwnerLockerInterface interface {
	WithOwnerLock(ctx context.Context, ownerID string, fn func(tx *OwnerTx) error) error
}
