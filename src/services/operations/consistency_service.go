package operations

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/drive-clone/api/src/drivers/storage"
	files_repo "github.com/drive-clone/api/src/repository/files"
	"github.com/sirupsen/logrus"
)

// DefaultOrphanGrace is how old an unreferenced blob must be before the sweep
// deletes it. Younger blobs may belong to an upload that has not committed yet.
const DefaultOrphanGrace = 15 * time.Minute

// ErrSweepRunning is returned when a reconciliation is already in progress
var ErrSweepRunning = errors.New("reconciliation already running")

// SweepReport summarizes one reconciliation pass
type SweepReport struct {
	ReservationsPurged int64         `json:"reservationsPurged"`
	BlobsChecked       int           `json:"blobsChecked"`
	OrphansDeleted     int           `json:"orphansDeleted"`
	Failures           int           `json:"failures"`
	Duration           time.Duration `json:"duration"`
}

// ConsistencyService brings metadata and blob storage back in line after
// partial failures: it drops expired quota reservations and deletes blobs no
// entry references.
type ConsistencyService struct {
	entries      files_repo.EntryRepositoryInterface
	reservations files_repo.ReservationRepositoryInterface
	blobs        storage.BlobStore
	grace        time.Duration
	logger       *logrus.Logger
	now          func() time.Time

	mu    sync.Mutex
	cycle int64
}

func NewConsistencyService(
	entries files_repo.EntryRepositoryInterface,
	reservations files_repo.ReservationRepositoryInterface,
	blobs storage.BlobStore,
	grace time.Duration,
	logger *logrus.Logger,
) *ConsistencyService {
	if grace <= 0 {
		grace = DefaultOrphanGrace
	}

	return &ConsistencyService{
		entries:      entries,
		reservations: reservations,
		blobs:        blobs,
		grace:        grace,
		logger:       logger,
		now:          time.Now,
	}
}

// Logger exposes the service logger to the scheduler
func (s *ConsistencyService) Logger() *logrus.Logger {
	return s.logger
}

// RunReconciliation performs a single pass. Concurrent calls do not overlap;
// the second one returns ErrSweepRunning.
func (s *ConsistencyService) RunReconciliation(ctx context.Context) (*SweepReport, error) {
	if !s.mu.TryLock() {
		return nil, ErrSweepRunning
	}
	defer s.mu.Unlock()

	s.cycle++
	start := time.Now()
	report := &SweepReport{}

	s.logger.WithField("cycle", s.cycle).Info("Consistency reconciliation started")

	purged, err := s.reservations.PurgeExpired(ctx)
	if err != nil {
		return nil, fmt.Errorf("purge expired reservations: %w", err)
	}
	report.ReservationsPurged = purged

	blobs, err := s.blobs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}

	cutoff := s.now().Add(-s.grace)
	for _, blob := range blobs {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}

		report.BlobsChecked++
		if blob.ModTime.After(cutoff) {
			continue
		}

		referenced, err := s.entries.HasBlobReference(ctx, blob.ID)
		if err != nil {
			s.logger.WithError(err).WithField("blob_id", blob.ID).Error("Failed to check blob reference")
			report.Failures++
			continue
		}
		if referenced {
			continue
		}

		if err := s.blobs.Delete(ctx, blob.ID); err != nil && !errors.Is(err, storage.ErrBlobNotFound) {
			s.logger.WithError(err).WithField("blob_id", blob.ID).Error("Failed to delete orphaned blob")
			report.Failures++
			continue
		}

		s.logger.WithFields(logrus.Fields{
			"blob_id": blob.ID,
			"size":    blob.Size,
		}).Warn("Orphaned blob removed")
		report.OrphansDeleted++
	}

	report.Duration = time.Since(start)
	s.logger.WithFields(logrus.Fields{
		"cycle":               s.cycle,
		"duration_ms":         report.Duration.Milliseconds(),
		"reservations_purged": report.ReservationsPurged,
		"blobs_checked":       report.BlobsChecked,
		"orphans_removed":     report.OrphansDeleted,
		"failures":            report.Failures,
	}).Info("Consistency reconciliation complete")

	return report, nil
}
