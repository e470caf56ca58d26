package content

import (
	"context"
	"errors"
	"io"

	"github.com/drive-clone/api/src/domain/files"
	"github.com/drive-clone/api/src/drivers/storage"
	files_repo "github.com/drive-clone/api/src/repository/files"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// UploadRequest is one file of an upload. Size is the size declared by the
// client; the stored size is taken from the blob store. Open is called once.
type UploadRequest struct {
	Name     string
	MimeType string
	Size     int64
	ParentID *string
	Open     func() (io.ReadCloser, error)
}

// UploadResult is the outcome of one file of a batch
type UploadResult struct {
	Name  string       `json:"name"`
	Entry *files.Entry `json:"entry,omitempty"`
	Error string       `json:"error,omitempty"`
	Err   error        `json:"-"`
}

// UploadService writes blobs and their entries with reservation-based
// admission: reserve, write blob, insert metadata, commit. Any failure after
// the blob write deletes the blob and releases the reservation.
type UploadService struct {
	hierarchy   *HierarchyService
	quota       *QuotaService
	blobs       storage.BlobStore
	locker      files_repo.OwnerLockerInterface
	concurrency int
	logger      *logrus.Logger
}

func NewUploadService(
	hierarchy *HierarchyService,
	quota *QuotaService,
	blobs storage.BlobStore,
	locker files_repo.OwnerLockerInterface,
	concurrency int,
	logger *logrus.Logger,
) *UploadService {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &UploadService{
		hierarchy:   hierarchy,
		quota:       quota,
		blobs:       blobs,
		locker:      locker,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Upload stores one file for ownerID
func (s *UploadService) Upload(ctx context.Context, ownerID string, req UploadRequest) (*files.Entry, error) {
	if err := authorize(ctx, ownerID); err != nil {
		return nil, err
	}
	name, err := ValidateName(req.Name)
	if err != nil {
		return nil, err
	}

	reserveSize := req.Size
	if reserveSize < 0 {
		reserveSize = s.quota.Limits().MaxFileSize
	}
	if err := s.quota.CheckFileSize(name, reserveSize); err != nil {
		return nil, err
	}

	// Fail fast before any bytes move; both checks are repeated under the lock.
	if req.ParentID != nil {
		if _, err := s.hierarchy.requireFolder(ctx, s.hierarchy.entries, ownerID, *req.ParentID); err != nil {
			return nil, err
		}
	}
	if err := s.hierarchy.checkSibling(ctx, s.hierarchy.entries, ownerID, req.ParentID, name, ""); err != nil {
		return nil, err
	}

	reservation, err := s.quota.Reserve(ctx, ownerID, reserveSize)
	if err != nil {
		return nil, err
	}

	blob, err := s.writeBlob(ctx, req)
	if err != nil {
		s.release(ctx, reservation.ID)
		return nil, err
	}

	if blob.Size > s.quota.Limits().MaxFileSize {
		s.discard(ctx, blob.ID, reservation.ID)
		return nil, s.quota.CheckFileSize(name, blob.Size)
	}

	var entry *files.Entry
	err = s.locker.WithOwnerLock(ctx, ownerID, func(tx *files_repo.OwnerTx) error {
		if err := s.quota.admitLocked(ctx, tx.Entries, tx.Reservations, ownerID, blob.Size, reservation.ID); err != nil {
			return err
		}
		var err error
		entry, err = s.hierarchy.insertFile(ctx, tx.Entries, FileSpec{
			OwnerID:  ownerID,
			Name:     name,
			MimeType: req.MimeType,
			Size:     blob.Size,
			BlobID:   blob.ID,
			ParentID: req.ParentID,
		})
		if err != nil {
			return err
		}
		return tx.Reservations.Delete(ctx, reservation.ID)
	})
	if err != nil {
		s.discard(ctx, blob.ID, reservation.ID)
		return nil, files.NewExternalServiceError("commit upload", err)
	}

	return entry, nil
}

// writeBlob streams the request body into the blob store, reading at most one
// byte past the ceiling so oversize content is detected without storing it all.
func (s *UploadService) writeBlob(ctx context.Context, req UploadRequest) (*storage.BlobInfo, error) {
	if req.Open == nil {
		return nil, files.NewValidationError("File content is missing")
	}
	rc, err := req.Open()
	if err != nil {
		return nil, files.NewValidationError("Could not read uploaded file")
	}
	defer rc.Close()

	limited := io.LimitReader(rc, s.quota.Limits().MaxFileSize+1)
	blob, err := s.blobs.Put(ctx, limited, req.MimeType)
	if err != nil {
		return nil, files.NewExternalServiceError("write blob", err)
	}
	return blob, nil
}

// discard is the compensating action for a blob whose entry was not committed
func (s *UploadService) discard(ctx context.Context, blobID, reservationID string) {
	// The request context may already be cancelled; cleanup must still run.
	cleanupCtx := context.WithoutCancel(ctx)
	if err := s.blobs.Delete(cleanupCtx, blobID); err != nil && !errors.Is(err, storage.ErrBlobNotFound) {
		s.logger.WithError(err).WithField("blob_id", blobID).Warn("Failed to delete uncommitted blob")
	}
	s.release(cleanupCtx, reservationID)
}

func (s *UploadService) release(ctx context.Context, reservationID string) {
	if err := s.quota.Release(context.WithoutCancel(ctx), reservationID); err != nil {
		s.logger.WithError(err).WithField("reservation_id", reservationID).Warn("Failed to release quota reservation")
	}
}

// UploadBatch uploads files concurrently. Each file succeeds or fails on its
// own; the batch itself never fails.
func (s *UploadService) UploadBatch(ctx context.Context, ownerID string, reqs []UploadRequest) []UploadResult {
	results := make([]UploadResult, len(reqs))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range reqs {
		g.Go(func() error {
			entry, err := s.Upload(ctx, ownerID, reqs[i])
			results[i] = UploadResult{Name: reqs[i].Name, Entry: entry}
			if err != nil {
				results[i].Err = err
				results[i].Error = err.Error()
				s.logger.WithError(err).WithFields(logrus.Fields{
					"owner_id": ownerID,
					"name":     reqs[i].Name,
				}).Warn("Upload failed")
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
