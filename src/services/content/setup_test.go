package content

import (
	"context"
	"testing"
	"time"

	"github.com/drive-clone/api/src/database"
	"github.com/drive-clone/api/src/domain/auth"
	"github.com/drive-clone/api/src/domain/files"
	"github.com/drive-clone/api/src/drivers/storage"
	files_repo "github.com/drive-clone/api/src/repository/files"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const (
	testOwner = "user-1"
	otherUser = "user-2"
	mib       = int64(1024 * 1024)
)

type staticSigner struct{}

func (staticSigner) GenerateBlobToken(grant storage.BlobGrant) (string, error) {
	return "token-" + grant.BlobID, nil
}

type contentEnv struct {
	hierarchy    *HierarchyService
	quota        *QuotaService
	upload       *UploadService
	entries      *files_repo.EntryRepository
	reservations *files_repo.ReservationRepository
	blobs        *storage.LocalStore
}

type envOption func(*HierarchyOptions, *QuotaLimits)

func withPolicy(p files.FolderDeletePolicy) envOption {
	return func(o *HierarchyOptions, _ *QuotaLimits) { o.DeletePolicy = p }
}

func withLimits(perFile, total int64) envOption {
	return func(_ *HierarchyOptions, l *QuotaLimits) {
		l.MaxFileSize = perFile
		l.MaxTotalStorage = total
	}
}

func setupContent(t *testing.T, opts ...envOption) *contentEnv {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	db, err := database.NewTestDatabase(logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	entries := files_repo.NewEntryRepository(db.DB, logger)
	require.NoError(t, entries.EnsureTable(context.Background()))
	reservations := files_repo.NewReservationRepository(db.DB, logger)
	require.NoError(t, reservations.EnsureTable(context.Background()))
	locker := files_repo.NewOwnerLocker(db.DB, entries, reservations, logger)

	blobs, err := storage.NewLocalStore(t.TempDir(), "http://drive.test", staticSigner{}, logger)
	require.NoError(t, err)

	hopts := HierarchyOptions{DeletePolicy: files.DeletePolicyReject, MaxDepth: 16}
	limits := QuotaLimits{MaxFileSize: 50 * mib, MaxTotalStorage: 500 * mib, ReservationTTL: time.Hour}
	for _, opt := range opts {
		opt(&hopts, &limits)
	}

	hierarchy := NewHierarchyService(entries, locker, blobs, hopts, logger)
	quota := NewQuotaService(entries, reservations, locker, limits, logger)

	return &contentEnv{
		hierarchy:    hierarchy,
		quota:        quota,
		upload:       NewUploadService(hierarchy, quota, blobs, locker, 3, logger),
		entries:      entries,
		reservations: reservations,
		blobs:        blobs,
	}
}

func ownerCtx(userID string) context.Context {
	return auth.ContextWithPrincipal(context.Background(), &auth.Principal{UserID: userID, Email: userID + "@example.com"})
}

func requireKind(t *testing.T, err error, kind files.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, files.IsKind(err, kind), "expected %s, got %v", kind, err)
}
