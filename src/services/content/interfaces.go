package content

import (
	"context"
	"io"

	"github.com/drive-clone/api/src/domain/files"
)

// HierarchyServiceInterface defines the tree operations used by the HTTP layer
type HierarchyServiceInterface interface {
	ListChildren(ctx context.Context, ownerID string, parentID *string) ([]files.Entry, error)
	ListAllFolders(ctx context.Context, ownerID string) ([]files.Entry, error)
	ListRecentFiles(ctx context.Context, ownerID string, limit int) ([]files.Entry, error)
	Search(ctx context.Context, ownerID, query string) ([]files.Entry, error)
	Breadcrumbs(ctx context.Context, ownerID string, folderID *string) ([]files.Breadcrumb, error)
	GetEntry(ctx context.Context, ownerID, id string) (*files.Entry, error)
	CreateFolder(ctx context.Context, ownerID, name string, parentID *string) (*files.Entry, error)
	MoveEntry(ctx context.Context, ownerID, id string, newParentID *string) (*files.Entry, error)
	RenameEntry(ctx context.Context, ownerID, id, name string) (*files.Entry, error)
	DeleteEntry(ctx context.Context, ownerID, id string) error
	ViewURL(ctx context.Context, ownerID, id string) (string, error)
	DownloadURL(ctx context.Context, ownerID, id string) (string, error)
}

// QuotaServiceInterface defines usage reporting and admission
type QuotaServiceInterface interface {
	ComputeStats(ctx context.Context, ownerID string) (*files.StorageSnapshot, error)
	AdmitUpload(ctx context.Context, ownerID string, size int64) error
}

// UploadServiceInterface defines file ingestion
type UploadServiceInterface interface {
	Upload(ctx context.Context, ownerID string, req UploadRequest) (*files.Entry, error)
	UploadBatch(ctx context.Context, ownerID string, reqs []UploadRequest) []UploadResult
}

// ArchiveServiceInterface defines ZIP imports
type ArchiveServiceInterface interface {
	ImportArchive(ctx context.Context, ownerID string, src io.ReaderAt, size int64, folderName string, parentID *string) (*ImportResult, error)
}

var (
	_ HierarchyServiceInterface = (*HierarchyService)(nil)
	_ QuotaServiceInterface     = (*QuotaService)(nil)
	_ UploadServiceInterface    = (*UploadService)(nil)
	_ ArchiveServiceInterface   = (*ArchiveService)(nil)
)
