package files

import (
	"github.com/drive-clone/api/src/drivers/storage"
	"github.com/drive-clone/api/src/services/content"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// BlobTokenValidator verifies the token of a local blob URL
type BlobTokenValidator interface {
	ValidateBlobToken(token string) (*storage.BlobGrant, error)
}

// UploadLimits bounds a single multipart request
type UploadLimits struct {
	MaxFileSize     int64
	MaxFilesPerCall int
}

// Handler holds dependencies for files handlers
type Handler struct {
	hierarchy content.HierarchyServiceInterface
	quota     content.QuotaServiceInterface
	upload    content.UploadServiceInterface
	archives  content.ArchiveServiceInterface
	limits    UploadLimits
	logger    *logrus.Logger
}

// NewHandler creates a new Files Handler
func NewHandler(
	hierarchy content.HierarchyServiceInterface,
	quota content.QuotaServiceInterface,
	upload content.UploadServiceInterface,
	archives content.ArchiveServiceInterface,
	limits UploadLimits,
	logger *logrus.Logger,
) *Handler {
	if limits.MaxFilesPerCall <= 0 {
		limits.MaxFilesPerCall = 20
	}
	return &Handler{
		hierarchy: hierarchy,
		quota:     quota,
		upload:    upload,
		archives:  archives,
		limits:    limits,
		logger:    logger,
	}
}

// RegisterV1Routes registers the drive routes on an authenticated group
func (h *Handler) RegisterV1Routes(rg *gin.RouterGroup) {
	files := rg.Group("/files")
	{
		files.GET("", h.ListChildren)
		files.GET("/folders", h.ListFolders)
		files.POST("/folders", h.CreateFolder)
		files.GET("/recent", h.ListRecent)
		files.GET("/search", h.Search)
		files.GET("/breadcrumbs", h.Breadcrumbs)
		files.POST("/upload", h.Upload)
		files.POST("/import", h.ImportArchive)
		files.GET("/:id", h.GetEntry)
		files.PATCH("/:id/move", h.MoveEntry)
		files.PATCH("/:id/rename", h.RenameEntry)
		files.DELETE("/:id", h.DeleteEntry)
		files.GET("/:id/view", h.ViewURL)
		files.GET("/:id/download", h.DownloadURL)
	}

	rg.GET("/storage/stats", h.StorageStats)
	rg.POST("/storage/admit", h.AdmitUpload)
}

// BlobHandler serves the signed URLs issued by the local blob store
type BlobHandler struct {
	blobs     storage.BlobStore
	validator BlobTokenValidator
	logger    *logrus.Logger
}

func NewBlobHandler(blobs storage.BlobStore, validator BlobTokenValidator, logger *logrus.Logger) *BlobHandler {
	return &BlobHandler{blobs: blobs, validator: validator, logger: logger}
}

// RegisterPublicRoutes registers the blob endpoint; the token in the URL is
// the only credential it accepts.
func (b *BlobHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/blobs/:id", b.ServeBlob)
}
