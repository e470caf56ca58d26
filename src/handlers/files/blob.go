package files

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/drive-clone/api/src/drivers/storage"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ServeBlob godoc
// @Summary Stream a blob through a signed URL
// @Description Target of the URLs issued by the local blob store. The token binds the blob id, file name and disposition.
// @Tags Files
// @Produce octet-stream
// @Param id path string true "Blob id"
// @Param token query string true "Signed blob token"
// @Success 200 {file} file "Blob content"
// @Failure 403 {object} map[string]interface{} "Invalid or expired token"
// @Failure 404 {object} map[string]interface{} "Blob not found"
// @Router /api/v1/blobs/{id} [get]
func (b *BlobHandler) ServeBlob(c *gin.Context) {
	requestID := c.GetString("request_id")
	id := c.Param("id")

	grant, err := b.validator.ValidateBlobToken(c.Query("token"))
	if err != nil || grant.BlobID != id {
		writeError(c, http.StatusForbidden, "invalid_token", "Link is invalid or has expired")
		return
	}

	ctx := c.Request.Context()
	info, err := b.blobs.Stat(ctx, id)
	if err != nil {
		b.blobError(c, err, id)
		return
	}

	rc, err := b.blobs.Open(ctx, id)
	if err != nil {
		b.blobError(c, err, id)
		return
	}
	defer rc.Close()

	contentType := grant.ContentType
	if contentType == "" {
		contentType = info.ContentType
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.Header("Content-Type", contentType)
	c.Header("Content-Length", strconv.FormatInt(info.Size, 10))
	c.Header("Content-Disposition", grant.ContentDisposition())
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("Cache-Control", "private, no-store")
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, rc); err != nil {
		b.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"blob_id":    id,
		}).WithError(err).Warn("Blob stream interrupted")
	}
}

func (b *BlobHandler) blobError(c *gin.Context, err error, id string) {
	if errors.Is(err, storage.ErrBlobNotFound) {
		writeError(c, http.StatusNotFound, "not_found", "File not found")
		return
	}
	b.logger.WithFields(logrus.Fields{
		"request_id": c.GetString("request_id"),
		"blob_id":    id,
	}).WithError(err).Error("Blob read failed")
	writeError(c, http.StatusBadGateway, "external_service_error", "Could not read file")
}
