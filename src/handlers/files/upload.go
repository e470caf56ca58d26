package files

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/drive-clone/api/src/domain/files"
	"github.com/drive-clone/api/src/services/content"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// multipartOverhead is slack for boundaries and part headers on top of the
// file bytes a request may carry.
const multipartOverhead = 1 << 20

// AdmitRequest is the body of POST /api/v1/storage/admit
type AdmitRequest struct {
	Size int64 `json:"size"`
}

// Upload godoc
// @Summary Upload files
// @Description Multipart upload of one or more files (field "files") into an optional folder (field "parentId"). Every file succeeds or fails on its own.
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Files to upload"
// @Param parentId formData string false "Target folder id"
// @Success 201 {object} map[string]interface{} "All files stored"
// @Success 207 {object} map[string]interface{} "Some files failed"
// @Failure 400 {object} map[string]interface{} "Invalid request or file"
// @Failure 413 {object} map[string]interface{} "Too large or over quota"
// @Router /api/v1/files/upload [post]
func (h *Handler) Upload(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		respondError(c, h.logger, files.ErrUnauthenticated, "upload")
		return
	}
	requestID := c.GetString("request_id")

	if h.limits.MaxFileSize > 0 {
		maxBody := h.limits.MaxFileSize*int64(h.limits.MaxFilesPerCall) + multipartOverhead
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBody)
	}

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, http.StatusRequestEntityTooLarge, string(files.KindValidation), "Upload request is too large")
			return
		}
		writeError(c, http.StatusBadRequest, string(files.KindValidation), "Expected a multipart form with a files field")
		return
	}
	defer func() {
		if err := form.RemoveAll(); err != nil {
			h.logger.WithError(err).WithField("request_id", requestID).Warn("Failed to remove multipart temp files")
		}
	}()

	headers := form.File["files"]
	if len(headers) == 0 {
		writeError(c, http.StatusBadRequest, string(files.KindValidation), "No files provided")
		return
	}
	if len(headers) > h.limits.MaxFilesPerCall {
		writeError(c, http.StatusBadRequest, string(files.KindValidation), "Too many files in one upload")
		return
	}

	var parentID *string
	if values := form.Value["parentId"]; len(values) > 0 {
		parentID = parentValue(values[0])
	}

	reqs := make([]content.UploadRequest, len(headers))
	for i, fh := range headers {
		reqs[i] = content.UploadRequest{
			Name:     fh.Filename,
			MimeType: detectMimeType(fh),
			Size:     fh.Size,
			ParentID: parentID,
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		}
	}

	results := h.upload.UploadBatch(c.Request.Context(), owner, reqs)

	// A single file keeps the plain error contract of the other endpoints.
	if len(results) == 1 && results[0].Err != nil {
		respondError(c, h.logger, results[0].Err, "upload")
		return
	}

	uploaded := 0
	for _, r := range results {
		if r.Err == nil {
			uploaded++
			h.logMutation(c, owner, r.Entry.ID, "upload")
		}
	}

	h.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"owner_id":   owner,
		"uploaded":   uploaded,
		"failed":     len(results) - uploaded,
	}).Info("Upload batch finished")

	status := http.StatusCreated
	if uploaded != len(results) {
		status = http.StatusMultiStatus
	}
	c.JSON(status, gin.H{
		"uploaded": uploaded,
		"failed":   len(results) - uploaded,
		"results":  results,
	})
}

// detectMimeType prefers the part's declared type and falls back to the
// file extension when the client sent none or a generic one.
func detectMimeType(fh *multipart.FileHeader) string {
	declared := strings.TrimSpace(fh.Header.Get("Content-Type"))
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(fh.Filename))); byExt != "" {
		return byExt
	}
	return declared
}

// StorageStats godoc
// @Summary Storage usage
// @Description Usage by category with the remaining space under the account ceiling
// @Tags Storage
// @Produce json
// @Success 200 {object} files.StorageSnapshot
// @Router /api/v1/storage/stats [get]
func (h *Handler) StorageStats(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		respondError(c, h.logger, files.ErrUnauthenticated, "stats")
		return
	}

	stats, err := h.quota.ComputeStats(c.Request.Context(), owner)
	if err != nil {
		respondError(c, h.logger, err, "stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// AdmitUpload godoc
// @Summary Check whether a file would fit
// @Description Lets a client reject a file before sending its bytes. The upload itself is checked again.
// @Tags Storage
// @Accept json
// @Produce json
// @Param request body AdmitRequest true "File size in bytes"
// @Success 204 "The file fits"
// @Failure 400 {object} map[string]interface{} "Over the per-file ceiling"
// @Failure 413 {object} map[string]interface{} "Over the storage ceiling"
// @Router /api/v1/storage/admit [post]
func (h *Handler) AdmitUpload(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		respondError(c, h.logger, files.ErrUnauthenticated, "admit")
		return
	}

	var req AdmitRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Size < 0 {
		writeError(c, http.StatusBadRequest, string(files.KindValidation), "size must be a non-negative integer")
		return
	}

	if err := h.quota.AdmitUpload(c.Request.Context(), owner, req.Size); err != nil {
		respondError(c, h.logger, err, "admit")
		return
	}
	c.Status(http.StatusNoContent)
}
