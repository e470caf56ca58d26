package files

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/drive-clone/api/src/domain/files"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ImportArchive godoc
// @Summary Import a ZIP archive
// @Description Unpacks a ZIP archive (field "archive") into a new folder. The folder is named after the archive unless "name" is given. Each file is stored like a regular upload.
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Param archive formData file true "ZIP archive"
// @Param parentId formData string false "Folder to create the import folder in"
// @Param name formData string false "Name of the import folder"
// @Success 201 {object} map[string]interface{} "All files stored"
// @Success 207 {object} map[string]interface{} "Some files failed"
// @Failure 400 {object} map[string]interface{} "Not a ZIP archive or limits exceeded"
// @Failure 409 {object} map[string]interface{} "Folder name already taken"
// @Failure 413 {object} map[string]interface{} "Archive too large"
// @Router /api/v1/files/import [post]
func (h *Handler) ImportArchive(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		respondError(c, h.logger, files.ErrUnauthenticated, "import archive")
		return
	}

	if h.limits.MaxFileSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.limits.MaxFileSize+multipartOverhead)
	}

	fh, err := c.FormFile("archive")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, http.StatusRequestEntityTooLarge, string(files.KindValidation), "Archive is too large")
			return
		}
		writeError(c, http.StatusBadRequest, string(files.KindValidation), "Expected a multipart form with an archive field")
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(fh.Filename), filepath.Ext(fh.Filename))
	}

	src, err := fh.Open()
	if err != nil {
		writeError(c, http.StatusBadRequest, string(files.KindValidation), "Could not read uploaded archive")
		return
	}
	defer src.Close()

	result, err := h.archives.ImportArchive(c.Request.Context(), owner, src, fh.Size, name, parentValue(c.PostForm("parentId")))
	if err != nil {
		respondError(c, h.logger, err, "import archive")
		return
	}

	h.logMutation(c, owner, result.Folder.ID, "import")
	h.logger.WithFields(logrus.Fields{
		"request_id": c.GetString("request_id"),
		"owner_id":   owner,
		"uploaded":   result.Uploaded,
		"failed":     result.Failed,
	}).Info("Archive import finished")

	status := http.StatusCreated
	if result.Failed > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, result)
}
