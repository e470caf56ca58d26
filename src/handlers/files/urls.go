package files

import (
	"context"
	"net/http"

	"github.com/drive-clone/api/src/domain/files"
	"github.com/gin-gonic/gin"
)

// ViewURL godoc
// @Summary URL that renders a file inline
// @Tags Files
// @Produce json
// @Param id path string true "File id"
// @Param redirect query string false "Set to 1 to receive a 302 instead of JSON"
// @Success 200 {object} map[string]interface{} "url"
// @Success 302 "Redirect to the blob"
// @Failure 400 {object} map[string]interface{} "Entry is a folder"
// @Failure 404 {object} map[string]interface{} "Not found"
// @Router /api/v1/files/{id}/view [get]
func (h *Handler) ViewURL(c *gin.Context) {
	h.serveURL(c, "view", h.hierarchy.ViewURL)
}

// DownloadURL godoc
// @Summary URL that downloads a file as an attachment
// @Tags Files
// @Produce json
// @Param id path string true "File id"
// @Param redirect query string false "Set to 1 to receive a 302 instead of JSON"
// @Success 200 {object} map[string]interface{} "url"
// @Success 302 "Redirect to the blob"
// @Failure 404 {object} map[string]interface{} "Not found"
// @Router /api/v1/files/{id}/download [get]
func (h *Handler) DownloadURL(c *gin.Context) {
	h.serveURL(c, "download", h.hierarchy.DownloadURL)
}

func (h *Handler) serveURL(c *gin.Context, action string, resolve func(ctx context.Context, ownerID, id string) (string, error)) {
	owner, ok := ownerID(c)
	if !ok {
		respondError(c, h.logger, files.ErrUnauthenticated, action)
		return
	}

	url, err := resolve(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, action)
		return
	}

	switch c.Query("redirect") {
	case "1", "true":
		c.Redirect(http.StatusFound, url)
	default:
		c.JSON(http.StatusOK, gin.H{"url": url})
	}
}
