package files

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/drive-clone/api/src/domain/files"
	"github.com/drive-clone/api/src/middleware/logic"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100
)

// CreateFolderRequest is the body of POST /api/v1/files/folders
type CreateFolderRequest struct {
	Name     string  `json:"name" binding:"required"`
	ParentID *string `json:"parentId"`
}

// MoveRequest is the body of PATCH /api/v1/files/:id/move. A null parentId
// moves the entry to the root.
type MoveRequest struct {
	ParentID *string `json:"parentId"`
}

// RenameRequest is the body of PATCH /api/v1/files/:id/rename
type RenameRequest struct {
	Name string `json:"name" binding:"required"`
}

// ownerID returns the signed-in user; it never comes from the request body
func ownerID(c *gin.Context) (string, bool) {
	principal, ok := logic.PrincipalFrom(c)
	if !ok || principal.UserID == "" {
		return "", false
	}
	return principal.UserID, true
}

// parentParam reads an optional folder id from the query
func parentParam(c *gin.Context, key string) *string {
	return parentValue(c.Query(key))
}

func normalizeParent(id *string) *string {
	if id == nil {
		return nil
	}
	return parentValue(*id)
}

// parentValue treats empty and "root" as the root level
func parentValue(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" || value == "root" {
		return nil
	}
	return &value
}

func (h *Handler) logMutation(c *gin.Context, owner, entryID, action string) {
	h.logger.WithFields(logrus.Fields{
		"request_id": c.GetString("request_id"),
		"owner_id":   owner,
		"entry_id":   entryID,
		"action":     action,
	}).Info("Drive entry changed")
}

// ListChildren godoc
// @Summary List one folder level
// @Description Lists the direct children of a folder, most recently updated first
// @Tags Files
// @Produce json
// @Param parentId query string false "Folder id; omit for the root"
// @Success 200 {object} map[string]interface{} "Entries"
// @Failure 401 {object} map[string]interface{} "Not signed in"
// @Failure 404 {object} map[string]interface{} "Folder not found"
// @Router /api/v1/files [get]
func (h *Handler) ListChildren(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		respondError(c, h.logger, files.ErrUnauthenticated, "list")
		return
	}

	entries, err := h.hierarchy.ListChildren(c.Request.Context(), owner, parentParam(c, "parentId"))
	if err != nil {
		respondError(c, h.logger, err, "list")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}

// ListFolders godoc
// @Summary List every folder
// @Description All folders of the caller in name order, for move pickers
// @Tags Files
// @Produce json
// @Success 200 {object} map[string]interface{} "Folders"
// @Router /api/v1/files/folders [get]
func (h *Handler) ListFolders(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		respondError(c, h.logger, files.ErrUnauthenticated, "list_folders")
		return
	}

	folders, err := h.hierarchy.ListAllFolders(c.Request.Context(), owner)
	if err != nil {
		respondError(c, h.logger, err, "list_folders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": folders})
}

// ListRecent godoc
// @Summary Recently uploaded files
// @Tags Files
// @Produce json
// @Param limit query int false "Maximum entries (default 20, max 100)"
// @Success 200 {object} map[string]interface{} "Files"
// @Failure 400 {object} map[string]interface{} "Invalid limit"
// @Router /api/v1/files/recent [get]
func (h *Handler) ListRecent(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		respondError(c, h.logger, files.ErrUnauthenticated, "recent")
		return
	}

	limit := defaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(c, http.StatusBadRequest, string(files.KindValidation), "limit must be a positive integer")
			return
		}
		limit = min(n, maxRecentLimit)
	}

	entries, err := h.hierarchy.ListRecentFiles(c.Request.Context(), owner, limit)
	if err != nil {
		respondError(c, h.logger, err, "recent")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}

// Search godoc
// @Summary Search by name
// @Description Case-insensitive substring match over every entry of the caller
// @Tags Files
// @Produce json
// @Param q query string true "Search text"
// @Success 200 {object} map[string]interface{} "Matches"
// @Router /api/v1/files/search [get]
func (h *Handler) Search(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		respondError(c, h.logger, files.ErrUnauthenticated, "search")
		return
	}

	entries, err := h.hierarchy.Search(c.Request.Context(), owner, c.Query("q"))
	if err != nil {
		respondError(c, h.logger, err, "search")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}

// Breadcrumbs godoc
// @Summary Path from the root to a folder
// @Tags Files
// @Produce json
// @Param folderId query string false "Folder id; omit for the root"
// @Success 200 {object} map[string]interface{} "Breadcrumbs, root first"
// @Failure 404 {object} map[string]interface{} "Folder not found"
// @Router /api/v1/files/breadcrumbs [get]
func (h *Handler) Breadcrumbs(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		respondError(c, h.logger, files.ErrUnauthenticated, "breadcrumbs")
		return
	}

	crumbs, err := h.hierarchy.Breadcrumbs(c.Request.Context(), owner, parentParam(c, "folderId"))
	if err != nil {
		respondError(c, h.logger, err, "breadcrumbs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": crumbs})
}

// GetEntry godoc
// @Summary Get one entry
// @Tags Files
// @Produce json
// @Param id path string true "Entry id"
// @Success 200 {object} files.Entry
// @Failure 404 {object} map[string]interface{} "Not found"
// @Router /api/v1/files/{id} [get]
func (h *Handler) GetEntry(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		respondError(c, h.logger, files.ErrUnauthenticated, "get")
		return
	}

	entry, err := h.hierarchy.GetEntry(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "get")
		return
	}
	c.JSON(http.StatusOK, entry)
}

// CreateFolder godoc
// @Summary Create a folder
// @Tags Files
// @Accept json
// @Produce json
// @Param request body CreateFolderRequest true "Folder name and optional parent"
// @Success 201 {object} files.Entry
// @Failure 400 {object} map[string]interface{} "Invalid name"
// @Failure 404 {object} map[string]interface{} "Parent not found"
// @Failure 409 {object} map[string]interface{} "Name already used in this folder"
// @Router /api/v1/files/folders [post]
func (h *Handler) CreateFolder(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		respondError(c, h.logger, files.ErrUnauthenticated, "create_folder")
		return
	}

	var req CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, string(files.KindValidation), "Folder name is required")
		return
	}

	folder, err := h.hierarchy.CreateFolder(c.Request.Context(), owner, req.Name, normalizeParent(req.ParentID))
	if err != nil {
		respondError(c, h.logger, err, "create_folder")
		return
	}
	h.logMutation(c, owner, folder.ID, "create_folder")
	c.JSON(http.StatusCreated, folder)
}

// MoveEntry godoc
// @Summary Move an entry
// @Description Moves a file or folder to another folder or the root. A folder cannot move into itself or its descendants.
// @Tags Files
// @Accept json
// @Produce json
// @Param id path string true "Entry id"
// @Param request body MoveRequest true "Target folder (null for root)"
// @Success 200 {object} files.Entry
// @Failure 400 {object} map[string]interface{} "Invalid target"
// @Failure 404 {object} map[string]interface{} "Entry or target not found"
// @Failure 409 {object} map[string]interface{} "Name already used in the target"
// @Router /api/v1/files/{id}/move [patch]
func (h *Handler) MoveEntry(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		respondError(c, h.logger, files.ErrUnauthenticated, "move")
		return
	}

	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, string(files.KindValidation), "Invalid request body")
		return
	}

	id := c.Param("id")
	entry, err := h.hierarchy.MoveEntry(c.Request.Context(), owner, id, normalizeParent(req.ParentID))
	if err != nil {
		respondError(c, h.logger, err, "move")
		return
	}
	h.logMutation(c, owner, id, "move")
	c.JSON(http.StatusOK, entry)
}

// RenameEntry godoc
// @Summary Rename an entry
// @Tags Files
// @Accept json
// @Produce json
// @Param id path string true "Entry id"
// @Param request body RenameRequest true "New name"
// @Success 200 {object} files.Entry
// @Failure 400 {object} map[string]interface{} "Invalid name"
// @Failure 409 {object} map[string]interface{} "Name already used in this folder"
// @Router /api/v1/files/{id}/rename [patch]
func (h *Handler) RenameEntry(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		respondError(c, h.logger, files.ErrUnauthenticated, "rename")
		return
	}

	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, string(files.KindValidation), "Name is required")
		return
	}

	id := c.Param("id")
	entry, err := h.hierarchy.RenameEntry(c.Request.Context(), owner, id, req.Name)
	if err != nil {
		respondError(c, h.logger, err, "rename")
		return
	}
	h.logMutation(c, owner, id, "rename")
	c.JSON(http.StatusOK, entry)
}

// DeleteEntry godoc
// @Summary Delete an entry
// @Description Files are removed with their blob. Non-empty folders follow the configured delete policy.
// @Tags Files
// @Param id path string true "Entry id"
// @Success 204 "Deleted"
// @Failure 404 {object} map[string]interface{} "Not found"
// @Failure 409 {object} map[string]interface{} "Folder is not empty"
// @Router /api/v1/files/{id} [delete]
func (h *Handler) DeleteEntry(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		respondError(c, h.logger, files.ErrUnauthenticated, "delete")
		return
	}

	id := c.Param("id")
	if err := h.hierarchy.DeleteEntry(c.Request.Context(), owner, id); err != nil {
		respondError(c, h.logger, err, "delete")
		return
	}
	h.logMutation(c, owner, id, "delete")
	c.Status(http.StatusNoContent)
}
