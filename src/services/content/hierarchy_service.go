package content

import (
	"context"
	"errors"
	"strings"

	"github.com/drive-clone/api/src/domain/files"
	"github.com/drive-clone/api/src/drivers/storage"
	files_repo "github.com/drive-clone/api/src/repository/files"
	"github.com/sirupsen/logrus"
)

const (
	defaultRecentLimit = 10
	maxListLimit       = 100
	defaultMaxDepth    = 64
)

// HierarchyOptions tunes the tree operations
type HierarchyOptions struct {
	DeletePolicy files.FolderDeletePolicy
	MaxDepth     int
}

// FileSpec describes a file entry whose blob has already been written
type FileSpec struct {
	OwnerID  string
	Name     string
	MimeType string
	Size     int64
	BlobID   string
	ParentID *string
}

// HierarchyService implements browsing and mutation of an owner's entry tree.
// Every mutation that checks sibling names runs under the owner lock.
type HierarchyService struct {
	entries files_repo.EntryRepositoryInterface
	locker  files_repo.OwnerLockerInterface
	blobs   storage.BlobStore
	opts    HierarchyOptions
	logger  *logrus.Logger
}

func NewHierarchyService(
	entries files_repo.EntryRepositoryInterface,
	locker files_repo.OwnerLockerInterface,
	blobs storage.BlobStore,
	opts HierarchyOptions,
	logger *logrus.Logger,
) *HierarchyService {
	if !opts.DeletePolicy.IsValid() {
		opts.DeletePolicy = files.DeletePolicyReject
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = defaultMaxDepth
	}
	return &HierarchyService{
		entries: entries,
		locker:  locker,
		blobs:   blobs,
		opts:    opts,
		logger:  logger,
	}
}

// DeletePolicy returns the configured behaviour for non-empty folders
func (h *HierarchyService) DeletePolicy() files.FolderDeletePolicy {
	return h.opts.DeletePolicy
}

// ListChildren returns one level of the tree, most recently updated first.
// A nil parentID lists the root level.
func (h *HierarchyService) ListChildren(ctx context.Context, ownerID string, parentID *string) ([]files.Entry, error) {
	if err := authorize(ctx, ownerID); err != nil {
		return nil, err
	}
	if parentID != nil {
		if _, err := h.requireFolder(ctx, h.entries, ownerID, *parentID); err != nil {
			return nil, err
		}
	}

	entries, err := h.entries.Query(ctx, files.EntryFilter{OwnerID: ownerID, ParentID: parentID}, files.OrderUpdatedDesc, 0)
	if err != nil {
		return nil, files.NewExternalServiceError("list entries", err)
	}
	return entries, nil
}

// ListAllFolders returns every folder of the owner, flat and by name
func (h *HierarchyService) ListAllFolders(ctx context.Context, ownerID string) ([]files.Entry, error) {
	if err := authorize(ctx, ownerID); err != nil {
		return nil, err
	}

	folders, err := h.entries.Query(ctx, files.EntryFilter{
		OwnerID:   ownerID,
		AllLevels: true,
		Type:      files.EntryTypeFolder,
	}, files.OrderNameAsc, 0)
	if err != nil {
		return nil, files.NewExternalServiceError("list folders", err)
	}
	return folders, nil
}

// ListRecentFiles returns the most recently updated files across all levels
func (h *HierarchyService) ListRecentFiles(ctx context.Context, ownerID string, limit int) ([]files.Entry, error) {
	if err := authorize(ctx, ownerID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	recent, err := h.entries.Query(ctx, files.EntryFilter{
		OwnerID:   ownerID,
		AllLevels: true,
		Type:      files.EntryTypeFile,
	}, files.OrderUpdatedDesc, limit)
	if err != nil {
		return nil, files.NewExternalServiceError("list recent files", err)
	}
	return recent, nil
}

// Search finds entries whose name contains query, case-insensitively
func (h *HierarchyService) Search(ctx context.Context, ownerID, query string) ([]files.Entry, error) {
	if err := authorize(ctx, ownerID); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, files.NewValidationError("Search query cannot be empty")
	}

	found, err := h.entries.Query(ctx, files.EntryFilter{
		OwnerID:   ownerID,
		AllLevels: true,
		NameLike:  query,
	}, files.OrderUpdatedDesc, maxListLimit)
	if err != nil {
		return nil, files.NewExternalServiceError("search entries", err)
	}
	return found, nil
}

// Breadcrumbs returns the path from the root to folderID, root first.
func (h *HierarchyService) Breadcrumbs(ctx context.Context, ownerID string, folderID *string) ([]files.Breadcrumb, error) {
	if err := authorize(ctx, ownerID); err != nil {
		return nil, err
	}

	var chain []files.Breadcrumb
	current := folderID
	for current != nil {
		if len(chain) >= h.opts.MaxDepth {
			return nil, files.NewValidationError("Folder hierarchy is deeper than %d levels", h.opts.MaxDepth)
		}
		folder, err := h.requireFolder(ctx, h.entries, ownerID, *current)
		if err != nil {
			return nil, err
		}
		id := folder.ID
		chain = append(chain, files.Breadcrumb{ID: &id, Name: folder.Name})
		current = folder.ParentID
	}

	crumbs := make([]files.Breadcrumb, 0, len(chain)+1)
	crumbs = append(crumbs, files.Breadcrumb{Name: files.RootBreadcrumbName})
	for i := len(chain) - 1; i >= 0; i-- {
		crumbs = append(crumbs, chain[i])
	}
	return crumbs, nil
}

// GetEntry loads one owned entry
func (h *HierarchyService) GetEntry(ctx context.Context, ownerID, id string) (*files.Entry, error) {
	if err := authorize(ctx, ownerID); err != nil {
		return nil, err
	}
	return h.loadOwned(ctx, h.entries, ownerID, id)
}

// CreateFolder creates an empty folder under parentID (root when nil)
func (h *HierarchyService) CreateFolder(ctx context.Context, ownerID, name string, parentID *string) (*files.Entry, error) {
	if err := authorize(ctx, ownerID); err != nil {
		return nil, err
	}
	name, err := ValidateName(name)
	if err != nil {
		return nil, err
	}

	folder := &files.Entry{
		OwnerID:  ownerID,
		Name:     name,
		Type:     files.EntryTypeFolder,
		ParentID: parentID,
	}

	err = h.locker.WithOwnerLock(ctx, ownerID, func(tx *files_repo.OwnerTx) error {
		if parentID != nil {
			if _, err := h.requireFolder(ctx, tx.Entries, ownerID, *parentID); err != nil {
				return err
			}
		}
		if err := h.checkSibling(ctx, tx.Entries, ownerID, parentID, name, ""); err != nil {
			return err
		}
		return tx.Entries.Create(ctx, folder)
	})
	if err != nil {
		return nil, files.NewExternalServiceError("create folder", err)
	}

	h.logger.WithFields(logrus.Fields{
		"owner_id": ownerID,
		"entry_id": folder.ID,
	}).Info("Folder created")

	return folder, nil
}

// CreateFile records a file whose blob was already written
func (h *HierarchyService) CreateFile(ctx context.Context, spec FileSpec) (*files.Entry, error) {
	if err := authorize(ctx, spec.OwnerID); err != nil {
		return nil, err
	}

	var entry *files.Entry
	err := h.locker.WithOwnerLock(ctx, spec.OwnerID, func(tx *files_repo.OwnerTx) error {
		var err error
		entry, err = h.insertFile(ctx, tx.Entries, spec)
		return err
	})
	if err != nil {
		return nil, files.NewExternalServiceError("create file", err)
	}
	return entry, nil
}

// insertFile validates and inserts a file entry; callers hold the owner lock
func (h *HierarchyService) insertFile(ctx context.Context, entries files_repo.EntryRepositoryInterface, spec FileSpec) (*files.Entry, error) {
	name, err := ValidateName(spec.Name)
	if err != nil {
		return nil, err
	}
	if spec.Size < 0 {
		return nil, files.NewValidationError("File size cannot be negative")
	}
	if spec.BlobID == "" {
		return nil, files.NewValidationError("File content is missing")
	}
	if spec.ParentID != nil {
		if _, err := h.requireFolder(ctx, entries, spec.OwnerID, *spec.ParentID); err != nil {
			return nil, err
		}
	}
	if err := h.checkSibling(ctx, entries, spec.OwnerID, spec.ParentID, name, ""); err != nil {
		return nil, err
	}

	blobID := spec.BlobID
	entry := &files.Entry{
		OwnerID:  spec.OwnerID,
		Name:     name,
		Type:     files.EntryTypeFile,
		MimeType: files.StringPtr(spec.MimeType),
		Size:     spec.Size,
		ParentID: spec.ParentID,
		BlobID:   &blobID,
	}
	if err := entries.Create(ctx, entry); err != nil {
		return nil, err
	}

	h.logger.WithFields(logrus.Fields{
		"owner_id": spec.OwnerID,
		"entry_id": entry.ID,
		"size":     entry.Size,
	}).Info("File created")

	return entry, nil
}

// MoveEntry re-parents an entry. A nil newParentID moves it to the root.
func (h *HierarchyService) MoveEntry(ctx context.Context, ownerID, id string, newParentID *string) (*files.Entry, error) {
	if err := authorize(ctx, ownerID); err != nil {
		return nil, err
	}

	var moved *files.Entry
	err := h.locker.WithOwnerLock(ctx, ownerID, func(tx *files_repo.OwnerTx) error {
		entry, err := h.loadOwned(ctx, tx.Entries, ownerID, id)
		if err != nil {
			return err
		}
		if files.SameParent(entry.ParentID, newParentID) {
			moved = entry
			return nil
		}

		if newParentID != nil {
			if *newParentID == entry.ID {
				return files.NewValidationError("Cannot move an item into itself")
			}
			target, err := h.requireFolder(ctx, tx.Entries, ownerID, *newParentID)
			if err != nil {
				return err
			}
			if entry.IsFolder() {
				if err := h.ensureNotDescendant(ctx, tx.Entries, ownerID, entry.ID, target); err != nil {
					return err
				}
			}
		}

		if err := h.checkSibling(ctx, tx.Entries, ownerID, newParentID, entry.Name, entry.ID); err != nil {
			return err
		}

		moved, err = tx.Entries.Update(ctx, entry.ID, files.EntryPatch{SetParent: true, ParentID: newParentID})
		return err
	})
	if err != nil {
		return nil, files.NewExternalServiceError("move entry", err)
	}

	h.logger.WithFields(logrus.Fields{
		"owner_id": ownerID,
		"entry_id": id,
	}).Info("Entry moved")

	return moved, nil
}

// ensureNotDescendant walks up from target and fails if folderID is on the path
func (h *HierarchyService) ensureNotDescendant(ctx context.Context, entries files_repo.EntryRepositoryInterface, ownerID, folderID string, target *files.Entry) error {
	current := target
	for depth := 0; ; depth++ {
		if current.ID == folderID {
			return files.NewValidationError("Cannot move a folder into one of its own subfolders")
		}
		if current.ParentID == nil {
			return nil
		}
		if depth >= h.opts.MaxDepth {
			return files.NewValidationError("Folder hierarchy is deeper than %d levels", h.opts.MaxDepth)
		}
		parent, err := h.loadOwned(ctx, entries, ownerID, *current.ParentID)
		if err != nil {
			return err
		}
		current = parent
	}
}

// RenameEntry changes the name of an entry in place
func (h *HierarchyService) RenameEntry(ctx context.Context, ownerID, id, name string) (*files.Entry, error) {
	if err := authorize(ctx, ownerID); err != nil {
		return nil, err
	}
	name, err := ValidateName(name)
	if err != nil {
		return nil, err
	}

	var renamed *files.Entry
	err = h.locker.WithOwnerLock(ctx, ownerID, func(tx *files_repo.OwnerTx) error {
		entry, err := h.loadOwned(ctx, tx.Entries, ownerID, id)
		if err != nil {
			return err
		}
		if entry.Name == name {
			renamed = entry
			return nil
		}
		if err := h.checkSibling(ctx, tx.Entries, ownerID, entry.ParentID, name, entry.ID); err != nil {
			return err
		}
		renamed, err = tx.Entries.Update(ctx, entry.ID, files.EntryPatch{Name: &name})
		return err
	})
	if err != nil {
		return nil, files.NewExternalServiceError("rename entry", err)
	}
	return renamed, nil
}

// DeleteEntry removes a file (blob first, then metadata) or a folder
// according to the configured delete policy.
func (h *HierarchyService) DeleteEntry(ctx context.Context, ownerID, id string) error {
	if err := authorize(ctx, ownerID); err != nil {
		return err
	}

	entry, err := h.loadOwned(ctx, h.entries, ownerID, id)
	if err != nil {
		return err
	}

	if entry.IsFile() {
		return h.deleteFile(ctx, entry)
	}
	if h.opts.DeletePolicy == files.DeletePolicyCascade {
		return h.deleteFolderCascade(ctx, entry)
	}
	return h.deleteFolderIfEmpty(ctx, entry)
}

func (h *HierarchyService) deleteFile(ctx context.Context, entry *files.Entry) error {
	if entry.BlobID != nil {
		if err := h.blobs.Delete(ctx, *entry.BlobID); err != nil {
			if !errors.Is(err, storage.ErrBlobNotFound) {
				return files.NewExternalServiceError("delete blob", err)
			}
			h.logger.WithFields(logrus.Fields{
				"entry_id": entry.ID,
				"blob_id":  *entry.BlobID,
			}).Warn("Blob already missing while deleting file")
		}
	}

	if err := h.entries.Delete(ctx, entry.ID); err != nil {
		return files.NewExternalServiceError("delete entry", err)
	}

	h.logger.WithFields(logrus.Fields{
		"owner_id": entry.OwnerID,
		"entry_id": entry.ID,
	}).Info("File deleted")
	return nil
}

func (h *HierarchyService) deleteFolderIfEmpty(ctx context.Context, folder *files.Entry) error {
	err := h.locker.WithOwnerLock(ctx, folder.OwnerID, func(tx *files_repo.OwnerTx) error {
		children, err := tx.Entries.Query(ctx, files.EntryFilter{OwnerID: folder.OwnerID, ParentID: &folder.ID}, files.OrderNameAsc, 1)
		if err != nil {
			return err
		}
		if len(children) > 0 {
			return files.NewConflictError("Folder %q is not empty", folder.Name)
		}
		return tx.Entries.Delete(ctx, folder.ID)
	})
	if err != nil {
		return files.NewExternalServiceError("delete folder", err)
	}

	h.logger.WithFields(logrus.Fields{
		"owner_id": folder.OwnerID,
		"entry_id": folder.ID,
	}).Info("Folder deleted")
	return nil
}

// deleteFolderCascade removes the subtree metadata in one locked transaction,
// deepest entries first, then deletes the blobs of the removed files.
// Blob failures are logged; the consistency sweep collects what is left.
func (h *HierarchyService) deleteFolderCascade(ctx context.Context, folder *files.Entry) error {
	var blobIDs []string
	removed := 0

	err := h.locker.WithOwnerLock(ctx, folder.OwnerID, func(tx *files_repo.OwnerTx) error {
		subtree := []files.Entry{*folder}
		frontier := []string{folder.ID}
		for depth := 0; len(frontier) > 0; depth++ {
			if depth > h.opts.MaxDepth {
				return files.NewValidationError("Folder hierarchy is deeper than %d levels", h.opts.MaxDepth)
			}
			var next []string
			for _, parentID := range frontier {
				pid := parentID
				children, err := tx.Entries.Query(ctx, files.EntryFilter{OwnerID: folder.OwnerID, ParentID: &pid}, files.OrderNameAsc, 0)
				if err != nil {
					return err
				}
				for _, child := range children {
					subtree = append(subtree, child)
					if child.IsFolder() {
						next = append(next, child.ID)
					}
				}
			}
			frontier = next
		}

		for i := len(subtree) - 1; i >= 0; i-- {
			if err := tx.Entries.Delete(ctx, subtree[i].ID); err != nil {
				return err
			}
			if subtree[i].BlobID != nil {
				blobIDs = append(blobIDs, *subtree[i].BlobID)
			}
		}
		removed = len(subtree)
		return nil
	})
	if err != nil {
		return files.NewExternalServiceError("delete folder", err)
	}

	for _, blobID := range blobIDs {
		if err := h.blobs.Delete(ctx, blobID); err != nil && !errors.Is(err, storage.ErrBlobNotFound) {
			h.logger.WithError(err).WithField("blob_id", blobID).Warn("Failed to delete blob of removed file")
		}
	}

	h.logger.WithFields(logrus.Fields{
		"owner_id": folder.OwnerID,
		"entry_id": folder.ID,
		"removed":  removed,
	}).Info("Folder deleted with contents")
	return nil
}

// ViewURL returns a URL that renders the file inline
func (h *HierarchyService) ViewURL(ctx context.Context, ownerID, id string) (string, error) {
	return h.blobURL(ctx, ownerID, id, storage.DispositionInline)
}

// DownloadURL returns a URL that forces a download
func (h *HierarchyService) DownloadURL(ctx context.Context, ownerID, id string) (string, error) {
	return h.blobURL(ctx, ownerID, id, storage.DispositionAttachment)
}

func (h *HierarchyService) blobURL(ctx context.Context, ownerID, id string, disposition storage.Disposition) (string, error) {
	if err := authorize(ctx, ownerID); err != nil {
		return "", err
	}
	entry, err := h.loadOwned(ctx, h.entries, ownerID, id)
	if err != nil {
		return "", err
	}
	if !entry.IsFile() || entry.BlobID == nil {
		return "", files.NewValidationError("Only files have content to view or download")
	}

	mimeType := ""
	if entry.MimeType != nil {
		mimeType = *entry.MimeType
	}

	var u string
	if disposition == storage.DispositionAttachment {
		u, err = h.blobs.DownloadURL(ctx, *entry.BlobID, entry.Name, mimeType)
	} else {
		u, err = h.blobs.ViewURL(ctx, *entry.BlobID, entry.Name, mimeType)
	}
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return "", files.NewNotFoundError("Content of %q is no longer available", entry.Name)
		}
		return "", files.NewExternalServiceError("resolve blob url", err)
	}
	return u, nil
}

// loadOwned fetches an entry and checks it belongs to ownerID
func (h *HierarchyService) loadOwned(ctx context.Context, entries files_repo.EntryRepositoryInterface, ownerID, id string) (*files.Entry, error) {
	entry, err := entries.Get(ctx, id)
	if err != nil {
		return nil, files.NewExternalServiceError("get entry", err)
	}
	if err := ensureOwned(entry, ownerID); err != nil {
		return nil, err
	}
	return entry, nil
}

// requireFolder loads an owned entry and fails with NotFound unless it is a folder
func (h *HierarchyService) requireFolder(ctx context.Context, entries files_repo.EntryRepositoryInterface, ownerID, id string) (*files.Entry, error) {
	folder, err := h.loadOwned(ctx, entries, ownerID, id)
	if err != nil {
		return nil, err
	}
	if !folder.IsFolder() {
		return nil, files.NewNotFoundError("Folder %s not found", id)
	}
	return folder, nil
}

// checkSibling fails with ConflictError when another entry in parentID already
// uses name (case-insensitive). excludeID skips the entry being renamed or moved.
func (h *HierarchyService) checkSibling(ctx context.Context, entries files_repo.EntryRepositoryInterface, ownerID string, parentID *string, name, excludeID string) error {
	siblings, err := entries.Query(ctx, files.EntryFilter{
		OwnerID:  ownerID,
		ParentID: parentID,
		NameKey:  files.NameKey(name),
	}, files.OrderNameAsc, 2)
	if err != nil {
		return files.NewExternalServiceError("check sibling names", err)
	}

	for _, s := range siblings {
		if s.ID == excludeID {
			continue
		}
		if s.Type == files.EntryTypeFolder {
			return files.NewConflictError("A folder with this name already exists")
		}
		return files.NewConflictError("An item named %q already exists in this location", name)
	}
	return nil
}
