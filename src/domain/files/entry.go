package files

import (
	"strings"
	"time"
)

// EntryType distinguishes files from folders.
// Maps to the entries.type column ('file', 'folder')
type EntryType string

const (
	EntryTypeFile   EntryType = "file"
	EntryTypeFolder EntryType = "folder"
)

// IsValid checks if the entry type is valid
func (t EntryType) IsValid() bool {
	switch t {
	case EntryTypeFile, EntryTypeFolder:
		return true
	}
	return false
}

// Entry is a file or folder metadata record owned by a single user.
// Folders never carry MimeType or BlobID and always have Size 0.
type Entry struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	NameKey   string    `db:"name_key" json:"-"`
	Type      EntryType `db:"type" json:"type"`
	MimeType  *string   `db:"mime_type" json:"mimeType,omitempty"`
	Size      int64     `db:"size" json:"size"`
	ParentID  *string   `db:"parent_id" json:"parentId"`
	OwnerID   string    `db:"owner_id" json:"ownerId"`
	BlobID    *string   `db:"blob_id" json:"blobId,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// IsFolder reports whether the entry is a folder
func (e *Entry) IsFolder() bool {
	return e.Type == EntryTypeFolder
}

// IsFile reports whether the entry is a file
func (e *Entry) IsFile() bool {
	return e.Type == EntryTypeFile
}

// EntryOrder selects the ordering of a listing.
type EntryOrder int

const (
	// OrderUpdatedDesc lists most recently updated entries first (browsing views)
	OrderUpdatedDesc EntryOrder = iota
	// OrderNameAsc lists entries alphabetically (folder pickers)
	OrderNameAsc
	// OrderCreatedDesc lists newest entries first
	OrderCreatedDesc
)

// EntryFilter restricts a listing to one owner and, unless AllLevels is set,
// to one level of the tree. A nil ParentID selects the root level.
type EntryFilter struct {
	OwnerID   string
	ParentID  *string
	AllLevels bool
	Type      EntryType
	NameKey   string
	NameLike  string
}

// EntryPatch describes a partial update. SetParent must be true for ParentID
// to be applied, which lets a nil ParentID mean "move to root".
type EntryPatch struct {
	Name      *string
	SetParent bool
	ParentID  *string
}

// FolderDeletePolicy decides what happens when a non-empty folder is deleted.
type FolderDeletePolicy string

const (
	DeletePolicyReject  FolderDeletePolicy = "reject"
	DeletePolicyCascade FolderDeletePolicy = "cascade"
)

// IsValid checks if the delete policy is valid
func (p FolderDeletePolicy) IsValid() bool {
	switch p {
	case DeletePolicyReject, DeletePolicyCascade:
		return true
	}
	return false
}

// Breadcrumb is one step of the path from the root to a folder.
// The root crumb has a nil ID.
type Breadcrumb struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}

// RootBreadcrumbName is the display name of the root level
const RootBreadcrumbName = "My Drive"

// Reservation holds quota for an upload whose bytes are still in flight.
type Reservation struct {
	ID        string    `db:"id" json:"id"`
	OwnerID   string    `db:"owner_id" json:"ownerId"`
	Size      int64     `db:"size" json:"size"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	ExpiresAt time.Time `db:"expires_at" json:"expiresAt"`
}

// NameKey is the case-insensitive form of a name used for sibling uniqueness
func NameKey(name string) string {
	return strings.ToLower(name)
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// SameParent reports whether two parent references point at the same level.
func SameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
