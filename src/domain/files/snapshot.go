package files

// Category is one of the four storage buckets shown in usage statistics
type Category string

const (
	CategoryDocuments Category = "documents"
	CategoryImages    Category = "images"
	CategoryVideos    Category = "videos"
	CategoryOthers    Category = "others"
)

// MimeUsage is one row of the per-MIME-type aggregation of an owner's files
type MimeUsage struct {
	MimeType string `db:"mime_type"`
	Count    int    `db:"count"`
	Size     int64  `db:"size"`
}

// CategoryUsage is the count and byte size of one category
type CategoryUsage struct {
	Count int   `json:"count"`
	Size  int64 `json:"size"`
}

// StorageSnapshot is the derived usage aggregate of one owner. It is never
// persisted and is recomputed on every query.
type StorageSnapshot struct {
	TotalFiles       int           `json:"totalFiles"`
	TotalSize        int64         `json:"totalSize"`
	Documents        CategoryUsage `json:"documents"`
	Images           CategoryUsage `json:"images"`
	Videos           CategoryUsage `json:"videos"`
	Others           CategoryUsage `json:"others"`
	Limit            int64         `json:"limit"`
	Remaining        int64         `json:"remaining"`
	PercentRemaining float64       `json:"percentRemaining"`
}

// NewStorageSnapshot folds usage rows into category buckets. The result does
// not depend on the order of rows.
func NewStorageSnapshot(rows []MimeUsage, classify func(mimeType string) Category, limit int64) *StorageSnapshot {
	snap := &StorageSnapshot{Limit: limit}
	for _, row := range rows {
		snap.TotalFiles += row.Count
		snap.TotalSize += row.Size

		bucket := snap.bucket(classify(row.MimeType))
		bucket.Count += row.Count
		bucket.Size += row.Size
	}

	snap.Remaining = limit - snap.TotalSize
	if snap.Remaining < 0 {
		snap.Remaining = 0
	}
	snap.PercentRemaining = PercentRemaining(snap.TotalSize, limit)
	return snap
}

func (s *StorageSnapshot) bucket(c Category) *CategoryUsage {
	switch c {
	case CategoryDocuments:
		return &s.Documents
	case CategoryImages:
		return &s.Images
	case CategoryVideos:
		return &s.Videos
	default:
		return &s.Others
	}
}

// PercentRemaining returns 100 - used/total*100. It goes negative when usage
// exceeds the limit.
func PercentRemaining(used, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return 100 - (float64(used)/float64(total))*100
}
