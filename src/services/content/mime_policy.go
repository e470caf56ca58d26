package content

import (
	"mime"
	"strings"

	"github.com/drive-clone/api/src/domain/files"
)

// categoryByMime is the fixed allow-list used for storage statistics.
// Anything not listed counts as "others".
var categoryByMime = map[string]files.Category{
	"image/jpeg":    files.CategoryImages,
	"image/png":     files.CategoryImages,
	"image/gif":     files.CategoryImages,
	"image/webp":    files.CategoryImages,
	"image/svg+xml": files.CategoryImages,

	"video/mp4": files.CategoryVideos,
	"video/avi": files.CategoryVideos,
	"video/mov": files.CategoryVideos,
	"video/wmv": files.CategoryVideos,
	"video/flv": files.CategoryVideos,

	"application/pdf":               files.CategoryDocuments,
	"application/msword":            files.CategoryDocuments,
	"application/vnd.ms-excel":      files.CategoryDocuments,
	"application/vnd.ms-powerpoint": files.CategoryDocuments,

	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   files.CategoryDocuments,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         files.CategoryDocuments,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": files.CategoryDocuments,

	"text/plain": files.CategoryDocuments,
	"text/csv":   files.CategoryDocuments,
}

// CategoryForMime returns the storage bucket of a MIME type.
// Parameters such as "; charset=utf-8" are ignored.
func CategoryForMime(mimeType string) files.Category {
	if c, ok := categoryByMime[normalizeMime(mimeType)]; ok {
		return c
	}
	return files.CategoryOthers
}

func normalizeMime(mimeType string) string {
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		return ""
	}
	if base, _, err := mime.ParseMediaType(mimeType); err == nil {
		return base
	}
	return strings.ToLower(mimeType)
}
