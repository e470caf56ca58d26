package content

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/drive-clone/api/src/domain/files"
	"github.com/sirupsen/logrus"
)

// Limits applied to every imported archive
const (
	// ZipMagicBytes - First 4 bytes of a valid ZIP file
	ZipMagicBytes = "PK\x03\x04"

	// DefaultMaxArchiveEntries - Maximum number of entries allowed in a ZIP
	DefaultMaxArchiveEntries = 1000

	// MaxCompressionRatio - Maximum allowed ratio of uncompressed/compressed size
	MaxCompressionRatio = 100
)

// ArchiveLimits bounds what an archive may expand to. Zero values fall back
// to the quota limits.
type ArchiveLimits struct {
	MaxEntries          int
	MaxDecompressedSize int64
}

// ImportResult describes an archive import. Folder is the folder the archive
// was unpacked into; Results has one item per file in archive order.
type ImportResult struct {
	Folder   *files.Entry   `json:"folder"`
	Uploaded int            `json:"uploaded"`
	Failed   int            `json:"failed"`
	Results  []UploadResult `json:"results"`
}

// ArchiveService unpacks ZIP archives into the drive. Every file goes through
// the regular upload path, so names, quota and size ceilings apply per file.
type ArchiveService struct {
	hierarchy *HierarchyService
	upload    *UploadService
	limits    ArchiveLimits
	logger    *logrus.Logger
}

func NewArchiveService(hierarchy *HierarchyService, upload *UploadService, limits ArchiveLimits, logger *logrus.Logger) *ArchiveService {
	if limits.MaxEntries <= 0 {
		limits.MaxEntries = DefaultMaxArchiveEntries
	}
	if limits.MaxDecompressedSize <= 0 {
		limits.MaxDecompressedSize = upload.quota.Limits().MaxTotalStorage
	}
	return &ArchiveService{
		hierarchy: hierarchy,
		upload:    upload,
		limits:    limits,
		logger:    logger,
	}
}

type archiveFile struct {
	dir  []string
	name string
	file *zip.File
}

// ImportArchive unpacks the archive in src into a new folder named folderName
// under parentID. The archive is rejected as a whole when it is malformed or
// breaks a limit; after that, files succeed or fail individually.
func (s *ArchiveService) ImportArchive(ctx context.Context, ownerID string, src io.ReaderAt, size int64, folderName string, parentID *string) (*ImportResult, error) {
	if err := authorize(ctx, ownerID); err != nil {
		return nil, err
	}

	// 1. Check Magic Bytes strictly
	magic := make([]byte, len(ZipMagicBytes))
	if _, err := src.ReadAt(magic, 0); err != nil || string(magic) != ZipMagicBytes {
		return nil, files.NewValidationError("File is not a ZIP archive")
	}

	// Non-local names are refused per entry below with a clearer message.
	reader, err := zip.NewReader(src, size)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, files.NewValidationError("File is not a valid ZIP archive")
	}

	// 2. Pre-Check Limits (DoS Prevention)
	if len(reader.File) > s.limits.MaxEntries {
		return nil, files.NewValidationError("Archive contains too many entries (maximum %d)", s.limits.MaxEntries)
	}

	planned, dirs, err := s.plan(reader.File)
	if err != nil {
		s.logger.WithError(err).WithField("owner_id", ownerID).Warn("Archive rejected")
		return nil, err
	}

	root, err := s.hierarchy.CreateFolder(ctx, ownerID, folderName, parentID)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Folder: root, Results: make([]UploadResult, 0, len(planned))}
	folders := map[string]string{"": root.ID}

	for _, dir := range dirs {
		if _, err := s.ensureFolder(ctx, ownerID, folders, dir); err != nil {
			s.logger.WithError(err).WithField("path", path.Join(dir...)).Warn("Skipping archive folder")
		}
	}

	for _, pf := range planned {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		item := UploadResult{Name: path.Join(path.Join(pf.dir...), pf.name)}
		folderID, err := s.ensureFolder(ctx, ownerID, folders, pf.dir)
		if err == nil {
			f := pf.file
			item.Entry, err = s.upload.Upload(ctx, ownerID, UploadRequest{
				Name:     pf.name,
				MimeType: mime.TypeByExtension(strings.ToLower(path.Ext(pf.name))),
				Size:     int64(f.UncompressedSize64),
				ParentID: &folderID,
				Open: func() (io.ReadCloser, error) {
					return f.Open()
				},
			})
		}
		if err != nil {
			item.Err = err
			item.Error = err.Error()
			result.Failed++
		} else {
			result.Uploaded++
		}
		result.Results = append(result.Results, item)
	}

	s.logger.WithFields(logrus.Fields{
		"owner_id":  ownerID,
		"folder_id": root.ID,
		"uploaded":  result.Uploaded,
		"failed":    result.Failed,
	}).Info("Archive imported")

	return result, nil
}

// plan validates every entry before anything is written and returns the
// files to import plus the explicit directories, both in archive order.
func (s *ArchiveService) plan(entries []*zip.File) ([]archiveFile, [][]string, error) {
	var (
		planned   []archiveFile
		dirs      [][]string
		totalSize int64
	)
	maxFile := s.upload.quota.Limits().MaxFileSize

	for _, f := range entries {
		// 3. Path Traversal Prevention (Zip Slip)
		segments, err := archivePath(f.Name)
		if err != nil {
			return nil, nil, err
		}
		if len(segments) == 0 || segments[0] == "__MACOSX" {
			continue
		}

		if f.FileInfo().IsDir() {
			dirs = append(dirs, segments)
			continue
		}

		// 4. Block Symlinks
		if !f.Mode().IsRegular() {
			s.logger.WithField("name", f.Name).Warn("Skipping non-regular archive entry")
			continue
		}

		// 5. Individual File Size Limit
		if f.UncompressedSize64 > uint64(maxFile) {
			return nil, nil, files.NewValidationError(`File "%s" in archive is too large. Maximum file size is %s.`, f.Name, formatMB(maxFile))
		}

		// 6. Check for Zip Bomb (Compression Ratio)
		if f.UncompressedSize64 > 0 && f.CompressedSize64 > 0 {
			ratio := float64(f.UncompressedSize64) / float64(f.CompressedSize64)
			if ratio > float64(MaxCompressionRatio) {
				return nil, nil, files.NewValidationError(`File "%s" in archive has a suspicious compression ratio`, f.Name)
			}
		}

		totalSize += int64(f.UncompressedSize64)
		if totalSize > s.limits.MaxDecompressedSize {
			return nil, nil, files.NewValidationError("Archive expands beyond %s", formatMB(s.limits.MaxDecompressedSize))
		}

		planned = append(planned, archiveFile{
			dir:  segments[:len(segments)-1],
			name: segments[len(segments)-1],
			file: f,
		})
	}
	return planned, dirs, nil
}

// ensureFolder returns the ID of the folder at dir below the import root,
// creating missing folders on the way. Known folders are cached by path.
func (s *ArchiveService) ensureFolder(ctx context.Context, ownerID string, folders map[string]string, dir []string) (string, error) {
	parent := folders[""]
	for i := range dir {
		key := path.Join(dir[:i+1]...)
		if id, ok := folders[key]; ok {
			parent = id
			continue
		}
		folder, err := s.hierarchy.CreateFolder(ctx, ownerID, dir[i], &parent)
		if err != nil {
			return "", err
		}
		folders[key] = folder.ID
		parent = folder.ID
	}
	return parent, nil
}

// archivePath splits a ZIP entry name into folder segments. Absolute names
// and names that climb out of the archive root are refused.
func archivePath(name string) ([]string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	if strings.HasPrefix(name, "/") {
		return nil, files.NewValidationError("Illegal path in archive: %s", name)
	}

	var segments []string
	for _, seg := range strings.Split(name, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			return nil, files.NewValidationError("Illegal path in archive: %s", name)
		}
		segments = append(segments, seg)
	}
	return segments, nil
}
