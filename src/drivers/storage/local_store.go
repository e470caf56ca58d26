package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrPathTraversal = fmt.Errorf("path escapes base directory")

// LocalStore keeps blobs as files under basePath, sharded by the first two
// characters of the id. URLs point at the API's blob endpoint and carry a
// signed token.
type LocalStore struct {
	basePath string
	baseURL  string
	signer   BlobURLSigner
	logger   *logrus.Logger
}

func NewLocalStore(basePath, baseURL string, signer BlobURLSigner, logger *logrus.Logger) (*LocalStore, error) {
	absBase, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve base path: %w", err)
	}

	if err := os.MkdirAll(absBase, 0o755); err != nil {
		return nil, fmt.Errorf("ensure base path: %w", err)
	}

	return &LocalStore{
		basePath: absBase,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		signer:   signer,
		logger:   logger,
	}, nil
}

// BasePath returns the absolute blob root
func (s *LocalStore) BasePath() string {
	return s.basePath
}

// HealthCheck verifies the blob root is still a reachable directory
func (s *LocalStore) HealthCheck(ctx context.Context) error {
	info, err := os.Stat(s.basePath)
	if err != nil {
		return fmt.Errorf("local blob root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("local blob root %s is not a directory", s.basePath)
	}
	return nil
}

func (s *LocalStore) sanitizePath(rel string) (string, error) {
	if strings.Contains(rel, "..") {
		return "", ErrPathTraversal
	}
	// Prepend slash so Clean treats it as absolute, then trim to avoid breaking out.
	cleaned := filepath.Clean("/" + rel)
	trimmed := strings.TrimPrefix(cleaned, "/")
	full := filepath.Join(s.basePath, trimmed)

	abs, err := filepath.Abs(full)
	if err != nil {
		return "", err
	}

	if abs != s.basePath && !strings.HasPrefix(abs, s.basePath+string(os.PathSeparator)) {
		return "", ErrPathTraversal
	}

	return abs, nil
}

// blobPath maps an id to its sharded location. Only uuid ids are accepted.
func (s *LocalStore) blobPath(id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", ErrBlobNotFound
	}
	return s.sanitizePath(filepath.Join(id[:2], id))
}

func (s *LocalStore) Put(ctx context.Context, r io.Reader, contentType string) (*BlobInfo, error) {
	id := uuid.NewString()
	target, err := s.blobPath(id)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp blob: %w", err)
	}
	tmpName := tmp.Name()

	n, err := io.Copy(tmp, &contextReader{ctx: ctx, r: r})
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpName) // Cleanup
		return nil, fmt.Errorf("write blob: %w", err)
	}

	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return nil, fmt.Errorf("commit blob: %w", err)
	}

	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("stat blob: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"blob_id": id,
		"size":    n,
	}).Debug("Blob stored")

	return &BlobInfo{ID: id, Size: n, ContentType: contentType, ModTime: info.ModTime()}, nil
}

func (s *LocalStore) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	target, err := s.blobPath(id)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("open blob: %w", err)
	}
	return f, nil
}

func (s *LocalStore) Stat(ctx context.Context, id string) (*BlobInfo, error) {
	target, err := s.blobPath(id)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("stat blob: %w", err)
	}

	return &BlobInfo{ID: id, Size: info.Size(), ModTime: info.ModTime()}, nil
}

func (s *LocalStore) Delete(ctx context.Context, id string) error {
	target, err := s.blobPath(id)
	if err != nil {
		return err
	}

	if err := os.Remove(target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrBlobNotFound
		}
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

// List walks the shard directories. Temp files of in-flight uploads are skipped.
func (s *LocalStore) List(ctx context.Context) ([]BlobInfo, error) {
	var items []BlobInfo
	err := filepath.WalkDir(s.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		if _, err := uuid.Parse(d.Name()); err != nil {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		items = append(items, BlobInfo{ID: d.Name(), Size: info.Size(), ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}
	return items, nil
}

func (s *LocalStore) ViewURL(ctx context.Context, id, filename, contentType string) (string, error) {
	return s.signedURL(ctx, BlobGrant{BlobID: id, Filename: filename, ContentType: contentType, Disposition: DispositionInline})
}

func (s *LocalStore) DownloadURL(ctx context.Context, id, filename, contentType string) (string, error) {
	return s.signedURL(ctx, BlobGrant{BlobID: id, Filename: filename, ContentType: contentType, Disposition: DispositionAttachment})
}

func (s *LocalStore) signedURL(ctx context.Context, grant BlobGrant) (string, error) {
	if _, err := s.Stat(ctx, grant.BlobID); err != nil {
		return "", err
	}

	token, err := s.signer.GenerateBlobToken(grant)
	if err != nil {
		return "", fmt.Errorf("sign blob url: %w", err)
	}

	return s.baseURL + "/api/v1/blobs/" + url.PathEscape(grant.BlobID) + "?token=" + url.QueryEscape(token), nil
}

// contextReader stops a copy once ctx is cancelled
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
