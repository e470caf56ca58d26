package storage

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSigner struct {
	grants []BlobGrant
}

func (s *recordingSigner) GenerateBlobToken(grant BlobGrant) (string, error) {
	s.grants = append(s.grants, grant)
	return "signed+" + string(grant.Disposition), nil
}

func setupLocalStore(t *testing.T) (*LocalStore, *recordingSigner) {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	signer := &recordingSigner{}
	store, err := NewLocalStore(t.TempDir(), "http://localhost:8080/", signer, logger)
	require.NoError(t, err)
	return store, signer
}

func TestLocalStore_PutOpenStatDelete(t *testing.T) {
	store, _ := setupLocalStore(t)
	ctx := context.Background()

	info, err := store.Put(ctx, strings.NewReader("hello world"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, int64(11), info.Size)
	assert.Equal(t, "text/plain", info.ContentType)

	_, err = os.Stat(filepath.Join(store.BasePath(), info.ID[:2], info.ID))
	require.NoError(t, err, "blob is sharded by id prefix")

	rc, err := store.Open(ctx, info.ID)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	stat, err := store.Stat(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(11), stat.Size)

	require.NoError(t, store.Delete(ctx, info.ID))
	_, err = store.Stat(ctx, info.ID)
	assert.ErrorIs(t, err, ErrBlobNotFound)
	assert.ErrorIs(t, store.Delete(ctx, info.ID), ErrBlobNotFound)
}

func TestLocalStore_RejectsNonBlobIDs(t *testing.T) {
	store, _ := setupLocalStore(t)
	ctx := context.Background()

	for _, id := range []string{"../etc/passwd", "..", "", "not-a-uuid"} {
		_, err := store.Open(ctx, id)
		assert.ErrorIs(t, err, ErrBlobNotFound, id)
	}
}

func TestLocalStore_SanitizePath(t *testing.T) {
	store, _ := setupLocalStore(t)

	_, err := store.sanitizePath("../outside")
	assert.ErrorIs(t, err, ErrPathTraversal)

	p, err := store.sanitizePath("ab/abc")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p, store.BasePath()))
}

func TestLocalStore_URLs(t *testing.T) {
	store, signer := setupLocalStore(t)
	ctx := context.Background()

	info, err := store.Put(ctx, bytes.NewReader([]byte{1, 2, 3}), "image/png")
	require.NoError(t, err)

	view, err := store.ViewURL(ctx, info.ID, "pic.png", "image/png")
	require.NoError(t, err)
	u, err := url.Parse(view)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/blobs/"+info.ID, u.Path)
	assert.Equal(t, "signed+inline", u.Query().Get("token"))

	download, err := store.DownloadURL(ctx, info.ID, "pic.png", "image/png")
	require.NoError(t, err)
	assert.Contains(t, download, "token=signed%2Battachment")

	require.Len(t, signer.grants, 2)
	assert.Equal(t, "pic.png", signer.grants[1].Filename)
	assert.Equal(t, DispositionAttachment, signer.grants[1].Disposition)

	require.NoError(t, store.Delete(ctx, info.ID))
	_, err = store.ViewURL(ctx, info.ID, "pic.png", "image/png")
	assert.ErrorIs(t, err, ErrBlobNotFound, "deleted blobs get no url")
	assert.Len(t, signer.grants, 2)
}

func TestLocalStore_ListSkipsTempFiles(t *testing.T) {
	store, _ := setupLocalStore(t)
	ctx := context.Background()

	a, err := store.Put(ctx, strings.NewReader("a"), "")
	require.NoError(t, err)
	b, err := store.Put(ctx, strings.NewReader("bb"), "")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(store.BasePath(), a.ID[:2], ".upload-123"), []byte("x"), 0o644))

	items, err := store.List(ctx)
	require.NoError(t, err)

	ids := map[string]int64{}
	for _, it := range items {
		ids[it.ID] = it.Size
	}
	assert.Equal(t, map[string]int64{a.ID: 1, b.ID: 2}, ids)
}

func TestLocalStore_PutHonoursCancellation(t *testing.T) {
	store, _ := setupLocalStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Put(ctx, strings.NewReader("data"), "")
	assert.ErrorIs(t, err, context.Canceled)

	items, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestBlobGrant_ContentDisposition(t *testing.T) {
	g := BlobGrant{Filename: "report.pdf", Disposition: DispositionAttachment}
	assert.Equal(t, `attachment; filename=report.pdf`, g.ContentDisposition())

	g = BlobGrant{Filename: "my report.pdf"}
	assert.Equal(t, `inline; filename="my report.pdf"`, g.ContentDisposition())

	assert.Equal(t, "inline", BlobGrant{}.ContentDisposition())
}
