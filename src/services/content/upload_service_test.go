package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/drive-clone/api/src/domain/files"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openString(body string) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(body)), nil
	}
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

func openZeros(n int64) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		return io.NopCloser(io.LimitReader(zeroReader{}, n)), nil
	}
}

func assertNoLeftovers(t *testing.T, env *contentEnv, wantBlobs int) {
	t.Helper()
	blobs, err := env.blobs.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, blobs, wantBlobs, "blobs in store")

	// Reservations expire an hour out in tests; a live one means a leak.
	pending, err := env.reservations.PendingBytes(context.Background(), testOwner, "")
	require.NoError(t, err)
	assert.Zero(t, pending, "pending reservations")
}

func TestUpload_StoresBlobAndEntry(t *testing.T) {
	env := setupContent(t)
	ctx := ownerCtx(testOwner)

	entry, err := env.upload.Upload(ctx, testOwner, UploadRequest{
		Name:     "  hello.txt ",
		MimeType: "text/plain",
		Size:     5,
		Open:     openString("hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, "hello.txt", entry.Name)
	assert.Equal(t, int64(5), entry.Size)
	require.NotNil(t, entry.BlobID)

	rc, err := env.blobs.Open(context.Background(), *entry.BlobID)
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "hello", string(body))

	assertNoLeftovers(t, env, 1)
}

func TestUpload_SizeComesFromBlobStore(t *testing.T) {
	env := setupContent(t)
	ctx := ownerCtx(testOwner)

	entry, err := env.upload.Upload(ctx, testOwner, UploadRequest{
		Name: "spoofed.txt",
		Size: 1,
		Open: openString("actually eleven"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(len("actually eleven")), entry.Size)
}

func TestUpload_PerFileCeilingBoundary(t *testing.T) {
	env := setupContent(t)
	ctx := ownerCtx(testOwner)

	entry, err := env.upload.Upload(ctx, testOwner, UploadRequest{
		Name:     "exact.bin",
		MimeType: "application/octet-stream",
		Size:     50 * mib,
		Open:     openZeros(50 * mib),
	})
	require.NoError(t, err, "exactly 50 MiB is accepted")
	assert.Equal(t, 50*mib, entry.Size)

	_, err = env.upload.Upload(ctx, testOwner, UploadRequest{
		Name: "over.bin",
		Size: 50*mib + 1,
		Open: openZeros(50*mib + 1),
	})
	requireKind(t, err, files.KindValidation)
	assert.Equal(t, `File "over.bin" is too large. Maximum file size is 50MB.`, err.Error())

	assertNoLeftovers(t, env, 1)
}

func TestUpload_UnderstatedSizeIsCaughtAfterWrite(t *testing.T) {
	env := setupContent(t, withLimits(16, 1024))
	ctx := ownerCtx(testOwner)

	_, err := env.upload.Upload(ctx, testOwner, UploadRequest{
		Name: "liar.bin",
		Size: 4,
		Open: openZeros(17),
	})
	requireKind(t, err, files.KindValidation)

	root, err := env.hierarchy.ListChildren(ctx, testOwner, nil)
	require.NoError(t, err)
	assert.Empty(t, root)
	assertNoLeftovers(t, env, 0)
}

func TestUpload_AggregateQuota(t *testing.T) {
	env := setupContent(t, withLimits(10, 25))
	ctx := ownerCtx(testOwner)

	_, err := env.upload.Upload(ctx, testOwner, UploadRequest{Name: "a", Size: 10, Open: openZeros(10)})
	require.NoError(t, err)
	_, err = env.upload.Upload(ctx, testOwner, UploadRequest{Name: "b", Size: 10, Open: openZeros(10)})
	require.NoError(t, err)

	_, err = env.upload.Upload(ctx, testOwner, UploadRequest{Name: "c", Size: 10, Open: openZeros(10)})
	requireKind(t, err, files.KindQuotaExceeded)

	// Declared small, actually larger than the space left: rejected at commit.
	_, err = env.upload.Upload(ctx, testOwner, UploadRequest{Name: "d", Size: 1, Open: openZeros(8)})
	requireKind(t, err, files.KindQuotaExceeded)

	_, err = env.upload.Upload(ctx, testOwner, UploadRequest{Name: "e", Size: 5, Open: openZeros(5)})
	require.NoError(t, err)

	assertNoLeftovers(t, env, 3)
}

func TestUpload_FailuresCleanUp(t *testing.T) {
	env := setupContent(t)
	ctx := ownerCtx(testOwner)

	uploadText(t, env, ctx, testOwner, "dup.txt", "one", nil)

	_, err := env.upload.Upload(ctx, testOwner, UploadRequest{Name: "DUP.txt", Size: 3, Open: openString("two")})
	requireKind(t, err, files.KindConflict)

	_, err = env.upload.Upload(ctx, testOwner, UploadRequest{
		Name: "broken.txt",
		Size: 3,
		Open: func() (io.ReadCloser, error) { return nil, errors.New("gone") },
	})
	requireKind(t, err, files.KindValidation)

	missing := "no-such-folder"
	_, err = env.upload.Upload(ctx, testOwner, UploadRequest{Name: "x.txt", Size: 1, ParentID: &missing, Open: openString("x")})
	requireKind(t, err, files.KindNotFound)

	assertNoLeftovers(t, env, 1)
}

func TestUpload_Unauthenticated(t *testing.T) {
	env := setupContent(t)

	_, err := env.upload.Upload(context.Background(), testOwner, UploadRequest{Name: "a", Size: 1, Open: openString("a")})
	requireKind(t, err, files.KindAuthorization)

	_, err = env.upload.Upload(ownerCtx(otherUser), testOwner, UploadRequest{Name: "a", Size: 1, Open: openString("a")})
	requireKind(t, err, files.KindAuthorization)
}

func TestUploadBatch_ReportsPerItem(t *testing.T) {
	env := setupContent(t)
	ctx, cancel := context.WithTimeout(ownerCtx(testOwner), 30*time.Second)
	defer cancel()

	reqs := []UploadRequest{
		{Name: "one.txt", MimeType: "text/plain", Size: 3, Open: openString("one")},
		{Name: "bad|name.txt", Size: 3, Open: openString("bad")},
		{Name: "two.txt", MimeType: "text/plain", Size: 3, Open: openString("two")},
		{Name: "huge.bin", Size: 50*mib + 1, Open: openZeros(1)},
		{Name: "three.txt", MimeType: "text/plain", Size: 5, Open: openString("three")},
	}

	results := env.upload.UploadBatch(ctx, testOwner, reqs)
	require.Len(t, results, len(reqs))

	for i, r := range results {
		assert.Equal(t, reqs[i].Name, r.Name, "results keep request order")
	}
	assert.NoError(t, results[0].Err)
	requireKind(t, results[1].Err, files.KindValidation)
	assert.NotEmpty(t, results[1].Error)
	assert.NoError(t, results[2].Err)
	requireKind(t, results[3].Err, files.KindValidation)
	assert.NoError(t, results[4].Err)
	require.NotNil(t, results[4].Entry)

	stats, err := env.quota.ComputeStats(ctx, testOwner)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalFiles)
	assert.Equal(t, int64(11), stats.TotalSize)
	assertNoLeftovers(t, env, 3)
}

func TestUploadBatch_ConcurrentFilesStayWithinTotal(t *testing.T) {
	env := setupContent(t, withLimits(10, 25))
	ctx := ownerCtx(testOwner)

	reqs := make([]UploadRequest, 6)
	for i := range reqs {
		reqs[i] = UploadRequest{Name: fmt.Sprintf("part-%d.bin", i), Size: 10, Open: openZeros(10)}
	}

	results := env.upload.UploadBatch(ctx, testOwner, reqs)
	require.Len(t, results, len(reqs))

	var accepted int
	for _, r := range results {
		if r.Err == nil {
			accepted++
			continue
		}
		requireKind(t, r.Err, files.KindQuotaExceeded)
	}
	assert.Equal(t, 2, accepted)

	stats, err := env.quota.ComputeStats(ctx, testOwner)
	require.NoError(t, err)
	assert.LessOrEqual(t, stats.TotalSize, int64(25))
	assert.Equal(t, int64(20), stats.TotalSize)
	assertNoLeftovers(t, env, 2)
}
