package content

import (
	"context"
	"testing"

	"github.com/drive-clone/api/src/domain/files"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedFile(t *testing.T, env *contentEnv, name, mime string, size int64) {
	t.Helper()
	_, err := env.hierarchy.CreateFile(ownerCtx(testOwner), FileSpec{
		OwnerID:  testOwner,
		Name:     name,
		MimeType: mime,
		Size:     size,
		BlobID:   "seed-" + name,
	})
	require.NoError(t, err)
}

func TestQuota_ComputeStatsScenario(t *testing.T) {
	env := setupContent(t)
	ctx := ownerCtx(testOwner)

	docs, err := env.hierarchy.CreateFolder(ctx, testOwner, "Docs", nil)
	require.NoError(t, err)

	root, err := env.hierarchy.ListChildren(ctx, testOwner, nil)
	require.NoError(t, err)
	require.Len(t, root, 1)
	assert.Equal(t, "Docs", root[0].Name)
	assert.Equal(t, files.EntryTypeFolder, root[0].Type)

	uploadText(t, env, ctx, testOwner, "a.txt", "0123456789", &docs.ID)

	stats, err := env.quota.ComputeStats(ctx, testOwner)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalFiles)
	assert.Equal(t, int64(10), stats.TotalSize)
	assert.Equal(t, files.CategoryUsage{Count: 1, Size: 10}, stats.Documents)
	assert.Equal(t, files.CategoryUsage{}, stats.Images)
	assert.Equal(t, files.CategoryUsage{}, stats.Videos)
	assert.Equal(t, files.CategoryUsage{}, stats.Others)
	assert.Equal(t, 500*mib, stats.Limit)
	assert.Equal(t, 500*mib-10, stats.Remaining)
}

func TestQuota_ComputeStatsCategories(t *testing.T) {
	env := setupContent(t)
	ctx := ownerCtx(testOwner)

	seedFile(t, env, "a.pdf", "application/pdf", 100)
	seedFile(t, env, "b.png", "image/png", 20)
	seedFile(t, env, "c.mp4", "video/mp4", 300)
	seedFile(t, env, "d.zip", "application/zip", 4)
	seedFile(t, env, "e.bin", "", 1)
	_, err := env.hierarchy.CreateFolder(ctx, testOwner, "Folder", nil)
	require.NoError(t, err)

	stats, err := env.quota.ComputeStats(ctx, testOwner)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalFiles, "folders are excluded")
	assert.Equal(t, int64(425), stats.TotalSize)
	assert.Equal(t, int64(100), stats.Documents.Size)
	assert.Equal(t, int64(20), stats.Images.Size)
	assert.Equal(t, int64(300), stats.Videos.Size)
	assert.Equal(t, files.CategoryUsage{Count: 2, Size: 5}, stats.Others)

	again, err := env.quota.ComputeStats(ctx, testOwner)
	require.NoError(t, err)
	assert.Equal(t, stats, again, "idempotent")

	_, err = env.quota.ComputeStats(ctx, otherUser)
	requireKind(t, err, files.KindAuthorization)
}

func TestQuota_AdmitUploadPerFileCeiling(t *testing.T) {
	env := setupContent(t)
	ctx := ownerCtx(testOwner)

	require.NoError(t, env.quota.AdmitUpload(ctx, testOwner, 50*mib))

	err := env.quota.AdmitUpload(ctx, testOwner, 50*mib+1)
	requireKind(t, err, files.KindValidation)
	assert.Equal(t, "File is too large. Maximum file size is 50MB.", err.Error())

	err = env.quota.CheckFileSize("big.iso", 50*mib+1)
	assert.Equal(t, `File "big.iso" is too large. Maximum file size is 50MB.`, err.Error())
}

func TestQuota_AdmitUploadAggregateCeiling(t *testing.T) {
	env := setupContent(t)
	ctx := ownerCtx(testOwner)

	for i := 0; i < 9; i++ {
		seedFile(t, env, "chunk-"+string(rune('a'+i)), "application/octet-stream", 50*mib)
	}

	// 450MiB used: another 50MiB exactly reaches the ceiling.
	require.NoError(t, env.quota.AdmitUpload(ctx, testOwner, 50*mib))

	seedFile(t, env, "chunk-last", "application/octet-stream", 50*mib-1)

	err := env.quota.AdmitUpload(ctx, testOwner, 2)
	requireKind(t, err, files.KindQuotaExceeded)
	assert.Equal(t, "Storage limit exceeded. You have 0.0MB remaining.", err.Error())

	require.NoError(t, env.quota.AdmitUpload(ctx, testOwner, 1))

	stats, err := env.quota.ComputeStats(ctx, testOwner)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, stats.PercentRemaining, 0.001)
}

func TestQuota_ReservationsCountUntilReleased(t *testing.T) {
	env := setupContent(t, withLimits(100, 250))
	ctx := ownerCtx(testOwner)

	first, err := env.quota.Reserve(ctx, testOwner, 100)
	require.NoError(t, err)
	_, err = env.quota.Reserve(ctx, testOwner, 100)
	require.NoError(t, err)

	err = env.quota.AdmitUpload(ctx, testOwner, 60)
	requireKind(t, err, files.KindQuotaExceeded)

	_, err = env.quota.Reserve(ctx, testOwner, 60)
	requireKind(t, err, files.KindQuotaExceeded)

	require.NoError(t, env.quota.Release(ctx, first.ID))
	require.NoError(t, env.quota.AdmitUpload(ctx, testOwner, 60))

	_, err = env.quota.Reserve(ctx, testOwner, 101)
	requireKind(t, err, files.KindValidation)
}

func TestQuota_Unauthenticated(t *testing.T) {
	env := setupContent(t)

	err := env.quota.AdmitUpload(context.Background(), testOwner, 1)
	requireKind(t, err, files.KindAuthorization)
}

func TestFormatMB(t *testing.T) {
	assert.Equal(t, "50MB", formatMB(50*mib))
	assert.Equal(t, "1.5MB", formatMB(mib+mib/2))
}
