package files

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func classifyForTest(mimeType string) Category {
	switch mimeType {
	case "text/plain", "application/pdf":
		return CategoryDocuments
	case "image/png":
		return CategoryImages
	case "video/mp4":
		return CategoryVideos
	}
	return CategoryOthers
}

func TestNewStorageSnapshot_FoldsCategories(t *testing.T) {
	rows := []MimeUsage{
		{MimeType: "text/plain", Count: 1, Size: 10},
	}

	snap := NewStorageSnapshot(rows, classifyForTest, 500)

	assert.Equal(t, 1, snap.TotalFiles)
	assert.Equal(t, int64(10), snap.TotalSize)
	assert.Equal(t, CategoryUsage{Count: 1, Size: 10}, snap.Documents)
	assert.Equal(t, CategoryUsage{}, snap.Images)
	assert.Equal(t, CategoryUsage{}, snap.Videos)
	assert.Equal(t, CategoryUsage{}, snap.Others)
	assert.Equal(t, int64(490), snap.Remaining)
	assert.InDelta(t, 98.0, snap.PercentRemaining, 0.0001)
}

func TestNewStorageSnapshot_OrderIndependent(t *testing.T) {
	rows := []MimeUsage{
		{MimeType: "text/plain", Count: 2, Size: 30},
		{MimeType: "image/png", Count: 1, Size: 7},
		{MimeType: "", Count: 3, Size: 11},
		{MimeType: "video/mp4", Count: 1, Size: 100},
		{MimeType: "application/pdf", Count: 4, Size: 5},
	}

	base := NewStorageSnapshot(rows, classifyForTest, 1000)

	permutations := [][]int{
		{4, 3, 2, 1, 0},
		{1, 0, 3, 2, 4},
		{2, 4, 0, 3, 1},
	}
	for _, perm := range permutations {
		shuffled := make([]MimeUsage, len(rows))
		for i, idx := range perm {
			shuffled[i] = rows[idx]
		}
		assert.Equal(t, base, NewStorageSnapshot(shuffled, classifyForTest, 1000))
	}

	assert.Equal(t, 11, base.TotalFiles)
	assert.Equal(t, int64(153), base.TotalSize)
	assert.Equal(t, CategoryUsage{Count: 6, Size: 35}, base.Documents)
	assert.Equal(t, CategoryUsage{Count: 3, Size: 11}, base.Others)
}

func TestPercentRemaining_GoesNegativeOverQuota(t *testing.T) {
	assert.InDelta(t, 100.0, PercentRemaining(0, 100), 0.0001)
	assert.InDelta(t, -50.0, PercentRemaining(150, 100), 0.0001)
	assert.Equal(t, 0.0, PercentRemaining(10, 0))

	snap := NewStorageSnapshot([]MimeUsage{{MimeType: "x", Count: 1, Size: 150}}, classifyForTest, 100)
	assert.Equal(t, int64(0), snap.Remaining)
}
