package mocks

import (
	"context"

	"github.com/drive-clone/api/src/domain/files"
	"github.com/drive-clone/api/src/services/content"
	"github.com/stretchr/testify/mock"
)

// MockQuotaService mocks content.QuotaServiceInterface
type MockQuotaService struct {
	mock.Mock
}

func (m *MockQuotaService) ComputeStats(ctx context.Context, ownerID string) (*files.StorageSnapshot, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*files.StorageSnapshot), args.Error(1)
}

func (m *MockQuotaService) AdmitUpload(ctx context.Context, ownerID string, size int64) error {
	args := m.Called(ctx, ownerID, size)
	return args.Error(0)
}

var _ content.QuotaServiceInterface = (*MockQuotaService)(nil)
