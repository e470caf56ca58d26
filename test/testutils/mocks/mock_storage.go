package mocks

import (
	"context"
	"io"

	"github.com/drive-clone/api/src/drivers/storage"
	"github.com/stretchr/testify/mock"
)

// MockBlobStore mocks storage.BlobStore
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Put(ctx context.Context, r io.Reader, contentType string) (*storage.BlobInfo, error) {
	args := m.Called(ctx, r, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.BlobInfo), args.Error(1)
}

func (m *MockBlobStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBlobStore) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockBlobStore) Stat(ctx context.Context, id string) (*storage.BlobInfo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.BlobInfo), args.Error(1)
}

func (m *MockBlobStore) List(ctx context.Context) ([]storage.BlobInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.BlobInfo), args.Error(1)
}

func (m *MockBlobStore) ViewURL(ctx context.Context, id, filename, contentType string) (string, error) {
	args := m.Called(ctx, id, filename, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) DownloadURL(ctx context.Context, id, filename, contentType string) (string, error) {
	args := m.Called(ctx, id, filename, contentType)
	return args.String(0), args.Error(1)
}

var _ storage.BlobStore = (*MockBlobStore)(nil)
