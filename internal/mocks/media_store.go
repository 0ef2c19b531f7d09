package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vidstream/identity/internal/model"
)

// MediaStore is a testify mock of model.MediaStore.
type MediaStore struct {
	mock.Mock
}

var _ model.MediaStore = (*MediaStore)(nil)

func (m *MediaStore) UploadFile(ctx context.Context, localPath string) (string, error) {
	args := m.Called(ctx, localPath)
	return args.String(0), args.Error(1)
}
