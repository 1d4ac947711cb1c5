package storage

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Save(ctx context.Context, folder string, data []byte) (string, error) {
	args := m.Called(ctx, folder, data)
	return args.String(0), args.Error(1)
}

func (m *MockImageStore) Delete(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}
