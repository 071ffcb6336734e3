package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/zots0127/filehub/internal/domain/entities"
)

// MockReferenceRepository is a mock implementation of ReferenceRepository
type MockReferenceRepository struct {
	mock.Mock
}

func (m *MockReferenceRepository) Create(ctx context.Context, ref *entities.FileReference) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func (m *MockReferenceRepository) Get(ctx context.Context, id string) (*entities.FileReference, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.FileReference), args.Error(1)
}

func (m *MockReferenceRepository) Delete(ctx context.Context, id string) (*entities.File, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.File), args.Error(1)
}

func (m *MockReferenceRepository) ListByFile(ctx context.Context, fileID string) ([]*entities.FileReference, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.FileReference), args.Error(1)
}

func (m *MockReferenceRepository) List(ctx context.Context) ([]*entities.FileReference, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.FileReference), args.Error(1)
}
