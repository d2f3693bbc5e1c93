package mocks

import (
	"context"

	"docintake/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockEntryRepository struct {
	mock.Mock
}

func (m *MockEntryRepository) Append(ctx context.Context, e *model.RegistryEntry) (*model.RegistryEntry, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RegistryEntry), args.Error(1)
}

func (m *MockEntryRepository) List(ctx context.Context, candidateID model.ID) ([]model.RegistryEntry, error) {
	args := m.Called(ctx, candidateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RegistryEntry), args.Error(1)
}

func (m *MockEntryRepository) Find(ctx context.Context, candidateID, documentID model.ID) (*model.RegistryEntry, error) {
	args := m.Called(ctx, candidateID, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RegistryEntry), args.Error(1)
}

func (m *MockEntryRepository) Replace(ctx context.Context, candidateID model.ID, entries []model.RegistryEntry) error {
	args := m.Called(ctx, candidateID, entries)
	return args.Error(0)
}

func (m *MockEntryRepository) Delete(ctx context.Context, candidateID, documentID model.ID) error {
	args := m.Called(ctx, candidateID, documentID)
	return args.Error(0)
}

func (m *MockEntryRepository) AddRemoval(ctx context.Context, r model.Removal) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockEntryRepository) Removals(ctx context.Context, candidateID model.ID) ([]model.Removal, error) {
	args := m.Called(ctx, candidateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Removal), args.Error(1)
}
