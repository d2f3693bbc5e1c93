package mocks

import (
	"context"

	"docintake/internal/gateway"
	"docintake/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) ListCandidates(ctx context.Context) ([]model.Candidate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Candidate), args.Error(1)
}

func (m *MockGateway) GetCandidate(ctx context.Context, id model.ID) (*model.Candidate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Candidate), args.Error(1)
}

func (m *MockGateway) SubmitResume(ctx context.Context, p gateway.Payload) (*gateway.ResumeResult, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.ResumeResult), args.Error(1)
}

func (m *MockGateway) SubmitDocument(ctx context.Context, candidateID model.ID, p gateway.Payload) (*gateway.DocumentResult, error) {
	args := m.Called(ctx, candidateID, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.DocumentResult), args.Error(1)
}

func (m *MockGateway) RequestDocuments(ctx context.Context, candidateID model.ID) (*gateway.DocumentRequestResult, error) {
	args := m.Called(ctx, candidateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.DocumentRequestResult), args.Error(1)
}
