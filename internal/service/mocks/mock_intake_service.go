package mocks

import (
	"context"
	"io"

	"docintake/internal/gateway"
	"docintake/internal/model"
	"docintake/internal/registry"
	"docintake/internal/service"
	"docintake/internal/session"
	"docintake/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockIntakeService struct {
	mock.Mock
}

var _ service.IntakeService = (*MockIntakeService)(nil)

func (m *MockIntakeService) UploadResume(ctx context.Context, u service.Upload) (*service.ResumeOutcome, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ResumeOutcome), args.Error(1)
}

func (m *MockIntakeService) UploadDocument(ctx context.Context, candidateID model.ID, docType string, u service.Upload) (*service.DocumentOutcome, error) {
	args := m.Called(ctx, candidateID, docType, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentOutcome), args.Error(1)
}

func (m *MockIntakeService) ListCandidates(ctx context.Context) []model.Candidate {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]model.Candidate)
}

func (m *MockIntakeService) GetCandidate(ctx context.Context, id model.ID) (*model.Candidate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Candidate), args.Error(1)
}

func (m *MockIntakeService) CandidateView(ctx context.Context, id model.ID) (*service.CandidateView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CandidateView), args.Error(1)
}

func (m *MockIntakeService) ListDocuments(ctx context.Context, id model.ID) ([]registry.View, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]registry.View), args.Error(1)
}

func (m *MockIntakeService) RemoveDocument(ctx context.Context, candidateID, documentID model.ID, confirm registry.Confirmer) error {
	args := m.Called(ctx, candidateID, documentID, confirm)
	return args.Error(0)
}

func (m *MockIntakeService) DownloadURL(ctx context.Context, candidateID, documentID model.ID) (string, error) {
	args := m.Called(ctx, candidateID, documentID)
	return args.String(0), args.Error(1)
}

func (m *MockIntakeService) OpenDocument(ctx context.Context, candidateID, documentID model.ID) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, candidateID, documentID)
	if args.Get(0) == nil {
		return nil, storage.ObjectInfo{}, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(storage.ObjectInfo), args.Error(2)
}

func (m *MockIntakeService) RequestDocuments(ctx context.Context, candidateID model.ID) (*gateway.DocumentRequestResult, error) {
	args := m.Called(ctx, candidateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.DocumentRequestResult), args.Error(1)
}

func (m *MockIntakeService) Session(slot string) (session.Snapshot, bool) {
	args := m.Called(slot)
	return args.Get(0).(session.Snapshot), args.Bool(1)
}
