package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"docintake/internal/gateway"
	"docintake/internal/model"
	"docintake/internal/service"
	serviceMocks "docintake/internal/service/mocks"
	"docintake/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func TestRun_Resume(t *testing.T) {
	svc := new(serviceMocks.MockIntakeService)
	path := writeFile(t, "cv.pdf", []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n"))

	svc.On("UploadResume", mock.Anything, mock.MatchedBy(func(u service.Upload) bool {
		return u.FileName == "cv.pdf" && u.MediaType == "application/pdf"
	})).Return(&service.ResumeOutcome{CandidateID: "7", Message: "Resume processed"}, nil).Once()

	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"resume", path}, svc, &stdout, &stderr))

	var out service.ResumeOutcome
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	assert.Equal(t, model.ID("7"), out.CandidateID)
	svc.AssertExpectations(t)
}

func TestRun_ResumeFailureShowsReason(t *testing.T) {
	svc := new(serviceMocks.MockIntakeService)
	path := writeFile(t, "cv.pdf", []byte("%PDF-1.4"))

	svc.On("UploadResume", mock.Anything, mock.Anything).Return(nil, &session.Error{
		Stage:  session.StateTransmitting,
		Reason: "Resume could not be parsed",
		Err:    &gateway.TransportError{Op: "submit resume", Status: 422, Message: "Resume could not be parsed"},
	}).Once()

	err := run(context.Background(), []string{"resume", path}, svc, &bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Resume could not be parsed")

	var te *gateway.TransportError
	assert.ErrorAs(t, err, &te)
	assert.Equal(t, 1, exitCode(err))
}

func TestRun_Document(t *testing.T) {
	svc := new(serviceMocks.MockIntakeService)
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	path := writeFile(t, "pan.png", png)

	svc.On("UploadDocument", mock.Anything, model.ID("3"), "pan_card", mock.MatchedBy(func(u service.Upload) bool {
		return u.FileName == "pan.png" && u.MediaType == "image/png"
	})).Return(&service.DocumentOutcome{Message: "Documents processed", OverallStatus: model.ExtractionCompleted}, nil).Once()

	var stdout bytes.Buffer
	err := run(context.Background(), []string{"document", "-candidate", "3", "-type", "pan_card", path}, svc, &stdout, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), `"overall_status": "Completed"`)
	svc.AssertExpectations(t)
}

func TestRun_ListShowRequest(t *testing.T) {
	svc := new(serviceMocks.MockIntakeService)
	ctx := context.Background()

	svc.On("ListCandidates", mock.Anything).Return([]model.Candidate{{ID: "1"}, {ID: "2"}}).Once()
	svc.On("CandidateView", mock.Anything, model.ID("1")).Return(&service.CandidateView{Candidate: model.Candidate{ID: "1"}}, nil).Once()
	svc.On("RequestDocuments", mock.Anything, model.ID("1")).
		Return(&gateway.DocumentRequestResult{Success: true, EmailBody: "Dear Asha"}, nil).Once()

	var stdout bytes.Buffer
	require.NoError(t, run(ctx, []string{"list"}, svc, &stdout, &bytes.Buffer{}))
	var list []model.Candidate
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &list))
	assert.Len(t, list, 2)

	stdout.Reset()
	require.NoError(t, run(ctx, []string{"show", "1"}, svc, &stdout, &bytes.Buffer{}))
	assert.Contains(t, stdout.String(), `"candidate"`)

	stdout.Reset()
	require.NoError(t, run(ctx, []string{"request", "1"}, svc, &stdout, &bytes.Buffer{}))
	assert.Contains(t, stdout.String(), "Dear Asha")

	svc.AssertExpectations(t)
}

func TestRun_Errors(t *testing.T) {
	svc := new(serviceMocks.MockIntakeService)
	ctx := context.Background()

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no command", nil, 2},
		{"unknown command", []string{"explode"}, 2},
		{"resume without file", []string{"resume"}, 2},
		{"document without type", []string{"document", "-candidate", "3", "x.png"}, 2},
		{"show without id", []string{"show"}, 2},
		{"missing file", []string{"resume", filepath.Join(t.TempDir(), "nope.pdf")}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(ctx, tt.args, svc, &bytes.Buffer{}, &bytes.Buffer{})
			require.Error(t, err)
			assert.Equal(t, tt.want, exitCode(err))
		})
	}

	t.Run("request rejected", func(t *testing.T) {
		svc.On("RequestDocuments", mock.Anything, model.ID("4")).
			Return(nil, &service.RequestError{Message: "Candidate has no email"}).Once()

		err := run(ctx, []string{"request", "4"}, svc, &bytes.Buffer{}, &bytes.Buffer{})
		var reqErr *service.RequestError
		require.True(t, errors.As(err, &reqErr))
		assert.Equal(t, "Candidate has no email", reqErr.Message)
	})
}

func TestProgressPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := progressPrinter(&buf)
	p("resume", 0)
	p("resume", 90)
	p("resume", 100)

	assert.Equal(t, "\rresume   0%\rresume  90%\rresume 100%\n", buf.String())
}
