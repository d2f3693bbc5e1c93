package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"docintake/internal/config"
	"docintake/internal/gateway"
	gwMocks "docintake/internal/gateway/mocks"
	"docintake/internal/logging"
	"docintake/internal/model"
	"docintake/internal/reconcile"
	"docintake/internal/registry"
	"docintake/internal/repository/memory"
	"docintake/internal/session"
	"docintake/internal/storage"
	storeMocks "docintake/internal/storage/mocks"
	"docintake/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	gw    *gwMocks.MockGateway
	store *storeMocks.MockStorage
	reg   *registry.Registry
	svc   IntakeService
}

func newFixture(t *testing.T, withArchive bool) *fixture {
	t.Helper()
	f := &fixture{
		gw:  new(gwMocks.MockGateway),
		reg: registry.New(memory.NewEntryMemory(), logging.Discard()),
	}

	var archive *storage.Archive
	if withArchive {
		f.store = new(storeMocks.MockStorage)
		archive = storage.NewArchive(f.store, time.Minute)
	} else {
		archive = storage.NewArchive(nil, 0)
	}

	sessions := session.NewController(session.Options{Interval: time.Hour, Logger: logging.Discard()})
	f.svc = NewIntakeService(f.gw, f.reg, archive, sessions, config.UploadConfig{MaxUploadMB: 1}, logging.Discard())
	return f
}

func score(v float64) *float64 { return &v }

func TestIntakeService_UploadResume(t *testing.T) {
	ctx := context.Background()

	t.Run("accepted resume re-fetches candidates", func(t *testing.T) {
		f := newFixture(t, false)

		f.gw.On("SubmitResume", mock.Anything, mock.MatchedBy(func(p gateway.Payload) bool {
			return strings.Contains(string(p.Body), `name="resume"; filename="resume.pdf"`)
		})).Return(&gateway.ResumeResult{
			Message:     "Resume uploaded and processed successfully",
			CandidateID: "12",
			Data:        gateway.ResumeExtraction{Name: "John Doe", Email: "john@example.com"},
		}, nil).Once()
		f.gw.On("ListCandidates", mock.Anything).Return([]model.Candidate{{ID: "12", Name: "John Doe"}}, nil).Once()
		f.gw.On("GetCandidate", mock.Anything, model.ID("12")).Return(&model.Candidate{
			ID:    "12",
			Name:  "John Doe",
			Email: "john@example.com",
			ExtractedData: &model.ExtractedData{
				Phone:      "+91 98765 43210",
				Confidence: map[string]float64{"phone": 0.65},
			},
		}, nil).Once()

		out, err := f.svc.UploadResume(ctx, Upload{FileName: "resume.pdf", MediaType: "application/pdf", Content: []byte("%PDF-1.4")})
		require.NoError(t, err)

		assert.Equal(t, session.StateSucceeded, out.Session.State)
		assert.Equal(t, 100, out.Session.Progress)
		assert.Equal(t, model.ID("12"), out.CandidateID)

		phone, ok := out.Display.Field(reconcile.Phone)
		require.True(t, ok)
		assert.Equal(t, "+91 98765 43210", phone.Value.Text)
		assert.Equal(t, reconcile.TierMedium, phone.Tier)

		snap, ok := f.svc.Session(ResumeSlot)
		require.True(t, ok)
		assert.Equal(t, session.StateSucceeded, snap.State)
		f.gw.AssertExpectations(t)
	})

	t.Run("rejected file makes no network call", func(t *testing.T) {
		f := newFixture(t, false)

		_, err := f.svc.UploadResume(ctx, Upload{FileName: "photo.exe", MediaType: "application/x-msdownload"})
		require.Error(t, err)
		assert.ErrorIs(t, err, validation.ErrInvalidFileType)

		var serr *session.Error
		require.True(t, errors.As(err, &serr))
		assert.Equal(t, "invalid file type", serr.Reason)

		f.gw.AssertNotCalled(t, "SubmitResume", mock.Anything, mock.Anything)
		f.gw.AssertNotCalled(t, "ListCandidates", mock.Anything)
	})

	t.Run("too large", func(t *testing.T) {
		f := newFixture(t, false)

		big := make([]byte, 1024*1024+1)
		_, err := f.svc.UploadResume(ctx, Upload{FileName: "cv.pdf", MediaType: "application/pdf", Content: big})
		assert.ErrorIs(t, err, validation.ErrFileTooLarge)
		f.gw.AssertNotCalled(t, "SubmitResume", mock.Anything, mock.Anything)
	})

	t.Run("backend error message", func(t *testing.T) {
		f := newFixture(t, false)

		f.gw.On("SubmitResume", mock.Anything, mock.Anything).
			Return(nil, &gateway.TransportError{Op: "submit resume", Status: 400, Message: "No file provided"})

		_, err := f.svc.UploadResume(ctx, Upload{FileName: "resume.docx"})
		var serr *session.Error
		require.True(t, errors.As(err, &serr))
		assert.Equal(t, "No file provided", serr.Reason)
		f.gw.AssertNotCalled(t, "ListCandidates", mock.Anything)
	})
}

func TestIntakeService_UploadDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("verification failure is recorded with match percent", func(t *testing.T) {
		f := newFixture(t, true)

		f.gw.On("SubmitDocument", mock.Anything, model.ID("3"), mock.MatchedBy(func(p gateway.Payload) bool {
			return strings.Contains(string(p.Body), `name="pan_card"`)
		})).Return(&gateway.DocumentResult{
			Message: "Documents uploaded and verified successfully",
			Documents: []model.Document{{
				Name:               "pan_card_3_pan.png",
				Status:             model.VerificationFailed,
				VerificationStatus: model.VerificationFailed,
				SimilarityScore:    score(0.42),
			}},
		}, nil).Once()
		f.gw.On("GetCandidate", mock.Anything, model.ID("3")).Return(&model.Candidate{ID: "3", Name: "Jane"}, nil).Once()
		f.store.On("Put", mock.Anything, mock.MatchedBy(func(k string) bool { return strings.HasPrefix(k, "candidates/3/") }), mock.Anything, mock.Anything).
			Return(func(_ context.Context, key string, _ io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
				return storage.ObjectInfo{Key: key, Size: opt.Size}
			}, nil).Once()

		out, err := f.svc.UploadDocument(ctx, "3", "pan_card", Upload{FileName: "pan.png", MediaType: "image/png", Content: []byte{0x89, 'P', 'N', 'G'}})
		require.NoError(t, err)

		require.Len(t, out.Submitted, 1)
		doc := out.Submitted[0]
		assert.Equal(t, "Verification Failed", doc.DisplayStatus)
		require.NotNil(t, doc.MatchPercent)
		assert.Equal(t, 42, *doc.MatchPercent)
		assert.True(t, doc.Archived)
		assert.Equal(t, "pan_card", doc.DocumentType)

		require.Len(t, out.Documents, 1)
		assert.Equal(t, session.StateSucceeded, out.Session.State)

		_, ok := f.svc.Session(DocumentSlot("3", model.DocumentTypePANCard))
		assert.True(t, ok)

		f.gw.AssertExpectations(t)
		f.store.AssertExpectations(t)
	})

	t.Run("unknown document type", func(t *testing.T) {
		f := newFixture(t, false)
		_, err := f.svc.UploadDocument(ctx, "3", "passport", Upload{FileName: "p.pdf"})
		assert.ErrorIs(t, err, ErrInvalidDocumentType)
	})

	t.Run("missing candidate", func(t *testing.T) {
		f := newFixture(t, false)
		_, err := f.svc.UploadDocument(ctx, "", "pan_card", Upload{FileName: "p.pdf"})
		assert.ErrorIs(t, err, ErrIDRequired)
	})

	t.Run("attempts exceeded", func(t *testing.T) {
		f := newFixture(t, false)
		f.gw.On("SubmitDocument", mock.Anything, model.ID("3"), mock.Anything).
			Return(nil, &gateway.TransportError{Op: "submit document", Status: 403, Message: "Maximum upload attempts exceeded. Please contact the administrator."})

		_, err := f.svc.UploadDocument(ctx, "3", "aadhaar_card", Upload{FileName: "id.jpg", MediaType: "image/jpeg"})
		var serr *session.Error
		require.True(t, errors.As(err, &serr))
		assert.Equal(t, "Maximum upload attempts exceeded. Please contact the administrator.", serr.Reason)

		docs, err := f.svc.ListDocuments(ctx, "3")
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("archive failure does not fail the session", func(t *testing.T) {
		f := newFixture(t, true)
		f.gw.On("SubmitDocument", mock.Anything, model.ID("3"), mock.Anything).
			Return(&gateway.DocumentResult{Documents: []model.Document{{ID: "submitted_4", Name: "id.jpg"}}}, nil)
		f.gw.On("GetCandidate", mock.Anything, model.ID("3")).Return(&model.Candidate{
			ID:                 "3",
			SubmittedDocuments: []model.Document{{ID: "submitted_4", Name: "id.jpg", Status: model.VerificationSubmitted}},
		}, nil)
		f.store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(storage.ObjectInfo{}, errors.New("bucket gone"))

		out, err := f.svc.UploadDocument(ctx, "3", "aadhaar_card", Upload{FileName: "id.jpg", MediaType: "image/jpeg"})
		require.NoError(t, err)
		require.Len(t, out.Documents, 1)
		assert.False(t, out.Documents[0].Archived)
		assert.Equal(t, "Submitted", out.Documents[0].DisplayStatus)
	})
}

func TestIntakeService_ListCandidates(t *testing.T) {
	f := newFixture(t, false)
	f.gw.On("ListCandidates", mock.Anything).Return(nil, &gateway.TransportError{Op: "list candidates"}).Once()

	got := f.svc.ListCandidates(context.Background())
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestIntakeService_CandidateView(t *testing.T) {
	ctx := context.Background()

	t.Run("present value keeps low tier", func(t *testing.T) {
		f := newFixture(t, false)
		f.gw.On("GetCandidate", mock.Anything, model.ID("4")).Return(&model.Candidate{
			ID:   "4",
			Name: "Jane",
			ExtractedData: &model.ExtractedData{
				Skills:     []string{"SQL"},
				Confidence: map[string]float64{"skills": 0.55},
			},
			SubmittedDocuments: []model.Document{
				{ID: "submitted_1", Name: "pan.png", Status: "Submitted", VerificationStatus: "Pass"},
			},
		}, nil)

		view, err := f.svc.CandidateView(ctx, "4")
		require.NoError(t, err)

		skills, ok := view.Display.Field(reconcile.Skills)
		require.True(t, ok)
		assert.Equal(t, reconcile.TierLow, skills.Tier)
		assert.Equal(t, []string{"SQL"}, skills.Value.List)

		require.Len(t, view.Documents, 1)
		assert.Equal(t, "Pass", view.Documents[0].DisplayStatus)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t, false)
		f.gw.On("GetCandidate", mock.Anything, model.ID("99")).
			Return(nil, &gateway.TransportError{Op: "get candidate", Status: 404, Message: "Candidate not found"})

		_, err := f.svc.CandidateView(ctx, "99")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestIntakeService_GetCandidateSingleFlight(t *testing.T) {
	f := newFixture(t, false)

	var calls atomic.Int32
	release := make(chan struct{})
	f.gw.On("GetCandidate", mock.Anything, model.ID("5")).
		Run(func(mock.Arguments) {
			calls.Add(1)
			<-release
		}).
		Return(&model.Candidate{ID: "5"}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := f.svc.GetCandidate(context.Background(), "5")
			assert.NoError(t, err)
			assert.Equal(t, model.ID("5"), c.ID)
		}()
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(5))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

func TestIntakeService_GetCandidateCallerCancel(t *testing.T) {
	t.Run("cancelled caller", func(t *testing.T) {
		f := newFixture(t, false)
		f.gw.On("GetCandidate", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), model.ID("5")).
			Return(&model.Candidate{ID: "5"}, nil).Once()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		c, err := f.svc.GetCandidate(ctx, "5")
		require.NoError(t, err)
		assert.Equal(t, model.ID("5"), c.ID)
	})

	t.Run("first caller leaves while others wait", func(t *testing.T) {
		f := newFixture(t, false)

		started := make(chan struct{})
		release := make(chan struct{})
		var startOnce sync.Once
		var fetchErr atomic.Value
		f.gw.On("GetCandidate", mock.Anything, model.ID("5")).
			Run(func(args mock.Arguments) {
				startOnce.Do(func() { close(started) })
				<-release
				if err := args.Get(0).(context.Context).Err(); err != nil {
					fetchErr.Store(err)
				}
			}).
			Return(&model.Candidate{ID: "5"}, nil)

		first, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = f.svc.GetCandidate(first, "5")
		}()
		<-started

		var (
			wg  sync.WaitGroup
			got *model.Candidate
			err error
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err = f.svc.GetCandidate(context.Background(), "5")
		}()

		cancel()
		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()
		<-done

		require.NoError(t, err)
		assert.Equal(t, model.ID("5"), got.ID)
		assert.Nil(t, fetchErr.Load())
		f.gw.AssertExpectations(t)
	})
}

func TestIntakeService_RemoveDocument(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)

	_, err := f.reg.Append(ctx, "3", model.Document{ID: "submitted_1", Name: "pan.png"}, "candidates/3/k.png")
	require.NoError(t, err)

	err = f.svc.RemoveDocument(ctx, "3", "submitted_1", nil)
	assert.ErrorIs(t, err, registry.ErrConfirmationRequired)

	f.store.On("Delete", mock.Anything, "candidates/3/k.png").Return(nil).Once()
	require.NoError(t, f.svc.RemoveDocument(ctx, "3", "submitted_1", registry.Confirmed))

	docs, _ := f.svc.ListDocuments(ctx, "3")
	assert.Empty(t, docs)

	err = f.svc.RemoveDocument(ctx, "3", "submitted_1", registry.Confirmed)
	assert.ErrorIs(t, err, ErrNotFound)

	f.store.AssertExpectations(t)
	f.gw.AssertNotCalled(t, "SubmitDocument", mock.Anything, mock.Anything, mock.Anything)
}

func TestIntakeService_DownloadURL(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)

	_, _ = f.reg.Append(ctx, "3", model.Document{ID: "a", Name: "pan.png"}, "candidates/3/k.png")
	_, _ = f.reg.Append(ctx, "3", model.Document{ID: "b", Name: "id.jpg"}, "")

	f.store.On("PresignGet", mock.Anything, "candidates/3/k.png", time.Minute).Return("https://minio/k.png?sig", nil)

	u, err := f.svc.DownloadURL(ctx, "3", "a")
	require.NoError(t, err)
	assert.Equal(t, "https://minio/k.png?sig", u)

	_, err = f.svc.DownloadURL(ctx, "3", "b")
	assert.ErrorIs(t, err, ErrNotArchived)

	_, err = f.svc.DownloadURL(ctx, "3", "zzz")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIntakeService_RequestDocuments(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newFixture(t, false)
		f.gw.On("RequestDocuments", mock.Anything, model.ID("5")).
			Return(&gateway.DocumentRequestResult{Success: true, Message: "Document request sent successfully", EmailBody: "Dear Jane"}, nil)

		res, err := f.svc.RequestDocuments(ctx, "5")
		require.NoError(t, err)
		assert.Equal(t, "Dear Jane", res.EmailBody)
	})

	t.Run("success false", func(t *testing.T) {
		f := newFixture(t, false)
		f.gw.On("RequestDocuments", mock.Anything, model.ID("5")).
			Return(&gateway.DocumentRequestResult{Success: false, Message: "Email service unavailable"}, nil)

		_, err := f.svc.RequestDocuments(ctx, "5")
		var rerr *RequestError
		require.True(t, errors.As(err, &rerr))
		assert.Equal(t, "Email service unavailable", rerr.Message)
	})

	t.Run("transport error", func(t *testing.T) {
		f := newFixture(t, false)
		f.gw.On("RequestDocuments", mock.Anything, model.ID("5")).
			Return(nil, &gateway.TransportError{Op: "request documents", Status: 500})

		_, err := f.svc.RequestDocuments(ctx, "5")
		var te *gateway.TransportError
		assert.True(t, errors.As(err, &te))
	})
}
