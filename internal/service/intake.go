package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"docintake/internal/config"
	"docintake/internal/gateway"
	"docintake/internal/logging"
	"docintake/internal/model"
	"docintake/internal/reconcile"
	"docintake/internal/registry"
	"docintake/internal/session"
	"docintake/internal/storage"
	"docintake/internal/validation"
)

var (
	ErrIDRequired          = errors.New("candidate id is required")
	ErrNotFound            = errors.New("not found")
	ErrInvalidDocumentType = errors.New("document type must be one of pan_card, aadhaar_card, other")
	ErrNotArchived         = errors.New("document original is not archived")
)

// RequestError is a document request the backend answered with success=false.
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string { return "document request rejected: " + e.Message }

// ResumeSlot is the single upload slot for resumes.
const ResumeSlot = "resume"

// DocumentSlot is the upload slot for one candidate's document type.
func DocumentSlot(candidateID model.ID, t model.DocumentType) string {
	return fmt.Sprintf("document:%s:%s", candidateID, t)
}

// Upload is a file handed over by the operator.
type Upload struct {
	FileName  string
	MediaType string
	Content   []byte
}

func (u Upload) file() validation.File {
	return validation.File{Name: u.FileName, MediaType: u.MediaType, Size: int64(len(u.Content))}
}

// ResumeOutcome is a finished resume session.
type ResumeOutcome struct {
	Session     session.Snapshot        `json:"session"`
	Message     string                  `json:"message"`
	CandidateID model.ID                `json:"candidate_id"`
	Display     *reconcile.DisplayModel `json:"display,omitempty"`
}

// DocumentOutcome is a finished identity document session.
type DocumentOutcome struct {
	Session       session.Snapshot       `json:"session"`
	Message       string                 `json:"message"`
	OverallStatus model.ExtractionStatus `json:"overall_status,omitempty"`
	Submitted     []registry.View        `json:"submitted"`
	Documents     []registry.View        `json:"documents"`
}

// CandidateView is a candidate with its resolved display fields and documents.
type CandidateView struct {
	Candidate model.Candidate        `json:"candidate"`
	Display   reconcile.DisplayModel `json:"display"`
	Documents []registry.View        `json:"documents"`
}

// IntakeService runs the intake pipeline against the backend.
type IntakeService interface {
	// UploadResume validates and submits a resume, then re-fetches the
	// candidate list.
	UploadResume(ctx context.Context, u Upload) (*ResumeOutcome, error)

	// UploadDocument validates and submits an identity document for a
	// candidate, records the result in the registry and re-fetches the
	// candidate.
	UploadDocument(ctx context.Context, candidateID model.ID, docType string, u Upload) (*DocumentOutcome, error)

	// ListCandidates never fails: a backend error yields an empty list.
	ListCandidates(ctx context.Context) []model.Candidate

	GetCandidate(ctx context.Context, id model.ID) (*model.Candidate, error)
	CandidateView(ctx context.Context, id model.ID) (*CandidateView, error)
	ListDocuments(ctx context.Context, id model.ID) ([]registry.View, error)

	// RemoveDocument is local only and requires confirm to approve.
	RemoveDocument(ctx context.Context, candidateID, documentID model.ID, confirm registry.Confirmer) error

	DownloadURL(ctx context.Context, candidateID, documentID model.ID) (string, error)
	OpenDocument(ctx context.Context, candidateID, documentID model.ID) (io.ReadCloser, storage.ObjectInfo, error)

	// RequestDocuments asks the backend to email the candidate. A response
	// with success=false is returned as *RequestError.
	RequestDocuments(ctx context.Context, candidateID model.ID) (*gateway.DocumentRequestResult, error)

	Session(slot string) (session.Snapshot, bool)
}

type intakeService struct {
	gw       gateway.Gateway
	registry *registry.Registry
	archive  *storage.Archive
	sessions *session.Controller
	maxBytes int64
	log      *slog.Logger
	fetches  singleflight.Group
}

// NewIntakeService wires the pipeline. archive may be disabled.
func NewIntakeService(gw gateway.Gateway, reg *registry.Registry, archive *storage.Archive,
	sessions *session.Controller, cfg config.UploadConfig, log *slog.Logger) IntakeService {
	if log == nil {
		log = logging.New("service")
	}
	return &intakeService{
		gw:       gw,
		registry: reg,
		archive:  archive,
		sessions: sessions,
		maxBytes: cfg.MaxBytes(),
		log:      log,
	}
}

func (s *intakeService) UploadResume(ctx context.Context, u Upload) (*ResumeOutcome, error) {
	var refreshed *model.Candidate

	out, err := session.Run(ctx, s.sessions, session.Request[*gateway.ResumeResult]{
		Slot:    ResumeSlot,
		Kind:    string(model.DocumentTypeResume),
		Field:   string(model.DocumentTypeResume),
		File:    u.file(),
		Content: u.Content,
		Profile: validation.ResumeProfile.WithMaxBytes(s.maxBytes),
		Submit:  s.gw.SubmitResume,
		OnSuccess: func(ctx context.Context, res *gateway.ResumeResult) error {
			s.ListCandidates(ctx)
			if res.CandidateID == "" {
				return nil
			}
			c, err := s.GetCandidate(ctx, res.CandidateID)
			if err != nil {
				return err
			}
			refreshed = c
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	res := out.Result
	c := res.Candidate()
	if refreshed != nil {
		c = *refreshed
	}
	display := reconcile.Present(c)

	return &ResumeOutcome{
		Session:     out.Snapshot,
		Message:     res.Message,
		CandidateID: res.CandidateID,
		Display:     &display,
	}, nil
}

func (s *intakeService) UploadDocument(ctx context.Context, candidateID model.ID, docType string, u Upload) (*DocumentOutcome, error) {
	if candidateID == "" {
		return nil, ErrIDRequired
	}
	t, ok := model.ParseIdentityDocumentType(docType)
	if !ok {
		return nil, ErrInvalidDocumentType
	}

	var submitted []registry.View

	out, err := session.Run(ctx, s.sessions, session.Request[*gateway.DocumentResult]{
		Slot:    DocumentSlot(candidateID, t),
		Kind:    string(t),
		Field:   string(t),
		File:    u.file(),
		Content: u.Content,
		Profile: validation.DocumentProfile.WithMaxBytes(s.maxBytes),
		Submit: func(ctx context.Context, p gateway.Payload) (*gateway.DocumentResult, error) {
			return s.gw.SubmitDocument(ctx, candidateID, p)
		},
		OnSuccess: func(ctx context.Context, res *gateway.DocumentResult) error {
			key := s.archiveOriginal(ctx, candidateID, u)
			for _, d := range res.Documents {
				if d.DocumentType == "" {
					d.DocumentType = string(t)
				}
				e, err := s.registry.Append(ctx, candidateID, d, key)
				if err != nil {
					return err
				}
				submitted = append(submitted, registry.Present([]model.RegistryEntry{*e})...)
			}
			_, err := s.refresh(ctx, candidateID)
			return err
		},
	})
	if err != nil {
		return nil, err
	}

	entries, err := s.registry.List(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	return &DocumentOutcome{
		Session:       out.Snapshot,
		Message:       out.Result.Message,
		OverallStatus: out.Result.OverallStatus,
		Submitted:     submitted,
		Documents:     registry.Present(entries),
	}, nil
}

// archiveOriginal stores the submitted bytes when an archive is configured.
// Failures are logged; the submission already succeeded.
func (s *intakeService) archiveOriginal(ctx context.Context, candidateID model.ID, u Upload) string {
	if !s.archive.Enabled() {
		return ""
	}
	info, err := s.archive.Store(ctx, candidateID, u.FileName, u.MediaType, u.Content)
	if err != nil {
		s.log.Warn("archive_failed", "candidate_id", candidateID, "file", u.FileName, "error", err)
		return ""
	}
	return info.Key
}

func (s *intakeService) ListCandidates(ctx context.Context) []model.Candidate {
	list, err := s.gw.ListCandidates(ctx)
	if err != nil {
		s.log.Warn("list_candidates_failed", "error", err)
		return []model.Candidate{}
	}
	if list == nil {
		return []model.Candidate{}
	}
	return list
}

// GetCandidate fetches a candidate; concurrent calls for the same id share
// one backend request. The shared request ignores the first caller's
// cancellation and is bounded by the gateway timeout instead.
func (s *intakeService) GetCandidate(ctx context.Context, id model.ID) (*model.Candidate, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.fetches.Do(id.String(), func() (any, error) {
		return s.gw.GetCandidate(shared, id)
	})
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return nil, fmt.Errorf("candidate %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	c := *v.(*model.Candidate)
	return &c, nil
}

// refresh re-fetches a candidate and reconciles its registry.
func (s *intakeService) refresh(ctx context.Context, id model.ID) (*model.Candidate, error) {
	c, err := s.GetCandidate(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.registry.Sync(ctx, *c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *intakeService) CandidateView(ctx context.Context, id model.ID) (*CandidateView, error) {
	c, err := s.refresh(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, err := s.registry.List(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CandidateView{
		Candidate: *c,
		Display:   reconcile.Present(*c),
		Documents: registry.Present(entries),
	}, nil
}

func (s *intakeService) ListDocuments(ctx context.Context, id model.ID) ([]registry.View, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	entries, err := s.registry.List(ctx, id)
	if err != nil {
		return nil, err
	}
	return registry.Present(entries), nil
}

func (s *intakeService) RemoveDocument(ctx context.Context, candidateID, documentID model.ID, confirm registry.Confirmer) error {
	e, err := s.entry(ctx, candidateID, documentID)
	if err != nil {
		return err
	}
	if err := s.registry.Remove(ctx, candidateID, documentID, confirm); err != nil {
		return err
	}
	if e.ArchiveKey != "" && s.archive.Enabled() {
		if err := s.archive.Discard(ctx, e.ArchiveKey); err != nil {
			s.log.Warn("archive_discard_failed", "candidate_id", candidateID, "key", e.ArchiveKey, "error", err)
		}
	}
	return nil
}

func (s *intakeService) entry(ctx context.Context, candidateID, documentID model.ID) (*model.RegistryEntry, error) {
	if candidateID == "" {
		return nil, ErrIDRequired
	}
	e, err := s.registry.Get(ctx, candidateID, documentID)
	if errors.Is(err, registry.ErrNotFound) {
		return nil, fmt.Errorf("document %s: %w", documentID, ErrNotFound)
	}
	return e, err
}

func (s *intakeService) archived(ctx context.Context, candidateID, documentID model.ID) (string, error) {
	e, err := s.entry(ctx, candidateID, documentID)
	if err != nil {
		return "", err
	}
	if e.ArchiveKey == "" || !s.archive.Enabled() {
		return "", ErrNotArchived
	}
	return e.ArchiveKey, nil
}

func (s *intakeService) DownloadURL(ctx context.Context, candidateID, documentID model.ID) (string, error) {
	key, err := s.archived(ctx, candidateID, documentID)
	if err != nil {
		return "", err
	}
	return s.archive.DownloadURL(ctx, key)
}

func (s *intakeService) OpenDocument(ctx context.Context, candidateID, documentID model.ID) (io.ReadCloser, storage.ObjectInfo, error) {
	key, err := s.archived(ctx, candidateID, documentID)
	if err != nil {
		return nil, storage.ObjectInfo{}, err
	}
	return s.archive.Open(ctx, key)
}

func (s *intakeService) RequestDocuments(ctx context.Context, candidateID model.ID) (*gateway.DocumentRequestResult, error) {
	if candidateID == "" {
		return nil, ErrIDRequired
	}
	res, err := s.gw.RequestDocuments(ctx, candidateID)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return nil, fmt.Errorf("candidate %s: %w", candidateID, ErrNotFound)
		}
		return nil, err
	}
	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = "document request failed"
		}
		return nil, &RequestError{Message: msg}
	}
	s.log.Info("documents_requested", "candidate_id", candidateID)
	return res, nil
}

func (s *intakeService) Session(slot string) (session.Snapshot, bool) {
	return s.sessions.Snapshot(slot)
}
