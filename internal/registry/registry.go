// Package registry keeps the per-candidate ordered list of submitted
// documents and resolves how each one is displayed.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"

	"docintake/internal/logging"
	"docintake/internal/model"
	"docintake/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrNotFound             = errors.New("document not found in registry")
	ErrConfirmationRequired = errors.New("document removal not confirmed")
)

// localIDPrefix marks entries appended before the backend assigned an id.
const localIDPrefix = "local_"

// Confirmer is asked before a document is removed.
type Confirmer interface {
	Confirm(ctx context.Context, e model.RegistryEntry) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, e model.RegistryEntry) bool

func (f ConfirmFunc) Confirm(ctx context.Context, e model.RegistryEntry) bool { return f(ctx, e) }

// Confirmed approves every removal. Use when the operator already confirmed.
var Confirmed = ConfirmFunc(func(context.Context, model.RegistryEntry) bool { return true })

// Registry orders and filters documents on top of an EntryRepository.
type Registry struct {
	repo repository.EntryRepository
	log  *slog.Logger

	// Sync reads removals and rewrites the list; removals must not
	// interleave with it.
	mu sync.Mutex
}

// New returns a Registry over repo.
func New(repo repository.EntryRepository, log *slog.Logger) *Registry {
	if log == nil {
		log = logging.New("registry")
	}
	return &Registry{repo: repo, log: log}
}

// Append adds doc to the end of a candidate's list. Documents without an id
// receive a local one.
func (r *Registry) Append(ctx context.Context, candidateID model.ID, doc model.Document, archiveKey string) (*model.RegistryEntry, error) {
	if doc.ID == "" {
		doc.ID = model.ID(localIDPrefix + uuid.NewString())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.repo.Append(ctx, &model.RegistryEntry{
		CandidateID: candidateID,
		Document:    doc,
		ArchiveKey:  archiveKey,
	})
	if err != nil {
		return nil, fmt.Errorf("append registry entry: %w", err)
	}
	r.log.Info("registry_append", "candidate_id", candidateID, "document_id", e.Document.ID, "archived", archiveKey != "")
	return e, nil
}

// List returns a candidate's documents in insertion order, most recent last.
func (r *Registry) List(ctx context.Context, candidateID model.ID) ([]model.RegistryEntry, error) {
	entries, err := r.repo.List(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("list registry entries: %w", err)
	}
	return entries, nil
}

// Get returns one entry.
func (r *Registry) Get(ctx context.Context, candidateID, documentID model.ID) (*model.RegistryEntry, error) {
	e, err := r.repo.Find(ctx, candidateID, documentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find registry entry: %w", err)
	}
	return e, nil
}

// Remove hides a document from the candidate's list once confirm approves.
// Nothing is sent to the backend; the removal outlives later Syncs.
func (r *Registry) Remove(ctx context.Context, candidateID, documentID model.ID, confirm Confirmer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.repo.Find(ctx, candidateID, documentID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("find registry entry: %w", err)
	}

	if confirm == nil || !confirm.Confirm(ctx, *e) {
		return ErrConfirmationRequired
	}

	if err := r.repo.AddRemoval(ctx, model.Removal{
		CandidateID: candidateID,
		DocumentID:  documentID,
		Name:        e.Document.Name,
	}); err != nil {
		return fmt.Errorf("record removal: %w", err)
	}
	if err := r.repo.Delete(ctx, candidateID, documentID); err != nil {
		return fmt.Errorf("delete registry entry: %w", err)
	}

	r.log.Info("registry_remove", "candidate_id", candidateID, "document_id", documentID)
	return nil
}

// Sync rebuilds a candidate's list from a freshly fetched record. Backend
// documents come first in their reported order. Removed documents stay
// hidden by id, or by file name when they were removed before the backend
// assigned an id. Archive keys carry over by id or file name, and local entries the
// backend does not report yet are kept at the end.
func (r *Registry) Sync(ctx context.Context, c model.Candidate) ([]model.RegistryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removals, err := r.repo.Removals(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("list removals: %w", err)
	}
	existing, err := r.repo.List(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("list registry entries: %w", err)
	}

	hidden := make(map[string]struct{}, 2*len(removals))
	for _, rm := range removals {
		hidden["id:"+rm.DocumentID.String()] = struct{}{}
		// A local entry has no backend id yet, so its file name is the only
		// link to the record the backend later reports for it.
		if rm.Name != "" && strings.HasPrefix(rm.DocumentID.String(), localIDPrefix) {
			hidden["name:"+rm.Name] = struct{}{}
		}
	}
	isHidden := func(d model.Document) bool {
		if _, ok := hidden["id:"+d.ID.String()]; ok {
			return true
		}
		_, ok := hidden["name:"+d.Name]
		return ok && d.Name != ""
	}

	archive := make(map[string]string, len(existing))
	for _, e := range existing {
		if e.ArchiveKey == "" {
			continue
		}
		archive["id:"+e.Document.ID.String()] = e.ArchiveKey
		if e.Document.Name != "" {
			archive["name:"+e.Document.Name] = e.ArchiveKey
		}
	}

	seen := make(map[model.ID]struct{})
	names := make(map[string]struct{})
	next := make([]model.RegistryEntry, 0, len(existing))
	for _, d := range c.AllDocuments() {
		if d.ID == "" || isHidden(d) {
			continue
		}
		if _, dup := seen[d.ID]; dup {
			continue
		}
		seen[d.ID] = struct{}{}
		if d.Name != "" {
			names[d.Name] = struct{}{}
		}

		key := archive["id:"+d.ID.String()]
		if key == "" && d.Name != "" {
			key = archive["name:"+d.Name]
		}
		next = append(next, model.RegistryEntry{CandidateID: c.ID, Document: d, ArchiveKey: key})
	}
	for _, e := range existing {
		if !strings.HasPrefix(e.Document.ID.String(), localIDPrefix) {
			continue
		}
		if _, reported := names[e.Document.Name]; reported || isHidden(e.Document) {
			continue
		}
		next = append(next, e)
	}

	if err := r.repo.Replace(ctx, c.ID, next); err != nil {
		return nil, fmt.Errorf("replace registry entries: %w", err)
	}
	r.log.Debug("registry_sync", "candidate_id", c.ID, "documents", len(next), "hidden", len(removals))

	return r.repo.List(ctx, c.ID)
}

// DisplayStatus is the badge text for d: VerificationStatus, then Status,
// then "Uploaded".
func DisplayStatus(d model.Document) string {
	if s := strings.TrimSpace(d.VerificationStatus); s != "" {
		return s
	}
	if s := strings.TrimSpace(d.Status); s != "" {
		return s
	}
	return model.VerificationUploaded
}

// MatchPercent renders the similarity score as a whole percent.
func MatchPercent(d model.Document) (int, bool) {
	if d.SimilarityScore == nil {
		return 0, false
	}
	return int(math.Round(*d.SimilarityScore * 100)), true
}

// View is a registry entry resolved for display.
type View struct {
	model.Document
	DisplayStatus string `json:"displayStatus"`
	MatchPercent  *int   `json:"matchPercent,omitempty"`
	Archived      bool   `json:"archived"`
}

// Present resolves entries for display, preserving order.
func Present(entries []model.RegistryEntry) []View {
	out := make([]View, 0, len(entries))
	for _, e := range entries {
		v := View{
			Document:      e.Document,
			DisplayStatus: DisplayStatus(e.Document),
			Archived:      e.ArchiveKey != "",
		}
		if p, ok := MatchPercent(e.Document); ok {
			v.MatchPercent = &p
		}
		out = append(out, v)
	}
	return out
}
