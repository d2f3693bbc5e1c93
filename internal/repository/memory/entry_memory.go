// Package memory is an in-process EntryRepository used when no database is
// configured.
package memory

import (
	"context"
	"sync"
	"time"

	"docintake/internal/model"
	"docintake/internal/repository"
)

// EntryMemory keeps registry entries in maps guarded by a mutex.
type EntryMemory struct {
	mu       sync.RWMutex
	seq      int64
	entries  map[model.ID][]model.RegistryEntry
	removals map[model.ID][]model.Removal
	now      func() time.Time
}

// NewEntryMemory creates an empty store.
func NewEntryMemory() *EntryMemory {
	return &EntryMemory{
		entries:  make(map[model.ID][]model.RegistryEntry),
		removals: make(map[model.ID][]model.Removal),
		now:      time.Now,
	}
}

var _ repository.EntryRepository = (*EntryMemory)(nil)

func (m *EntryMemory) Append(_ context.Context, e *model.RegistryEntry) (*model.RegistryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.entries[e.CandidateID]
	for i := range list {
		if list[i].Document.ID == e.Document.ID {
			list[i].Document = e.Document
			if e.ArchiveKey != "" {
				list[i].ArchiveKey = e.ArchiveKey
			}
			out := list[i]
			return &out, nil
		}
	}

	out := *e
	m.seq++
	out.Seq = m.seq
	out.CreatedAt = m.now().UTC()
	m.entries[e.CandidateID] = append(list, out)
	return &out, nil
}

func (m *EntryMemory) List(_ context.Context, candidateID model.ID) ([]model.RegistryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.RegistryEntry{}, m.entries[candidateID]...), nil
}

func (m *EntryMemory) Find(_ context.Context, candidateID, documentID model.ID) (*model.RegistryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries[candidateID] {
		if e.Document.ID == documentID {
			out := e
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *EntryMemory) Replace(_ context.Context, candidateID model.ID, entries []model.RegistryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	list := make([]model.RegistryEntry, 0, len(entries))
	for _, e := range entries {
		m.seq++
		e.CandidateID = candidateID
		e.Seq = m.seq
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
		list = append(list, e)
	}
	m.entries[candidateID] = list
	return nil
}

func (m *EntryMemory) Delete(_ context.Context, candidateID, documentID model.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.entries[candidateID]
	for i := range list {
		if list[i].Document.ID == documentID {
			m.entries[candidateID] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	return nil
}

func (m *EntryMemory) AddRemoval(_ context.Context, r model.Removal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.removals[r.CandidateID] {
		if existing.DocumentID == r.DocumentID {
			return nil
		}
	}
	if r.RemovedAt.IsZero() {
		r.RemovedAt = m.now().UTC()
	}
	m.removals[r.CandidateID] = append(m.removals[r.CandidateID], r)
	return nil
}

func (m *EntryMemory) Removals(_ context.Context, candidateID model.ID) ([]model.Removal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Removal{}, m.removals[candidateID]...), nil
}
