package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"docintake/internal/model"
	"docintake/internal/repository"
)

// EntryPostgres is a PostgreSQL implementation of repository.EntryRepository.
// Documents are stored as JSONB exactly as the backend reported them.
type EntryPostgres struct {
	db *sql.DB
}

// NewEntryPostgres creates a new EntryPostgres repository.
func NewEntryPostgres(db *sql.DB) *EntryPostgres {
	return &EntryPostgres{db: db}
}

var _ repository.EntryRepository = (*EntryPostgres)(nil)

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*model.RegistryEntry, error) {
	var (
		e   model.RegistryEntry
		raw []byte
	)
	if err := s.Scan(&e.Seq, &e.CandidateID, &raw, &e.ArchiveKey, &e.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &e.Document); err != nil {
		return nil, fmt.Errorf("decode registry document: %w", err)
	}
	return &e, nil
}

// Append upserts an entry keyed by candidate and document id.
func (r *EntryPostgres) Append(ctx context.Context, e *model.RegistryEntry) (*model.RegistryEntry, error) {
	const q = `
		INSERT INTO registry_entries (candidate_id, document_id, document, archive_key)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (candidate_id, document_id) DO UPDATE
		SET document = EXCLUDED.document,
		    archive_key = COALESCE(NULLIF(EXCLUDED.archive_key, ''), registry_entries.archive_key)
		RETURNING seq, candidate_id, document, archive_key, created_at
	`
	doc, err := json.Marshal(e.Document)
	if err != nil {
		return nil, fmt.Errorf("encode registry document: %w", err)
	}

	row := r.db.QueryRowContext(ctx, q, e.CandidateID.String(), e.Document.ID.String(), doc, e.ArchiveKey)
	return scanEntry(row)
}

// List returns a candidate's entries ordered by insertion.
func (r *EntryPostgres) List(ctx context.Context, candidateID model.ID) ([]model.RegistryEntry, error) {
	const q = `
		SELECT seq, candidate_id, document, archive_key, created_at
		FROM registry_entries
		WHERE candidate_id = $1
		ORDER BY seq ASC
	`
	rows, err := r.db.QueryContext(ctx, q, candidateID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.RegistryEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Find fetches a single entry.
func (r *EntryPostgres) Find(ctx context.Context, candidateID, documentID model.ID) (*model.RegistryEntry, error) {
	const q = `
		SELECT seq, candidate_id, document, archive_key, created_at
		FROM registry_entries
		WHERE candidate_id = $1 AND document_id = $2
	`
	e, err := scanEntry(r.db.QueryRowContext(ctx, q, candidateID.String(), documentID.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return e, err
}

// Replace rewrites a candidate's entries inside one transaction.
func (r *EntryPostgres) Replace(ctx context.Context, candidateID model.ID, entries []model.RegistryEntry) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM registry_entries WHERE candidate_id = $1`, candidateID.String()); err != nil {
		return err
	}

	const ins = `
		INSERT INTO registry_entries (candidate_id, document_id, document, archive_key)
		VALUES ($1, $2, $3, $4)
	`
	for _, e := range entries {
		doc, mErr := json.Marshal(e.Document)
		if mErr != nil {
			err = fmt.Errorf("encode registry document: %w", mErr)
			return err
		}
		if _, err = tx.ExecContext(ctx, ins, candidateID.String(), e.Document.ID.String(), doc, e.ArchiveKey); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Delete removes an entry. A missing row is not an error.
func (r *EntryPostgres) Delete(ctx context.Context, candidateID, documentID model.ID) error {
	const q = `DELETE FROM registry_entries WHERE candidate_id = $1 AND document_id = $2`
	_, err := r.db.ExecContext(ctx, q, candidateID.String(), documentID.String())
	return err
}

// AddRemoval records a removal, ignoring duplicates.
func (r *EntryPostgres) AddRemoval(ctx context.Context, rm model.Removal) error {
	const q = `
		INSERT INTO registry_removals (candidate_id, document_id, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (candidate_id, document_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, q, rm.CandidateID.String(), rm.DocumentID.String(), rm.Name)
	return err
}

// Removals lists a candidate's removals.
func (r *EntryPostgres) Removals(ctx context.Context, candidateID model.ID) ([]model.Removal, error) {
	const q = `
		SELECT candidate_id, document_id, name, removed_at
		FROM registry_removals
		WHERE candidate_id = $1
		ORDER BY removed_at ASC
	`
	rows, err := r.db.QueryContext(ctx, q, candidateID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Removal, 0)
	for rows.Next() {
		var rm model.Removal
		if err := rows.Scan(&rm.CandidateID, &rm.DocumentID, &rm.Name, &rm.RemovedAt); err != nil {
			return nil, err
		}
		items = append(items, rm)
	}
	return items, rows.Err()
}
