package model

import "time"

// RegistryEntry is a document held in a candidate's local registry. ArchiveKey
// is set when the submitted original was stored in object storage.
type RegistryEntry struct {
	CandidateID ID        `json:"candidate_id"`
	Document    Document  `json:"document"`
	ArchiveKey  string    `json:"archive_key,omitempty"`
	Seq         int64     `json:"seq"`
	CreatedAt   time.Time `json:"created_at"`
}

// Removal records a document the operator removed from the registry. It keeps
// the document hidden when the candidate is re-fetched.
type Removal struct {
	CandidateID ID        `json:"candidate_id"`
	DocumentID  ID        `json:"document_id"`
	Name        string    `json:"name"`
	RemovedAt   time.Time `json:"removed_at"`
}
