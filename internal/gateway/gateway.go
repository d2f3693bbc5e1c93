// Package gateway is the client side of the remote candidate backend. The
// backend owns extraction and verification; this package only speaks its
// contract.
package gateway

import (
	"context"

	"docintake/internal/model"
)

// Payload is an encoded request body, typically multipart/form-data.
type Payload struct {
	ContentType string
	Body        []byte
}

// Gateway is the backend contract consumed by the intake pipeline.
type Gateway interface {
	// ListCandidates returns candidate summaries in backend order.
	ListCandidates(ctx context.Context) ([]model.Candidate, error)

	// GetCandidate returns one candidate with extracted data and documents.
	GetCandidate(ctx context.Context, id model.ID) (*model.Candidate, error)

	// SubmitResume uploads a resume payload and returns the created candidate.
	SubmitResume(ctx context.Context, p Payload) (*ResumeResult, error)

	// SubmitDocument uploads an identity document for a candidate and returns
	// the verification outcome.
	SubmitDocument(ctx context.Context, candidateID model.ID, p Payload) (*DocumentResult, error)

	// RequestDocuments asks the backend to email the candidate for more documents.
	RequestDocuments(ctx context.Context, candidateID model.ID) (*DocumentRequestResult, error)
}

// ResumeResult is the backend's answer to a resume submission.
type ResumeResult struct {
	Message     string           `json:"message"`
	CandidateID model.ID         `json:"candidate_id"`
	Data        ResumeExtraction `json:"data"`
}

// ResumeExtraction is the raw extraction returned with a resume submission.
type ResumeExtraction struct {
	Name        string             `json:"name"`
	Email       string             `json:"email"`
	Phone       string             `json:"phone"`
	Company     string             `json:"company"`
	Designation string             `json:"designation"`
	Location    string             `json:"location"`
	Experience  string             `json:"experience"`
	Degree      string             `json:"degree"`
	University  string             `json:"university"`
	Skills      []string           `json:"skills"`
	Confidence  map[string]float64 `json:"confidence"`
}

// Candidate projects the submission result onto a candidate summary.
func (r ResumeResult) Candidate() model.Candidate {
	d := r.Data
	return model.Candidate{
		ID:               r.CandidateID,
		Name:             d.Name,
		Email:            d.Email,
		Company:          d.Company,
		ExtractionStatus: model.ExtractionProcessing,
		ExtractedData: &model.ExtractedData{
			FullName:   d.Name,
			Phone:      d.Phone,
			Location:   d.Location,
			Position:   d.Designation,
			Experience: d.Experience,
			Skills:     d.Skills,
			Degree:     d.Degree,
			University: d.University,
			Confidence: d.Confidence,
		},
	}
}

// DocumentResult is the backend's answer to an identity document submission.
type DocumentResult struct {
	Message       string                 `json:"message"`
	Documents     []model.Document       `json:"documents"`
	OverallStatus model.ExtractionStatus `json:"overall_status,omitempty"`
}

// DocumentRequestResult carries the generated email body.
type DocumentRequestResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	EmailBody string `json:"email_body"`
}
