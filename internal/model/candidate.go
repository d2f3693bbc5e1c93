package model

// ExtractionStatus is the backend's processing state for a candidate.
type ExtractionStatus string

const (
	ExtractionPending            ExtractionStatus = "Pending"
	ExtractionProcessing         ExtractionStatus = "Processing"
	ExtractionCompleted          ExtractionStatus = "Completed"
	ExtractionVerificationFailed ExtractionStatus = "Verification Failed"
)

// Candidate is the backend's record for one applicant. The client holds it as
// a read-through copy and never edits it; every change is a re-fetch.
type Candidate struct {
	ID                 ID               `json:"id"`
	Name               string           `json:"name"`
	Email              string           `json:"email"`
	Company            string           `json:"company"`
	ExtractionStatus   ExtractionStatus `json:"extractionStatus"`
	UploadDate         Timestamp        `json:"uploadDate"`
	ExtractedData      *ExtractedData   `json:"extractedData,omitempty"`
	Documents          []Document       `json:"documents,omitempty"`
	SubmittedDocuments []Document       `json:"submittedDocuments,omitempty"`
}

// AllDocuments returns the resume documents followed by the submitted
// identity documents.
func (c Candidate) AllDocuments() []Document {
	out := make([]Document, 0, len(c.Documents)+len(c.SubmittedDocuments))
	out = append(out, c.Documents...)
	return append(out, c.SubmittedDocuments...)
}

// ExtractedData holds the fields the backend derived from a resume together
// with a per-field confidence score in [0, 1]. An empty string or nil list
// means the backend extracted nothing for that field.
type ExtractedData struct {
	FullName   string             `json:"fullName,omitempty"`
	Phone      string             `json:"phone,omitempty"`
	Location   string             `json:"location,omitempty"`
	Position   string             `json:"position,omitempty"`
	Experience string             `json:"experience,omitempty"`
	Skills     []string           `json:"skills,omitempty"`
	Degree     string             `json:"degree,omitempty"`
	University string             `json:"university,omitempty"`
	Confidence map[string]float64 `json:"confidence,omitempty"`
}
