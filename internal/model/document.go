package model

// DocumentType tags the kind of a submitted document. For identity documents
// the tag is also the multipart field name the backend expects.
type DocumentType string

const (
	DocumentTypeResume      DocumentType = "resume"
	DocumentTypePANCard     DocumentType = "pan_card"
	DocumentTypeAadhaarCard DocumentType = "aadhaar_card"
	DocumentTypeOther       DocumentType = "other"
)

// IdentityDocumentTypes lists the tags an operator may pick for an identity
// document submission.
var IdentityDocumentTypes = []DocumentType{
	DocumentTypePANCard,
	DocumentTypeAadhaarCard,
	DocumentTypeOther,
}

// ParseIdentityDocumentType resolves a tag selected by the operator.
func ParseIdentityDocumentType(s string) (DocumentType, bool) {
	for _, t := range IdentityDocumentTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Verification statuses reported by the backend for a document.
const (
	VerificationUploaded  = "Uploaded"
	VerificationSubmitted = "Submitted"
	VerificationPass      = "Pass"
	VerificationFailed    = "Verification Failed"
)

// Document is one file attached to a candidate, as reported by the backend.
// Status and VerificationStatus may coexist: plain uploads carry only
// Status, identity-verified submissions carry both.
type Document struct {
	ID                 ID        `json:"id"`
	Name               string    `json:"name"`
	Type               string    `json:"type"`
	Size               int64     `json:"size"`
	UploadDate         Timestamp `json:"uploadDate"`
	DocumentType       string    `json:"documentType,omitempty"`
	Status             string    `json:"status,omitempty"`
	VerificationStatus string    `json:"verificationStatus,omitempty"`
	DocumentNumber     string    `json:"documentNumber,omitempty"`
	ExtractedName      string    `json:"extractedName,omitempty"`
	SimilarityScore    *float64  `json:"similarityScore,omitempty"`
	VerificationReason string    `json:"verificationReason,omitempty"`
}
