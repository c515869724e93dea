package model

// ClaimDocument holds the typed fields extracted from one claim PDF
type ClaimDocument struct {
	ID           string     `json:"id"`            // Document identity (base filename)
	Path         string     `json:"path"`          // Source path on disk
	IncidentText string     `json:"incident_text"` // FNOL narrative (narrative section)
	ContractText string     `json:"contract_text"` // Policy terms (contract section)
	Images       []ImageRef `json:"images"`        // Extracted incident images, in embedding order
}

// ImageRef identifies one extracted incident image
type ImageRef struct {
	DocumentID    string `json:"document_id"`
	SequenceIndex int    `json:"sequence_index"` // Ordinal within the image section (0-based)
	StoragePath   string `json:"storage_path"`   // Deterministic path in the image store
}

// SectionRoles maps document roles to positional section indices.
// The claim PDFs we receive put the FNOL narrative first, the incident
// photos second and the contract third, but the layout varies by insurer,
// so the mapping is injected rather than hard-coded.
type SectionRoles struct {
	Narrative int `json:"narrative" yaml:"narrative"`
	Images    int `json:"images" yaml:"images"`
	Contract  int `json:"contract" yaml:"contract"`
}

// DefaultSectionRoles returns the standard FNOL/photos/contract layout
func DefaultSectionRoles() SectionRoles {
	return SectionRoles{
		Narrative: 0,
		Images:    1,
		Contract:  2,
	}
}
