package models

import (
	"time"
)

// Letter PDF template variants
const (
	TemplateFormal     = "formal"
	TemplateBusiness   = "business"
	TemplatePersonal   = "personal"
	TemplateThankYou   = "thank-you"
	TemplateInvitation = "invitation"
)

// ValidTemplates is the set of accepted letter PDF templates
var ValidTemplates = map[string]bool{
	TemplateFormal:     true,
	TemplateBusiness:   true,
	TemplatePersonal:   true,
	TemplateThankYou:   true,
	TemplateInvitation: true,
}

// ExportRequest is the wire shape accepted by the export endpoint
type ExportRequest struct {
	Format          string   `json:"format" validate:"required,oneof=json csv pdf"`
	DocumentIDs     []string `json:"document_ids,omitempty" validate:"max=500"`
	IncludeContent  *bool    `json:"include_content,omitempty"`  // Default true
	IncludeMetadata *bool    `json:"include_metadata,omitempty"` // Default true
	Template        string   `json:"template,omitempty" validate:"omitempty,oneof=formal business personal thank-you invitation"`
}

// GeneratorOptions controls output generation
type GeneratorOptions struct {
	IncludeMetadata bool
	Template        string // Letter PDF template; empty selects formal
}

// ExportJob is the ephemeral state of one export request. It exists only for
// the duration of the request; the resulting archive is what gets persisted.
type ExportJob struct {
	OwnerID string
	Format  string
	Records []*Document
	Options GeneratorOptions
}

// ExportArchive holds a generated export kept for download until it expires
type ExportArchive struct {
	ID        string    `json:"id"` // exp_<uuid>
	OwnerID   string    `json:"owner_id"`
	Format    string    `json:"format"`
	FileName  string    `json:"file_name"`
	Bytes     []byte    `json:"-"`
	Checksum  string    `json:"checksum"` // SHA-256
	SizeBytes int64     `json:"size_bytes"`
	ItemCount int       `json:"item_count"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the archive is past its retention window
func (a *ExportArchive) Expired(now time.Time) bool {
	return now.After(a.ExpiresAt)
}

// ExportMetadata describes a completed export in the response payload
type ExportMetadata struct {
	Count     int       `json:"count"`
	Format    string    `json:"format"`
	FileSize  int64     `json:"file_size"`
	Timestamp time.Time `json:"timestamp"`
}

// ExportResponse is the wire shape returned by the export endpoint
type ExportResponse struct {
	Success     bool           `json:"success"`
	DownloadURL string         `json:"download_url"`
	Metadata    ExportMetadata `json:"metadata"`
}

// ContentTypeForFormat returns the MIME type served for a given export format
func ContentTypeForFormat(format string) string {
	switch format {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
