package models

// Supported import/export formats
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatTXT  = "txt"
	FormatPDF  = "pdf"
)

// ImportOptions controls batch import behavior. SkipDuplicates and
// UpdateExisting are mutually exclusive in effect: when both are set,
// UpdateExisting wins for matched duplicates. This is policy, not accident.
type ImportOptions struct {
	SkipDuplicates bool     `json:"skip_duplicates"` // Default true
	UpdateExisting bool     `json:"update_existing"` // Default false
	Category       string   `json:"category,omitempty"`
	Tags           []string `json:"tags,omitempty"`
}

// DefaultImportOptions returns the option defaults for an import request
func DefaultImportOptions() ImportOptions {
	return ImportOptions{
		SkipDuplicates: true,
		UpdateExisting: false,
	}
}

// ParseLimits caps what a single uploaded file may produce
type ParseLimits struct {
	MaxDocuments    int
	MaxContentChars int
}

// ParseResult holds the candidate records extracted from one uploaded file.
// Errors collects record-level problems and truncation notes; a non-empty
// Errors slice does not make the parse itself a failure.
type ParseResult struct {
	Records []*Document
	Errors  []string
}

// SkippedRecord pairs an import candidate with the reason it was not written
type SkippedRecord struct {
	Record *Document `json:"record"`
	Reason string    `json:"reason"`
}

// FailedRecord pairs an import candidate with the error that rejected it
type FailedRecord struct {
	Record *Document `json:"record"`
	Error  string    `json:"error"`
}

// ImportResult aggregates per-record outcomes for one batch. Every candidate
// lands in exactly one of Successful, Skipped, or Failed.
type ImportResult struct {
	Successful     []*Document     `json:"successful"`
	Skipped        []SkippedRecord `json:"skipped"`
	Failed         []FailedRecord  `json:"failed"`
	TotalProcessed int             `json:"total_processed"`
}

// ImportResponse is the wire shape returned by the import endpoint
type ImportResponse struct {
	Success   bool        `json:"success"`
	Imported  int         `json:"imported"`
	Skipped   int         `json:"skipped"`
	Errors    []string    `json:"errors"`
	Documents []*Document `json:"documents"`
}
