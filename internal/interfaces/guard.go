package interfaces

import (
	"github.com/ternarybob/scribe/internal/models"
)

// GuardService performs the pre-flight checks every pipeline request passes
// through: payload structure validation and per-caller rate limiting.
type GuardService interface {
	// AllowRequest consumes one rate-limit token for the caller. Fails with
	// models.RateLimitError when the caller's budget is exhausted.
	AllowRequest(callerID string) error

	// CheckBodySize rejects bodies whose declared or observed size exceeds
	// the import ceiling, with models.PayloadTooLargeError.
	CheckBodySize(size int64) error

	// ValidateExportRequest checks an export request's structure and
	// enumerated values. Fails with models.ValidationError.
	ValidateExportRequest(req *models.ExportRequest) error

	// ValidateImportFormat checks that the uploaded file format is one the
	// parser set supports.
	ValidateImportFormat(format string) error
}
