package guard

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scribe/internal/common"
	"github.com/ternarybob/scribe/internal/interfaces"
	"github.com/ternarybob/scribe/internal/models"
)

// rateWindow is the span of the sliding rate-limit window
const rateWindow = time.Minute

// importFormats are the upload formats the parser set accepts
var importFormats = map[string]bool{
	models.FormatJSON: true,
	models.FormatCSV:  true,
	models.FormatTXT:  true,
}

// Service validates incoming pipeline requests and enforces the per-caller
// rate limit. Limiting is a sliding 60-second window: each caller keeps the
// timestamps of its admitted requests, and a request is rejected while the
// window already holds the full budget. One instance is shared across
// handlers; caller entries shrink as their timestamps age out.
type Service struct {
	validate     *validator.Validate
	maxBodyBytes int64
	perWindow    int

	mu      sync.Mutex
	callers map[string][]time.Time

	// now is replaceable in tests
	now func() time.Time

	logger arbor.ILogger
}

var _ interfaces.GuardService = (*Service)(nil)

// NewService creates a guard service from the import configuration
func NewService(cfg *common.ImportConfig, logger arbor.ILogger) *Service {
	return &Service{
		validate:     validator.New(),
		maxBodyBytes: cfg.MaxBodyBytes,
		perWindow:    cfg.RequestsPerMinute,
		callers:      make(map[string][]time.Time),
		now:          time.Now,
		logger:       logger,
	}
}

// AllowRequest admits the request if the caller's sliding window has budget
// left, recording its timestamp. Once the window holds the full budget,
// requests are rejected until the oldest admitted timestamp ages out.
func (s *Service) AllowRequest(callerID string) error {
	now := s.now()
	cutoff := now.Add(-rateWindow)

	s.mu.Lock()
	defer s.mu.Unlock()

	stamps := s.callers[callerID]
	kept := stamps[:0]
	for _, ts := range stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= s.perWindow {
		s.callers[callerID] = kept
		retry := kept[0].Add(rateWindow).Sub(now)
		if retry < time.Second {
			retry = time.Second
		}

		s.logger.Warn().
			Str("caller_id", callerID).
			Int("window_count", len(kept)).
			Msg("Rate limit exceeded")
		return &models.RateLimitError{RetryAfter: retry.Round(time.Second)}
	}

	s.callers[callerID] = append(kept, now)
	return nil
}

// CheckBodySize rejects oversized upload bodies before any read
func (s *Service) CheckBodySize(size int64) error {
	if size > s.maxBodyBytes {
		return &models.PayloadTooLargeError{
			Format: "import",
			Size:   size,
			Limit:  s.maxBodyBytes,
		}
	}
	return nil
}

// ValidateExportRequest checks structure and enumerated values
func (s *Service) ValidateExportRequest(req *models.ExportRequest) error {
	if req == nil {
		return &models.ValidationError{Field: "request", Message: "request body is required"}
	}

	if err := s.validate.Struct(req); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			first := errs[0]
			return &models.ValidationError{
				Field:   strings.ToLower(first.Field()),
				Message: validationMessage(first),
			}
		}
		return &models.ValidationError{Field: "request", Message: err.Error()}
	}

	if req.Template != "" && req.Format != models.FormatPDF {
		return &models.ValidationError{Field: "template", Message: "template only applies to PDF exports"}
	}

	return nil
}

// ValidateImportFormat checks the uploaded file format
func (s *Service) ValidateImportFormat(format string) error {
	if !importFormats[format] {
		return &models.ValidationError{
			Field:   "format",
			Message: fmt.Sprintf("unsupported import format: %s (supported: json, csv, txt)", format),
		}
	}
	return nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", strings.ToLower(fe.Field()))
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", strings.ToLower(fe.Field()), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "max":
		return fmt.Sprintf("%s exceeds the maximum of %s", strings.ToLower(fe.Field()), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", strings.ToLower(fe.Field()))
	}
}
