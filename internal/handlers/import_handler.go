package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scribe/internal/common"
	"github.com/ternarybob/scribe/internal/interfaces"
	"github.com/ternarybob/scribe/internal/models"
	"github.com/ternarybob/scribe/internal/services/importer"
)

// maxMultipartMemory caps how much of the upload is buffered in memory;
// the remainder spills to temp files.
const maxMultipartMemory = 10 << 20

type ImportHandler struct {
	guard         interfaces.GuardService
	parsers       *importer.ParserSet
	importService interfaces.ImportService
	limits        models.ParseLimits
	maxBodyBytes  int64
	logger        arbor.ILogger
}

func NewImportHandler(guard interfaces.GuardService, parsers *importer.ParserSet, importService interfaces.ImportService, cfg *common.ImportConfig, logger arbor.ILogger) *ImportHandler {
	return &ImportHandler{
		guard:         guard,
		parsers:       parsers,
		importService: importService,
		limits: models.ParseLimits{
			MaxDocuments:    cfg.MaxDocuments,
			MaxContentChars: cfg.MaxContentChars,
		},
		maxBodyBytes: cfg.MaxBodyBytes,
		logger:       logger,
	}
}

// ImportHandler accepts a multipart upload and runs it through the parse and
// batch-import pipeline. The file goes in the "file" part; format is taken
// from the "format" field or inferred from the file extension.
func (h *ImportHandler) ImportHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	callerID := CallerID(r)
	if err := h.guard.AllowRequest(callerID); err != nil {
		WriteServiceError(w, err)
		return
	}

	// Reject on the declared length first, then cap the actual read
	if r.ContentLength > 0 {
		if err := h.guard.CheckBodySize(r.ContentLength); err != nil {
			WriteServiceError(w, err)
			return
		}
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			WriteServiceError(w, &models.PayloadTooLargeError{Format: "import", Size: r.ContentLength, Limit: h.maxBodyBytes})
			return
		}
		WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Missing file upload (expected form field \"file\")")
		return
	}
	defer file.Close()

	format := strings.ToLower(r.FormValue("format"))
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
	}
	if err := h.guard.ValidateImportFormat(format); err != nil {
		WriteServiceError(w, err)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read upload")
		WriteError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	parser := h.parsers.ForFormat(format)
	parsed, err := parser.Parse(data, h.limits)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	opts := h.importOptions(r)
	result, err := h.importService.ImportBatch(r.Context(), parsed.Records, callerID, opts)
	if err != nil {
		h.logger.Error().Err(err).Str("caller_id", callerID).Msg("Import batch failed")
		WriteServiceError(w, err)
		return
	}

	h.logger.Info().
		Str("caller_id", callerID).
		Str("format", format).
		Str("file", header.Filename).
		Int("imported", len(result.Successful)).
		Int("skipped", len(result.Skipped)).
		Int("failed", len(result.Failed)).
		Msg("Import completed")

	// The batch reports success as long as any record made it in; a batch
	// where everything was skipped (all duplicates) is also a success.
	response := models.ImportResponse{
		Success:   len(result.Successful) > 0 || len(result.Failed) == 0,
		Imported:  len(result.Successful),
		Skipped:   len(result.Skipped),
		Errors:    append([]string{}, parsed.Errors...),
		Documents: result.Successful,
	}
	for _, f := range result.Failed {
		response.Errors = append(response.Errors, f.Error)
	}

	WriteJSON(w, http.StatusOK, response)
}

// importOptions reads batch options from the multipart form fields
func (h *ImportHandler) importOptions(r *http.Request) models.ImportOptions {
	opts := models.DefaultImportOptions()

	if v := r.FormValue("skip_duplicates"); v != "" {
		opts.SkipDuplicates = v == "true" || v == "1"
	}
	if v := r.FormValue("update_existing"); v != "" {
		opts.UpdateExisting = v == "true" || v == "1"
	}
	if v := r.FormValue("category"); v != "" {
		opts.Category = v
	}
	if v := r.FormValue("tags"); v != "" {
		for _, tag := range strings.Split(v, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				opts.Tags = append(opts.Tags, tag)
			}
		}
	}

	return opts
}
