package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scribe/internal/interfaces"
	"github.com/ternarybob/scribe/internal/models"
)

type ExportHandler struct {
	guard         interfaces.GuardService
	exportService interfaces.ExportService
	logger        arbor.ILogger
}

func NewExportHandler(guard interfaces.GuardService, exportService interfaces.ExportService, logger arbor.ILogger) *ExportHandler {
	return &ExportHandler{
		guard:         guard,
		exportService: exportService,
		logger:        logger,
	}
}

// ExportHandler assembles an export archive and returns its download URL
func (h *ExportHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	callerID := CallerID(r)
	if err := h.guard.AllowRequest(callerID); err != nil {
		WriteServiceError(w, err)
		return
	}

	var req models.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := h.guard.ValidateExportRequest(&req); err != nil {
		WriteServiceError(w, err)
		return
	}

	archive, err := h.exportService.AssembleExport(r.Context(), callerID, &req)
	if err != nil {
		h.logger.Warn().Err(err).Str("caller_id", callerID).Str("format", req.Format).Msg("Export failed")
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, models.ExportResponse{
		Success:     true,
		DownloadURL: fmt.Sprintf("/api/export/download/%s", archive.ID),
		Metadata: models.ExportMetadata{
			Count:     archive.ItemCount,
			Format:    archive.Format,
			FileSize:  archive.SizeBytes,
			Timestamp: archive.CreatedAt,
		},
	})
}

// DownloadHandler serves a previously assembled archive as a file attachment
func (h *ExportHandler) DownloadHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/export/download/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}

	archive, err := h.exportService.GetArchive(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	// Archives belong to the caller who assembled them
	if archive.OwnerID != CallerID(r) {
		WriteServiceError(w, &models.NotFoundError{Resource: "export archive", ID: id})
		return
	}

	w.Header().Set("Content-Type", models.ContentTypeForFormat(archive.Format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", archive.FileName))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", archive.SizeBytes))
	w.WriteHeader(http.StatusOK)
	w.Write(archive.Bytes)
}
