package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scribe/internal/interfaces"
	"github.com/ternarybob/scribe/internal/models"
)

type DocumentHandler struct {
	documentService interfaces.DocumentService
	logger          arbor.ILogger
}

func NewDocumentHandler(documentService interfaces.DocumentService, logger arbor.ILogger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		logger:          logger,
	}
}

// StatsHandler returns document statistics for the caller
func (h *DocumentHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	stats, err := h.documentService.GetStats(r.Context(), CallerID(r))
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to get document stats")
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, stats)
}

// ListHandler returns the caller's documents with filtering
func (h *DocumentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listDocuments(w, r)
	case http.MethodPost:
		h.createDocument(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// DocumentRoutesHandler handles /api/documents/{id} requests
func (h *DocumentHandler) DocumentRoutesHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/documents/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getDocument(w, r, id)
	case http.MethodPut:
		h.updateDocument(w, r, id)
	case http.MethodDelete:
		h.deleteDocument(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *DocumentHandler) listDocuments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit <= 0 {
		limit = 20
	}
	offset, _ := strconv.Atoi(query.Get("offset"))
	if offset < 0 {
		offset = 0
	}

	opts := &interfaces.ListOptions{
		Category: query.Get("category"),
		Status:   query.Get("status"),
		Tag:      query.Get("tag"),
		Limit:    limit,
		Offset:   offset,
	}

	docs, err := h.documentService.ListDocuments(r.Context(), CallerID(r), opts)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list documents")
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"documents": docs,
		"count":     len(docs),
		"limit":     limit,
		"offset":    offset,
	})
}

func (h *DocumentHandler) createDocument(w http.ResponseWriter, r *http.Request) {
	var doc models.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	doc.OwnerID = CallerID(r)
	if err := h.documentService.CreateDocument(r.Context(), &doc); err != nil {
		h.logger.Error().Err(err).Msg("Failed to create document")
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, &doc)
}

func (h *DocumentHandler) getDocument(w http.ResponseWriter, r *http.Request, id string) {
	doc, err := h.documentService.GetDocument(r.Context(), CallerID(r), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) updateDocument(w http.ResponseWriter, r *http.Request, id string) {
	var doc models.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	doc.ID = id
	doc.OwnerID = CallerID(r)
	if err := h.documentService.UpdateDocument(r.Context(), &doc); err != nil {
		h.logger.Error().Err(err).Str("document_id", id).Msg("Failed to update document")
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, &doc)
}

func (h *DocumentHandler) deleteDocument(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.documentService.DeleteDocument(r.Context(), CallerID(r), id); err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Document deleted",
	})
}
