package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scribe/internal/common"
	"github.com/ternarybob/scribe/internal/interfaces"
	"github.com/ternarybob/scribe/internal/models"
	"github.com/ternarybob/scribe/internal/services/importer"
)

// mockGuard implements interfaces.GuardService for testing
type mockGuard struct {
	allowFunc func(callerID string) error
}

func (m *mockGuard) AllowRequest(callerID string) error {
	if m.allowFunc != nil {
		return m.allowFunc(callerID)
	}
	return nil
}
func (m *mockGuard) CheckBodySize(size int64) error {
	if size > 20*1024*1024 {
		return &models.PayloadTooLargeError{Format: "import", Size: size, Limit: 20 * 1024 * 1024}
	}
	return nil
}
func (m *mockGuard) ValidateExportRequest(req *models.ExportRequest) error {
	if req == nil || req.Format == "" {
		return &models.ValidationError{Field: "format", Message: "format is required"}
	}
	return nil
}
func (m *mockGuard) ValidateImportFormat(format string) error {
	switch format {
	case models.FormatJSON, models.FormatCSV, models.FormatTXT:
		return nil
	}
	return &models.ValidationError{Field: "format", Message: "unsupported import format: " + format}
}

// mockImportService implements interfaces.ImportService for testing
type mockImportService struct {
	importFunc func(ctx context.Context, records []*models.Document, ownerID string, opts models.ImportOptions) (*models.ImportResult, error)
}

func (m *mockImportService) ImportBatch(ctx context.Context, records []*models.Document, ownerID string, opts models.ImportOptions) (*models.ImportResult, error) {
	if m.importFunc != nil {
		return m.importFunc(ctx, records, ownerID, opts)
	}
	return &models.ImportResult{Successful: records, TotalProcessed: len(records)}, nil
}

// mockExportService implements interfaces.ExportService for testing
type mockExportService struct {
	assembleFunc   func(ctx context.Context, ownerID string, req *models.ExportRequest) (*models.ExportArchive, error)
	getArchiveFunc func(ctx context.Context, id string) (*models.ExportArchive, error)
}

func (m *mockExportService) AssembleExport(ctx context.Context, ownerID string, req *models.ExportRequest) (*models.ExportArchive, error) {
	if m.assembleFunc != nil {
		return m.assembleFunc(ctx, ownerID, req)
	}
	return nil, nil
}
func (m *mockExportService) GetArchive(ctx context.Context, id string) (*models.ExportArchive, error) {
	if m.getArchiveFunc != nil {
		return m.getArchiveFunc(ctx, id)
	}
	return nil, &models.NotFoundError{Resource: "export archive", ID: id}
}
func (m *mockExportService) PurgeExpired(ctx context.Context) (int, error) { return 0, nil }

// mockDocumentService implements interfaces.DocumentService for testing
type mockDocumentService struct {
	createFunc func(ctx context.Context, doc *models.Document) error
	getFunc    func(ctx context.Context, ownerID, id string) (*models.Document, error)
	listFunc   func(ctx context.Context, ownerID string, opts *interfaces.ListOptions) ([]*models.Document, error)
	deleteFunc func(ctx context.Context, ownerID, id string) error
}

func (m *mockDocumentService) CreateDocument(ctx context.Context, doc *models.Document) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, doc)
	}
	doc.ID = "doc_test"
	return nil
}
func (m *mockDocumentService) GetDocument(ctx context.Context, ownerID, id string) (*models.Document, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, ownerID, id)
	}
	return nil, &models.NotFoundError{Resource: "document", ID: id}
}
func (m *mockDocumentService) UpdateDocument(ctx context.Context, doc *models.Document) error {
	return nil
}
func (m *mockDocumentService) DeleteDocument(ctx context.Context, ownerID, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, ownerID, id)
	}
	return nil
}
func (m *mockDocumentService) ListDocuments(ctx context.Context, ownerID string, opts *interfaces.ListOptions) ([]*models.Document, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, ownerID, opts)
	}
	return nil, nil
}
func (m *mockDocumentService) GetStats(ctx context.Context, ownerID string) (*models.DocumentStats, error) {
	return &models.DocumentStats{}, nil
}

func newTestImportHandler(guard interfaces.GuardService, svc interfaces.ImportService) *ImportHandler {
	logger := arbor.NewLogger()
	cfg := common.NewDefaultConfig().Import
	return NewImportHandler(guard, importer.NewParserSet(logger), svc, &cfg, logger)
}

// multipartUpload builds a multipart body with a single file part plus fields
func multipartUpload(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestImportHandlerJSONUpload(t *testing.T) {
	var gotOwner string
	var gotOpts models.ImportOptions
	svc := &mockImportService{
		importFunc: func(ctx context.Context, records []*models.Document, ownerID string, opts models.ImportOptions) (*models.ImportResult, error) {
			gotOwner = ownerID
			gotOpts = opts
			return &models.ImportResult{Successful: records, TotalProcessed: len(records)}, nil
		},
	}
	h := newTestImportHandler(&mockGuard{}, svc)

	payload := `{"documents": [{"title": "Hello", "content": "World"}]}`
	body, contentType := multipartUpload(t, "docs.json", []byte(payload), map[string]string{
		"update_existing": "true",
		"category":        "email",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/import", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()
	h.ImportHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "user-1", gotOwner)
	assert.True(t, gotOpts.UpdateExisting)
	assert.Equal(t, "email", gotOpts.Category)

	var resp models.ImportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Imported)
}

func TestImportHandlerPartialFailureStillSucceeds(t *testing.T) {
	svc := &mockImportService{
		importFunc: func(ctx context.Context, records []*models.Document, ownerID string, opts models.ImportOptions) (*models.ImportResult, error) {
			return &models.ImportResult{
				Successful:     records[:1],
				Failed:         []models.FailedRecord{{Record: records[1], Error: "storage insert failed"}},
				TotalProcessed: len(records),
			}, nil
		},
	}
	h := newTestImportHandler(&mockGuard{}, svc)

	payload := `[{"title": "Kept", "content": "a"}, {"title": "Lost", "content": "b"}]`
	body, contentType := multipartUpload(t, "docs.json", []byte(payload), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ImportHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp models.ImportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Imported)
	assert.Contains(t, resp.Errors, "storage insert failed")
}

func TestImportHandlerAllSkippedStillSucceeds(t *testing.T) {
	svc := &mockImportService{
		importFunc: func(ctx context.Context, records []*models.Document, ownerID string, opts models.ImportOptions) (*models.ImportResult, error) {
			skipped := make([]models.SkippedRecord, len(records))
			for i, r := range records {
				skipped[i] = models.SkippedRecord{Record: r, Reason: "duplicate"}
			}
			return &models.ImportResult{Skipped: skipped, TotalProcessed: len(records)}, nil
		},
	}
	h := newTestImportHandler(&mockGuard{}, svc)

	body, contentType := multipartUpload(t, "docs.json", []byte(`[{"title": "Dup", "content": "x"}]`), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ImportHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ImportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 0, resp.Imported)
	assert.Equal(t, 1, resp.Skipped)
}

func TestImportHandlerFormatFromExtension(t *testing.T) {
	h := newTestImportHandler(&mockGuard{}, &mockImportService{})

	csvPayload := "title,content\nHello,World\n"
	body, contentType := multipartUpload(t, "docs.csv", []byte(csvPayload), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ImportHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestImportHandlerUnsupportedFormat(t *testing.T) {
	h := newTestImportHandler(&mockGuard{}, &mockImportService{})

	body, contentType := multipartUpload(t, "docs.docx", []byte("binary"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ImportHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportHandlerRateLimited(t *testing.T) {
	guard := &mockGuard{
		allowFunc: func(callerID string) error {
			return &models.RateLimitError{RetryAfter: 12 * time.Second}
		},
	}
	h := newTestImportHandler(guard, &mockImportService{})

	body, contentType := multipartUpload(t, "docs.json", []byte(`[]`), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ImportHandler(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "12", rec.Header().Get("Retry-After"))
}

func TestImportHandlerDeclaredBodyTooLarge(t *testing.T) {
	h := newTestImportHandler(&mockGuard{}, &mockImportService{})

	req := httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader("x"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	req.ContentLength = 21 * 1024 * 1024
	rec := httptest.NewRecorder()
	h.ImportHandler(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestImportHandlerParseErrorIsBadRequest(t *testing.T) {
	h := newTestImportHandler(&mockGuard{}, &mockImportService{})

	body, contentType := multipartUpload(t, "docs.json", []byte("{not json"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ImportHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportHandlerSuccess(t *testing.T) {
	now := time.Now()
	svc := &mockExportService{
		assembleFunc: func(ctx context.Context, ownerID string, req *models.ExportRequest) (*models.ExportArchive, error) {
			assert.Equal(t, "user-1", ownerID)
			return &models.ExportArchive{
				ID:        "exp_abc",
				OwnerID:   ownerID,
				Format:    models.FormatJSON,
				FileName:  "documents.json",
				SizeBytes: 42,
				ItemCount: 3,
				CreatedAt: now,
				ExpiresAt: now.Add(30 * time.Minute),
			}, nil
		},
	}
	h := NewExportHandler(&mockGuard{}, svc, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/export", strings.NewReader(`{"format":"json"}`))
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()
	h.ExportHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp models.ExportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "/api/export/download/exp_abc", resp.DownloadURL)
	assert.Equal(t, 3, resp.Metadata.Count)
	assert.Equal(t, int64(42), resp.Metadata.FileSize)
}

func TestExportHandlerEmptySetIs404(t *testing.T) {
	svc := &mockExportService{
		assembleFunc: func(ctx context.Context, ownerID string, req *models.ExportRequest) (*models.ExportArchive, error) {
			return nil, &models.NotFoundError{Resource: "documents"}
		},
	}
	h := NewExportHandler(&mockGuard{}, svc, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/export", strings.NewReader(`{"format":"json"}`))
	rec := httptest.NewRecorder()
	h.ExportHandler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportHandlerOversizedIs413(t *testing.T) {
	svc := &mockExportService{
		assembleFunc: func(ctx context.Context, ownerID string, req *models.ExportRequest) (*models.ExportArchive, error) {
			return nil, &models.PayloadTooLargeError{Format: models.FormatJSON, Size: 11 << 20, Limit: 10 << 20, Estimated: true}
		},
	}
	h := NewExportHandler(&mockGuard{}, svc, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/export", strings.NewReader(`{"format":"json"}`))
	rec := httptest.NewRecorder()
	h.ExportHandler(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestDownloadHandlerServesArchive(t *testing.T) {
	svc := &mockExportService{
		getArchiveFunc: func(ctx context.Context, id string) (*models.ExportArchive, error) {
			return &models.ExportArchive{
				ID:        id,
				OwnerID:   "user-1",
				Format:    models.FormatCSV,
				FileName:  "documents.csv",
				Bytes:     []byte("title,content\n"),
				SizeBytes: 14,
			}, nil
		},
	}
	h := NewExportHandler(&mockGuard{}, svc, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/export/download/exp_abc", nil)
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()
	h.DownloadHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "documents.csv")
	assert.Equal(t, "title,content\n", rec.Body.String())
}

func TestDownloadHandlerForeignArchiveIs404(t *testing.T) {
	svc := &mockExportService{
		getArchiveFunc: func(ctx context.Context, id string) (*models.ExportArchive, error) {
			return &models.ExportArchive{ID: id, OwnerID: "someone-else"}, nil
		},
	}
	h := NewExportHandler(&mockGuard{}, svc, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/export/download/exp_abc", nil)
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()
	h.DownloadHandler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDocumentHandlerCreateAndGet(t *testing.T) {
	stored := &models.Document{ID: "doc_1", OwnerID: "user-1", Title: "Hello"}
	svc := &mockDocumentService{
		getFunc: func(ctx context.Context, ownerID, id string) (*models.Document, error) {
			if ownerID == "user-1" && id == "doc_1" {
				return stored, nil
			}
			return nil, &models.NotFoundError{Resource: "document", ID: id}
		},
	}
	h := NewDocumentHandler(svc, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/documents", strings.NewReader(`{"title":"Hello","content":"World"}`))
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()
	h.ListHandler(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/documents/doc_1", nil)
	req.Header.Set("X-User-ID", "user-1")
	rec = httptest.NewRecorder()
	h.DocumentRoutesHandler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var doc models.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "Hello", doc.Title)
}

func TestDocumentHandlerForeignDocumentIs404(t *testing.T) {
	h := NewDocumentHandler(&mockDocumentService{}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/documents/doc_other", nil)
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()
	h.DocumentRoutesHandler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// mockStorageManager implements interfaces.StorageManager for testing
type mockStorageManager struct {
	pingErr error
}

func (m *mockStorageManager) DocumentStorage() interfaces.DocumentStorage { return nil }
func (m *mockStorageManager) ExportStorage() interfaces.ExportStorage     { return nil }
func (m *mockStorageManager) Ping() error                                 { return m.pingErr }
func (m *mockStorageManager) Close() error                                { return nil }

func TestHealthHandlerReportsStorage(t *testing.T) {
	h := NewAPIHandler(&mockStorageManager{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	h.HealthHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "ok", resp["storage"])
	assert.NotEmpty(t, resp["uptime"])
}

func TestHealthHandlerDegradedWhenStorageDown(t *testing.T) {
	h := NewAPIHandler(&mockStorageManager{pingErr: errors.New("connection closed")})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	h.HealthHandler(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp["status"])
	assert.Equal(t, "unavailable", resp["storage"])
}

func TestCallerIDFallsBackToRemoteAddr(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.7:54321"
	assert.Equal(t, "10.0.0.7", CallerID(req))

	req.Header.Set("X-User-ID", "user-9")
	assert.Equal(t, "user-9", CallerID(req))
}
