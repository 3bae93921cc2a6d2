package exporter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scribe/internal/common"
	"github.com/ternarybob/scribe/internal/interfaces"
	"github.com/ternarybob/scribe/internal/models"
	"github.com/ternarybob/scribe/internal/services/content"
	"github.com/ternarybob/scribe/internal/services/pdf"
)

type mockDocumentStorage struct {
	getDocumentsFunc  func(ownerID string, ids []string) ([]*models.Document, error)
	listDocumentsFunc func(ownerID string, opts *interfaces.ListOptions) ([]*models.Document, error)
}

func (m *mockDocumentStorage) SaveDocument(doc *models.Document) error { return nil }
func (m *mockDocumentStorage) GetDocument(ownerID, id string) (*models.Document, error) {
	return nil, &models.NotFoundError{Resource: "document", ID: id}
}
func (m *mockDocumentStorage) GetDocumentByTitle(ownerID, title string) (*models.Document, error) {
	return nil, &models.NotFoundError{Resource: "document"}
}
func (m *mockDocumentStorage) GetDocuments(ownerID string, ids []string) ([]*models.Document, error) {
	if m.getDocumentsFunc != nil {
		return m.getDocumentsFunc(ownerID, ids)
	}
	return nil, nil
}
func (m *mockDocumentStorage) ListDocuments(ownerID string, opts *interfaces.ListOptions) ([]*models.Document, error) {
	if m.listDocumentsFunc != nil {
		return m.listDocumentsFunc(ownerID, opts)
	}
	return nil, nil
}
func (m *mockDocumentStorage) DeleteDocument(ownerID, id string) error { return nil }
func (m *mockDocumentStorage) CountDocuments(ownerID string) (int, error) {
	return 0, nil
}
func (m *mockDocumentStorage) GetStats(ownerID string) (*models.DocumentStats, error) {
	return &models.DocumentStats{}, nil
}

type mockExportStorage struct {
	archives    map[string]*models.ExportArchive
	saveErr     error
	purgedCount int
}

func newMockExportStorage() *mockExportStorage {
	return &mockExportStorage{archives: make(map[string]*models.ExportArchive)}
}

func (m *mockExportStorage) SaveArchive(archive *models.ExportArchive) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.archives[archive.ID] = archive
	return nil
}
func (m *mockExportStorage) GetArchive(id string) (*models.ExportArchive, error) {
	archive, ok := m.archives[id]
	if !ok {
		return nil, &models.NotFoundError{Resource: "export archive", ID: id}
	}
	return archive, nil
}
func (m *mockExportStorage) DeleteArchive(id string) error {
	delete(m.archives, id)
	return nil
}
func (m *mockExportStorage) PurgeExpired() (int, error) {
	return m.purgedCount, nil
}

func newTestAssembler(docs *mockDocumentStorage, archives interfaces.ExportStorage) *Assembler {
	logger := arbor.NewLogger()
	cfg := common.NewDefaultConfig().Export
	set := NewGeneratorSet(&cfg, pdf.NewService(logger), content.NewProcessor(logger), logger)
	return NewAssembler(docs, archives, set, &cfg, logger)
}

func ownedRecords(ownerID string, n int) []*models.Document {
	now := time.Now()
	records := make([]*models.Document, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, &models.Document{
			ID:        fmt.Sprintf("doc_%d", i+1),
			OwnerID:   ownerID,
			Title:     fmt.Sprintf("Letter %d", i+1),
			Content:   "Dear reader, hello.",
			Category:  models.CategoryLetter,
			Status:    models.StatusCompleted,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return records
}

func TestAssembleExportAllOwned(t *testing.T) {
	docs := &mockDocumentStorage{
		listDocumentsFunc: func(ownerID string, opts *interfaces.ListOptions) ([]*models.Document, error) {
			assert.Equal(t, "user-1", ownerID)
			return ownedRecords(ownerID, 3), nil
		},
	}
	archives := newMockExportStorage()
	a := newTestAssembler(docs, archives)

	archive, err := a.AssembleExport(context.Background(), "user-1", &models.ExportRequest{Format: models.FormatJSON})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(archive.ID, "exp_"))
	assert.Equal(t, "user-1", archive.OwnerID)
	assert.Equal(t, models.FormatJSON, archive.Format)
	assert.Equal(t, 3, archive.ItemCount)
	assert.Equal(t, int64(len(archive.Bytes)), archive.SizeBytes)
	assert.Len(t, archive.Checksum, 64)
	assert.True(t, archive.ExpiresAt.After(archive.CreatedAt))

	stored, err := archives.GetArchive(archive.ID)
	require.NoError(t, err)
	assert.Equal(t, archive.Checksum, stored.Checksum)
}

func TestAssembleExportSelectedIDs(t *testing.T) {
	records := ownedRecords("user-1", 2)
	docs := &mockDocumentStorage{
		getDocumentsFunc: func(ownerID string, ids []string) ([]*models.Document, error) {
			assert.Equal(t, []string{"doc_1", "doc_2"}, ids)
			return records, nil
		},
	}
	a := newTestAssembler(docs, newMockExportStorage())

	archive, err := a.AssembleExport(context.Background(), "user-1", &models.ExportRequest{
		Format:      models.FormatCSV,
		DocumentIDs: []string{"doc_1", "doc_2"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, archive.ItemCount)
}

func TestAssembleExportEmptySetNotFound(t *testing.T) {
	docs := &mockDocumentStorage{
		getDocumentsFunc: func(ownerID string, ids []string) ([]*models.Document, error) {
			// All requested ids were foreign or unknown
			return nil, nil
		},
	}
	a := newTestAssembler(docs, newMockExportStorage())

	_, err := a.AssembleExport(context.Background(), "user-1", &models.ExportRequest{
		Format:      models.FormatJSON,
		DocumentIDs: []string{"doc_other"},
	})
	assert.True(t, models.IsNotFound(err))
}

func TestAssembleExportEstimateFailsFast(t *testing.T) {
	big := ownedRecords("user-1", 1)
	big[0].Content = strings.Repeat("a", 11*1024*1024)
	docs := &mockDocumentStorage{
		listDocumentsFunc: func(ownerID string, opts *interfaces.ListOptions) ([]*models.Document, error) {
			return big, nil
		},
	}
	a := newTestAssembler(docs, newMockExportStorage())

	_, err := a.AssembleExport(context.Background(), "user-1", &models.ExportRequest{Format: models.FormatJSON})
	require.Error(t, err)

	var tooLarge *models.PayloadTooLargeError
	require.True(t, errors.As(err, &tooLarge))
	assert.True(t, tooLarge.Estimated)
	assert.Equal(t, models.FormatJSON, tooLarge.Format)
}

func TestAssembleExportMetadataOnly(t *testing.T) {
	records := ownedRecords("user-1", 1)
	docs := &mockDocumentStorage{
		listDocumentsFunc: func(ownerID string, opts *interfaces.ListOptions) ([]*models.Document, error) {
			return records, nil
		},
	}
	a := newTestAssembler(docs, newMockExportStorage())

	includeContent := false
	archive, err := a.AssembleExport(context.Background(), "user-1", &models.ExportRequest{
		Format:         models.FormatJSON,
		IncludeContent: &includeContent,
	})
	require.NoError(t, err)
	assert.NotContains(t, string(archive.Bytes), "Dear reader")

	// The stored record itself is untouched
	assert.Equal(t, "Dear reader, hello.", records[0].Content)
}

func TestAssembleExportUnsupportedFormat(t *testing.T) {
	a := newTestAssembler(&mockDocumentStorage{}, newMockExportStorage())

	_, err := a.AssembleExport(context.Background(), "user-1", &models.ExportRequest{Format: "xml"})
	assert.True(t, models.IsValidation(err))
}

func TestAssembleExportPersistenceFailure(t *testing.T) {
	docs := &mockDocumentStorage{
		listDocumentsFunc: func(ownerID string, opts *interfaces.ListOptions) ([]*models.Document, error) {
			return ownedRecords(ownerID, 1), nil
		},
	}
	archives := newMockExportStorage()
	archives.saveErr = errors.New("disk full")
	a := newTestAssembler(docs, archives)

	_, err := a.AssembleExport(context.Background(), "user-1", &models.ExportRequest{Format: models.FormatJSON})
	require.Error(t, err)

	var pe *models.PersistenceError
	assert.True(t, errors.As(err, &pe))
}

func TestGetArchiveExpiredBehavesAsMissing(t *testing.T) {
	archives := newMockExportStorage()
	archives.archives["exp_old"] = &models.ExportArchive{
		ID:        "exp_old",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	a := newTestAssembler(&mockDocumentStorage{}, archives)

	_, err := a.GetArchive(context.Background(), "exp_old")
	assert.True(t, models.IsNotFound(err))
}

func TestPurgeExpiredDelegates(t *testing.T) {
	archives := newMockExportStorage()
	archives.purgedCount = 4
	a := newTestAssembler(&mockDocumentStorage{}, archives)

	n, err := a.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}
