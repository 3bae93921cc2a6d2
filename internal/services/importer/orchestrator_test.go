package importer

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scribe/internal/interfaces"
	"github.com/ternarybob/scribe/internal/models"
	"github.com/ternarybob/scribe/internal/services/content"
)

// memoryStorage is an in-memory DocumentStorage for orchestrator tests
type memoryStorage struct {
	docs     map[string]*models.Document
	saveErr  map[string]error // Keyed by title, injected write failures
	saveSeen int
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{
		docs:    make(map[string]*models.Document),
		saveErr: make(map[string]error),
	}
}

func (m *memoryStorage) SaveDocument(doc *models.Document) error {
	m.saveSeen++
	if err, ok := m.saveErr[doc.Title]; ok {
		return err
	}
	copied := *doc
	m.docs[doc.ID] = &copied
	return nil
}

func (m *memoryStorage) GetDocument(ownerID, id string) (*models.Document, error) {
	doc, ok := m.docs[id]
	if !ok || doc.OwnerID != ownerID {
		return nil, &models.NotFoundError{Resource: "document", ID: id}
	}
	copied := *doc
	return &copied, nil
}

func (m *memoryStorage) GetDocumentByTitle(ownerID, title string) (*models.Document, error) {
	for _, doc := range m.docs {
		if doc.OwnerID == ownerID && doc.Title == title {
			copied := *doc
			return &copied, nil
		}
	}
	return nil, &models.NotFoundError{Resource: "document", ID: title}
}

func (m *memoryStorage) GetDocuments(ownerID string, ids []string) ([]*models.Document, error) {
	var result []*models.Document
	for _, id := range ids {
		if doc, ok := m.docs[id]; ok && doc.OwnerID == ownerID {
			copied := *doc
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *memoryStorage) ListDocuments(ownerID string, opts *interfaces.ListOptions) ([]*models.Document, error) {
	var result []*models.Document
	for _, doc := range m.docs {
		if doc.OwnerID == ownerID {
			copied := *doc
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *memoryStorage) DeleteDocument(ownerID, id string) error {
	delete(m.docs, id)
	return nil
}

func (m *memoryStorage) CountDocuments(ownerID string) (int, error) {
	docs, _ := m.ListDocuments(ownerID, nil)
	return len(docs), nil
}

func (m *memoryStorage) GetStats(ownerID string) (*models.DocumentStats, error) {
	return &models.DocumentStats{}, nil
}

func newTestOrchestrator(storage interfaces.DocumentStorage) *Orchestrator {
	logger := arbor.NewLogger()
	return NewOrchestrator(storage, content.NewProcessor(logger), logger)
}

func candidates(titles ...string) []*models.Document {
	docs := make([]*models.Document, len(titles))
	for i, title := range titles {
		docs[i] = &models.Document{Title: title, Content: "body of " + title}
	}
	return docs
}

func TestImportBatch_CreatesRecords(t *testing.T) {
	storage := newMemoryStorage()
	o := newTestOrchestrator(storage)

	result, err := o.ImportBatch(context.Background(), candidates("One", "Two", "Three"), "alice", models.DefaultImportOptions())
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalProcessed)
	assert.Len(t, result.Successful, 3)
	assert.Empty(t, result.Skipped)
	assert.Empty(t, result.Failed)

	for _, doc := range result.Successful {
		assert.NotEmpty(t, doc.ID)
		assert.Equal(t, "alice", doc.OwnerID)
		assert.NotEmpty(t, doc.Excerpt)
		assert.NotZero(t, doc.WordCount)
	}
}

func TestImportBatch_IdempotentDuplicateSkip(t *testing.T) {
	storage := newMemoryStorage()
	o := newTestOrchestrator(storage)
	ctx := context.Background()

	first, err := o.ImportBatch(ctx, candidates("A", "B", "C"), "alice", models.DefaultImportOptions())
	require.NoError(t, err)
	assert.Len(t, first.Successful, 3)

	// Importing the same file again skips every record
	second, err := o.ImportBatch(ctx, candidates("A", "B", "C"), "alice", models.DefaultImportOptions())
	require.NoError(t, err)
	assert.Empty(t, second.Successful)
	require.Len(t, second.Skipped, 3)
	for _, s := range second.Skipped {
		assert.Equal(t, ReasonDuplicate, s.Reason)
	}
}

func TestImportBatch_DuplicateWithinSameBatch(t *testing.T) {
	storage := newMemoryStorage()
	o := newTestOrchestrator(storage)

	// The second "Same" candidate must see the record the first one created
	result, err := o.ImportBatch(context.Background(), candidates("Same", "Same"), "alice", models.DefaultImportOptions())
	require.NoError(t, err)
	assert.Len(t, result.Successful, 1)
	assert.Len(t, result.Skipped, 1)
}

func TestImportBatch_UpdateExisting(t *testing.T) {
	storage := newMemoryStorage()
	o := newTestOrchestrator(storage)
	ctx := context.Background()

	_, err := o.ImportBatch(ctx, candidates("Report"), "alice", models.DefaultImportOptions())
	require.NoError(t, err)

	updated := []*models.Document{{
		Title:    "Report",
		Content:  "revised body",
		Category: models.CategoryBusiness,
		Tags:     []string{"v2"},
	}}
	opts := models.ImportOptions{SkipDuplicates: true, UpdateExisting: true}
	result, err := o.ImportBatch(ctx, updated, "alice", opts)
	require.NoError(t, err)

	// UpdateExisting wins over SkipDuplicates for matched duplicates
	require.Len(t, result.Successful, 1)
	assert.Empty(t, result.Skipped)

	got, err := storage.GetDocumentByTitle("alice", "Report")
	require.NoError(t, err)
	assert.Equal(t, "revised body", got.Content)
	assert.Equal(t, models.CategoryBusiness, got.Category)
	assert.Equal(t, []string{"v2"}, got.Tags)
	assert.Equal(t, 2, got.WordCount)
}

func TestImportBatch_PartialFailureIsolation(t *testing.T) {
	storage := newMemoryStorage()
	o := newTestOrchestrator(storage)

	records := candidates("One", "Two", "Three", "Four")
	records[2].Title = "   " // Blank title fails this record only

	result, err := o.ImportBatch(context.Background(), records, "alice", models.DefaultImportOptions())
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalProcessed)
	assert.Len(t, result.Successful, 3)
	require.Len(t, result.Failed, 1)
	assert.Contains(t, result.Failed[0].Error, "title is required")
}

func TestImportBatch_PersistenceErrorClassified(t *testing.T) {
	storage := newMemoryStorage()
	storage.saveErr["Poison"] = fmt.Errorf("disk full")
	o := newTestOrchestrator(storage)

	result, err := o.ImportBatch(context.Background(), candidates("Good", "Poison", "Also good"), "alice", models.DefaultImportOptions())
	require.NoError(t, err, "storage failures never raise to the caller")

	assert.Len(t, result.Successful, 2)
	require.Len(t, result.Failed, 1)
	assert.Contains(t, result.Failed[0].Error, "disk full")
}

func TestImportBatch_AppliesBatchDefaults(t *testing.T) {
	storage := newMemoryStorage()
	o := newTestOrchestrator(storage)

	records := []*models.Document{
		{Title: "Untagged", Content: "x"},
		{Title: "Tagged", Content: "y", Category: models.CategoryEmail, Tags: []string{"own"}},
	}
	opts := models.ImportOptions{
		SkipDuplicates: true,
		Category:       models.CategoryLetter,
		Tags:           []string{"imported"},
	}

	result, err := o.ImportBatch(context.Background(), records, "alice", opts)
	require.NoError(t, err)
	require.Len(t, result.Successful, 2)

	untagged, err := storage.GetDocumentByTitle("alice", "Untagged")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryLetter, untagged.Category)
	assert.Equal(t, []string{"imported"}, untagged.Tags)

	// Records carrying their own category and tags keep them
	tagged, err := storage.GetDocumentByTitle("alice", "Tagged")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryEmail, tagged.Category)
	assert.Equal(t, []string{"own"}, tagged.Tags)
}
