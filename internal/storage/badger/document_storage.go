package badger

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scribe/internal/interfaces"
	"github.com/ternarybob/scribe/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// DocumentStorage implements the DocumentStorage interface for Badger.
// Every query is scoped to one owner; callers never see another owner's
// records.
type DocumentStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewDocumentStorage creates a new DocumentStorage instance
func NewDocumentStorage(db *BadgerDB, logger arbor.ILogger) interfaces.DocumentStorage {
	return &DocumentStorage{
		db:     db,
		logger: logger,
	}
}

func (s *DocumentStorage) SaveDocument(doc *models.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document ID is required")
	}
	if doc.OwnerID == "" {
		return fmt.Errorf("document owner is required")
	}

	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	doc.LastModifiedAt = now

	if err := s.db.Store().Upsert(doc.ID, doc); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

func (s *DocumentStorage) GetDocument(ownerID, id string) (*models.Document, error) {
	var doc models.Document
	if err := s.db.Store().Get(id, &doc); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, &models.NotFoundError{Resource: "document", ID: id}
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	// Ownership filter: a foreign id behaves exactly like a missing one
	if doc.OwnerID != ownerID {
		return nil, &models.NotFoundError{Resource: "document", ID: id}
	}
	return &doc, nil
}

func (s *DocumentStorage) GetDocumentByTitle(ownerID, title string) (*models.Document, error) {
	var docs []models.Document
	err := s.db.Store().Find(&docs, badgerhold.Where("OwnerID").Eq(ownerID).Index("OwnerID").And("Title").Eq(title).Limit(1))
	if err != nil {
		return nil, fmt.Errorf("failed to find document by title: %w", err)
	}
	if len(docs) == 0 {
		return nil, &models.NotFoundError{Resource: "document", ID: title}
	}
	return &docs[0], nil
}

// GetDocuments fetches the given ids filtered to ones owned by ownerID.
// Unknown and foreign ids are silently excluded, not reported as errors.
func (s *DocumentStorage) GetDocuments(ownerID string, ids []string) ([]*models.Document, error) {
	result := make([]*models.Document, 0, len(ids))
	for _, id := range ids {
		var doc models.Document
		if err := s.db.Store().Get(id, &doc); err != nil {
			if err == badgerhold.ErrNotFound {
				continue
			}
			return nil, fmt.Errorf("failed to get document %s: %w", id, err)
		}
		if doc.OwnerID != ownerID {
			continue
		}
		d := doc
		result = append(result, &d)
	}
	return result, nil
}

func (s *DocumentStorage) ListDocuments(ownerID string, opts *interfaces.ListOptions) ([]*models.Document, error) {
	query := badgerhold.Where("OwnerID").Eq(ownerID).Index("OwnerID")

	if opts != nil {
		if opts.Category != "" {
			query = query.And("Category").Eq(opts.Category)
		}
		if opts.Status != "" {
			query = query.And("Status").Eq(opts.Status)
		}
		if opts.Tag != "" {
			query = query.And("Tags").Contains(opts.Tag)
		}
		if opts.Offset > 0 {
			query = query.Skip(opts.Offset)
		}
		if opts.Limit > 0 {
			query = query.Limit(opts.Limit)
		}
	}

	var docs []models.Document
	if err := s.db.Store().Find(&docs, query); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	result := make([]*models.Document, len(docs))
	for i := range docs {
		result[i] = &docs[i]
	}
	return result, nil
}

func (s *DocumentStorage) DeleteDocument(ownerID, id string) error {
	// Ownership check before delete
	if _, err := s.GetDocument(ownerID, id); err != nil {
		return err
	}
	if err := s.db.Store().Delete(id, &models.Document{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func (s *DocumentStorage) CountDocuments(ownerID string) (int, error) {
	count, err := s.db.Store().Count(&models.Document{}, badgerhold.Where("OwnerID").Eq(ownerID).Index("OwnerID"))
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return int(count), nil
}

func (s *DocumentStorage) GetStats(ownerID string) (*models.DocumentStats, error) {
	docs, err := s.ListDocuments(ownerID, nil)
	if err != nil {
		return nil, err
	}

	stats := &models.DocumentStats{
		TotalDocuments:      len(docs),
		DocumentsByCategory: make(map[string]int),
		DocumentsByStatus:   make(map[string]int),
		LastUpdated:         time.Now(),
	}
	for _, doc := range docs {
		stats.DocumentsByCategory[doc.Category]++
		stats.DocumentsByStatus[doc.Status]++
		stats.TotalWords += doc.WordCount
	}
	return stats, nil
}
