package documents

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scribe/internal/common"
	"github.com/ternarybob/scribe/internal/interfaces"
	"github.com/ternarybob/scribe/internal/models"
	"github.com/ternarybob/scribe/internal/services/content"
)

// Service implements interfaces.DocumentService
type Service struct {
	storage   interfaces.DocumentStorage
	processor *content.Processor
	logger    arbor.ILogger
}

// Compile-time assertion
var _ interfaces.DocumentService = (*Service)(nil)

// NewService creates a new document service
func NewService(storage interfaces.DocumentStorage, processor *content.Processor, logger arbor.ILogger) *Service {
	return &Service{
		storage:   storage,
		processor: processor,
		logger:    logger,
	}
}

// CreateDocument validates and persists a new document. The ID is assigned
// here; Excerpt and WordCount are derived from Content.
func (s *Service) CreateDocument(ctx context.Context, doc *models.Document) error {
	if strings.TrimSpace(doc.Title) == "" {
		return &models.ValidationError{Field: "title", Message: "title is required"}
	}
	if doc.OwnerID == "" {
		return &models.ValidationError{Field: "owner_id", Message: "owner is required"}
	}

	if doc.ID == "" {
		doc.ID = common.NewDocumentID()
	}
	doc.Category = models.NormalizeCategory(doc.Category)
	doc.Status = models.NormalizeStatus(doc.Status)
	s.deriveFields(doc)

	if err := s.storage.SaveDocument(doc); err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	s.logger.Debug().
		Str("doc_id", doc.ID).
		Str("owner_id", doc.OwnerID).
		Str("category", doc.Category).
		Msg("Document created")
	return nil
}

func (s *Service) GetDocument(ctx context.Context, ownerID, id string) (*models.Document, error) {
	return s.storage.GetDocument(ownerID, id)
}

// UpdateDocument overwrites an existing document's mutable fields. OwnerID
// and CreatedAt are taken from the stored record and never reassigned.
func (s *Service) UpdateDocument(ctx context.Context, doc *models.Document) error {
	if strings.TrimSpace(doc.Title) == "" {
		return &models.ValidationError{Field: "title", Message: "title is required"}
	}

	existing, err := s.storage.GetDocument(doc.OwnerID, doc.ID)
	if err != nil {
		return err
	}

	doc.OwnerID = existing.OwnerID
	doc.CreatedAt = existing.CreatedAt
	doc.Category = models.NormalizeCategory(doc.Category)
	doc.Status = models.NormalizeStatus(doc.Status)
	s.deriveFields(doc)

	if err := s.storage.SaveDocument(doc); err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	s.logger.Debug().Str("doc_id", doc.ID).Msg("Document updated")
	return nil
}

func (s *Service) DeleteDocument(ctx context.Context, ownerID, id string) error {
	if err := s.storage.DeleteDocument(ownerID, id); err != nil {
		return err
	}
	s.logger.Debug().Str("doc_id", id).Msg("Document deleted")
	return nil
}

func (s *Service) ListDocuments(ctx context.Context, ownerID string, opts *interfaces.ListOptions) ([]*models.Document, error) {
	return s.storage.ListDocuments(ownerID, opts)
}

func (s *Service) GetStats(ctx context.Context, ownerID string) (*models.DocumentStats, error) {
	return s.storage.GetStats(ownerID)
}

// deriveFields recomputes Excerpt and WordCount from Content. Caller-supplied
// values for either are discarded.
func (s *Service) deriveFields(doc *models.Document) {
	doc.Excerpt = s.processor.Excerpt(doc.Content)
	doc.WordCount = s.processor.WordCount(doc.Content)
}
