package interfaces

import (
	"context"

	"github.com/ternarybob/scribe/internal/models"
)

// DocumentService provides document CRUD with derived-field maintenance.
// Excerpt and WordCount are recomputed from Content on every write.
type DocumentService interface {
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, ownerID, id string) (*models.Document, error)
	UpdateDocument(ctx context.Context, doc *models.Document) error
	DeleteDocument(ctx context.Context, ownerID, id string) error
	ListDocuments(ctx context.Context, ownerID string, opts *ListOptions) ([]*models.Document, error)
	GetStats(ctx context.Context, ownerID string) (*models.DocumentStats, error)
}
