package interfaces

import (
	"github.com/ternarybob/scribe/internal/models"
)

// ListOptions controls document listing queries
type ListOptions struct {
	Category string
	Status   string
	Tag      string
	Limit    int
	Offset   int
}

// DocumentStorage defines persistence operations for documents. All queries
// are scoped to a single owner; the pipeline never operates across owners.
type DocumentStorage interface {
	SaveDocument(doc *models.Document) error
	GetDocument(ownerID, id string) (*models.Document, error)
	GetDocumentByTitle(ownerID, title string) (*models.Document, error)
	GetDocuments(ownerID string, ids []string) ([]*models.Document, error)
	ListDocuments(ownerID string, opts *ListOptions) ([]*models.Document, error)
	DeleteDocument(ownerID, id string) error
	CountDocuments(ownerID string) (int, error)
	GetStats(ownerID string) (*models.DocumentStats, error)
}

// ExportStorage defines persistence operations for export download archives
type ExportStorage interface {
	SaveArchive(archive *models.ExportArchive) error
	GetArchive(id string) (*models.ExportArchive, error)
	DeleteArchive(id string) error
	PurgeExpired() (int, error)
}

// StorageManager provides access to all storage backends
type StorageManager interface {
	DocumentStorage() DocumentStorage
	ExportStorage() ExportStorage
	Ping() error
	Close() error
}
