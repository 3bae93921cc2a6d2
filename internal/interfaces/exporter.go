package interfaces

import (
	"context"

	"github.com/ternarybob/scribe/internal/models"
)

// Generator turns stored document records into an output byte buffer. One
// implementation exists per supported format.
//
// EstimateSize computes a cheap lower-bound estimate (e.g. summing content
// lengths) so oversized exports fail before the expensive generation step.
// MaxBytes is the format's output ceiling; Generate fails with
// models.PayloadTooLargeError when the actual output exceeds it.
type Generator interface {
	Format() string
	MaxBytes() int64
	EstimateSize(records []*models.Document) int64
	Generate(records []*models.Document, opts models.GeneratorOptions) ([]byte, error)
}

// ExportService resolves a caller's export request into an archive available
// for download.
type ExportService interface {
	AssembleExport(ctx context.Context, ownerID string, req *models.ExportRequest) (*models.ExportArchive, error)
	GetArchive(ctx context.Context, id string) (*models.ExportArchive, error)
	PurgeExpired(ctx context.Context) (int, error)
}
