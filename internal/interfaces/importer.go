package interfaces

import (
	"context"

	"github.com/ternarybob/scribe/internal/models"
)

// Parser turns uploaded bytes into candidate document records. One
// implementation exists per supported format, resolved once at the entry
// point rather than re-checked per call.
//
// Parse fails with models.ParseError only when the input cannot be decoded
// in the declared format at all; record-level problems and truncation notes
// are accumulated in ParseResult.Errors.
type Parser interface {
	Format() string
	Parse(data []byte, limits models.ParseLimits) (*models.ParseResult, error)
}

// ImportService runs a batch of candidate records against the document
// store, deciding insert/update/skip per record.
type ImportService interface {
	ImportBatch(ctx context.Context, records []*models.Document, ownerID string, opts models.ImportOptions) (*models.ImportResult, error)
}
