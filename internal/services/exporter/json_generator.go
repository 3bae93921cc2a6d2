package exporter

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scribe/internal/interfaces"
	"github.com/ternarybob/scribe/internal/models"
)

// jsonExportEnvelope wraps the record array with export metadata. The
// "documents" key matches the shape the JSON importer accepts, so an export
// round-trips through import unchanged.
type jsonExportEnvelope struct {
	ExportedAt time.Time          `json:"exported_at"`
	Count      int                `json:"count"`
	Documents  []*models.Document `json:"documents"`
}

// JSONGenerator serializes records as JSON
type JSONGenerator struct {
	maxBytes int64
	logger   arbor.ILogger
}

// NewJSONGenerator creates a JSON generator with the given output ceiling
func NewJSONGenerator(maxBytes int64, logger arbor.ILogger) interfaces.Generator {
	return &JSONGenerator{maxBytes: maxBytes, logger: logger}
}

func (g *JSONGenerator) Format() string {
	return models.FormatJSON
}

func (g *JSONGenerator) MaxBytes() int64 {
	return g.maxBytes
}

// EstimateSize sums content and title lengths plus per-record envelope
// overhead. Deliberately cheap; the exact size is checked after generation.
func (g *JSONGenerator) EstimateSize(records []*models.Document) int64 {
	var size int64 = 64
	for _, doc := range records {
		size += int64(len(doc.Content)) + int64(len(doc.Title)) + int64(len(doc.Excerpt)) + 256
	}
	return size
}

func (g *JSONGenerator) Generate(records []*models.Document, opts models.GeneratorOptions) ([]byte, error) {
	var out []byte
	var err error

	if opts.IncludeMetadata {
		out, err = json.MarshalIndent(jsonExportEnvelope{
			ExportedAt: time.Now(),
			Count:      len(records),
			Documents:  records,
		}, "", "  ")
	} else {
		out, err = json.MarshalIndent(records, "", "  ")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to serialize documents: %w", err)
	}

	if int64(len(out)) > g.maxBytes {
		return nil, &models.PayloadTooLargeError{
			Format: models.FormatJSON,
			Size:   int64(len(out)),
			Limit:  g.maxBytes,
		}
	}

	g.logger.Debug().Int("bytes", len(out)).Int("records", len(records)).Msg("JSON export generated")
	return out, nil
}
