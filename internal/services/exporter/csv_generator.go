package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scribe/internal/interfaces"
	"github.com/ternarybob/scribe/internal/models"
)

// CSVGenerator serializes records as CSV, one row per record. Column names
// match what the CSV importer expects so an export round-trips through
// import. encoding/csv applies standard quoting to embedded commas, quotes,
// and newlines.
type CSVGenerator struct {
	maxBytes int64
	logger   arbor.ILogger
}

// NewCSVGenerator creates a CSV generator with the given output ceiling
func NewCSVGenerator(maxBytes int64, logger arbor.ILogger) interfaces.Generator {
	return &CSVGenerator{maxBytes: maxBytes, logger: logger}
}

func (g *CSVGenerator) Format() string {
	return models.FormatCSV
}

func (g *CSVGenerator) MaxBytes() int64 {
	return g.maxBytes
}

// EstimateSize sums field lengths plus per-row overhead
func (g *CSVGenerator) EstimateSize(records []*models.Document) int64 {
	var size int64 = 64
	for _, doc := range records {
		size += int64(len(doc.Content)) + int64(len(doc.Title)) + 64
	}
	return size
}

func (g *CSVGenerator) Generate(records []*models.Document, opts models.GeneratorOptions) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"title", "content", "category", "tags", "status"}
	if opts.IncludeMetadata {
		header = append(header, "word_count", "created_at", "updated_at")
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, doc := range records {
		row := []string{
			doc.Title,
			doc.Content,
			doc.Category,
			strings.Join(doc.Tags, ","),
			doc.Status,
		}
		if opts.IncludeMetadata {
			row = append(row,
				strconv.Itoa(doc.WordCount),
				doc.CreatedAt.Format(time.RFC3339),
				doc.UpdatedAt.Format(time.RFC3339),
			)
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row for %q: %w", doc.Title, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV output: %w", err)
	}

	out := buf.Bytes()
	if int64(len(out)) > g.maxBytes {
		return nil, &models.PayloadTooLargeError{
			Format: models.FormatCSV,
			Size:   int64(len(out)),
			Limit:  g.maxBytes,
		}
	}

	g.logger.Debug().Int("bytes", len(out)).Int("records", len(records)).Msg("CSV export generated")
	return out, nil
}
