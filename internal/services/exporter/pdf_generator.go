package exporter

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scribe/internal/interfaces"
	"github.com/ternarybob/scribe/internal/models"
	"github.com/ternarybob/scribe/internal/services/content"
)

// PDFGenerator renders records into a paginated PDF via the PDF service.
// HTML bodies are converted to markdown before rendering.
type PDFGenerator struct {
	maxBytes   int64
	pdfService interfaces.PDFService
	processor  *content.Processor
	logger     arbor.ILogger
}

// NewPDFGenerator creates a PDF generator with the given output ceiling
func NewPDFGenerator(maxBytes int64, pdfService interfaces.PDFService, processor *content.Processor, logger arbor.ILogger) interfaces.Generator {
	return &PDFGenerator{
		maxBytes:   maxBytes,
		pdfService: pdfService,
		processor:  processor,
		logger:     logger,
	}
}

func (g *PDFGenerator) Format() string {
	return models.FormatPDF
}

func (g *PDFGenerator) MaxBytes() int64 {
	return g.maxBytes
}

// EstimateSize sums content lengths; rendering overhead is bounded by the
// post-generation size check.
func (g *PDFGenerator) EstimateSize(records []*models.Document) int64 {
	var size int64 = 1024
	for _, doc := range records {
		size += int64(len(doc.Content)) + int64(len(doc.Title))
	}
	return size
}

func (g *PDFGenerator) Generate(records []*models.Document, opts models.GeneratorOptions) ([]byte, error) {
	sections := make([]interfaces.PDFSection, len(records))
	for i, doc := range records {
		sections[i] = interfaces.PDFSection{
			Title:    doc.Title,
			Markdown: g.processor.ToMarkdown(doc.Content),
			Category: doc.Category,
			Tags:     doc.Tags,
		}
	}

	out, err := g.pdfService.RenderDocuments(sections, opts.Template)
	if err != nil {
		return nil, err
	}

	if int64(len(out)) > g.maxBytes {
		return nil, &models.PayloadTooLargeError{
			Format: models.FormatPDF,
			Size:   int64(len(out)),
			Limit:  g.maxBytes,
		}
	}

	g.logger.Debug().Int("bytes", len(out)).Int("records", len(records)).Msg("PDF export generated")
	return out, nil
}
