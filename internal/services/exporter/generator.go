package exporter

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scribe/internal/common"
	"github.com/ternarybob/scribe/internal/interfaces"
	"github.com/ternarybob/scribe/internal/models"
	"github.com/ternarybob/scribe/internal/services/content"
)

// GeneratorSet holds one generator per supported export format, resolved
// once per request at the entry point.
type GeneratorSet struct {
	generators map[string]interfaces.Generator
}

// NewGeneratorSet creates generators for all supported export formats with
// their configured output ceilings.
func NewGeneratorSet(cfg *common.ExportConfig, pdfService interfaces.PDFService, processor *content.Processor, logger arbor.ILogger) *GeneratorSet {
	set := &GeneratorSet{
		generators: make(map[string]interfaces.Generator),
	}
	for _, g := range []interfaces.Generator{
		NewJSONGenerator(cfg.MaxJSONBytes, logger),
		NewCSVGenerator(cfg.MaxCSVBytes, logger),
		NewPDFGenerator(cfg.MaxPDFBytes, pdfService, processor, logger),
	} {
		set.generators[g.Format()] = g
	}
	return set
}

// ForFormat returns the generator for the requested format, or nil when the
// format is not supported.
func (s *GeneratorSet) ForFormat(format string) interfaces.Generator {
	return s.generators[format]
}

// Formats returns the supported export formats
func (s *GeneratorSet) Formats() []string {
	return []string{models.FormatJSON, models.FormatCSV, models.FormatPDF}
}
