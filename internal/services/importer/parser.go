package importer

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scribe/internal/interfaces"
	"github.com/ternarybob/scribe/internal/models"
)

// ParserSet holds one parser per supported import format. The parser is
// resolved once per request at the entry point.
type ParserSet struct {
	parsers map[string]interfaces.Parser
}

// NewParserSet creates parsers for all supported import formats
func NewParserSet(logger arbor.ILogger) *ParserSet {
	set := &ParserSet{
		parsers: make(map[string]interfaces.Parser),
	}
	for _, p := range []interfaces.Parser{
		NewJSONParser(logger),
		NewCSVParser(logger),
		NewTXTParser(logger),
	} {
		set.parsers[p.Format()] = p
	}
	return set
}

// ForFormat returns the parser for the declared format, or nil when the
// format is not supported.
func (s *ParserSet) ForFormat(format string) interfaces.Parser {
	return s.parsers[format]
}

// Formats returns the supported import formats
func (s *ParserSet) Formats() []string {
	return []string{models.FormatJSON, models.FormatCSV, models.FormatTXT}
}
