package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scribe/internal/interfaces"
	"github.com/ternarybob/scribe/internal/models"
)

// CSVParser parses CSV uploads. The first row is a header; "title" and
// "content" columns are required, "category", "tags", and "status" optional.
// The tags cell holds a comma-joined sub-list.
type CSVParser struct {
	logger arbor.ILogger
}

// NewCSVParser creates a new CSV parser
func NewCSVParser(logger arbor.ILogger) interfaces.Parser {
	return &CSVParser{logger: logger}
}

func (p *CSVParser) Format() string {
	return models.FormatCSV
}

func (p *CSVParser) Parse(data []byte, limits models.ParseLimits) (*models.ParseResult, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // Rows validated individually below

	header, err := reader.Read()
	if err != nil {
		return nil, &models.ParseError{Format: models.FormatCSV, Reason: "missing header row"}
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	titleIdx, hasTitle := columns["title"]
	contentIdx, hasContent := columns["content"]
	if !hasTitle || !hasContent {
		return nil, &models.ParseError{Format: models.FormatCSV, Reason: "header must include 'title' and 'content' columns"}
	}

	result := &models.ParseResult{}
	row := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			// Malformed row: record-level, the rest of the file still parses
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", row, err))
			continue
		}

		if limits.MaxDocuments > 0 && len(result.Records) >= limits.MaxDocuments {
			result.Errors = append(result.Errors,
				fmt.Sprintf("document limit reached: only the first %d documents were imported", limits.MaxDocuments))
			break
		}

		title := cell(record, titleIdx)
		content := cell(record, contentIdx)
		if strings.TrimSpace(title) == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: empty required column 'title'", row))
			continue
		}
		if strings.TrimSpace(content) == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d (%s): empty required column 'content'", row, title))
			continue
		}
		if limits.MaxContentChars > 0 && len([]rune(content)) > limits.MaxContentChars {
			result.Errors = append(result.Errors,
				fmt.Sprintf("row %d (%s): content exceeds %d characters", row, title, limits.MaxContentChars))
			continue
		}

		doc := &models.Document{
			Title:   strings.TrimSpace(title),
			Content: content,
		}
		if idx, ok := columns["category"]; ok {
			doc.Category = strings.TrimSpace(cell(record, idx))
		}
		if idx, ok := columns["tags"]; ok {
			doc.Tags = splitTags(cell(record, idx))
		}
		if idx, ok := columns["status"]; ok {
			doc.Status = strings.TrimSpace(cell(record, idx))
		}

		result.Records = append(result.Records, doc)
	}

	p.logger.Debug().
		Int("records", len(result.Records)).
		Int("errors", len(result.Errors)).
		Msg("CSV file parsed")

	return result, nil
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// splitTags parses a comma-joined tag list preserving order
func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}
