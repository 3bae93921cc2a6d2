package importer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scribe/internal/interfaces"
	"github.com/ternarybob/scribe/internal/models"
)

// jsonDocument is the accepted shape of one imported JSON object
type jsonDocument struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Status   string   `json:"status"`
}

// JSONParser parses JSON uploads. Accepted top-level shapes: a single
// object, an array of objects, or an object with a "documents" array.
type JSONParser struct {
	logger arbor.ILogger
}

// NewJSONParser creates a new JSON parser
func NewJSONParser(logger arbor.ILogger) interfaces.Parser {
	return &JSONParser{logger: logger}
}

func (p *JSONParser) Format() string {
	return models.FormatJSON
}

func (p *JSONParser) Parse(data []byte, limits models.ParseLimits) (*models.ParseResult, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &models.ParseError{Format: models.FormatJSON, Reason: err.Error()}
	}

	// Resolve the top-level shape into a list of candidate objects
	var items []interface{}
	switch v := raw.(type) {
	case []interface{}:
		items = v
	case map[string]interface{}:
		if docs, ok := v["documents"]; ok {
			arr, ok := docs.([]interface{})
			if !ok {
				return &models.ParseResult{
					Errors: []string{"'documents' field must be an array"},
				}, nil
			}
			items = arr
		} else {
			// Single document object
			items = []interface{}{v}
		}
	default:
		// Valid JSON but not a shape we understand: file-level error,
		// not a ParseError
		return &models.ParseResult{
			Errors: []string{"unrecognized JSON structure: expected an object, an array, or an object with a 'documents' array"},
		}, nil
	}

	result := &models.ParseResult{}
	for i, item := range items {
		if limits.MaxDocuments > 0 && len(result.Records) >= limits.MaxDocuments {
			result.Errors = append(result.Errors,
				fmt.Sprintf("document limit reached: only the first %d documents were imported", limits.MaxDocuments))
			break
		}

		obj, ok := item.(map[string]interface{})
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("document %d: not a JSON object", i+1))
			continue
		}

		// Re-marshal through the typed shape to ignore unknown fields
		encoded, err := json.Marshal(obj)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("document %d: %v", i+1, err))
			continue
		}
		var doc jsonDocument
		if err := json.Unmarshal(encoded, &doc); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("document %d: %v", i+1, err))
			continue
		}

		if strings.TrimSpace(doc.Title) == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("document %d: missing required field 'title'", i+1))
			continue
		}
		if _, present := obj["content"]; !present {
			result.Errors = append(result.Errors, fmt.Sprintf("document %d (%s): missing required field 'content'", i+1, doc.Title))
			continue
		}
		if limits.MaxContentChars > 0 && len([]rune(doc.Content)) > limits.MaxContentChars {
			result.Errors = append(result.Errors,
				fmt.Sprintf("document %d (%s): content exceeds %d characters", i+1, doc.Title, limits.MaxContentChars))
			continue
		}

		result.Records = append(result.Records, &models.Document{
			Title:    strings.TrimSpace(doc.Title),
			Content:  doc.Content,
			Category: doc.Category,
			Tags:     doc.Tags,
			Status:   doc.Status,
		})
	}

	p.logger.Debug().
		Int("records", len(result.Records)).
		Int("errors", len(result.Errors)).
		Msg("JSON file parsed")

	return result, nil
}
