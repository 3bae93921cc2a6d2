package importer

import (
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scribe/internal/interfaces"
	"github.com/ternarybob/scribe/internal/models"
)

// Separator tokens that split a plain-text upload into multiple documents.
// A separator must stand alone on its line.
var txtSeparators = []string{"---", "===", "###", "***"}

const maxInlineTitleLength = 100

// TXTParser parses plain-text uploads. The file is split on separator lines;
// a file without separators becomes a single document. Per segment, the
// first line becomes the title when it is short enough or matches a title
// pattern ("# Title" or "Title: ..."); otherwise a placeholder title is
// generated and the whole segment becomes content.
type TXTParser struct {
	logger arbor.ILogger
}

// NewTXTParser creates a new plain-text parser
func NewTXTParser(logger arbor.ILogger) interfaces.Parser {
	return &TXTParser{logger: logger}
}

func (p *TXTParser) Format() string {
	return models.FormatTXT
}

func (p *TXTParser) Parse(data []byte, limits models.ParseLimits) (*models.ParseResult, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return nil, &models.ParseError{Format: models.FormatTXT, Reason: "file is empty"}
	}

	segments := splitSegments(text)

	result := &models.ParseResult{}
	for i, segment := range segments {
		if limits.MaxDocuments > 0 && len(result.Records) >= limits.MaxDocuments {
			result.Errors = append(result.Errors,
				fmt.Sprintf("document limit reached: only the first %d documents were imported", limits.MaxDocuments))
			break
		}

		title, content := extractTitle(segment, i+1)
		if limits.MaxContentChars > 0 && len([]rune(content)) > limits.MaxContentChars {
			result.Errors = append(result.Errors,
				fmt.Sprintf("segment %d (%s): content exceeds %d characters", i+1, title, limits.MaxContentChars))
			continue
		}

		result.Records = append(result.Records, &models.Document{
			Title:   title,
			Content: content,
		})
	}

	p.logger.Debug().
		Int("segments", len(segments)).
		Int("records", len(result.Records)).
		Msg("TXT file parsed")

	return result, nil
}

// splitSegments splits the text on separator lines, dropping empty segments
func splitSegments(text string) []string {
	var segments []string
	var current []string

	flush := func() {
		segment := strings.TrimSpace(strings.Join(current, "\n"))
		if segment != "" {
			segments = append(segments, segment)
		}
		current = current[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		if isSeparatorLine(line) {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()

	if len(segments) == 0 {
		segments = []string{strings.TrimSpace(text)}
	}
	return segments
}

func isSeparatorLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, sep := range txtSeparators {
		if trimmed == sep {
			return true
		}
	}
	return false
}

// extractTitle decides the title for one segment. Returns the title and the
// remaining content.
func extractTitle(segment string, index int) (string, string) {
	lines := strings.SplitN(segment, "\n", 2)
	firstLine := strings.TrimSpace(lines[0])
	rest := ""
	if len(lines) > 1 {
		rest = strings.TrimSpace(lines[1])
	}

	// Markdown heading pattern: "# Title"
	if strings.HasPrefix(firstLine, "# ") {
		if title := strings.TrimSpace(firstLine[2:]); title != "" {
			return title, rest
		}
	}

	// Label pattern: "Title: ..."
	if strings.HasPrefix(strings.ToLower(firstLine), "title:") {
		if title := strings.TrimSpace(firstLine[len("title:"):]); title != "" {
			return title, rest
		}
	}

	// Short first line doubles as the title
	if rest != "" && len([]rune(firstLine)) <= maxInlineTitleLength {
		return firstLine, rest
	}

	// No usable title: placeholder, whole segment becomes content
	return fmt.Sprintf("Imported Document %d", index), segment
}
