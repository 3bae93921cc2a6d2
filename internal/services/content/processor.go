package content

import (
	"regexp"
	"strings"
	"unicode"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
)

const excerptLength = 200

// Processor derives plain text, excerpts, and word counts from document
// content, and converts HTML bodies to markdown for PDF rendering.
type Processor struct {
	logger arbor.ILogger
}

// NewProcessor creates a new content processor
func NewProcessor(logger arbor.ILogger) *Processor {
	return &Processor{
		logger: logger,
	}
}

// PlainText extracts readable text from document content. HTML bodies are
// parsed with goquery; plain bodies pass through with whitespace collapsed.
func (p *Processor) PlainText(content string) string {
	if content == "" {
		return ""
	}

	if !looksLikeHTML(content) {
		return collapseWhitespace(content)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		p.logger.Warn().Err(err).Msg("Failed to parse HTML content, using tag-strip fallback")
		return collapseWhitespace(stripHTMLTags(content))
	}

	doc.Find("script, style").Remove()
	return collapseWhitespace(doc.Text())
}

// Excerpt returns a short plain-text preview of the content
func (p *Processor) Excerpt(content string) string {
	text := p.PlainText(content)
	runes := []rune(text)
	if len(runes) <= excerptLength {
		return text
	}
	return strings.TrimSpace(string(runes[:excerptLength])) + "..."
}

// WordCount counts words in the content's plain text. Space-separated tokens
// count as one word each; CJK characters count individually since Korean and
// similar scripts do not reliably space-separate words.
func (p *Processor) WordCount(content string) int {
	text := p.PlainText(content)
	if text == "" {
		return 0
	}

	count := 0
	for _, field := range strings.Fields(text) {
		cjk := 0
		other := false
		for _, r := range field {
			if isCJK(r) {
				cjk++
			} else if unicode.IsLetter(r) || unicode.IsDigit(r) {
				other = true
			}
		}
		count += cjk
		if other || cjk == 0 {
			count++
		}
	}
	return count
}

// ToMarkdown converts HTML content to markdown. Non-HTML content passes
// through unchanged. Falls back to tag stripping when conversion fails or
// produces empty output.
func (p *Processor) ToMarkdown(content string) string {
	if content == "" || !looksLikeHTML(content) {
		return content
	}

	converter := md.NewConverter("", true, nil)
	converted, err := converter.ConvertString(content)
	if err != nil {
		p.logger.Warn().Err(err).Msg("HTML to markdown conversion failed, using fallback")
		return collapseWhitespace(stripHTMLTags(content))
	}

	if strings.TrimSpace(converted) == "" {
		p.logger.Warn().
			Int("html_length", len(content)).
			Msg("HTML to markdown conversion produced empty output, applying fallback")
		return collapseWhitespace(stripHTMLTags(content))
	}

	return converted
}

func looksLikeHTML(content string) bool {
	return strings.Contains(content, "<") && strings.Contains(content, ">")
}

var (
	tagRe   = regexp.MustCompile(`<[^>]*>`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// stripHTMLTags removes basic HTML tags for fallback cases
func stripHTMLTags(htmlStr string) string {
	stripped := tagRe.ReplaceAllString(htmlStr, " ")

	// Decode HTML entities (basic set)
	stripped = strings.ReplaceAll(stripped, "&amp;", "&")
	stripped = strings.ReplaceAll(stripped, "&lt;", "<")
	stripped = strings.ReplaceAll(stripped, "&gt;", ">")
	stripped = strings.ReplaceAll(stripped, "&quot;", "\"")
	stripped = strings.ReplaceAll(stripped, "&#39;", "'")
	stripped = strings.ReplaceAll(stripped, "&nbsp;", " ")

	return stripped
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Hangul, r) ||
		unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r)
}
