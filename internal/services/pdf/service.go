package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scribe/internal/interfaces"
	"github.com/ternarybob/scribe/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// letterTemplate holds the visual styling for one PDF template variant
type letterTemplate struct {
	bodyFont    string
	bodySize    float64
	titleSize   float64
	accentR     int
	accentG     int
	accentB     int
	headerRule  bool // Draw a rule under the document header
	signOff     string
}

var letterTemplates = map[string]letterTemplate{
	models.TemplateFormal: {
		bodyFont: "Times", bodySize: 11, titleSize: 16,
		accentR: 40, accentG: 40, accentB: 40, headerRule: true,
	},
	models.TemplateBusiness: {
		bodyFont: "Helvetica", bodySize: 10, titleSize: 15,
		accentR: 25, accentG: 70, accentB: 130, headerRule: true,
	},
	models.TemplatePersonal: {
		bodyFont: "Helvetica", bodySize: 11, titleSize: 14,
		accentR: 90, accentG: 90, accentB: 90, headerRule: false,
	},
	models.TemplateThankYou: {
		bodyFont: "Times", bodySize: 11, titleSize: 15,
		accentR: 140, accentG: 80, accentB: 30, headerRule: false,
		signOff: "With gratitude,",
	},
	models.TemplateInvitation: {
		bodyFont: "Times", bodySize: 11, titleSize: 17,
		accentR: 100, accentG: 40, accentB: 110, headerRule: true,
		signOff: "We look forward to seeing you.",
	},
}

// Service implements interfaces.PDFService
type Service struct {
	logger arbor.ILogger
}

// Compile-time assertion
var _ interfaces.PDFService = (*Service)(nil)

// NewService creates a new PDF service
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		logger: logger,
	}
}

// RenderDocuments renders each section as a paginated document part using
// the given template. An unknown or empty template falls back to formal.
func (s *Service) RenderDocuments(sections []interfaces.PDFSection, template string) ([]byte, error) {
	tpl, ok := letterTemplates[template]
	if !ok {
		tpl = letterTemplates[models.TemplateFormal]
	}

	s.logger.Debug().
		Int("sections", len(sections)).
		Str("template", template).
		Msg("Rendering PDF")

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 18)

	md := goldmark.New(
		goldmark.WithExtensions(extension.Table, extension.Strikethrough),
	)

	for i, section := range sections {
		pdf.AddPage()
		s.renderHeader(pdf, tpl, section)

		source := []byte(section.Markdown)
		doc := md.Parser().Parse(text.NewReader(source))

		r := &renderer{
			pdf:    pdf,
			source: source,
			font:   tpl.bodyFont,
			size:   tpl.bodySize,
		}
		r.setFont()
		if err := ast.Walk(doc, r.walk); err != nil {
			s.logger.Error().Err(err).Int("section", i).Msg("Failed to render PDF section")
			return nil, fmt.Errorf("failed to render PDF section %d: %w", i, err)
		}

		if tpl.signOff != "" {
			pdf.Ln(12)
			pdf.SetFont(tpl.bodyFont, "I", tpl.bodySize)
			pdf.Write(5, tpl.signOff)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}

	s.logger.Debug().Int("pdf_size", buf.Len()).Msg("PDF generated")
	return buf.Bytes(), nil
}

// renderHeader draws the document title band and metadata line
func (s *Service) renderHeader(pdf *fpdf.Fpdf, tpl letterTemplate, section interfaces.PDFSection) {
	pdf.SetTextColor(tpl.accentR, tpl.accentG, tpl.accentB)
	pdf.SetFont(tpl.bodyFont, "B", tpl.titleSize)
	pdf.MultiCell(0, 9, section.Title, "", "L", false)

	meta := section.Category
	if len(section.Tags) > 0 {
		if meta != "" {
			meta += " · "
		}
		meta += strings.Join(section.Tags, ", ")
	}
	if meta != "" {
		pdf.SetFont(tpl.bodyFont, "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.MultiCell(0, 4, meta, "", "L", false)
	}

	if tpl.headerRule {
		pdf.SetDrawColor(tpl.accentR, tpl.accentG, tpl.accentB)
		y := pdf.GetY() + 2
		pdf.Line(18, y, 192, y)
		pdf.SetY(y + 4)
	} else {
		pdf.Ln(4)
	}

	pdf.SetTextColor(0, 0, 0)
}

// renderer walks the goldmark AST and writes to the fpdf page
type renderer struct {
	pdf    *fpdf.Fpdf
	source []byte
	font   string
	size   float64
	bold   bool
	italic bool
	depth  int // List nesting level
}

func (r *renderer) setFont() {
	style := ""
	if r.bold {
		style += "B"
	}
	if r.italic {
		style += "I"
	}
	r.pdf.SetFont(r.font, style, r.size)
}

func (r *renderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		if entering {
			r.pdf.Ln(5)
			size := r.size + float64(8-2*node.Level)
			if size < r.size {
				size = r.size
			}
			r.pdf.SetFont(r.font, "B", size)
		} else {
			r.pdf.Ln(6)
			r.setFont()
		}
	case *ast.Paragraph:
		if !entering {
			r.pdf.Ln(6)
		}
	case *ast.Text:
		if entering {
			r.pdf.Write(5, string(node.Text(r.source)))
			if node.SoftLineBreak() || node.HardLineBreak() {
				r.pdf.Ln(5)
			}
		}
	case *ast.Emphasis:
		if node.Level == 2 {
			r.bold = entering
		} else {
			r.italic = entering
		}
		r.setFont()
	case *ast.CodeSpan:
		if entering {
			r.pdf.SetFont("Courier", "", r.size)
			for c := node.FirstChild(); c != nil; c = c.NextSibling() {
				if txt, ok := c.(*ast.Text); ok {
					r.pdf.Write(5, string(txt.Segment.Value(r.source)))
				}
			}
		} else {
			r.setFont()
		}
		return ast.WalkSkipChildren, nil
	case *ast.FencedCodeBlock:
		if entering {
			r.writeCodeLines(node.Lines())
			return ast.WalkSkipChildren, nil
		}
	case *ast.CodeBlock:
		if entering {
			r.writeCodeLines(node.Lines())
			return ast.WalkSkipChildren, nil
		}
	case *ast.List:
		if entering {
			r.depth++
		} else {
			r.depth--
			if r.depth == 0 {
				r.pdf.Ln(2)
			}
		}
	case *ast.ListItem:
		if entering {
			r.pdf.Ln(5)
			r.pdf.SetX(18 + float64(r.depth)*5)
			r.pdf.Write(5, "- ")
		}
	case *ast.ThematicBreak:
		if entering {
			r.pdf.Ln(3)
			r.pdf.SetDrawColor(180, 180, 180)
			r.pdf.Line(30, r.pdf.GetY(), 180, r.pdf.GetY())
			r.pdf.Ln(3)
		}
	case *ast.Blockquote:
		if entering {
			r.italic = true
		} else {
			r.italic = false
		}
		r.setFont()
	}
	return ast.WalkContinue, nil
}

func (r *renderer) writeCodeLines(lines *text.Segments) {
	r.pdf.Ln(2)
	r.pdf.SetFont("Courier", "", r.size-1)
	r.pdf.SetFillColor(245, 245, 245)
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		r.pdf.MultiCell(0, 5, strings.TrimRight(string(line.Value(r.source)), "\n"), "", "L", true)
	}
	r.pdf.SetFillColor(255, 255, 255)
	r.setFont()
	r.pdf.Ln(2)
}
