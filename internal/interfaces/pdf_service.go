package interfaces

// PDFService renders markdown content into paginated PDF bytes
type PDFService interface {
	RenderDocuments(sections []PDFSection, template string) ([]byte, error)
}

// PDFSection is one document rendered into the PDF output
type PDFSection struct {
	Title    string
	Markdown string
	Category string
	Tags     []string
}
