package models

import (
	"time"
)

// Document categories. Imported records with an unknown category fall back to
// CategoryOther.
const (
	CategoryEmail    = "email"
	CategoryLetter   = "letter"
	CategoryCreative = "creative"
	CategoryBusiness = "business"
	CategoryPersonal = "personal"
	CategoryDraft    = "draft"
	CategoryOther    = "other"
)

// Document lifecycle states
const (
	StatusDraft     = "draft"
	StatusCompleted = "completed"
	StatusArchived  = "archived"
)

// Document represents a single writing document owned by one user.
// Excerpt and WordCount are derived from Content and are never set by
// callers directly; the document service recomputes them on every write.
type Document struct {
	ID      string `json:"id"` // doc_<uuid>; empty for import candidates
	OwnerID string `json:"owner_id" badgerhold:"index"`

	Title   string `json:"title"`
	Content string `json:"content"` // Rich-text/HTML body; may be empty

	// Derived from Content
	Excerpt   string `json:"excerpt"`
	WordCount int    `json:"word_count"`

	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Status   string   `json:"status"`

	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	LastModifiedAt time.Time `json:"last_modified_at"`
}

// ValidCategories is the set of accepted document categories
var ValidCategories = map[string]bool{
	CategoryEmail:    true,
	CategoryLetter:   true,
	CategoryCreative: true,
	CategoryBusiness: true,
	CategoryPersonal: true,
	CategoryDraft:    true,
	CategoryOther:    true,
}

// ValidStatuses is the set of accepted lifecycle states
var ValidStatuses = map[string]bool{
	StatusDraft:     true,
	StatusCompleted: true,
	StatusArchived:  true,
}

// NormalizeCategory maps arbitrary input to a valid category, defaulting to
// CategoryOther.
func NormalizeCategory(category string) string {
	if ValidCategories[category] {
		return category
	}
	return CategoryOther
}

// NormalizeStatus maps arbitrary input to a valid status, defaulting to
// StatusDraft.
func NormalizeStatus(status string) string {
	if ValidStatuses[status] {
		return status
	}
	return StatusDraft
}

// DocumentStats represents statistics about a user's documents
type DocumentStats struct {
	TotalDocuments      int            `json:"total_documents"`
	DocumentsByCategory map[string]int `json:"documents_by_category"`
	DocumentsByStatus   map[string]int `json:"documents_by_status"`
	TotalWords          int            `json:"total_words"`
	LastUpdated         time.Time      `json:"last_updated"`
}
