package common

import (
	"github.com/google/uuid"
)

// NewDocumentID generates a unique document ID with the "doc_" prefix
// Format: doc_<uuid>
func NewDocumentID() string {
	return "doc_" + uuid.New().String()
}

// NewExportID generates a unique export archive ID with the "exp_" prefix
// Format: exp_<uuid>
func NewExportID() string {
	return "exp_" + uuid.New().String()
}
