package importer

import (
	"context"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scribe/internal/common"
	"github.com/ternarybob/scribe/internal/interfaces"
	"github.com/ternarybob/scribe/internal/models"
	"github.com/ternarybob/scribe/internal/services/content"
)

// Skip reasons reported in per-record outcomes
const (
	ReasonDuplicate = "duplicate"
)

// Orchestrator runs batch imports. Records are processed sequentially in
// parser order so de-duplication stays correct against records created
// earlier in the same batch. One record's failure never aborts the batch.
type Orchestrator struct {
	storage   interfaces.DocumentStorage
	processor *content.Processor
	logger    arbor.ILogger
}

// Compile-time assertion
var _ interfaces.ImportService = (*Orchestrator)(nil)

// NewOrchestrator creates a new batch import orchestrator
func NewOrchestrator(storage interfaces.DocumentStorage, processor *content.Processor, logger arbor.ILogger) *Orchestrator {
	return &Orchestrator{
		storage:   storage,
		processor: processor,
		logger:    logger,
	}
}

// ImportBatch decides insert, update, or skip for each candidate record.
// Every candidate lands in exactly one outcome bucket. Duplicate policy:
// a record matches when the owner already has a document with the same
// title. UpdateExisting takes precedence over SkipDuplicates when both are
// set.
func (o *Orchestrator) ImportBatch(ctx context.Context, records []*models.Document, ownerID string, opts models.ImportOptions) (*models.ImportResult, error) {
	result := &models.ImportResult{
		Successful: []*models.Document{},
		Skipped:    []models.SkippedRecord{},
		Failed:     []models.FailedRecord{},
	}

	for _, record := range records {
		result.TotalProcessed++

		if strings.TrimSpace(record.Title) == "" {
			result.Failed = append(result.Failed, models.FailedRecord{
				Record: record,
				Error:  "title is required",
			})
			continue
		}

		o.applyDefaults(record, opts)

		existing, err := o.storage.GetDocumentByTitle(ownerID, record.Title)
		if err != nil && !models.IsNotFound(err) {
			result.Failed = append(result.Failed, models.FailedRecord{
				Record: record,
				Error:  (&models.PersistenceError{Op: "lookup", Err: err}).Error(),
			})
			continue
		}

		if existing != nil {
			switch {
			case opts.UpdateExisting:
				if err := o.updateExisting(existing, record); err != nil {
					result.Failed = append(result.Failed, models.FailedRecord{
						Record: record,
						Error:  err.Error(),
					})
					continue
				}
				result.Successful = append(result.Successful, existing)
				continue
			case opts.SkipDuplicates:
				result.Skipped = append(result.Skipped, models.SkippedRecord{
					Record: record,
					Reason: ReasonDuplicate,
				})
				continue
			}
			// Both flags off: a new record is created alongside the duplicate
		}

		if err := o.insertNew(record, ownerID); err != nil {
			result.Failed = append(result.Failed, models.FailedRecord{
				Record: record,
				Error:  err.Error(),
			})
			continue
		}
		result.Successful = append(result.Successful, record)
	}

	o.logger.Info().
		Str("owner_id", ownerID).
		Int("total", result.TotalProcessed).
		Int("imported", len(result.Successful)).
		Int("skipped", len(result.Skipped)).
		Int("failed", len(result.Failed)).
		Msg("Batch import completed")

	return result, nil
}

// applyDefaults fills batch-level category and tags onto candidates that
// did not carry their own.
func (o *Orchestrator) applyDefaults(record *models.Document, opts models.ImportOptions) {
	if record.Category == "" && opts.Category != "" {
		record.Category = opts.Category
	}
	if len(record.Tags) == 0 && len(opts.Tags) > 0 {
		record.Tags = opts.Tags
	}
}

func (o *Orchestrator) insertNew(record *models.Document, ownerID string) error {
	record.ID = common.NewDocumentID()
	record.OwnerID = ownerID
	record.Category = models.NormalizeCategory(record.Category)
	record.Status = models.NormalizeStatus(record.Status)
	record.Excerpt = o.processor.Excerpt(record.Content)
	record.WordCount = o.processor.WordCount(record.Content)

	if err := o.storage.SaveDocument(record); err != nil {
		return &models.PersistenceError{Op: "insert", Err: err}
	}
	return nil
}

// updateExisting overwrites content, category, and tags of the matched
// record and recomputes the derived fields. Title and owner stay untouched.
func (o *Orchestrator) updateExisting(existing, record *models.Document) error {
	existing.Content = record.Content
	if record.Category != "" {
		existing.Category = models.NormalizeCategory(record.Category)
	}
	if len(record.Tags) > 0 {
		existing.Tags = record.Tags
	}
	existing.Excerpt = o.processor.Excerpt(existing.Content)
	existing.WordCount = o.processor.WordCount(existing.Content)

	if err := o.storage.SaveDocument(existing); err != nil {
		return &models.PersistenceError{Op: "update", Err: err}
	}
	return nil
}
