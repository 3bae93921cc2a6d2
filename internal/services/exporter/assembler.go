package exporter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scribe/internal/common"
	"github.com/ternarybob/scribe/internal/interfaces"
	"github.com/ternarybob/scribe/internal/models"
)

const defaultArchiveTTL = 30 * time.Minute

// Assembler implements interfaces.ExportService. It resolves the requested
// record set, runs the matching generator, and stores the result as a
// download archive.
type Assembler struct {
	documents  interfaces.DocumentStorage
	archives   interfaces.ExportStorage
	generators *GeneratorSet
	archiveTTL time.Duration
	logger     arbor.ILogger
}

// Compile-time assertion
var _ interfaces.ExportService = (*Assembler)(nil)

// NewAssembler creates a new export assembler
func NewAssembler(documents interfaces.DocumentStorage, archives interfaces.ExportStorage, generators *GeneratorSet, cfg *common.ExportConfig, logger arbor.ILogger) *Assembler {
	ttl := defaultArchiveTTL
	if cfg != nil && cfg.ArchiveTTL != "" {
		if parsed, err := time.ParseDuration(cfg.ArchiveTTL); err == nil && parsed > 0 {
			ttl = parsed
		} else if err != nil {
			logger.Warn().Str("archive_ttl", cfg.ArchiveTTL).Msg("Invalid archive TTL, using default")
		}
	}

	return &Assembler{
		documents:  documents,
		archives:   archives,
		generators: generators,
		archiveTTL: ttl,
		logger:     logger,
	}
}

// AssembleExport resolves the caller's record set and produces a download
// archive. Ids not found or not owned by the caller are silently excluded.
// Fails with NotFoundError when the resolved set is empty, and with
// PayloadTooLargeError when the estimated or actual output exceeds the
// format ceiling; the estimate check runs before any generation work.
func (a *Assembler) AssembleExport(ctx context.Context, ownerID string, req *models.ExportRequest) (*models.ExportArchive, error) {
	generator := a.generators.ForFormat(req.Format)
	if generator == nil {
		return nil, &models.ValidationError{Field: "format", Message: fmt.Sprintf("unsupported export format: %s", req.Format)}
	}

	records, err := a.resolveRecords(ownerID, req.DocumentIDs)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &models.NotFoundError{Resource: "documents"}
	}

	includeContent := req.IncludeContent == nil || *req.IncludeContent
	if !includeContent {
		// Metadata-only export: blank the bodies on copies so stored
		// records are untouched
		blanked := make([]*models.Document, len(records))
		for i, doc := range records {
			clone := *doc
			clone.Content = ""
			blanked[i] = &clone
		}
		records = blanked
	}

	opts := models.GeneratorOptions{
		IncludeMetadata: req.IncludeMetadata == nil || *req.IncludeMetadata,
		Template:        req.Template,
	}

	job := &models.ExportJob{
		OwnerID: ownerID,
		Format:  req.Format,
		Records: records,
		Options: opts,
	}

	// Fail fast on the cheap estimate before the expensive generation step
	if estimate := generator.EstimateSize(job.Records); estimate > generator.MaxBytes() {
		return nil, &models.PayloadTooLargeError{
			Format:    req.Format,
			Size:      estimate,
			Limit:     generator.MaxBytes(),
			Estimated: true,
		}
	}

	out, err := generator.Generate(job.Records, job.Options)
	if err != nil {
		return nil, err
	}

	checksum := sha256.Sum256(out)
	now := time.Now()
	archive := &models.ExportArchive{
		ID:        common.NewExportID(),
		OwnerID:   ownerID,
		Format:    req.Format,
		FileName:  fmt.Sprintf("documents-%s.%s", now.Format("20060102-150405"), req.Format),
		Bytes:     out,
		Checksum:  hex.EncodeToString(checksum[:]),
		SizeBytes: int64(len(out)),
		ItemCount: len(records),
		CreatedAt: now,
		ExpiresAt: now.Add(a.archiveTTL),
	}

	if err := a.archives.SaveArchive(archive); err != nil {
		return nil, &models.PersistenceError{Op: "save archive", Err: err}
	}

	a.logger.Info().
		Str("archive_id", archive.ID).
		Str("owner_id", ownerID).
		Str("format", req.Format).
		Int("records", len(records)).
		Int64("bytes", archive.SizeBytes).
		Msg("Export archive created")

	return archive, nil
}

// GetArchive fetches a download archive; expired archives behave as missing
func (a *Assembler) GetArchive(ctx context.Context, id string) (*models.ExportArchive, error) {
	archive, err := a.archives.GetArchive(id)
	if err != nil {
		return nil, err
	}
	if archive.Expired(time.Now()) {
		return nil, &models.NotFoundError{Resource: "export archive", ID: id}
	}
	return archive, nil
}

// PurgeExpired removes archives past their retention window
func (a *Assembler) PurgeExpired(ctx context.Context) (int, error) {
	return a.archives.PurgeExpired()
}

// resolveRecords fetches the requested ids (silently dropping unknown and
// foreign ones) or every record the owner has when no ids were given.
func (a *Assembler) resolveRecords(ownerID string, ids []string) ([]*models.Document, error) {
	if len(ids) > 0 {
		records, err := a.documents.GetDocuments(ownerID, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve documents: %w", err)
		}
		return records, nil
	}
	records, err := a.documents.ListDocuments(ownerID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return records, nil
}

