package badger

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scribe/internal/interfaces"
	"github.com/ternarybob/scribe/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// ExportStorage implements the ExportStorage interface for Badger. Archives
// are short-lived; PurgeExpired is run on a schedule.
type ExportStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewExportStorage creates a new ExportStorage instance
func NewExportStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ExportStorage {
	return &ExportStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ExportStorage) SaveArchive(archive *models.ExportArchive) error {
	if archive.ID == "" {
		return fmt.Errorf("archive ID is required")
	}
	if err := s.db.Store().Upsert(archive.ID, archive); err != nil {
		return fmt.Errorf("failed to save export archive: %w", err)
	}
	return nil
}

func (s *ExportStorage) GetArchive(id string) (*models.ExportArchive, error) {
	var archive models.ExportArchive
	if err := s.db.Store().Get(id, &archive); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, &models.NotFoundError{Resource: "export archive", ID: id}
		}
		return nil, fmt.Errorf("failed to get export archive: %w", err)
	}
	return &archive, nil
}

func (s *ExportStorage) DeleteArchive(id string) error {
	if err := s.db.Store().Delete(id, &models.ExportArchive{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete export archive: %w", err)
	}
	return nil
}

// PurgeExpired deletes all archives past their retention window and returns
// the number removed.
func (s *ExportStorage) PurgeExpired() (int, error) {
	now := time.Now()

	var expired []models.ExportArchive
	if err := s.db.Store().Find(&expired, badgerhold.Where("ExpiresAt").Lt(now)); err != nil {
		return 0, fmt.Errorf("failed to find expired archives: %w", err)
	}

	purged := 0
	for _, archive := range expired {
		if err := s.DeleteArchive(archive.ID); err != nil {
			s.logger.Warn().Err(err).Str("archive_id", archive.ID).Msg("Failed to purge expired archive")
			continue
		}
		purged++
	}

	if purged > 0 {
		s.logger.Debug().Int("purged", purged).Msg("Expired export archives purged")
	}
	return purged, nil
}
