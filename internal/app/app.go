package app

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scribe/internal/common"
	"github.com/ternarybob/scribe/internal/handlers"
	"github.com/ternarybob/scribe/internal/interfaces"
	"github.com/ternarybob/scribe/internal/services/content"
	"github.com/ternarybob/scribe/internal/services/documents"
	"github.com/ternarybob/scribe/internal/services/exporter"
	"github.com/ternarybob/scribe/internal/services/guard"
	"github.com/ternarybob/scribe/internal/services/importer"
	"github.com/ternarybob/scribe/internal/services/pdf"
	"github.com/ternarybob/scribe/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Pipeline services
	ContentProcessor *content.Processor
	DocumentService  interfaces.DocumentService
	GuardService     interfaces.GuardService
	ParserSet        *importer.ParserSet
	ImportService    interfaces.ImportService
	PDFService       interfaces.PDFService
	GeneratorSet     *exporter.GeneratorSet
	ExportService    interfaces.ExportService

	// Scheduled cleanup of expired export archives
	cleanupCron *cron.Cron

	// HTTP handlers
	APIHandler      *handlers.APIHandler
	DocumentHandler *handlers.DocumentHandler
	ImportHandler   *handlers.ImportHandler
	ExportHandler   *handlers.ExportHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	storageManager, err := badger.NewManager(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	app.StorageManager = storageManager

	documentStorage := storageManager.DocumentStorage()
	exportStorage := storageManager.ExportStorage()

	// Pipeline services
	app.ContentProcessor = content.NewProcessor(logger)
	app.DocumentService = documents.NewService(documentStorage, app.ContentProcessor, logger)
	app.GuardService = guard.NewService(&cfg.Import, logger)
	app.ParserSet = importer.NewParserSet(logger)
	app.ImportService = importer.NewOrchestrator(documentStorage, app.ContentProcessor, logger)
	app.PDFService = pdf.NewService(logger)
	app.GeneratorSet = exporter.NewGeneratorSet(&cfg.Export, app.PDFService, app.ContentProcessor, logger)
	app.ExportService = exporter.NewAssembler(documentStorage, exportStorage, app.GeneratorSet, &cfg.Export, logger)

	// HTTP handlers
	app.APIHandler = handlers.NewAPIHandler(storageManager)
	app.DocumentHandler = handlers.NewDocumentHandler(app.DocumentService, logger)
	app.ImportHandler = handlers.NewImportHandler(app.GuardService, app.ParserSet, app.ImportService, &cfg.Import, logger)
	app.ExportHandler = handlers.NewExportHandler(app.GuardService, app.ExportService, logger)

	if err := app.startCleanupJob(); err != nil {
		storageManager.Close()
		return nil, err
	}

	logger.Info().Msg("Application initialized")

	return app, nil
}

// startCleanupJob schedules the periodic purge of expired export archives
func (a *App) startCleanupJob() error {
	if !a.Config.Cleanup.Enabled {
		a.Logger.Debug().Msg("Archive cleanup disabled")
		return nil
	}

	c := cron.New(cron.WithSeconds())
	_, err := c.AddFunc(a.Config.Cleanup.Schedule, func() {
		purged, err := a.ExportService.PurgeExpired(context.Background())
		if err != nil {
			a.Logger.Error().Err(err).Msg("Archive purge failed")
			return
		}
		if purged > 0 {
			a.Logger.Info().Int("purged", purged).Msg("Expired export archives removed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule archive cleanup: %w", err)
	}

	c.Start()
	a.cleanupCron = c

	a.Logger.Info().Str("schedule", a.Config.Cleanup.Schedule).Msg("Archive cleanup scheduled")
	return nil
}

// Close releases application resources
func (a *App) Close() error {
	if a.cleanupCron != nil {
		ctx := a.cleanupCron.Stop()
		<-ctx.Done()
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("Failed to close storage")
			return err
		}
	}

	a.Logger.Info().Msg("Application closed")
	return nil
}
