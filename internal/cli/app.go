package cli

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/teacher-archive/internal/models"
	"github.com/noah-isme/teacher-archive/internal/repository"
	"github.com/noah-isme/teacher-archive/internal/service"
	"github.com/noah-isme/teacher-archive/pkg/config"
	"github.com/noah-isme/teacher-archive/pkg/database"
	"github.com/noah-isme/teacher-archive/pkg/storage"
)

// App holds the opened archive and the services commands run against.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	DB      *sqlx.DB
	Store   *storage.LocalStorage
	Metrics *service.MetricsService

	Teachers  *service.TeacherService
	Education *service.EducationService
	Archive   *service.ArchiveService
	Reports   *service.ReportService
}

// Open connects to the database, ensures the schema and wires every service.
// Nothing else may touch the database before the schema check succeeds.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := database.NewSQLite(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open archive database %s: %w", cfg.Database.Path, err)
	}
	if err := repository.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialise archive schema: %w", err)
	}

	store, err := storage.NewLocalStorage(cfg.Artifacts.Root, cfg.Artifacts.MaxFileSizeBytes)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("prepare artifact root %s: %w", cfg.Artifacts.Root, err)
	}

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	validate := models.NewValidator()
	teacherRepo := repository.NewTeacherRepository(db)
	awardRepo := repository.NewAwardRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	mentoringRepo := repository.NewMentoringRepository(db)
	preview := service.PreviewSize{Width: cfg.Artifacts.PreviewWidth, Height: cfg.Artifacts.PreviewHeight}

	app := &App{
		Config:  cfg,
		Logger:  logger,
		DB:      db,
		Store:   store,
		Metrics: metrics,

		Teachers:  service.NewTeacherService(teacherRepo, store, preview, validate, logger),
		Education: service.NewEducationService(repository.NewEducationRecordRepository(db), store, validate, logger),
		Archive: service.NewArchiveService(db, service.ArchiveRepositories{
			Cascade:   repository.NewArchiveRepository(),
			Teachers:  teacherRepo,
			Awards:    awardRepo,
			Projects:  projectRepo,
			Mentoring: mentoringRepo,
		}, store, metrics, validate, logger),
		Reports: service.NewReportService(repository.NewReportRepository(db), awardRepo, projectRepo, mentoringRepo, logger),
	}

	logger.Debug("archive opened",
		zap.String("database", cfg.Database.Path),
		zap.String("artifact_root", store.Root()))
	return app, nil
}

// Close releases the database handle, logging the metrics snapshot when enabled.
func (a *App) Close() error {
	if a.Metrics != nil {
		snap := a.Metrics.Snapshot()
		a.Logger.Info("archive metrics",
			zap.Uint64("operations_total", snap.OperationsTotal),
			zap.Uint64("operation_failures", snap.OperationFailures),
			zap.Uint64("artifact_cleanup_failures", snap.ArtifactCleanupFailures),
			zap.Float64("avg_operation_ms", snap.AverageOperationDuration))
	}
	_ = a.Logger.Sync()
	return a.DB.Close()
}
