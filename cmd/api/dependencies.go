package main

import (
	"fmt"
	"log/slog"

	"github.com/tmashinini/bankconvert/internal/domain/statement"
	"github.com/tmashinini/bankconvert/internal/domain/statement/engine"
	"github.com/tmashinini/bankconvert/internal/domain/statement/handler"
	"github.com/tmashinini/bankconvert/internal/domain/statement/service"
	"github.com/tmashinini/bankconvert/pkg/config"
	"github.com/tmashinini/bankconvert/pkg/cron"
	"github.com/tmashinini/bankconvert/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	Spool     *storage.Spool
	Engine    *engine.Engine
	Service   *service.Service
	Scheduler *cron.Scheduler

	StatementHandler *handler.StatementHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	spool, err := storage.NewSpool(cfg.Spool.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to init spool: %w", err)
	}
	deps.Spool = spool

	deps.Engine = engine.New(logger)
	deps.Service = service.New(logger, deps.Engine, deps.Spool, cfg.Engine.DefaultCurrency)
	deps.Scheduler = cron.NewScheduler(deps.Spool, cfg.Spool.MaxAge, logger)

	defaults := statement.DefaultOptions()
	defaults.DateFormat = cfg.Engine.DateFormat
	defaults.KeepRejectedWarnings = cfg.Engine.KeepRejectedWarnings

	deps.StatementHandler = handler.NewStatementHandler(
		deps.Service, deps.Spool, logger, defaults, cfg.Server.MaxUploadBytes,
	)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// Cleanup stops background jobs
func (d *Dependencies) Cleanup() {
	if d.Scheduler != nil {
		<-d.Scheduler.Stop().Done()
	}
	d.Logger.Info("cleanup completed")
}
