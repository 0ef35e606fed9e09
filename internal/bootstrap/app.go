package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/sergejparity/e-invoice/config"
	"github.com/sergejparity/e-invoice/internal/data"
	"github.com/sergejparity/e-invoice/internal/queue"
)

// App bundles the wired application components.
type App struct {
	Config config.AppConfig
	Logger *slog.Logger
	Repo   *data.JobRepo
	Audit  *data.FileAuditLog
	Queue  *queue.Queue
}

// NewApp wires storage, audit trail, the configured delivery provider and
// the transmission queue from the given configuration.
func NewApp(cfg config.AppConfig, logger *slog.Logger) (*App, error) {
	repo, err := data.NewJobRepo(data.JobRepoOptions{
		Path:   cfg.StorePath,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("open job store: %w", err)
	}

	audit := data.NewFileAuditLog(cfg.AuditLogPath, logger)

	q, err := queue.NewQueue(queue.Options{
		Repo:      repo,
		Provider:  BuildProvider(cfg, logger),
		Audit:     audit,
		Logger:    logger,
		PollDelay: cfg.Queue.PollDelay,
	})
	if err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("create queue: %w", err)
	}

	return &App{
		Config: cfg,
		Logger: logger,
		Repo:   repo,
		Audit:  audit,
		Queue:  q,
	}, nil
}

// Close waits for in-flight jobs and releases storage.
func (a *App) Close() error {
	a.Queue.Wait()
	return a.Repo.Close()
}
