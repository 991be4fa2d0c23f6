package wiring

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/laborboard/internal/infrastructure/config"
	"github.com/felixgeelhaar/laborboard/pkg/application"
	"github.com/felixgeelhaar/laborboard/pkg/domain/labor"
	"github.com/felixgeelhaar/laborboard/pkg/storage"
)

// Workspace bundles core infrastructure dependencies of one board directory.
type Workspace struct {
	Root      string
	Config    *config.Config
	Files     *storage.FilesystemRepository
	Repo      labor.Repository
	Audit     *application.AuditService
	Publisher *storage.InMemoryEventPublisher
	Logger    *slog.Logger

	closers []io.Closer
}

// OpenWorkspace loads the config at root and opens the configured backend.
func OpenWorkspace(root string) (*Workspace, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	ws := &Workspace{
		Root:      root,
		Config:    cfg,
		Files:     storage.NewFilesystemRepository(root),
		Publisher: storage.NewInMemoryEventPublisher(),
	}

	logger, logCloser, err := NewLogger(cfg, root)
	if err != nil {
		return nil, err
	}
	ws.Logger = logger
	ws.addCloser(logCloser)

	repo, repoCloser, err := OpenRepository(cfg, root)
	if err != nil {
		_ = ws.Close()
		return nil, err
	}
	ws.Repo = repo
	ws.addCloser(repoCloser)

	ws.Audit = application.NewAuditService(nil, ws.Publisher, logger)
	if cfg.Storage.Driver != config.DriverMemory {
		store, err := storage.OpenAuditJournal(ws.Files.Dir())
		if err != nil {
			_ = ws.Close()
			return nil, fmt.Errorf("failed to open audit trail: %w", err)
		}
		ws.Audit = application.NewAuditService(store, ws.Publisher, logger)
	}

	logger.Debug("workspace opened", "root", root, "driver", cfg.Storage.Driver)
	return ws, nil
}

func (w *Workspace) addCloser(c io.Closer) {
	if c != nil {
		w.closers = append(w.closers, c)
	}
}

// Close releases the backend and the log file.
func (w *Workspace) Close() error {
	var errs []error
	for i := len(w.closers) - 1; i >= 0; i-- {
		if err := w.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	w.closers = nil
	return errors.Join(errs...)
}

// OpenRepository opens the record store selected by storage.driver.
func OpenRepository(cfg *config.Config, root string) (labor.Repository, io.Closer, error) {
	path := cfg.StoragePath(root)

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return storage.NewMemoryRepository(), nil, nil
	case config.DriverBunt:
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		repo, err := storage.OpenBuntRepository(path)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo, nil
	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		repo, err := storage.OpenSQLiteRepository(path)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo, nil
	case config.DriverYAML, "":
		// A custom path is another workspace root holding its own data directory.
		if cfg.Storage.Path != "" {
			return storage.NewFilesystemRepository(path), nil, nil
		}
		return storage.NewFilesystemRepository(root), nil, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown storage driver %q", config.ErrInvalidConfig, cfg.Storage.Driver)
	}
}

// NewLogger builds the JSON logger at the configured level, writing to
// stderr or to log.file inside the data directory.
func NewLogger(cfg *config.Config, root string) (*slog.Logger, io.Closer, error) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel()}
	if cfg.Log.File == "" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil, nil
	}

	path := cfg.Log.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, storage.DataDir, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	// #nosec G304 -- log path comes from the workspace config
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return slog.New(slog.NewJSONHandler(f, opts)), f, nil
}

// DataDir is the directory holding the configured backend's files.
func (w *Workspace) DataDir() string {
	switch w.Config.Storage.Driver {
	case config.DriverBunt, config.DriverSQLite:
		return filepath.Dir(w.Config.StoragePath(w.Root))
	}
	if w.Config.Storage.Path != "" {
		return filepath.Join(w.Config.StoragePath(w.Root), storage.DataDir)
	}
	return w.Files.Dir()
}
