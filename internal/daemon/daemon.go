package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"quickstart/internal/config"
	"quickstart/internal/logging"
	"quickstart/internal/settings"
	"quickstart/internal/wizard"
)

// Daemon owns the API server and enforces single-instance execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  settings.Store
	wizard *wizard.Service

	lockPath string
	lock     *flock.Flock

	mu      sync.Mutex
	api     *apiServer
	cancel  context.CancelFunc
	running atomic.Bool
	address atomic.Value
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	DatabasePath string
	LockFilePath string
	SchemaSource string
	Address      string
}

// New constructs a daemon over an opened store and wizard service.
func New(cfg *config.Config, store settings.Store, svc *wizard.Service, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || svc == nil {
		return nil, errors.New("daemon requires config, store, and wizard service")
	}
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		wizard:   svc,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock and begins serving the API.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := d.cfg.EnsureDirectories(); err != nil {
		return err
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another quickstart server is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	srv := newAPIServer(d.cfg, d.wizard, d.logger)
	srv.statusFn = d.Status
	if err := srv.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}
	d.api = srv
	d.cancel = cancel
	d.address.Store(srv.addr())
	d.running.Store(true)
	d.logger.Info("quickstart server started",
		logging.String("lock", d.lockPath),
		logging.String("address", srv.addr()),
	)
	return nil
}

// Stop shuts the API server down and releases the lock.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.address.Store("")
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("quickstart server stopped")
}

// Close stops the daemon and closes the store.
func (d *Daemon) Close() error {
	d.Stop()
	return d.store.Close()
}

// Addr returns the bound API address, empty when stopped.
func (d *Daemon) Addr() string {
	addr, _ := d.address.Load().(string)
	return addr
}

// Status returns the current daemon status.
func (d *Daemon) Status(context.Context) Status {
	st := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		LockFilePath: d.lockPath,
		SchemaSource: d.cfg.Schema.URL,
	}
	if d.cfg.Schema.Path != "" {
		st.SchemaSource = d.cfg.Schema.Path
	}
	if d.cfg.Wizard.Storage != config.StorageMemory {
		st.DatabasePath = d.cfg.Paths.DatabasePath
	}
	st.Address = d.Addr()
	return st
}
