package schema

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"quickstart/internal/config"
	"quickstart/internal/logging"
)

const maxSchemaBytes = 16 << 20

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Loader fetches and caches the configuration schema. A local path wins over
// a URL. File schemas stay cached until fsnotify reports a change; URL
// schemas are refetched once the TTL expires.
type Loader struct {
	path    string
	url     string
	timeout time.Duration
	ttl     time.Duration
	client  HTTPDoer
	logger  *slog.Logger

	mu        sync.Mutex
	cached    *Schema
	fetchedAt time.Time
	stale     atomic.Bool
	watcher   *fsnotify.Watcher
	done      chan struct{}
	stopped   chan struct{}
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithHTTPClient overrides the client used for URL schemas.
func WithHTTPClient(client HTTPDoer) LoaderOption {
	return func(l *Loader) { l.client = client }
}

// WithLogger sets the loader logger.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader builds a loader from the [schema] configuration.
func NewLoader(cfg *config.Config, opts ...LoaderOption) *Loader {
	l := &Loader{
		path:    cfg.Schema.Path,
		url:     cfg.Schema.URL,
		timeout: cfg.SchemaTimeout(),
		ttl:     cfg.SchemaCacheTTL(),
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = logging.NewComponentLogger(l.logger, "schema")
	return l
}

// Source names the configured schema location.
func (l *Loader) Source() string {
	if l.path != "" {
		return l.path
	}
	return l.url
}

// Load returns the schema, or nil when it cannot be loaded. Failures are
// logged as warnings; callers treat nil as degraded validation.
func (l *Loader) Load(ctx context.Context) *Schema {
	s, err := l.LoadErr(ctx)
	if err != nil {
		logging.WithContext(ctx, l.logger).Warn("schema unavailable, validation degraded",
			logging.String("source", l.Source()),
			logging.Error(err),
		)
		return nil
	}
	return s
}

// LoadErr is Load with the failure reported as a *SchemaUnavailableError.
func (l *Loader) LoadErr(ctx context.Context) (*Schema, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var (
		s   *Schema
		err error
	)
	switch {
	case l.path != "":
		s, err = l.loadFile()
	case l.url != "":
		s, err = l.loadURL(ctx)
	default:
		err = errors.New("no schema path or url configured")
	}
	if err != nil {
		return nil, &SchemaUnavailableError{Source: l.Source(), Err: err}
	}
	return s, nil
}

func (l *Loader) loadFile() (*Schema, error) {
	if l.cached != nil && !l.stale.Load() {
		return l.cached, nil
	}
	// Clear before reading so a write racing the read marks the copy stale.
	l.stale.Store(false)
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	s, err := Parse(data, l.path)
	if err != nil {
		return nil, err
	}
	l.cached = s
	l.fetchedAt = time.Now()
	l.startWatch()
	return s, nil
}

// startWatch watches the schema's directory so editors that replace the file
// by rename are noticed. Without a watcher the file is reread on every load.
func (l *Loader) startWatch() {
	if l.watcher != nil {
		return
	}
	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		err = watcher.Add(filepath.Dir(l.path))
		if err != nil {
			_ = watcher.Close()
		}
	}
	if err != nil {
		l.logger.Debug("schema file watch unavailable", logging.Error(err))
		l.cached = nil
		return
	}
	l.watcher = watcher
	l.done = make(chan struct{})
	l.stopped = make(chan struct{})
	go l.watchLoop(filepath.Clean(l.path))
}

func (l *Loader) watchLoop(target string) {
	defer close(l.stopped)
	for {
		select {
		case <-l.done:
			return
		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				l.stale.Store(true)
			}
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			l.stale.Store(true)
			l.logger.Warn("schema file watch error", logging.Error(err))
		}
	}
}

func (l *Loader) loadURL(ctx context.Context) (*Schema, error) {
	if l.cached != nil && l.ttl > 0 && time.Since(l.fetchedAt) < l.ttl {
		return l.cached, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build schema request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.5")
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch schema: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch schema: unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSchemaBytes))
	if err != nil {
		return nil, fmt.Errorf("read schema body: %w", err)
	}
	s, err := Parse(data, l.url)
	if err != nil {
		return nil, err
	}
	l.cached = s
	l.fetchedAt = time.Now()
	return s, nil
}

// Close stops the file watcher, if one is running.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.watcher == nil {
		return nil
	}
	close(l.done)
	<-l.stopped
	err := l.watcher.Close()
	l.watcher = nil
	return err
}
