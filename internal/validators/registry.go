package validators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"quickstart/internal/config"
	"quickstart/internal/logging"
	"quickstart/internal/sections"
	"quickstart/internal/services"
)

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Credentials are the raw form fields submitted for a check. Fields may carry
// the "<section>_" prefix or not.
type Credentials map[string]string

// Get returns the field for section, preferring the prefixed spelling.
func (c Credentials) Get(section, field string) string {
	if v, ok := c[section+"_"+field]; ok {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(c[field])
}

// CheckFunc validates one section's credentials. Metadata may be nil.
type CheckFunc func(ctx context.Context, env Env, creds Credentials) (*sections.Map, error)

// Env is what a check may use to reach the outside world.
type Env struct {
	Client   HTTPDoer
	Services config.Services
}

// Result is the verdict of one external check.
type Result struct {
	Section   string        `json:"section"`
	Validated bool          `json:"validated"`
	Error     string        `json:"error,omitempty"`
	Metadata  *sections.Map `json:"metadata,omitempty"`
	// Err is the *ExternalValidationError behind Error.
	Err error `json:"-"`
}

// ExternalValidationError reports a failed or timed-out third-party check.
type ExternalValidationError struct {
	Section string
	Message string
	Timeout bool
	Err     error
}

func (e *ExternalValidationError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s validation timed out: %s", e.Section, e.Message)
	}
	return fmt.Sprintf("%s validation failed: %s", e.Section, e.Message)
}

func (e *ExternalValidationError) Unwrap() []error {
	marker := services.ErrExternal
	if e.Timeout {
		marker = services.ErrTimeout
	}
	if e.Err == nil {
		return []error{marker}
	}
	return []error{marker, e.Err}
}

// rejection is a check failure whose message is fit for the user as is.
type rejection struct {
	msg string
}

func (r *rejection) Error() string { return r.msg }

func reject(format string, args ...any) error {
	return &rejection{msg: fmt.Sprintf(format, args...)}
}

// ErrNoChecker is reported for sections without an external check.
var ErrNoChecker = errors.New("no external validation for section")

// Registry dispatches credential checks by section id.
type Registry struct {
	checks  map[string]CheckFunc
	timeout time.Duration
	env     Env
	logger  *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithHTTPClient overrides the client used by checks.
func WithHTTPClient(client HTTPDoer) Option {
	return func(r *Registry) { r.env.Client = client }
}

// WithLogger sets the registry logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// WithTimeout overrides the per-call timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Registry) { r.timeout = timeout }
}

// NewRegistry returns a registry holding every built-in check.
func NewRegistry(cfg *config.Config, opts ...Option) *Registry {
	r := &Registry{
		checks:  make(map[string]CheckFunc),
		timeout: cfg.ValidationTimeout(),
		env: Env{
			Client:   &http.Client{},
			Services: cfg.Services,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "validators")

	r.Register("plex", checkPlex)
	r.Register("tmdb", checkTMDb)
	r.Register("tautulli", checkTautulli)
	r.Register("github", checkGitHub)
	r.Register("omdb", checkOMDb)
	r.Register("mdblist", checkMDBList)
	r.Register("notifiarr", checkNotifiarr)
	r.Register("gotify", checkGotify)
	r.Register("radarr", checkRadarr)
	r.Register("sonarr", checkSonarr)
	r.Register("trakt", checkTrakt)
	return r
}

// Register installs or replaces the check for section.
func (r *Registry) Register(section string, check CheckFunc) {
	r.checks[section] = check
}

// Has reports whether section has an external check.
func (r *Registry) Has(section string) bool {
	_, ok := r.checks[section]
	return ok
}

// Sections lists the sections with a check, sorted.
func (r *Registry) Sections() []string {
	out := make([]string, 0, len(r.checks))
	for id := range r.checks {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Validate runs the check for section under the registry timeout. Failures
// never escape as errors; they are reported in the Result.
func (r *Registry) Validate(ctx context.Context, section string, creds Credentials) Result {
	result := Result{Section: section}
	check, ok := r.checks[section]
	if !ok {
		result.Err = &ExternalValidationError{Section: section, Message: ErrNoChecker.Error(), Err: ErrNoChecker}
		result.Error = ErrNoChecker.Error()
		return result
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	logger := logging.WithContext(ctx, r.logger).With(logging.String(logging.FieldStep, section))
	start := time.Now()
	metadata, err := check(ctx, r.env, creds)
	if err != nil {
		verr := classify(section, err)
		result.Err = verr
		result.Error = verr.Message
		logger.Warn("external validation failed",
			logging.Bool("timeout", verr.Timeout),
			logging.Duration("elapsed", time.Since(start)),
			logging.Error(err),
		)
		return result
	}
	result.Validated = true
	result.Metadata = metadata
	logger.Info("external validation passed", logging.Duration("elapsed", time.Since(start)))
	return result
}

func classify(section string, err error) *ExternalValidationError {
	verr := &ExternalValidationError{Section: section, Err: err, Message: err.Error()}
	var rej *rejection
	if errors.As(err, &rej) {
		verr.Message = rej.msg
		return verr
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		verr.Timeout = true
		verr.Message = "service did not answer in time"
	}
	return verr
}
