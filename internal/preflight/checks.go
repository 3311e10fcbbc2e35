package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"

	"quickstart/internal/config"
	"quickstart/internal/schema"
	"quickstart/internal/settings"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDatabase opens the settings database and pings it.
func CheckDatabase(ctx context.Context, cfg *config.Config) Result {
	const name = "Settings database"

	if cfg.Wizard.Storage == config.StorageMemory {
		return Result{Name: name, Passed: true, Detail: "in-memory (nothing persists across restarts)"}
	}
	store, err := settings.OpenPath(cfg.Paths.DatabasePath)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", cfg.Paths.DatabasePath, err)}
	}
	defer store.Close()
	if err := store.Ping(ctx); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", cfg.Paths.DatabasePath, err)}
	}
	return Result{Name: name, Passed: true, Detail: cfg.Paths.DatabasePath}
}

// CheckAPIBind verifies the API address can be bound.
func CheckAPIBind(bind string) Result {
	const name = "API address"

	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", bind, err)}
	}
	_ = listener.Close()
	return Result{Name: name, Passed: true, Detail: bind}
}

// CheckSchema loads the configuration schema once. A failure here means
// finalization will report an unknown verdict.
func CheckSchema(ctx context.Context, cfg *config.Config) Result {
	const name = "Config schema"

	loader := schema.NewLoader(cfg)
	defer loader.Close()

	if _, err := loader.LoadErr(ctx); err != nil {
		return Result{Name: name, Detail: summarizeSchemaError(err)}
	}
	return Result{Name: name, Passed: true, Detail: loader.Source()}
}

// summarizeSchemaError produces a human-readable summary for schema load failures.
func summarizeSchemaError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "schema fetch timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "schema fetch timed out"
	}
	if errors.Is(err, os.ErrNotExist) {
		var unavailable *schema.SchemaUnavailableError
		if errors.As(err, &unavailable) {
			return fmt.Sprintf("%s (error: does not exist)", unavailable.Source)
		}
	}
	return err.Error()
}
