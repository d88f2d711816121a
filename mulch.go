package mulch

import (
	"log/slog"
	"time"

	"github.com/aretw0/mulch/internal/platform"
	"github.com/aretw0/mulch/pkg/core"
	"github.com/aretw0/mulch/pkg/kv"
)

// --- Types ---

// App is a public alias for the assembled application.
type App = platform.App

// --- Configuration ---

// Option defines a functional option for configuring mulch.
type Option = platform.Option

// WithAutoInit enables automatic creation of the vault directory.
func WithAutoInit(auto bool) Option {
	return platform.WithAutoInit(auto)
}

// WithMustExist ensures the vault directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithLogger sets the logger for the app.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStore allows injecting a custom storage adapter.
func WithStore(store kv.Store) Option {
	return platform.WithStore(store)
}

// WithSignals injects the process-wide signal bus.
func WithSignals(s *core.Signals) Option {
	return platform.WithSignals(s)
}

// WithSystemDir allows specifying the hidden directory name (e.g. ".mulch").
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithBudget caps total stored bytes; writes beyond it fail with a quota
// error.
func WithBudget(bytes int64) Option {
	return platform.WithBudget(bytes)
}

// WithDebounce overrides the persistence write quiet period.
func WithDebounce(d time.Duration) Option {
	return platform.WithDebounce(d)
}

// WithBackupKeep overrides how many snapshots are retained per key.
func WithBackupKeep(n int) Option {
	return platform.WithBackupKeep(n)
}

// WithWatch enables reconciliation of external changes to the vault.
func WithWatch(enabled bool) Option {
	return platform.WithWatch(enabled)
}

// WithClock injects the time source used for timestamps.
func WithClock(now core.Clock) Option {
	return platform.WithClock(now)
}

// WithIDFunc injects the identifier generator.
func WithIDFunc(fn core.IDFunc) Option {
	return platform.WithIDFunc(fn)
}

// WithDevSafety controls the `go run` sandbox safety mechanism.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// --- Factory ---

// Open assembles the application over the vault at path.
func Open(path string, opts ...Option) (*App, error) {
	return platform.New(path, opts...)
}

// --- Safety & Utils ---

// ResolveVaultPath determines the actual path for the vault based on safety rules.
func ResolveVaultPath(userPath string, forceTemp bool) string {
	return platform.ResolveVaultPath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindVaultRoot recursively looks upwards for a vault root indicator.
func FindVaultRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir, platform.DefaultSystemDir, "notes-app-data.json")
}
