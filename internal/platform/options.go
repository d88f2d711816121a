package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/mulch/pkg/core"
	"github.com/aretw0/mulch/pkg/kv"
)

// options holds the internal configuration for the mulch app.
type options struct {
	store   kv.Store
	logger  *slog.Logger
	signals *core.Signals
	config  map[string]interface{}
}

// Option defines a functional option for configuring mulch.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		config: make(map[string]interface{}),
	}
}

// WithLogger sets the logger for the app.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithStore injects a custom storage adapter (e.g. in-memory for tests).
// If provided, the default directory adapter is skipped.
func WithStore(store kv.Store) Option {
	return func(o *options) { o.store = store }
}

// WithSignals injects the process-wide signal bus. A fresh bus is created
// when absent.
func WithSignals(s *core.Signals) Option {
	return func(o *options) { o.signals = s }
}

// WithAutoInit enables automatic creation of the vault directory.
func WithAutoInit(auto bool) Option {
	return func(o *options) { o.config["auto_init"] = auto }
}

// WithMustExist ensures the vault directory must already exist.
func WithMustExist(must bool) Option {
	return func(o *options) { o.config["must_exist"] = must }
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) { o.config["temp_dir"] = force }
}

// WithSystemDir allows specifying the hidden directory name (e.g. ".mulch").
func WithSystemDir(name string) Option {
	return func(o *options) { o.config["system_dir"] = name }
}

// WithBudget caps total stored bytes, making writes beyond it fail with a
// quota error. Zero means unlimited.
func WithBudget(bytes int64) Option {
	return func(o *options) { o.config["budget"] = bytes }
}

// WithDebounce overrides the persistence write quiet period.
func WithDebounce(d time.Duration) Option {
	return func(o *options) { o.config["debounce"] = d }
}

// WithBackupKeep overrides how many snapshots are retained per key.
func WithBackupKeep(n int) Option {
	return func(o *options) { o.config["backup_keep"] = n }
}

// WithWatch enables reconciliation of external changes to the store (another
// process writing to the same vault).
func WithWatch(enabled bool) Option {
	return func(o *options) { o.config["watch"] = enabled }
}

// WithClock injects the time source used for timestamps.
func WithClock(now core.Clock) Option {
	return func(o *options) { o.config["clock"] = now }
}

// WithIDFunc injects the identifier generator.
func WithIDFunc(fn core.IDFunc) Option {
	return func(o *options) { o.config["id_func"] = fn }
}

// WithDevSafety controls the sandbox mechanism when running via `go run`.
// By default (true), mulch forces a temporary directory to prevent
// accidental data loss in the working tree.
func WithDevSafety(enabled bool) Option {
	return func(o *options) { o.config["dev_safety"] = enabled }
}
