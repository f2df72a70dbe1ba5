package logreader

import (
	"runtime"

	"github.com/op/go-logging"

	"github.com/badger-rl/logreader/internal/logtree"
	"github.com/badger-rl/logreader/internal/rlog"
)

type options struct {
	cacheDir        string
	workerCount     int
	reprCacheCap    int
	continueOnError bool
	logger          *logging.Logger
}

func defaultOptions() options {
	return options{
		workerCount:  runtime.NumCPU(),
		reprCacheCap: logtree.DefaultRepresentationCacheCapacity,
		logger:       rlog.Logger(),
	}
}

// Option configures Open. See WithCacheDir, WithWorkerCount,
// WithRepresentationCacheCapacity, WithContinueOnError, and WithLogger.
type Option func(*options)

// WithCacheDir overrides the default <logDir>/<logStem>_cache/ index and
// representation-cache directory.
func WithCacheDir(dir string) Option {
	return func(o *options) { o.cacheDir = dir }
}

// WithWorkerCount overrides the default runtime.NumCPU() sizing of the
// parse-and-cache worker pool (§4.H).
func WithWorkerCount(n int) Option {
	return func(o *options) { o.workerCount = n }
}

// WithRepresentationCacheCapacity overrides the default-200 bound on each
// Accessor's representation cache (§4.G, §9).
func WithRepresentationCacheCapacity(n int) Option {
	return func(o *options) { o.reprCacheCap = n }
}

// WithContinueOnError enables §7's skip-and-continue policy for bounded
// decode errors encountered during parse-and-cache, instead of aborting
// the batch on the first one.
func WithContinueOnError(continueOnError bool) Option {
	return func(o *options) { o.continueOnError = continueOnError }
}

// WithLogger injects a logger, e.g. one backed by a discard backend in
// tests that don't want eval/repair noise on stderr.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.logger = l }
}
