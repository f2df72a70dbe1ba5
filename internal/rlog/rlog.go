// Package rlog owns the package-level "logreader" logger (spec §4.K),
// grounded on kryptco-kr's logging.go: a global logging.Logger obtained
// via logging.MustGetLogger, with a caller-installable backend.
package rlog

import (
	"os"

	"github.com/op/go-logging"
)

var logger = logging.MustGetLogger("logreader")

var defaultFormat = logging.MustStringFormatter(
	`%{time:15:04:05.000} %{level:.6s} logreader ▶ %{message}`,
)

func init() {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatted := logging.NewBackendFormatter(backend, defaultFormat)
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(logging.INFO, "logreader")
	logging.SetBackend(leveled)
}

// Logger returns the package-level logreader logger.
func Logger() *logging.Logger { return logger }

// SetBackend installs a caller-supplied backend, e.g. a discard backend in
// tests that don't want eval/repair noise on stderr.
func SetBackend(backend logging.Backend) {
	logging.SetBackend(backend)
}
