package cmd

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/autobrr/animelink/pkg/config"
	"github.com/autobrr/animelink/pkg/expression"
	"github.com/autobrr/animelink/pkg/logger"
)

var (
	// Global flags
	FlagLogLevel   = 0
	FlagConfigFile = "config.yaml"
	FlagLogFile    = ""
	FlagDryRun     bool

	FlagStatePath   string
	FlagSourcePath  string
	FlagLibraryPath string

	// Global vars
	log         *logrus.Entry
	initialized bool
	ignoreExprs []expression.CompiledExpression
)

// initCore sets up logging and loads the configuration, applying any path
// overrides given on the command line.
func initCore() error {
	if initialized {
		return nil
	}

	if err := logger.Init(FlagLogLevel, FlagLogFile); err != nil {
		return errors.Wrap(err, "failed initializing logger")
	}
	log = logger.GetLogger("app")

	if err := config.Init(FlagConfigFile); err != nil {
		return errors.Wrapf(err, "failed loading config: %q", FlagConfigFile)
	}

	if FlagStatePath != "" {
		config.Config.Paths.State = FlagStatePath
	}
	if FlagSourcePath != "" {
		config.Config.Paths.Source = FlagSourcePath
	}
	if FlagLibraryPath != "" {
		config.Config.Paths.Library = FlagLibraryPath
	}

	compiled, err := expression.Compile(config.Config.Filters.Ignore)
	if err != nil {
		return errors.Wrap(err, "failed compiling ignore filters")
	}
	ignoreExprs = compiled

	log.Debugf("Using config: %q", FlagConfigFile)
	log.Debugf("Paths: state=%q source=%q library=%q", config.Config.Paths.State, config.Config.Paths.Source,
		config.Config.Paths.Library)

	initialized = true
	return nil
}

// lockState takes an exclusive lock next to the state file so two passes
// never interleave. The returned func releases it.
func lockState(statePath string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(statePath), 0o755); err != nil {
		return nil, errors.Wrap(err, "failed creating state directory")
	}

	lock := flock.New(statePath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, errors.Wrapf(err, "failed locking: %q", lock.Path())
	}
	if !locked {
		return nil, errors.Errorf("another pass holds the lock: %q", lock.Path())
	}

	return func() {
		if err := lock.Unlock(); err != nil {
			logger.GetLogger("app").WithError(err).Warnf("Failed releasing lock: %q", lock.Path())
		}
	}, nil
}
