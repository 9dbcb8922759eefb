package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

const (
	maxLogSizeMB  = 5
	maxLogBackups = 10
	maxLogAgeDays = 14
)

// Init configures the global logrus logger.
// verbosity follows the -v count flag: 0 info, 1 debug, 2+ trace.
// An empty logFile disables file output.
func Init(verbosity int, logFile string) error {
	logrus.SetLevel(levelFor(verbosity))

	logrus.SetFormatter(&prefixed.TextFormatter{
		ForceColors:     isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
		ForceFormatting: true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if logFile == "" {
		logrus.SetOutput(os.Stdout)
		return nil
	}

	if dir := filepath.Dir(logFile); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
	}

	rotator := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
	}

	logrus.SetOutput(io.MultiWriter(os.Stdout, rotator))
	return nil
}

// GetLogger returns an entry tagged with the given prefix.
func GetLogger(prefix string) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{"prefix": prefix})
}

func levelFor(verbosity int) logrus.Level {
	switch {
	case verbosity <= 0:
		return logrus.InfoLevel
	case verbosity == 1:
		return logrus.DebugLevel
	default:
		return logrus.TraceLevel
	}
}
