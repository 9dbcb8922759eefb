package reflink

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/autobrr/animelink/pkg/logger"
)

// ErrUnsupported is returned by Clone on platforms without reflink support.
var ErrUnsupported = errors.New("reflink clone is only supported on linux")

// Cloner duplicates a source file or folder into a target folder.
type Cloner interface {
	Clone(ctx context.Context, src string, dstDir string) error
}

type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// CommandCloner clones with copy-on-write through cp.
type CommandCloner struct {
	log *logrus.Entry
	run runFunc
}

func New() *CommandCloner {
	return &CommandCloner{
		log: logger.GetLogger("reflink"),
		run: runCommand,
	}
}

// Clone copies src into dstDir, creating dstDir when missing.
func (c *CommandCloner) Clone(ctx context.Context, src string, dstDir string) error {
	if stats, err := TreeStats(src); err != nil {
		c.log.WithError(err).Warnf("Failed reading source stats: %q", src)
	} else {
		c.log.Infof("Cloning %q -> %q (%d files, %s)", src, dstDir, stats.Files, humanize.IBytes(stats.Bytes))
	}

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("create target directory: %w", err)
	}

	return c.clone(ctx, src, dstDir)
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Stats summarizes the regular files below a path.
type Stats struct {
	Files uint64
	Bytes uint64
}

// TreeStats counts the regular files below root. A file root counts itself.
func TreeStats(root string) (Stats, error) {
	info, err := os.Lstat(root)
	if err != nil {
		return Stats{}, fmt.Errorf("stat source: %w", err)
	}
	if !info.IsDir() {
		if info.Mode().IsRegular() {
			return Stats{Files: 1, Bytes: uint64(info.Size())}, nil
		}
		return Stats{}, nil
	}

	var files, bytes atomic.Uint64

	err = fastwalk.Walk(nil, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable entries are left out of the summary
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return nil
		}

		files.Add(1)
		bytes.Add(uint64(fi.Size()))
		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("walk source: %w", err)
	}

	return Stats{Files: files.Load(), Bytes: bytes.Load()}, nil
}
