package listing

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/autobrr/animelink/pkg/logger"
)

/* Structs */

// Entry is a single directory entry as seen by a non-recursive listing.
// Symlinks are reported with neither IsFile nor IsDir set.
type Entry struct {
	Name         string
	Path         string
	IsFile       bool
	IsDir        bool
	Size         int64
	ModifiedTime time.Time
}

/* Interfaces */

// Lister lists the direct children of a directory.
type Lister interface {
	List(dir string) ([]Entry, error)
}

// FsLister lists directories of an afero filesystem.
type FsLister struct {
	fs  afero.Fs
	log *logrus.Entry
}

/* Public */

func New(fs afero.Fs) *FsLister {
	return &FsLister{
		fs:  fs,
		log: logger.GetLogger("listing"),
	}
}

// List returns the entries of dir in the order the filesystem reports them.
// Entries whose metadata cannot be read are skipped; only a failure to open or
// read the directory itself is returned as an error.
func (l *FsLister) List(dir string) ([]Entry, error) {
	f, err := l.fs.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("open directory: %w", err)
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		entryPath := filepath.Join(dir, name)

		info, err := l.lstat(entryPath)
		if err != nil {
			l.log.WithError(err).Tracef("Skipping unreadable entry: %q", entryPath)
			continue
		}

		entries = append(entries, entryFromInfo(name, entryPath, info))
	}

	return entries, nil
}

// ListOrEmpty lists dir and treats any failure as an empty directory.
func ListOrEmpty(l Lister, dir string) []Entry {
	entries, err := l.List(dir)
	if err != nil {
		logger.GetLogger("listing").WithError(err).Debugf("Treating unlistable directory as empty: %q", dir)
		return nil
	}
	return entries
}

/* Private */

func (l *FsLister) lstat(path string) (os.FileInfo, error) {
	if lst, ok := l.fs.(afero.Lstater); ok {
		info, _, err := lst.LstatIfPossible(path)
		return info, err
	}
	return l.fs.Stat(path)
}

func entryFromInfo(name string, path string, info os.FileInfo) Entry {
	return Entry{
		Name:         name,
		Path:         path,
		IsFile:       info.Mode().IsRegular(),
		IsDir:        info.IsDir(),
		Size:         info.Size(),
		ModifiedTime: info.ModTime(),
	}
}
