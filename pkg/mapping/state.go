package mapping

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/scylladb/go-set/strset"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// State is the persisted mapping file.
type State struct {
	Records []Record `yaml:"source_maps"`
	Targets []string `yaml:"targets"`
}

// LoadState reads the state file at path. A missing file yields an empty state.
func LoadState(fs afero.Fs, path string) (*State, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{}, nil
		}
		return nil, errors.Wrapf(err, "read state file %q", path)
	}

	st := &State{}
	if len(bytes.TrimSpace(data)) == 0 {
		return st, nil
	}

	if err := yaml.Unmarshal(data, st); err != nil {
		return nil, errors.Wrapf(err, "parse state file %q", path)
	}

	return st, nil
}

// Save writes the state to path atomically through a temporary file in the
// same directory.
func (s *State) Save(fs afero.Fs, path string) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return errors.Wrap(err, "encode state")
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(err, "encode state")
	}

	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create state directory %q", dir)
	}

	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "create temp state file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = fs.Remove(tmpName)
		return errors.Wrap(err, "write temp state file")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = fs.Remove(tmpName)
		return errors.Wrap(err, "sync temp state file")
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tmpName)
		return errors.Wrap(err, "close temp state file")
	}

	if err := fs.Rename(tmpName, path); err != nil {
		_ = fs.Remove(tmpName)
		return errors.Wrapf(err, "replace state file %q", path)
	}

	return nil
}

// MergeTargets replaces the target list with the listed targets, in listing
// order, followed by previously recorded targets that are no longer listed.
func (s *State) MergeTargets(listed []string) {
	merged := make([]string, 0, len(listed)+len(s.Targets))
	seen := strset.NewWithSize(len(listed) + len(s.Targets))

	for _, group := range [][]string{listed, s.Targets} {
		for _, t := range group {
			if seen.Has(t) {
				continue
			}
			seen.Add(t)
			merged = append(merged, t)
		}
	}

	s.Targets = merged
}
