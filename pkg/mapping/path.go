package mapping

import (
	"fmt"
	"path/filepath"
)

// Path addresses a record in a record list: either a top level record, or a
// child of a nested top level record.
type Path struct {
	Outer  int
	Inner  int
	Nested bool
}

func Direct(index int) Path {
	return Path{Outer: index}
}

func NestedPath(outer int, inner int) Path {
	return Path{Outer: outer, Inner: inner, Nested: true}
}

func (p Path) String() string {
	if p.Nested {
		return fmt.Sprintf("%d.%d", p.Outer, p.Inner)
	}
	return fmt.Sprintf("%d", p.Outer)
}

// PathError is returned when a path does not address a record.
type PathError struct {
	Path Path
	Len  int
}

func (e *PathError) Error() string {
	return fmt.Sprintf("path %s out of range (len %d)", e.Path, e.Len)
}

// Locate returns the record at p. A nested path into a record that is not
// nested resolves to the top level record itself.
func Locate(records []Record, p Path) (*Record, error) {
	if p.Outer < 0 || p.Outer >= len(records) {
		return nil, &PathError{Path: p, Len: len(records)}
	}

	outer := &records[p.Outer]
	if !p.Nested || !outer.IsNested() {
		return outer, nil
	}

	if p.Inner < 0 || p.Inner >= len(outer.Children) {
		return nil, &PathError{Path: p, Len: len(outer.Children)}
	}

	return &outer.Children[p.Inner], nil
}

// SourceDir returns the directory of the record at p, relative to the source root.
func SourceDir(records []Record, p Path) (string, error) {
	rec, err := Locate(records, p)
	if err != nil {
		return "", err
	}

	outer := &records[p.Outer]
	if rec == outer {
		return outer.Source, nil
	}

	return filepath.Join(outer.Source, rec.Source), nil
}

// applyBatch calls fn for the record at every path, stopping at the first
// path that cannot be resolved.
func applyBatch[T any](records []Record, items []T, pathOf func(T) Path, fn func(*Record, T)) error {
	for _, item := range items {
		rec, err := Locate(records, pathOf(item))
		if err != nil {
			return err
		}
		fn(rec, item)
	}
	return nil
}

// SetTargets writes every resolved target back into records.
func SetTargets(records []Record, resolutions []Resolution) error {
	return applyBatch(records, resolutions,
		func(r Resolution) Path { return r.Path },
		func(rec *Record, r Resolution) { rec.Target = r.Target },
	)
}

// SetActive sets the active flag of the records at paths.
func SetActive(records []Record, paths []Path, active bool) error {
	return applyBatch(records, paths,
		func(p Path) Path { return p },
		func(rec *Record, _ Path) { rec.Active = active },
	)
}
