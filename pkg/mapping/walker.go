package mapping

import (
	"path/filepath"

	"github.com/autobrr/animelink/pkg/logger"
)

// Finder resolves the target of a source folder. name is the folder name, dir
// its location relative to the source root.
type Finder interface {
	Find(name string, dir string) (string, bool)
}

// Resolution is a target decided for the record at Path.
type Resolution struct {
	Path   Path
	Source string
	Target string
	// Existing is set when the target was already recorded by a previous pass.
	Existing bool
}

// ResolveAll walks every active record and returns the target of each record
// that has one, either already assigned or found through finder. records is
// not modified; apply the result with SetTargets.
func ResolveAll(records []Record, finder Finder) []Resolution {
	return resolve(records, "", 0, finder)
}

func resolve(records []Record, parent string, depth int, finder Finder) []Resolution {
	log := logger.GetLogger("mapping")
	var resolutions []Resolution

	for i := range records {
		rec := &records[i]
		if !rec.IsActive() {
			continue
		}

		dir := rec.Source
		if parent != "" {
			dir = filepath.Join(parent, rec.Source)
		}

		switch {
		case rec.IsNested():
			if depth > 0 {
				log.Debugf("Skipping nested record below top level: %q", dir)
				continue
			}
			for _, child := range resolve(rec.Children, dir, depth+1, finder) {
				child.Path = NestedPath(i, child.Path.Outer)
				resolutions = append(resolutions, child)
			}

		case rec.Target == "":
			if target, ok := finder.Find(rec.Source, dir); ok {
				resolutions = append(resolutions, Resolution{Path: Direct(i), Source: dir, Target: target})
			}

		default:
			resolutions = append(resolutions, Resolution{Path: Direct(i), Source: dir, Target: rec.Target, Existing: true})
		}
	}

	return resolutions
}
