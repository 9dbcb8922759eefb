package mapping

import (
	"strings"

	"github.com/autobrr/animelink/pkg/listing"
	"github.com/autobrr/animelink/pkg/logger"
)

// partialSuffix marks files still being downloaded.
const partialSuffix = ".parts"

type DiscoverOptions struct {
	// Renew re-inspects sources that are already recorded.
	Renew bool
	// Ignore marks matching entries as skip.
	Ignore func(entry listing.Entry) bool
}

type DiscoverResult struct {
	Added   []string
	Renewed []string
}

// Discover records every entry of sourceRoot that is not yet known and, when
// renewing, refreshes the kind of the known ones. It returns the updated list.
func Discover(lister listing.Lister, sourceRoot string, records []Record, opts DiscoverOptions) ([]Record, DiscoverResult, error) {
	log := logger.GetLogger("discover")
	var result DiscoverResult

	entries, err := lister.List(sourceRoot)
	if err != nil {
		return records, result, err
	}

	known := make(map[string]int, len(records))
	for i := range records {
		known[records[i].Source] = i
	}

	for _, entry := range entries {
		idx, exists := known[entry.Name]
		if exists && !opts.Renew {
			continue
		}

		kind, children := inspect(lister, entry)
		if opts.Ignore != nil && opts.Ignore(entry) {
			log.Debugf("Source matches an ignore filter: %q", entry.Name)
			kind, children = KindSkip, nil
		}

		if !exists {
			log.Infof("New source: %q (%s)", entry.Name, kind)

			rec := NewRecord(entry.Name, kind)
			rec.Children = children
			records = append(records, rec)
			known[entry.Name] = len(records) - 1
			result.Added = append(result.Added, entry.Name)
			continue
		}

		log.Infof("Renew source: %q (%s)", entry.Name, kind)
		renew(&records[idx], kind, children)
		result.Renewed = append(result.Renewed, entry.Name)
	}

	return records, result, nil
}

// inspect determines the kind of a source entry. A folder holding only folders
// is nested, with one dir child per subfolder.
func inspect(lister listing.Lister, entry listing.Entry) (Kind, []Record) {
	if !entry.IsDir {
		if entry.IsFile && strings.HasSuffix(entry.Name, partialSuffix) {
			return KindSkip, nil
		}
		return KindFile, nil
	}

	sub, err := lister.List(entry.Path)
	if err != nil {
		logger.GetLogger("discover").WithError(err).Warnf("Failed listing source folder, recording as dir: %q", entry.Path)
		return KindDir, nil
	}

	if len(sub) == 0 {
		return KindDir, nil
	}

	children := make([]Record, 0, len(sub))
	for _, e := range sub {
		if !e.IsDir {
			return KindDir, nil
		}
		children = append(children, NewRecord(e.Name, KindDir))
	}

	return KindNested, children
}

// renew replaces the kind of rec. Children that were already recorded keep
// their state, new children inherit the parent's target.
func renew(rec *Record, kind Kind, children []Record) {
	previous := make(map[string]Record, len(rec.Children))
	for _, c := range rec.Children {
		previous[c.Source] = c
	}

	for i := range children {
		if old, ok := previous[children[i].Source]; ok {
			children[i] = old
			continue
		}
		children[i].Target = rec.Target
	}

	rec.Kind = kind
	rec.Children = children
}
