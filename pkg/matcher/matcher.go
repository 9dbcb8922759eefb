package matcher

import (
	"path/filepath"

	"github.com/scylladb/go-set/strset"
	"github.com/sirupsen/logrus"

	"github.com/autobrr/animelink/pkg/contentcache"
	"github.com/autobrr/animelink/pkg/listing"
	"github.com/autobrr/animelink/pkg/logger"
	"github.com/autobrr/animelink/pkg/mediafilter"
)

// Stage identifies which step of the search produced a match.
type Stage int

const (
	StageNone Stage = iota
	// StageWarmName probes already built caches with the source name.
	StageWarmName
	// StageWarmSignature probes already built caches with the source signature.
	StageWarmSignature
	// StageColdName builds the remaining caches one by one, probing the source name.
	StageColdName
	// StageFinal probes every built cache with the source signature.
	StageFinal
)

func (s Stage) String() string {
	switch s {
	case StageWarmName:
		return "warm-name"
	case StageWarmSignature:
		return "warm-signature"
	case StageColdName:
		return "cold-name"
	case StageFinal:
		return "final"
	default:
		return "none"
	}
}

// Matcher finds the library target a source folder most likely belongs to.
// It is bound to one matching pass and is not safe for concurrent use.
type Matcher struct {
	registry   *contentcache.Registry
	lister     listing.Lister
	sourceRoot string
	targets    []string
	log        *logrus.Entry

	// signatures memoizes source signatures by source directory
	signatures map[string]*strset.Set
}

// New returns a matcher probing registry for sources under sourceRoot.
// targets is the enumeration order used when caches must be built on demand.
func New(registry *contentcache.Registry, lister listing.Lister, sourceRoot string, targets []string) *Matcher {
	return &Matcher{
		registry:   registry,
		lister:     lister,
		sourceRoot: sourceRoot,
		targets:    targets,
		log:        logger.GetLogger("matcher"),
		signatures: make(map[string]*strset.Set),
	}
}

// Find looks up the target for the source folder name stored at dir, relative
// to the source root. For top level sources dir equals name.
func (m *Matcher) Find(name string, dir string) (string, bool) {
	target, stage := m.find(name, dir, nil)
	m.logResult(name, target, stage)
	return target, stage != StageNone
}

// FindTarget looks up the target for source using an already known listing of
// its top level entries. A nil listing makes the matcher list the folder itself.
func (m *Matcher) FindTarget(source string, entries []listing.Entry) (string, bool) {
	target, stage := m.find(source, source, entries)
	m.logResult(source, target, stage)
	return target, stage != StageNone
}

// FindStage is FindTarget also reporting which step matched.
func (m *Matcher) FindStage(source string, entries []listing.Entry) (string, Stage) {
	return m.find(source, source, entries)
}

func (m *Matcher) find(name string, dir string, entries []listing.Entry) (string, Stage) {
	// cheap probes against whatever is already warm; the name is probed here too
	probe := strset.New(name)
	if sig, ok := m.signatures[dir]; ok {
		probe.Merge(sig)
	}
	if target, ok := m.registry.Find(func(cache *contentcache.Node) bool {
		return cache.ContainsAny(probe)
	}); ok {
		return target, StageWarmName
	}

	sig := m.signature(dir, entries)

	if target, ok := m.registry.Find(func(cache *contentcache.Node) bool {
		return cache.ContainsAny(sig)
	}); ok {
		return target, StageWarmSignature
	}

	// expensive: build the remaining caches until one holds the source name
	for _, target := range m.targets {
		if m.registry.Built(target) {
			continue
		}

		if m.registry.GetOrBuild(target).Contains(name) {
			return target, StageColdName
		}
	}

	if target, ok := m.registry.Find(func(cache *contentcache.Node) bool {
		return cache.ContainsAny(sig)
	}); ok {
		return target, StageFinal
	}

	return "", StageNone
}

// signature returns the memoized signature of dir, building it from entries or
// from a listing of the folder. An unreadable folder yields an empty signature.
func (m *Matcher) signature(dir string, entries []listing.Entry) *strset.Set {
	if sig, ok := m.signatures[dir]; ok {
		return sig
	}

	if entries == nil {
		entries = listing.ListOrEmpty(m.lister, filepath.Join(m.sourceRoot, dir))
	}

	sig := mediafilter.Signature(entries)
	m.signatures[dir] = sig

	m.log.Tracef("Signature for %q: %v", dir, sig.List())
	return sig
}

func (m *Matcher) logResult(source string, target string, stage Stage) {
	if stage == StageNone {
		m.log.Debugf("No target found for: %q", source)
		return
	}
	m.log.WithField("stage", stage.String()).Debugf("Matched %q -> %q", source, target)
}
