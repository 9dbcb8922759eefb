package contentcache

import (
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/autobrr/animelink/pkg/listing"
	"github.com/autobrr/animelink/pkg/logger"
	"github.com/autobrr/animelink/pkg/mediafilter"
)

// Registry owns the content cache of every target probed during one matching
// pass. Caches are built on first use, never rebuilt and never evicted.
// A Registry is not safe for concurrent use.
type Registry struct {
	root   string
	lister listing.Lister
	log    *logrus.Entry

	// order holds target names in the order their caches were built
	order  []string
	caches map[string]*Node
}

// NewRegistry returns an empty registry for targets located under root.
func NewRegistry(root string, lister listing.Lister) *Registry {
	return &Registry{
		root:   root,
		lister: lister,
		log:    logger.GetLogger("contentcache"),
		caches: make(map[string]*Node),
	}
}

// GetOrBuild returns the cache for target, walking the target folder the first
// time it is requested. A folder that cannot be listed produces an empty branch.
func (r *Registry) GetOrBuild(target string) *Node {
	if cache, exists := r.caches[target]; exists {
		return cache
	}

	cache := NewBranch()
	r.fill(cache, filepath.Join(r.root, target))

	r.caches[target] = cache
	r.order = append(r.order, target)

	r.log.Tracef("Built cache for %q: %d entries, %d nodes", target, cache.Len(), cache.Size())
	return cache
}

// Get returns the cache for target without building it.
func (r *Registry) Get(target string) (*Node, bool) {
	cache, ok := r.caches[target]
	return cache, ok
}

func (r *Registry) Built(target string) bool {
	_, ok := r.caches[target]
	return ok
}

func (r *Registry) Len() int {
	return len(r.order)
}

// Targets returns the built targets in build order.
func (r *Registry) Targets() []string {
	targets := make([]string, len(r.order))
	copy(targets, r.order)
	return targets
}

// Find returns the first target, in build order, whose cache satisfies match.
func (r *Registry) Find(match func(cache *Node) bool) (string, bool) {
	for _, target := range r.order {
		if match(r.caches[target]) {
			return target, true
		}
	}
	return "", false
}

// fill indexes dir into node, descending into every folder the signal filter
// marks for recursion.
func (r *Registry) fill(node *Node, dir string) {
	for _, entry := range listing.ListOrEmpty(r.lister, dir) {
		res := mediafilter.Classify(entry)

		switch res.Kind {
		case mediafilter.Signal:
			node.Insert(res.Name)
		case mediafilter.Recurse:
			if child := node.InsertBranch(res.Name); child != nil {
				r.fill(child, res.Path)
			}
		default:
			r.log.Tracef("Ignoring entry: %q", entry.Path)
		}
	}
}
