package contentcache

import (
	"sort"

	"github.com/scylladb/go-set/strset"
)

// Node is one level of a content cache tree.
//
// A leaf has no children map and represents a media file, or a folder that was
// never expanded. A branch maps the signal names found directly inside a folder
// to their own nodes. Trees are append-only: existing children are never
// replaced, so a *Node handed out for a sub-branch stays valid for the whole
// pass.
type Node struct {
	children map[string]*Node
}

func NewBranch() *Node {
	return &Node{children: make(map[string]*Node)}
}

func NewLeaf() *Node {
	return &Node{}
}

func (n *Node) IsLeaf() bool {
	return n == nil || n.children == nil
}

// Len returns the number of direct children.
func (n *Node) Len() int {
	if n.IsLeaf() {
		return 0
	}
	return len(n.children)
}

// Insert adds name as a leaf child. Inserting into a leaf, or inserting a name
// that already exists, is a no-op.
func (n *Node) Insert(name string) {
	if n.IsLeaf() {
		return
	}
	if _, exists := n.children[name]; exists {
		return
	}
	n.children[name] = NewLeaf()
}

// InsertBranch adds name as an empty branch child and returns it so the caller
// can populate it. An existing branch under name is returned as is, an existing
// leaf is upgraded in place. Returns nil when n is a leaf.
func (n *Node) InsertBranch(name string) *Node {
	if n.IsLeaf() {
		return nil
	}

	if child, exists := n.children[name]; exists {
		if child.children == nil {
			child.children = make(map[string]*Node)
		}
		return child
	}

	child := NewBranch()
	n.children[name] = child
	return child
}

// Has reports whether name is a direct child of n.
func (n *Node) Has(name string) bool {
	if n.IsLeaf() {
		return false
	}
	_, ok := n.children[name]
	return ok
}

// Child returns the direct child stored under name.
func (n *Node) Child(name string) (*Node, bool) {
	if n.IsLeaf() {
		return nil, false
	}
	child, ok := n.children[name]
	return child, ok
}

// Contains reports whether name is a key anywhere in the tree rooted at n.
func (n *Node) Contains(name string) bool {
	if n.IsLeaf() {
		return false
	}

	if _, ok := n.children[name]; ok {
		return true
	}

	for _, child := range n.children {
		if child.Contains(name) {
			return true
		}
	}

	return false
}

// ContainsAny reports whether at least one of names is contained in the tree.
// An empty or nil set never matches.
func (n *Node) ContainsAny(names *strset.Set) bool {
	if names == nil || n.IsLeaf() {
		return false
	}

	found := false
	names.Each(func(name string) bool {
		found = n.Contains(name)
		return !found
	})

	return found
}

// Keys returns the direct child names, sorted.
func (n *Node) Keys() []string {
	if n.IsLeaf() {
		return nil
	}

	keys := make([]string, 0, len(n.children))
	for k := range n.children {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// Walk visits every node below n depth first, children in sorted order.
// path holds the names from n down to the visited node; it is reused between
// calls and must be copied if retained. Returning false stops the walk.
func (n *Node) Walk(fn func(path []string, node *Node) bool) {
	n.walk(make([]string, 0, 8), fn)
}

func (n *Node) walk(path []string, fn func([]string, *Node) bool) bool {
	for _, k := range n.Keys() {
		child := n.children[k]
		p := append(path, k)

		if !fn(p, child) {
			return false
		}
		if !child.walk(p, fn) {
			return false
		}
	}
	return true
}

// Size returns the number of nodes below n.
func (n *Node) Size() int {
	size := 0
	n.Walk(func([]string, *Node) bool {
		size++
		return true
	})
	return size
}

// Equal reports whether two trees have the same shape and keys.
func (n *Node) Equal(other *Node) bool {
	if n.IsLeaf() || other.IsLeaf() {
		return n.IsLeaf() == other.IsLeaf()
	}

	if len(n.children) != len(other.children) {
		return false
	}

	for k, child := range n.children {
		otherChild, ok := other.children[k]
		if !ok || !child.Equal(otherChild) {
			return false
		}
	}

	return true
}
