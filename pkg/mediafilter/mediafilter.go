// Package mediafilter decides which directory entries carry enough signal to be
// indexed when fingerprinting a folder.
//
// Media files are kept by name. Folders are only kept when their name is long
// or starts with "season", since short folder names such as "Extras" or "SPs"
// appear in almost every release and say nothing about where it belongs.
// Kept folders are also eligible for descent.
package mediafilter

import (
	"strings"

	"github.com/scylladb/go-set/strset"

	"github.com/autobrr/animelink/pkg/listing"
)

// Kind is the classification of a single directory entry.
type Kind int

const (
	Ignore Kind = iota
	Signal
	Recurse
)

const (
	// LongNameThreshold is the folder name length (in bytes) above which a
	// folder is considered significant.
	LongNameThreshold = 20

	seasonPrefix = "season"
)

// MediaExtensions are the container formats indexed as signal.
var MediaExtensions = []string{".mkv", ".mp4", ".avi"}

// Result of classifying an entry. Path is only set for Recurse.
type Result struct {
	Kind Kind
	Name string
	Path string
}

func (k Kind) String() string {
	switch k {
	case Signal:
		return "signal"
	case Recurse:
		return "recurse"
	default:
		return "ignore"
	}
}

// Classify applies the signal rules to entry.
func Classify(entry listing.Entry) Result {
	switch {
	case entry.IsFile:
		if IsMediaFile(entry.Name) {
			return Result{Kind: Signal, Name: entry.Name}
		}
	case entry.IsDir:
		if IsSignificantDir(entry.Name) {
			return Result{Kind: Recurse, Name: entry.Name, Path: entry.Path}
		}
	}

	return Result{Kind: Ignore, Name: entry.Name}
}

// IsMediaFile reports whether name ends with one of MediaExtensions.
// The comparison is case sensitive.
func IsMediaFile(name string) bool {
	for _, ext := range MediaExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func IsSignificantDir(name string) bool {
	return len(name) > LongNameThreshold || strings.HasPrefix(strings.ToLower(name), seasonPrefix)
}

// Signature returns the signal names found among entries. It does not descend.
func Signature(entries []listing.Entry) *strset.Set {
	sig := strset.NewWithSize(len(entries))
	for _, e := range entries {
		if r := Classify(e); r.Kind != Ignore {
			sig.Add(r.Name)
		}
	}
	return sig
}
