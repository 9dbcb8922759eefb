package mediafilter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/autobrr/animelink/pkg/listing"
)

func file(name string) listing.Entry {
	return listing.Entry{Name: name, Path: "/src/" + name, IsFile: true}
}

func dir(name string) listing.Entry {
	return listing.Entry{Name: name, Path: "/src/" + name, IsDir: true}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		entry    listing.Entry
		wantKind Kind
		wantPath string
	}{
		{name: "mkv_file", entry: file("[Group] Show - 01.mkv"), wantKind: Signal},
		{name: "mp4_file", entry: file("clip.mp4"), wantKind: Signal},
		{name: "avi_file", entry: file("old.avi"), wantKind: Signal},
		{name: "text_file", entry: file("notes.txt"), wantKind: Ignore},
		{name: "uppercase_extension", entry: file("CLIP.MKV"), wantKind: Ignore},
		{name: "extension_only_in_middle", entry: file("clip.mkv.part"), wantKind: Ignore},
		{name: "season_dir_uppercase", entry: dir("SEASON 2"), wantKind: Recurse, wantPath: "/src/SEASON 2"},
		{name: "season_dir", entry: dir("Season 01"), wantKind: Recurse, wantPath: "/src/Season 01"},
		{name: "short_dir", entry: dir("extras"), wantKind: Ignore},
		{name: "exactly_threshold_dir", entry: dir("12345678901234567890"), wantKind: Ignore},
		{name: "long_dir", entry: dir("[VCB-Studio] Kimi no Na wa [Ma10p_1080p]"), wantKind: Recurse,
			wantPath: "/src/[VCB-Studio] Kimi no Na wa [Ma10p_1080p]"},
		{name: "symlink", entry: listing.Entry{Name: "link.mkv", Path: "/src/link.mkv"}, wantKind: Ignore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.entry)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.entry.Name, got.Name)
			assert.Equal(t, tt.wantPath, got.Path)
		})
	}
}

func TestSignature(t *testing.T) {
	sig := Signature([]listing.Entry{
		dir("Season 01"),
		file("readme.txt"),
		file("ep01.mkv"),
		dir("SPs"),
	})

	assert.ElementsMatch(t, []string{"Season 01", "ep01.mkv"}, sig.List())
}

func TestSignature_Empty(t *testing.T) {
	assert.True(t, Signature(nil).IsEmpty())
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "ignore", Ignore.String())
	assert.Equal(t, "signal", Signal.String())
	assert.Equal(t, "recurse", Recurse.String())
}
