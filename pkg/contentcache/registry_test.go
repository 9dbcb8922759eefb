package contentcache

import (
	"path/filepath"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/animelink/pkg/listing"
)

const (
	libraryRoot = "/anime"

	kimi = "君の名は。 [你的名字。]"
)

var kimiContent = []struct {
	name  string
	isDir bool
}{
	{name: "SPs", isDir: true},
	{name: "Season 01", isDir: true},
	{name: "[VCB-Studio] Kimi no Na wa [Ma10p_1080p]", isDir: true},
	{name: "[VCB-Studio] Kimi no Na wa [Ma10p_1080p][x265_flac].mkv"},
	{name: "readme about WebP.txt"},
}

func newLibraryFs(t *testing.T) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	for _, name := range []string{"AIR [青空]", "Just Because!", "true tears [真实之泪]"} {
		require.NoError(t, fs.MkdirAll(filepath.Join(libraryRoot, name), 0o755))
	}

	base := filepath.Join(libraryRoot, kimi)
	for _, c := range kimiContent {
		p := filepath.Join(base, c.name)
		if c.isDir {
			require.NoError(t, fs.MkdirAll(p, 0o755))
		} else {
			require.NoError(t, afero.WriteFile(fs, p, nil, 0o644))
		}
	}

	// nested season content, expanded through "Season 01"
	require.NoError(t, afero.WriteFile(fs, filepath.Join(base, "Season 01", "ep01.mkv"), nil, 0o644))
	require.NoError(t, fs.MkdirAll(filepath.Join(base, "Season 01", "extras"), 0o755))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(base, "SPs", "menu.mkv"), nil, 0o644))

	return fs
}

func TestRegistry_GetOrBuild(t *testing.T) {
	r := NewRegistry(libraryRoot, listing.New(newLibraryFs(t)))

	cache := r.GetOrBuild(kimi)

	want := NewBranch()
	want.Insert("[VCB-Studio] Kimi no Na wa [Ma10p_1080p][x265_flac].mkv")
	want.InsertBranch("[VCB-Studio] Kimi no Na wa [Ma10p_1080p]")
	want.InsertBranch("Season 01").Insert("ep01.mkv")

	assert.True(t, want.Equal(cache), spew.Sdump(cache))
	assert.True(t, cache.Contains("ep01.mkv"))
	assert.False(t, cache.Contains("SPs"))
	assert.False(t, cache.Contains("menu.mkv"))
	assert.False(t, cache.Contains("extras"))
	assert.False(t, cache.Contains("readme about WebP.txt"))

	got, ok := r.Get(kimi)
	require.True(t, ok)
	assert.Same(t, cache, got)
	assert.Equal(t, []string{kimi}, r.Targets())
}

func TestRegistry_GetOrBuild_ListsOnce(t *testing.T) {
	counting := listing.NewCounting(listing.New(newLibraryFs(t)))
	r := NewRegistry(libraryRoot, counting)

	first := r.GetOrBuild(kimi)
	listings := counting.Total()
	second := r.GetOrBuild(kimi)

	assert.Same(t, first, second)
	assert.Equal(t, 1, counting.Calls(filepath.Join(libraryRoot, kimi)))
	assert.Equal(t, listings, counting.Total())
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_GetOrBuild_MissingTarget(t *testing.T) {
	r := NewRegistry(libraryRoot, listing.New(newLibraryFs(t)))

	cache := r.GetOrBuild("does not exist")
	require.NotNil(t, cache)
	assert.False(t, cache.IsLeaf())
	assert.Equal(t, 0, cache.Len())
	assert.True(t, r.Built("does not exist"))
}

func TestRegistry_FindUsesBuildOrder(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, target := range []string{"A", "B"} {
		require.NoError(t, afero.WriteFile(fs, filepath.Join(libraryRoot, target, "x.mkv"), nil, 0o644))
	}
	r := NewRegistry(libraryRoot, listing.New(fs))

	r.GetOrBuild("B")
	r.GetOrBuild("A")

	target, ok := r.Find(func(cache *Node) bool { return cache.Contains("x.mkv") })
	require.True(t, ok)
	assert.Equal(t, "B", target)
	assert.Equal(t, []string{"B", "A"}, r.Targets())

	_, ok = r.Find(func(cache *Node) bool { return cache.Contains("y.mkv") })
	assert.False(t, ok)
}

func TestRegistry_BuiltAndGetWithoutBuilding(t *testing.T) {
	counting := listing.NewCounting(listing.New(newLibraryFs(t)))
	r := NewRegistry(libraryRoot, counting)

	_, ok := r.Get(kimi)
	assert.False(t, ok)
	assert.False(t, r.Built(kimi))
	assert.Equal(t, 0, counting.Total())
}
