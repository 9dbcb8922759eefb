package matcher

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/animelink/pkg/contentcache"
	"github.com/autobrr/animelink/pkg/listing"
)

const (
	sourceRoot  = "/source"
	libraryRoot = "/anime"
)

type fixture struct {
	fs       afero.Fs
	counting *listing.Counting
	registry *contentcache.Registry
}

func newFixture(t *testing.T, files []string, dirs []string) *fixture {
	t.Helper()

	fs := afero.NewMemMapFs()
	for _, d := range dirs {
		require.NoError(t, fs.MkdirAll(d, 0o755))
	}
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fs, f, nil, 0o644))
	}

	counting := listing.NewCounting(listing.New(fs))
	return &fixture{
		fs:       fs,
		counting: counting,
		registry: contentcache.NewRegistry(libraryRoot, counting),
	}
}

func (f *fixture) matcher(targets ...string) *Matcher {
	return New(f.registry, f.counting, sourceRoot, targets)
}

func lib(parts ...string) string {
	return filepath.Join(append([]string{libraryRoot}, parts...)...)
}

func src(parts ...string) string {
	return filepath.Join(append([]string{sourceRoot}, parts...)...)
}

func TestFindTarget_SeasonFolderScenario(t *testing.T) {
	f := newFixture(t,
		[]string{lib("Alpha", "clip.mkv"), lib("Beta", "notes.txt"), src("Alpha.S01", "readme.txt")},
		[]string{lib("Alpha", "Season 01"), src("Alpha.S01", "Season 01")},
	)
	m := f.matcher("Alpha", "Beta")

	entries := []listing.Entry{
		{Name: "Season 01", Path: src("Alpha.S01", "Season 01"), IsDir: true},
		{Name: "readme.txt", Path: src("Alpha.S01", "readme.txt"), IsFile: true},
	}

	target, stage := m.FindStage("Alpha.S01", entries)
	assert.Equal(t, "Alpha", target)
	assert.Equal(t, StageFinal, stage)

	// the given listing is used, the source folder is never listed
	assert.Equal(t, 0, f.counting.Calls(src("Alpha.S01")))
}

func TestFindTarget_ListsSourceWhenNoEntriesGiven(t *testing.T) {
	f := newFixture(t,
		[]string{lib("Alpha", "clip.mkv"), lib("Beta", "notes.txt"), src("Alpha.S01", "readme.txt")},
		[]string{lib("Alpha", "Season 01"), src("Alpha.S01", "Season 01")},
	)
	m := f.matcher("Alpha", "Beta")

	target, ok := m.FindTarget("Alpha.S01", nil)
	require.True(t, ok)
	assert.Equal(t, "Alpha", target)
	assert.Equal(t, 1, f.counting.Calls(src("Alpha.S01")))
}

func TestFindTarget_NoMatch(t *testing.T) {
	f := newFixture(t,
		[]string{lib("Alpha", "clip.mkv"), lib("Beta", "other.mkv"), src("Gamma", "gamma.mkv")},
		nil,
	)
	m := f.matcher("Alpha", "Beta")

	target, ok := m.FindTarget("Gamma", nil)
	assert.False(t, ok)
	assert.Empty(t, target)

	// every target was built while searching
	assert.True(t, f.registry.Built("Alpha"))
	assert.True(t, f.registry.Built("Beta"))
}

func TestFindTarget_FirstBuiltWins(t *testing.T) {
	f := newFixture(t,
		[]string{lib("A", "x.mkv"), lib("B", "x.mkv")},
		nil,
	)
	m := f.matcher("A", "B")

	f.registry.GetOrBuild("B")
	f.registry.GetOrBuild("A")

	entries := []listing.Entry{{Name: "x.mkv", Path: src("S", "x.mkv"), IsFile: true}}
	target, stage := m.FindStage("S", entries)
	assert.Equal(t, "B", target)
	assert.Equal(t, StageWarmSignature, stage)
}

func TestFindTarget_WarmNameProbe(t *testing.T) {
	const source = "[Group] A Long Release Folder Name"

	f := newFixture(t, nil, []string{lib("Show", source)})
	m := f.matcher("Show")
	f.registry.GetOrBuild("Show")

	target, stage := m.FindStage(source, []listing.Entry{})
	assert.Equal(t, "Show", target)
	assert.Equal(t, StageWarmName, stage)
}

func TestFindTarget_ColdNameProbeStopsAtFirstMatch(t *testing.T) {
	const source = "[Group] A Long Release Folder Name"

	f := newFixture(t,
		[]string{lib("First", "unrelated.mkv"), lib("Third", "third.mkv")},
		[]string{lib("Second", source)},
	)
	m := f.matcher("First", "Second", "Third")

	target, stage := m.FindStage(source, []listing.Entry{})
	assert.Equal(t, "Second", target)
	assert.Equal(t, StageColdName, stage)

	assert.True(t, f.registry.Built("First"))
	assert.True(t, f.registry.Built("Second"))
	assert.False(t, f.registry.Built("Third"))
	assert.Equal(t, 0, f.counting.Calls(lib("Third")))
}

func TestFindTarget_ColdNameIgnoresSignature(t *testing.T) {
	// signature matches "Late" but the name probe matches "Early" during the
	// forced builds, which run before the final signature probe
	const source = "[Group] A Long Release Folder Name"

	f := newFixture(t,
		[]string{lib("Late", "ep01.mkv")},
		[]string{lib("Early", source)},
	)
	m := f.matcher("Late", "Early")

	entries := []listing.Entry{{Name: "ep01.mkv", Path: src(source, "ep01.mkv"), IsFile: true}}
	target, stage := m.FindStage(source, entries)
	assert.Equal(t, "Early", target)
	assert.Equal(t, StageColdName, stage)
}

func TestFindTarget_ReusesCachesAcrossSources(t *testing.T) {
	f := newFixture(t,
		[]string{lib("Alpha", "a1.mkv"), lib("Alpha", "a2.mkv"), lib("Beta", "b1.mkv")},
		nil,
	)
	m := f.matcher("Alpha", "Beta")

	one := []listing.Entry{{Name: "a1.mkv", IsFile: true}}
	two := []listing.Entry{{Name: "a2.mkv", IsFile: true}}

	target, stage := m.FindStage("first", one)
	assert.Equal(t, "Alpha", target)
	assert.Equal(t, StageFinal, stage)

	listings := f.counting.Total()

	target, stage = m.FindStage("second", two)
	assert.Equal(t, "Alpha", target)
	assert.Equal(t, StageWarmSignature, stage)
	assert.Equal(t, listings, f.counting.Total())
}

func TestFind_NestedSourceDirectory(t *testing.T) {
	f := newFixture(t,
		[]string{lib("Show", "Season 02", "ep01.mkv"), src("Batch", "Show S2", "ep01.mkv")},
		nil,
	)
	m := f.matcher("Show")

	target, ok := m.Find("Show S2", filepath.Join("Batch", "Show S2"))
	require.True(t, ok)
	assert.Equal(t, "Show", target)
	assert.Equal(t, 1, f.counting.Calls(src("Batch", "Show S2")))
}

func TestFind_SignatureMemoized(t *testing.T) {
	f := newFixture(t, []string{src("S", "nothing.mkv")}, nil)
	m := f.matcher()

	_, ok := m.Find("S", "S")
	assert.False(t, ok)
	_, ok = m.Find("S", "S")
	assert.False(t, ok)

	assert.Equal(t, 1, f.counting.Calls(src("S")))
}

func TestFind_UnreadableSource(t *testing.T) {
	f := newFixture(t, []string{lib("Alpha", "clip.mkv")}, nil)
	m := f.matcher("Alpha")

	target, ok := m.Find("missing", "missing")
	assert.False(t, ok)
	assert.Empty(t, target)
}

func TestStage_String(t *testing.T) {
	assert.Equal(t, "none", StageNone.String())
	assert.Equal(t, "warm-name", StageWarmName.String())
	assert.Equal(t, "warm-signature", StageWarmSignature.String())
	assert.Equal(t, "cold-name", StageColdName.String())
	assert.Equal(t, "final", StageFinal.String())
}
