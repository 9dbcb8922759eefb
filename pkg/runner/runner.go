package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/autobrr/animelink/pkg/contentcache"
	"github.com/autobrr/animelink/pkg/expression"
	"github.com/autobrr/animelink/pkg/listing"
	"github.com/autobrr/animelink/pkg/logger"
	"github.com/autobrr/animelink/pkg/mapping"
	"github.com/autobrr/animelink/pkg/matcher"
	"github.com/autobrr/animelink/pkg/reflink"
)

type Action int

const (
	// ActionTest resolves targets without copying anything.
	ActionTest Action = iota
	// ActionRenew also refreshes the kind of already recorded sources.
	ActionRenew
	// ActionReflink clones every resolved source into its target.
	ActionReflink
)

func (a Action) String() string {
	switch a {
	case ActionRenew:
		return "renew"
	case ActionReflink:
		return "reflink"
	default:
		return "test"
	}
}

type Options struct {
	Action      Action
	StatePath   string
	SourcePath  string
	LibraryPath string
	Ignore      []expression.CompiledExpression
	DryRun      bool

	// Fs backs listing and the state file; defaults to the host filesystem.
	Fs afero.Fs
	// Cloner performs the copy for ActionReflink; defaults to reflink.New().
	Cloner reflink.Cloner
}

// Report summarizes one pass.
type Report struct {
	Action      Action
	Added       []string
	Renewed     []string
	Resolutions []mapping.Resolution
	Cloned      []mapping.Path
	Failed      int
	Listings    int
	Targets     int
	Elapsed     time.Duration

	// Records is the state as saved at the end of the pass.
	Records []mapping.Record
}

// Run performs one pass: discover new sources, resolve their targets,
// optionally clone them and persist the state.
func Run(ctx context.Context, opts Options) (*Report, error) {
	start := time.Now()
	log := logger.GetLogger("runner")

	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	lister := listing.NewCounting(listing.New(fs))

	report := &Report{Action: opts.Action}

	st, err := mapping.LoadState(fs, opts.StatePath)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	log.Debugf("Loaded %d records from: %q", len(st.Records), opts.StatePath)

	records, discovered, err := mapping.Discover(lister, opts.SourcePath, st.Records, mapping.DiscoverOptions{
		Renew:  opts.Action == ActionRenew,
		Ignore: ignoreFunc(opts.Ignore, log),
	})
	if err != nil {
		return nil, fmt.Errorf("discover sources: %w", err)
	}
	st.Records = records
	report.Added = discovered.Added
	report.Renewed = discovered.Renewed

	targets, err := listTargets(lister, opts.LibraryPath)
	if err != nil {
		return nil, fmt.Errorf("list library: %w", err)
	}
	st.MergeTargets(targets)
	report.Targets = len(st.Targets)
	log.Debugf("Using %d targets from: %q", len(st.Targets), opts.LibraryPath)

	registry := contentcache.NewRegistry(opts.LibraryPath, lister)
	m := matcher.New(registry, lister, opts.SourcePath, st.Targets)

	report.Resolutions = mapping.ResolveAll(st.Records, m)
	if err := mapping.SetTargets(st.Records, report.Resolutions); err != nil {
		return nil, fmt.Errorf("set targets: %w", err)
	}
	log.Debugf("Built %d target caches", registry.Len())

	if opts.Action == ActionReflink {
		report.Cloned, report.Failed = clone(ctx, opts, st.Records, report.Resolutions, log)
		if err := mapping.SetActive(st.Records, report.Cloned, false); err != nil {
			return nil, fmt.Errorf("set active: %w", err)
		}
	}

	report.Records = st.Records

	if err := st.Save(fs, opts.StatePath); err != nil {
		return nil, fmt.Errorf("save state: %w", err)
	}

	report.Listings = lister.Total()
	report.Elapsed = time.Since(start)
	return report, nil
}

func listTargets(lister listing.Lister, libraryPath string) ([]string, error) {
	entries, err := lister.List(libraryPath)
	if err != nil {
		return nil, err
	}

	targets := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir {
			targets = append(targets, e.Name)
		}
	}
	return targets, nil
}

func clone(ctx context.Context, opts Options, records []mapping.Record, resolutions []mapping.Resolution,
	log *logrus.Entry) ([]mapping.Path, int) {

	cloner := opts.Cloner
	if cloner == nil {
		cloner = reflink.New()
	}

	var (
		cloned []mapping.Path
		failed int
	)

	for _, r := range resolutions {
		if err := ctx.Err(); err != nil {
			log.WithError(err).Warn("Clone interrupted")
			break
		}

		dir, err := mapping.SourceDir(records, r.Path)
		if err != nil {
			log.WithError(err).Errorf("Failed locating source for path %s", r.Path)
			failed++
			continue
		}

		src := filepath.Join(opts.SourcePath, dir)
		dst := filepath.Join(opts.LibraryPath, r.Target)

		log.Info("-----")
		log.Infof("Clone %q -> %q", src, dst)

		if opts.DryRun {
			log.Warn("Dry-run enabled, skipping clone...")
			continue
		}

		if err := cloner.Clone(ctx, src, dst); err != nil {
			log.WithError(err).Error("Failed cloning")
			failed++
			continue
		}

		log.Info("Cloned")
		cloned = append(cloned, r.Path)
	}

	return cloned, failed
}

func ignoreFunc(expressions []expression.CompiledExpression, log *logrus.Entry) func(listing.Entry) bool {
	if len(expressions) == 0 {
		return nil
	}

	return func(e listing.Entry) bool {
		match, text, err := expression.CheckSourceSingleMatch(e, expressions)
		if err != nil {
			log.WithError(err).Warnf("Failed evaluating ignore filters for: %q", e.Name)
			return false
		}
		if match {
			log.Tracef("Source %q matched ignore filter: %s", e.Name, text)
		}
		return match
	}
}
