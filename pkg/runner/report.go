package runner

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/autobrr/animelink/pkg/mapping"
)

const (
	StatusMatched  = "matched"
	StatusAssigned = "assigned"
	StatusCloned   = "cloned"
	StatusNested   = "nested"
)

// Status describes what the pass did with res.
func (r *Report) Status(res mapping.Resolution) string {
	for _, p := range r.Cloned {
		if p == res.Path {
			return StatusCloned
		}
	}
	if res.Existing {
		return StatusAssigned
	}
	return StatusMatched
}

// Summary is a one line description of the pass.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d new, %d resolved, %d cloned, %d failed", len(r.Added), len(r.Resolutions),
		len(r.Cloned), r.Failed)
}

// Render writes the resolutions as a table.
func (r *Report) Render(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Source", "Target", "Status"})

	for _, res := range r.Resolutions {
		t.AppendRow(table.Row{res.Path.String(), res.Source, res.Target, r.Status(res)})
	}

	for i := range r.Records {
		rec := &r.Records[i]
		if !rec.IsActive() || !rec.IsNested() {
			continue
		}
		if targets := rec.ChildTargets(); len(targets) > 0 {
			t.AppendRow(table.Row{strconv.Itoa(i), rec.Source, strings.Join(targets, ", "), StatusNested})
		}
	}

	t.AppendFooter(table.Row{"", fmt.Sprintf("%d new", len(r.Added)), fmt.Sprintf("%d targets", r.Targets),
		fmt.Sprintf("%d cloned / %d failed", len(r.Cloned), r.Failed)})
	t.Render()
}
