package main

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"

	"github.com/Faultbox/voxmesh/internal/worker"
	"github.com/Faultbox/voxmesh/pkg/formats"
)

// statsTable renders per-block mesh sizes followed by summary statistics.
func statsTable(results []worker.Result) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Block", "Vertices", "Triangles", "Elapsed"})

	var vertices, triangles, millis []float64
	for _, res := range results {
		b := res.Buffer
		t.AppendRow(table.Row{res.Name, b.VertexCount(), b.TriangleCount(), res.Elapsed.Round(time.Microsecond)})
		vertices = append(vertices, float64(b.VertexCount()))
		triangles = append(triangles, float64(b.TriangleCount()))
		millis = append(millis, float64(res.Elapsed.Microseconds())/1000)
	}

	if len(results) > 0 {
		t.AppendSeparator()
		for _, s := range []struct {
			name string
			fn   func(stats.Float64Data) (float64, error)
		}{
			{"mean", stats.Mean},
			{"median", stats.Median},
			{"max", stats.Max},
			{"stddev", stats.StandardDeviation},
		} {
			t.AppendRow(table.Row{s.name, summary(s.fn, vertices), summary(s.fn, triangles), summary(s.fn, millis) + " ms"})
		}
	}

	total := 0
	for _, n := range triangles {
		total += int(n)
	}
	t.AppendFooter(table.Row{"Total", "", total, ""})
	return t.Render()
}

// summary formats one statistic, or "-" when it is undefined.
func summary(fn func(stats.Float64Data) (float64, error), data []float64) string {
	v, err := fn(data)
	if err != nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", v)
}

// namedVXB is a parsed block file and its path.
type namedVXB struct {
	name string
	vxb  *formats.VXB
}

// infoTable renders a summary of block files.
func infoTable(files []namedVXB) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"File", "Version", "Size", "Solid", "Crossings", "Materials"})
	for _, f := range files {
		s := f.vxb.Stats()
		t.AppendRow(table.Row{f.name, f.vxb.Version, s.Size, s.Solid, s.Crossings, s.Materials})
	}
	return t.Render()
}
