package pipeline

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Faultbox/levelchunk/internal/flatten"
	"github.com/Faultbox/levelchunk/pkg/math"
)

func formatVec(v math.Vec3) string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
}

func formatBounds(b math.Bounds) string {
	if b.IsEmpty() {
		return "-"
	}
	return formatVec(b.Min) + " - " + formatVec(b.Max)
}

// String renders the chunked models as a table.
func (r *VisualReport) String() string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Model", "Triangles", "Chunks", "File", "Chunk Triangles", "Vertices", "Bounds"})
	for _, m := range r.Models {
		chunks := "-"
		if m.ChunkCount > 0 {
			chunks = fmt.Sprint(m.ChunkCount)
		}
		for i, c := range m.Chunks {
			if i == 0 {
				t.AppendRow(table.Row{m.Name, m.Triangles, chunks, c.File, c.Triangles, c.Vertices, formatBounds(c.Bounds)})
				continue
			}
			t.AppendRow(table.Row{"", "", "", c.File, c.Triangles, c.Vertices, formatBounds(c.Bounds)})
		}
	}
	for _, name := range r.Failed {
		t.AppendRow(table.Row{name, "", "", "FAILED", "", "", ""})
	}
	return t.Render()
}

// String renders the registered collision models as a table.
func (r *CollisionReport) String() string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Model", "Triangles", "Rotation", "Scale", "Swap XZ", "Fallbacks", "Per Chunk"})
	for _, m := range r.Models {
		rotation := "-"
		if m.Estimated {
			rotation = fmt.Sprint(m.Rotation)
		}
		counts := make([]string, len(m.Chunks))
		for i, n := range m.Chunks {
			counts[i] = fmt.Sprint(n)
		}
		t.AppendRow(table.Row{m.Name, m.Triangles, rotation, fmt.Sprintf("%.3f", m.Scale), m.SwapXZ, m.Fallbacks, strings.Join(counts, " ")})
	}
	for _, name := range r.Failed {
		t.AppendRow(table.Row{name, "", "", "", "", "", "FAILED"})
	}
	for _, name := range r.Skipped {
		t.AppendRow(table.Row{name, "", "", "", "", "", "skipped"})
	}
	return t.Render()
}

// String renders the container summary as a two column table.
func (i *Info) String() string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRow(table.Row{"Path", i.Path})
	t.AppendRow(table.Row{"Version", i.Version})
	if i.Generator != "" {
		t.AppendRow(table.Row{"Generator", i.Generator})
	}
	t.AppendRow(table.Row{"Meshes", i.Meshes})
	t.AppendRow(table.Row{"Nodes", i.Nodes})
	t.AppendRow(table.Row{"Primitives", i.Primitives})
	for _, m := range i.Modes {
		t.AppendRow(table.Row{"  " + flatten.ModeName(m.Mode), m.Count})
	}
	t.AppendRow(table.Row{"Triangles", i.Triangles})
	t.AppendRow(table.Row{"Bounds", formatBounds(i.Bounds)})
	t.AppendRow(table.Row{"Materials", i.Materials})
	t.AppendRow(table.Row{"Textures", i.Textures})
	t.AppendRow(table.Row{"Images", i.Images})
	return t.Render()
}
