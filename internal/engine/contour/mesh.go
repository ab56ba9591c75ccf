// Package contour extracts triangle meshes from voxel blocks by dual
// contouring over Hermite data.
//
// One pass walks the lattice once (z outer, y middle, x inner). Each cell with
// mixed occupancy gathers its edge crossings, solves for a vertex position,
// emits one vertex per normal cluster and connects to the vertices of the
// already-visited neighbor cells.
package contour

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/voxmesh/internal/engine/voxelbuffer"
	"github.com/Faultbox/voxmesh/internal/logger"
	"github.com/Faultbox/voxmesh/pkg/math"
	"github.com/Faultbox/voxmesh/pkg/voxel"
)

// maxCrossings is the number of edges of a cube.
const maxCrossings = len(edges)

// Options controls placement and debug output of a meshing pass.
type Options struct {
	// Minimum is the world position of sample (0, 0, 0).
	Minimum math.Vec3
	// Scale is the world extent of the block. Zero means one unit per sample.
	Scale float32
	// DisplayHermite records a line segment for every crossing normal.
	DisplayHermite bool
}

// cellSize returns the world distance between neighboring samples.
func (o Options) cellSize(size int) float32 {
	highest := float32(size - 1)
	if o.Scale == 0 {
		return 1
	}
	return o.Scale / highest
}

// Mesh builds the triangle mesh of a block. The block must pass
// Block.Validate; Mesh panics otherwise.
func Mesh(block voxel.Block, opts Options) *voxelbuffer.Buffer {
	if err := block.Validate(); err != nil {
		panic(errors.Wrap(err, "contour: invalid block"))
	}

	start := time.Now()
	size := block.Color.Size
	cellSize := opts.cellSize(size)

	s := newSampler(block)
	st := newStitcher(size)
	crossings := make([]EdgeCrossing, 0, maxCrossings)
	var hermite []math.Vec3

	for z := 0; z <= size; z++ {
		for y := 0; y <= size; y++ {
			for x := 0; x <= size; x++ {
				c := s.sample(x, y, z)
				if c.uniform() {
					st.record(x, y, noVertex)
					continue
				}

				crossings = s.crossings(&c, crossings[:0])
				sol, ok := solve(crossings)
				if !ok {
					st.record(x, y, noVertex)
					continue
				}

				base := math.Vec3{X: float32(c.sample[0]), Y: float32(c.sample[1]), Z: float32(c.sample[2])}
				if opts.DisplayHermite {
					for _, crossing := range crossings {
						from := opts.Minimum.Add(base.Add(crossing.Point).Scale(cellSize))
						hermite = append(hermite, from, from.Add(crossing.Normal.Scale(cellSize)))
					}
				}

				position := opts.Minimum.Add(base.Add(sol.position).Scale(cellSize))
				index := st.emit(&sol, position)
				st.stitch(&c, index)
				st.record(x, y, index)
			}
			st.endRow()
		}
		st.endPlane()
	}

	var materials []voxel.Material
	if block.Material != nil {
		materials = block.Material.Materials
	}

	logger.Debug("block meshed",
		zap.Int("size", size),
		zap.Int("vertices", len(st.vertices)),
		zap.Int("triangles", len(st.indices)/3),
		zap.Duration("elapsed", time.Since(start)))

	return voxelbuffer.New(voxelbuffer.Data{
		Vertices:  st.vertices,
		Indices:   st.indices,
		Hermite:   hermite,
		Quads:     st.quads,
		Size:      size,
		Minimum:   opts.Minimum,
		CellSize:  cellSize,
		Materials: materials,
	})
}
