// Package voxelbuffer holds the immutable triangle mesh produced for one voxel
// block together with the lattice index used for ray queries.
package voxelbuffer

import (
	"github.com/Faultbox/voxmesh/internal/engine/picking"
	"github.com/Faultbox/voxmesh/pkg/math"
	"github.com/Faultbox/voxmesh/pkg/voxel"
)

// Point is one mesh vertex.
type Point struct {
	Position  math.Vec3
	Color     [3]uint8
	Normal    [3]int8 // Unit normal scaled by 127
	Materials [4]uint8
	Weights   [4]uint8
}

// SetNormal stores n quantized to signed bytes.
func (p *Point) SetNormal(n math.Vec3) {
	p.Normal = [3]int8{int8(n.X * 127), int8(n.Y * 127), int8(n.Z * 127)}
}

// UnitNormal returns the stored normal as floats.
func (p Point) UnitNormal() math.Vec3 {
	return math.Vec3{
		X: float32(p.Normal[0]) / 127,
		Y: float32(p.Normal[1]) / 127,
		Z: float32(p.Normal[2]) / 127,
	}
}

// Coord identifies a lattice cell of the meshing pass.
type Coord struct {
	X, Y, Z int
}

// Data is the raw output of a meshing pass.
type Data struct {
	Vertices []Point
	Indices  []uint32 // Triangle triples; each quad is two consecutive triangles
	Hermite  []math.Vec3
	Quads    map[Coord][]uint32 // Lattice cell -> start index of a quad's triangles
	Size     int
	Minimum  math.Vec3
	CellSize float32

	Materials []voxel.Material
}

// Buffer is a meshed voxel block. It is read-only after New and safe for
// concurrent ray queries.
type Buffer struct {
	vertices  []Point
	indices   []uint32
	hermite   []math.Vec3
	quads     map[Coord][]uint32
	size      int
	minimum   math.Vec3
	cellSize  float32
	materials []voxel.Material
	bounds    picking.AABB
}

// New takes ownership of data and builds a buffer.
func New(data Data) *Buffer {
	quads := data.Quads
	if quads == nil {
		quads = make(map[Coord][]uint32)
	}
	cellSize := data.CellSize
	if cellSize <= 0 {
		cellSize = 1
	}
	extent := float32(0)
	if data.Size > 1 {
		extent = float32(data.Size-1) * cellSize
	}
	return &Buffer{
		vertices:  data.Vertices,
		indices:   data.Indices,
		hermite:   data.Hermite,
		quads:     quads,
		size:      data.Size,
		minimum:   data.Minimum,
		cellSize:  cellSize,
		materials: data.Materials,
		bounds:    picking.NewAABB(data.Minimum, data.Minimum.Add(math.Splat(extent))),
	}
}

// VertexCount returns the number of vertices.
func (b *Buffer) VertexCount() int { return len(b.vertices) }

// IndexCount returns the number of triangle indices.
func (b *Buffer) IndexCount() int { return len(b.indices) }

// TriangleCount returns the number of triangles.
func (b *Buffer) TriangleCount() int { return len(b.indices) / 3 }

// Vertices returns the vertex array. Callers must not modify it.
func (b *Buffer) Vertices() []Point { return b.vertices }

// Indices returns the triangle index array. Callers must not modify it.
func (b *Buffer) Indices() []uint32 { return b.indices }

// HermiteSegments returns debug line segments as consecutive start/end pairs.
// Empty unless the block was meshed with Hermite display enabled.
func (b *Buffer) HermiteSegments() []math.Vec3 { return b.hermite }

// Materials returns the material table referenced by vertex material ids.
func (b *Buffer) Materials() []voxel.Material { return b.materials }

// Size returns the lattice size of the source block.
func (b *Buffer) Size() int { return b.size }

// Bounds returns the world-space box covered by the block.
func (b *Buffer) Bounds() picking.AABB { return b.bounds }

// QuadsAt returns the triangle start indices registered under a lattice cell.
func (b *Buffer) QuadsAt(c Coord) []uint32 { return b.quads[c] }

// Empty reports whether the buffer has no triangles.
func (b *Buffer) Empty() bool { return len(b.indices) == 0 }
