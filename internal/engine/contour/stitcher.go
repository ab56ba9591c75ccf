package contour

import (
	"github.com/Faultbox/voxmesh/internal/engine/voxelbuffer"
	"github.com/Faultbox/voxmesh/pkg/math"
)

// NormalIndex holds the vertex indices of the normal clusters emitted for
// one cell. Unused slots repeat the first index.
type NormalIndex [maxNormalsPerVertex]int32

// noVertex marks a cell that emitted no vertex.
var noVertex = NormalIndex{-1, -1, -1, -1}

// Valid reports whether the cell emitted a vertex.
func (n NormalIndex) Valid() bool {
	return n[0] >= 0
}

// Closest returns the cluster vertex whose normal best matches normal.
func (n NormalIndex) Closest(normal math.Vec3, vertices []voxelbuffer.Point) uint32 {
	first := n[0]
	closestIndex := first
	closest := dotNormal(normal, vertices[first])
	for _, index := range n[1:] {
		if index == first {
			break
		}
		if product := dotNormal(normal, vertices[index]); product > closest {
			closest = product
			closestIndex = index
		}
	}
	return uint32(closestIndex)
}

func dotNormal(n math.Vec3, p voxelbuffer.Point) float32 {
	return n.X*float32(p.Normal[0]) + n.Y*float32(p.Normal[1]) + n.Z*float32(p.Normal[2])
}

// stitcher accumulates vertices and connects the vertices of neighboring
// cells into quads during a single forward scan. Only the previous cell,
// line and plane are kept.
type stitcher struct {
	width int

	lastX           NormalIndex
	line, lastLine   []NormalIndex
	plane, lastPlane []NormalIndex

	vertices []voxelbuffer.Point
	indices  []uint32
	quads    map[voxelbuffer.Coord][]uint32
}

func newStitcher(size int) *stitcher {
	width := size + 1
	s := &stitcher{
		width:     width,
		lastX:     noVertex,
		line:      make([]NormalIndex, width),
		lastLine:  make([]NormalIndex, width),
		plane:     make([]NormalIndex, width*width),
		lastPlane: make([]NormalIndex, width*width),
		quads:     make(map[voxelbuffer.Coord][]uint32),
	}
	for _, cache := range [][]NormalIndex{s.line, s.lastLine, s.plane, s.lastPlane} {
		for i := range cache {
			cache[i] = noVertex
		}
	}
	return s
}

// emit appends one vertex per normal cluster and returns their indices.
func (s *stitcher) emit(sol *solution, position math.Vec3) NormalIndex {
	point := voxelbuffer.Point{
		Position:  position,
		Color:     sol.color,
		Materials: sol.materials,
		Weights:   sol.weights,
	}

	first := int32(len(s.vertices))
	index := NormalIndex{first, first, first, first}
	for i := 0; i < sol.normalCount; i++ {
		index[i] = int32(len(s.vertices))
		point.SetNormal(sol.normals[i])
		s.vertices = append(s.vertices, point)
	}
	return index
}

// stitch emits the quads for the three edges leaving corner 0 of c toward
// lower lattice coordinates. Cells on the low boundary of any axis only
// seed the caches.
func (s *stitcher) stitch(c *cell, index NormalIndex) {
	x, y, z := c.x, c.y, c.z
	if x == 0 || y == 0 || z == 0 || !index.Valid() {
		return
	}
	w := s.width
	solid := c.solid(0)

	if solid != c.solid(1) {
		s.quad(solid, index, s.lastLine[x], s.lastPlane[(y-1)*w+x], s.lastPlane[y*w+x],
			[4]voxelbuffer.Coord{{x, y, z}, {x, y - 1, z}, {x, y - 1, z - 1}, {x, y, z - 1}})
	}
	if solid != c.solid(2) {
		s.quad(solid, index, s.lastPlane[y*w+x], s.lastPlane[y*w+x-1], s.lastX,
			[4]voxelbuffer.Coord{{x, y, z}, {x - 1, y, z}, {x - 1, y, z - 1}, {x, y, z - 1}})
	}
	if solid != c.solid(4) {
		s.quad(solid, index, s.lastX, s.lastLine[x-1], s.lastLine[x],
			[4]voxelbuffer.Coord{{x, y, z}, {x - 1, y, z}, {x - 1, y - 1, z}, {x, y - 1, z}})
	}
}

// quad connects the current cell vertex with three neighbors around a shared
// edge. The geometric normal spans first and third; it faces away from the
// solid side, and the corner order follows it.
func (s *stitcher) quad(solid bool, current, first, second, third NormalIndex, keys [4]voxelbuffer.Coord) {
	if !first.Valid() || !second.Valid() || !third.Valid() {
		return
	}

	origin := s.vertices[current[0]].Position
	normal := s.vertices[first[0]].Position.Sub(origin).Cross(s.vertices[third[0]].Position.Sub(origin))

	var q [4]uint32
	if solid {
		q[0] = first.Closest(normal, s.vertices)
		q[1] = second.Closest(normal, s.vertices)
		q[2] = third.Closest(normal, s.vertices)
	} else {
		normal = normal.Neg()
		q[0] = third.Closest(normal, s.vertices)
		q[1] = second.Closest(normal, s.vertices)
		q[2] = first.Closest(normal, s.vertices)
	}
	q[3] = current.Closest(normal, s.vertices)

	start := uint32(len(s.indices))
	s.indices = append(s.indices, q[0], q[1], q[2], q[0], q[2], q[3])
	for _, key := range keys {
		s.quads[key] = append(s.quads[key], start)
	}
}

// record stores the index of cell (x, y) in the rolling caches.
func (s *stitcher) record(x, y int, index NormalIndex) {
	s.lastX = index
	s.line[x] = index
	s.plane[y*s.width+x] = index
}

func (s *stitcher) endRow() {
	s.lastX = noVertex
	s.line, s.lastLine = s.lastLine, s.line
}

func (s *stitcher) endPlane() {
	s.plane, s.lastPlane = s.lastPlane, s.plane
}
