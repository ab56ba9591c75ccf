package contour

import (
	"github.com/Faultbox/voxmesh/pkg/math"
	"github.com/Faultbox/voxmesh/pkg/voxel"
)

// EdgeCrossing is a surface crossing on one cell edge.
type EdgeCrossing struct {
	Point    math.Vec3 // Cell-local, in [0,1] per axis
	Normal   math.Vec3
	Color    uint32
	Material uint8
}

// crossings appends the crossings of every eligible edge whose corners differ
// in occupancy. Color and material are taken from the solid end.
func (s *sampler) crossings(c *cell, dst []EdgeCrossing) []EdgeCrossing {
	for _, e := range edges {
		if !c.eligible(e) || c.solid(e.low) == c.solid(e.high) {
			continue
		}

		x, y, z := s.cornerSample(c, e.low)
		h := s.block.Hermite.At(x, y, z, e.axis)

		source := e.low
		if !c.solid(e.low) {
			source = e.high
		}

		p := cornerPosition(e.low)
		p[e.axis] = voxel.UnpackOffset(h)

		dst = append(dst, EdgeCrossing{
			Point:    math.Vec3{X: p[0], Y: p[1], Z: p[2]},
			Normal:   voxel.UnpackNormal(h),
			Color:    c.colors[source],
			Material: c.materials[source],
		})
	}
	return dst
}
