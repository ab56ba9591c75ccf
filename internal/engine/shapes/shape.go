// Package shapes writes solid primitives into voxel blocks, producing the
// occupancy, color, material and Hermite data consumed by the mesher.
package shapes

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/voxmesh/internal/engine/picking"
	"github.com/Faultbox/voxmesh/pkg/math"
	"github.com/Faultbox/voxmesh/pkg/voxel"
)

// Shape is a solid described by a signed distance: negative inside,
// positive outside. The distance need only be exact near the surface.
type Shape interface {
	Distance(p math.Vec3) float32
	Bounds() picking.AABB
}

// Placement maps block samples to world space.
type Placement struct {
	Minimum  math.Vec3
	CellSize float32
}

// SamplePosition returns the world position of sample (x, y, z).
func (p Placement) SamplePosition(x, y, z int) math.Vec3 {
	return p.Minimum.Add(math.Vec3{X: float32(x), Y: float32(y), Z: float32(z)}.Scale(p.CellSize))
}

// Paint is the surface attributes written for solid samples.
type Paint struct {
	Color    uint32 // Alpha is forced opaque
	Material *voxel.Material
}

const (
	bisectionSteps = 12
	normalStep     = 1e-3
)

// Augment unions shape into block. Samples inside the shape become solid
// with the given paint, and every edge whose occupancy changes across the
// shape surface gets a Hermite value. Returns the number of samples written.
func Augment(block voxel.Block, at Placement, shape Shape, paint Paint) int {
	size := block.Size()
	lo, hi, ok := sampleRange(size, at, shape.Bounds())
	if !ok {
		return 0
	}

	color := paint.Color | 0xFF000000
	var material uint8
	if paint.Material != nil && block.Material != nil {
		material = block.Material.AddMaterial(*paint.Material)
	}

	inside := func(x, y, z int) bool {
		return shape.Distance(at.SamplePosition(x, y, z)) <= 0
	}

	// Record prior occupancy so existing crossings can be compared.
	was := make(map[int]bool)
	written := 0
	for z := lo[2]; z <= hi[2]; z++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for x := lo[0]; x <= hi[0]; x++ {
				if !inside(x, y, z) {
					continue
				}
				i := block.Color.Index(x, y, z)
				was[i] = voxel.Occupied(block.Color.Contents[i])
				block.Color.Contents[i] = color
				if block.Material != nil {
					block.Material.Contents[i] = material
				}
				written++
			}
		}
	}
	if written == 0 {
		return 0
	}

	// Edges leaving the range toward lower coordinates start one sample early.
	for z := max(lo[2]-1, 0); z <= hi[2]; z++ {
		for y := max(lo[1]-1, 0); y <= hi[1]; y++ {
			for x := max(lo[0]-1, 0); x <= hi[0]; x++ {
				for axis := voxel.AxisX; axis <= voxel.AxisZ; axis++ {
					updateEdge(block, at, shape, was, [3]int{x, y, z}, axis)
				}
			}
		}
	}
	return written
}

// updateEdge writes the Hermite value of one edge if the shape surface
// now bounds it.
func updateEdge(block voxel.Block, at Placement, shape Shape, was map[int]bool, low [3]int, axis voxel.Axis) {
	size := block.Size()
	high := low
	high[axis]++
	if high[axis] >= size {
		return
	}

	li := block.Color.Index(low[0], low[1], low[2])
	hi := block.Color.Index(high[0], high[1], high[2])
	lowSolid := voxel.Occupied(block.Color.Contents[li])
	highSolid := voxel.Occupied(block.Color.Contents[hi])
	if lowSolid == highSolid {
		return
	}

	// The solid end must have been written by this shape.
	solidIndex := li
	if highSolid {
		solidIndex = hi
	}
	prior, painted := was[solidIndex]
	if !painted {
		return
	}

	from := at.SamplePosition(low[0], low[1], low[2])
	to := at.SamplePosition(high[0], high[1], high[2])
	offset := bisect(shape, from, to, lowSolid)

	if prior {
		// Keep the crossing that lies farther from the solid end.
		existing := voxel.UnpackOffset(block.Hermite.At(low[0], low[1], low[2], axis))
		if reach(existing, lowSolid) >= reach(offset, lowSolid) {
			return
		}
	}

	point := from.Add(to.Sub(from).Scale(offset))
	block.Hermite.Set(low[0], low[1], low[2], axis, voxel.PackHermite(Normal(shape, point), offset))
}

// reach is the distance of an edge offset from the solid end.
func reach(offset float32, lowSolid bool) float32 {
	if lowSolid {
		return offset
	}
	return 1 - offset
}

// bisect locates the surface between two points of opposite sign and
// returns it as a fraction of the way from a to b.
func bisect(shape Shape, a, b math.Vec3, aInside bool) float32 {
	lo, hi := float32(0), float32(1)
	for i := 0; i < bisectionSteps; i++ {
		mid := (lo + hi) / 2
		in := shape.Distance(a.Add(b.Sub(a).Scale(mid))) <= 0
		if in == aInside {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// Normal estimates the outward surface normal at p by central differences.
func Normal(shape Shape, p math.Vec3) math.Vec3 {
	gradient := math.Vec3{
		X: shape.Distance(p.Add(math.UnitX.Scale(normalStep))) - shape.Distance(p.Sub(math.UnitX.Scale(normalStep))),
		Y: shape.Distance(p.Add(math.UnitY.Scale(normalStep))) - shape.Distance(p.Sub(math.UnitY.Scale(normalStep))),
		Z: shape.Distance(p.Add(math.UnitZ.Scale(normalStep))) - shape.Distance(p.Sub(math.UnitZ.Scale(normalStep))),
	}
	return gradient.Normalize()
}

// sampleRange returns the inclusive sample range overlapping bounds.
func sampleRange(size int, at Placement, bounds picking.AABB) (lo, hi [3]int, ok bool) {
	if size < 1 || at.CellSize <= 0 {
		return lo, hi, false
	}
	for axis := 0; axis < 3; axis++ {
		first := math32.Floor((bounds.Min.At(axis) - at.Minimum.At(axis)) / at.CellSize)
		last := math32.Ceil((bounds.Max.At(axis) - at.Minimum.At(axis)) / at.CellSize)
		if last < 0 || first > float32(size-1) {
			return lo, hi, false
		}
		lo[axis] = max(int(first), 0)
		hi[axis] = min(int(last), size-1)
	}
	return lo, hi, true
}
