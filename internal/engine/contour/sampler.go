package contour

import "github.com/Faultbox/voxmesh/pkg/voxel"

// cell is the 2x2x2 sample neighborhood visited at one lattice position.
// Lattice coordinates run from 0 to size inclusive; the first and last
// positions on an axis are boundary cells whose corners collapse onto a
// single sample layer along that axis.
type cell struct {
	x, y, z int
	sample  [3]int  // Sample coordinates of corner 0
	middle  [3]bool // Axis is interior (corners are distinct)

	colors    [cornerCount]uint32
	materials [cornerCount]uint8
	occupied  uint8 // Bit per corner
}

// sampler reads cells from a block's grids.
type sampler struct {
	block voxel.Block
	size  int
}

func newSampler(block voxel.Block) *sampler {
	return &sampler{block: block, size: block.Color.Size}
}

// sample gathers the corners of lattice cell (x, y, z).
func (s *sampler) sample(x, y, z int) cell {
	c := cell{x: x, y: y, z: z}
	for axis, v := range [3]int{x, y, z} {
		c.sample[axis] = max(v-1, 0)
		c.middle[axis] = v != 0 && v != s.size
	}

	colors := s.block.Color.Contents
	var materials []uint8
	if s.block.Material != nil {
		materials = s.block.Material.Contents
	}
	for corner := 0; corner < cornerCount; corner++ {
		i := s.index(&c, corner)
		c.colors[corner] = colors[i]
		if materials != nil {
			c.materials[corner] = materials[i]
		}
		if voxel.Occupied(colors[i]) {
			c.occupied |= 1 << corner
		}
	}
	return c
}

// cornerSample returns the sample coordinates of a corner, collapsing
// boundary axes onto corner 0.
func (s *sampler) cornerSample(c *cell, corner int) (x, y, z int) {
	var p [3]int
	for axis := 0; axis < 3; axis++ {
		p[axis] = c.sample[axis]
		if c.middle[axis] {
			p[axis] += cornerBit(corner, axis)
		}
	}
	return p[0], p[1], p[2]
}

func (s *sampler) index(c *cell, corner int) int {
	x, y, z := s.cornerSample(c, corner)
	return (z*s.size+y)*s.size + x
}

// uniform reports whether all corners share the same occupancy.
func (c *cell) uniform() bool {
	return c.occupied == 0 || c.occupied == 0xFF
}

func (c *cell) solid(corner int) bool {
	return c.occupied&(1<<corner) != 0
}

// eligible reports whether an edge lies inside the cell. Every axis set in
// the high corner must be interior.
func (c *cell) eligible(e edge) bool {
	for axis := 0; axis < 3; axis++ {
		if cornerBit(e.high, axis) == 1 && !c.middle[axis] {
			return false
		}
	}
	return true
}
