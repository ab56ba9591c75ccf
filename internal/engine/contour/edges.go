package contour

import "github.com/Faultbox/voxmesh/pkg/voxel"

// Cube corners are numbered with the x, y and z components in bits 0, 1 and 2:
// corner 0 is the minimum corner and corner 7 the maximum.
const cornerCount = 8

// edge connects two cube corners that differ along a single axis.
type edge struct {
	low, high int
	axis      voxel.Axis
}

// edges lists the twelve cube edges in the order crossings are gathered.
// The order fixes which normal seeds each cluster.
var edges = [12]edge{
	{0, 1, voxel.AxisX},
	{1, 3, voxel.AxisY},
	{2, 3, voxel.AxisX},
	{3, 7, voxel.AxisZ},
	{5, 7, voxel.AxisY},
	{6, 7, voxel.AxisX},
	{1, 5, voxel.AxisZ},
	{4, 5, voxel.AxisX},
	{0, 2, voxel.AxisY},
	{2, 6, voxel.AxisZ},
	{4, 6, voxel.AxisY},
	{0, 4, voxel.AxisZ},
}

// cornerBit reports whether corner has its axis component set.
func cornerBit(corner int, axis int) int {
	return (corner >> axis) & 1
}

// cornerPosition returns the cell-local position of a corner.
func cornerPosition(corner int) [3]float32 {
	return [3]float32{
		float32(cornerBit(corner, 0)),
		float32(cornerBit(corner, 1)),
		float32(cornerBit(corner, 2)),
	}
}
