package voxel

import (
	"github.com/Faultbox/voxmesh/pkg/math"
)

// EdgeCount is the number of Hermite values stored per sample: one for each
// edge leaving the sample in the positive X, Y and Z direction.
const EdgeCount = 3

// Axis identifies a lattice edge direction.
type Axis int

// Edge axes, in Hermite slot order.
const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// String returns the axis letter.
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return "?"
	}
}

const (
	normalScale   = 127.0
	offsetMaximum = 255.0
)

// PackHermite encodes a surface normal and a crossing offset along the edge
// (0 at the lower sample, 1 at the upper) into one value. The normal goes into
// the R, G and B channels as signed bytes and the offset into alpha.
func PackHermite(normal math.Vec3, offset float32) uint32 {
	if offset < 0 {
		offset = 0
	} else if offset > 1 {
		offset = 1
	}
	return RGBA(
		uint8(int8(normal.X*normalScale)),
		uint8(int8(normal.Y*normalScale)),
		uint8(int8(normal.Z*normalScale)),
		uint8(offset*offsetMaximum+0.5),
	)
}

// UnpackNormal decodes the normal stored in a Hermite value.
func UnpackNormal(h uint32) math.Vec3 {
	return math.Vec3{
		X: float32(int8(Red(h))) / normalScale,
		Y: float32(int8(Green(h))) / normalScale,
		Z: float32(int8(Blue(h))) / normalScale,
	}
}

// UnpackOffset decodes the crossing offset stored in a Hermite value.
func UnpackOffset(h uint32) float32 {
	return float32(Alpha(h)) / offsetMaximum
}
