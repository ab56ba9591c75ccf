// Package voxel defines the co-registered sample grids that describe one voxel block:
// color with occupancy in alpha, material ids, and Hermite-tagged edge crossings.
package voxel

// Color channel helpers for packed 0xAARRGGBB values.

const alphaOffset = 24

// RGBA packs four channels into a 0xAARRGGBB value.
func RGBA(r, g, b, a uint8) uint32 {
	return uint32(a)<<alphaOffset | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// Alpha returns the alpha (occupancy) channel.
func Alpha(c uint32) uint8 {
	return uint8(c >> alphaOffset)
}

// Red returns the red channel.
func Red(c uint32) uint8 {
	return uint8(c >> 16)
}

// Green returns the green channel.
func Green(c uint32) uint8 {
	return uint8(c >> 8)
}

// Blue returns the blue channel.
func Blue(c uint32) uint8 {
	return uint8(c)
}

// Occupied reports whether a color sample is solid.
func Occupied(c uint32) bool {
	return Alpha(c) != 0
}
