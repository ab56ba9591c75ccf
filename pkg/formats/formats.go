// Package formats reads and writes VXB voxel block files.
package formats
