// Package scene lays voxel blocks out on a world grid and fills them from
// configured shapes. Neighboring blocks share their boundary sample layer,
// so meshes of adjacent blocks meet without cracks.
package scene

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/voxmesh/internal/config"
	"github.com/Faultbox/voxmesh/internal/engine/contour"
	"github.com/Faultbox/voxmesh/internal/engine/picking"
	"github.com/Faultbox/voxmesh/internal/engine/shapes"
	"github.com/Faultbox/voxmesh/internal/logger"
	"github.com/Faultbox/voxmesh/pkg/math"
	"github.com/Faultbox/voxmesh/pkg/voxel"
)

// BlockID is a block's position in the scene grid.
type BlockID struct {
	X, Y, Z int
}

// String returns the block name used for files and mesh objects.
func (id BlockID) String() string {
	return fmt.Sprintf("block_%d_%d_%d", id.X, id.Y, id.Z)
}

// layer is one shape and the paint it writes.
type layer struct {
	shape shapes.Shape
	paint shapes.Paint
}

// Scene manages a grid of voxel blocks and the shapes that fill them.
type Scene struct {
	origin     math.Vec3
	blocks     [3]int
	blockSize  int
	blockScale float32
	layers     []layer
}

// New creates a scene from configuration. Shapes are applied in order.
func New(cfg config.SceneConfig) (*Scene, error) {
	if cfg.BlockSize < 2 {
		return nil, errors.Errorf("block size %d is below the minimum of 2", cfg.BlockSize)
	}
	if cfg.BlockScale <= 0 {
		return nil, errors.Errorf("block scale must be positive, got %v", cfg.BlockScale)
	}

	s := &Scene{
		origin:     vec3(cfg.Origin),
		blocks:     cfg.Blocks,
		blockSize:  cfg.BlockSize,
		blockScale: cfg.BlockScale,
	}
	for i, sc := range cfg.Shapes {
		shape, err := BuildShape(sc)
		if err != nil {
			return nil, errors.Wrapf(err, "shape %d", i)
		}
		s.layers = append(s.layers, layer{
			shape: shape,
			paint: shapes.Paint{Color: sc.Color, Material: sc.Material},
		})
	}
	return s, nil
}

// BlockSize returns the number of samples per block axis.
func (s *Scene) BlockSize() int { return s.blockSize }

// CellSize returns the world distance between neighboring samples.
func (s *Scene) CellSize() float32 {
	return s.blockScale / float32(s.blockSize-1)
}

// Blocks returns every block in the grid, z outermost and x innermost.
func (s *Scene) Blocks() []BlockID {
	ids := make([]BlockID, 0, s.blocks[0]*s.blocks[1]*s.blocks[2])
	for z := 0; z < s.blocks[2]; z++ {
		for y := 0; y < s.blocks[1]; y++ {
			for x := 0; x < s.blocks[0]; x++ {
				ids = append(ids, BlockID{x, y, z})
			}
		}
	}
	return ids
}

// BlockMinimum returns the world position of a block's first sample.
func (s *Scene) BlockMinimum(id BlockID) math.Vec3 {
	return s.origin.Add(math.Vec3{X: float32(id.X), Y: float32(id.Y), Z: float32(id.Z)}.Scale(s.blockScale))
}

// Bounds returns the world box covered by the block grid.
func (s *Scene) Bounds() picking.AABB {
	extent := math.Vec3{X: float32(s.blocks[0]), Y: float32(s.blocks[1]), Z: float32(s.blocks[2])}.Scale(s.blockScale)
	return picking.NewAABB(s.origin, s.origin.Add(extent))
}

// Voxelize fills a new block with every shape of the scene.
func (s *Scene) Voxelize(id BlockID) voxel.Block {
	block := voxel.NewBlock(s.blockSize)
	at := shapes.Placement{Minimum: s.BlockMinimum(id), CellSize: s.CellSize()}

	solid := 0
	for _, l := range s.layers {
		solid += shapes.Augment(block, at, l.shape, l.paint)
	}

	logger.Debug("block voxelized",
		zap.Stringer("block", id),
		zap.Int("written", solid))
	return block
}

// MeshOptions returns the options that place a block's mesh in the world.
func (s *Scene) MeshOptions(id BlockID, displayHermite bool) contour.Options {
	return contour.Options{
		Minimum:        s.BlockMinimum(id),
		Scale:          s.blockScale,
		DisplayHermite: displayHermite,
	}
}

func vec3(v [3]float32) math.Vec3 {
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}
}
