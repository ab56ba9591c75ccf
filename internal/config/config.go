// Package config handles voxmesh configuration loading and management.
package config

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/Faultbox/voxmesh/pkg/voxel"
)

// Config holds all voxmesh settings.
type Config struct {
	Mesh    MeshConfig    `yaml:"mesh"`
	Scene   SceneConfig   `yaml:"scene"`
	Worker  WorkerConfig  `yaml:"worker"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// MeshConfig holds meshing options.
type MeshConfig struct {
	DisplayHermite bool `yaml:"display_hermite"` // Emit Hermite debug segments
}

// SceneConfig describes the block grid and the shapes voxelized into it.
type SceneConfig struct {
	Origin     [3]float32    `yaml:"origin"`      // World position of the first block
	Blocks     [3]int        `yaml:"blocks"`      // Block count per axis
	BlockSize  int           `yaml:"block_size"`  // Samples per block axis
	BlockScale float32       `yaml:"block_scale"` // World extent of one block
	Shapes     []ShapeConfig `yaml:"shapes"`
}

// Shape kinds.
const (
	KindSphere       = "sphere"
	KindCuboid       = "cuboid"
	KindHeightfield  = "heightfield"
	KindBox          = "box"      // sdfx box
	KindCylinder     = "cylinder" // sdfx cylinder along Z
	KindUnion        = "union"
	KindDifference   = "difference" // First part minus the rest
	KindIntersection = "intersection"
)

// ShapeConfig describes one shape. Which fields apply depends on Kind.
// Boolean kinds combine Parts, which must be sdfx kinds themselves.
// A heightfield's Center is the corner of its first height sample.
type ShapeConfig struct {
	Kind     string        `yaml:"kind"`
	Center   [3]float32    `yaml:"center"`
	Radius   float32       `yaml:"radius,omitempty"`
	Size     [3]float32    `yaml:"size,omitempty"`     // Full extents
	Height   float32       `yaml:"height,omitempty"`   // Cylinder length
	Round    float32       `yaml:"round,omitempty"`    // Edge rounding of sdfx kinds
	Rotation [3]float32    `yaml:"rotation,omitempty"` // Euler degrees, X then Y then Z
	Heights  [][]float32   `yaml:"heights,omitempty"`  // [x][z], relative to Center.Y
	Spacing  float32       `yaml:"spacing,omitempty"`
	Parts    []ShapeConfig `yaml:"parts,omitempty"`

	Color    uint32          `yaml:"color"` // 0xRRGGBB
	Material *voxel.Material `yaml:"material,omitempty"`
}

// WorkerConfig holds parallel meshing settings.
type WorkerConfig struct {
	Count int `yaml:"count"` // 0 uses one worker per CPU
}

// OutputConfig holds output locations.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values: a sphere resting
// on flat ground, spread over two by two blocks.
func Default() *Config {
	return &Config{
		Scene: SceneConfig{
			Blocks:     [3]int{2, 1, 2},
			BlockSize:  16,
			BlockScale: 16,
			Shapes: []ShapeConfig{
				{
					Kind:    KindHeightfield,
					Center:  [3]float32{0, 0, 0},
					Heights: [][]float32{{3.5, 3.5}, {3.5, 3.5}},
					Spacing: 32,
					Color:   0x5a7d3a,
					Material: &voxel.Material{
						Name: "grass", Diffuse: "grass.png", ScaleS: 1, ScaleT: 1,
					},
				},
				{
					Kind:   KindSphere,
					Center: [3]float32{16.3, 9.1, 15.7},
					Radius: 5.6,
					Color:  0xb0b0b0,
					Material: &voxel.Material{
						Name: "stone", Diffuse: "stone.png", ScaleS: 1, ScaleT: 1,
					},
				},
			},
		},
		Output: OutputConfig{
			Dir: "out",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks the settings. All problems found are returned together.
func (c *Config) Validate() error {
	var err error
	s := c.Scene
	if s.BlockSize < 2 {
		err = multierr.Append(err, errors.Errorf("scene.block_size %d is below the minimum of 2", s.BlockSize))
	}
	if s.BlockScale <= 0 {
		err = multierr.Append(err, errors.Errorf("scene.block_scale must be positive, got %v", s.BlockScale))
	}
	for axis, n := range s.Blocks {
		if n < 1 {
			err = multierr.Append(err, errors.Errorf("scene.blocks[%d] must be at least 1, got %d", axis, n))
		}
	}
	for i, shape := range s.Shapes {
		err = multierr.Append(err, errors.Wrapf(shape.Validate(), "scene.shapes[%d]", i))
	}
	if c.Worker.Count < 0 {
		err = multierr.Append(err, errors.Errorf("worker.count must not be negative, got %d", c.Worker.Count))
	}
	return err
}

// Validate checks that the shape has the parameters its kind needs.
func (s ShapeConfig) Validate() error {
	switch s.Kind {
	case KindSphere:
		if s.Radius <= 0 {
			return errors.Errorf("sphere radius must be positive, got %v", s.Radius)
		}
	case KindCuboid, KindBox:
		if s.Size[0] <= 0 || s.Size[1] <= 0 || s.Size[2] <= 0 {
			return errors.Errorf("%s size must be positive, got %v", s.Kind, s.Size)
		}
	case KindCylinder:
		if s.Radius <= 0 || s.Height <= 0 {
			return errors.Errorf("cylinder radius and height must be positive, got %v and %v", s.Radius, s.Height)
		}
	case KindHeightfield:
		if len(s.Heights) < 2 || len(s.Heights[0]) < 2 {
			return errors.New("heightfield needs at least 2x2 heights")
		}
		for x, column := range s.Heights {
			if len(column) != len(s.Heights[0]) {
				return errors.Errorf("heightfield column %d has %d heights, want %d", x, len(column), len(s.Heights[0]))
			}
		}
		if s.Spacing <= 0 {
			return errors.Errorf("heightfield spacing must be positive, got %v", s.Spacing)
		}
	case KindUnion, KindDifference, KindIntersection:
		if len(s.Parts) < 2 {
			return errors.Errorf("%s needs at least 2 parts, got %d", s.Kind, len(s.Parts))
		}
		var err error
		for i, part := range s.Parts {
			if !part.IsSolid() {
				err = multierr.Append(err, errors.Errorf("part %d: kind %q cannot be combined", i, part.Kind))
				continue
			}
			err = multierr.Append(err, errors.Wrapf(part.Validate(), "part %d", i))
		}
		return err
	default:
		return errors.Errorf("unknown shape kind %q", s.Kind)
	}
	return nil
}

// IsSolid reports whether the shape is built with sdfx.
func (s ShapeConfig) IsSolid() bool {
	switch s.Kind {
	case KindBox, KindCylinder, KindUnion, KindDifference, KindIntersection:
		return true
	}
	return false
}
