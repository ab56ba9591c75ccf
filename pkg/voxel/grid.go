package voxel

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// ColorGrid holds one packed ARGB value per sample. Alpha is the occupancy bit.
type ColorGrid struct {
	Size     int
	Contents []uint32
}

// NewColorGrid allocates an empty (fully transparent) grid.
func NewColorGrid(size int) *ColorGrid {
	return &ColorGrid{Size: size, Contents: make([]uint32, size*size*size)}
}

// Index returns the flat index of sample (x, y, z).
func (g *ColorGrid) Index(x, y, z int) int {
	return (z*g.Size+y)*g.Size + x
}

// At returns the sample at (x, y, z).
func (g *ColorGrid) At(x, y, z int) uint32 {
	return g.Contents[g.Index(x, y, z)]
}

// Set stores the sample at (x, y, z).
func (g *ColorGrid) Set(x, y, z int, c uint32) {
	g.Contents[g.Index(x, y, z)] = c
}

// Material is an opaque texture reference forwarded to the renderer.
type Material struct {
	Name    string  `yaml:"name"`
	Diffuse string  `yaml:"diffuse"`
	ScaleS  float32 `yaml:"scale_s"`
	ScaleT  float32 `yaml:"scale_t"`
}

// MaterialGrid holds one material id per sample. Id 0 means no material;
// id k refers to Materials[k-1].
type MaterialGrid struct {
	Size      int
	Contents  []uint8
	Materials []Material
}

// NewMaterialGrid allocates a grid with every sample set to material 0.
func NewMaterialGrid(size int) *MaterialGrid {
	return &MaterialGrid{Size: size, Contents: make([]uint8, size*size*size)}
}

// Index returns the flat index of sample (x, y, z).
func (g *MaterialGrid) Index(x, y, z int) int {
	return (z*g.Size+y)*g.Size + x
}

// Set stores the material id at (x, y, z).
func (g *MaterialGrid) Set(x, y, z int, id uint8) {
	g.Contents[g.Index(x, y, z)] = id
}

// AddMaterial appends a material and returns its id, or reuses the id of an
// identical existing entry.
func (g *MaterialGrid) AddMaterial(m Material) uint8 {
	for i, existing := range g.Materials {
		if existing == m {
			return uint8(i + 1)
		}
	}
	g.Materials = append(g.Materials, m)
	return uint8(len(g.Materials))
}

// HermiteGrid holds EdgeCount packed Hermite values per sample.
type HermiteGrid struct {
	Size     int
	Contents []uint32
}

// NewHermiteGrid allocates a grid with no crossings.
func NewHermiteGrid(size int) *HermiteGrid {
	return &HermiteGrid{Size: size, Contents: make([]uint32, size*size*size*EdgeCount)}
}

// Index returns the flat index of the edge leaving sample (x, y, z) along axis.
func (g *HermiteGrid) Index(x, y, z int, axis Axis) int {
	return ((z*g.Size+y)*g.Size+x)*EdgeCount + int(axis)
}

// At returns the Hermite value of an edge.
func (g *HermiteGrid) At(x, y, z int, axis Axis) uint32 {
	return g.Contents[g.Index(x, y, z, axis)]
}

// Set stores the Hermite value of an edge.
func (g *HermiteGrid) Set(x, y, z int, axis Axis, h uint32) {
	g.Contents[g.Index(x, y, z, axis)] = h
}

// Block groups the co-registered grids of one voxel block.
type Block struct {
	Color    *ColorGrid
	Material *MaterialGrid
	Hermite  *HermiteGrid
}

// NewBlock allocates an empty block with a material grid.
func NewBlock(size int) Block {
	return Block{
		Color:    NewColorGrid(size),
		Material: NewMaterialGrid(size),
		Hermite:  NewHermiteGrid(size),
	}
}

// Size returns the lattice size of the block, or 0 if it has no color grid.
func (b Block) Size() int {
	if b.Color == nil {
		return 0
	}
	return b.Color.Size
}

// Validate checks that the grids are present and agree on size and length.
// All problems found are returned together. Material ids are not checked
// against the material table; see MaterialGrid.CheckReferences.
func (b Block) Validate() error {
	if b.Color == nil {
		return errors.New("block has no color grid")
	}
	if b.Hermite == nil {
		return errors.New("block has no hermite grid")
	}

	size := b.Color.Size
	var err error
	if size < 2 {
		err = multierr.Append(err, errors.Errorf("block size %d is below the minimum of 2", size))
	}
	samples := size * size * size
	if len(b.Color.Contents) != samples {
		err = multierr.Append(err, errors.Errorf("color grid has %d samples, want %d", len(b.Color.Contents), samples))
	}
	if b.Hermite.Size != size {
		err = multierr.Append(err, errors.Errorf("hermite grid size %d does not match color size %d", b.Hermite.Size, size))
	}
	if len(b.Hermite.Contents) != samples*EdgeCount {
		err = multierr.Append(err, errors.Errorf("hermite grid has %d values, want %d", len(b.Hermite.Contents), samples*EdgeCount))
	}
	if m := b.Material; m != nil {
		if m.Size != size {
			err = multierr.Append(err, errors.Errorf("material grid size %d does not match color size %d", m.Size, size))
		}
		if len(m.Contents) != samples {
			err = multierr.Append(err, errors.Errorf("material grid has %d samples, want %d", len(m.Contents), samples))
		}
	}
	return err
}

// CheckReferences reports the first sample whose id has no entry in a
// non-empty material table. Ids without a table are annotations only and
// pass unchecked.
func (g *MaterialGrid) CheckReferences() error {
	if len(g.Materials) == 0 {
		return nil
	}
	for i, id := range g.Contents {
		if int(id) > len(g.Materials) {
			return errors.Errorf("sample %d references material %d of %d", i, id, len(g.Materials))
		}
	}
	return nil
}
