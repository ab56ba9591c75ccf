package formats

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/Faultbox/voxmesh/pkg/voxel"
)

// VXB format errors.
var (
	ErrInvalidVXBMagic       = errors.New("invalid VXB magic: expected 'VXBK'")
	ErrUnsupportedVXBVersion = errors.New("unsupported VXB version")
	ErrTruncatedVXBData      = errors.New("truncated VXB data")
)

const (
	vxbMagic      = "VXBK"
	vxbHeaderSize = 10 // magic, version, size
	vxbMaxSize    = 512

	vxbMinMaterialSize = 2 + 2 + 4 + 4
)

// VXBVersion represents the VXB file version.
type VXBVersion struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v VXBVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// CurrentVXBVersion is the version written by WriteVXB.
var CurrentVXBVersion = VXBVersion{Major: 1, Minor: 0}

// VXB is a parsed voxel block file.
type VXB struct {
	Version VXBVersion
	Block   voxel.Block
}

// VXBStats summarizes the contents of a block.
type VXBStats struct {
	Size      int
	Solid     int // Occupied samples
	Crossings int // Edges whose ends differ in occupancy
	Materials int
}

// Stats counts solid samples and occupancy changes along sample edges.
func (f *VXB) Stats() VXBStats {
	b := f.Block
	size := b.Size()
	stats := VXBStats{Size: size}
	if b.Material != nil {
		stats.Materials = len(b.Material.Materials)
	}
	for z := 0; z < size; z++ {
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				solid := voxel.Occupied(b.Color.At(x, y, z))
				if solid {
					stats.Solid++
				}
				if x+1 < size && voxel.Occupied(b.Color.At(x+1, y, z)) != solid {
					stats.Crossings++
				}
				if y+1 < size && voxel.Occupied(b.Color.At(x, y+1, z)) != solid {
					stats.Crossings++
				}
				if z+1 < size && voxel.Occupied(b.Color.At(x, y, z+1)) != solid {
					stats.Crossings++
				}
			}
		}
	}
	return stats
}

// ParseVXB parses a VXB file from raw bytes.
//
// Layout (little-endian):
//
//	"VXBK" minor major
//	uint32 size
//	uint32 colors[size³]
//	uint8  hasMaterial
//	  uint8  ids[size³]
//	  uint16 count, then per material: name, diffuse (uint16 length + bytes), float32 scaleS, scaleT
//	uint32 hermite[size³*3]
func ParseVXB(data []byte) (*VXB, error) {
	if len(data) < vxbHeaderSize {
		return nil, ErrTruncatedVXBData
	}

	if string(data[0:4]) != vxbMagic {
		return nil, ErrInvalidVXBMagic
	}

	// Version is stored as [minor, major]
	version := VXBVersion{
		Major: data[5],
		Minor: data[4],
	}
	if version.Major != CurrentVXBVersion.Major {
		return nil, errors.Wrap(ErrUnsupportedVXBVersion, version.String())
	}

	r := bytes.NewReader(data[6:])

	var size uint32
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return nil, errors.Wrap(ErrTruncatedVXBData, "reading size")
	}
	if size < 2 || size > vxbMaxSize {
		return nil, errors.Errorf("invalid VXB block size: %d", size)
	}

	n := int(size)
	samples := n * n * n

	// Sections are length-checked before their grids are allocated.
	if r.Len() < samples*4+1 {
		return nil, errors.Wrap(ErrTruncatedVXBData, "reading colors")
	}
	block := voxel.Block{Color: voxel.NewColorGrid(n)}
	if err := binary.Read(r, binary.LittleEndian, block.Color.Contents); err != nil {
		return nil, errors.Wrap(ErrTruncatedVXBData, "reading colors")
	}

	hasMaterial, err := r.ReadByte()
	if err != nil {
		return nil, errors.Wrap(ErrTruncatedVXBData, "reading material flag")
	}
	if hasMaterial != 0 {
		block.Material, err = parseVXBMaterials(r, n)
		if err != nil {
			return nil, err
		}
	}

	if r.Len() < samples*voxel.EdgeCount*4 {
		return nil, errors.Wrap(ErrTruncatedVXBData, "reading hermite data")
	}
	block.Hermite = voxel.NewHermiteGrid(n)
	if err := binary.Read(r, binary.LittleEndian, block.Hermite.Contents); err != nil {
		return nil, errors.Wrap(ErrTruncatedVXBData, "reading hermite data")
	}

	if err := block.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid VXB block")
	}

	return &VXB{Version: version, Block: block}, nil
}

// parseVXBMaterials reads the material id grid and material table.
func parseVXBMaterials(r *bytes.Reader, size int) (*voxel.MaterialGrid, error) {
	if r.Len() < size*size*size {
		return nil, errors.Wrap(ErrTruncatedVXBData, "reading material ids")
	}
	grid := voxel.NewMaterialGrid(size)
	if _, err := io.ReadFull(r, grid.Contents); err != nil {
		return nil, errors.Wrap(ErrTruncatedVXBData, "reading material ids")
	}

	var count uint16
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, errors.Wrap(ErrTruncatedVXBData, "reading material count")
	}

	// name length, diffuse length, two scales
	if r.Len() < int(count)*vxbMinMaterialSize {
		return nil, errors.Wrap(ErrTruncatedVXBData, "reading materials")
	}
	if count > 0 {
		grid.Materials = make([]voxel.Material, 0, count)
	}
	for i := 0; i < int(count); i++ {
		var m voxel.Material
		var err error
		if m.Name, err = readVXBString(r); err != nil {
			return nil, errors.Wrapf(err, "material %d name", i)
		}
		if m.Diffuse, err = readVXBString(r); err != nil {
			return nil, errors.Wrapf(err, "material %d diffuse", i)
		}
		if err := binary.Read(r, binary.LittleEndian, &m.ScaleS); err != nil {
			return nil, errors.Wrapf(ErrTruncatedVXBData, "material %d scale", i)
		}
		if err := binary.Read(r, binary.LittleEndian, &m.ScaleT); err != nil {
			return nil, errors.Wrapf(ErrTruncatedVXBData, "material %d scale", i)
		}
		grid.Materials = append(grid.Materials, m)
	}
	if err := grid.CheckReferences(); err != nil {
		return nil, errors.Wrap(err, "invalid VXB materials")
	}
	return grid, nil
}

func readVXBString(r *bytes.Reader) (string, error) {
	var length uint16
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return "", ErrTruncatedVXBData
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", ErrTruncatedVXBData
	}
	return string(buf), nil
}

// ParseVXBFile parses a VXB file from disk.
func ParseVXBFile(path string) (*VXB, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading VXB file")
	}
	return ParseVXB(data)
}

// WriteVXB encodes block to w in the current version.
func WriteVXB(w io.Writer, block voxel.Block) error {
	if err := block.Validate(); err != nil {
		return errors.Wrap(err, "invalid block")
	}
	if block.Size() > vxbMaxSize {
		return errors.Errorf("block size %d exceeds VXB maximum %d", block.Size(), vxbMaxSize)
	}

	bw := bufio.NewWriter(w)
	bw.WriteString(vxbMagic)
	bw.WriteByte(CurrentVXBVersion.Minor)
	bw.WriteByte(CurrentVXBVersion.Major)

	le := binary.LittleEndian
	if err := binary.Write(bw, le, uint32(block.Size())); err != nil {
		return errors.Wrap(err, "writing size")
	}
	if err := binary.Write(bw, le, block.Color.Contents); err != nil {
		return errors.Wrap(err, "writing colors")
	}

	if m := block.Material; m != nil {
		if len(m.Materials) > 0xFFFF {
			return errors.Errorf("too many materials: %d", len(m.Materials))
		}
		if err := m.CheckReferences(); err != nil {
			return errors.Wrap(err, "invalid block")
		}
		bw.WriteByte(1)
		bw.Write(m.Contents)
		if err := binary.Write(bw, le, uint16(len(m.Materials))); err != nil {
			return errors.Wrap(err, "writing material count")
		}
		for _, mat := range m.Materials {
			if err := writeVXBString(bw, mat.Name); err != nil {
				return err
			}
			if err := writeVXBString(bw, mat.Diffuse); err != nil {
				return err
			}
			if err := binary.Write(bw, le, [2]float32{mat.ScaleS, mat.ScaleT}); err != nil {
				return errors.Wrap(err, "writing material scale")
			}
		}
	} else {
		bw.WriteByte(0)
	}

	if err := binary.Write(bw, le, block.Hermite.Contents); err != nil {
		return errors.Wrap(err, "writing hermite data")
	}
	return errors.Wrap(bw.Flush(), "flushing VXB data")
}

func writeVXBString(w io.Writer, s string) error {
	if len(s) > 0xFFFF {
		return errors.Errorf("string too long: %d bytes", len(s))
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(s))); err != nil {
		return errors.Wrap(err, "writing string length")
	}
	_, err := io.WriteString(w, s)
	return errors.Wrap(err, "writing string")
}

// WriteVXBFile writes block to path, replacing any existing file.
func WriteVXBFile(path string, block voxel.Block) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating VXB file")
	}
	if err := WriteVXB(f, block); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "closing VXB file")
}
