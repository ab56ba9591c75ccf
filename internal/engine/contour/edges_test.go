package contour

import (
	"testing"

	"github.com/Faultbox/voxmesh/pkg/math"
	"github.com/Faultbox/voxmesh/pkg/voxel"
)

func TestEdgeTable(t *testing.T) {
	seen := make(map[[2]int]bool)
	perAxis := make(map[voxel.Axis]int)

	for i, e := range edges {
		bit := 1 << int(e.axis)
		if e.low&bit != 0 {
			t.Errorf("edge %d: low corner %d already has axis %v set", i, e.low, e.axis)
		}
		if e.high != e.low|bit {
			t.Errorf("edge %d: high corner %d, want %d", i, e.high, e.low|bit)
		}
		key := [2]int{e.low, e.high}
		if seen[key] {
			t.Errorf("edge %d: duplicate corner pair %v", i, key)
		}
		seen[key] = true
		perAxis[e.axis]++
	}

	for _, axis := range []voxel.Axis{voxel.AxisX, voxel.AxisY, voxel.AxisZ} {
		if perAxis[axis] != 4 {
			t.Errorf("axis %v has %d edges, want 4", axis, perAxis[axis])
		}
	}
}

func TestEligibleEdges(t *testing.T) {
	tests := []struct {
		name   string
		middle [3]bool
		want   int
	}{
		{"interior", [3]bool{true, true, true}, 12},
		{"x boundary", [3]bool{false, true, true}, 4},
		{"y boundary", [3]bool{true, false, true}, 4},
		{"z boundary", [3]bool{true, true, false}, 4},
		{"xy boundary", [3]bool{false, false, true}, 1},
		{"corner", [3]bool{false, false, false}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cell{middle: tt.middle}
			got := 0
			for _, e := range edges {
				if c.eligible(e) {
					got++
					for axis := 0; axis < 3; axis++ {
						if cornerBit(e.high, axis) == 1 && !tt.middle[axis] {
							t.Errorf("edge %v spans boundary axis %d", e, axis)
						}
					}
				}
			}
			if got != tt.want {
				t.Errorf("eligible = %d, want %d", got, tt.want)
			}
		})
	}
}

// checkerboardBlock builds a 3x3x3 block whose interior cell at lattice
// (2, 2, 2) has a crossing on every edge. Each Hermite value stores its own
// slot index in the offset channel.
func checkerboardBlock() voxel.Block {
	b := voxel.NewBlock(3)
	for corner := 0; corner < cornerCount; corner++ {
		x, y, z := 1+cornerBit(corner, 0), 1+cornerBit(corner, 1), 1+cornerBit(corner, 2)
		parity := cornerBit(corner, 0) ^ cornerBit(corner, 1) ^ cornerBit(corner, 2)
		alpha := uint8(0)
		if parity == 1 {
			alpha = 255
		}
		b.Color.Set(x, y, z, voxel.RGBA(uint8(corner), 0, 0, alpha))
		b.Material.Set(x, y, z, uint8(corner+1))
	}
	for i := range b.Hermite.Contents {
		b.Hermite.Contents[i] = voxel.RGBA(127, 0, 0, uint8(i))
	}
	return b
}

// interiorSlots are the flat Hermite offsets read by the edges of lattice
// cell (2, 2, 2) in a 3x3x3 block, in edge table order.
var interiorSlots = [12]int{39, 43, 48, 53, 70, 75, 44, 66, 40, 50, 67, 41}

func TestCrossingSlots(t *testing.T) {
	block := checkerboardBlock()
	s := newSampler(block)
	c := s.sample(2, 2, 2)

	got := s.crossings(&c, nil)
	if len(got) != len(edges) {
		t.Fatalf("got %d crossings, want %d", len(got), len(edges))
	}

	for i, e := range edges {
		crossing := got[i]
		slot := interiorSlots[i]

		want := cornerPosition(e.low)
		want[e.axis] = float32(slot) / 255
		if crossing.Point != (math.Vec3{X: want[0], Y: want[1], Z: want[2]}) {
			t.Errorf("edge %d (%d-%d): point = %v, want %v (slot %d)", i, e.low, e.high, crossing.Point, want, slot)
		}

		solid := e.low
		if !c.solid(e.low) {
			solid = e.high
		}
		if voxel.Red(crossing.Color) != uint8(solid) {
			t.Errorf("edge %d: color from corner %d, want solid corner %d", i, voxel.Red(crossing.Color), solid)
		}
		if crossing.Material != uint8(solid+1) {
			t.Errorf("edge %d: material %d, want %d", i, crossing.Material, solid+1)
		}
		if crossing.Normal != math.UnitX {
			t.Errorf("edge %d: normal = %v", i, crossing.Normal)
		}
	}
}

func TestBoundaryCrossingSlots(t *testing.T) {
	type slot struct {
		low   int
		axis  voxel.Axis
		index int
	}

	tests := []struct {
		name  string
		cell  [3]int
		solid [][3]int
		want  []slot
	}{
		{
			name:  "x upper boundary",
			cell:  [3]int{3, 2, 2},
			solid: [][3]int{{2, 1, 1}, {2, 2, 2}},
			want:  []slot{{0, voxel.AxisY, 43}, {2, voxel.AxisZ, 53}, {4, voxel.AxisY, 70}, {0, voxel.AxisZ, 44}},
		},
		{
			name:  "y lower boundary",
			cell:  [3]int{2, 0, 2},
			solid: [][3]int{{1, 0, 1}, {2, 0, 2}},
			want:  []slot{{0, voxel.AxisX, 30}, {1, voxel.AxisZ, 35}, {4, voxel.AxisX, 57}, {0, voxel.AxisZ, 32}},
		},
		{
			name:  "x upper and y lower boundary",
			cell:  [3]int{3, 0, 2},
			solid: [][3]int{{2, 0, 1}},
			want:  []slot{{0, voxel.AxisZ, 35}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block := voxel.NewBlock(3)
			for _, p := range tt.solid {
				block.Color.Set(p[0], p[1], p[2], voxel.RGBA(1, 1, 1, 255))
			}
			for i := range block.Hermite.Contents {
				block.Hermite.Contents[i] = voxel.RGBA(127, 0, 0, uint8(i))
			}

			s := newSampler(block)
			c := s.sample(tt.cell[0], tt.cell[1], tt.cell[2])
			got := s.crossings(&c, nil)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d crossings, want %d", len(got), len(tt.want))
			}
			for i, w := range tt.want {
				p := cornerPosition(w.low)
				p[w.axis] = float32(w.index) / 255
				want := math.Vec3{X: p[0], Y: p[1], Z: p[2]}
				if got[i].Point != want {
					t.Errorf("crossing %d: point = %v, want %v (slot %d)", i, got[i].Point, want, w.index)
				}
			}
		})
	}
}

func TestSamplerCollapsesBoundary(t *testing.T) {
	block := voxel.NewBlock(2)
	block.Color.Set(0, 0, 0, voxel.RGBA(1, 2, 3, 255))
	s := newSampler(block)

	// The all-boundary cell sees sample (0, 0, 0) at every corner.
	c := s.sample(0, 0, 0)
	if !c.uniform() || c.occupied != 0xFF {
		t.Errorf("corner cell occupancy = %08b, want all solid", c.occupied)
	}

	// The upper boundary clamps to the last sample layer.
	c = s.sample(2, 2, 2)
	if c.sample != [3]int{1, 1, 1} {
		t.Errorf("sample = %v, want [1 1 1]", c.sample)
	}
	if c.occupied != 0 {
		t.Errorf("upper corner occupancy = %08b, want empty", c.occupied)
	}

	c = s.sample(1, 0, 0)
	if c.middle != [3]bool{true, false, false} {
		t.Errorf("middle = %v", c.middle)
	}
	if c.occupied != 0b01010101 {
		t.Errorf("x edge cell occupancy = %08b, want 01010101", c.occupied)
	}
}

func TestSamplerWithoutMaterialGrid(t *testing.T) {
	block := checkerboardBlock()
	block.Material = nil
	s := newSampler(block)
	c := s.sample(2, 2, 2)
	for _, crossing := range s.crossings(&c, nil) {
		if crossing.Material != 0 {
			t.Fatalf("material = %d, want 0", crossing.Material)
		}
	}
}
