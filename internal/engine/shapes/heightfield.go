package shapes

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/voxmesh/internal/engine/picking"
	"github.com/Faultbox/voxmesh/pkg/math"
)

// Heightfield is terrain: everything below the interpolated height is solid.
type Heightfield struct {
	Minimum math.Vec3   // World position of Heights[0][0] at zero height
	Heights [][]float32 // [x][z] heights above Minimum.Y
	Spacing float32     // World distance between height samples
}

// Size returns the number of height samples in X and Z.
func (h Heightfield) Size() (int, int) {
	if len(h.Heights) == 0 {
		return 0, 0
	}
	return len(h.Heights), len(h.Heights[0])
}

// HeightAt returns the bilinearly interpolated height at a world XZ position,
// clamped to the edge of the field.
func (h Heightfield) HeightAt(pos math.Vec2) float32 {
	sizeX, sizeZ := h.Size()
	if sizeX == 0 || sizeZ == 0 || h.Spacing <= 0 {
		return h.Minimum.Y
	}

	local := pos.Sub(h.Minimum.XZ()).Scale(1 / h.Spacing)
	cellX := clampIndex(int(math32.Floor(local.X)), sizeX-2)
	cellZ := clampIndex(int(math32.Floor(local.Y)), sizeZ-2)

	fracX := clampUnit(local.X - float32(cellX))
	fracZ := clampUnit(local.Y - float32(cellZ))

	x1 := min(cellX+1, sizeX-1)
	z1 := min(cellZ+1, sizeZ-1)

	// South edge (lower Z), then north edge (higher Z)
	south := h.Heights[cellX][cellZ]*(1-fracX) + h.Heights[x1][cellZ]*fracX
	north := h.Heights[cellX][z1]*(1-fracX) + h.Heights[x1][z1]*fracX
	return h.Minimum.Y + south*(1-fracZ) + north*fracZ
}

// Distance implements Shape. It is the vertical distance to the surface,
// which is exact for flat terrain and a bound elsewhere.
func (h Heightfield) Distance(p math.Vec3) float32 {
	return p.Y - h.HeightAt(p.XZ())
}

// Bounds implements Shape. The field extends down to Minimum.Y.
func (h Heightfield) Bounds() picking.AABB {
	sizeX, sizeZ := h.Size()
	top := h.Minimum.Y
	for _, column := range h.Heights {
		for _, v := range column {
			top = math32.Max(top, h.Minimum.Y+v)
		}
	}
	extent := math.Vec3{
		X: float32(max(sizeX-1, 0)) * h.Spacing,
		Y: top - h.Minimum.Y,
		Z: float32(max(sizeZ-1, 0)) * h.Spacing,
	}
	return picking.NewAABB(h.Minimum, h.Minimum.Add(extent))
}

func clampIndex(i, last int) int {
	if i > last {
		i = last
	}
	if i < 0 {
		i = 0
	}
	return i
}

func clampUnit(v float32) float32 {
	return math32.Max(0, math32.Min(v, 1))
}
