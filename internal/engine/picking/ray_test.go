package picking

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/Faultbox/voxmesh/pkg/math"
)

func approx(a, b float32) bool {
	return math32.Abs(a-b) < 1e-4
}

func TestClip(t *testing.T) {
	box := NewAABB(math.Vec3{X: 1, Y: 1, Z: 1}, math.Vec3{X: 0, Y: 0, Z: 0})

	tests := []struct {
		name       string
		ray        Ray
		hit        bool
		tmin, tmax float32
	}{
		{
			name: "straight through x",
			ray:  Ray{Origin: math.Vec3{X: -1, Y: 0.5, Z: 0.5}, Direction: math.UnitX},
			hit:  true, tmin: 1, tmax: 2,
		},
		{
			name: "from inside",
			ray:  Ray{Origin: math.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, Direction: math.UnitY},
			hit:  true, tmin: -0.5, tmax: 0.5,
		},
		{
			name: "parallel outside",
			ray:  Ray{Origin: math.Vec3{X: -1, Y: 2, Z: 0.5}, Direction: math.UnitX},
			hit:  false,
		},
		{
			name: "pointing away",
			ray:  Ray{Origin: math.Vec3{X: 2, Y: 0.5, Z: 0.5}, Direction: math.UnitX},
			hit:  false,
		},
		{
			name: "unnormalized direction",
			ray:  Ray{Origin: math.Vec3{X: 0.5, Y: 0.5, Z: -2}, Direction: math.Vec3{Z: 2}},
			hit:  true, tmin: 1, tmax: 1.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmin, tmax, hit := tt.ray.Clip(box)
			if hit != tt.hit {
				t.Fatalf("hit = %v, want %v", hit, tt.hit)
			}
			if !hit {
				return
			}
			if !approx(tmin, tt.tmin) || !approx(tmax, tt.tmax) {
				t.Errorf("interval = [%v, %v], want [%v, %v]", tmin, tmax, tt.tmin, tt.tmax)
			}
		})
	}
}

func TestIntersectAABBFromInside(t *testing.T) {
	box := NewAABB(math.Vec3{}, math.Splat(2))
	r := Ray{Origin: math.Splat(1), Direction: math.UnitZ}
	d, hit := r.IntersectAABB(box)
	if !hit || !approx(d, 1) {
		t.Errorf("IntersectAABB = %v, %v; want 1, true", d, hit)
	}
}

func TestIntersectTriangle(t *testing.T) {
	v0 := math.Vec3{X: 0, Y: 0, Z: 0}
	v1 := math.Vec3{X: 1, Y: 0, Z: 0}
	v2 := math.Vec3{X: 0, Y: 1, Z: 0}

	tests := []struct {
		name string
		ray  Ray
		hit  bool
		t    float32
	}{
		{"front", Ray{Origin: math.Vec3{X: 0.25, Y: 0.25, Z: 3}, Direction: math.UnitZ.Neg()}, true, 3},
		{"back face", Ray{Origin: math.Vec3{X: 0.25, Y: 0.25, Z: -2}, Direction: math.UnitZ}, true, 2},
		{"outside", Ray{Origin: math.Vec3{X: 0.75, Y: 0.75, Z: 3}, Direction: math.UnitZ.Neg()}, false, 0},
		{"behind", Ray{Origin: math.Vec3{X: 0.25, Y: 0.25, Z: 3}, Direction: math.UnitZ}, false, 0},
		{"parallel", Ray{Origin: math.Vec3{X: -1, Y: 0.25, Z: 0}, Direction: math.UnitX}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, hit := tt.ray.IntersectTriangle(v0, v1, v2)
			if hit != tt.hit {
				t.Fatalf("hit = %v, want %v", hit, tt.hit)
			}
			if hit && !approx(d, tt.t) {
				t.Errorf("t = %v, want %v", d, tt.t)
			}
		})
	}
}

func TestAABBExtend(t *testing.T) {
	b := NewAABB(math.Vec3{}, math.Vec3{})
	b = b.Extend(math.Vec3{X: -1, Y: 2, Z: 3})
	if b.Min != (math.Vec3{X: -1}) || b.Max != (math.Vec3{Y: 2, Z: 3}) {
		t.Errorf("Extend = %+v", b)
	}
	if b.Size() != (math.Vec3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("Size = %v", b.Size())
	}
	u := b.Union(NewAABB(math.Splat(5), math.Splat(6)))
	if u.Max != math.Splat(6) {
		t.Errorf("Union max = %v", u.Max)
	}
}
