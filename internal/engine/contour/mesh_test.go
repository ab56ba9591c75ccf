package contour

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/Faultbox/voxmesh/internal/engine/picking"
	"github.com/Faultbox/voxmesh/internal/engine/shapes"
	"github.com/Faultbox/voxmesh/internal/engine/voxelbuffer"
	"github.com/Faultbox/voxmesh/pkg/math"
	"github.com/Faultbox/voxmesh/pkg/voxel"
)

// cornerBlock returns a 2x2x2 block where only sample (0, 0, 0) is solid,
// with crossings halfway along its three edges.
func cornerBlock() voxel.Block {
	b := voxel.NewBlock(2)
	b.Color.Set(0, 0, 0, voxel.RGBA(200, 100, 50, 255))
	b.Hermite.Set(0, 0, 0, voxel.AxisX, voxel.PackHermite(math.UnitX, 0.5))
	b.Hermite.Set(0, 0, 0, voxel.AxisY, voxel.PackHermite(math.UnitY, 0.5))
	b.Hermite.Set(0, 0, 0, voxel.AxisZ, voxel.PackHermite(math.UnitZ, 0.5))
	return b
}

func sphereBlock(size int) voxel.Block {
	b := voxel.NewBlock(size)
	stone := voxel.Material{Name: "stone", Diffuse: "stone.png", ScaleS: 1, ScaleT: 1}
	shapes.Augment(b, shapes.Placement{CellSize: 1},
		shapes.Sphere{Center: math.Vec3{X: 5.5, Y: 5.3, Z: 5.7}, Radius: 3.7},
		shapes.Paint{Color: voxel.RGBA(90, 90, 90, 255), Material: &stone})
	return b
}

func triangle(buf *voxelbuffer.Buffer, i int) (a, b, c math.Vec3) {
	v, idx := buf.Vertices(), buf.Indices()
	return v[idx[i]].Position, v[idx[i+1]].Position, v[idx[i+2]].Position
}

func TestUniformBlocksEmitNothing(t *testing.T) {
	empty := voxel.NewBlock(4)
	full := voxel.NewBlock(4)
	for i := range full.Color.Contents {
		full.Color.Contents[i] = voxel.RGBA(1, 2, 3, 255)
	}

	for name, block := range map[string]voxel.Block{"empty": empty, "full": full} {
		buf := Mesh(block, Options{})
		if buf.VertexCount() != 0 || buf.IndexCount() != 0 {
			t.Errorf("%s block: %d vertices, %d indices; want none", name, buf.VertexCount(), buf.IndexCount())
		}
	}
}

func TestSingleCornerWinding(t *testing.T) {
	buf := Mesh(cornerBlock(), Options{})

	// One quad for each of the three edges leaving the solid corner.
	if got := buf.TriangleCount(); got != 6 {
		t.Fatalf("TriangleCount() = %d, want 6", got)
	}

	solid := math.Vec3{}
	for i := 0; i < buf.IndexCount(); i += 3 {
		a, b, c := triangle(buf, i)
		normal := b.Sub(a).Cross(c.Sub(a))
		center := a.Add(b).Add(c).Scale(1.0 / 3)
		if normal.Dot(center.Sub(solid)) <= 0 {
			t.Errorf("triangle %d faces the solid corner: normal %v at %v", i/3, normal, center)
		}
	}
}

func TestSingleCornerVertices(t *testing.T) {
	buf := Mesh(cornerBlock(), Options{})
	offset := voxel.UnpackOffset(voxel.PackHermite(math.UnitX, 0.5))

	// The interior cell has three creases, one vertex per cluster.
	want := math.Splat(offset)
	count := 0
	for _, v := range buf.Vertices() {
		if nearVec(v.Position, want, 1e-5) {
			count++
			if v.Color != [3]uint8{200, 100, 50} {
				t.Errorf("vertex color = %v", v.Color)
			}
		}
	}
	if count != 3 {
		t.Errorf("found %d vertices at %v, want 3", count, want)
	}
}

func TestSingleCrossingVertex(t *testing.T) {
	opts := Options{Minimum: math.Vec3{X: 10, Y: -2, Z: 4}, Scale: 3}
	buf := Mesh(cornerBlock(), opts)

	// Lattice cell (1, 0, 0) sees only the x edge, so its vertex is the
	// crossing itself.
	offset := voxel.UnpackOffset(voxel.PackHermite(math.UnitX, 0.5))
	want := opts.Minimum.Add(math.Vec3{X: offset}.Scale(3))
	for _, v := range buf.Vertices() {
		if v.Position == want {
			if v.Normal != [3]int8{127, 0, 0} {
				t.Errorf("normal = %v, want +X", v.Normal)
			}
			return
		}
	}
	t.Errorf("no vertex at %v", want)
}

func TestHermiteSegments(t *testing.T) {
	plain := Mesh(cornerBlock(), Options{})
	if len(plain.HermiteSegments()) != 0 {
		t.Errorf("got %d segment points without DisplayHermite", len(plain.HermiteSegments()))
	}

	buf := Mesh(cornerBlock(), Options{DisplayHermite: true, Scale: 2})
	segments := buf.HermiteSegments()
	if len(segments) == 0 || len(segments)%2 != 0 {
		t.Fatalf("got %d segment points, want a positive even number", len(segments))
	}
	for i := 0; i < len(segments); i += 2 {
		length := segments[i+1].Sub(segments[i]).Length()
		if !near(length, 2, 1e-4) {
			t.Errorf("segment %d has length %v, want one cell (2)", i/2, length)
		}
	}
}

func TestMeshDeterministic(t *testing.T) {
	block := sphereBlock(12)
	first := Mesh(block, Options{})
	second := Mesh(block, Options{})

	if first.VertexCount() == 0 {
		t.Fatal("sphere produced no vertices")
	}
	if diff := cmp.Diff(first.Vertices(), second.Vertices()); diff != "" {
		t.Errorf("vertices differ (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(first.Indices(), second.Indices()); diff != "" {
		t.Errorf("indices differ (-first +second):\n%s", diff)
	}
}

func TestMeshIndicesInRange(t *testing.T) {
	buf := Mesh(sphereBlock(12), Options{})
	if buf.IndexCount()%6 != 0 {
		t.Errorf("IndexCount() = %d, want whole quads", buf.IndexCount())
	}
	for i, index := range buf.Indices() {
		if int(index) >= buf.VertexCount() {
			t.Fatalf("index %d = %d out of range", i, index)
		}
	}
	for _, v := range buf.Vertices() {
		if v.Materials[0] != 1 || v.Weights[0] != 255 {
			t.Fatalf("vertex material = %v/%v, want stone at full weight", v.Materials, v.Weights)
		}
	}
	if len(buf.Materials()) != 1 || buf.Materials()[0].Name != "stone" {
		t.Errorf("Materials() = %v", buf.Materials())
	}
}

func TestMeshMaterialIDsWithoutTable(t *testing.T) {
	b := cornerBlock()
	b.Material.Set(0, 0, 0, 3)

	buf := Mesh(b, Options{})
	if buf.VertexCount() == 0 {
		t.Fatal("expected vertices")
	}
	for _, v := range buf.Vertices() {
		if v.Materials[0] != 3 || v.Weights[0] != 255 {
			t.Fatalf("vertex material = %v/%v, want id 3 at full weight", v.Materials, v.Weights)
		}
	}
	if len(buf.Materials()) != 0 {
		t.Errorf("Materials() = %v, want none", buf.Materials())
	}
}

func TestMeshRayRoundTrip(t *testing.T) {
	buf := Mesh(sphereBlock(12), Options{})

	// Sphere surface at x = 5.5 - 3.7 along this ray.
	d, hit := buf.RayIntersect(math.Vec3{X: -5, Y: 5.3, Z: 5.7}, math.UnitX)
	if !hit {
		t.Fatal("ray through the sphere missed")
	}
	if want := float32(6.8); !near(d, want, 0.3) {
		t.Errorf("distance = %v, want about %v", d, want)
	}

	if _, hit := buf.RayIntersect(math.Vec3{X: -5, Y: 10.9, Z: 10.9}, math.UnitX); hit {
		t.Error("ray above the sphere reported a hit")
	}
}

// slope is the half space below the plane y = 3.3 + z/4.
type slope struct{}

func (slope) Distance(p math.Vec3) float32 { return p.Y - (3.3 + 0.25*p.Z) }

func (slope) Bounds() picking.AABB {
	return picking.NewAABB(math.Splat(-100), math.Splat(100))
}

func TestSeamConsistency(t *testing.T) {
	const size = 8
	paint := shapes.Paint{Color: voxel.RGBA(0, 160, 0, 255)}

	// The blocks share the sample layer at x = 7.
	left := voxel.NewBlock(size)
	shapes.Augment(left, shapes.Placement{CellSize: 1}, slope{}, paint)
	right := voxel.NewBlock(size)
	shapes.Augment(right, shapes.Placement{Minimum: math.Vec3{X: 7}, CellSize: 1}, slope{}, paint)

	leftBuf := Mesh(left, Options{Scale: size - 1})
	rightBuf := Mesh(right, Options{Minimum: math.Vec3{X: 7}, Scale: size - 1})

	onSeam := func(buf *voxelbuffer.Buffer) []math.Vec3 {
		var out []math.Vec3
		for _, v := range buf.Vertices() {
			if v.Position.X == 7 {
				out = append(out, v.Position)
			}
		}
		return out
	}

	leftSeam, rightSeam := onSeam(leftBuf), onSeam(rightBuf)
	if len(leftSeam) == 0 {
		t.Fatal("no vertices on the shared face")
	}
	less := func(a, b math.Vec3) bool {
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		return a.Y < b.Y
	}
	if diff := cmp.Diff(leftSeam, rightSeam, cmpopts.SortSlices(less)); diff != "" {
		t.Errorf("seam vertices differ (-left +right):\n%s", diff)
	}
}

func TestMeshPanicsOnInvalidBlock(t *testing.T) {
	block := voxel.NewBlock(3)
	block.Hermite = voxel.NewHermiteGrid(4)

	defer func() {
		if recover() == nil {
			t.Error("expected panic for mismatched grids")
		}
	}()
	Mesh(block, Options{})
}

func TestNormalIndexClosest(t *testing.T) {
	vertices := make([]voxelbuffer.Point, 3)
	vertices[0].SetNormal(math.UnitX)
	vertices[1].SetNormal(math.UnitY)
	vertices[2].SetNormal(math.UnitZ)

	index := NormalIndex{0, 1, 2, 0}
	if got := index.Closest(math.UnitY, vertices); got != 1 {
		t.Errorf("Closest(+Y) = %d, want 1", got)
	}
	if got := index.Closest(math.Vec3{X: 0.1, Z: 1}, vertices); got != 2 {
		t.Errorf("Closest(+Z) = %d, want 2", got)
	}

	single := NormalIndex{2, 2, 2, 2}
	if got := single.Closest(math.UnitX, vertices); got != 2 {
		t.Errorf("single Closest = %d, want 2", got)
	}
	if noVertex.Valid() {
		t.Error("noVertex should not be valid")
	}
}
