package worker

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/chewxy/math32"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/Faultbox/voxmesh/internal/engine/contour"
	"github.com/Faultbox/voxmesh/internal/engine/picking"
	"github.com/Faultbox/voxmesh/internal/engine/shapes"
	"github.com/Faultbox/voxmesh/internal/engine/voxelbuffer"
	"github.com/Faultbox/voxmesh/pkg/math"
	"github.com/Faultbox/voxmesh/pkg/voxel"
)

const blockSize = 12

// sphereJob creates a block at minimum holding a sphere offset from the block center.
func sphereJob(name string, minimum math.Vec3, radius float32) Job {
	block := voxel.NewBlock(blockSize)
	center := minimum.Add(math.Vec3{X: 5.5, Y: 5.3, Z: 5.7})
	shapes.Augment(block, shapes.Placement{Minimum: minimum, CellSize: 1},
		shapes.Sphere{Center: center, Radius: radius},
		shapes.Paint{Color: voxel.RGBA(120, 80, 40, 255)})
	return Job{
		Name:    name,
		Block:   block,
		Options: contour.Options{Minimum: minimum, Scale: blockSize - 1},
	}
}

func TestNew(t *testing.T) {
	if got := New(3).Workers(); got != 3 {
		t.Errorf("expected 3 workers, got %d", got)
	}
	if got := New(0).Workers(); got < 1 {
		t.Errorf("expected at least 1 worker, got %d", got)
	}
}

func TestMesh(t *testing.T) {
	var jobs []Job
	for i := 0; i < 6; i++ {
		jobs = append(jobs, sphereJob(fmt.Sprintf("block_%d", i), math.Vec3{X: float32(i) * 11}, 2.5+float32(i)*0.25))
	}

	results, err := New(2).Mesh(context.Background(), jobs)
	if err != nil {
		t.Fatalf("Mesh failed: %v", err)
	}
	if len(results) != len(jobs) {
		t.Fatalf("expected %d results, got %d", len(jobs), len(results))
	}

	for i, r := range results {
		if r.Name != jobs[i].Name {
			t.Errorf("result %d: expected name %s, got %s", i, jobs[i].Name, r.Name)
		}
		want := contour.Mesh(jobs[i].Block, jobs[i].Options)
		if diff := cmp.Diff(want.Vertices(), r.Buffer.Vertices()); diff != "" {
			t.Errorf("%s: vertices differ from a direct pass (-want +got):\n%s", r.Name, diff)
		}
		if diff := cmp.Diff(want.Indices(), r.Buffer.Indices()); diff != "" {
			t.Errorf("%s: indices differ from a direct pass (-want +got):\n%s", r.Name, diff)
		}
		if r.Buffer.Empty() {
			t.Errorf("%s: no triangles", r.Name)
		}
	}
}

func TestMeshInvalid(t *testing.T) {
	good := sphereJob("good", math.Vec3{}, 3)
	bad := sphereJob("bad", math.Vec3{}, 3)
	bad.Block.Hermite = voxel.NewHermiteGrid(blockSize + 1)
	worse := sphereJob("worse", math.Vec3{}, 3)
	worse.Block.Color = nil

	results, err := New(2).Mesh(context.Background(), []Job{good, bad, worse})
	if err == nil {
		t.Fatal("expected error for invalid blocks")
	}
	if results != nil {
		t.Errorf("expected no results, got %d", len(results))
	}
	if n := len(multierr.Errors(err)); n != 2 {
		t.Errorf("expected 2 errors, got %d: %v", n, err)
	}
	if !strings.Contains(err.Error(), "block bad") || !strings.Contains(err.Error(), "block worse") {
		t.Errorf("expected block names in error, got %v", err)
	}
}

func TestMeshCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(1).Mesh(ctx, []Job{sphereJob("a", math.Vec3{}, 3), sphereJob("b", math.Vec3{}, 3)})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestMeshEmpty(t *testing.T) {
	results, err := New(1).Mesh(context.Background(), nil)
	if err != nil {
		t.Fatalf("Mesh failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestRayIntersect(t *testing.T) {
	jobs := []Job{
		sphereJob("left", math.Vec3{}, 3.7),
		sphereJob("right", math.Vec3{X: 20}, 3.7),
	}
	results, err := New(2).Mesh(context.Background(), jobs)
	if err != nil {
		t.Fatalf("Mesh failed: %v", err)
	}
	buffers := []*voxelbuffer.Buffer{results[0].Buffer, nil, results[1].Buffer}

	tests := []struct {
		name  string
		ray   picking.Ray
		index int
		want  float32
	}{
		// Sphere surfaces at x = 1.8 and x = 29.2.
		{"from left", picking.Ray{Origin: math.Vec3{X: -10, Y: 5.3, Z: 5.7}, Direction: math.UnitX}, 0, 11.8},
		{"from right", picking.Ray{Origin: math.Vec3{X: 40, Y: 5.3, Z: 5.7}, Direction: math.UnitX.Neg()}, 2, 10.8},
	}

	pool := New(2)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok, err := pool.RayIntersect(context.Background(), buffers, tt.ray)
			if err != nil {
				t.Fatalf("RayIntersect failed: %v", err)
			}
			if !ok {
				t.Fatal("expected a hit")
			}
			if hit.Index != tt.index {
				t.Errorf("expected buffer %d, got %d", tt.index, hit.Index)
			}
			if math32.Abs(hit.Distance-tt.want) > 0.3 {
				t.Errorf("expected distance %v, got %v", tt.want, hit.Distance)
			}
			if hit.Point != tt.ray.At(hit.Distance) {
				t.Errorf("hit point %v not on the ray", hit.Point)
			}
		})
	}

	miss := picking.Ray{Origin: math.Vec3{X: -10, Y: 50, Z: 5.7}, Direction: math.UnitX}
	if _, ok, err := pool.RayIntersect(context.Background(), buffers, miss); ok || err != nil {
		t.Errorf("expected a clean miss, got hit=%v err=%v", ok, err)
	}
}
