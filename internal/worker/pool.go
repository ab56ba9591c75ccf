// Package worker meshes voxel blocks in parallel and answers ray queries
// over many meshed blocks.
package worker

import (
	"context"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/voxmesh/internal/engine/contour"
	"github.com/Faultbox/voxmesh/internal/engine/picking"
	"github.com/Faultbox/voxmesh/internal/engine/voxelbuffer"
	"github.com/Faultbox/voxmesh/internal/logger"
	"github.com/Faultbox/voxmesh/pkg/math"
	"github.com/Faultbox/voxmesh/pkg/voxel"
)

// Job is one block to mesh.
type Job struct {
	Name    string
	Block   voxel.Block
	Options contour.Options
}

// Result is a meshed block.
type Result struct {
	Name    string
	Buffer  *voxelbuffer.Buffer
	Elapsed time.Duration
}

// Pool runs meshing passes on a bounded number of goroutines. Each pass
// owns its caches, so passes never share mutable state.
type Pool struct {
	workers int
	log     *zap.Logger
}

// New creates a pool. A worker count of zero or less uses one per CPU.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{workers: workers, log: logger.Named("worker")}
}

// Workers returns the number of concurrent meshing passes.
func (p *Pool) Workers() int { return p.workers }

// Validate checks every job's block. All problems found are returned together.
func Validate(jobs []Job) error {
	var err error
	for _, job := range jobs {
		if e := job.Block.Validate(); e != nil {
			err = multierr.Append(err, errors.Wrapf(e, "block %s", job.Name))
		}
	}
	return err
}

// Mesh meshes every job and returns results in job order. Blocks are
// validated first and nothing is meshed if any is invalid. Cancelling ctx
// stops blocks that have not started; a pass in progress runs to completion.
func (p *Pool) Mesh(ctx context.Context, jobs []Job) ([]Result, error) {
	if err := Validate(jobs); err != nil {
		return nil, err
	}

	start := time.Now()
	results := make([]Result, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			passStart := time.Now()
			buf := contour.Mesh(job.Block, job.Options)
			results[i] = Result{Name: job.Name, Buffer: buf, Elapsed: time.Since(passStart)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "meshing blocks")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "meshing blocks")
	}

	p.log.Debug("blocks meshed",
		zap.Int("blocks", len(jobs)),
		zap.Int("workers", p.workers),
		zap.Duration("elapsed", time.Since(start)))
	return results, nil
}

// Hit is the nearest ray intersection over a set of buffers.
type Hit struct {
	Index    int     // Buffer index
	Distance float32 // Ray parameter
	Point    math.Vec3
}

// RayIntersect casts a world-space ray against every buffer concurrently
// and returns the nearest hit. Hit.Distance is the ray parameter; it is a
// world distance when the direction has unit length.
func (p *Pool) RayIntersect(ctx context.Context, buffers []*voxelbuffer.Buffer, ray picking.Ray) (Hit, bool, error) {
	type candidate struct {
		t   float32
		hit bool
	}
	candidates := make([]candidate, len(buffers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, buf := range buffers {
		if buf == nil || buf.Empty() {
			continue
		}
		if _, hit := ray.IntersectAABB(buf.Bounds()); !hit {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t, hit := buf.RayIntersect(ray.Origin, ray.Direction)
			candidates[i] = candidate{t: t, hit: hit}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Hit{}, false, errors.Wrap(err, "ray query")
	}

	best := Hit{Index: -1}
	for i, c := range candidates {
		if c.hit && (best.Index < 0 || c.t < best.Distance) {
			best = Hit{Index: i, Distance: c.t, Point: ray.At(c.t)}
		}
	}
	if best.Index < 0 {
		return Hit{}, false, nil
	}
	return best, true, nil
}
