package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/Faultbox/voxmesh/internal/config"
	"github.com/Faultbox/voxmesh/internal/engine/contour"
	"github.com/Faultbox/voxmesh/internal/engine/objfile"
	"github.com/Faultbox/voxmesh/internal/engine/picking"
	"github.com/Faultbox/voxmesh/internal/engine/scene"
	"github.com/Faultbox/voxmesh/internal/engine/voxelbuffer"
	"github.com/Faultbox/voxmesh/internal/logger"
	"github.com/Faultbox/voxmesh/internal/worker"
	"github.com/Faultbox/voxmesh/pkg/formats"
	"github.com/Faultbox/voxmesh/pkg/math"
)

// voxelize writes every block of the configured scene to the output directory.
func (r *runner) voxelize(c *cli.Context) error {
	s, err := scene.New(r.cfg.Scene)
	if err != nil {
		return errors.Wrap(err, "building scene")
	}
	if err := os.MkdirAll(r.cfg.Output.Dir, 0755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}

	for _, id := range s.Blocks() {
		if err := c.Context.Err(); err != nil {
			return err
		}
		path := filepath.Join(r.cfg.Output.Dir, id.String()+".vxb")
		if err := formats.WriteVXBFile(path, s.Voxelize(id)); err != nil {
			return errors.Wrapf(err, "writing %s", path)
		}
		logger.Debug("block written", zap.String("path", path))
	}

	logger.Info("scene voxelized",
		zap.Int("blocks", len(s.Blocks())),
		zap.String("dir", r.cfg.Output.Dir))
	fmt.Fprintf(c.App.Writer, "Wrote %d blocks to %s\n", len(s.Blocks()), r.cfg.Output.Dir)
	return nil
}

// configInit saves the loaded configuration, flags applied, as a YAML file.
func (r *runner) configInit(c *cli.Context) error {
	path := filepath.Join(config.ConfigDir(), "config.yaml")
	if c.Args().Len() > 0 {
		path = c.Args().First()
	}
	if !c.Bool(flagForce) {
		if _, err := os.Stat(path); err == nil {
			return errors.Errorf("%s already exists (use --%s to overwrite)", path, flagForce)
		}
	}

	var err error
	if c.Args().Len() > 0 {
		err = r.cfg.SaveTo(path)
	} else {
		err = r.cfg.Save()
	}
	if err != nil {
		return err
	}
	logger.Info("config saved", zap.String("path", path))
	fmt.Fprintf(c.App.Writer, "Wrote %s\n", path)
	return nil
}

// mesh meshes the scene, or the block files given as arguments, into one OBJ file.
func (r *runner) mesh(c *cli.Context) error {
	var jobs []worker.Job
	var err error
	if c.Args().Len() > 0 {
		jobs, err = r.fileJobs(c.Args().Slice())
	} else {
		var s *scene.Scene
		s, err = scene.New(r.cfg.Scene)
		if err == nil {
			jobs = r.sceneJobs(s)
		}
	}
	if err != nil {
		return err
	}

	results, err := worker.New(r.cfg.Worker.Count).Mesh(c.Context, jobs)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(r.cfg.Output.Dir, 0755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}
	path := filepath.Join(r.cfg.Output.Dir, "scene.obj")
	if err := writeOBJ(path, results, r.cfg.Mesh.DisplayHermite); err != nil {
		return err
	}

	logger.Info("scene meshed", zap.Int("blocks", len(results)), zap.String("path", path))
	fmt.Fprintln(c.App.Writer, statsTable(results))
	if len(results) > 0 {
		bounds := results[0].Buffer.Bounds()
		for _, res := range results[1:] {
			bounds = bounds.Union(res.Buffer.Bounds())
		}
		fmt.Fprintf(c.App.Writer, "Bounds (%g, %g, %g) to (%g, %g, %g)\n",
			bounds.Min.X, bounds.Min.Y, bounds.Min.Z, bounds.Max.X, bounds.Max.Y, bounds.Max.Z)
	}
	fmt.Fprintf(c.App.Writer, "Wrote %s\n", path)
	return nil
}

// raycast meshes the scene and reports the nearest surface hit.
func (r *runner) raycast(c *cli.Context) error {
	origin, err := vecFlag(c, flagOrigin)
	if err != nil {
		return err
	}
	direction, err := vecFlag(c, flagDirection)
	if err != nil {
		return err
	}
	if direction.Length() == 0 {
		return errors.New("ray direction must not be zero")
	}
	ray := picking.Ray{Origin: origin, Direction: direction.Normalize()}

	s, err := scene.New(r.cfg.Scene)
	if err != nil {
		return errors.Wrap(err, "building scene")
	}
	hit, ok, names, err := castScene(c.Context, r.cfg.Worker.Count, r.sceneJobs(s), ray)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(c.App.Writer, "No hit")
		return nil
	}
	fmt.Fprintf(c.App.Writer, "Hit %s at distance %.4f, point (%.4f, %.4f, %.4f)\n",
		names[hit.Index], hit.Distance, hit.Point.X, hit.Point.Y, hit.Point.Z)
	return nil
}

// info prints a summary of each block file.
func (r *runner) info(c *cli.Context) error {
	if c.Args().Len() == 0 {
		return errors.New("no block files given")
	}
	var files []namedVXB
	for _, path := range c.Args().Slice() {
		vxb, err := formats.ParseVXBFile(path)
		if err != nil {
			return errors.Wrapf(err, "reading %s", path)
		}
		files = append(files, namedVXB{name: path, vxb: vxb})
	}
	fmt.Fprintln(c.App.Writer, infoTable(files))
	return nil
}

// sceneJobs voxelizes every block of s.
func (r *runner) sceneJobs(s *scene.Scene) []worker.Job {
	ids := s.Blocks()
	jobs := make([]worker.Job, 0, len(ids))
	for _, id := range ids {
		jobs = append(jobs, worker.Job{
			Name:    id.String(),
			Block:   s.Voxelize(id),
			Options: s.MeshOptions(id, r.cfg.Mesh.DisplayHermite),
		})
	}
	return jobs
}

// fileJobs reads block files. Each block is placed at the origin with one
// world unit per sample.
func (r *runner) fileJobs(paths []string) ([]worker.Job, error) {
	jobs := make([]worker.Job, 0, len(paths))
	for _, path := range paths {
		vxb, err := formats.ParseVXBFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", path)
		}
		jobs = append(jobs, worker.Job{
			Name:    strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
			Block:   vxb.Block,
			Options: contour.Options{DisplayHermite: r.cfg.Mesh.DisplayHermite},
		})
	}
	return jobs, nil
}

// castScene meshes jobs and casts ray against the result. The returned
// names are indexed like Hit.Index.
func castScene(ctx context.Context, workers int, jobs []worker.Job, ray picking.Ray) (worker.Hit, bool, []string, error) {
	pool := worker.New(workers)
	results, err := pool.Mesh(ctx, jobs)
	if err != nil {
		return worker.Hit{}, false, nil, err
	}

	buffers := make([]*voxelbuffer.Buffer, len(results))
	names := make([]string, len(results))
	for i, res := range results {
		buffers[i] = res.Buffer
		names[i] = res.Name
	}
	hit, ok, err := pool.RayIntersect(ctx, buffers, ray)
	return hit, ok, names, err
}

// writeOBJ writes all non-empty results to one OBJ file.
func writeOBJ(path string, results []worker.Result, hermite bool) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating OBJ file")
	}
	w := objfile.NewWriter(f)
	for _, res := range results {
		if res.Buffer.Empty() {
			continue
		}
		if err := w.WriteObject(res.Name, res.Buffer, hermite); err != nil {
			f.Close()
			return errors.Wrapf(err, "writing %s", res.Name)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "closing OBJ file")
}

func vecFlag(c *cli.Context, name string) (math.Vec3, error) {
	v := c.Float64Slice(name)
	if len(v) != 3 {
		return math.Vec3{}, errors.Errorf("--%s needs 3 components, got %d", name, len(v))
	}
	return math.Vec3{X: float32(v[0]), Y: float32(v[1]), Z: float32(v[2])}, nil
}
