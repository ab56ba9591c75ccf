// voxmesh voxelizes shape scenes into blocks, meshes them with dual
// contouring and answers ray queries against the result.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"

	"github.com/Faultbox/voxmesh/internal/config"
	"github.com/Faultbox/voxmesh/internal/logger"
)

const (
	// Flags.
	flagConfig    = "config"
	flagDebug     = "debug"
	flagLogFile   = "log-file"
	flagWorkers   = "workers"
	flagBlockSize = "block-size"
	flagHermite   = "hermite"
	flagOut       = "out"
	flagOrigin    = "origin"
	flagDirection = "direction"
	flagForce     = "force"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runner carries the loaded configuration to command actions.
type runner struct {
	cfg *config.Config
}

func newApp() *cli.App {
	r := &runner{}
	return &cli.App{
		Name:  "voxmesh",
		Usage: "dual contouring voxel mesher",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
			&cli.StringFlag{
				Name:  flagLogFile,
				Usage: "also write logs to `FILE`",
			},
			&cli.IntFlag{
				Name:  flagWorkers,
				Usage: "number of blocks meshed concurrently (0 = one per CPU)",
			},
			&cli.IntFlag{
				Name:  flagBlockSize,
				Usage: "samples per block axis",
			},
			&cli.BoolFlag{
				Name:  flagHermite,
				Usage: "emit Hermite debug segments",
			},
			&cli.StringFlag{
				Name:    flagOut,
				Aliases: []string{"o"},
				Usage:   "output `DIR`",
			},
		},
		Before: r.before,
		After: func(c *cli.Context) error {
			logger.Sync()
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "voxelize",
				Usage:  "voxelize the configured scene into .vxb block files",
				Action: r.voxelize,
			},
			{
				Name:      "mesh",
				Usage:     "mesh the configured scene, or the given .vxb files, into an OBJ file",
				ArgsUsage: "[file.vxb...]",
				Action:    r.mesh,
			},
			{
				Name:  "raycast",
				Usage: "mesh the configured scene and report the first surface hit by a ray",
				Flags: []cli.Flag{
					&cli.Float64SliceFlag{
						Name:     flagOrigin,
						Usage:    "ray origin as `X,Y,Z`",
						Required: true,
					},
					&cli.Float64SliceFlag{
						Name:     flagDirection,
						Usage:    "ray direction as `X,Y,Z`",
						Required: true,
					},
				},
				Action: r.raycast,
			},
			{
				Name:  "config",
				Usage: "manage the configuration file",
				Subcommands: []*cli.Command{
					{
						Name:      "init",
						Usage:     "write the effective configuration to FILE, or to the user config directory",
						ArgsUsage: "[FILE]",
						Flags: []cli.Flag{
							&cli.BoolFlag{
								Name:  flagForce,
								Usage: "overwrite an existing file",
							},
						},
						Action: r.configInit,
					},
				},
			},
			{
				Name:      "info",
				Usage:     "summarize .vxb block files",
				ArgsUsage: "file.vxb...",
				Action:    r.info,
			},
		},
	}
}

// before loads configuration and initializes logging.
func (r *runner) before(c *cli.Context) error {
	cfg, err := config.Load(c.String(flagConfig), config.Overrides{
		Debug:     c.Bool(flagDebug),
		LogFile:   c.String(flagLogFile),
		Workers:   c.Int(flagWorkers),
		BlockSize: c.Int(flagBlockSize),
		Hermite:   c.Bool(flagHermite),
		OutputDir: c.String(flagOut),
	})
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return err
	}
	logger.Sugar.Debugf("Config: %+v", cfg)
	r.cfg = cfg
	return nil
}
