// levelchunk splits level geometry into spatial chunks and registers the
// matching collision meshes against them.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/levelchunk/internal/config"
	"github.com/Faultbox/levelchunk/internal/logger"
	"github.com/Faultbox/levelchunk/internal/pipeline"
)

const (
	flagConfig      = "config"
	flagDebug       = "debug"
	flagLogFile     = "log-file"
	flagThreshold   = "threshold"
	flagMaxPerChunk = "max-per-chunk"
	flagScale       = "scale"
	flagMapsDir     = "maps-dir"
	flagAssetsDir   = "assets-dir"
	flagBoundsFile  = "bounds-file"
	flagOut         = "out"
)

func main() {
	// Console logging until a command loads its configuration.
	if err := logger.Init("info", ""); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := newApp().Run(os.Args); err != nil {
		logger.Fatal("levelchunk failed", zap.Error(err))
	}
	logger.Sync()
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "levelchunk",
		Usage: "chunk level geometry and register collision meshes",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: flagConfig, Aliases: []string{"c"}, Usage: "path to levelchunk.yaml"},
			&cli.BoolFlag{Name: flagDebug, Usage: "enable debug logging"},
			&cli.StringFlag{Name: flagLogFile, Usage: "also write logs to `FILE`"},
			&cli.IntFlag{Name: flagThreshold, Usage: "models at or below this triangle count are not split"},
			&cli.IntFlag{Name: flagMaxPerChunk, Usage: "triangle budget per chunk"},
			&cli.Float64Flag{Name: flagScale, Usage: "visual to collision scale factor"},
			&cli.StringFlag{Name: flagMapsDir, Usage: "directory of visual source models"},
			&cli.StringFlag{Name: flagAssetsDir, Usage: "output directory"},
			&cli.StringFlag{Name: flagBoundsFile, Usage: "chunk bounds table path"},
		},
		Commands: []*cli.Command{
			{
				Name:   "chunk",
				Usage:  "split every visual model into chunk containers and write the bounds table",
				Action: withPipeline(func(_ *cli.Context, p *pipeline.Pipeline) error {
					_, err := runChunk(p)
					return err
				}),
			},
			{
				Name:   "collide",
				Usage:  "split collision meshes to match the recorded chunk bounds",
				Action: withPipeline(func(_ *cli.Context, p *pipeline.Pipeline) error {
					return runCollide(p)
				}),
			},
			{
				Name:  "build",
				Usage: "run chunk then collide",
				Action: withPipeline(func(_ *cli.Context, p *pipeline.Pipeline) error {
					ok, err := runChunk(p)
					if !ok {
						logger.Error("chunk pass did not finish, skipping collide", zap.Error(err))
						return err
					}
					return multierr.Append(err, runCollide(p))
				}),
			},
			{
				Name:      "extract",
				Usage:     "convert a visual container into a collision file",
				ArgsUsage: "<in.glb> <out.col>",
				Action: withPipeline(func(c *cli.Context, p *pipeline.Pipeline) error {
					if c.NArg() != 2 {
						return cli.Exit("usage: levelchunk extract <in.glb> <out.col>", 2)
					}
					n, err := p.ExtractCollision(c.Args().Get(0), c.Args().Get(1))
					if err != nil {
						return err
					}
					fmt.Printf("wrote %d triangles to %s\n", n, c.Args().Get(1))
					return nil
				}),
			},
			{
				Name:      "info",
				Usage:     "summarize one or more containers",
				ArgsUsage: "<file.glb>...",
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return cli.Exit("usage: levelchunk info <file.glb>...", 2)
					}
					var errs error
					for _, path := range c.Args().Slice() {
						info, err := pipeline.Inspect(path)
						if err != nil {
							logger.Warn("cannot inspect container", zap.String("file", path), zap.Error(err))
							errs = multierr.Append(errs, errors.Wrap(err, path))
							continue
						}
						fmt.Println(info)
					}
					return errs
				},
			},
			{
				Name:  "config",
				Usage: "write the effective configuration, flags applied, as YAML",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagOut, Usage: "write to `FILE` instead of the user config directory"},
				},
				Action: withPipeline(func(c *cli.Context, p *pipeline.Pipeline) error {
					cfg := p.Config()
					path := c.String(flagOut)
					var err error
					if path == "" {
						path = filepath.Join(config.ConfigDir(), config.FileName)
						err = cfg.Save()
					} else {
						err = cfg.SaveTo(path)
					}
					if err != nil {
						return err
					}
					logger.Info("wrote configuration", zap.String("file", path))
					return nil
				}),
			},
		},
	}
}

func withPipeline(run func(*cli.Context, *pipeline.Pipeline) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := config.Load(c.String(flagConfig), overrides(c))
		if err != nil {
			return err
		}
		if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
			return errors.Wrap(err, "initializing logger")
		}
		defer logger.Sync()
		logger.Debug("configuration loaded", zap.String("file", c.String(flagConfig)))
		logger.Sugar.Debugf("maps %s, assets %s, bounds %s", cfg.Paths.MapsDir, cfg.Paths.AssetsDir, cfg.Paths.BoundsFile)
		return run(c, pipeline.New(cfg, logger.Log))
	}
}

func overrides(c *cli.Context) config.Overrides {
	ov := config.Overrides{
		Debug:       c.Bool(flagDebug),
		LogFile:     c.String(flagLogFile),
		MaxPerChunk: c.Int(flagMaxPerChunk),
		ScaleFactor: c.Float64(flagScale),
		MapsDir:     c.String(flagMapsDir),
		AssetsDir:   c.String(flagAssetsDir),
		BoundsFile:  c.String(flagBoundsFile),
	}
	if c.IsSet(flagThreshold) {
		threshold := c.Int(flagThreshold)
		ov.Threshold = &threshold
	}
	return ov
}

// runChunk reports ok=false when the pass could not complete, so no bounds
// table is available for a following collide pass.
func runChunk(p *pipeline.Pipeline) (ok bool, err error) {
	report, err := p.RunVisual()
	if report != nil {
		fmt.Println(report)
	}
	if err != nil {
		return false, errors.Wrap(err, "chunk")
	}
	return true, failed("chunk", report.Failed)
}

func runCollide(p *pipeline.Pipeline) error {
	report, err := p.RunCollision()
	if err != nil {
		return errors.Wrap(err, "collide")
	}
	fmt.Println(report)
	return failed("collide", report.Failed)
}

func failed(pass string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	return errors.Errorf("%s: %d model(s) failed: %s", pass, len(names), strings.Join(names, ", "))
}
