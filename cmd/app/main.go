package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/urfave/cli"

	"github.com/1F47E/go-iconreel/pkg/config"
	"github.com/1F47E/go-iconreel/pkg/core"
	p "github.com/1F47E/go-iconreel/pkg/core/progress"
	"github.com/1F47E/go-iconreel/pkg/layout"
	"github.com/1F47E/go-iconreel/pkg/logger"
)

var app = cli.NewApp()
var log = logger.Log

func init() {
	app.Name = "iconreel"
	app.Usage = "Render icons, turntables and sprite sheets of a scene"
	app.UsageText = "iconreel [--config file] command [flags]"
	app.HideVersion = true
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "config", Usage: "YAML config file"},
		cli.BoolFlag{Name: "quiet, q", Usage: "no progress bar"},
	}
	app.Commands = []cli.Command{
		{
			Name:    "capture",
			Aliases: []string{"c"},
			Usage:   "Render one image and save it under a free name",
			Flags:   flags(outputFlags, cli.BoolFlag{Name: "verify", Usage: "read the file back and check it"}),
			Action: func(c *cli.Context) error {
				ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
				defer cancel()
				cfg, err := loadConfig(c)
				if err != nil {
					return err
				}
				req, err := cfg.Request()
				if err != nil {
					return err
				}
				cr, err := core.FromConfig(ctx, cfg)
				if err != nil {
					return err
				}
				defer cr.Close()

				res, err := cr.Capture(req)
				if err != nil {
					return err
				}
				if c.Bool("verify") {
					if err := core.Verify(res.Path, req.Resolution, req.Format); err != nil {
						return fmt.Errorf("verify %s: %w", res.Path, err)
					}
					log.Info("Verified ", res.Path)
				}
				fmt.Println(res.Path)
				return nil
			},
		},
		{
			Name:    "sequence",
			Aliases: []string{"s"},
			Usage:   "Render a turntable around the target and export it",
			Flags:   flags(outputFlags, sequenceFlags...),
			Action: func(c *cli.Context) error {
				ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
				defer cancel()
				cfg, err := loadConfig(c)
				if err != nil {
					return err
				}
				req, err := cfg.Request()
				if err != nil {
					return err
				}
				cr, err := core.FromConfig(ctx, cfg)
				if err != nil {
					return err
				}
				defer cr.Close()

				res, err := cr.Sequence(req, core.SequenceRequest{
					FrameResolution: cfg.Sequence.FrameResolution,
					FrameRate:       cfg.Sequence.FrameRate,
					TileWidth:       cfg.Sequence.TileWidth,
					Exports:         cfg.Sequence.Exports,
				})
				if err != nil {
					return err
				}
				for _, export := range cfg.Sequence.Exports {
					fmt.Printf("%s: %s\n", export, res.Outputs[export])
				}
				return nil
			},
		},
		{
			Name:      "grid",
			Aliases:   []string{"g"},
			Usage:     "Print the sprite sheet grid for N frames",
			ArgsUsage: "N",
			Action: func(c *cli.Context) error {
				n, err := strconv.Atoi(c.Args().Get(0))
				if err != nil || n <= 0 {
					return fmt.Errorf("frame count is required and must be positive")
				}
				w, h := layout.Grid(n)
				fmt.Printf("%dx%d\n%s\n", w, h, layout.FilterComplex(n, layout.DefaultTileWidth))
				return nil
			},
		},
		{
			Name:      "selftest",
			Aliases:   []string{"t"},
			Usage:     "Capture twice into a temp dir and check naming and round trip",
			ArgsUsage: "[dir]",
			Action: func(c *cli.Context) error {
				dir := c.Args().Get(0)
				if dir == "" {
					tmp, err := os.MkdirTemp("", "iconreel-selftest-")
					if err != nil {
						return err
					}
					defer os.RemoveAll(tmp)
					dir = tmp
				}
				first, second, err := core.SelfTest(context.Background(), dir)
				if err != nil {
					return fmt.Errorf("selftest failed: %w", err)
				}
				log.Infof("First capture: %s", first)
				log.Infof("Second capture: %s", second)
				log.Info("Selftest passed")
				return nil
			},
		},
	}
}

// loadConfig reads --config (or the defaults) and applies command flags on top.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.GlobalString("config"); path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load config failed: %w", err)
		}
	}
	if err := applyFlags(c, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	p.SetQuiet(cfg.Quiet || c.GlobalBool("quiet"))
	return cfg, nil
}

func main() {
	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
