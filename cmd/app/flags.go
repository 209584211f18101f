package main

import (
	"github.com/urfave/cli"

	"github.com/1F47E/go-iconreel/pkg/config"
)

var outputFlags = []cli.Flag{
	cli.StringFlag{Name: "dir, d", Usage: "output directory"},
	cli.StringFlag{Name: "name, n", Usage: "base file name"},
	cli.StringFlag{Name: "postfix", Usage: "appended to the base name"},
	cli.StringFlag{Name: "delimiter", Usage: "between name and collision number"},
	cli.BoolFlag{Name: "overwrite", Usage: "replace an existing file instead of numbering"},
	cli.StringFlag{Name: "format, f", Usage: "png or jpg"},
	cli.IntFlag{Name: "resolution, r", Usage: "8, 32, 64, 128, 512, 1024, 2048, 4096 or 8192"},
	cli.BoolFlag{Name: "sidecar", Usage: "write <file>.meta.yaml beside the image"},

	cli.StringFlag{Name: "mode, m", Usage: "camera mode: free, orbit or frame"},
	cli.StringFlag{Name: "target, t", Usage: "object to orbit or frame"},
	cli.BoolFlag{Name: "use-target-name", Usage: "name the file after the target"},
	cli.Float64Flag{Name: "distance", Usage: "camera distance from the target"},
	cli.Float64Flag{Name: "horizontal", Usage: "horizontal orbit in degrees"},
	cli.Float64Flag{Name: "vertical", Usage: "vertical orbit in degrees"},
	cli.Float64Flag{Name: "fov", Usage: "vertical field of view in degrees"},
	cli.BoolFlag{Name: "transparent", Usage: "transparent background, png only"},
	cli.BoolFlag{Name: "only-target", Usage: "render the target and nothing else"},
	cli.BoolFlag{Name: "unlit", Usage: "flat colours on the target"},
}

var sequenceFlags = []cli.Flag{
	cli.IntFlag{Name: "frames", Usage: "frames per turn, 4 to 360"},
	cli.IntFlag{Name: "rate", Usage: "gif frame rate"},
	cli.IntFlag{Name: "tile", Usage: "sprite tile width"},
	cli.StringSliceFlag{Name: "export, e", Usage: "frames, sheet, sprite, gif, mp4, avi or mov (repeatable)"},
	cli.IntFlag{Name: "workers, w", Usage: "frame encoding workers, 0 = one per cpu"},
	cli.StringFlag{Name: "encoder", Usage: "external encoder binary"},
	cli.IntFlag{Name: "timeout", Usage: "encoder timeout in seconds, 0 = none"},
	cli.StringFlag{Name: "temp", Usage: "root folder for temp frames"},
}

func flags(base []cli.Flag, extra ...cli.Flag) []cli.Flag {
	out := make([]cli.Flag, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}

// applyFlags copies every flag set on the command line over cfg.
func applyFlags(c *cli.Context, cfg *config.Config) error {
	str := func(name string, dst *string) {
		if c.IsSet(name) {
			*dst = c.String(name)
		}
	}
	num := func(name string, dst *int) {
		if c.IsSet(name) {
			*dst = c.Int(name)
		}
	}
	float := func(name string, dst *float64) {
		if c.IsSet(name) {
			*dst = c.Float64(name)
		}
	}
	flag := func(name string, dst *bool) {
		if c.IsSet(name) {
			*dst = c.Bool(name)
		}
	}

	str("dir", &cfg.Output.Directory)
	str("name", &cfg.Output.BaseName)
	str("postfix", &cfg.Output.Postfix)
	str("delimiter", &cfg.Output.Delimiter)
	flag("overwrite", &cfg.Output.Overwrite)
	str("format", &cfg.Output.Format)
	num("resolution", &cfg.Output.Resolution)
	flag("sidecar", &cfg.Output.Sidecar)

	str("mode", &cfg.Camera.Mode)
	str("target", &cfg.Camera.Target)
	flag("use-target-name", &cfg.Camera.UseTargetAsFilename)
	float("distance", &cfg.Camera.Distance)
	float("horizontal", &cfg.Camera.HorizontalOrbit)
	float("vertical", &cfg.Camera.VerticalOrbit)
	float("fov", &cfg.Camera.FOV)
	flag("transparent", &cfg.Camera.Transparent)
	flag("only-target", &cfg.Camera.OnlyTarget)
	flag("unlit", &cfg.Camera.Unlit)

	num("frames", &cfg.Sequence.FrameResolution)
	num("rate", &cfg.Sequence.FrameRate)
	num("tile", &cfg.Sequence.TileWidth)
	if c.IsSet("export") {
		cfg.Sequence.Exports = c.StringSlice("export")
	}
	num("workers", &cfg.Sequence.Workers)
	str("encoder", &cfg.Encoder.Binary)
	num("timeout", &cfg.Encoder.TimeoutSec)
	str("temp", &cfg.Sequence.TempDir)
	return nil
}
