package core

import (
	"context"
	"io"
	"runtime"

	"github.com/1F47E/go-iconreel/pkg/config"
	"github.com/1F47E/go-iconreel/pkg/render"
	"github.com/1F47E/go-iconreel/pkg/video"
	"github.com/1F47E/go-iconreel/pkg/workers"
)

type Options struct {
	// Sidecar writes <file>.meta.yaml next to every capture.
	Sidecar bool
	// Workers encoding sequence frames, 0 = one per cpu.
	Workers int
	// FramesDir is the root for per-sequence temp folders.
	FramesDir string
	Encoder   *video.Encoder
}

type Core struct {
	ctx     context.Context
	backend render.Backend
	worker  *workers.Worker
	opts    Options
}

func NewCore(ctx context.Context, backend render.Backend, opts Options) *Core {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.FramesDir == "" {
		opts.FramesDir = config.PathFramesDir
	}
	if opts.Encoder == nil {
		opts.Encoder = video.NewEncoder("")
	}
	return &Core{
		ctx:     ctx,
		backend: backend,
		worker:  workers.NewWorker(ctx),
		opts:    opts,
	}
}

// FromConfig wires a software backend with the configured scene and encoder.
func FromConfig(ctx context.Context, cfg *config.Config) (*Core, error) {
	scene, err := cfg.BuildScene()
	if err != nil {
		return nil, err
	}
	framesDir, err := cfg.FramesDir()
	if err != nil {
		return nil, err
	}
	enc := video.NewEncoder(cfg.Encoder.Binary)
	enc.PollInterval = cfg.PollInterval()
	enc.Timeout = cfg.Timeout()
	enc.ExtraArgs = cfg.Encoder.ExtraArgs
	return NewCore(ctx, render.NewSoftware(scene), Options{
		Sidecar:   cfg.Output.Sidecar,
		Workers:   cfg.Sequence.Workers,
		FramesDir: framesDir,
		Encoder:   enc,
	}), nil
}

// Close releases the render backend when it holds resources.
func (c *Core) Close() error {
	if closer, ok := c.backend.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
