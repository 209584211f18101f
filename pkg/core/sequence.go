package core

import (
	"fmt"
	"sync"

	"github.com/1F47E/go-iconreel/pkg/capture"
	"github.com/1F47E/go-iconreel/pkg/config"
	p "github.com/1F47E/go-iconreel/pkg/core/progress"
	"github.com/1F47E/go-iconreel/pkg/errs"
	"github.com/1F47E/go-iconreel/pkg/geometry"
	"github.com/1F47E/go-iconreel/pkg/imaging"
	"github.com/1F47E/go-iconreel/pkg/job"
	"github.com/1F47E/go-iconreel/pkg/layout"
	"github.com/1F47E/go-iconreel/pkg/logger"
	"github.com/1F47E/go-iconreel/pkg/namer"
	"github.com/1F47E/go-iconreel/pkg/render"
	"github.com/1F47E/go-iconreel/pkg/storage"
	"github.com/1F47E/go-iconreel/pkg/video"
)

type SequenceRequest struct {
	FrameResolution int // frames per turn, 4..360
	FrameRate       int // gif only
	TileWidth       int // sprite and sheet tile width
	Exports         []string
}

type SequenceResult struct {
	Frames int
	// Outputs maps an export to the file it produced. The frames export
	// maps to the kept frames folder.
	Outputs map[string]string
}

// Angles lists the turntable angles for frameResolution frames per turn.
// The step is 360 / frameResolution in whole degrees, so 16 frames per
// turn give a 22 degree step and 17 angles.
func Angles(frameResolution int) []int {
	if frameResolution <= 0 {
		return nil
	}
	step := 360 / frameResolution
	if step < 1 {
		step = 1
	}
	angles := make([]int, 0, 360/step+1)
	for a := 0; a < 360; a += step {
		angles = append(angles, a)
	}
	return angles
}

func (s SequenceRequest) validate() error {
	fr := s.FrameResolution
	if fr < config.MinFrameResolution || fr > config.MaxFrameResolution {
		return errs.Invalid("sequence", "frame resolution must be between %d and %d, got %d",
			config.MinFrameResolution, config.MaxFrameResolution, fr)
	}
	if len(s.Exports) == 0 {
		return errs.Invalid("sequence", "nothing to export")
	}
	for _, e := range s.Exports {
		switch e {
		case config.ExportFrames, config.ExportSheet, config.ExportSprite,
			config.ExportGif, config.ExportMp4, config.ExportAvi, config.ExportMov:
		default:
			return errs.Invalid("sequence", "unknown export %q", e)
		}
	}
	return nil
}

func (s SequenceRequest) keepFrames() bool {
	for _, e := range s.Exports {
		if e == config.ExportFrames {
			return true
		}
	}
	return false
}

// Sequence shoots a turntable around req's target and exports it.
// 1. render every frame in order on the single render context
// 2. encode and save frames by workers
// 3. run every export, the external encoder ones one after another
func (c *Core) Sequence(req capture.Request, seq SequenceRequest) (SequenceResult, error) {
	log := logger.Log.WithField("scope", "core sequence")
	res := SequenceResult{Outputs: map[string]string{}}

	if err := seq.validate(); err != nil {
		return res, err
	}
	if req.Target == "" {
		return res, errs.Invalid("sequence", "turntable needs a target")
	}
	base, err := c.camera(req)
	if err != nil {
		return res, err
	}
	bounds, err := c.backend.Bounds(req.Target)
	if err != nil {
		return res, err
	}
	pivot := bounds.Center()

	framesDir, err := storage.CreateFramesDir(c.opts.FramesDir)
	if err != nil {
		return res, err
	}
	keep := seq.keepFrames()
	defer func() {
		if keep {
			return
		}
		if err := storage.CleanFrames(framesDir); err != nil {
			log.Warnf("Cannot clean frames dir %s: %v", framesDir, err)
		}
	}()

	angles := Angles(seq.FrameResolution)
	if err := c.shoot(base, pivot, req.Resolution, framesDir, angles); err != nil {
		return res, err
	}
	res.Frames = len(angles)
	if keep {
		res.Outputs[config.ExportFrames] = framesDir
	}

	for _, export := range seq.Exports {
		if export == config.ExportFrames {
			continue
		}
		p.ProgressSpinner(fmt.Sprintf("Exporting %s... ", export))
		out, err := c.export(export, req, seq, framesDir, len(angles))
		if err != nil {
			p.Finish()
			return res, fmt.Errorf("export %s: %w", export, err)
		}
		p.Finish()
		res.Outputs[export] = out
		log.Infof("%s saved as: %s", export, out)
	}
	return res, nil
}

// shoot renders the frames sequentially and hands them to the encode workers.
func (c *Core) shoot(base render.CameraState, pivot geometry.Vec3, resolution int, dir string, angles []int) error {
	log := logger.Log.WithField("scope", "core shoot")

	jobs := make(chan job.JobEnc)
	results := make(chan job.JobEncRes, len(angles))

	wg := sync.WaitGroup{}
	for i := 0; i < c.opts.Workers; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			c.worker.WorkerEncode(i+1, jobs, results)
		}()
	}
	log.Debugf("Started %d workers", c.opts.Workers)

	p.ProgressReset(len(angles), "Rendering frames... ")

	// the bar moves as frames land on disk
	var firstErr error
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for r := range results {
			if r.Err != nil && firstErr == nil {
				firstErr = r.Err
			}
			p.Add(1)
		}
	}()

	var renderErr error
	sent := 0
loop:
	for n, angle := range angles {
		cam := base
		cam.Pose = geometry.LookAt(base.Position.RotateAround(pivot, geometry.Up, float64(angle)), pivot)
		buf, err := c.backend.Render(cam, resolution)
		if err != nil {
			renderErr = fmt.Errorf("render frame %d: %w", n, err)
			break
		}
		select {
		case <-c.ctx.Done():
			renderErr = c.ctx.Err()
			break loop
		case jobs <- job.New(dir, n, angle, buf):
			sent++
		}
	}
	close(jobs)
	wg.Wait()
	close(results)
	<-collected

	p.Finish()
	if renderErr != nil {
		return renderErr
	}
	if firstErr != nil {
		return firstErr
	}
	if err := c.ctx.Err(); err != nil {
		return err
	}
	log.Debugf("%d frames saved to %s", sent, dir)
	return nil
}

// outputPolicy names sequence outputs {name}{postfix}_{W}x{H}.{ext}.
func outputPolicy(req capture.Request, ext string) namer.Policy {
	pol := req.Policy()
	pol.Postfix = fmt.Sprintf("%s_%dx%d", pol.Postfix, req.Resolution, req.Resolution)
	pol.Extension = ext
	return pol
}

func (c *Core) export(export string, req capture.Request, seq SequenceRequest, framesDir string, frames int) (string, error) {
	ext := export
	switch export {
	case config.ExportSheet, config.ExportSprite:
		ext = imaging.PNG.Extension()
	}
	out, err := namer.Resolve(outputPolicy(req, ext))
	if err != nil {
		return "", err
	}

	if export == config.ExportSheet {
		if err := c.exportSheet(out, framesDir, seq.TileWidth); err != nil {
			return "", err
		}
		return out, nil
	}

	// the encoder writes a temp sibling, out only appears once it succeeded
	tmp, err := storage.TempSibling(out)
	if err != nil {
		return "", err
	}
	params := video.Params{
		Input:           storage.FramePattern(framesDir),
		Output:          tmp,
		Width:           req.Resolution,
		Height:          req.Resolution,
		FrameRate:       seq.FrameRate,
		FrameResolution: seq.FrameResolution,
		Frames:          frames,
		TileWidth:       seq.TileWidth,
	}
	var args *video.Args
	switch export {
	case config.ExportSprite:
		args = video.SpriteArgs(params)
	case config.ExportGif:
		args = video.GifArgs(params)
	case config.ExportMp4:
		args = video.Mp4Args(params)
	case config.ExportAvi:
		args = video.AviArgs(params)
	case config.ExportMov:
		args = video.MovArgs(params)
	}
	if err := c.opts.Encoder.Run(c.ctx, args); err != nil {
		storage.Discard(tmp)
		return "", err
	}
	if err := storage.Commit(tmp, out); err != nil {
		return "", err
	}
	return out, nil
}

// exportSheet builds the sprite sheet in process.
func (c *Core) exportSheet(out, framesDir string, tileWidth int) error {
	files, err := storage.ScanFrames(framesDir)
	if err != nil {
		return err
	}
	imgs, err := storage.FramesRead(files)
	if err != nil {
		return err
	}
	sheet, err := layout.Compose(imgs, tileWidth)
	if err != nil {
		return err
	}
	data, err := imaging.Encode(sheet, imaging.PNG)
	if err != nil {
		return err
	}
	return storage.WriteAtomic(out, data)
}
