package core

import (
	"fmt"

	"github.com/1F47E/go-iconreel/pkg/capture"
	"github.com/1F47E/go-iconreel/pkg/imaging"
	"github.com/1F47E/go-iconreel/pkg/logger"
	"github.com/1F47E/go-iconreel/pkg/meta"
	"github.com/1F47E/go-iconreel/pkg/namer"
	"github.com/1F47E/go-iconreel/pkg/render"
	"github.com/1F47E/go-iconreel/pkg/storage"
)

type Result struct {
	Path                string
	Sidecar             string // empty unless enabled
	Bytes               int
	Width               int
	Height              int
	AlphaIsTransparency bool
}

// Capture renders one frame for req, encodes it and writes it under a
// collision-free name. Nothing is written when any step fails: an image
// whose sidecar cannot be written is removed again. With Overwrite the
// replaced file is gone at that point.
func (c *Core) Capture(req capture.Request) (Result, error) {
	log := logger.Log.WithField("scope", "core capture")

	buf, err := c.renderRequest(req)
	if err != nil {
		return Result{}, err
	}
	data, err := imaging.Encode(buf, req.Format)
	if err != nil {
		return Result{}, err
	}

	path, err := namer.Resolve(req.Policy())
	if err != nil {
		return Result{}, err
	}
	if err := storage.WriteAtomic(path, data); err != nil {
		return Result{}, err
	}

	res := Result{
		Path:                path,
		Bytes:               len(data),
		Width:               buf.Width(),
		Height:              buf.Height(),
		AlphaIsTransparency: req.TransparentBackground,
	}
	if c.opts.Sidecar {
		m := meta.New(path, req.Format.String(), res.Width, res.Height, res.AlphaIsTransparency)
		err := m.Hash(data)
		if err == nil {
			res.Sidecar, err = m.WriteSidecar(path)
		}
		if err != nil {
			storage.Discard(path)
			return Result{}, fmt.Errorf("sidecar for %s: %w", path, err)
		}
	}
	log.Infof("%dKb was saved as: %s", len(data)/1024, path)
	return res, nil
}

func (c *Core) renderRequest(req capture.Request) (*imaging.PixelBuffer, error) {
	cam, err := c.camera(req)
	if err != nil {
		return nil, err
	}
	return c.backend.Render(cam, req.Resolution)
}

// camera validates req, checks its target exists and builds the camera state.
func (c *Core) camera(req capture.Request) (render.CameraState, error) {
	if err := req.Validate(); err != nil {
		return render.CameraState{}, err
	}
	if req.Target != "" {
		if _, err := c.backend.Bounds(req.Target); err != nil {
			return render.CameraState{}, err
		}
	}
	return req.Camera(c.backend)
}
