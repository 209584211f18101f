// Package render is the seam between the capture pipeline and whatever
// draws the scene.
package render

import (
	"image/color"

	"github.com/1F47E/go-iconreel/pkg/geometry"
	"github.com/1F47E/go-iconreel/pkg/imaging"
)

// DefaultFOVDeg is the vertical field of view used when a request leaves it at 0.
const DefaultFOVDeg = 60

// CameraState is everything a backend needs to draw one frame.
type CameraState struct {
	geometry.Pose

	FOVDeg      float64
	Background  color.NRGBA
	Transparent bool   // clear to alpha 0 instead of the background alpha
	Target      string // object the camera is locked on, if any
	OnlyTarget  bool   // draw Target and nothing else
	Unlit       bool   // flat colours on Target, no shading
}

// Backend renders offscreen, one synchronous frame per call.
type Backend interface {
	// Render draws a resolution x resolution frame. Fails with
	// ResourceUnavailable when the backend has no render context.
	Render(cam CameraState, resolution int) (*imaging.PixelBuffer, error)

	// Bounds returns the world-space bounds of a named object, used to frame it.
	Bounds(name string) (geometry.Box, error)
}
