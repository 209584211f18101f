// Package capture describes a single capture invocation and turns it into
// a camera state for a render backend.
package capture

import (
	"strconv"
	"strings"

	"github.com/1F47E/go-iconreel/pkg/errs"
	"github.com/1F47E/go-iconreel/pkg/geometry"
	"github.com/1F47E/go-iconreel/pkg/imaging"
	"github.com/1F47E/go-iconreel/pkg/namer"
	"github.com/1F47E/go-iconreel/pkg/render"
)

// Resolutions is the allow-list of square output sizes.
var Resolutions = []int{8, 32, 64, 128, 512, 1024, 2048, 4096, 8192}

// ValidResolution reports whether r is in the allow-list.
func ValidResolution(r int) bool {
	for _, v := range Resolutions {
		if v == r {
			return true
		}
	}
	return false
}

// CameraMode selects how the camera is placed.
type CameraMode int

const (
	// Free uses Request.Pose as given.
	Free CameraMode = iota
	// Orbit swings around the target's pivot (bounds centre) at Distance.
	Orbit
	// Frame locks on the target's bounds centre at Distance + |bounds| and applies Offset.
	Frame
)

func ParseCameraMode(s string) (CameraMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "free":
		return Free, nil
	case "orbit":
		return Orbit, nil
	case "frame":
		return Frame, nil
	}
	return Free, errs.Invalid("capture", "unknown camera mode %q", s)
}

// Request is immutable for the duration of one capture.
type Request struct {
	Resolution int
	Format     imaging.Format

	Mode                CameraMode
	Pose                geometry.Pose // Free mode only
	Target              string
	UseTargetAsFilename bool
	Distance            float64
	HorizontalOrbit     float64
	VerticalOrbit       float64
	Offset              geometry.Vec3
	FOVDeg              float64

	Unlit                 bool
	TransparentBackground bool
	OnlyRenderTarget      bool

	// Naming carries directory, base name, postfix, overwrite and delimiter.
	// Extension is filled from Format.
	Naming namer.Policy
}

// FileName is the base name the output will be saved under.
func (r Request) FileName() string {
	if r.UseTargetAsFilename && r.Target != "" {
		return r.Target
	}
	return r.Naming.BaseName
}

// Policy returns the naming policy with base name and extension resolved.
func (r Request) Policy() namer.Policy {
	p := r.Naming
	p.BaseName = r.FileName()
	p.Extension = r.Format.Extension()
	return p
}

// Validate checks everything that can be checked without touching the backend.
func (r Request) Validate() error {
	if !ValidResolution(r.Resolution) {
		return errs.Invalid("capture", "unsupported resolution %d, want one of %s", r.Resolution, resolutionList())
	}
	if r.Format != imaging.PNG && r.Format != imaging.JPEG {
		return errs.Invalid("capture", "unsupported file format %d", r.Format)
	}
	if r.FileName() == "" {
		return errs.Invalid("capture", "file name is empty")
	}
	if r.Target == "" {
		switch {
		case r.Mode != Free:
			return errs.Invalid("capture", "camera mode needs a target")
		case r.UseTargetAsFilename:
			return errs.Invalid("capture", "use target as file name needs a target")
		case r.OnlyRenderTarget:
			return errs.Invalid("capture", "render only target needs a target")
		case r.Unlit:
			return errs.Invalid("capture", "unlit shading needs a target")
		}
	}
	if r.TransparentBackground && r.Format == imaging.JPEG {
		return errs.Invalid("capture", "transparent background needs png, jpeg has no alpha")
	}
	if r.Mode == Free && r.Pose.Forward.Len() == 0 {
		return errs.Invalid("capture", "free camera has no view direction")
	}
	return nil
}

// Camera computes the camera state. Target bounds come from the backend.
func (r Request) Camera(backend render.Backend) (render.CameraState, error) {
	cam := render.CameraState{
		FOVDeg:      r.FOVDeg,
		Transparent: r.TransparentBackground,
		Target:      r.Target,
		OnlyTarget:  r.OnlyRenderTarget,
		Unlit:       r.Unlit,
	}
	if r.Mode == Free {
		cam.Pose = r.Pose
		return cam, nil
	}
	bounds, err := backend.Bounds(r.Target)
	if err != nil {
		return cam, err
	}
	switch r.Mode {
	case Orbit:
		cam.Pose = geometry.Orbit(bounds.Center(), r.Distance, r.HorizontalOrbit, r.VerticalOrbit)
	case Frame:
		cam.Pose = geometry.Frame(bounds, r.Distance, r.Offset).Pose
	}
	return cam, nil
}

func resolutionList() string {
	parts := make([]string, len(Resolutions))
	for i, v := range Resolutions {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
