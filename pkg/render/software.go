package render

import (
	"errors"
	"image"
	"image/color"
	"math"
	"sort"
	"sync"

	"golang.org/x/image/vector"

	"github.com/1F47E/go-iconreel/pkg/errs"
	"github.com/1F47E/go-iconreel/pkg/geometry"
	"github.com/1F47E/go-iconreel/pkg/imaging"
	"github.com/1F47E/go-iconreel/pkg/logger"
)

const (
	nearPlane = 0.01
	ambient   = 0.35
)

var errClosed = errors.New("render context is closed")

// towards the light: above, slightly left and in front of the default camera
var lightDir = geometry.V(-0.4, 1, -0.6).Normalize()

// box faces as corner indices (see geometry.Box.Corners) and outward normals
var faces = [6]struct {
	idx    [4]int
	normal geometry.Vec3
}{
	{[4]int{0, 2, 6, 4}, geometry.V(-1, 0, 0)},
	{[4]int{1, 5, 7, 3}, geometry.V(1, 0, 0)},
	{[4]int{0, 4, 5, 1}, geometry.V(0, -1, 0)},
	{[4]int{2, 3, 7, 6}, geometry.V(0, 1, 0)},
	{[4]int{0, 1, 3, 2}, geometry.V(0, 0, -1)},
	{[4]int{4, 6, 7, 5}, geometry.V(0, 0, 1)},
}

// Software rasterises a Scene of boxes on the CPU. It owns a single render
// context: calls are serialised and fail once the backend is closed.
type Software struct {
	mu     sync.Mutex
	scene  *Scene
	closed bool
}

func NewSoftware(scene *Scene) *Software {
	if scene == nil {
		scene = DefaultScene()
	}
	return &Software{scene: scene}
}

// Close releases the render context.
func (s *Software) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Software) Bounds(name string) (geometry.Box, error) {
	o, ok := s.scene.Find(name)
	if !ok {
		return geometry.Box{}, errs.Invalid("render: bounds", "no object named %q in scene", name)
	}
	return o.Bounds, nil
}

type camBasis struct {
	pos, right, up, fwd geometry.Vec3
	focal               float64
	res                 float64
}

func newBasis(cam CameraState, res int) (camBasis, error) {
	fwd := cam.Forward.Normalize()
	if fwd.Len() == 0 {
		return camBasis{}, errs.Invalid("render", "camera has no view direction")
	}
	up := cam.Up
	if up.Len() == 0 {
		up = geometry.Up
	}
	right := up.Cross(fwd)
	if right.Len() < 1e-9 {
		// looking straight along up, pick any perpendicular
		right = geometry.Forward.Cross(fwd)
		if right.Len() < 1e-9 {
			right = geometry.Right
		}
	}
	right = right.Normalize()
	fov := cam.FOVDeg
	if fov <= 0 || fov >= 180 {
		fov = DefaultFOVDeg
	}
	return camBasis{
		pos:   cam.Position,
		right: right,
		up:    fwd.Cross(right),
		fwd:   fwd,
		focal: 1 / math.Tan(fov*math.Pi/360),
		res:   float64(res),
	}, nil
}

// view converts a world point to camera space: x right, y up, z forward.
func (b camBasis) view(p geometry.Vec3) geometry.Vec3 {
	d := p.Sub(b.pos)
	return geometry.V(d.Dot(b.right), d.Dot(b.up), d.Dot(b.fwd))
}

// project maps a camera-space point in front of the near plane to pixels.
func (b camBasis) project(v geometry.Vec3) (x, y float32) {
	sx := (v.X/v.Z*b.focal*0.5 + 0.5) * b.res
	sy := (0.5 - v.Y/v.Z*b.focal*0.5) * b.res
	limit := 8 * b.res
	sx = math.Max(-limit, math.Min(limit, sx))
	sy = math.Max(-limit, math.Min(limit, sy))
	return float32(sx), float32(sy)
}

// clipNear cuts a camera-space polygon at z = nearPlane (Sutherland-Hodgman).
func clipNear(poly []geometry.Vec3) []geometry.Vec3 {
	out := make([]geometry.Vec3, 0, len(poly)+1)
	for i, cur := range poly {
		prev := poly[(i+len(poly)-1)%len(poly)]
		curIn, prevIn := cur.Z >= nearPlane, prev.Z >= nearPlane
		if curIn != prevIn {
			t := (nearPlane - prev.Z) / (cur.Z - prev.Z)
			out = append(out, prev.Add(cur.Sub(prev).Scale(t)))
		}
		if curIn {
			out = append(out, cur)
		}
	}
	return out
}

type quad struct {
	pts   [4]geometry.Vec3
	depth float64
	color color.NRGBA
}

func (s *Software) Render(cam CameraState, resolution int) (*imaging.PixelBuffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errs.Unavailable("render", errClosed)
	}
	if resolution <= 0 {
		return nil, errs.Invalid("render", "resolution must be positive, got %d", resolution)
	}
	basis, err := newBasis(cam, resolution)
	if err != nil {
		return nil, err
	}

	log := logger.Log.WithField("scope", "render")
	log.Debugf("Rendering %dx%d from %+v", resolution, resolution, cam.Position)

	buf := imaging.NewPixelBuffer(resolution, resolution)
	bg := s.scene.Background
	if cam.Transparent {
		bg.A = 0
	}
	buf.Fill(bg)

	var quads []quad
	for _, o := range s.scene.Objects {
		if cam.OnlyTarget && o.Name != cam.Target {
			continue
		}
		corners := o.Bounds.Corners()
		flat := cam.Unlit && o.Name == cam.Target
		for _, f := range faces {
			var q quad
			for i, ci := range f.idx {
				q.pts[i] = corners[ci]
			}
			center := q.pts[0].Add(q.pts[2]).Scale(0.5)
			// back-face culling
			if f.normal.Dot(center.Sub(basis.pos)) >= 0 {
				continue
			}
			q.depth = center.Sub(basis.pos).Len()
			q.color = o.Color
			if !flat {
				q.color = shade(o.Color, f.normal)
			}
			quads = append(quads, q)
		}
	}

	// painter's order, far to near
	sort.SliceStable(quads, func(i, j int) bool { return quads[i].depth > quads[j].depth })

	size := buf.Bounds().Size()
	z := vector.NewRasterizer(size.X, size.Y)
	for _, q := range quads {
		s.fill(z, buf, basis, q)
	}
	return buf, nil
}

// fill draws one quad, reusing z across the quads of a frame.
func (s *Software) fill(z *vector.Rasterizer, buf *imaging.PixelBuffer, basis camBasis, q quad) {
	poly := make([]geometry.Vec3, 0, 4)
	for _, p := range q.pts {
		poly = append(poly, basis.view(p))
	}
	poly = clipNear(poly)
	if len(poly) < 3 {
		return
	}
	size := buf.Bounds().Size()
	z.Reset(size.X, size.Y)
	for i, v := range poly {
		x, y := basis.project(v)
		if i == 0 {
			z.MoveTo(x, y)
		} else {
			z.LineTo(x, y)
		}
	}
	z.ClosePath()
	z.Draw(buf.NRGBA, buf.Bounds(), image.NewUniform(q.color), image.Point{})
}

func shade(c color.NRGBA, normal geometry.Vec3) color.NRGBA {
	k := ambient + (1-ambient)*math.Max(0, normal.Dot(lightDir))
	scale := func(v uint8) uint8 {
		return uint8(math.Min(255, math.Round(float64(v)*k)))
	}
	return color.NRGBA{scale(c.R), scale(c.G), scale(c.B), c.A}
}
