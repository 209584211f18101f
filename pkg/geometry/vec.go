package geometry

import "math"

// Vec3 is a world-space vector. Y is up, Z points away from the default camera.
type Vec3 struct {
	X, Y, Z float64
}

var (
	Up      = Vec3{0, 1, 0}
	Right   = Vec3{1, 0, 0}
	Forward = Vec3{0, 0, 1}
)

func V(x, y, z float64) Vec3 { return Vec3{x, y, z} }

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Dot(o Vec3) float64   { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) Len() float64         { return math.Sqrt(v.Dot(v)) }
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Normalize returns the unit vector, or the zero vector unchanged.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// Rotate turns v around an axis through the origin (Rodrigues).
// Rotating Forward by +90 around Up gives Right.
func (v Vec3) Rotate(axis Vec3, deg float64) Vec3 {
	k := axis.Normalize()
	rad := deg * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	return v.Scale(cos).
		Add(k.Cross(v).Scale(sin)).
		Add(k.Scale(k.Dot(v) * (1 - cos)))
}

// RotateAround turns point p around an axis passing through pivot.
func (v Vec3) RotateAround(pivot, axis Vec3, deg float64) Vec3 {
	return v.Sub(pivot).Rotate(axis, deg).Add(pivot)
}

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max Vec3
}

func (b Box) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

func (b Box) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// Corners lists the 8 vertices, bit 0 = x, bit 1 = y, bit 2 = z.
func (b Box) Corners() [8]Vec3 {
	var c [8]Vec3
	for i := range c {
		p := b.Min
		if i&1 != 0 {
			p.X = b.Max.X
		}
		if i&2 != 0 {
			p.Y = b.Max.Y
		}
		if i&4 != 0 {
			p.Z = b.Max.Z
		}
		c[i] = p
	}
	return c
}
