package geometry

// Pose places a camera in the world.
type Pose struct {
	Position Vec3
	Forward  Vec3 // unit view direction
	Up       Vec3
}

// LookAt builds a pose at position looking at target.
func LookAt(position, target Vec3) Pose {
	return Pose{
		Position: position,
		Forward:  target.Sub(position).Normalize(),
		Up:       Up,
	}
}

// Orbit starts distance units in front of target (towards -Z), swings the
// camera horizontalDeg around the up axis, then verticalDeg around the right
// axis, and looks back at target.
func Orbit(target Vec3, distance, horizontalDeg, verticalDeg float64) Pose {
	pos := target.Add(Vec3{0, 0, -distance})
	pos = pos.RotateAround(target, Up, horizontalDeg)
	pos = pos.RotateAround(target, Right, verticalDeg)
	return LookAt(pos, target)
}

// Framing is the result of locking a camera on a target's bounds.
type Framing struct {
	LookAt   Vec3    // bounds centre
	Distance float64 // effective distance from LookAt before the offset is applied
	Pose     Pose
}

// Frame puts the camera on the +Z side of the bounds centre at
// distance + |bounds size|, aims it at the centre and then shifts it by
// offset without turning it.
func Frame(bounds Box, distance float64, offset Vec3) Framing {
	center := bounds.Center()
	effective := distance + bounds.Size().Len()
	pose := LookAt(center.Add(Vec3{0, 0, effective}), center)
	pose.Position = pose.Position.Add(offset)
	return Framing{
		LookAt:   center,
		Distance: effective,
		Pose:     pose,
	}
}
