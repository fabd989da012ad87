package registry

import "github.com/go-gl/mathgl/mgl32"

// Side identifies one face of a voxel cube.
type Side int

const (
	SideLeft   Side = iota // -X
	SideRight              // +X
	SideBottom             // -Y
	SideTop                // +Y
	SideBack               // -Z
	SideFront              // +Z

	SideCount = 6
)

var sideNames = [SideCount]string{"left", "right", "bottom", "top", "back", "front"}

var sideNormals = [SideCount][3]int{
	{-1, 0, 0},
	{1, 0, 0},
	{0, -1, 0},
	{0, 1, 0},
	{0, 0, -1},
	{0, 0, 1},
}

// Opposite returns the side facing the other way. Sides come in -/+ pairs.
func (s Side) Opposite() Side {
	return s ^ 1
}

// Normal returns the integer outward normal of a side.
func (s Side) Normal() (dx, dy, dz int) {
	n := sideNormals[s]
	return n[0], n[1], n[2]
}

// NormalF returns the outward normal as a float vector.
func (s Side) NormalF() mgl32.Vec3 {
	n := sideNormals[s]
	return mgl32.Vec3{float32(n[0]), float32(n[1]), float32(n[2])}
}

func (s Side) String() string {
	if s < 0 || s >= SideCount {
		return "side(?)"
	}
	return sideNames[s]
}

// ParseSide maps a lower-case side name back to its Side.
func ParseSide(name string) (Side, bool) {
	for i, n := range sideNames {
		if n == name {
			return Side(i), true
		}
	}
	return 0, false
}
