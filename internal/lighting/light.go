package lighting

// Light is a 4-bit ambient light level stored in a voxel channel.
type Light uint8

const (
	// LightMax is the brightest level a source can emit.
	LightMax Light = 14
	// LightMarking is a reserved value that propagation never reads as light.
	LightMarking Light = 15
)

// lightFromVoxel keeps the low four bits of a channel value.
func lightFromVoxel(v uint16) Light {
	return Light(v & 0x0f)
}

// Diminish returns the level one hop away from a voxel of this level.
func (l Light) Diminish() Light {
	switch {
	case l == 0:
		return 0
	case l >= LightMax:
		return LightMax - 1
	default:
		return l - 1
	}
}

// Increase returns the level one hop closer to the source, capped at LightMax.
func (l Light) Increase() Light {
	switch {
	case l == 0:
		return 0
	case l >= LightMax:
		return LightMax
	default:
		return l + 1
	}
}
