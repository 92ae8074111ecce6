//go:build !gocv

package imaging

// MorphologyBackend names the morphology implementation compiled into the binary.
const MorphologyBackend = "bild"

func dilate(m *Mask, radius int) *Mask { return bildDilate(m, radius) }

func erode(m *Mask, radius int) *Mask { return bildErode(m, radius) }
