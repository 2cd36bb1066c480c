// Package satmath provides clamped 8-bit arithmetic used when blending genes.
package satmath

// Add returns a+b clamped to 255.
func Add(a, b uint8) uint8 {
	return AddLimit(a, b, 255)
}

// AddLimit returns a+b clamped to limit.
func AddLimit(a, b, limit uint8) uint8 {
	sum := uint16(a) + uint16(b)
	if sum > uint16(limit) {
		return limit
	}
	return uint8(sum)
}

// Sub returns a-b clamped to 0.
func Sub(a, b uint8) uint8 {
	diff := int16(a) - int16(b)
	if diff < 0 {
		return 0
	}
	return uint8(diff)
}
