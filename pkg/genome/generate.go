package genome

import "fmt"

// RandomSource supplies uniformly distributed 32-bit values. *rand.Rand from
// math/rand/v2 satisfies it.
type RandomSource interface {
	Uint32() uint32
}

func drawByte(src RandomSource) uint8 {
	return uint8(src.Uint32() & 0xFF)
}

// scalePeriod maps a byte draw linearly onto 0..MaxCDPeriod, rounding down.
func scalePeriod(v uint8) uint8 {
	return uint8(uint16(v) * MaxCDPeriod / 255)
}

// DrawHaploid draws a fresh haploid. Fields are drawn in layout order and the
// name last. HueRateDir keeps the raw byte draw, so its direction nibble is
// always zero.
func DrawHaploid(src RandomSource) (Haploid, error) {
	h := Haploid{
		CDPeriod:   scalePeriod(drawByte(src)),
		CDRate:     drawByte(src),
		CDDir:      drawByte(src),
		Sat:        drawByte(src),
		HueBase:    drawByte(src),
		HueRateDir: HueRateDir(drawByte(src)),
		HueBound:   drawByte(src),
		Lin:        drawByte(src),
		Strobe:     drawByte(src),
		Accel:      drawByte(src),
		Mic:        drawByte(src),
	}
	name, err := DrawName(src)
	if err != nil {
		return Haploid{}, err
	}
	h.Name = name
	return h, nil
}

// NewFamily draws a complete family with the current signature and version:
// the family name first, then each individual's maternal and paternal haploid.
func NewFamily(src RandomSource) (Family, error) {
	var f Family
	f.Signature = Signature
	f.Version = Version
	name, err := DrawName(src)
	if err != nil {
		return Family{}, fmt.Errorf("family name: %w", err)
	}
	f.Name = name
	for i := range FamilySize {
		if f.Maternal[i], err = DrawHaploid(src); err != nil {
			return Family{}, fmt.Errorf("maternal haploid %d: %w", i, err)
		}
		if f.Paternal[i], err = DrawHaploid(src); err != nil {
			return Family{}, fmt.Errorf("paternal haploid %d: %w", i, err)
		}
	}
	return f, nil
}
