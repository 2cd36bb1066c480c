package genome

import "orchard/pkg/satmath"

// expressedRateCeiling bounds the blended hue rate; faster parents give a
// lower expressed rate.
const expressedRateCeiling = 9

// Express blends a maternal and a paternal haploid into the expressed trait
// set. It is pure; the result carries no name and is never persisted.
//
// Fields built from saturating addition are symmetric in m and p. HueBase and
// HueBound use saturating subtraction and depend on argument order.
func Express(m, p Haploid) Haploid {
	rate := expressedRateCeiling - satmath.AddLimit(m.HueRateDir.Rate(), p.HueRateDir.Rate(), expressedRateCeiling)
	direction := satmath.AddLimit(m.HueRateDir.Direction(), p.HueRateDir.Direction(), MaxHueDirection)
	return Haploid{
		CDPeriod:   MaxCDPeriod - satmath.AddLimit(m.CDPeriod, p.CDPeriod, MaxCDPeriod),
		CDRate:     uint8((uint16(m.CDRate) + uint16(p.CDRate)) / 2),
		CDDir:      satmath.Add(m.CDDir, p.CDDir),
		Sat:        satmath.Add(m.Sat, p.Sat),
		HueBase:    satmath.Sub(m.HueBase, p.HueBase),
		HueRateDir: HueRateDir(uint16(rate) | uint16(direction)<<8),
		HueBound:   255 - satmath.Sub(m.HueBound, p.HueBound),
		Lin:        satmath.Add(m.Lin, p.Lin),
		Strobe:     satmath.Add(m.Strobe, p.Strobe),
		Accel:      satmath.Add(m.Accel, p.Accel),
		Mic:        satmath.Add(m.Mic, p.Mic),
	}
}
