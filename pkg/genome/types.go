// Package genome defines the badge genome data model: haploid trait records,
// the persisted family of haploid pairs, name synthesis and the trait
// expression that blends a maternal and a paternal haploid.
package genome

import "fmt"

const (
	// Signature marks a block that holds a genome family ("GENE").
	Signature uint32 = 0x47454E45
	// Version is the current schema version of the persisted family.
	Version uint32 = 1
	// FamilySize is the number of individuals in a family.
	FamilySize = 16
	// NameCapacity is the size of a stored name buffer, terminator included.
	NameCapacity = 20
)

// Maximum values of the bounded haploid fields.
const (
	MaxCDPeriod     = 6
	MaxHueRate      = 15
	MaxHueDirection = 15
)

// HueRateDir packs the hue rate (bits 3:0) and hue direction (bits 11:8).
// Stored values are kept raw so a record round-trips bit for bit; use Rate
// and Direction to read the two components.
type HueRateDir uint16

// NewHueRateDir packs rate and direction, rejecting values above 15.
func NewHueRateDir(rate, direction uint8) (HueRateDir, error) {
	if rate > MaxHueRate {
		return 0, fmt.Errorf("hue rate %d out of range 0-%d", rate, MaxHueRate)
	}
	if direction > MaxHueDirection {
		return 0, fmt.Errorf("hue direction %d out of range 0-%d", direction, MaxHueDirection)
	}
	return HueRateDir(uint16(rate) | uint16(direction)<<8), nil
}

// Rate returns the low nibble.
func (h HueRateDir) Rate() uint8 { return uint8(h & 0xF) }

// Direction returns the nibble at bits 11:8.
func (h HueRateDir) Direction() uint8 { return uint8((h >> 8) & 0xF) }

// Haploid is one parent's trait contribution. The expressed (diploid) trait
// set has the same shape and is returned by Express.
type Haploid struct {
	CDPeriod   uint8
	CDRate     uint8
	CDDir      uint8
	Sat        uint8
	HueBase    uint8
	HueRateDir HueRateDir
	HueBound   uint8
	Lin        uint8
	Strobe     uint8
	Accel      uint8
	Mic        uint8
	Name       Name
}

// Family is the persisted record: header plus the population of haploid pairs.
type Family struct {
	Signature uint32
	Version   uint32
	Name      Name
	Maternal  [FamilySize]Haploid
	Paternal  [FamilySize]Haploid
}

// Individual is one member of a family together with its expressed traits.
type Individual struct {
	Index     int
	Maternal  Haploid
	Paternal  Haploid
	Expressed Haploid
}

// Validate reports whether the header carries the current signature and
// version. The record is valid or invalid as a unit.
func (f Family) Validate() error {
	if f.Signature != Signature {
		return &ValidationError{Reason: ReasonSignature}
	}
	if f.Version != Version {
		return &ValidationError{Reason: ReasonVersion}
	}
	return nil
}

// Individual returns member i with its expression.
func (f Family) Individual(i int) (Individual, error) {
	if err := CheckIndex(i); err != nil {
		return Individual{}, err
	}
	m, p := f.Maternal[i], f.Paternal[i]
	return Individual{Index: i, Maternal: m, Paternal: p, Expressed: Express(m, p)}, nil
}

// CheckIndex returns a *RangeError unless 0 <= i < FamilySize.
func CheckIndex(i int) error {
	if i < 0 || i >= FamilySize {
		return &RangeError{Index: i, Size: FamilySize}
	}
	return nil
}
