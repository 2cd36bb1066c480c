package genome

import (
	"fmt"
	"strings"
)

// Name is a display name guaranteed to fit a NameCapacity byte buffer with
// its terminator. The zero value is the empty name.
type Name struct {
	s string
}

// NewName validates s against the name buffer capacity.
func NewName(s string) (Name, error) {
	if len(s) >= NameCapacity {
		return Name{}, &NameOverflowError{Name: s, Capacity: NameCapacity}
	}
	if strings.IndexByte(s, 0) >= 0 {
		return Name{}, fmt.Errorf("name %q contains a NUL byte", s)
	}
	return Name{s: s}, nil
}

// MustName is NewName for compile-time constants; it panics on overflow.
func MustName(s string) Name {
	n, err := NewName(s)
	if err != nil {
		panic(err)
	}
	return n
}

func (n Name) String() string { return n.s }

// Len returns the name length in bytes.
func (n Name) Len() int { return len(n.s) }

var firstNames = [16]string{
	"Happy", "Dusty", "Sassy", "Sexy",
	"Silly", "Curvy", "Nerdy", "Geeky",
	"OMG", "Fappy", "Trippy", "Lovely",
	"Furry", "WTF", "Spacy", "Lacy",
}

var middleNames = [16]string{
	"Playa", "OMG", "Hot", "Dope",
	"Pink", "Balla", "Sweet", "Cool",
	"Cute", "Nice", "Fun", "Soft",
	"Short", "Tall", "Huge", "Red",
}

var lastNames = [8]string{
	"Virus", "Brain", "Raver", "Hippie",
	"Profit", "Relaxo", "Phage", "Blinky",
}

// NameSpace is the number of distinct names GenerateName can produce.
const NameSpace = len(firstNames) * len(middleNames) * len(lastNames)

// NameParts returns the first, middle and last words selected by r.
func NameParts(r uint32) (first, middle, last string) {
	return firstNames[r&0xF], middleNames[(r>>8)&0xF], lastNames[(r>>16)&0x7]
}

// GenerateName builds a name from the bit fields of r: bits 3:0 pick the
// first word, bits 11:8 the middle word and bits 18:16 the last word.
func GenerateName(r uint32) (Name, error) {
	first, middle, last := NameParts(r)
	return NewName(first + middle + last)
}

// DrawName generates a name from one draw of src.
func DrawName(src RandomSource) (Name, error) {
	return GenerateName(src.Uint32())
}
