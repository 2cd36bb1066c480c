package genome

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Packed little-endian layout of a persisted family.
const (
	HaploidSize = 12 + NameCapacity
	HeaderSize  = 8 + NameCapacity
	RecordSize  = HeaderSize + 2*FamilySize*HaploidSize
)

// Encode packs f into its RecordSize byte layout.
func Encode(f Family) []byte {
	buf := make([]byte, RecordSize)
	binary.LittleEndian.PutUint32(buf[0:], f.Signature)
	binary.LittleEndian.PutUint32(buf[4:], f.Version)
	putName(buf[8:HeaderSize], f.Name)
	off := HeaderSize
	for i := range FamilySize {
		putHaploid(buf[off:off+HaploidSize], f.Maternal[i])
		off += HaploidSize
	}
	for i := range FamilySize {
		putHaploid(buf[off:off+HaploidSize], f.Paternal[i])
		off += HaploidSize
	}
	return buf
}

// Decode unpacks a family, returning a *ValidationError when the header does
// not carry the current signature and version or the record is truncated.
func Decode(b []byte) (Family, error) {
	if len(b) < 8 {
		return Family{}, &ValidationError{Reason: ReasonCorrupt, Detail: fmt.Sprintf("header needs 8 bytes, have %d", len(b))}
	}
	f := Family{
		Signature: binary.LittleEndian.Uint32(b[0:]),
		Version:   binary.LittleEndian.Uint32(b[4:]),
	}
	if err := f.Validate(); err != nil {
		return Family{}, err
	}
	if len(b) < RecordSize {
		return Family{}, &ValidationError{Reason: ReasonCorrupt, Detail: fmt.Sprintf("record needs %d bytes, have %d", RecordSize, len(b))}
	}
	f.Name = readName(b[8:HeaderSize])
	off := HeaderSize
	for i := range FamilySize {
		f.Maternal[i] = readHaploid(b[off : off+HaploidSize])
		off += HaploidSize
	}
	for i := range FamilySize {
		f.Paternal[i] = readHaploid(b[off : off+HaploidSize])
		off += HaploidSize
	}
	return f, nil
}

func putHaploid(b []byte, h Haploid) {
	b[0] = h.CDPeriod
	b[1] = h.CDRate
	b[2] = h.CDDir
	b[3] = h.Sat
	b[4] = h.HueBase
	binary.LittleEndian.PutUint16(b[5:], uint16(h.HueRateDir))
	b[7] = h.HueBound
	b[8] = h.Lin
	b[9] = h.Strobe
	b[10] = h.Accel
	b[11] = h.Mic
	putName(b[12:HaploidSize], h.Name)
}

func readHaploid(b []byte) Haploid {
	return Haploid{
		CDPeriod:   b[0],
		CDRate:     b[1],
		CDDir:      b[2],
		Sat:        b[3],
		HueBase:    b[4],
		HueRateDir: HueRateDir(binary.LittleEndian.Uint16(b[5:])),
		HueBound:   b[7],
		Lin:        b[8],
		Strobe:     b[9],
		Accel:      b[10],
		Mic:        b[11],
		Name:       readName(b[12:HaploidSize]),
	}
}

// putName writes n NUL padded; Name guarantees room for the terminator.
func putName(b []byte, n Name) {
	copy(b, n.s)
	for i := len(n.s); i < len(b); i++ {
		b[i] = 0
	}
}

// readName stops at the first NUL. An unterminated buffer is cut to fit.
func readName(b []byte) Name {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	if len(b) >= NameCapacity {
		b = b[:NameCapacity-1]
	}
	return Name{s: string(b)}
}
