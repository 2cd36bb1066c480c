package genome

import (
	"bytes"
	"encoding/binary"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordLayoutSizes(t *testing.T) {
	assert.Equal(t, 32, HaploidSize)
	assert.Equal(t, 28, HeaderSize)
	assert.Equal(t, 1052, RecordSize)
}

func TestEncodeLayout(t *testing.T) {
	var f Family
	f.Signature = Signature
	f.Version = Version
	f.Name = MustName("SassyCoolPhage")
	f.Maternal[0] = Haploid{CDPeriod: 1, CDRate: 2, HueRateDir: 0x0A0B, Mic: 9, Name: MustName("M0")}
	f.Paternal[FamilySize-1] = Haploid{HueBound: 0x77, Name: MustName("P15")}

	b := Encode(f)
	require.Len(t, b, RecordSize)
	assert.Equal(t, Signature, binary.LittleEndian.Uint32(b[0:]))
	assert.Equal(t, Version, binary.LittleEndian.Uint32(b[4:]))
	assert.Equal(t, "SassyCoolPhage", string(bytes.TrimRight(b[8:HeaderSize], "\x00")))

	m0 := b[HeaderSize : HeaderSize+HaploidSize]
	assert.Equal(t, []byte{1, 2}, m0[:2])
	assert.Equal(t, []byte{0x0B, 0x0A}, m0[5:7])
	assert.Equal(t, byte(9), m0[11])
	assert.Equal(t, "M0", string(bytes.TrimRight(m0[12:], "\x00")))

	last := b[RecordSize-HaploidSize:]
	assert.Equal(t, byte(0x77), last[7])
	assert.Equal(t, "P15", string(bytes.TrimRight(last[12:], "\x00")))
}

func TestDecodeRoundTrip(t *testing.T) {
	f, err := NewFamily(rand.New(rand.NewPCG(5, 6)))
	require.NoError(t, err)
	got, err := Decode(Encode(f))
	require.NoError(t, err)
	assert.Equal(t, f, got)
}

func TestDecodeIgnoresTrailingBytes(t *testing.T) {
	f, err := NewFamily(rand.New(rand.NewPCG(1, 1)))
	require.NoError(t, err)
	block := append(Encode(f), bytes.Repeat([]byte{0xFF}, 64)...)
	got, err := Decode(block)
	require.NoError(t, err)
	assert.Equal(t, f, got)
}

func TestDecodeRejectsInvalidHeaders(t *testing.T) {
	valid := Encode(Family{Signature: Signature, Version: Version})

	erased := bytes.Repeat([]byte{0xFF}, RecordSize)
	wrongVersion := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(wrongVersion[4:], Version+1)

	cases := []struct {
		name   string
		data   []byte
		reason ValidationReason
	}{
		{"empty", nil, ReasonCorrupt},
		{"short header", []byte{0x45, 0x4E}, ReasonCorrupt},
		{"erased flash", erased, ReasonSignature},
		{"zeroed", make([]byte, RecordSize), ReasonSignature},
		{"version bump", wrongVersion, ReasonVersion},
		{"truncated", valid[:RecordSize-1], ReasonCorrupt},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.data)
			require.ErrorIs(t, err, ErrInvalidFamily)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.reason, vErr.Reason)
		})
	}
}

func TestReadNameUnterminated(t *testing.T) {
	raw := bytes.Repeat([]byte{'z'}, NameCapacity)
	name := readName(raw)
	assert.Equal(t, NameCapacity-1, name.Len())
}
