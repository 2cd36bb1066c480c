package peripheral

import (
	"fmt"
	"sync"
	"time"

	"tinygo.org/x/drivers"
)

// AudioAddress is the 7-bit bus address of the audio codec.
const AudioAddress uint16 = 0x3C

// Codec control registers. Addresses are 16 bits wide on the wire.
const (
	regClkCtrl       = 0x0000
	regClkOutSel     = 0x0007
	regCoreCtrl      = 0x0009
	regDBReg0        = 0x000C
	regDBReg1        = 0x000D
	regDBReg2        = 0x000E
	regADCCtrl01     = 0x001B
	regADCCtrl1_01   = 0x001D
	regPGAAIN0Ctrl   = 0x0023
	regPGAAIN1Ctrl   = 0x0024
	regDSPBypassPath = 0x002A
	regDACCtrl01     = 0x002E
	regHdphnMute     = 0x0031
	regSDataMode1    = 0x0033
	regSDataTDM      = 0x0034
	regHdphnMode     = 0x0043
	regDecimPwrMode  = 0x0044
)

const (
	clkCtrlXtal        = 0x07 // PLL off, crystal on
	clkOutOff          = 0x07
	coreCtrlStart192k  = 0x85 // zero state, bank A, 192 kHz, core running
	adcCtrl01Unmuted   = 0x01 // unmuted, 192 kHz
	adcCtrl1_01HPF8Hz  = 0x63 // 8 Hz high-pass, analog source, ADCs on
	pgaMicBypass       = 0xC0 // mic mode, PGA disabled
	dspBypassADCToDAC  = 0x03
	dacCtrl01Enabled   = 0x03 // normal phase, unmuted, enabled
	hdphnUnmuteP       = 0x0A // single ended, P side live
	hdphnMuteAll       = 0x0F
	sdataMode1Tristate = 0x80
	sdataTDMDisabled   = 0xFF
	hdphnModeGround    = 0x3A // headphone drive, P outputs only
	decimPwrADC01      = 0x03
)

// HeadphoneSettle is how long the headphone amplifier needs after it is
// enabled before it may be unmuted.
const HeadphoneSettle = 6 * time.Millisecond

// dspWord is one DSP memory write: a program opcode or a filter parameter.
type dspWord struct {
	addr uint16
	data []byte
}

// dspProgram routes AIN0/1 through a parametric EQ and a limiter and feeds the
// level meters in DBREG0/1. The last slot is a no-op.
var dspProgram = []dspWord{
	{0x0080, []byte{0x00, 0x80}},
	{0x0081, []byte{0x01, 0x84}},
	{0x0082, []byte{0x02, 0x10}},
	{0x0083, []byte{0x01, 0x88}},
	{0x0084, []byte{0x01, 0x80}},
	{0x0085, []byte{0x03, 0x00}},
	{0x0086, []byte{0x01, 0x8C}},
	{0x0087, []byte{0x03, 0x01}},
	{0x0088, []byte{0x01, 0x8D}},
	{0x0089, []byte{0x00, 0x81}},
	{0x008A, []byte{0x01, 0x84}},
	{0x008B, []byte{0x02, 0x30}},
	{0x008C, []byte{0x01, 0x89}},
	{0x008D, []byte{0x01, 0x81}},
	{0x008E, []byte{0x00, 0x00}},
}

// dspParams holds the EQ coefficients (banks A and B, 5.27 / 2.27 / 1.27
// fixed point) followed by the limiter gains, thresholds and time constants.
var dspParams = []dspWord{
	{0x00E0, []byte{0x08, 0x00, 0x00, 0x00}},
	{0x0100, []byte{0x90, 0x00, 0x00, 0x00}},
	{0x0120, []byte{0x08, 0x00, 0x00, 0x00}},
	{0x0140, []byte{0xFF, 0x42, 0x90, 0x36}},
	{0x0160, []byte{0x07, 0x4A, 0xF2, 0x0E}},
	{0x0180, []byte{0x08, 0x00, 0x00, 0x00}},
	{0x01A0, []byte{0x10, 0x00, 0x00, 0x00}},
	{0x01C0, []byte{0x08, 0x00, 0x00, 0x00}},
	{0x01E0, []byte{0xFF, 0x42, 0x90, 0x36}},
	{0x0200, []byte{0x07, 0x4A, 0xF2, 0x0E}},
	{0x00E2, []byte{0x08, 0x00, 0x00, 0x00}},
	{0x0102, []byte{0x10, 0x00, 0x00, 0x00}},
	{0x0122, []byte{0x08, 0x00, 0x00, 0x00}},
	{0x0142, []byte{0xFF, 0x42, 0x90, 0x36}},
	{0x0162, []byte{0x07, 0x4A, 0xF2, 0x0E}},
	{0x0182, []byte{0x08, 0x00, 0x00, 0x00}},
	{0x01A2, []byte{0x90, 0x00, 0x00, 0x00}},
	{0x01C2, []byte{0x08, 0x00, 0x00, 0x00}},
	{0x01E2, []byte{0xFF, 0x42, 0x90, 0x36}},
	{0x0202, []byte{0x07, 0x4A, 0xF2, 0x0E}},
	{0x00E1, []byte{0x00, 0xA1, 0x24, 0x78}},
	{0x0101, []byte{0x00, 0x0C, 0xCC, 0xCD}},
	{0x0121, []byte{0x00, 0x00, 0x03, 0xE8}},
	{0x0141, []byte{0x00, 0x00, 0x03, 0xE8}},
	{0x0161, []byte{0x00, 0x28, 0x7A, 0x27}},
	{0x0181, []byte{0x00, 0x80, 0x00, 0x00}},
	{0x01A1, []byte{0x00, 0x01, 0x47, 0xAE}},
	{0x01C1, []byte{0x00, 0x00, 0x01, 0x2C}},
	{0x01E1, []byte{0x00, 0x00, 0x01, 0x2C}},
	{0x0201, []byte{0x00, 0x0C, 0xCC, 0xCD}},
	{0x00E3, []byte{0x00, 0xA1, 0x24, 0x78}},
	{0x0103, []byte{0x00, 0x0C, 0xCC, 0xCD}},
	{0x0123, []byte{0x00, 0x00, 0x03, 0xE8}},
	{0x0143, []byte{0x00, 0x00, 0x03, 0xE8}},
	{0x0163, []byte{0x00, 0x28, 0x7A, 0x27}},
	{0x0183, []byte{0x00, 0x80, 0x00, 0x00}},
	{0x01A3, []byte{0x00, 0x01, 0x47, 0xAE}},
	{0x01C3, []byte{0x00, 0x00, 0x01, 0x2C}},
	{0x01E3, []byte{0x00, 0x00, 0x01, 0x2C}},
	{0x0203, []byte{0x00, 0x0C, 0xCC, 0xCD}},
}

// Audio drives the badge audio codec. Poll returns the three level meters
// DBREG0, DBREG1 and DBREG2 as X, Y and Z.
type Audio struct {
	mu    sync.Mutex
	bus   drivers.I2C
	addr  uint16
	sleep func(time.Duration)
}

var _ Device = (*Audio)(nil)

// NewAudio returns a codec at AudioAddress.
func NewAudio() *Audio {
	return &Audio{addr: AudioAddress, sleep: time.Sleep}
}

// Start clocks the core, loads the DSP program and parameters, enables the
// microphone path and finally unmutes the headphones.
func (a *Audio) Start(bus drivers.I2C) error {
	if bus == nil {
		return fmt.Errorf("audio: nil bus")
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	set := func(reg uint16, val byte) error {
		return a.write(bus, reg, val)
	}
	if err := set(regClkCtrl, clkCtrlXtal); err != nil {
		return err
	}
	if err := set(regClkOutSel, clkOutOff); err != nil {
		return err
	}
	for _, w := range dspProgram {
		if err := a.write(bus, w.addr, w.data...); err != nil {
			return err
		}
	}
	for _, w := range dspParams {
		if err := a.write(bus, w.addr, w.data...); err != nil {
			return err
		}
	}
	for _, w := range []struct {
		reg uint16
		val byte
	}{
		{regDSPBypassPath, dspBypassADCToDAC},
		{regPGAAIN0Ctrl, pgaMicBypass},
		{regPGAAIN1Ctrl, pgaMicBypass},
		{regSDataMode1, sdataMode1Tristate},
		{regSDataTDM, sdataTDMDisabled},
		{regADCCtrl1_01, adcCtrl1_01HPF8Hz},
		{regDecimPwrMode, decimPwrADC01},
		{regADCCtrl01, adcCtrl01Unmuted},
		{regCoreCtrl, coreCtrlStart192k},
		{regDACCtrl01, dacCtrl01Enabled},
		{regHdphnMode, hdphnModeGround},
	} {
		if err := set(w.reg, w.val); err != nil {
			return err
		}
	}
	a.sleep(HeadphoneSettle)
	if err := set(regHdphnMute, hdphnUnmuteP); err != nil {
		return err
	}
	a.bus = bus
	return nil
}

// Stop mutes the headphones and detaches the codec from the bus.
func (a *Audio) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.bus == nil {
		return ErrNotStarted
	}
	if err := a.write(a.bus, regHdphnMute, hdphnMuteAll); err != nil {
		return err
	}
	a.bus = nil
	return nil
}

// Poll reads the three level meters, one register per transaction.
func (a *Audio) Poll() (Reading, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.bus == nil {
		return Reading{}, ErrNotStarted
	}
	var levels [3]int16
	for i, reg := range []uint16{regDBReg0, regDBReg1, regDBReg2} {
		var rx [1]byte
		if err := a.bus.Tx(a.addr, []byte{byte(reg >> 8), byte(reg)}, rx[:]); err != nil {
			return Reading{}, fmt.Errorf("audio: read register %#04x: %w", reg, err)
		}
		levels[i] = int16(rx[0])
	}
	return Reading{X: levels[0], Y: levels[1], Z: levels[2]}, nil
}

func (a *Audio) write(bus drivers.I2C, reg uint16, data ...byte) error {
	tx := make([]byte, 0, 2+len(data))
	tx = append(tx, byte(reg>>8), byte(reg))
	tx = append(tx, data...)
	if err := bus.Tx(a.addr, tx, nil); err != nil {
		return fmt.Errorf("audio: write register %#04x: %w", reg, err)
	}
	return nil
}
