package peripheral

import (
	"fmt"
	"sync"

	"tinygo.org/x/drivers"
)

// CompassAddress is the 7-bit bus address of the magnetometer.
const CompassAddress uint16 = 0x1E

const (
	regConfigA = 0x00
	regConfigB = 0x01
	regMode    = 0x02
	regXMSB    = 0x03
	regStatus  = 0x09

	configA8Avg15Hz = 0x70
	configBHighGain = 0xA0
	modeContinuous  = 0x00
	modeStandby     = 0x03
	statusReady     = 0x01
)

// Compass drives a three-axis magnetometer: 8-sample averaging at 15 Hz,
// high gain, continuous measurement.
type Compass struct {
	mu   sync.Mutex
	bus  drivers.I2C
	addr uint16
}

var _ Device = (*Compass)(nil)

// NewCompass returns a compass at CompassAddress.
func NewCompass() *Compass {
	return &Compass{addr: CompassAddress}
}

// Start configures the chip and enters continuous mode.
func (c *Compass) Start(bus drivers.I2C) error {
	if bus == nil {
		return fmt.Errorf("compass: nil bus")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, w := range [][2]byte{
		{regConfigA, configA8Avg15Hz},
		{regConfigB, configBHighGain},
		{regMode, modeContinuous},
	} {
		if err := bus.Tx(c.addr, w[:], nil); err != nil {
			return fmt.Errorf("compass: write register %#02x: %w", w[0], err)
		}
	}
	c.bus = bus
	return nil
}

// Stop puts the chip in standby and detaches it from the bus.
func (c *Compass) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bus == nil {
		return ErrNotStarted
	}
	if err := c.bus.Tx(c.addr, []byte{regMode, modeStandby}, nil); err != nil {
		return fmt.Errorf("compass: standby: %w", err)
	}
	c.bus = nil
	return nil
}

// Ready reports whether a new measurement is latched.
func (c *Compass) Ready() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bus == nil {
		return false, ErrNotStarted
	}
	var status [1]byte
	if err := c.bus.Tx(c.addr, []byte{regStatus}, status[:]); err != nil {
		return false, fmt.Errorf("compass: status: %w", err)
	}
	return status[0]&statusReady != 0, nil
}

// Poll reads the latest sample. The chip returns X, Z, Y as big-endian
// two's complement words.
func (c *Compass) Poll() (Reading, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bus == nil {
		return Reading{}, ErrNotStarted
	}
	var rx [6]byte
	if err := c.bus.Tx(c.addr, []byte{regXMSB}, rx[:]); err != nil {
		return Reading{}, fmt.Errorf("compass: read sample: %w", err)
	}
	word := func(hi, lo byte) int16 { return int16(uint16(hi)<<8 | uint16(lo)) }
	return Reading{
		X: word(rx[0], rx[1]),
		Z: word(rx[2], rx[3]),
		Y: word(rx[4], rx[5]),
	}, nil
}
