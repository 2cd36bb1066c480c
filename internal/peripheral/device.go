// Package peripheral drives the badge sensors that sit on the shared I2C bus.
package peripheral

import (
	"errors"

	"tinygo.org/x/drivers"
)

// Reading is one three-axis sample in raw sensor counts.
type Reading struct {
	X, Y, Z int16
}

// Device is a sensor attached to an I2C bus.
type Device interface {
	Start(bus drivers.I2C) error
	Stop() error
	Poll() (Reading, error)
}

// ErrNotStarted is returned when a device is used before Start.
var ErrNotStarted = errors.New("peripheral: device not started")
