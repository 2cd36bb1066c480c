//go:build tinygo

// Command badge-sensors streams compass and microphone levels to the serial
// console of a badge.
package main

import (
	"context"
	"machine"
	"os"
	"time"

	"orchard/internal/peripheral"
)

const (
	busHz        = 400_000
	pollInterval = 100 * time.Millisecond
)

func main() {
	bus := machine.I2C0
	if err := bus.Configure(machine.I2CConfig{Frequency: busHz}); err != nil {
		println("i2c:", err.Error())
		return
	}

	compass := peripheral.NewCompass()
	audio := peripheral.NewAudio()
	for _, dev := range []peripheral.Device{compass, audio} {
		if err := dev.Start(bus); err != nil {
			println(err.Error())
			return
		}
	}
	defer compass.Stop()
	defer audio.Stop()

	err := peripheral.Monitor(context.Background(), os.Stdout, pollInterval,
		peripheral.Channel{Device: compass, Format: peripheral.CompassLineFormat},
		peripheral.Channel{Device: audio, Format: peripheral.AudioLineFormat},
	)
	if err != nil {
		println(err.Error())
	}
}
