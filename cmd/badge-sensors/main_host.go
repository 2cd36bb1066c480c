//go:build !tinygo

package main

import (
	"fmt"
	"os"
)

var exitFunc = os.Exit

func main() {
	fmt.Fprintln(os.Stderr, "badge-sensors drives the badge I2C bus and must be built with TinyGo")
	exitFunc(2)
}
