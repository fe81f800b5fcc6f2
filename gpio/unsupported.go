//go:build !linux
// +build !linux

package gpio

import "github.com/pkg/errors"

// DefaultChip is the character device carrying the header GPIOs.
const DefaultChip = "gpiochip0"

var errLinuxOnly = errors.New("backend is only available on linux")

func newRpio() (driver, error) {
	return nil, errLinuxOnly
}

func newCdev(string) (driver, error) {
	return nil, errLinuxOnly
}
