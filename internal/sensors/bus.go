// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// OpenBus opens the I²C bus the IMUs hang off. An empty name opens the first
// bus periph finds. With simulate set no hardware is touched and a SimBus
// with a device at each of addrs is returned instead.
func OpenBus(name string, simulate bool, addrs ...uint16) (i2c.BusCloser, error) {
	if simulate {
		return NewSimBus(addrs...), nil
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("I2C open %q: %w", name, err)
	}
	return bus, nil
}
