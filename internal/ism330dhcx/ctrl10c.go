// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ism330dhcx

import "periph.io/x/conn/v3/i2c"

const timestampEn = 5

// Ctrl10C mirrors CTRL10_C. The timestamp counter must be enabled for the
// FIFO to carry timestamp words (tag 0x04).
type Ctrl10C struct {
	register
}

// ReadCtrl10C reads CTRL10_C from the device at addr.
func ReadCtrl10C(b i2c.Bus, addr uint16) (*Ctrl10C, error) {
	r, err := readRegister(b, addr, RegCtrl10C)
	if err != nil {
		return nil, err
	}
	return &Ctrl10C{r}, nil
}

// Timestamp reports TIMESTAMP_EN.
func (r *Ctrl10C) Timestamp() bool { return r.bit(timestampEn) }

// SetTimestamp writes TIMESTAMP_EN.
func (r *Ctrl10C) SetTimestamp(b i2c.Bus, on bool) error { return r.setBit(b, timestampEn, on) }
