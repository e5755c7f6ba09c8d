// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ism330dhcx

import "periph.io/x/conn/v3/i2c"

// CTRL2_G layout.
const (
	odrGOffset = 4
	odrGMask   = 0b1111
	fsGOffset  = 2
	fsGMask    = 0b11
	fs125      = 1
	fs4000     = 0
)

// Ctrl2G mirrors CTRL2_G: gyroscope data rate and full scale.
//
// The full scale is spread over three fields. FS_4000 wins over FS_125, which
// wins over the 2-bit FS_G.
type Ctrl2G struct {
	register
}

// ReadCtrl2G reads CTRL2_G from the device at addr.
func ReadCtrl2G(b i2c.Bus, addr uint16) (*Ctrl2G, error) {
	r, err := readRegister(b, addr, RegCtrl2G)
	if err != nil {
		return nil, err
	}
	return &Ctrl2G{r}, nil
}

// DataRate returns ODR_G.
func (r *Ctrl2G) DataRate() (DataRate, error) {
	code := r.field(odrGOffset, odrGMask)
	odr, ok := dataRateFromCode(code)
	if !ok {
		return 0, unknownCode("CTRL2_G", "ODR_G", code)
	}
	return odr, nil
}

// SetDataRate writes ODR_G.
func (r *Ctrl2G) SetDataRate(b i2c.Bus, odr DataRate) error {
	if _, ok := dataRateFromCode(byte(odr)); !ok {
		return unknownCode("CTRL2_G", "ODR_G", byte(odr))
	}
	return r.setField(b, odrGOffset, odrGMask, byte(odr))
}

// FullScale decodes the selected range.
func (r *Ctrl2G) FullScale() GyroScale {
	if r.bit(fs4000) {
		return GyroFS4000DPS
	}
	if r.bit(fs125) {
		return GyroFS125DPS
	}
	switch r.field(fsGOffset, fsGMask) {
	case 0b00:
		return GyroFS250DPS
	case 0b01:
		return GyroFS500DPS
	case 0b10:
		return GyroFS1000DPS
	default:
		return GyroFS2000DPS
	}
}

// SetFullScale writes the range in a single transaction.
//
// ±125 and ±4000 set their own bit, clear the other one and keep FS_G as it
// is. The four FS_G ranges clear both override bits.
func (r *Ctrl2G) SetFullScale(b i2c.Bus, fs GyroScale) error {
	const overrides = 1<<fs125 | 1<<fs4000
	switch fs {
	case GyroFS4000DPS:
		return r.update(b, overrides, 1<<fs4000)
	case GyroFS125DPS:
		return r.update(b, overrides, 1<<fs125)
	}
	var code byte
	switch fs {
	case GyroFS250DPS:
		code = 0b00
	case GyroFS500DPS:
		code = 0b01
	case GyroFS1000DPS:
		code = 0b10
	case GyroFS2000DPS:
		code = 0b11
	default:
		return unknownCode("CTRL2_G", "FS", byte(fs))
	}
	return r.update(b, overrides|fsGMask<<fsGOffset, code<<fsGOffset)
}
