// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ism330dhcx

import "periph.io/x/conn/v3/i2c"

// CTRL1_XL layout.
const (
	odrXLOffset = 4
	odrXLMask   = 0b1111
	fsXLOffset  = 2
	fsXLMask    = 0b11
	lpf2XLEn    = 1
)

// Ctrl1XL mirrors CTRL1_XL: accelerometer data rate, full scale and output
// filter path.
type Ctrl1XL struct {
	register
}

// ReadCtrl1XL reads CTRL1_XL from the device at addr.
func ReadCtrl1XL(b i2c.Bus, addr uint16) (*Ctrl1XL, error) {
	r, err := readRegister(b, addr, RegCtrl1XL)
	if err != nil {
		return nil, err
	}
	return &Ctrl1XL{r}, nil
}

// DataRate returns ODR_XL.
func (r *Ctrl1XL) DataRate() (DataRate, error) {
	code := r.field(odrXLOffset, odrXLMask)
	odr, ok := dataRateFromCode(code)
	if !ok {
		return 0, unknownCode("CTRL1_XL", "ODR_XL", code)
	}
	return odr, nil
}

// SetDataRate writes ODR_XL.
func (r *Ctrl1XL) SetDataRate(b i2c.Bus, odr DataRate) error {
	if _, ok := dataRateFromCode(byte(odr)); !ok {
		return unknownCode("CTRL1_XL", "ODR_XL", byte(odr))
	}
	return r.setField(b, odrXLOffset, odrXLMask, byte(odr))
}

// FullScale returns FS_XL. Every 2-bit pattern is a valid range.
func (r *Ctrl1XL) FullScale() AccelScale {
	return AccelScale(r.field(fsXLOffset, fsXLMask))
}

// SetFullScale writes FS_XL.
func (r *Ctrl1XL) SetFullScale(b i2c.Bus, fs AccelScale) error {
	if fs > AccelFS8G {
		return unknownCode("CTRL1_XL", "FS_XL", byte(fs))
	}
	return r.setField(b, fsXLOffset, fsXLMask, byte(fs))
}

// LPF2 reports whether the output comes from the second low-pass stage.
func (r *Ctrl1XL) LPF2() bool {
	return r.bit(lpf2XLEn)
}

// SetLPF2 selects the LPF2 output (true) or the first filtering stage.
func (r *Ctrl1XL) SetLPF2(b i2c.Bus, on bool) error {
	return r.setBit(b, lpf2XLEn, on)
}
