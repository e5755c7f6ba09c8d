// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ism330dhcx

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// CTRL7_G layout.
const (
	gHMMode     = 7
	hpEnG       = 6
	hpmGOffset  = 4
	hpmGMask    = 0b11
	usrOffOnOut = 1
)

// HPCutoff is the gyroscope high-pass filter cutoff (HPM_G).
type HPCutoff uint8

// Gyroscope high-pass cutoffs.
const (
	HPCutoff16mHz HPCutoff = iota
	HPCutoff65mHz
	HPCutoff260mHz
	HPCutoff1_04Hz
)

// Frequency returns the cutoff frequency.
func (c HPCutoff) Frequency() physic.Frequency {
	switch c {
	case HPCutoff16mHz:
		return 16 * physic.MilliHertz
	case HPCutoff65mHz:
		return 65 * physic.MilliHertz
	case HPCutoff260mHz:
		return 260 * physic.MilliHertz
	case HPCutoff1_04Hz:
		return 1040 * physic.MilliHertz
	}
	return 0
}

func (c HPCutoff) String() string {
	if c > HPCutoff1_04Hz {
		return fmt.Sprintf("HPCutoff(%d)", uint8(c))
	}
	return c.Frequency().String()
}

// ParseHPCutoff maps a cutoff in mHz (16, 65, 260, 1040) to its selection.
func ParseHPCutoff(mHz int) (HPCutoff, error) {
	for c := HPCutoff16mHz; c <= HPCutoff1_04Hz; c++ {
		if c.Frequency() == physic.Frequency(mHz)*physic.MilliHertz {
			return c, nil
		}
	}
	return 0, fmt.Errorf("ism330dhcx: unsupported high-pass cutoff %dmHz", mHz)
}

// Ctrl7G mirrors CTRL7_G: gyroscope power mode and high-pass filter.
type Ctrl7G struct {
	register
}

// ReadCtrl7G reads CTRL7_G from the device at addr.
func ReadCtrl7G(b i2c.Bus, addr uint16) (*Ctrl7G, error) {
	r, err := readRegister(b, addr, RegCtrl7G)
	if err != nil {
		return nil, err
	}
	return &Ctrl7G{r}, nil
}

// HighPerformanceDisabled reports G_HM_MODE.
func (r *Ctrl7G) HighPerformanceDisabled() bool { return r.bit(gHMMode) }

// SetHighPerformanceDisabled writes G_HM_MODE.
func (r *Ctrl7G) SetHighPerformanceDisabled(b i2c.Bus, on bool) error {
	return r.setBit(b, gHMMode, on)
}

// HighPass reports whether the gyroscope high-pass filter is enabled. It only
// acts in high-performance mode.
func (r *Ctrl7G) HighPass() bool { return r.bit(hpEnG) }

// SetHighPass enables or disables the gyroscope high-pass filter.
func (r *Ctrl7G) SetHighPass(b i2c.Bus, on bool) error { return r.setBit(b, hpEnG, on) }

// HighPassCutoff returns HPM_G.
func (r *Ctrl7G) HighPassCutoff() HPCutoff {
	return HPCutoff(r.field(hpmGOffset, hpmGMask))
}

// SetHighPassCutoff writes HPM_G.
func (r *Ctrl7G) SetHighPassCutoff(b i2c.Bus, c HPCutoff) error {
	if c > HPCutoff1_04Hz {
		return unknownCode("CTRL7_G", "HPM_G", byte(c))
	}
	return r.setField(b, hpmGOffset, hpmGMask, byte(c))
}

// UserOffset reports whether the accelerometer user offset block is applied.
func (r *Ctrl7G) UserOffset() bool { return r.bit(usrOffOnOut) }

// SetUserOffset enables or bypasses the accelerometer user offset block.
func (r *Ctrl7G) SetUserOffset(b i2c.Bus, on bool) error { return r.setBit(b, usrOffOnOut, on) }
