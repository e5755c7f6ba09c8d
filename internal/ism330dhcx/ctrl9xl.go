// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ism330dhcx

import "periph.io/x/conn/v3/i2c"

// CTRL9_XL bits.
const (
	denX       = 7
	denY       = 6
	denZ       = 5
	denXLG     = 4
	denXLEn    = 3
	denLH      = 2
	deviceConf = 1
)

// Ctrl9XL mirrors CTRL9_XL: DEN (data enable) stamping and DEVICE_CONF.
type Ctrl9XL struct {
	register
}

// ReadCtrl9XL reads CTRL9_XL from the device at addr.
func ReadCtrl9XL(b i2c.Bus, addr uint16) (*Ctrl9XL, error) {
	r, err := readRegister(b, addr, RegCtrl9XL)
	if err != nil {
		return nil, err
	}
	return &Ctrl9XL{r}, nil
}

// DenX reports whether DEN is stored in the X-axis LSB.
func (r *Ctrl9XL) DenX() bool { return r.bit(denX) }

// SetDenX writes DEN_X.
func (r *Ctrl9XL) SetDenX(b i2c.Bus, on bool) error { return r.setBit(b, denX, on) }

// DenY reports whether DEN is stored in the Y-axis LSB.
func (r *Ctrl9XL) DenY() bool { return r.bit(denY) }

// SetDenY writes DEN_Y.
func (r *Ctrl9XL) SetDenY(b i2c.Bus, on bool) error { return r.setBit(b, denY, on) }

// DenZ reports whether DEN is stored in the Z-axis LSB.
func (r *Ctrl9XL) DenZ() bool { return r.bit(denZ) }

// SetDenZ writes DEN_Z.
func (r *Ctrl9XL) SetDenZ(b i2c.Bus, on bool) error { return r.setBit(b, denZ, on) }

// DenAccelAxis reports whether DEN is stamped in the accelerometer axes
// instead of the gyroscope axes.
func (r *Ctrl9XL) DenAccelAxis() bool { return r.bit(denXLG) }

// SetDenAccelAxis writes DEN_XL_G.
func (r *Ctrl9XL) SetDenAccelAxis(b i2c.Bus, on bool) error { return r.setBit(b, denXLG, on) }

// DenAccel reports whether DEN is extended to the accelerometer.
func (r *Ctrl9XL) DenAccel() bool { return r.bit(denXLEn) }

// SetDenAccel writes DEN_XL_EN.
func (r *Ctrl9XL) SetDenAccel(b i2c.Bus, on bool) error { return r.setBit(b, denXLEn, on) }

// DenActiveHigh reports the DEN pin active level.
func (r *Ctrl9XL) DenActiveHigh() bool { return r.bit(denLH) }

// SetDenActiveHigh writes DEN_LH.
func (r *Ctrl9XL) SetDenActiveHigh(b i2c.Bus, on bool) error { return r.setBit(b, denLH, on) }

// DeviceConf reports DEVICE_CONF.
func (r *Ctrl9XL) DeviceConf() bool { return r.bit(deviceConf) }

// SetDeviceConf writes DEVICE_CONF. ST recommends setting it during setup.
func (r *Ctrl9XL) SetDeviceConf(b i2c.Bus, on bool) error { return r.setBit(b, deviceConf, on) }
