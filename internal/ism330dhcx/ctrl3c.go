// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ism330dhcx

import "periph.io/x/conn/v3/i2c"

// CTRL3_C bits.
const (
	boot     = 7
	bdu      = 6
	hLActive = 5
	ppOD     = 4
	sim      = 3
	ifInc    = 2
	swReset  = 0

	ctrl3CSelfClear = 1<<boot | 1<<swReset
)

// Ctrl3C mirrors CTRL3_C, the general control register.
//
// BOOT and SW_RESET clear themselves on the device. Their setters write the
// bit once and leave it cleared in the mirror, so later setters do not repeat
// the reset. Call Dev.Refresh once the reset is over.
type Ctrl3C struct {
	register
}

// ReadCtrl3C reads CTRL3_C from the device at addr.
func ReadCtrl3C(b i2c.Bus, addr uint16) (*Ctrl3C, error) {
	r, err := readRegister(b, addr, RegCtrl3C)
	if err != nil {
		return nil, err
	}
	r.selfClear = ctrl3CSelfClear
	return &Ctrl3C{r}, nil
}

// Boot reports the memory reboot bit as last read.
func (r *Ctrl3C) Boot() bool { return r.bit(boot) }

// SetBoot reboots the memory content. The accelerometer must be on.
func (r *Ctrl3C) SetBoot(b i2c.Bus, on bool) error { return r.setBit(b, boot, on) }

// BlockDataUpdate reports whether output registers are frozen until both
// bytes of a sample have been read.
func (r *Ctrl3C) BlockDataUpdate() bool { return r.bit(bdu) }

// SetBlockDataUpdate enables or disables block data update.
func (r *Ctrl3C) SetBlockDataUpdate(b i2c.Bus, on bool) error { return r.setBit(b, bdu, on) }

// InterruptActiveLow reports the interrupt pin polarity.
func (r *Ctrl3C) InterruptActiveLow() bool { return r.bit(hLActive) }

// SetInterruptActiveLow selects active-low (true) or active-high interrupts.
func (r *Ctrl3C) SetInterruptActiveLow(b i2c.Bus, on bool) error {
	return r.setBit(b, hLActive, on)
}

// OpenDrain reports whether INT1/INT2 are open-drain.
func (r *Ctrl3C) OpenDrain() bool { return r.bit(ppOD) }

// SetOpenDrain selects open-drain (true) or push-pull interrupt pins.
func (r *Ctrl3C) SetOpenDrain(b i2c.Bus, on bool) error { return r.setBit(b, ppOD, on) }

// SPI3Wire reports whether the SPI interface is in 3-wire mode.
func (r *Ctrl3C) SPI3Wire() bool { return r.bit(sim) }

// SetSPI3Wire selects 3-wire (true) or 4-wire SPI.
func (r *Ctrl3C) SetSPI3Wire(b i2c.Bus, on bool) error { return r.setBit(b, sim, on) }

// AutoIncrement reports whether multi-byte reads advance the sub-address.
func (r *Ctrl3C) AutoIncrement() bool { return r.bit(ifInc) }

// SetAutoIncrement enables or disables sub-address auto-increment. Every
// burst read in this package relies on it being on.
func (r *Ctrl3C) SetAutoIncrement(b i2c.Bus, on bool) error { return r.setBit(b, ifInc, on) }

// SoftwareReset reports the software reset bit as last read.
func (r *Ctrl3C) SoftwareReset() bool { return r.bit(swReset) }

// SetSoftwareReset resets the device when on is true.
func (r *Ctrl3C) SetSoftwareReset(b i2c.Bus, on bool) error { return r.setBit(b, swReset, on) }
