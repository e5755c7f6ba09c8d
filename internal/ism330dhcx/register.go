// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ism330dhcx

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

// Register sub-addresses.
const (
	RegFifoCtrl1   = 0x07
	RegFifoCtrl2   = 0x08
	RegFifoCtrl3   = 0x09
	RegFifoCtrl4   = 0x0A
	RegWhoAmI      = 0x0F
	RegCtrl1XL     = 0x10
	RegCtrl2G      = 0x11
	RegCtrl3C      = 0x12
	RegCtrl4C      = 0x13
	RegCtrl5C      = 0x14
	RegCtrl6C      = 0x15
	RegCtrl7G      = 0x16
	RegCtrl8XL     = 0x17
	RegCtrl9XL     = 0x18
	RegCtrl10C     = 0x19
	RegFifoStatus1 = 0x3A
	RegFifoStatus2 = 0x3B
	RegOutTempL    = 0x20
	RegOutXLG      = 0x22 // gyroscope X low byte, 6 bytes up to 0x27
	RegOutXLA      = 0x28 // accelerometer X low byte, 6 bytes up to 0x2D
	RegFifoDataOut = 0x78 // tag byte followed by 6 data bytes
)

// The construction burst spans every cached control register.
const (
	burstStart = RegFifoCtrl1
	burstLen   = RegCtrl10C - RegFifoCtrl1 + 1
)

var (
	// ErrUnknownCode is returned when a multi-bit field holds a pattern that
	// has no meaning for that field. It means something else wrote the
	// register or the mirror is corrupt.
	ErrUnknownCode = errors.New("ism330dhcx: unknown field code")
	// ErrUnknownTag is returned when a FIFO word carries a tag above 0x19.
	ErrUnknownTag = errors.New("ism330dhcx: unknown FIFO tag")
	// ErrWrongDevice is returned by New when WHO_AM_I does not match.
	ErrWrongDevice = errors.New("ism330dhcx: unexpected WHO_AM_I")
)

// readRegs fills out starting at sub. The device auto-increments the
// sub-address while IF_INC is set, which is the reset default.
func readRegs(b i2c.Bus, addr uint16, sub byte, out []byte) error {
	return b.Tx(addr, []byte{sub}, out)
}

// writeReg commits one register byte. The device has no multi-register write.
func writeReg(b i2c.Bus, addr uint16, sub, v byte) error {
	return b.Tx(addr, []byte{sub, v}, nil)
}

// register is the in-memory mirror of one single-byte control register.
type register struct {
	addr  uint16
	sub   byte
	value byte
	// selfClear marks bits the device clears on its own. Setters never
	// write them back and the mirror never keeps them after a write.
	selfClear byte
}

// Value returns the mirrored register byte.
func (r *register) Value() byte {
	return r.value
}

// SubAddress returns the register sub-address.
func (r *register) SubAddress() byte {
	return r.sub
}

func (r *register) setAddr(addr uint16) {
	r.addr = addr
}

// Read refreshes the mirror from the device.
func (r *register) Read(b i2c.Bus) error {
	var buf [1]byte
	if err := readRegs(b, r.addr, r.sub, buf[:]); err != nil {
		return err
	}
	r.value = buf[0]
	return nil
}

func (r *register) bit(n uint) bool {
	return r.value&(1<<n) != 0
}

func (r *register) field(offset uint, mask byte) byte {
	return (r.value >> offset) & mask
}

// update replaces the bits selected by mask and writes the full byte. The
// mirror is left untouched when the write fails.
func (r *register) update(b i2c.Bus, mask, bits byte) error {
	v := r.value&^(mask|r.selfClear) | bits&mask
	if err := writeReg(b, r.addr, r.sub, v); err != nil {
		return err
	}
	r.value = v &^ r.selfClear
	return nil
}

func (r *register) setBit(b i2c.Bus, n uint, on bool) error {
	var bits byte
	if on {
		bits = 1 << n
	}
	return r.update(b, 1<<n, bits)
}

func (r *register) setField(b i2c.Bus, offset uint, mask, code byte) error {
	return r.update(b, mask<<offset, code<<offset)
}

func (r *register) String() string {
	return fmt.Sprintf("%#02x=%#08b", r.sub, r.value)
}

func readRegister(b i2c.Bus, addr uint16, sub byte) (register, error) {
	r := register{addr: addr, sub: sub}
	if err := r.Read(b); err != nil {
		return register{}, err
	}
	return r, nil
}

func unknownCode(reg, field string, code byte) error {
	return fmt.Errorf("%w: %s %s=%#x", ErrUnknownCode, reg, field, code)
}
