// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ism330dhcx

import (
	"encoding/binary"
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

// I²C addresses selected by the SDO/SA0 pin, and the fixed WHO_AM_I value.
const (
	DefaultAddr uint16 = 0x6B
	AltAddr     uint16 = 0x6A
	WhoAmIValue byte   = 0x6B
)

// Units carries the factors applied when converting to SI units.
type Units struct {
	DPSToRad        float64
	StandardGravity float64
}

// DefaultUnits uses 0.017453293 rad per degree and 9.80665 m/s² per g.
var DefaultUnits = Units{DPSToRad: DPSToRad, StandardGravity: StandardGravity}

// Opts holds the construction options.
type Opts struct {
	Addr  uint16
	Units Units
	// VerifyID reads WHO_AM_I before the burst and fails with ErrWrongDevice
	// on a mismatch.
	VerifyID bool
	// RefreshScale re-reads CTRL1_XL or CTRL2_G before every polled
	// conversion. Without it the cached full scale is trusted, which gives
	// wrong units if something else changed the range.
	RefreshScale bool
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	Addr:  DefaultAddr,
	Units: DefaultUnits,
}

// Dev is a handle to one ISM330DHCX. It does not own the bus: every call
// takes it, so two devices can share one. Dev is not safe for concurrent use.
type Dev struct {
	addr         uint16
	units        Units
	refreshScale bool

	FifoCtrl *FifoCtrl
	Ctrl1XL  *Ctrl1XL
	Ctrl2G   *Ctrl2G
	Ctrl3C   *Ctrl3C
	Ctrl7G   *Ctrl7G
	Ctrl9XL  *Ctrl9XL
	Ctrl10C  *Ctrl10C
}

// New returns a handle to the device at opts.Addr, with every control
// register cached from a single burst read.
func New(b i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	d := &Dev{
		addr:         opts.Addr,
		units:        opts.Units,
		refreshScale: opts.RefreshScale,
		FifoCtrl:     &FifoCtrl{},
		Ctrl1XL:      &Ctrl1XL{register{sub: RegCtrl1XL}},
		Ctrl2G:       &Ctrl2G{register{sub: RegCtrl2G}},
		Ctrl3C:       &Ctrl3C{register{sub: RegCtrl3C, selfClear: ctrl3CSelfClear}},
		Ctrl7G:       &Ctrl7G{register{sub: RegCtrl7G}},
		Ctrl9XL:      &Ctrl9XL{register{sub: RegCtrl9XL}},
		Ctrl10C:      &Ctrl10C{register{sub: RegCtrl10C}},
	}
	if d.addr == 0 {
		d.addr = DefaultAddr
	}
	if d.units == (Units{}) {
		d.units = DefaultUnits
	}
	d.SetAddress(d.addr)

	if opts.VerifyID {
		id, err := d.WhoAmI(b)
		if err != nil {
			return nil, err
		}
		if id != WhoAmIValue {
			return nil, fmt.Errorf("%w: got %#02x at %#02x, want %#02x", ErrWrongDevice, id, d.addr, WhoAmIValue)
		}
	}
	if err := d.Refresh(b); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("ISM330DHCX{%#02x}", d.addr)
}

// Addr returns the device address.
func (d *Dev) Addr() uint16 {
	return d.addr
}

// SetAddress retargets the handle and every cached register. The caches are
// not re-read.
func (d *Dev) SetAddress(addr uint16) {
	d.addr = addr
	d.FifoCtrl.setAddr(addr)
	for _, r := range d.registers() {
		r.setAddr(addr)
	}
}

// Refresh re-reads every cached control register in one burst.
func (d *Dev) Refresh(b i2c.Bus) error {
	var buf [burstLen]byte
	if err := readRegs(b, d.addr, burstStart, buf[:]); err != nil {
		return err
	}
	copy(d.FifoCtrl.value[:], buf[:len(d.FifoCtrl.value)])
	for _, r := range d.registers() {
		r.value = buf[r.sub-burstStart]
	}
	return nil
}

// WhoAmI reads the identification register.
func (d *Dev) WhoAmI(b i2c.Bus) (byte, error) {
	return d.ReadRegister(b, RegWhoAmI)
}

// Temperature returns the die temperature in °C.
func (d *Dev) Temperature(b i2c.Bus) (float64, error) {
	var buf [2]byte
	if err := readRegs(b, d.addr, RegOutTempL, buf[:]); err != nil {
		return 0, err
	}
	return Temperature(int16(binary.LittleEndian.Uint16(buf[:]))), nil
}

// ReadGyroscope reads the gyroscope output registers and stamps them with the
// current full scale.
func (d *Dev) ReadGyroscope(b i2c.Bus) (GyroSample, error) {
	if d.refreshScale {
		if err := d.Ctrl2G.Read(b); err != nil {
			return GyroSample{}, err
		}
	}
	var buf [6]byte
	if err := readRegs(b, d.addr, RegOutXLG, buf[:]); err != nil {
		return GyroSample{}, err
	}
	return GyroSample{Raw: DecodeRaw(buf[:]), Scale: d.Ctrl2G.FullScale()}, nil
}

// ReadAccelerometer reads the accelerometer output registers and stamps them
// with the current full scale.
func (d *Dev) ReadAccelerometer(b i2c.Bus) (AccelSample, error) {
	if d.refreshScale {
		if err := d.Ctrl1XL.Read(b); err != nil {
			return AccelSample{}, err
		}
	}
	var buf [6]byte
	if err := readRegs(b, d.addr, RegOutXLA, buf[:]); err != nil {
		return AccelSample{}, err
	}
	return AccelSample{Raw: DecodeRaw(buf[:]), Scale: d.Ctrl1XL.FullScale()}, nil
}

// Gyroscope returns the angular rate in rad/s.
func (d *Dev) Gyroscope(b i2c.Bus) (Vector, error) {
	s, err := d.ReadGyroscope(b)
	if err != nil {
		return Vector{}, err
	}
	return s.In(d.units.DPSToRad), nil
}

// Accelerometer returns the acceleration in m/s².
func (d *Dev) Accelerometer(b i2c.Bus) (Vector, error) {
	s, err := d.ReadAccelerometer(b)
	if err != nil {
		return Vector{}, err
	}
	return s.In(d.units.StandardGravity), nil
}

// Units returns the conversion factors in use.
func (d *Dev) Units() Units {
	return d.units
}

// FifoPop reads one FIFO word. Samples are stamped with the cached full
// scales.
func (d *Dev) FifoPop(b i2c.Bus) (FifoEntry, error) {
	return FifoPop(b, d.addr, d.Ctrl2G.FullScale(), d.Ctrl1XL.FullScale())
}

// FifoStatus reads FIFO_STATUS1 and FIFO_STATUS2.
func (d *Dev) FifoStatus(b i2c.Bus) (FifoStatus, error) {
	return ReadFifoStatus(b, d.addr)
}

// ReadRegister reads one register. Reading a cached register refreshes its
// cache.
func (d *Dev) ReadRegister(b i2c.Bus, sub byte) (byte, error) {
	var buf [1]byte
	if err := readRegs(b, d.addr, sub, buf[:]); err != nil {
		return 0, err
	}
	d.sync(sub, buf[0])
	return buf[0], nil
}

// ReadRegisters reads n consecutive registers starting at sub.
func (d *Dev) ReadRegisters(b i2c.Bus, sub byte, n int) ([]byte, error) {
	if n <= 0 || int(sub)+n > 0x100 {
		return nil, fmt.Errorf("ism330dhcx: cannot read %d registers from %#02x", n, sub)
	}
	buf := make([]byte, n)
	if err := readRegs(b, d.addr, sub, buf); err != nil {
		return nil, err
	}
	for i, v := range buf {
		d.sync(sub+byte(i), v)
	}
	return buf, nil
}

// WriteRegister writes one raw register byte. Writing a cached register
// updates its cache once the write succeeded. A write setting BOOT or
// SW_RESET re-reads every cache instead, since the device changes them.
func (d *Dev) WriteRegister(b i2c.Bus, sub, v byte) error {
	if err := writeReg(b, d.addr, sub, v); err != nil {
		return err
	}
	if sub == RegCtrl3C && v&ctrl3CSelfClear != 0 {
		return d.Refresh(b)
	}
	d.sync(sub, v)
	return nil
}

func (d *Dev) sync(sub, v byte) {
	if sub >= RegFifoCtrl1 && sub <= RegFifoCtrl4 {
		d.FifoCtrl.value[sub-RegFifoCtrl1] = v
		return
	}
	for _, r := range d.registers() {
		if r.sub == sub {
			r.value = v
			return
		}
	}
}

func (d *Dev) registers() []*register {
	return []*register{
		&d.Ctrl1XL.register,
		&d.Ctrl2G.register,
		&d.Ctrl3C.register,
		&d.Ctrl7G.register,
		&d.Ctrl9XL.register,
		&d.Ctrl10C.register,
	}
}
