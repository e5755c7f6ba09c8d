// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ism330dhcx

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"
)

var errTx = errors.New("nack")

// failBus rejects every transaction.
type failBus struct{}

func (failBus) String() string { return "fail" }

func (failBus) Tx(addr uint16, w, r []byte) error { return errTx }

func (failBus) SetSpeed(physic.Frequency) error { return nil }

var seeds = []byte{0x00, 0xFF, 0xA5, 0x5A}

// checkField runs one setter against a recording bus and verifies the single
// full-byte write, the read-back and that no bit outside mask moved.
func checkField(t *testing.T, name string, r *register, mask byte, set func(i2c.Bus) error, check func() bool) {
	t.Helper()
	before := r.value
	rec := &i2ctest.Record{}
	if err := set(rec); err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	if len(rec.Ops) != 1 {
		t.Fatalf("%s: %d transactions, want 1", name, len(rec.Ops))
	}
	if op := rec.Ops[0]; op.Addr != r.addr || !bytes.Equal(op.W, []byte{r.sub, r.value}) {
		t.Errorf("%s: wrote %#v to %#x, want [% #x] to %#x", name, op.W, op.Addr, []byte{r.sub, r.value}, r.addr)
	}
	if (before^r.value)&^mask != 0 {
		t.Errorf("%s: bits outside %08b changed: %08b -> %08b", name, mask, before, r.value)
	}
	if !check() {
		t.Errorf("%s: read-back mismatch, value %08b", name, r.value)
	}
}

type bitCase struct {
	name string
	bit  uint
	get  func() bool
	set  func(i2c.Bus, bool) error
}

func checkBits(t *testing.T, r *register, cases []bitCase) {
	t.Helper()
	for _, seed := range seeds {
		r.value = seed &^ r.selfClear
		for _, c := range cases {
			for _, on := range []bool{true, false, true} {
				checkField(t, fmt.Sprintf("%s=%v from %08b", c.name, on, seed), r, 1<<c.bit,
					func(b i2c.Bus) error { return c.set(b, on) },
					func() bool { return c.get() == on })
			}
		}
	}
}

func TestCtrl1XL(t *testing.T) {
	c := &Ctrl1XL{register{addr: DefaultAddr, sub: RegCtrl1XL}}
	for _, seed := range seeds {
		c.value = seed &^ 0xF0 // ODR 0b1011..0b1111 are not valid starting points
		for odr := ODROff; odr <= ODR6664Hz; odr++ {
			checkField(t, "ODR_XL "+odr.String(), &c.register, 0xF0,
				func(b i2c.Bus) error { return c.SetDataRate(b, odr) },
				func() bool { got, err := c.DataRate(); return err == nil && got == odr })
		}
		for _, fs := range []AccelScale{AccelFS2G, AccelFS4G, AccelFS8G, AccelFS16G} {
			checkField(t, "FS_XL "+fs.String(), &c.register, 0b1100,
				func(b i2c.Bus) error { return c.SetFullScale(b, fs) },
				func() bool { return c.FullScale() == fs })
		}
	}
	checkBits(t, &c.register, []bitCase{{"LPF2_XL_EN", 1, c.LPF2, c.SetLPF2}})
}

func TestAccelScaleEncoding(t *testing.T) {
	// FS_XL codes are not in range order.
	want := map[byte]AccelScale{0b00: AccelFS2G, 0b01: AccelFS16G, 0b10: AccelFS4G, 0b11: AccelFS8G}
	for code, fs := range want {
		c := &Ctrl1XL{register{value: code << 2}}
		if got := c.FullScale(); got != fs {
			t.Errorf("FS_XL=%02b decoded as %v, want %v", code, got, fs)
		}
	}

	c := &Ctrl1XL{register{addr: DefaultAddr, sub: RegCtrl1XL, value: 0x40}}
	rec := &i2ctest.Record{}
	if err := c.SetFullScale(rec, AccelScale(5)); !errors.Is(err, ErrUnknownCode) {
		t.Errorf("SetFullScale(5): err = %v", err)
	}
	if len(rec.Ops) != 0 || c.Value() != 0x40 {
		t.Errorf("invalid range written: ops %v, cache %#02x", rec.Ops, c.Value())
	}
}

func TestCtrl2G(t *testing.T) {
	c := &Ctrl2G{register{addr: DefaultAddr, sub: RegCtrl2G}}
	for _, seed := range seeds {
		c.value = seed &^ 0xF0
		for odr := ODROff; odr <= ODR6664Hz; odr++ {
			checkField(t, "ODR_G "+odr.String(), &c.register, 0xF0,
				func(b i2c.Bus) error { return c.SetDataRate(b, odr) },
				func() bool { got, err := c.DataRate(); return err == nil && got == odr })
		}
		for fs := GyroFS125DPS; fs <= GyroFS4000DPS; fs++ {
			checkField(t, "FS_G "+fs.String(), &c.register, 0b1111,
				func(b i2c.Bus) error { return c.SetFullScale(b, fs) },
				func() bool { return c.FullScale() == fs })
		}
	}
}

func TestGyroScalePrecedence(t *testing.T) {
	rec := &i2ctest.Record{}
	// FS_G holds ±500 dps.
	c := &Ctrl2G{register{addr: DefaultAddr, sub: RegCtrl2G, value: 0b0100}}
	if err := c.SetFullScale(rec, GyroFS4000DPS); err != nil {
		t.Fatal(err)
	}
	if got := c.FullScale(); got != GyroFS4000DPS {
		t.Errorf("got %v, want ±4000dps", got)
	}
	if c.value != 0b0101 {
		t.Errorf("value = %04b, want 0101", c.value)
	}
	if err := c.SetFullScale(rec, GyroFS500DPS); err != nil {
		t.Fatal(err)
	}
	if c.value != 0b0100 || c.FullScale() != GyroFS500DPS {
		t.Errorf("value = %04b (%v), want 0100 (±500dps)", c.value, c.FullScale())
	}

	// Both overrides set: FS_4000 wins.
	c.value = 0b0111
	if got := c.FullScale(); got != GyroFS4000DPS {
		t.Errorf("both overrides: got %v, want ±4000dps", got)
	}
	c.value = 0b0110
	if got := c.FullScale(); got != GyroFS125DPS {
		t.Errorf("FS_125: got %v, want ±125dps", got)
	}
	// Selecting ±125 clears FS_4000 and keeps FS_G.
	c.value = 0b1001
	if err := c.SetFullScale(rec, GyroFS125DPS); err != nil {
		t.Fatal(err)
	}
	if c.value != 0b1010 {
		t.Errorf("value = %04b, want 1010", c.value)
	}
}

func TestCtrl3C(t *testing.T) {
	c := &Ctrl3C{register{addr: AltAddr, sub: RegCtrl3C, selfClear: ctrl3CSelfClear}}
	checkBits(t, &c.register, []bitCase{
		{"BDU", 6, c.BlockDataUpdate, c.SetBlockDataUpdate},
		{"H_LACTIVE", 5, c.InterruptActiveLow, c.SetInterruptActiveLow},
		{"PP_OD", 4, c.OpenDrain, c.SetOpenDrain},
		{"SIM", 3, c.SPI3Wire, c.SetSPI3Wire},
		{"IF_INC", 2, c.AutoIncrement, c.SetAutoIncrement},
	})
}

func TestCtrl3CSelfClearingBits(t *testing.T) {
	tests := []struct {
		name string
		bit  uint
		get  func(*Ctrl3C) bool
		set  func(*Ctrl3C, i2c.Bus, bool) error
	}{
		{"SW_RESET", 0, (*Ctrl3C).SoftwareReset, (*Ctrl3C).SetSoftwareReset},
		{"BOOT", 7, (*Ctrl3C).Boot, (*Ctrl3C).SetBoot},
	}
	for _, tc := range tests {
		// A mirror read while the device was still busy.
		c := &Ctrl3C{register{addr: DefaultAddr, sub: RegCtrl3C, value: 0x04 | 1<<tc.bit, selfClear: ctrl3CSelfClear}}
		rec := &i2ctest.Record{}
		if err := c.SetBlockDataUpdate(rec, true); err != nil {
			t.Fatal(err)
		}
		if err := tc.set(c, rec, true); err != nil {
			t.Fatal(err)
		}
		if err := c.SetBlockDataUpdate(rec, false); err != nil {
			t.Fatal(err)
		}
		want := [][]byte{
			{RegCtrl3C, 0x44},
			{RegCtrl3C, 0x44 | 1<<tc.bit},
			{RegCtrl3C, 0x04},
		}
		if len(rec.Ops) != len(want) {
			t.Fatalf("%s: %d transactions, want %d", tc.name, len(rec.Ops), len(want))
		}
		for i, w := range want {
			if !bytes.Equal(rec.Ops[i].W, w) {
				t.Errorf("%s: write %d = [% #x], want [% #x]", tc.name, i, rec.Ops[i].W, w)
			}
		}
		if tc.get(c) || c.Value() != 0x04 {
			t.Errorf("%s: mirror %08b keeps a self-clearing bit", tc.name, c.Value())
		}
	}
}

func TestCtrl7G(t *testing.T) {
	c := &Ctrl7G{register{addr: DefaultAddr, sub: RegCtrl7G}}
	checkBits(t, &c.register, []bitCase{
		{"G_HM_MODE", 7, c.HighPerformanceDisabled, c.SetHighPerformanceDisabled},
		{"HP_EN_G", 6, c.HighPass, c.SetHighPass},
		{"USR_OFF_ON_OUT", 1, c.UserOffset, c.SetUserOffset},
	})
	for _, seed := range seeds {
		c.value = seed
		for hp := HPCutoff16mHz; hp <= HPCutoff1_04Hz; hp++ {
			checkField(t, "HPM_G "+hp.String(), &c.register, 0b0011_0000,
				func(b i2c.Bus) error { return c.SetHighPassCutoff(b, hp) },
				func() bool { return c.HighPassCutoff() == hp })
		}
	}
}

func TestCtrl9XL(t *testing.T) {
	c := &Ctrl9XL{register{addr: DefaultAddr, sub: RegCtrl9XL}}
	checkBits(t, &c.register, []bitCase{
		{"DEN_X", 7, c.DenX, c.SetDenX},
		{"DEN_Y", 6, c.DenY, c.SetDenY},
		{"DEN_Z", 5, c.DenZ, c.SetDenZ},
		{"DEN_XL_G", 4, c.DenAccelAxis, c.SetDenAccelAxis},
		{"DEN_XL_EN", 3, c.DenAccel, c.SetDenAccel},
		{"DEN_LH", 2, c.DenActiveHigh, c.SetDenActiveHigh},
		{"DEVICE_CONF", 1, c.DeviceConf, c.SetDeviceConf},
	})
}

func TestCtrl10C(t *testing.T) {
	c := &Ctrl10C{register{addr: DefaultAddr, sub: RegCtrl10C}}
	checkBits(t, &c.register, []bitCase{{"TIMESTAMP_EN", 5, c.Timestamp, c.SetTimestamp}})
}

func TestDecodeDefect(t *testing.T) {
	c1 := &Ctrl1XL{register{value: 0b1011_0000}}
	if _, err := c1.DataRate(); !errors.Is(err, ErrUnknownCode) {
		t.Errorf("ODR_XL=1011: err = %v, want ErrUnknownCode", err)
	}
	c2 := &Ctrl2G{register{value: 0b1111_0000}}
	if _, err := c2.DataRate(); !errors.Is(err, ErrUnknownCode) {
		t.Errorf("ODR_G=1111: err = %v, want ErrUnknownCode", err)
	}
	rec := &i2ctest.Record{}
	if err := c1.SetDataRate(rec, DataRate(12)); !errors.Is(err, ErrUnknownCode) {
		t.Errorf("SetDataRate(12): err = %v, want ErrUnknownCode", err)
	}
	if err := c2.SetFullScale(rec, GyroScale(9)); !errors.Is(err, ErrUnknownCode) {
		t.Errorf("SetFullScale(9): err = %v, want ErrUnknownCode", err)
	}
	if len(rec.Ops) != 0 {
		t.Errorf("invalid values reached the bus: %v", rec.Ops)
	}
}

func TestWriteFailureKeepsCache(t *testing.T) {
	c := &Ctrl1XL{register{addr: DefaultAddr, sub: RegCtrl1XL, value: 0x40}}
	if err := c.SetFullScale(failBus{}, AccelFS8G); !errors.Is(err, errTx) {
		t.Fatalf("err = %v, want %v", err, errTx)
	}
	if c.value != 0x40 {
		t.Errorf("cache = %#x after failed write, want 0x40", c.value)
	}
	g := &Ctrl3C{register{addr: DefaultAddr, sub: RegCtrl3C, value: 0x04}}
	if err := g.SetBlockDataUpdate(failBus{}, true); !errors.Is(err, errTx) {
		t.Fatalf("err = %v, want %v", err, errTx)
	}
	if g.BlockDataUpdate() {
		t.Error("BDU cached after failed write")
	}
}

func TestReadRegisterTypes(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x6A, W: []byte{RegCtrl1XL}, R: []byte{0b0101_1000}},
			{Addr: 0x6A, W: []byte{RegCtrl7G}, R: []byte{0b0110_0000}},
		},
		DontPanic: true,
	}
	c1, err := ReadCtrl1XL(bus, 0x6A)
	if err != nil {
		t.Fatal(err)
	}
	if odr, _ := c1.DataRate(); odr != ODR208Hz || c1.FullScale() != AccelFS4G {
		t.Errorf("CTRL1_XL = %v %v, want 208Hz ±4g", odr, c1.FullScale())
	}
	c7, err := ReadCtrl7G(bus, 0x6A)
	if err != nil {
		t.Fatal(err)
	}
	if !c7.HighPass() || c7.HighPassCutoff() != HPCutoff260mHz {
		t.Errorf("CTRL7_G = %v %v, want high-pass at 260mHz", c7.HighPass(), c7.HighPassCutoff())
	}
	if err := bus.Close(); err != nil {
		t.Error(err)
	}
}
