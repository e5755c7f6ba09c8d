// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ism330dhcx

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

// FifoSize is the number of words an uncompressed FIFO holds.
const FifoSize = 512

// FIFO_CTRL1..4 layout, indexed from FIFO_CTRL1.
const (
	stopOnWTM        = 7 // FIFO_CTRL2
	fifoComprRTEn    = 6 // FIFO_CTRL2
	wtm8             = 0 // FIFO_CTRL2
	bdrGYOffset      = 4 // FIFO_CTRL3
	bdrXLOffset      = 0 // FIFO_CTRL3
	bdrMask          = 0b1111
	fifoModeMask     = 0b111 // FIFO_CTRL4
	maxFifoWatermark = 1<<9 - 1
)

// FifoMode is the FIFO_MODE selection in FIFO_CTRL4.
type FifoMode uint8

// FIFO modes.
const (
	FifoBypass             FifoMode = 0b000
	FifoStopWhenFull       FifoMode = 0b001
	FifoContinuousToFifo   FifoMode = 0b011
	FifoBypassToContinuous FifoMode = 0b100
	FifoContinuous         FifoMode = 0b110
	FifoBypassToFifo       FifoMode = 0b111
)

var fifoModeNames = map[FifoMode]string{
	FifoBypass:             "bypass",
	FifoStopWhenFull:       "fifo",
	FifoContinuousToFifo:   "continuous-to-fifo",
	FifoBypassToContinuous: "bypass-to-continuous",
	FifoContinuous:         "continuous",
	FifoBypassToFifo:       "bypass-to-fifo",
}

func (m FifoMode) String() string {
	if s, ok := fifoModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("FifoMode(%#03b)", uint8(m))
}

// ParseFifoMode maps the names returned by FifoMode.String back to modes.
func ParseFifoMode(s string) (FifoMode, error) {
	for m, name := range fifoModeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("ism330dhcx: unknown FIFO mode %q", s)
}

// FifoCtrl mirrors FIFO_CTRL1 to FIFO_CTRL4 as one group. Each setter still
// writes a single sub-register.
type FifoCtrl struct {
	addr  uint16
	value [4]byte
}

// ReadFifoCtrl reads the four FIFO control registers in one transaction.
func ReadFifoCtrl(b i2c.Bus, addr uint16) (*FifoCtrl, error) {
	f := &FifoCtrl{addr: addr}
	if err := f.Read(b); err != nil {
		return nil, err
	}
	return f, nil
}

// Read refreshes the mirror from the device.
func (f *FifoCtrl) Read(b i2c.Bus) error {
	var buf [4]byte
	if err := readRegs(b, f.addr, RegFifoCtrl1, buf[:]); err != nil {
		return err
	}
	f.value = buf
	return nil
}

// Value returns the mirrored FIFO_CTRL1..4 bytes.
func (f *FifoCtrl) Value() [4]byte {
	return f.value
}

func (f *FifoCtrl) setAddr(addr uint16) {
	f.addr = addr
}

func (f *FifoCtrl) update(b i2c.Bus, i int, mask, bits byte) error {
	v := f.value[i]&^mask | bits&mask
	if err := writeReg(b, f.addr, RegFifoCtrl1+byte(i), v); err != nil {
		return err
	}
	f.value[i] = v
	return nil
}

// Watermark returns the 9-bit FIFO watermark threshold.
func (f *FifoCtrl) Watermark() uint16 {
	return uint16(f.value[1]&(1<<wtm8))<<8 | uint16(f.value[0])
}

// SetWatermark writes the watermark threshold, FIFO_CTRL1 first.
func (f *FifoCtrl) SetWatermark(b i2c.Bus, n uint16) error {
	if n > maxFifoWatermark {
		return fmt.Errorf("ism330dhcx: FIFO watermark %d above %d", n, maxFifoWatermark)
	}
	if err := f.update(b, 0, 0xFF, byte(n)); err != nil {
		return err
	}
	return f.update(b, 1, 1<<wtm8, byte(n>>8)<<wtm8)
}

// StopOnWatermark reports whether the FIFO depth is limited to the watermark.
func (f *FifoCtrl) StopOnWatermark() bool {
	return f.value[1]&(1<<stopOnWTM) != 0
}

// SetStopOnWatermark writes STOP_ON_WTM.
func (f *FifoCtrl) SetStopOnWatermark(b i2c.Bus, on bool) error {
	return f.update(b, 1, 1<<stopOnWTM, boolBit(on, stopOnWTM))
}

// Compression reports whether run-time FIFO compression is enabled.
func (f *FifoCtrl) Compression() bool {
	return f.value[1]&(1<<fifoComprRTEn) != 0
}

// SetCompression writes FIFO_COMPR_RT_EN.
func (f *FifoCtrl) SetCompression(b i2c.Bus, on bool) error {
	return f.update(b, 1, 1<<fifoComprRTEn, boolBit(on, fifoComprRTEn))
}

// GyroBatchRate returns BDR_GY.
func (f *FifoCtrl) GyroBatchRate() (BatchRate, error) {
	code := (f.value[2] >> bdrGYOffset) & bdrMask
	r, ok := batchRateFromCode(code)
	if !ok {
		return 0, unknownCode("FIFO_CTRL3", "BDR_GY", code)
	}
	return r, nil
}

// SetGyroBatchRate writes BDR_GY.
func (f *FifoCtrl) SetGyroBatchRate(b i2c.Bus, r BatchRate) error {
	if _, ok := batchRateFromCode(byte(r)); !ok {
		return unknownCode("FIFO_CTRL3", "BDR_GY", byte(r))
	}
	return f.update(b, 2, bdrMask<<bdrGYOffset, byte(r)<<bdrGYOffset)
}

// AccelBatchRate returns BDR_XL. Code 0b1011 is 1.6 Hz on the accelerometer
// and has no BatchRate, so it is reported as unknown.
func (f *FifoCtrl) AccelBatchRate() (BatchRate, error) {
	code := (f.value[2] >> bdrXLOffset) & bdrMask
	r, ok := batchRateFromCode(code)
	if !ok || !r.AccelCapable() {
		return 0, unknownCode("FIFO_CTRL3", "BDR_XL", code)
	}
	return r, nil
}

// SetAccelBatchRate writes BDR_XL. BDR6_5Hz is rejected.
func (f *FifoCtrl) SetAccelBatchRate(b i2c.Bus, r BatchRate) error {
	if _, ok := batchRateFromCode(byte(r)); !ok || !r.AccelCapable() {
		return unknownCode("FIFO_CTRL3", "BDR_XL", byte(r))
	}
	return f.update(b, 2, bdrMask<<bdrXLOffset, byte(r)<<bdrXLOffset)
}

// Mode returns FIFO_MODE.
func (f *FifoCtrl) Mode() (FifoMode, error) {
	m := FifoMode(f.value[3] & fifoModeMask)
	if _, ok := fifoModeNames[m]; !ok {
		return 0, unknownCode("FIFO_CTRL4", "FIFO_MODE", byte(m))
	}
	return m, nil
}

// SetMode writes FIFO_MODE.
func (f *FifoCtrl) SetMode(b i2c.Bus, m FifoMode) error {
	if _, ok := fifoModeNames[m]; !ok {
		return unknownCode("FIFO_CTRL4", "FIFO_MODE", byte(m))
	}
	return f.update(b, 3, fifoModeMask, byte(m))
}

func (f *FifoCtrl) String() string {
	return fmt.Sprintf("%#02x=% 08b", RegFifoCtrl1, f.value[:])
}

func boolBit(on bool, n uint) byte {
	if on {
		return 1 << n
	}
	return 0
}
