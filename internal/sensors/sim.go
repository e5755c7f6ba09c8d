// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/relabs-tech/ism330_computer/internal/ism330dhcx"
	"periph.io/x/conn/v3/physic"
)

// errNack is returned for transfers to an address nothing answers on.
var errNack = errors.New("sim: no device acknowledged")

const (
	regStatus = 0x1E
	swReset   = 1 << 0
	bootBit   = 1 << 7
)

// SimBus is an in-memory I²C bus with ISM330DHCX register files behind it.
// It backs IMU_SIMULATE=true so the rest of the stack runs without hardware:
// control registers behave like the real ones, output registers carry a
// slow synthetic motion and the FIFO fills with time at the configured batch
// rates.
type SimBus struct {
	mu    sync.Mutex
	now   func() time.Time
	start time.Time
	devs  map[uint16]*simDevice
}

type simDevice struct {
	regs     [256]byte
	fifo     [][ism330dhcx.FifoWordSize]byte
	overrun  bool
	lastFill time.Time
	gyCredit float64
	xlCredit float64
}

// NewSimBus returns a bus with a freshly reset device at each address.
func NewSimBus(addrs ...uint16) *SimBus {
	return newSimBus(time.Now, addrs...)
}

func newSimBus(now func() time.Time, addrs ...uint16) *SimBus {
	s := &SimBus{now: now, start: now(), devs: map[uint16]*simDevice{}}
	for _, a := range addrs {
		if a == 0 {
			continue
		}
		d := &simDevice{}
		d.reset(s.start)
		s.devs[a] = d
	}
	return s
}

func (d *simDevice) reset(now time.Time) {
	d.regs = [256]byte{}
	d.regs[ism330dhcx.RegWhoAmI] = ism330dhcx.WhoAmIValue
	d.regs[ism330dhcx.RegCtrl3C] = 0x04 // IF_INC
	d.regs[ism330dhcx.RegCtrl9XL] = 0xE0
	d.fifo = nil
	d.overrun = false
	d.lastFill = now
	d.gyCredit, d.xlCredit = 0, 0
}

func (s *SimBus) String() string {
	return fmt.Sprintf("sim-i2c(%d devices)", len(s.devs))
}

// SetSpeed is accepted and ignored.
func (s *SimBus) SetSpeed(f physic.Frequency) error {
	return nil
}

// Close implements i2c.BusCloser.
func (s *SimBus) Close() error {
	return nil
}

// Tx implements i2c.Bus. The first written byte is the sub-address, the
// rest are register values written with auto-increment. Reads auto-increment
// too, except at FIFO_DATA_OUT where every 7 bytes pop one word.
func (s *SimBus) Tx(addr uint16, w, r []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.devs[addr]
	if !ok {
		return fmt.Errorf("%w at %#02x", errNack, addr)
	}
	if len(w) == 0 {
		return errors.New("sim: transfer without sub-address")
	}
	sub := int(w[0])
	if sub+len(w)-1 > 0x100 || sub+len(r) > 0x100 && sub != ism330dhcx.RegFifoDataOut {
		return fmt.Errorf("sim: transfer at %#02x runs past 0xFF", sub)
	}

	now := s.now()
	for i, v := range w[1:] {
		d.write(byte(sub+i), v, now)
	}
	if len(r) == 0 {
		return nil
	}

	t := now.Sub(s.start).Seconds()
	d.fill(now, t)
	if sub == ism330dhcx.RegFifoDataOut {
		// A word is consumed only once its last byte has been read.
		off := 0
		for ; off+ism330dhcx.FifoWordSize <= len(r); off += ism330dhcx.FifoWordSize {
			word := d.pop()
			copy(r[off:], word[:])
		}
		if off < len(r) {
			word := d.peek()
			copy(r[off:], word[:])
		}
		return nil
	}
	d.sample(t)
	d.status()
	copy(r, d.regs[sub:sub+len(r)])
	return nil
}

func writable(sub byte) bool {
	return sub >= 0x01 && sub <= ism330dhcx.RegCtrl10C && sub != ism330dhcx.RegWhoAmI
}

func (d *simDevice) write(sub, v byte, now time.Time) {
	if !writable(sub) {
		return
	}
	switch sub {
	case ism330dhcx.RegCtrl3C:
		if v&swReset != 0 {
			d.reset(now)
			return
		}
		v &^= bootBit
	case ism330dhcx.RegFifoCtrl4:
		if ism330dhcx.FifoMode(v&0b111) == ism330dhcx.FifoBypass {
			d.fifo = nil
			d.overrun = false
		}
	}
	d.regs[sub] = v
}

func (d *simDevice) mode() ism330dhcx.FifoMode {
	return ism330dhcx.FifoMode(d.regs[ism330dhcx.RegFifoCtrl4] & 0b111)
}

func hz(f physic.Frequency) float64 {
	return float64(f) / float64(physic.Hertz)
}

// accelBatchHz is the BDR_XL rate, which differs from BDR_GY for one code.
func accelBatchHz(r ism330dhcx.BatchRate) float64 {
	if !r.AccelCapable() {
		return 1.6
	}
	return hz(r.Frequency())
}

// fill batches the words the elapsed time is worth at BDR_GY and BDR_XL.
// Every word of one fill carries the motion at t.
func (d *simDevice) fill(now time.Time, t float64) {
	elapsed := now.Sub(d.lastFill).Seconds()
	d.lastFill = now
	if d.mode() == ism330dhcx.FifoBypass || elapsed <= 0 {
		return
	}
	bdr := d.regs[ism330dhcx.RegFifoCtrl3]
	d.gyCredit = math.Min(d.gyCredit+elapsed*hz(ism330dhcx.BatchRate(bdr>>4).Frequency()), ism330dhcx.FifoSize)
	d.xlCredit = math.Min(d.xlCredit+elapsed*accelBatchHz(ism330dhcx.BatchRate(bdr&0x0F)), ism330dhcx.FifoSize)

	for d.gyCredit >= 1 || d.xlCredit >= 1 {
		if d.gyCredit >= 1 {
			d.gyCredit--
			d.push(ism330dhcx.TagGyroNC, d.gyroCounts(t))
		}
		if d.xlCredit >= 1 {
			d.xlCredit--
			d.push(ism330dhcx.TagAccelNC, d.accelCounts(t))
		}
	}
}

func (d *simDevice) push(tag byte, c [3]int16) {
	var w [ism330dhcx.FifoWordSize]byte
	w[0] = tag << 3
	for i, v := range c {
		binary.LittleEndian.PutUint16(w[1+2*i:], uint16(v))
	}
	if len(d.fifo) >= ism330dhcx.FifoSize {
		if d.mode() == ism330dhcx.FifoStopWhenFull {
			return
		}
		d.fifo = d.fifo[1:]
		d.overrun = true
	}
	d.fifo = append(d.fifo, w)
}

// pop returns the oldest word, or an all-zero word (tag 0) when empty.
func (d *simDevice) peek() [ism330dhcx.FifoWordSize]byte {
	if len(d.fifo) == 0 {
		return [ism330dhcx.FifoWordSize]byte{}
	}
	return d.fifo[0]
}

func (d *simDevice) pop() [ism330dhcx.FifoWordSize]byte {
	if len(d.fifo) == 0 {
		return [ism330dhcx.FifoWordSize]byte{}
	}
	w := d.fifo[0]
	d.fifo = d.fifo[1:]
	if len(d.fifo) < ism330dhcx.FifoSize {
		d.overrun = false
	}
	return w
}

func (d *simDevice) status() {
	n := len(d.fifo)
	wtm := int(d.regs[ism330dhcx.RegFifoCtrl2]&1)<<8 | int(d.regs[ism330dhcx.RegFifoCtrl1])
	s2 := byte(n>>8) & 0b11
	if wtm > 0 && n >= wtm {
		s2 |= 1 << 7
	}
	if d.overrun {
		s2 |= 1<<6 | 1<<3
	}
	if n >= ism330dhcx.FifoSize {
		s2 |= 1 << 5
	}
	d.regs[ism330dhcx.RegFifoStatus1] = byte(n)
	d.regs[ism330dhcx.RegFifoStatus2] = s2
}

func (d *simDevice) accelScale() ism330dhcx.AccelScale {
	return ism330dhcx.AccelScale(d.regs[ism330dhcx.RegCtrl1XL] >> 2 & 0b11)
}

func (d *simDevice) gyroScale() ism330dhcx.GyroScale {
	v := d.regs[ism330dhcx.RegCtrl2G]
	switch {
	case v&0b01 != 0:
		return ism330dhcx.GyroFS4000DPS
	case v&0b10 != 0:
		return ism330dhcx.GyroFS125DPS
	}
	return ism330dhcx.GyroScale(v>>2&0b11 + 1)
}

func toCounts(v, sensitivity float64) int16 {
	c := math.Round(v * 1000 / sensitivity)
	return int16(math.Max(math.MinInt16, math.Min(math.MaxInt16, c)))
}

// accelCounts is a level board wobbling slightly: 1 g on Z plus 0.05 g
// sinusoids on X and Y.
func (d *simDevice) accelCounts(t float64) [3]int16 {
	sens := d.accelScale().Sensitivity()
	return [3]int16{
		toCounts(0.05*math.Sin(t), sens),
		toCounts(0.05*math.Cos(t*0.7), sens),
		toCounts(1, sens),
	}
}

func (d *simDevice) gyroCounts(t float64) [3]int16 {
	sens := d.gyroScale().Sensitivity()
	return [3]int16{
		toCounts(10*math.Cos(t), sens),
		toCounts(-5*math.Sin(t*0.7), sens),
		0,
	}
}

// sample refreshes OUT_TEMP, OUTX..OUTZ and STATUS_REG. A sensor whose ODR
// is off reads zeros.
func (d *simDevice) sample(t float64) {
	var status byte
	var g, a [3]int16
	if d.regs[ism330dhcx.RegCtrl2G]>>4 != 0 {
		g = d.gyroCounts(t)
		status |= 0b010
	}
	if d.regs[ism330dhcx.RegCtrl1XL]>>4 != 0 {
		a = d.accelCounts(t)
		status |= 0b001
	}
	temp := int16(math.Round((30 + 0.5*math.Sin(t/60) - 25) * 256))
	binary.LittleEndian.PutUint16(d.regs[ism330dhcx.RegOutTempL:], uint16(temp))
	for i := range 3 {
		binary.LittleEndian.PutUint16(d.regs[ism330dhcx.RegOutXLG+2*i:], uint16(g[i]))
		binary.LittleEndian.PutUint16(d.regs[ism330dhcx.RegOutXLA+2*i:], uint16(a[i]))
	}
	if status != 0 {
		status |= 0b100
	}
	d.regs[regStatus] = status
}
