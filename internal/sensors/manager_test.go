// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/relabs-tech/ism330_computer/internal/config"
	"github.com/relabs-tech/ism330_computer/internal/ism330dhcx"
)

func testConfig(t *testing.T, extra string) *config.Config {
	t.Helper()
	cfg, err := config.Parse(strings.NewReader(`
MQTT_BROKER=tcp://localhost:1883
IMU_SAMPLE_INTERVAL=20
CONSOLE_LOG_INTERVAL=1000
IMU_SIMULATE=true
` + extra))
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func newTestManager(t *testing.T, cfg *config.Config, addrs ...uint16) (*IMUManager, *SimBus, *fakeClock) {
	t.Helper()
	bus, clk := newTestBus(addrs...)
	m := &IMUManager{}
	if err := m.initWithBus(bus, cfg); err != nil {
		t.Fatal(err)
	}
	return m, bus, clk
}

func near(got, want, rel float64) bool {
	return math.Abs(got-want) <= math.Abs(want)*rel
}

func TestManagerConfigures(t *testing.T) {
	m, bus, _ := newTestManager(t, testConfig(t, ""), 0x6A, 0x6B)
	if !m.IsLeftIMUAvailable() || !m.IsRightIMUAvailable() {
		t.Fatal("both IMUs should be up")
	}
	want := map[byte]byte{
		ism330dhcx.RegCtrl1XL:   0x48, // 104 Hz, ±4 g
		ism330dhcx.RegCtrl2G:    0x44, // 104 Hz, ±500 dps
		ism330dhcx.RegCtrl3C:    0x44, // BDU, IF_INC
		ism330dhcx.RegCtrl7G:    0x00,
		ism330dhcx.RegCtrl9XL:   0xE2, // DEVICE_CONF
		ism330dhcx.RegFifoCtrl4: 0x00,
	}
	for _, side := range []uint16{0x6A, 0x6B} {
		for sub, v := range want {
			if got := read(t, bus, side, sub, 1)[0]; got != v {
				t.Errorf("%#02x: register %#02x = %#02x, want %#02x", side, sub, got, v)
			}
		}
	}
}

func TestManagerReadIMU(t *testing.T) {
	m, _, _ := newTestManager(t, testConfig(t, ""), 0x6A, 0x6B)
	s, err := m.ReadLeftIMU()
	if err != nil {
		t.Fatal(err)
	}
	if s.Source != Left || s.AccelRangeG != 4 || s.GyroRangeDPS != 500 {
		t.Errorf("sample = %+v", s)
	}
	if s.TempC != 30 {
		t.Errorf("temperature = %v", s.TempC)
	}
	if !near(s.Accel.Z, ism330dhcx.StandardGravity, 0.01) || s.Accel.X != 0 {
		t.Errorf("accel = %+v", s.Accel)
	}
	if !near(s.Gyro.X, 10*ism330dhcx.DPSToRad, 0.01) || s.Gyro.Z != 0 {
		t.Errorf("gyro = %+v", s.Gyro)
	}

	// A range change behind the manager's back is picked up because the
	// write goes through the cached register.
	if err := m.WriteRegister(Right, ism330dhcx.RegCtrl1XL, 0x44); err != nil {
		t.Fatal(err)
	}
	s, err = m.ReadRightIMU()
	if err != nil {
		t.Fatal(err)
	}
	if s.AccelRangeG != 16 || !near(s.Accel.Z, ism330dhcx.StandardGravity, 0.01) {
		t.Errorf("after range change: %+v", s)
	}

	if err := m.ReinitializeIMU(Right); err != nil {
		t.Fatal(err)
	}
	if v, err := m.ReadRegister(Right, ism330dhcx.RegCtrl1XL); err != nil || v != 0x48 {
		t.Errorf("CTRL1_XL after reinit = %#02x, %v", v, err)
	}
}

func TestManagerDrainFIFO(t *testing.T) {
	cfg := testConfig(t, "IMU_READ_MODE=fifo\nIMU_FIFO_WATERMARK=32\n")
	m, _, clk := newTestManager(t, cfg, 0x6A)

	clk.advance(time.Second)
	b, err := m.DrainFIFO(Left)
	if err != nil {
		t.Fatal(err)
	}
	if b.Unread != 208 || len(b.Accel) != 104 || len(b.Gyro) != 104 || b.Other != 0 || b.Empty != 0 || b.Overrun {
		t.Fatalf("batch = unread %d, %d accel, %d gyro, other %d, empty %d, overrun %v",
			b.Unread, len(b.Accel), len(b.Gyro), b.Other, b.Empty, b.Overrun)
	}
	if !near(b.Accel[0].Z, ism330dhcx.StandardGravity, 0.01) {
		t.Errorf("accel[0] = %+v", b.Accel[0])
	}
	if b, err = m.DrainFIFO(Left); err != nil || b.Unread != 0 {
		t.Errorf("second drain = %+v, %v", b, err)
	}

	clk.advance(10 * time.Second)
	b, err = m.DrainFIFO(Left)
	if err != nil {
		t.Fatal(err)
	}
	if b.Unread != ism330dhcx.FifoSize || !b.Overrun || !b.Full {
		t.Errorf("overflowed batch: unread %d, overrun %v, full %v", b.Unread, b.Overrun, b.Full)
	}
}

func TestManagerRegisters(t *testing.T) {
	m, _, _ := newTestManager(t, testConfig(t, ""), 0x6A, 0x6B)
	all, err := m.ReadAllRegisters(Left)
	if err != nil {
		t.Fatal(err)
	}
	if all[ism330dhcx.RegWhoAmI] != ism330dhcx.WhoAmIValue || all[ism330dhcx.RegCtrl1XL] != 0x48 {
		t.Errorf("WHO_AM_I %#02x, CTRL1_XL %#02x", all[ism330dhcx.RegWhoAmI], all[ism330dhcx.RegCtrl1XL])
	}
	if _, ok := all[ism330dhcx.RegFifoDataOut]; ok {
		t.Error("FIFO_DATA_OUT was read")
	}
	if _, ok := all[ism330dhcx.RegOutXLA]; !ok {
		t.Error("output registers missing")
	}

	exp, err := m.ExportRegisterConfig(Left)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := exp[ism330dhcx.RegWhoAmI]; ok {
		t.Error("read-only WHO_AM_I exported")
	}
	if exp[ism330dhcx.RegCtrl2G] != 0x44 || len(exp) != 4+10 {
		t.Errorf("export = %v", exp)
	}
	if len(m.GetRegisterMap()) == 0 {
		t.Error("empty register map")
	}
}

func TestManagerPartial(t *testing.T) {
	// Only the left device answers.
	m, _, _ := newTestManager(t, testConfig(t, ""), 0x6A)
	if !m.IsLeftIMUAvailable() || m.IsRightIMUAvailable() {
		t.Fatal("expected left only")
	}
	if _, err := m.ReadRightIMU(); !errors.Is(err, ErrIMUUnavailable) {
		t.Errorf("right read: err = %v", err)
	}
	if _, err := m.ReadIMU("middle"); err == nil {
		t.Error("unknown side accepted")
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := m.ReadLeftIMU(); !errors.Is(err, ErrIMUUnavailable) {
		t.Errorf("read after close: err = %v", err)
	}

	bus, _ := newTestBus(0x10)
	if err := (&IMUManager{}).initWithBus(bus, testConfig(t, "")); err == nil {
		t.Error("init without any IMU succeeded")
	}
}
