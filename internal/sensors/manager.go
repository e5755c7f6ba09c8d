// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/relabs-tech/ism330_computer/internal/config"
	"github.com/relabs-tech/ism330_computer/internal/imu"
	"github.com/relabs-tech/ism330_computer/internal/ism330dhcx"
	"go.uber.org/multierr"
	"periph.io/x/conn/v3/i2c"
)

// IMU side names, as used in topics, logs and the debugger protocol.
const (
	Left  = "left"
	Right = "right"
)

// ErrIMUUnavailable is returned for a side that is disabled or failed to
// initialize.
var ErrIMUUnavailable = errors.New("IMU not available")

// resetDelay covers the SW_RESET duration (50 µs typical) with margin.
const resetDelay = 10 * time.Millisecond

type imuDevice struct {
	name string
	addr uint16
	dev  *ism330dhcx.Dev
}

// IMUManager owns the I²C bus and both ISM330DHCX handles. All access is
// serialized so the producer, the web handlers and the register debugger can
// share the devices.
type IMUManager struct {
	mu    sync.Mutex
	cfg   *config.Config
	bus   i2c.BusCloser
	left  *imuDevice
	right *imuDevice
}

var (
	imuManager     *IMUManager
	imuManagerOnce sync.Once
)

// GetIMUManager returns the process-wide manager. Call Init before use.
func GetIMUManager() *IMUManager {
	imuManagerOnce.Do(func() {
		imuManager = &IMUManager{}
	})
	return imuManager
}

// Init opens the configured bus and brings up every enabled IMU. It only
// fails when no IMU could be brought up; per-side failures are logged and
// leave that side unavailable.
func (m *IMUManager) Init() error {
	cfg := config.Get()
	bus, err := OpenBus(cfg.IMUI2CBus, cfg.IMUSimulate, cfg.IMULeftAddr, cfg.IMURightAddr)
	if err != nil {
		return err
	}
	if cfg.IMUSimulate {
		log.Printf("IMU: using simulated I2C bus %s", bus)
	}
	return m.initWithBus(bus, cfg)
}

// NewIMUManager brings up the IMUs behind an already opened bus. Unlike
// GetIMUManager the result is not shared.
func NewIMUManager(bus i2c.BusCloser, cfg *config.Config) (*IMUManager, error) {
	m := &IMUManager{}
	if err := m.initWithBus(bus, cfg); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *IMUManager) initWithBus(bus i2c.BusCloser, cfg *config.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.bus = bus
	m.cfg = cfg
	m.left, m.right = nil, nil

	var errs error
	if cfg.IMULeftAddr != 0 {
		d, err := m.bringUp(Left, cfg.IMULeftAddr)
		errs = multierr.Append(errs, err)
		m.left = d
	}
	if cfg.IMURightAddr != 0 {
		d, err := m.bringUp(Right, cfg.IMURightAddr)
		errs = multierr.Append(errs, err)
		m.right = d
	}
	if m.left == nil && m.right == nil {
		if errs == nil {
			errs = errors.New("no IMU address configured")
		}
		return fmt.Errorf("IMU init: %w", errs)
	}
	if errs != nil {
		log.Printf("IMU init: continuing with partial set: %v", errs)
	}
	return nil
}

func (m *IMUManager) bringUp(name string, addr uint16) (*imuDevice, error) {
	dev, err := ism330dhcx.New(m.bus, &ism330dhcx.Opts{
		Addr:         addr,
		Units:        ism330dhcx.DefaultUnits,
		VerifyID:     true,
		RefreshScale: m.cfg.IMURefreshScale,
	})
	if err != nil {
		return nil, fmt.Errorf("%s IMU at %#02x: %w", name, addr, err)
	}
	log.Printf("%s IMU: ISM330DHCX found at %#02x", name, addr)
	if err := configure(m.bus, name, dev, m.cfg); err != nil {
		return nil, err
	}
	return &imuDevice{name: name, addr: addr, dev: dev}, nil
}

// IsLeftIMUAvailable reports whether the left IMU came up.
func (m *IMUManager) IsLeftIMUAvailable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.left != nil
}

// IsRightIMUAvailable reports whether the right IMU came up.
func (m *IMUManager) IsRightIMUAvailable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.right != nil
}

// device must be called with m.mu held.
func (m *IMUManager) device(side string) (*imuDevice, error) {
	var d *imuDevice
	switch side {
	case Left:
		d = m.left
	case Right:
		d = m.right
	default:
		return nil, fmt.Errorf("unknown IMU %q, use %q or %q", side, Left, Right)
	}
	if d == nil {
		return nil, fmt.Errorf("%s: %w", side, ErrIMUUnavailable)
	}
	return d, nil
}

// ReadIMU polls temperature, accelerometer and gyroscope of one side.
func (m *IMUManager) ReadIMU(side string) (imu.Sample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, err := m.device(side)
	if err != nil {
		return imu.Sample{}, err
	}
	temp, err := d.dev.Temperature(m.bus)
	if err != nil {
		return imu.Sample{}, fmt.Errorf("%s IMU temperature: %w", side, err)
	}
	as, err := d.dev.ReadAccelerometer(m.bus)
	if err != nil {
		return imu.Sample{}, fmt.Errorf("%s IMU accel: %w", side, err)
	}
	gs, err := d.dev.ReadGyroscope(m.bus)
	if err != nil {
		return imu.Sample{}, fmt.Errorf("%s IMU gyro: %w", side, err)
	}

	units := d.dev.Units()
	return imu.Sample{
		Source:       side,
		Timestamp:    time.Now(),
		TempC:        temp,
		Accel:        as.In(units.StandardGravity),
		Gyro:         gs.In(units.DPSToRad),
		AccelRaw:     as.Raw,
		GyroRaw:      gs.Raw,
		AccelRangeG:  as.Scale.G(),
		GyroRangeDPS: gs.Scale.DPS(),
	}, nil
}

// ReadLeftIMU polls the left IMU.
func (m *IMUManager) ReadLeftIMU() (imu.Sample, error) {
	return m.ReadIMU(Left)
}

// ReadRightIMU polls the right IMU.
func (m *IMUManager) ReadRightIMU() (imu.Sample, error) {
	return m.ReadIMU(Right)
}

// DrainFIFO pops every word FIFO_STATUS reports as unread and sorts them
// by tag. Words with a tag outside the datasheet table abort the drain.
func (m *IMUManager) DrainFIFO(side string) (imu.FifoBatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, err := m.device(side)
	if err != nil {
		return imu.FifoBatch{}, err
	}
	st, err := d.dev.FifoStatus(m.bus)
	if err != nil {
		return imu.FifoBatch{}, fmt.Errorf("%s IMU FIFO status: %w", side, err)
	}

	units := d.dev.Units()
	batch := imu.FifoBatch{
		Source:    side,
		Timestamp: time.Now(),
		Unread:    int(st.Unread),
		Overrun:   st.Overrun,
		Full:      st.Full,
	}
	for range int(st.Unread) {
		e, err := d.dev.FifoPop(m.bus)
		if err != nil {
			return batch, fmt.Errorf("%s IMU FIFO pop: %w", side, err)
		}
		switch e := e.(type) {
		case ism330dhcx.FifoAccel:
			batch.Accel = append(batch.Accel, e.In(units.StandardGravity))
		case ism330dhcx.FifoGyro:
			batch.Gyro = append(batch.Gyro, e.In(units.DPSToRad))
		case ism330dhcx.FifoEmpty:
			batch.Empty++
		default:
			batch.Other++
		}
	}
	return batch, nil
}

// ReadRegister reads one raw register.
func (m *IMUManager) ReadRegister(side string, addr byte) (byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, err := m.device(side)
	if err != nil {
		return 0, err
	}
	return d.dev.ReadRegister(m.bus, addr)
}

// WriteRegister writes one raw register.
func (m *IMUManager) WriteRegister(side string, addr, value byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, err := m.device(side)
	if err != nil {
		return err
	}
	if err := d.dev.WriteRegister(m.bus, addr, value); err != nil {
		return err
	}
	log.Printf("%s IMU: wrote 0x%02X to register 0x%02X", side, value, addr)
	return nil
}

// ReadAllRegisters reads every mapped register except FIFO_DATA_OUT, whose
// read would consume a FIFO word. Consecutive registers are read in one
// transfer.
func (m *IMUManager) ReadAllRegisters(side string) (map[byte]byte, error) {
	return m.readMapped(side, func(RegisterInfo) bool { return true })
}

// ExportRegisterConfig returns the writable registers, suitable for
// restoring a configuration later.
func (m *IMUManager) ExportRegisterConfig(side string) (map[byte]byte, error) {
	return m.readMapped(side, func(r RegisterInfo) bool { return r.Access == "RW" })
}

func (m *IMUManager) readMapped(side string, keep func(RegisterInfo) bool) (map[byte]byte, error) {
	var addrs []byte
	for _, r := range ism330dhcxRegisterMap() {
		a, err := strconv.ParseUint(r.Address, 0, 8)
		if err != nil {
			return nil, fmt.Errorf("register map entry %s: %w", r.Name, err)
		}
		if a == ism330dhcx.RegFifoDataOut || !keep(r) {
			continue
		}
		addrs = append(addrs, byte(a))
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	m.mu.Lock()
	defer m.mu.Unlock()

	d, err := m.device(side)
	if err != nil {
		return nil, err
	}
	out := make(map[byte]byte, len(addrs))
	for i := 0; i < len(addrs); {
		j := i + 1
		for j < len(addrs) && addrs[j] == addrs[j-1]+1 {
			j++
		}
		vals, err := d.dev.ReadRegisters(m.bus, addrs[i], j-i)
		if err != nil {
			return nil, fmt.Errorf("%s IMU read 0x%02X..0x%02X: %w", side, addrs[i], addrs[j-1], err)
		}
		for k, v := range vals {
			out[addrs[i]+byte(k)] = v
		}
		i = j
	}
	return out, nil
}

// GetRegisterMap returns the register metadata shown by the debugger.
func (m *IMUManager) GetRegisterMap() []RegisterInfo {
	return ism330dhcxRegisterMap()
}

// ReinitializeIMU software-resets one side and applies the configuration
// again.
func (m *IMUManager) ReinitializeIMU(side string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, err := m.device(side)
	if err != nil {
		return err
	}
	if err := d.dev.Ctrl3C.SetSoftwareReset(m.bus, true); err != nil {
		return fmt.Errorf("%s IMU reset: %w", side, err)
	}
	time.Sleep(resetDelay)
	if err := d.dev.Refresh(m.bus); err != nil {
		return fmt.Errorf("%s IMU refresh: %w", side, err)
	}
	if err := configure(m.bus, side, d.dev, m.cfg); err != nil {
		return err
	}
	log.Printf("%s IMU: reinitialized", side)
	return nil
}

// Close releases the bus.
func (m *IMUManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.bus == nil {
		return nil
	}
	var err error
	for _, d := range []*imuDevice{m.left, m.right} {
		if d == nil {
			continue
		}
		// Power both sensors down before letting go of the bus.
		err = multierr.Append(err, d.dev.Ctrl1XL.SetDataRate(m.bus, ism330dhcx.ODROff))
		err = multierr.Append(err, d.dev.Ctrl2G.SetDataRate(m.bus, ism330dhcx.ODROff))
	}
	err = multierr.Append(err, m.bus.Close())
	m.bus, m.left, m.right = nil, nil, nil
	return err
}
