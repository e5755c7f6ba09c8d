// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log"

	"github.com/relabs-tech/ism330_computer/internal/config"
	"github.com/relabs-tech/ism330_computer/internal/ism330dhcx"
	"periph.io/x/conn/v3/i2c"
)

// configure applies the IMU_* settings to one device. Each write goes
// through the typed register setters so the cached copies stay in step.
func configure(b i2c.Bus, name string, d *ism330dhcx.Dev, cfg *config.Config) error {
	if err := d.Ctrl9XL.SetDeviceConf(b, true); err != nil {
		return fmt.Errorf("%s IMU: set DEVICE_CONF: %w", name, err)
	}

	if err := d.Ctrl3C.SetAutoIncrement(b, true); err != nil {
		return fmt.Errorf("%s IMU: set IF_INC: %w", name, err)
	}
	if err := d.Ctrl3C.SetBlockDataUpdate(b, cfg.IMUBDU); err != nil {
		return fmt.Errorf("%s IMU: set BDU: %w", name, err)
	}
	log.Printf("%s IMU: block data update %v", name, cfg.IMUBDU)

	// Accelerometer
	fsXL, err := ism330dhcx.ParseAccelScale(cfg.IMUAccelRangeG)
	if err != nil {
		return fmt.Errorf("%s IMU: %w", name, err)
	}
	if err := d.Ctrl1XL.SetFullScale(b, fsXL); err != nil {
		return fmt.Errorf("%s IMU: set accel range: %w", name, err)
	}
	log.Printf("%s IMU: accelerometer range set to %v", name, fsXL)

	odrXL, err := ism330dhcx.ParseDataRate(cfg.IMUAccelODRHz)
	if err != nil {
		return fmt.Errorf("%s IMU: %w", name, err)
	}
	if err := d.Ctrl1XL.SetDataRate(b, odrXL); err != nil {
		return fmt.Errorf("%s IMU: set accel ODR: %w", name, err)
	}
	log.Printf("%s IMU: accelerometer ODR set to %v", name, odrXL)

	if err := d.Ctrl1XL.SetLPF2(b, cfg.IMUAccelLPF2); err != nil {
		return fmt.Errorf("%s IMU: set accel LPF2: %w", name, err)
	}

	// Gyroscope
	fsG, err := ism330dhcx.ParseGyroScale(cfg.IMUGyroRangeDPS)
	if err != nil {
		return fmt.Errorf("%s IMU: %w", name, err)
	}
	if err := d.Ctrl2G.SetFullScale(b, fsG); err != nil {
		return fmt.Errorf("%s IMU: set gyro range: %w", name, err)
	}
	log.Printf("%s IMU: gyroscope range set to %v", name, fsG)

	odrG, err := ism330dhcx.ParseDataRate(cfg.IMUGyroODRHz)
	if err != nil {
		return fmt.Errorf("%s IMU: %w", name, err)
	}
	if err := d.Ctrl2G.SetDataRate(b, odrG); err != nil {
		return fmt.Errorf("%s IMU: set gyro ODR: %w", name, err)
	}
	log.Printf("%s IMU: gyroscope ODR set to %v", name, odrG)

	if cfg.IMUGyroHPF {
		cutoff, err := ism330dhcx.ParseHPCutoff(cfg.IMUGyroHPFCutoffMHz)
		if err != nil {
			return fmt.Errorf("%s IMU: %w", name, err)
		}
		if err := d.Ctrl7G.SetHighPassCutoff(b, cutoff); err != nil {
			return fmt.Errorf("%s IMU: set gyro HPF cutoff: %w", name, err)
		}
		log.Printf("%s IMU: gyroscope high-pass filter at %v", name, cutoff)
	}
	if err := d.Ctrl7G.SetHighPass(b, cfg.IMUGyroHPF); err != nil {
		return fmt.Errorf("%s IMU: set gyro HPF: %w", name, err)
	}

	return configureFifo(b, name, d, cfg)
}

// configureFifo batches both sensors at IMU_FIFO_BDR_HZ in fifo read mode
// and keeps the FIFO in bypass otherwise.
func configureFifo(b i2c.Bus, name string, d *ism330dhcx.Dev, cfg *config.Config) error {
	if cfg.IMUReadMode != config.ReadModeFIFO {
		if err := d.FifoCtrl.SetMode(b, ism330dhcx.FifoBypass); err != nil {
			return fmt.Errorf("%s IMU: set FIFO bypass: %w", name, err)
		}
		return nil
	}

	bdr, err := ism330dhcx.ParseBatchRate(cfg.IMUFIFOBDRHz)
	if err != nil {
		return fmt.Errorf("%s IMU: %w", name, err)
	}
	mode, err := ism330dhcx.ParseFifoMode(cfg.IMUFIFOMode)
	if err != nil {
		return fmt.Errorf("%s IMU: %w", name, err)
	}

	// The mode goes through bypass first so stale words are flushed.
	if err := d.FifoCtrl.SetMode(b, ism330dhcx.FifoBypass); err != nil {
		return fmt.Errorf("%s IMU: flush FIFO: %w", name, err)
	}
	if err := d.FifoCtrl.SetWatermark(b, uint16(cfg.IMUFIFOWatermark)); err != nil {
		return fmt.Errorf("%s IMU: set FIFO watermark: %w", name, err)
	}
	if err := d.FifoCtrl.SetGyroBatchRate(b, bdr); err != nil {
		return fmt.Errorf("%s IMU: set BDR_GY: %w", name, err)
	}
	if err := d.FifoCtrl.SetAccelBatchRate(b, bdr); err != nil {
		return fmt.Errorf("%s IMU: set BDR_XL: %w", name, err)
	}
	if err := d.FifoCtrl.SetMode(b, mode); err != nil {
		return fmt.Errorf("%s IMU: set FIFO mode: %w", name, err)
	}
	log.Printf("%s IMU: FIFO %v at %v, watermark %d", name, mode, bdr, cfg.IMUFIFOWatermark)
	return nil
}
