// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"time"

	"github.com/relabs-tech/ism330_computer/internal/config"
	"github.com/relabs-tech/ism330_computer/internal/sensors"
)

// RunConsole reads the IMUs directly, without MQTT, and prints one line per
// side every CONSOLE_LOG_INTERVAL. With IMU_SIMULATE=true it needs no
// hardware at all.
func RunConsole() error {
	cfg := config.Get()

	mgr := sensors.GetIMUManager()
	if err := mgr.Init(); err != nil {
		return err
	}
	defer mgr.Close()

	ticker := time.NewTicker(time.Duration(cfg.ConsoleLogInterval) * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		for _, side := range []string{sensors.Left, sensors.Right} {
			if side == sensors.Left && !mgr.IsLeftIMUAvailable() ||
				side == sensors.Right && !mgr.IsRightIMUAvailable() {
				continue
			}
			s, err := mgr.ReadIMU(side)
			if err != nil {
				return err
			}
			fmt.Println(formatSample(side, s))
		}
	}
	return nil
}
