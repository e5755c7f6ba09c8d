// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ism330dhcx

import "fmt"

// AccelScale is the accelerometer full-scale selection. The value is the
// FS_XL register code, which is not in ascending range order.
type AccelScale uint8

// Accelerometer full-scale ranges.
const (
	AccelFS2G  AccelScale = 0b00
	AccelFS16G AccelScale = 0b01
	AccelFS4G  AccelScale = 0b10
	AccelFS8G  AccelScale = 0b11
)

// Sensitivity returns milli-g per LSB.
func (s AccelScale) Sensitivity() float64 {
	switch s {
	case AccelFS2G:
		return 0.061
	case AccelFS4G:
		return 0.122
	case AccelFS8G:
		return 0.244
	case AccelFS16G:
		return 0.488
	}
	panic(fmt.Sprintf("ism330dhcx: invalid accelerometer scale %d", uint8(s)))
}

// G returns the range in g.
func (s AccelScale) G() int {
	switch s {
	case AccelFS2G:
		return 2
	case AccelFS4G:
		return 4
	case AccelFS8G:
		return 8
	case AccelFS16G:
		return 16
	}
	return 0
}

func (s AccelScale) String() string {
	if g := s.G(); g != 0 {
		return fmt.Sprintf("±%dg", g)
	}
	return fmt.Sprintf("AccelScale(%d)", uint8(s))
}

// ParseAccelScale maps a range in g (2, 4, 8, 16) to its selection.
func ParseAccelScale(g int) (AccelScale, error) {
	switch g {
	case 2:
		return AccelFS2G, nil
	case 4:
		return AccelFS4G, nil
	case 8:
		return AccelFS8G, nil
	case 16:
		return AccelFS16G, nil
	}
	return 0, fmt.Errorf("ism330dhcx: unsupported accelerometer range ±%dg", g)
}

// GyroScale is the gyroscope full-scale selection. ±125 and ±4000 dps are
// selected by dedicated bits in CTRL2_G, the other four by FS_G.
type GyroScale uint8

// Gyroscope full-scale ranges.
const (
	GyroFS125DPS GyroScale = iota
	GyroFS250DPS
	GyroFS500DPS
	GyroFS1000DPS
	GyroFS2000DPS
	GyroFS4000DPS
)

// Sensitivity returns millidegrees per second per LSB.
func (s GyroScale) Sensitivity() float64 {
	switch s {
	case GyroFS125DPS:
		return 4.375
	case GyroFS250DPS:
		return 8.75
	case GyroFS500DPS:
		return 17.5
	case GyroFS1000DPS:
		return 35
	case GyroFS2000DPS:
		return 70
	case GyroFS4000DPS:
		return 140
	}
	panic(fmt.Sprintf("ism330dhcx: invalid gyroscope scale %d", uint8(s)))
}

// DPS returns the range in degrees per second.
func (s GyroScale) DPS() int {
	switch s {
	case GyroFS125DPS:
		return 125
	case GyroFS250DPS:
		return 250
	case GyroFS500DPS:
		return 500
	case GyroFS1000DPS:
		return 1000
	case GyroFS2000DPS:
		return 2000
	case GyroFS4000DPS:
		return 4000
	}
	return 0
}

func (s GyroScale) String() string {
	if d := s.DPS(); d != 0 {
		return fmt.Sprintf("±%ddps", d)
	}
	return fmt.Sprintf("GyroScale(%d)", uint8(s))
}

// ParseGyroScale maps a range in dps (125 … 4000) to its selection.
func ParseGyroScale(dps int) (GyroScale, error) {
	for s := GyroFS125DPS; s <= GyroFS4000DPS; s++ {
		if s.DPS() == dps {
			return s, nil
		}
	}
	return 0, fmt.Errorf("ism330dhcx: unsupported gyroscope range ±%ddps", dps)
}
