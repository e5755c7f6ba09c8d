// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ism330dhcx

import "encoding/binary"

// Default conversion constants.
const (
	DPSToRad        = 0.017453293
	StandardGravity = 9.80665
)

// Raw holds signed counts for X, Y and Z.
type Raw [3]int16

// DecodeRaw reads three little-endian int16 values from p, which must hold at
// least 6 bytes.
func DecodeRaw(p []byte) Raw {
	_ = p[5]
	return Raw{
		int16(binary.LittleEndian.Uint16(p[0:])),
		int16(binary.LittleEndian.Uint16(p[2:])),
		int16(binary.LittleEndian.Uint16(p[4:])),
	}
}

// Vector is a 3-axis value in physical units.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ToPhysical converts counts using a sensitivity in milli-units per LSB and
// a factor from base units to the requested unit.
func ToPhysical(r Raw, sensitivity, factor float64) Vector {
	conv := func(c int16) float64 {
		return float64(c) * sensitivity / 1000 * factor
	}
	return Vector{X: conv(r[0]), Y: conv(r[1]), Z: conv(r[2])}
}

// GyroSample is a gyroscope reading stamped with the range it was taken at.
type GyroSample struct {
	Raw   Raw
	Scale GyroScale
}

// MilliDPS returns the angular rate in mdps.
func (s GyroSample) MilliDPS() Vector {
	return ToPhysical(s.Raw, s.Scale.Sensitivity(), 1000)
}

// DPS returns the angular rate in dps.
func (s GyroSample) DPS() Vector {
	return ToPhysical(s.Raw, s.Scale.Sensitivity(), 1)
}

// RadPerSec returns the angular rate in rad/s.
func (s GyroSample) RadPerSec() Vector {
	return s.In(DPSToRad)
}

// In returns the angular rate in dps multiplied by factor.
func (s GyroSample) In(factor float64) Vector {
	return ToPhysical(s.Raw, s.Scale.Sensitivity(), factor)
}

// AccelSample is an accelerometer reading stamped with the range it was
// taken at.
type AccelSample struct {
	Raw   Raw
	Scale AccelScale
}

// MilliG returns the acceleration in mg.
func (s AccelSample) MilliG() Vector {
	return ToPhysical(s.Raw, s.Scale.Sensitivity(), 1000)
}

// G returns the acceleration in g.
func (s AccelSample) G() Vector {
	return ToPhysical(s.Raw, s.Scale.Sensitivity(), 1)
}

// MetersPerSec2 returns the acceleration in m/s².
func (s AccelSample) MetersPerSec2() Vector {
	return s.In(StandardGravity)
}

// In returns the acceleration in g multiplied by factor.
func (s AccelSample) In(factor float64) Vector {
	return ToPhysical(s.Raw, s.Scale.Sensitivity(), factor)
}

// Temperature converts OUT_TEMP counts to °C: 256 LSB/°C, 0 LSB is 25 °C.
func Temperature(raw int16) float64 {
	return float64(raw)/256.0 + 25.0
}
