// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package ism330dhcx controls an ST ISM330DHCX six-axis IMU (3-axis gyroscope,
// 3-axis accelerometer, temperature channel and a tagged FIFO) over I²C.
//
// Every control register is mirrored in memory. A Dev is created with one
// burst read covering FIFO_CTRL1 through CTRL10_C; field setters write the
// whole register byte and only update the mirror when the bus transaction
// succeeds.
//
// The bus is passed to each call instead of being stored, so several devices
// (0x6A and 0x6B) can share one i2c.Bus. Serialising access to that bus is the
// caller's job.
//
// Samples keep their raw counts and the full-scale range that was in effect
// when they were read. Physical values are derived on demand.
//
// # Datasheet
//
// https://www.st.com/resource/en/datasheet/ism330dhcx.pdf
package ism330dhcx
