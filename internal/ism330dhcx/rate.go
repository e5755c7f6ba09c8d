// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ism330dhcx

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
)

// DataRate is an output data rate selection (ODR_XL in CTRL1_XL, ODR_G in
// CTRL2_G). The value is the register code.
type DataRate uint8

// Output data rates, high-performance mode.
const (
	ODROff DataRate = iota
	ODR12_5Hz
	ODR26Hz
	ODR52Hz
	ODR104Hz
	ODR208Hz
	ODR416Hz
	ODR833Hz
	ODR1666Hz
	ODR3332Hz
	ODR6664Hz
)

var dataRateFreq = [...]physic.Frequency{
	ODROff:    0,
	ODR12_5Hz: 12500 * physic.MilliHertz,
	ODR26Hz:   26 * physic.Hertz,
	ODR52Hz:   52 * physic.Hertz,
	ODR104Hz:  104 * physic.Hertz,
	ODR208Hz:  208 * physic.Hertz,
	ODR416Hz:  416 * physic.Hertz,
	ODR833Hz:  833 * physic.Hertz,
	ODR1666Hz: 1666 * physic.Hertz,
	ODR3332Hz: 3332 * physic.Hertz,
	ODR6664Hz: 6664 * physic.Hertz,
}

func dataRateFromCode(code byte) (DataRate, bool) {
	if int(code) >= len(dataRateFreq) {
		return 0, false
	}
	return DataRate(code), true
}

// Frequency returns the sampling frequency, 0 when the sensor is off.
func (r DataRate) Frequency() physic.Frequency {
	if int(r) >= len(dataRateFreq) {
		return 0
	}
	return dataRateFreq[r]
}

func (r DataRate) String() string {
	if r == ODROff {
		return "off"
	}
	if int(r) >= len(dataRateFreq) {
		return fmt.Sprintf("DataRate(%d)", uint8(r))
	}
	return dataRateFreq[r].String()
}

// ParseDataRate maps a frequency in Hz to the closest-named rate. The accepted
// values are 0, 12.5, 26, 52, 104, 208, 416, 833, 1666, 3332 and 6664; 1660,
// 3330 and 6660 are accepted as the datasheet's rounded spellings.
func ParseDataRate(hz float64) (DataRate, error) {
	switch hz {
	case 0:
		return ODROff, nil
	case 12.5:
		return ODR12_5Hz, nil
	case 26:
		return ODR26Hz, nil
	case 52:
		return ODR52Hz, nil
	case 104:
		return ODR104Hz, nil
	case 208:
		return ODR208Hz, nil
	case 416:
		return ODR416Hz, nil
	case 833:
		return ODR833Hz, nil
	case 1660, 1666:
		return ODR1666Hz, nil
	case 3330, 3332:
		return ODR3332Hz, nil
	case 6660, 6664:
		return ODR6664Hz, nil
	}
	return 0, fmt.Errorf("ism330dhcx: unsupported output data rate %gHz", hz)
}

// BatchRate is a FIFO batch data rate selection (BDR_GY, BDR_XL in
// FIFO_CTRL3). The value is the register code.
type BatchRate uint8

// Batch data rates.
const (
	BDROff BatchRate = iota
	BDR12_5Hz
	BDR26Hz
	BDR52Hz
	BDR104Hz
	BDR208Hz
	BDR417Hz
	BDR833Hz
	BDR1667Hz
	BDR3333Hz
	BDR6667Hz
	BDR6_5Hz // BDR_GY only; the same code is 1.6 Hz in BDR_XL
)

var batchRateFreq = [...]physic.Frequency{
	BDROff:    0,
	BDR12_5Hz: 12500 * physic.MilliHertz,
	BDR26Hz:   26 * physic.Hertz,
	BDR52Hz:   52 * physic.Hertz,
	BDR104Hz:  104 * physic.Hertz,
	BDR208Hz:  208 * physic.Hertz,
	BDR417Hz:  417 * physic.Hertz,
	BDR833Hz:  833 * physic.Hertz,
	BDR1667Hz: 1667 * physic.Hertz,
	BDR3333Hz: 3333 * physic.Hertz,
	BDR6667Hz: 6667 * physic.Hertz,
	BDR6_5Hz:  6500 * physic.MilliHertz,
}

func batchRateFromCode(code byte) (BatchRate, bool) {
	if int(code) >= len(batchRateFreq) {
		return 0, false
	}
	return BatchRate(code), true
}

// AccelCapable reports whether r means the same rate in BDR_XL as in BDR_GY.
func (r BatchRate) AccelCapable() bool {
	return r != BDR6_5Hz
}

// Frequency returns the batching frequency, 0 when batching is off.
func (r BatchRate) Frequency() physic.Frequency {
	if int(r) >= len(batchRateFreq) {
		return 0
	}
	return batchRateFreq[r]
}

func (r BatchRate) String() string {
	if r == BDROff {
		return "off"
	}
	if int(r) >= len(batchRateFreq) {
		return fmt.Sprintf("BatchRate(%d)", uint8(r))
	}
	return batchRateFreq[r].String()
}

// ParseBatchRate maps a frequency in Hz to a batch data rate.
func ParseBatchRate(hz float64) (BatchRate, error) {
	for r, f := range batchRateFreq {
		if f == physic.Frequency(hz*float64(physic.Hertz)) {
			return BatchRate(r), nil
		}
	}
	return 0, fmt.Errorf("ism330dhcx: unsupported batch data rate %gHz", hz)
}
