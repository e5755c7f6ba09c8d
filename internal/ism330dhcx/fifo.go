// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ism330dhcx

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

// FIFO tags, from FIFO_DATA_OUT_TAG bits 7:3.
const (
	TagEmpty        = 0x00
	TagGyroNC       = 0x01
	TagAccelNC      = 0x02
	TagTemperature  = 0x03
	TagTimestamp    = 0x04
	TagConfigChange = 0x05
	tagMax          = 0x19
)

// FifoWordSize is the size of one FIFO word: tag byte plus 6 data bytes.
const FifoWordSize = 7

// FifoEntry is one word popped from the FIFO: FifoEmpty, FifoGyro,
// FifoAccel or FifoOther.
type FifoEntry interface {
	Tag() uint8
}

// FifoEmpty is returned when the FIFO had nothing to give.
type FifoEmpty struct{}

// Tag implements FifoEntry.
func (FifoEmpty) Tag() uint8 { return TagEmpty }

// FifoGyro is a non-compressed gyroscope word.
type FifoGyro struct {
	GyroSample
}

// Tag implements FifoEntry.
func (FifoGyro) Tag() uint8 { return TagGyroNC }

// FifoAccel is a non-compressed accelerometer word.
type FifoAccel struct {
	AccelSample
}

// Tag implements FifoEntry.
func (FifoAccel) Tag() uint8 { return TagAccelNC }

// FifoOther is any other valid tag (temperature, timestamp, compressed data,
// sensor hub, …). The payload is passed through untouched.
type FifoOther struct {
	Code uint8
	Data [6]byte
}

// Tag implements FifoEntry.
func (o FifoOther) Tag() uint8 { return o.Code }

// DecodeFifoWord classifies a 7-byte FIFO word. Gyroscope and accelerometer
// payloads are stamped with gs and as.
func DecodeFifoWord(w [FifoWordSize]byte, gs GyroScale, as AccelScale) (FifoEntry, error) {
	tag := w[0] >> 3
	switch {
	case tag == TagEmpty:
		return FifoEmpty{}, nil
	case tag == TagGyroNC:
		return FifoGyro{GyroSample{Raw: DecodeRaw(w[1:]), Scale: gs}}, nil
	case tag == TagAccelNC:
		return FifoAccel{AccelSample{Raw: DecodeRaw(w[1:]), Scale: as}}, nil
	case tag <= tagMax:
		o := FifoOther{Code: tag}
		copy(o.Data[:], w[1:])
		return o, nil
	}
	return nil, fmt.Errorf("%w: %#02x", ErrUnknownTag, tag)
}

// FifoPop reads one FIFO word from the device at addr in a single
// transaction.
func FifoPop(b i2c.Bus, addr uint16, gs GyroScale, as AccelScale) (FifoEntry, error) {
	var w [FifoWordSize]byte
	if err := readRegs(b, addr, RegFifoDataOut, w[:]); err != nil {
		return nil, err
	}
	return DecodeFifoWord(w, gs, as)
}

// FifoStatus is the decoded FIFO_STATUS1/FIFO_STATUS2 pair.
type FifoStatus struct {
	Unread         uint16 // words waiting in the FIFO
	Watermark      bool
	Overrun        bool
	Full           bool
	CounterBDR     bool
	OverrunLatched bool
}

// DecodeFifoStatus decodes FIFO_STATUS1 and FIFO_STATUS2.
func DecodeFifoStatus(s1, s2 byte) FifoStatus {
	return FifoStatus{
		Unread:         uint16(s2&0b11)<<8 | uint16(s1),
		Watermark:      s2&(1<<7) != 0,
		Overrun:        s2&(1<<6) != 0,
		Full:           s2&(1<<5) != 0,
		CounterBDR:     s2&(1<<4) != 0,
		OverrunLatched: s2&(1<<3) != 0,
	}
}

// ReadFifoStatus reads both status registers in one transaction.
func ReadFifoStatus(b i2c.Bus, addr uint16) (FifoStatus, error) {
	var buf [2]byte
	if err := readRegs(b, addr, RegFifoStatus1, buf[:]); err != nil {
		return FifoStatus{}, err
	}
	return DecodeFifoStatus(buf[0], buf[1]), nil
}
