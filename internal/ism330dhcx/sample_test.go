// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ism330dhcx

import (
	"math"
	"testing"
)

func within(got, want, rel float64) bool {
	if want == 0 {
		return got == 0
	}
	return math.Abs((got-want)/want) <= rel
}

func TestDecodeRaw(t *testing.T) {
	got := DecodeRaw([]byte{0x69, 0x16, 0x00, 0x80, 0xFF, 0xFF})
	want := Raw{0x1669, math.MinInt16, -1}
	if got != want {
		t.Errorf("DecodeRaw = %v, want %v", got, want)
	}
}

// Counts close to 1 g and 100 dps at every range, and their datasheet value.
func TestAccelFixtures(t *testing.T) {
	tests := []struct {
		scale AccelScale
		count int16
		g     float64
	}{
		{AccelFS2G, 5737, 0.350},
		{AccelFS2G, 16393, 1.0},
		{AccelFS2G, -32768, -2.0},
		{AccelFS4G, 8197, 1.0},
		{AccelFS4G, -16393, -2.0},
		{AccelFS8G, 4098, 1.0},
		{AccelFS8G, 32767, 8.0},
		{AccelFS16G, 2049, 1.0},
		{AccelFS16G, -32768, -16.0},
	}
	for _, tc := range tests {
		s := AccelSample{Raw: Raw{tc.count, tc.count, tc.count}, Scale: tc.scale}
		g := s.G()
		if !within(g.X, tc.g, 0.01) || g.Y != g.X || g.Z != g.X {
			t.Errorf("%v count %d: got %v g, want %v", tc.scale, tc.count, g, tc.g)
		}
		if mg := s.MilliG(); !within(mg.X, tc.g*1000, 0.01) {
			t.Errorf("%v count %d: got %v mg, want %v", tc.scale, tc.count, mg.X, tc.g*1000)
		}
		if ms := s.MetersPerSec2(); !within(ms.X, tc.g*StandardGravity, 0.01) {
			t.Errorf("%v count %d: got %v m/s², want %v", tc.scale, tc.count, ms.X, tc.g*StandardGravity)
		}
	}
}

func TestGyroFixtures(t *testing.T) {
	tests := []struct {
		scale GyroScale
		count int16
		dps   float64
	}{
		{GyroFS125DPS, 22857, 100},
		{GyroFS125DPS, -28571, -125},
		{GyroFS250DPS, 11429, 100},
		{GyroFS250DPS, 28571, 250},
		{GyroFS500DPS, 5714, 100},
		{GyroFS500DPS, -28571, -500},
		{GyroFS1000DPS, 2857, 100},
		{GyroFS1000DPS, 28571, 1000},
		{GyroFS2000DPS, 1429, 100},
		{GyroFS2000DPS, -28571, -2000},
		{GyroFS4000DPS, 714, 100},
		{GyroFS4000DPS, 28571, 4000},
	}
	for _, tc := range tests {
		s := GyroSample{Raw: Raw{tc.count, 0, -tc.count}, Scale: tc.scale}
		d := s.DPS()
		if !within(d.X, tc.dps, 0.01) || !within(d.Z, -tc.dps, 0.01) || d.Y != 0 {
			t.Errorf("%v count %d: got %v dps, want %v", tc.scale, tc.count, d, tc.dps)
		}
		if m := s.MilliDPS(); !within(m.X, tc.dps*1000, 0.01) {
			t.Errorf("%v count %d: got %v mdps, want %v", tc.scale, tc.count, m.X, tc.dps*1000)
		}
		if r := s.RadPerSec(); !within(r.X, tc.dps*math.Pi/180, 0.01) {
			t.Errorf("%v count %d: got %v rad/s, want %v", tc.scale, tc.count, r.X, tc.dps*math.Pi/180)
		}
	}
}

func TestAccelExampleBurst(t *testing.T) {
	s := AccelSample{Raw: DecodeRaw([]byte{0x69, 0x16, 0, 0, 0, 0}), Scale: AccelFS2G}
	v := s.MetersPerSec2()
	if !within(v.X, 0.350*9.80665, 0.01) {
		t.Errorf("x = %v, want ≈3.432", v.X)
	}
	if v.Y != 0 || v.Z != 0 {
		t.Errorf("y, z = %v, %v, want 0", v.Y, v.Z)
	}
}

func TestZeroIsZero(t *testing.T) {
	for fs := GyroFS125DPS; fs <= GyroFS4000DPS; fs++ {
		if v := (GyroSample{Scale: fs}).RadPerSec(); v != (Vector{}) {
			t.Errorf("%v: zero counts gave %v", fs, v)
		}
	}
	for _, fs := range []AccelScale{AccelFS2G, AccelFS4G, AccelFS8G, AccelFS16G} {
		if v := (AccelSample{Scale: fs}).MetersPerSec2(); v != (Vector{}) {
			t.Errorf("%v: zero counts gave %v", fs, v)
		}
	}
}

func TestTemperature(t *testing.T) {
	tests := []struct {
		raw  int16
		want float64
	}{
		{0, 25.0},
		{256, 26.0},
		{-256, 24.0},
		{128, 25.5},
	}
	for _, tc := range tests {
		if got := Temperature(tc.raw); got != tc.want {
			t.Errorf("Temperature(%d) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestScaleParse(t *testing.T) {
	for _, g := range []int{2, 4, 8, 16} {
		s, err := ParseAccelScale(g)
		if err != nil || s.G() != g {
			t.Errorf("ParseAccelScale(%d) = %v, %v", g, s, err)
		}
	}
	if _, err := ParseAccelScale(3); err == nil {
		t.Error("ParseAccelScale(3) should fail")
	}
	for _, dps := range []int{125, 250, 500, 1000, 2000, 4000} {
		s, err := ParseGyroScale(dps)
		if err != nil || s.DPS() != dps {
			t.Errorf("ParseGyroScale(%d) = %v, %v", dps, s, err)
		}
	}
	if _, err := ParseGyroScale(245); err == nil {
		t.Error("ParseGyroScale(245) should fail")
	}
}

func TestRateParse(t *testing.T) {
	if r, err := ParseDataRate(12.5); err != nil || r != ODR12_5Hz {
		t.Errorf("ParseDataRate(12.5) = %v, %v", r, err)
	}
	if r, err := ParseDataRate(6660); err != nil || r != ODR6664Hz {
		t.Errorf("ParseDataRate(6660) = %v, %v", r, err)
	}
	if _, err := ParseDataRate(100); err == nil {
		t.Error("ParseDataRate(100) should fail")
	}
	if r, err := ParseBatchRate(6.5); err != nil || r != BDR6_5Hz {
		t.Errorf("ParseBatchRate(6.5) = %v, %v", r, err)
	}
	if r, err := ParseBatchRate(417); err != nil || r != BDR417Hz {
		t.Errorf("ParseBatchRate(417) = %v, %v", r, err)
	}
	if c, err := ParseHPCutoff(1040); err != nil || c != HPCutoff1_04Hz {
		t.Errorf("ParseHPCutoff(1040) = %v, %v", c, err)
	}
}
